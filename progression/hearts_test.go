package progression

import (
	"testing"
	"time"
)

var base = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func heartsState(hearts int, anchor *time.Time) *State {
	s := NewState("u1")
	s.Hearts = hearts
	s.LastHeartChangeAt = anchor
	return s
}

func TestRegenerateHearts_Conservation(t *testing.T) {
	tests := []struct {
		name       string
		hearts     int
		elapsed    time.Duration
		wantHearts int
		wantAnchor *time.Duration // offset from base; nil means cleared
	}{
		{"no interval elapsed", 10, 4 * time.Minute, 10, durPtr(0)},
		{"one interval", 10, 5 * time.Minute, 11, durPtr(5 * time.Minute)},
		{"fraction kept", 10, 7 * time.Minute, 11, durPtr(5 * time.Minute)},
		{"three intervals", 10, 16 * time.Minute, 13, durPtr(15 * time.Minute)},
		{"exactly to max", 18, 10 * time.Minute, 20, nil},
		{"over max discards remainder", 18, 12 * time.Minute, 20, nil},
		{"far future", 1, 48 * time.Hour, 20, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anchor := base
			s := heartsState(tt.hearts, &anchor)
			s.RegenerateHearts(base.Add(tt.elapsed))

			if s.Hearts != tt.wantHearts {
				t.Errorf("hearts = %d, want %d", s.Hearts, tt.wantHearts)
			}
			if tt.wantAnchor == nil {
				if s.LastHeartChangeAt != nil {
					t.Errorf("anchor = %v, want nil", s.LastHeartChangeAt)
				}
			} else {
				want := base.Add(*tt.wantAnchor)
				if s.LastHeartChangeAt == nil || !s.LastHeartChangeAt.Equal(want) {
					t.Errorf("anchor = %v, want %v", s.LastHeartChangeAt, want)
				}
			}
		})
	}
}

func TestRegenerateHearts_Monotonic(t *testing.T) {
	anchor := base
	s := heartsState(3, &anchor)

	prev := s.Hearts
	for i := 1; i <= 200; i++ {
		s.RegenerateHearts(base.Add(time.Duration(i) * 90 * time.Second))
		if s.Hearts < prev {
			t.Fatalf("hearts decreased from %d to %d at step %d", prev, s.Hearts, i)
		}
		if s.Hearts > MaxHearts {
			t.Fatalf("hearts exceeded max: %d", s.Hearts)
		}
		prev = s.Hearts
	}
	if s.Hearts != MaxHearts {
		t.Errorf("hearts = %d after 300 minutes, want %d", s.Hearts, MaxHearts)
	}
}

func TestRegenerateHearts_BackwardJump(t *testing.T) {
	anchor := base
	s := heartsState(5, &anchor)
	s.RegenerateHearts(base.Add(-2 * time.Hour))

	if s.Hearts != 5 {
		t.Errorf("hearts = %d after backward jump, want 5", s.Hearts)
	}
	if s.LastHeartChangeAt == nil || !s.LastHeartChangeAt.Equal(base) {
		t.Errorf("anchor moved on backward jump: %v", s.LastHeartChangeAt)
	}
}

func TestRegenerateHearts_FullClearsAnchor(t *testing.T) {
	anchor := base
	s := heartsState(MaxHearts, &anchor)
	s.RegenerateHearts(base.Add(time.Hour))

	if s.LastHeartChangeAt != nil {
		t.Errorf("anchor should be nil while full, got %v", s.LastHeartChangeAt)
	}
	if s.Hearts != MaxHearts {
		t.Errorf("hearts = %d, want %d", s.Hearts, MaxHearts)
	}
}

func TestConsumeHeart(t *testing.T) {
	s := heartsState(MaxHearts, nil)
	s.ConsumeHeart(base)

	if s.Hearts != MaxHearts-1 {
		t.Errorf("hearts = %d, want %d", s.Hearts, MaxHearts-1)
	}
	if s.LastHeartChangeAt == nil || !s.LastHeartChangeAt.Equal(base) {
		t.Errorf("anchor = %v, want %v", s.LastHeartChangeAt, base)
	}

	// Anchor must not move on further consumption.
	s.ConsumeHeart(base.Add(time.Minute))
	if !s.LastHeartChangeAt.Equal(base) {
		t.Errorf("anchor moved on second consume: %v", s.LastHeartChangeAt)
	}
}

func TestConsumeHeart_ClampedAtZero(t *testing.T) {
	anchor := base
	s := heartsState(0, &anchor)
	s.ConsumeHeart(base)

	if s.Hearts != 0 {
		t.Errorf("hearts = %d, want 0", s.Hearts)
	}
}

func TestConsumeHeart_UnlimitedOverride(t *testing.T) {
	s := heartsState(MaxHearts, nil)
	s.GrantUnlimitedHearts(base, 1)

	// Within the hour: consumption is a no-op.
	s.ConsumeHeart(base.Add(30 * time.Minute))
	if s.Hearts != MaxHearts {
		t.Errorf("hearts = %d under unlimited, want %d", s.Hearts, MaxHearts)
	}

	// Two hours in: stale override cleared, then the decrement applies.
	s.ConsumeHeart(base.Add(2 * time.Hour))
	if s.Hearts != MaxHearts-1 {
		t.Errorf("hearts = %d after expiry, want %d", s.Hearts, MaxHearts-1)
	}
	if s.UnlimitedHearts || s.UnlimitedHeartsExpiry != nil {
		t.Error("stale unlimited override not cleared")
	}
}

func TestGrantUnlimitedHearts_RefillsImmediately(t *testing.T) {
	anchor := base
	s := heartsState(2, &anchor)
	s.GrantUnlimitedHearts(base, 24)

	if s.Hearts != MaxHearts {
		t.Errorf("hearts = %d, want %d", s.Hearts, MaxHearts)
	}
	if s.LastHeartChangeAt != nil {
		t.Error("anchor should be cleared on refill")
	}
	want := base.Add(24 * time.Hour)
	if s.UnlimitedHeartsExpiry == nil || !s.UnlimitedHeartsExpiry.Equal(want) {
		t.Errorf("expiry = %v, want %v", s.UnlimitedHeartsExpiry, want)
	}
}

func TestRegenerateHearts_ClearsStaleOverride(t *testing.T) {
	s := heartsState(MaxHearts, nil)
	s.GrantUnlimitedHearts(base, 1)
	s.RegenerateHearts(base.Add(3 * time.Hour))

	if s.UnlimitedHearts {
		t.Error("stale unlimited override survived regenerate")
	}
}

func TestNextHeartIn(t *testing.T) {
	anchor := base
	s := heartsState(10, &anchor)

	if got := s.NextHeartIn(base.Add(2 * time.Minute)); got != 3*time.Minute {
		t.Errorf("NextHeartIn = %v, want 3m", got)
	}

	s.RefillHearts()
	if got := s.NextHeartIn(base); got != 0 {
		t.Errorf("NextHeartIn = %v while full, want 0", got)
	}
}

func durPtr(d time.Duration) *time.Duration { return &d }
