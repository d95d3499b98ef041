// progression/hearts.go
package progression

import "time"

// HeartInterval is the time needed to regenerate one heart.
const HeartInterval = 5 * time.Minute

// RegenerateHearts applies all whole regeneration intervals elapsed since
// LastHeartChangeAt. There is no background timer driving this: callers
// invoke it lazily and arbitrarily often. The anchor advances by exactly the
// intervals consumed so fractional progress toward the next heart is kept,
// except when the cap is reached, where the remainder is discarded and the
// anchor cleared (nil means nothing is owed).
func (s *State) RegenerateHearts(now time.Time) {
	s.expireUnlimited(now)

	if s.Hearts >= MaxHearts {
		s.Hearts = MaxHearts
		s.LastHeartChangeAt = nil
		return
	}
	if s.LastHeartChangeAt == nil {
		return
	}

	elapsed := now.Sub(*s.LastHeartChangeAt)
	if elapsed < 0 {
		// Backward clock jump. Treat as no time passed.
		elapsed = 0
	}
	n := int(elapsed / HeartInterval)
	if n <= 0 {
		return
	}

	s.Hearts += n
	if s.Hearts >= MaxHearts {
		s.Hearts = MaxHearts
		s.LastHeartChangeAt = nil
		return
	}
	anchor := s.LastHeartChangeAt.Add(time.Duration(n) * HeartInterval)
	s.LastHeartChangeAt = &anchor
}

// ConsumeHeart spends one heart. Under an unexpired unlimited override it is
// a no-op; a stale override is cleared here before the normal decrement.
func (s *State) ConsumeHeart(now time.Time) {
	if s.UnlimitedHearts {
		if s.UnlimitedHeartsExpiry != nil && s.UnlimitedHeartsExpiry.After(now) {
			return
		}
		s.UnlimitedHearts = false
		s.UnlimitedHeartsExpiry = nil
	}

	if s.Hearts <= 0 {
		return
	}
	s.Hearts--
	if s.LastHeartChangeAt == nil {
		t := now
		s.LastHeartChangeAt = &t
	}
}

// RefillHearts restores the full heart count and clears the regen anchor.
func (s *State) RefillHearts() {
	s.Hearts = MaxHearts
	s.LastHeartChangeAt = nil
}

// GrantUnlimitedHearts enables the time-boxed override and refills
// immediately so the perk feels instant.
func (s *State) GrantUnlimitedHearts(now time.Time, durationHours int) {
	expiry := now.Add(time.Duration(durationHours) * time.Hour)
	s.UnlimitedHearts = true
	s.UnlimitedHeartsExpiry = &expiry
	s.RefillHearts()
}

// NextHeartIn reports how long until the next heart arrives, or zero when
// hearts are full or unlimited.
func (s *State) NextHeartIn(now time.Time) time.Duration {
	if s.Hearts >= MaxHearts || s.LastHeartChangeAt == nil {
		return 0
	}
	if s.UnlimitedHearts && s.UnlimitedHeartsExpiry != nil && s.UnlimitedHeartsExpiry.After(now) {
		return 0
	}
	elapsed := now.Sub(*s.LastHeartChangeAt)
	if elapsed < 0 {
		elapsed = 0
	}
	rem := HeartInterval - elapsed%HeartInterval
	return rem
}

// expireUnlimited lazily clears a stale unlimited-hearts override.
func (s *State) expireUnlimited(now time.Time) {
	if s.UnlimitedHearts && (s.UnlimitedHeartsExpiry == nil || !s.UnlimitedHeartsExpiry.After(now)) {
		s.UnlimitedHearts = false
		s.UnlimitedHeartsExpiry = nil
	}
}

// UnlimitedActive reports whether the override is set and unexpired.
func (s *State) UnlimitedActive(now time.Time) bool {
	return s.UnlimitedHearts && s.UnlimitedHeartsExpiry != nil && s.UnlimitedHeartsExpiry.After(now)
}
