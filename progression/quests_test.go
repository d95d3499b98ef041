package progression

import (
	"reflect"
	"testing"
	"time"
)

var questDay = time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)

func TestGenerateDaily_Deterministic(t *testing.T) {
	a := GenerateDaily("user-42", DailyQuestCount, questDay)
	b := GenerateDaily("user-42", DailyQuestCount, questDay)

	if !reflect.DeepEqual(a, b) {
		t.Fatalf("two generations for the same user-day differ:\n%+v\n%+v", a, b)
	}

	// Any hour of the same day yields the same set.
	c := GenerateDaily("user-42", DailyQuestCount, questDay.Add(8*time.Hour))
	if !reflect.DeepEqual(a, c) {
		t.Error("generation at a different hour of the same day differs")
	}
}

func TestGenerateDaily_VariesByUserAndDay(t *testing.T) {
	a := GenerateDaily("user-42", DailyQuestCount, questDay)
	b := GenerateDaily("user-43", DailyQuestCount, questDay)
	c := GenerateDaily("user-42", DailyQuestCount, questDay.AddDate(0, 0, 1))

	if a[0].ID == b[0].ID {
		t.Error("different users got the same quest id")
	}
	if a[0].ID == c[0].ID {
		t.Error("different days got the same quest id")
	}
}

func TestGenerateDaily_PoolAndShape(t *testing.T) {
	quests := GenerateDaily("user-42", DailyQuestCount, questDay)
	if len(quests) != DailyQuestCount {
		t.Fatalf("got %d quests, want %d", len(quests), DailyQuestCount)
	}

	seen := make(map[int]bool)
	wantExpiry := EndOfDay(questDay)
	for _, q := range quests {
		if q.TypeID < 1 || q.TypeID > 40 {
			t.Errorf("quest %s drew archetype %d outside the daily pool", q.ID, q.TypeID)
		}
		if seen[q.TypeID] {
			t.Errorf("archetype %d drawn twice in one day", q.TypeID)
		}
		seen[q.TypeID] = true

		a := Archetypes[q.TypeID-1]
		if q.Target < a.MinTarget || q.Target > a.MaxTarget {
			t.Errorf("quest %s target %d outside [%d,%d]", q.ID, q.Target, a.MinTarget, a.MaxTarget)
		}
		if q.XPReward != a.XPReward || q.GemReward != a.GemReward {
			t.Errorf("quest %s rewards (%d,%d) differ from archetype (%d,%d)",
				q.ID, q.XPReward, q.GemReward, a.XPReward, a.GemReward)
		}
		if !q.ExpiresAt.Equal(wantExpiry) {
			t.Errorf("quest %s expires %v, want %v", q.ID, q.ExpiresAt, wantExpiry)
		}
		if q.IsWeekly || q.IsMonthly || q.Completed || q.Progress != 0 {
			t.Errorf("quest %s has unexpected flags/progress: %+v", q.ID, q)
		}
	}
}

func TestGenerateDaily_CountClamped(t *testing.T) {
	if got := len(GenerateDaily("u", 1000, questDay)); got != 40 {
		t.Errorf("got %d quests for oversized count, want 40", got)
	}
	if got := len(GenerateDaily("u", -1, questDay)); got != 0 {
		t.Errorf("got %d quests for negative count, want 0", got)
	}
	// Empty user id is a valid seed.
	if got := len(GenerateDaily("", DailyQuestCount, questDay)); got != DailyQuestCount {
		t.Errorf("got %d quests for empty user id, want %d", got, DailyQuestCount)
	}
}

func TestGenerateWeekly(t *testing.T) {
	a := GenerateWeekly("user-42", WeeklyQuestCount, questDay)
	b := GenerateWeekly("user-42", WeeklyQuestCount, questDay.AddDate(0, 0, 2)) // same ISO week

	// Expiry tracks the generation instant; everything else is fixed by the
	// week key.
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Target != b[i].Target || a[i].XPReward != b[i].XPReward {
			t.Fatalf("generations within the same ISO week differ: %+v vs %+v", a[i], b[i])
		}
	}
	if len(a) != WeeklyQuestCount {
		t.Fatalf("got %d weekly quests, want %d", len(a), WeeklyQuestCount)
	}

	pool := make(map[int]bool, len(weeklyPoolIDs))
	for _, id := range weeklyPoolIDs {
		pool[id] = true
	}
	for _, q := range a {
		if !pool[q.TypeID] {
			t.Errorf("weekly quest drew archetype %d outside the weekly pool", q.TypeID)
		}
		if !q.IsWeekly {
			t.Errorf("quest %s not flagged weekly", q.ID)
		}
		arch := Archetypes[q.TypeID-1]
		if q.XPReward != arch.XPReward*2 || q.GemReward != arch.GemReward*2 {
			t.Errorf("weekly quest %s rewards (%d,%d), want doubled (%d,%d)",
				q.ID, q.XPReward, q.GemReward, arch.XPReward*2, arch.GemReward*2)
		}
	}

	next := GenerateWeekly("user-42", WeeklyQuestCount, questDay.AddDate(0, 0, 7))
	if a[0].ID == next[0].ID {
		t.Error("next ISO week produced the same quest id")
	}
}

func TestGenerateMonthly(t *testing.T) {
	q := GenerateMonthly("user-42", questDay)

	if q.TypeID != monthlyArchetypeID {
		t.Errorf("monthly archetype = %d, want %d", q.TypeID, monthlyArchetypeID)
	}
	if q.Target != 30 {
		t.Errorf("monthly target = %d, want 30", q.Target)
	}
	if q.XPReward != monthlyXPBonus || q.GemReward != monthlyGemBonus {
		t.Errorf("monthly rewards (%d,%d), want (%d,%d)", q.XPReward, q.GemReward, monthlyXPBonus, monthlyGemBonus)
	}
	if !q.IsMonthly {
		t.Error("monthly quest not flagged monthly")
	}

	wantExpiry := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC).Add(-time.Millisecond)
	if !q.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("monthly expiry = %v, want %v", q.ExpiresAt, wantExpiry)
	}

	same := GenerateMonthly("user-42", questDay.AddDate(0, 0, 15)) // still March
	if q.ID != same.ID {
		t.Error("same month produced a different quest id")
	}
	next := GenerateMonthly("user-42", questDay.AddDate(0, 1, 0))
	if q.ID == next.ID {
		t.Error("next month produced the same quest id")
	}
}

func TestPeriodKeys(t *testing.T) {
	if got, want := DailyKey("u1", questDay), "u1:2025-03-12"; got != want {
		t.Errorf("DailyKey = %q, want %q", got, want)
	}
	if got, want := WeeklyKey("u1", questDay), "u1:2025-W11"; got != want {
		t.Errorf("WeeklyKey = %q, want %q", got, want)
	}
	if got, want := MonthlyKey("u1", questDay), "u1:2025-03"; got != want {
		t.Errorf("MonthlyKey = %q, want %q", got, want)
	}
}

func TestEndOfDay(t *testing.T) {
	got := EndOfDay(questDay)
	want := time.Date(2025, 3, 12, 23, 59, 59, 999e6, time.UTC)
	if !got.Equal(want) {
		t.Errorf("EndOfDay = %v, want %v", got, want)
	}
}

func TestArchetypeCatalog(t *testing.T) {
	if len(Archetypes) != 100 {
		t.Fatalf("catalog has %d archetypes, want 100", len(Archetypes))
	}
	for i, a := range Archetypes {
		if a.ID != i+1 {
			t.Errorf("archetype at index %d has id %d, want %d", i, a.ID, i+1)
		}
		if a.MinTarget > a.MaxTarget {
			t.Errorf("archetype %d has MinTarget %d > MaxTarget %d", a.ID, a.MinTarget, a.MaxTarget)
		}
	}
	for _, id := range weeklyPoolIDs {
		if id < 41 || id > 99 {
			t.Errorf("weekly pool id %d outside the big-quest range", id)
		}
	}
}
