package progression

import (
	"fmt"
	"testing"
	"time"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) advance(d time.Duration) { f.now = f.now.Add(d) }
func (f *fakeClock) advanceDays(d int)       { f.now = f.now.AddDate(0, 0, d) }

// channelSync delivers each push on a channel so tests can wait for the
// fire-and-forget goroutine deterministically.
type channelSync struct{ ch chan map[string]any }

func (c channelSync) PushProfile(_ string, fields map[string]any) error {
	c.ch <- fields
	return nil
}

type failingSync struct{}

func (failingSync) PushProfile(string, map[string]any) error {
	return fmt.Errorf("remote unavailable")
}

func newTestStore(t *testing.T) (*Store, *fakeClock, *MemoryStorage) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)}
	storage := NewMemoryStorage()
	return NewStore("u1", storage, NopSync{}, clock), clock, storage
}

func TestNewStore_FreshDefaults(t *testing.T) {
	st, _, _ := newTestStore(t)
	s := st.Snapshot()

	if s.Hearts != MaxHearts {
		t.Errorf("hearts = %d, want %d", s.Hearts, MaxHearts)
	}
	if s.Gems != 100 {
		t.Errorf("gems = %d, want 100", s.Gems)
	}
	if s.XP != 0 || s.Streak != 0 {
		t.Errorf("xp/streak = %d/%d, want 0/0", s.XP, s.Streak)
	}
	if s.LearningLanguage != DefaultLanguage {
		t.Errorf("language = %q, want %q", s.LearningLanguage, DefaultLanguage)
	}
}

func TestStore_PersistenceRoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)}
	storage := NewMemoryStorage()

	st := NewStore("u1", storage, NopSync{}, clock)
	st.AddXP(120)
	st.ConsumeHeart()
	st.CompleteLesson("es", "basics-1", 0, 10, 5)

	// A second store over the same storage sees the saved state.
	reloaded := NewStore("u1", storage, NopSync{}, clock)
	a, b := st.Snapshot(), reloaded.Snapshot()

	if a.XP != b.XP || a.Gems != b.Gems || a.Hearts != b.Hearts || a.Streak != b.Streak {
		t.Errorf("reloaded state differs: got xp=%d gems=%d hearts=%d streak=%d, want xp=%d gems=%d hearts=%d streak=%d",
			b.XP, b.Gems, b.Hearts, b.Streak, a.XP, a.Gems, a.Hearts, a.Streak)
	}
	if !b.HasCompletedLesson("es", "basics-1") {
		t.Error("completed lesson lost on reload")
	}
	if len(b.ActiveQuests) != len(a.ActiveQuests) {
		t.Errorf("reloaded %d active quests, want %d", len(b.ActiveQuests), len(a.ActiveQuests))
	}
}

func TestStore_CorruptBlobStartsFresh(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)}
	storage := NewMemoryStorage()
	storage.Save(StorageKey+":u1", []byte("{not json"))

	st := NewStore("u1", storage, NopSync{}, clock)
	s := st.Snapshot()
	if s.Hearts != MaxHearts || s.Gems != 100 {
		t.Errorf("corrupt blob did not fall back to defaults: hearts=%d gems=%d", s.Hearts, s.Gems)
	}
}

func TestStore_SpendGems(t *testing.T) {
	st, _, _ := newTestStore(t)

	if !st.SpendGems(40) {
		t.Fatal("spend within balance refused")
	}
	if got := st.Snapshot().Gems; got != 60 {
		t.Errorf("gems = %d after spend, want 60", got)
	}

	// Overdraft is refused and changes nothing.
	if st.SpendGems(61) {
		t.Error("overdraft was allowed")
	}
	if got := st.Snapshot().Gems; got != 60 {
		t.Errorf("gems = %d after refused spend, want 60", got)
	}
	if st.SpendGems(0) || st.SpendGems(-5) {
		t.Error("non-positive spend was allowed")
	}
}

func TestStore_CompleteLessonIdempotent(t *testing.T) {
	st, _, _ := newTestStore(t)

	first := st.CompleteLesson("es", "basics-1", 0, 10, 5)
	if first.AlreadyCompleted {
		t.Fatal("first completion reported as duplicate")
	}
	if first.XPEarned != 10 || first.GemsEarned != 5 {
		t.Errorf("rewards = (%d,%d), want (10,5)", first.XPEarned, first.GemsEarned)
	}
	if first.Streak != 1 {
		t.Errorf("streak = %d after first lesson, want 1", first.Streak)
	}

	again := st.CompleteLesson("es", "basics-1", 2, 10, 5)
	if !again.AlreadyCompleted {
		t.Fatal("duplicate completion not detected")
	}
	if again.XP != first.XP || again.Gems != first.Gems || again.Hearts != first.Hearts {
		t.Error("duplicate completion changed state")
	}

	// Same lesson id under a different language is a distinct lesson.
	other := st.CompleteLesson("fr", "basics-1", 0, 10, 5)
	if other.AlreadyCompleted {
		t.Error("lesson in another language treated as duplicate")
	}
}

func TestStore_CompleteLessonMistakesConsumeHearts(t *testing.T) {
	st, _, _ := newTestStore(t)

	res := st.CompleteLesson("es", "basics-1", 3, 10, 5)
	if res.Hearts != MaxHearts-3 {
		t.Errorf("hearts = %d after 3 mistakes, want %d", res.Hearts, MaxHearts-3)
	}
}

func TestStore_HeartsRegenerateOverTime(t *testing.T) {
	st, clock, _ := newTestStore(t)

	st.ConsumeHeart()
	st.ConsumeHeart()
	if got := st.Snapshot().Hearts; got != MaxHearts-2 {
		t.Fatalf("hearts = %d, want %d", got, MaxHearts-2)
	}

	clock.advance(5 * time.Minute)
	if got := st.Snapshot().Hearts; got != MaxHearts-1 {
		t.Errorf("hearts = %d after 5m, want %d", got, MaxHearts-1)
	}

	clock.advance(12 * time.Minute)
	s := st.Snapshot()
	if s.Hearts != MaxHearts {
		t.Errorf("hearts = %d after refill window, want %d", s.Hearts, MaxHearts)
	}
	if s.LastHeartChangeAt != nil {
		t.Error("anchor not cleared at full hearts")
	}
}

func TestStore_UnlimitedHearts(t *testing.T) {
	st, clock, _ := newTestStore(t)
	st.GrantUnlimitedHearts(1)

	clock.advance(30 * time.Minute)
	if !st.UnlimitedActive() {
		t.Error("override not reported active before expiry")
	}
	if got := st.ConsumeHeart(); got != MaxHearts {
		t.Errorf("hearts = %d under unlimited, want %d", got, MaxHearts)
	}

	clock.advance(90 * time.Minute)
	if st.UnlimitedActive() {
		t.Error("override reported active after expiry")
	}
	if got := st.ConsumeHeart(); got != MaxHearts-1 {
		t.Errorf("hearts = %d after override expiry, want %d", got, MaxHearts-1)
	}
}

func TestStore_EnsureQuestsStablePerPeriod(t *testing.T) {
	st, clock, _ := newTestStore(t)

	first := st.EnsureQuests()
	if len(first) != DailyQuestCount+WeeklyQuestCount+1 {
		t.Fatalf("got %d active quests, want %d", len(first), DailyQuestCount+WeeklyQuestCount+1)
	}

	clock.advance(2 * time.Hour)
	second := st.EnsureQuests()
	if len(second) != len(first) {
		t.Fatalf("quest count changed within the same day: %d vs %d", len(second), len(first))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("quest %d changed within the same day: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestStore_EnsureQuestsRollsOverDailies(t *testing.T) {
	st, clock, _ := newTestStore(t)

	first := st.EnsureQuests()
	clock.advanceDays(1) // Mar 12 -> Mar 13, same ISO week and month

	second := st.EnsureQuests()
	if len(second) != len(first) {
		t.Fatalf("quest count changed across the day boundary: %d vs %d", len(second), len(first))
	}

	ids := func(qs []QuestInstance, weekly, monthly bool) map[string]bool {
		out := make(map[string]bool)
		for _, q := range qs {
			if q.IsWeekly == weekly && q.IsMonthly == monthly {
				out[q.ID] = true
			}
		}
		return out
	}

	for id := range ids(second, false, false) {
		if ids(first, false, false)[id] {
			t.Errorf("daily quest %s survived the rollover", id)
		}
	}
	for id := range ids(second, true, false) {
		if !ids(first, true, false)[id] {
			t.Errorf("weekly quest %s was replaced mid-week", id)
		}
	}
	for id := range ids(second, false, true) {
		if !ids(first, false, true)[id] {
			t.Errorf("monthly quest %s was replaced mid-month", id)
		}
	}
}

func TestStore_QuestProgressFromLessons(t *testing.T) {
	st, _, _ := newTestStore(t)
	st.EnsureQuests()

	// Inject a lesson-metric quest keyed to the current day so the rollover
	// sweep keeps it.
	now := st.clock.Now()
	quest := QuestInstance{
		ID:        DailyKey("u1", now) + ":999",
		Title:     "Complete 2 lessons",
		Metric:    MetricLessons,
		Target:    2,
		XPReward:  25,
		GemReward: 10,
		ExpiresAt: EndOfDay(now),
	}
	st.mu.Lock()
	st.state.ActiveQuests = append(st.state.ActiveQuests, quest)
	st.mu.Unlock()

	st.CompleteLesson("es", "l1", 1, 10, 0)
	if q, ok := findQuest(st.Snapshot().ActiveQuests, quest.ID); !ok || q.Progress != 1 {
		t.Fatalf("quest progress = %d after one lesson, want 1", q.Progress)
	}

	before := st.Snapshot()
	res := st.CompleteLesson("es", "l2", 0, 10, 0)

	var done *QuestInstance
	for i := range res.QuestsCompleted {
		if res.QuestsCompleted[i].ID == quest.ID {
			done = &res.QuestsCompleted[i]
		}
	}
	if done == nil {
		t.Fatal("quest reaching its target was not reported completed")
	}

	after := st.Snapshot()
	if after.XP < before.XP+10+quest.XPReward {
		t.Errorf("xp = %d, want at least %d (lesson + quest reward)", after.XP, before.XP+10+quest.XPReward)
	}
	if _, ok := findQuest(after.ActiveQuests, quest.ID); ok {
		if q, _ := findQuest(after.ActiveQuests, quest.ID); !q.Completed {
			t.Error("completed quest still active and unmarked")
		}
	}
	if _, ok := findQuest(after.CompletedQuests, quest.ID); !ok {
		t.Error("completed quest missing from the archive")
	}
}

func TestStore_ClaimQuest(t *testing.T) {
	st, _, _ := newTestStore(t)
	st.EnsureQuests()

	now := st.clock.Now()
	quest := QuestInstance{
		ID:        DailyKey("u1", now) + ":998",
		Title:     "Review 10 old words",
		Metric:    MetricManual,
		Target:    10,
		XPReward:  15,
		GemReward: 5,
		ExpiresAt: EndOfDay(now),
	}
	st.mu.Lock()
	st.state.ActiveQuests = append(st.state.ActiveQuests, quest)
	st.mu.Unlock()

	gemsBefore := st.Snapshot().Gems
	claimed, ok := st.ClaimQuest(quest.ID)
	if !ok {
		t.Fatal("claim of an active quest refused")
	}
	if !claimed.Completed || claimed.Progress != claimed.Target {
		t.Errorf("claimed quest state: %+v", claimed)
	}
	// Completing a quest can cascade into quest-count quests, so the claim
	// reward is a lower bound.
	if got := st.Snapshot().Gems; got < gemsBefore+quest.GemReward {
		t.Errorf("gems = %d after claim, want at least %d", got, gemsBefore+quest.GemReward)
	}

	if _, ok := st.ClaimQuest(quest.ID); ok {
		t.Error("double claim succeeded")
	}
	if _, ok := st.ClaimQuest("no-such-quest"); ok {
		t.Error("claim of an unknown quest succeeded")
	}
}

func TestStore_ClaimQuestRefusesTrackedMetrics(t *testing.T) {
	st, _, _ := newTestStore(t)
	now := st.clock.Now()

	// Store-tracked metrics complete automatically inside the mutators;
	// claiming one with zero progress must not pay out.
	tracked := []string{MetricLessons, MetricXP, MetricPerfectLessons, MetricStreak, MetricQuests, MetricPurchases}
	for i, metric := range tracked {
		quest := QuestInstance{
			ID:        DailyKey("u1", now) + ":" + fmt.Sprintf("t%d", i),
			Title:     "tracked",
			Metric:    metric,
			Target:    5,
			XPReward:  30,
			GemReward: 10,
			ExpiresAt: EndOfDay(now),
		}
		st.mu.Lock()
		st.state.ActiveQuests = append(st.state.ActiveQuests, quest)
		st.mu.Unlock()

		before := st.Snapshot()
		if _, ok := st.ClaimQuest(quest.ID); ok {
			t.Errorf("claim of %s-metric quest succeeded", metric)
		}
		after := st.Snapshot()
		if after.XP != before.XP || after.Gems != before.Gems {
			t.Errorf("refused %s claim changed balances: xp %d->%d gems %d->%d",
				metric, before.XP, after.XP, before.Gems, after.Gems)
		}
		if q, ok := findQuest(after.ActiveQuests, quest.ID); !ok || q.Completed || q.Progress != 0 {
			t.Errorf("refused %s claim mutated the quest: %+v", metric, q)
		}
	}
}

func TestStore_StreakAcrossDays(t *testing.T) {
	st, clock, _ := newTestStore(t)

	for i := 0; i < 3; i++ {
		st.CompleteLesson("es", fmt.Sprintf("l%d", i), 0, 10, 0)
		clock.advanceDays(1)
	}
	if got := st.Snapshot().Streak; got != 3 {
		t.Errorf("streak = %d after 3 consecutive days, want 3", got)
	}

	clock.advanceDays(2)
	st.CompleteLesson("es", "l9", 0, 10, 0)
	if got := st.Snapshot().Streak; got != 1 {
		t.Errorf("streak = %d after a lapse, want 1", got)
	}
}

func TestStore_RemotePushFields(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)}
	sync := channelSync{ch: make(chan map[string]any, 8)}
	st := NewStore("u1", NewMemoryStorage(), sync, clock)

	st.AddXP(50)

	select {
	case fields := <-sync.ch:
		if fields["xp"] != 50 {
			t.Errorf("pushed xp = %v, want 50", fields["xp"])
		}
		if _, ok := fields["gems"]; !ok {
			t.Error("push missing gems field")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no remote push observed")
	}
}

func TestStore_RemoteFailureKeepsLocalState(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)}
	storage := NewMemoryStorage()
	st := NewStore("u1", storage, failingSync{}, clock)

	st.AddXP(50)
	if got := st.Snapshot().XP; got != 50 {
		t.Errorf("xp = %d with failing remote, want 50", got)
	}

	reloaded := NewStore("u1", storage, failingSync{}, clock)
	if got := reloaded.Snapshot().XP; got != 50 {
		t.Errorf("reloaded xp = %d, want 50", got)
	}
}

func TestStore_ResetProgress(t *testing.T) {
	st, _, _ := newTestStore(t)
	st.CompleteLesson("es", "l1", 1, 10, 5)
	st.ResetProgress()

	s := st.Snapshot()
	if s.XP != 0 || s.Streak != 0 || s.Hearts != MaxHearts || s.Gems != 100 {
		t.Errorf("reset state: xp=%d streak=%d hearts=%d gems=%d", s.XP, s.Streak, s.Hearts, s.Gems)
	}
	if s.HasCompletedLesson("es", "l1") {
		t.Error("completed lessons survived reset")
	}
}

func findQuest(qs []QuestInstance, id string) (QuestInstance, bool) {
	for _, q := range qs {
		if q.ID == id {
			return q, true
		}
	}
	return QuestInstance{}, false
}
