// progression/store.go
package progression

import (
	"encoding/json"
	"log"
	"strings"
	"sync"
)

// Quest set sizes per period.
const (
	DailyQuestCount  = 3
	WeeklyQuestCount = 2
)

// Store owns the canonical in-memory State for one user. Every mutator
// applies the pure-engine transformation under the lock, saves the new
// state to local storage synchronously, then schedules a best-effort push
// of the changed fields to the remote profile mirror. Local state is the
// source of truth for the session; remote failures are logged, never
// retried and never rolled back.
type Store struct {
	mu      sync.Mutex
	state   *State
	clock   Clock
	storage LocalStorage
	remote  RemoteSync
	key     string
}

// NewStore rehydrates a user's state from local storage, falling back to a
// fresh default state when no blob exists or the blob is corrupt.
func NewStore(userID string, storage LocalStorage, remote RemoteSync, clock Clock) *Store {
	key := StorageKey + ":" + userID
	st := NewState(userID)

	data, err := storage.Load(key)
	switch {
	case err != nil:
		log.Printf("progression: load %s: %v (starting fresh)", key, err)
	case len(data) > 0:
		var loaded State
		if err := json.Unmarshal(data, &loaded); err != nil {
			log.Printf("progression: corrupt state for user %s: %v (starting fresh)", userID, err)
		} else {
			loaded.UserID = userID
			if loaded.CompletedLessons == nil {
				loaded.CompletedLessons = make(map[string]bool)
			}
			st = &loaded
		}
	}

	return &Store{state: st, clock: clock, storage: storage, remote: remote, key: key}
}

// LessonResult reports the outcome of a lesson completion.
type LessonResult struct {
	AlreadyCompleted bool            `json:"already_completed"`
	XPEarned         int             `json:"xp_earned"`
	GemsEarned       int             `json:"gems_earned"`
	XP               int             `json:"xp"`
	Gems             int             `json:"gems"`
	Hearts           int             `json:"hearts"`
	Streak           int             `json:"streak"`
	QuestsCompleted  []QuestInstance `json:"quests_completed"`
}

// Snapshot returns a deep copy of the current state with heart regeneration
// applied. Safe for concurrent callers.
func (st *Store) Snapshot() *State {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.regenLocked()
	return st.state.Clone()
}

// Regenerate applies lazy heart regeneration. Called from the display tick;
// skipping it entirely is still correct because every mutator regenerates
// before acting.
func (st *Store) Regenerate() (hearts int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.regenLocked()
	return st.state.Hearts
}

// AddXP credits experience and advances xp-metric quests.
func (st *Store) AddXP(amount int) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	if amount <= 0 {
		return st.state.XP
	}
	st.state.XP += amount
	st.advanceQuestsLocked(MetricXP, amount)
	st.persistLocked()
	st.pushLocked("xp", "gems")
	return st.state.XP
}

// AddGems credits the soft currency.
func (st *Store) AddGems(amount int) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	if amount <= 0 {
		return st.state.Gems
	}
	st.state.Gems += amount
	st.persistLocked()
	st.pushLocked("gems")
	return st.state.Gems
}

// SpendGems debits gems. Spending more than owned is refused and leaves the
// state unchanged; the false return is a logical no-op, not an error.
func (st *Store) SpendGems(amount int) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if amount <= 0 || st.state.Gems < amount {
		return false
	}
	st.state.Gems -= amount
	st.persistLocked()
	st.pushLocked("gems")
	return true
}

// ConsumeHeart spends one heart (lesson mistake). No-op under an unexpired
// unlimited override.
func (st *Store) ConsumeHeart() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.clock.Now()
	st.state.RegenerateHearts(now)
	st.state.ConsumeHeart(now)
	st.persistLocked()
	st.pushLocked("hearts")
	return st.state.Hearts
}

// RefillHearts restores the full heart count.
func (st *Store) RefillHearts() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state.RefillHearts()
	st.persistLocked()
	st.pushLocked("hearts")
}

// GrantUnlimitedHearts enables the timed override and refills immediately.
func (st *Store) GrantUnlimitedHearts(durationHours int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state.GrantUnlimitedHearts(st.clock.Now(), durationHours)
	st.persistLocked()
	st.pushLocked("hearts")
}

// RecordActivity feeds the streak machine without a lesson (e.g. practice).
func (st *Store) RecordActivity() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state.RecordActivity(st.clock.Now())
	st.persistLocked()
	st.pushLocked("streak")
	return st.state.Streak
}

// ResetStreak is the explicit admin/freeze-expiry reset.
func (st *Store) ResetStreak() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state.ResetStreak()
	st.persistLocked()
	st.pushLocked("streak")
}

// SwitchLanguage changes the learning language. Completed lessons of other
// languages are retained; the set is append-only within a language pair.
func (st *Store) SwitchLanguage(code string) {
	if code == "" {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state.LearningLanguage = code
	st.persistLocked()
	st.pushLocked("learning_language")
}

// CompleteLesson is the main gameplay mutator: awards XP and gems, records
// streak activity, consumes a heart per mistake and advances quest
// progress. Completing the same lesson twice is a no-op with no rewards.
func (st *Store) CompleteLesson(languageCode, lessonID string, mistakes, xpReward, gemReward int) LessonResult {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.clock.Now()
	st.regenLocked()

	if st.state.HasCompletedLesson(languageCode, lessonID) {
		return LessonResult{
			AlreadyCompleted: true,
			XP:               st.state.XP,
			Gems:             st.state.Gems,
			Hearts:           st.state.Hearts,
			Streak:           st.state.Streak,
		}
	}

	for i := 0; i < mistakes; i++ {
		st.state.ConsumeHeart(now)
	}

	st.state.CompletedLessons[LessonKey(languageCode, lessonID)] = true
	st.state.XP += xpReward
	st.state.Gems += gemReward
	st.state.RecordActivity(now)

	st.ensureQuestsLocked()
	completed := st.advanceQuestsLocked(MetricLessons, 1)
	completed = append(completed, st.advanceQuestsLocked(MetricXP, xpReward)...)
	if mistakes == 0 {
		completed = append(completed, st.advanceQuestsLocked(MetricPerfectLessons, 1)...)
	}
	completed = append(completed, st.advanceQuestsLocked(MetricStreak, st.state.Streak)...)

	st.persistLocked()
	st.pushLocked("xp", "gems", "hearts", "streak", "language_progress")

	return LessonResult{
		XPEarned:        xpReward,
		GemsEarned:      gemReward,
		XP:              st.state.XP,
		Gems:            st.state.Gems,
		Hearts:          st.state.Hearts,
		Streak:          st.state.Streak,
		QuestsCompleted: completed,
	}
}

// Purchase appends to the inventory ledger after the price was spent and
// advances purchase-metric quests. The ledger is append-only; consumables
// are applied by the caller, not removed here.
func (st *Store) Purchase(itemID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state.Inventory = append(st.state.Inventory, InventoryItem{
		ItemID:      itemID,
		PurchasedAt: st.clock.Now(),
	})
	st.advanceQuestsLocked(MetricPurchases, 1)
	st.persistLocked()
	st.pushLocked("gems")
}

// EnsureQuests generates quest sets for any period that rolled over.
// Generation is deterministic per (user, period), so calling this when
// quests already exist for the current period is a no-op.
func (st *Store) EnsureQuests() []QuestInstance {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.ensureQuestsLocked() {
		st.persistLocked()
	}
	return append([]QuestInstance(nil), st.state.ActiveQuests...)
}

// ClaimQuest completes a client-tracked quest (manual metrics) and awards
// its rewards. Store-tracked metrics complete automatically inside the
// mutators that emit them, so claiming one is refused: accepting it would
// pay full rewards for zero progress. Returns false when the quest is
// unknown, expired, already completed or not manually tracked.
func (st *Store) ClaimQuest(questID string) (QuestInstance, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.clock.Now()
	for i := range st.state.ActiveQuests {
		q := &st.state.ActiveQuests[i]
		if q.ID != questID || q.Completed || now.After(q.ExpiresAt) {
			continue
		}
		if q.Metric != MetricManual {
			return QuestInstance{}, false
		}
		q.Progress = q.Target
		st.completeQuestLocked(q)
		st.persistLocked()
		st.pushLocked("xp", "gems")
		return *q, true
	}
	return QuestInstance{}, false
}

// ResetProgress discards all progression state. The only way state is ever
// destroyed.
func (st *Store) ResetProgress() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state = NewState(st.state.UserID)
	st.persistLocked()
	st.pushLocked("xp", "gems", "hearts", "streak", "learning_language", "language_progress")
}

// ─── internal ───────────────────────────────────────────────────────────────

func (st *Store) regenLocked() {
	st.state.RegenerateHearts(st.clock.Now())
}

// ensureQuestsLocked replaces each quest group wholesale once its period
// rolled over. Prior sets are discarded, not persisted, per the rollover
// contract. Reports whether anything changed.
func (st *Store) ensureQuestsLocked() bool {
	now := st.clock.Now()
	uid := st.state.UserID

	hasDaily, hasWeekly, hasMonthly := false, false, false
	dailyPrefix := DailyKey(uid, now) + ":"
	weeklyPrefix := WeeklyKey(uid, now) + ":"
	monthlyPrefix := MonthlyKey(uid, now) + ":"

	kept := st.state.ActiveQuests[:0]
	for _, q := range st.state.ActiveQuests {
		switch {
		case q.IsMonthly:
			if strings.HasPrefix(q.ID, monthlyPrefix) {
				hasMonthly = true
				kept = append(kept, q)
			}
		case q.IsWeekly:
			if strings.HasPrefix(q.ID, weeklyPrefix) {
				hasWeekly = true
				kept = append(kept, q)
			}
		default:
			if strings.HasPrefix(q.ID, dailyPrefix) {
				hasDaily = true
				kept = append(kept, q)
			}
		}
	}

	changed := len(kept) != len(st.state.ActiveQuests)
	st.state.ActiveQuests = kept

	if !hasDaily {
		st.state.ActiveQuests = append(st.state.ActiveQuests, GenerateDaily(uid, DailyQuestCount, now)...)
		changed = true
	}
	if !hasWeekly {
		st.state.ActiveQuests = append(st.state.ActiveQuests, GenerateWeekly(uid, WeeklyQuestCount, now)...)
		changed = true
	}
	if !hasMonthly {
		st.state.ActiveQuests = append(st.state.ActiveQuests, GenerateMonthly(uid, now))
		changed = true
	}
	return changed
}

// advanceQuestsLocked moves progress on every active, unexpired quest
// tracking the metric. Streak progress is level-set rather than summed.
// Quests reaching their target are completed and archived immediately.
// Quest rewards do not feed back into xp-metric quests.
func (st *Store) advanceQuestsLocked(metric string, amount int) []QuestInstance {
	now := st.clock.Now()
	var completed []QuestInstance

	for i := range st.state.ActiveQuests {
		q := &st.state.ActiveQuests[i]
		if q.Metric != metric || q.Completed || now.After(q.ExpiresAt) {
			continue
		}
		if metric == MetricStreak {
			if amount > q.Progress {
				q.Progress = amount
			}
		} else {
			q.Progress += amount
		}
		if q.Progress >= q.Target {
			q.Progress = q.Target
			st.completeQuestLocked(q)
			completed = append(completed, *q)
		}
	}
	return completed
}

// completeQuestLocked awards the quest's rewards, archives it and bumps
// quest-count quests. The archive is append-only.
func (st *Store) completeQuestLocked(q *QuestInstance) {
	q.Completed = true
	st.state.XP += q.XPReward
	st.state.Gems += q.GemReward
	st.state.CompletedQuests = append(st.state.CompletedQuests, *q)

	// Completing any quest is itself progress for quest-count quests.
	now := st.clock.Now()
	for i := range st.state.ActiveQuests {
		qc := &st.state.ActiveQuests[i]
		if qc.Metric != MetricQuests || qc.Completed || qc.ID == q.ID || now.After(qc.ExpiresAt) {
			continue
		}
		qc.Progress++
		if qc.Progress >= qc.Target {
			qc.Progress = qc.Target
			st.completeQuestLocked(qc)
		}
	}
}

func (st *Store) persistLocked() {
	data, err := json.Marshal(st.state)
	if err != nil {
		log.Printf("progression: marshal state for user %s: %v", st.state.UserID, err)
		return
	}
	if err := st.storage.Save(st.key, data); err != nil {
		log.Printf("progression: save state for user %s: %v", st.state.UserID, err)
	}
}

// pushLocked schedules a best-effort remote mirror write of the named
// fields. The caller keeps the lock only long enough to snapshot values;
// the network write happens off the mutator path.
func (st *Store) pushLocked(fields ...string) {
	payload := make(map[string]any, len(fields))
	for _, f := range fields {
		switch f {
		case "xp":
			payload["xp"] = st.state.XP
		case "gems":
			payload["gems"] = st.state.Gems
		case "hearts":
			payload["hearts"] = st.state.Hearts
		case "streak":
			payload["streak"] = st.state.Streak
		case "league_id":
			payload["league_id"] = st.state.LeagueID
		case "learning_language":
			payload["learning_language"] = st.state.LearningLanguage
		case "language_progress":
			payload["language_progress"] = st.languageProgressLocked()
		}
	}
	userID := st.state.UserID
	remote := st.remote

	go func() {
		if err := remote.PushProfile(userID, payload); err != nil {
			log.Printf("progression: remote sync for user %s failed: %v", userID, err)
		}
	}()
}

func (st *Store) languageProgressLocked() map[string]int {
	counts := make(map[string]int)
	for key := range st.state.CompletedLessons {
		if i := strings.IndexByte(key, ':'); i > 0 {
			counts[key[:i]]++
		}
	}
	return counts
}

// UserID returns the owner of this store.
func (st *Store) UserID() string {
	return st.state.UserID
}

// NextHeartCountdown reports seconds until the next heart, for display.
func (st *Store) NextHeartCountdown() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.regenLocked()
	return int(st.state.NextHeartIn(st.clock.Now()).Seconds())
}

// UnlimitedActive reports whether an unexpired unlimited-hearts override is
// in effect, judged against the store's clock.
func (st *Store) UnlimitedActive() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.regenLocked()
	return st.state.UnlimitedActive(st.clock.Now())
}
