// progression/state.go
package progression

import (
	"fmt"
	"time"
)

// MaxHearts is the heart cap. The stored field never exceeds it even while
// an unlimited-hearts override is active.
const MaxHearts = 20

// DefaultLanguage is assigned to fresh states until the user picks one.
const DefaultLanguage = "es"

// QuestInstance is a concrete quest generated from an archetype for one
// calendar period. Only Progress and Completed change after generation.
type QuestInstance struct {
	ID        string    `json:"id"`
	TypeID    int       `json:"type_id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Metric    string    `json:"metric"`
	Target    int       `json:"target"`
	Progress  int       `json:"progress"`
	XPReward  int       `json:"xp_reward"`
	GemReward int       `json:"gem_reward"`
	IsWeekly  bool      `json:"is_weekly"`
	IsMonthly bool      `json:"is_monthly"`
	Completed bool      `json:"completed"`
	ExpiresAt time.Time `json:"expires_at"`
}

// InventoryItem is one entry in the append-only purchase ledger.
// Consumables are applied at purchase time, never removed from the ledger.
type InventoryItem struct {
	ItemID      string    `json:"item_id"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// State holds all progression data for one user. It is owned exclusively by
// the Store and must only be mutated through Store mutators.
type State struct {
	UserID string `json:"user_id"`

	XP   int `json:"xp"`
	Gems int `json:"gems"`

	Hearts                int        `json:"hearts"`
	LastHeartChangeAt     *time.Time `json:"last_heart_change_at,omitempty"`
	UnlimitedHearts       bool       `json:"unlimited_hearts"`
	UnlimitedHeartsExpiry *time.Time `json:"unlimited_hearts_expiry,omitempty"`

	Streak         int        `json:"streak"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`

	LeagueID         int    `json:"league_id"`
	LearningLanguage string `json:"learning_language"`

	// Keys are languageCode:lessonID. Membership is the cheap idempotence
	// check for lesson completion.
	CompletedLessons map[string]bool `json:"completed_lessons"`

	Inventory       []InventoryItem `json:"inventory"`
	ActiveQuests    []QuestInstance `json:"active_quests"`
	CompletedQuests []QuestInstance `json:"completed_quests"`
}

// NewState returns the default initial state for a user. Hearts start full
// so no regeneration debt exists.
func NewState(userID string) *State {
	return &State{
		UserID:           userID,
		Gems:             100,
		Hearts:           MaxHearts,
		LeagueID:         1,
		LearningLanguage: DefaultLanguage,
		CompletedLessons: make(map[string]bool),
	}
}

// LessonKey builds the composite completed-lessons key.
func LessonKey(languageCode, lessonID string) string {
	return fmt.Sprintf("%s:%s", languageCode, lessonID)
}

// HasCompletedLesson reports whether the lesson was already completed.
func (s *State) HasCompletedLesson(languageCode, lessonID string) bool {
	return s.CompletedLessons[LessonKey(languageCode, lessonID)]
}

// LessonCount returns the number of completed lessons for one language.
func (s *State) LessonCount(languageCode string) int {
	prefix := languageCode + ":"
	n := 0
	for key := range s.CompletedLessons {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

// Clone returns a deep copy safe to hand to callers outside the Store.
func (s *State) Clone() *State {
	out := *s
	if s.LastHeartChangeAt != nil {
		t := *s.LastHeartChangeAt
		out.LastHeartChangeAt = &t
	}
	if s.UnlimitedHeartsExpiry != nil {
		t := *s.UnlimitedHeartsExpiry
		out.UnlimitedHeartsExpiry = &t
	}
	if s.LastActivityAt != nil {
		t := *s.LastActivityAt
		out.LastActivityAt = &t
	}
	out.CompletedLessons = make(map[string]bool, len(s.CompletedLessons))
	for k, v := range s.CompletedLessons {
		out.CompletedLessons[k] = v
	}
	out.Inventory = append([]InventoryItem(nil), s.Inventory...)
	out.ActiveQuests = append([]QuestInstance(nil), s.ActiveQuests...)
	out.CompletedQuests = append([]QuestInstance(nil), s.CompletedQuests...)
	return &out
}
