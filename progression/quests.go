// progression/quests.go
package progression

import (
	"fmt"
	"hash/fnv"
	"time"
)

// Quest progress metrics. Store mutators emit events against these.
const (
	MetricLessons        = "lessons"
	MetricXP             = "xp"
	MetricPerfectLessons = "perfect_lessons"
	MetricStreak         = "streak"
	MetricQuests         = "quests"
	MetricPurchases      = "purchases"
	MetricManual         = "manual"
)

// Quest categories.
const (
	CategoryDailyPractice = "daily-practice"
	CategorySkillBuilding = "skill-building"
	CategoryAchievements  = "achievements"
	CategoryChallenges    = "challenges"
	CategorySpecial       = "special"
)

// Archetype is a quest template: title pattern, reward formula and valid
// target range. Instantiated into a QuestInstance per calendar period.
type Archetype struct {
	ID        int
	Category  string
	Title     string // fmt pattern taking the sampled target
	Metric    string
	MinTarget int
	MaxTarget int
	XPReward  int
	GemReward int
}

// Archetypes is the full quest catalog. Daily generation draws from ids
// 1-40, weekly generation from the named big-quest subset, and the monthly
// challenge is the single fixed archetype below.
var Archetypes = []Archetype{
	// daily-practice (1-20)
	{1, CategoryDailyPractice, "Complete %d lessons", MetricLessons, 1, 3, 20, 5},
	{2, CategoryDailyPractice, "Earn %d XP", MetricXP, 20, 60, 15, 5},
	{3, CategoryDailyPractice, "Finish %d perfect lessons", MetricPerfectLessons, 1, 2, 30, 10},
	{4, CategoryDailyPractice, "Complete %d lessons without losing a heart", MetricManual, 1, 2, 25, 8},
	{5, CategoryDailyPractice, "Practice %d different skills", MetricManual, 2, 4, 20, 6},
	{6, CategoryDailyPractice, "Earn %d XP before noon", MetricManual, 10, 30, 25, 8},
	{7, CategoryDailyPractice, "Complete %d listening exercises", MetricManual, 3, 8, 15, 5},
	{8, CategoryDailyPractice, "Complete %d speaking exercises", MetricManual, 3, 8, 15, 5},
	{9, CategoryDailyPractice, "Translate %d sentences", MetricManual, 5, 15, 15, 5},
	{10, CategoryDailyPractice, "Review %d old words", MetricManual, 5, 20, 15, 5},
	{11, CategoryDailyPractice, "Learn %d new words", MetricManual, 3, 10, 20, 6},
	{12, CategoryDailyPractice, "Complete %d lessons in a row", MetricLessons, 2, 4, 25, 8},
	{13, CategoryDailyPractice, "Earn %d XP in one lesson", MetricManual, 15, 30, 20, 6},
	{14, CategoryDailyPractice, "Spend %d minutes learning", MetricManual, 5, 20, 15, 5},
	{15, CategoryDailyPractice, "Complete a lesson in under %d minutes", MetricManual, 2, 5, 20, 6},
	{16, CategoryDailyPractice, "Get %d answers right in a row", MetricManual, 5, 15, 20, 6},
	{17, CategoryDailyPractice, "Complete %d stories", MetricManual, 1, 2, 25, 8},
	{18, CategoryDailyPractice, "Do %d practice sessions", MetricManual, 1, 3, 15, 5},
	{19, CategoryDailyPractice, "Earn %d XP from practice", MetricManual, 10, 40, 15, 5},
	{20, CategoryDailyPractice, "Complete %d quests today", MetricQuests, 1, 2, 20, 10},
	// skill-building (21-40)
	{21, CategorySkillBuilding, "Master %d grammar points", MetricManual, 1, 3, 30, 10},
	{22, CategorySkillBuilding, "Finish %d units", MetricManual, 1, 2, 40, 12},
	{23, CategorySkillBuilding, "Strengthen %d weak skills", MetricManual, 1, 3, 25, 8},
	{24, CategorySkillBuilding, "Complete %d vocabulary drills", MetricManual, 2, 5, 20, 6},
	{25, CategorySkillBuilding, "Write %d sentences", MetricManual, 3, 10, 20, 6},
	{26, CategorySkillBuilding, "Conjugate %d verbs correctly", MetricManual, 5, 15, 20, 6},
	{27, CategorySkillBuilding, "Match %d word pairs", MetricManual, 10, 25, 15, 5},
	{28, CategorySkillBuilding, "Complete %d pronunciation drills", MetricManual, 2, 6, 20, 6},
	{29, CategorySkillBuilding, "Pass %d checkpoint quizzes", MetricManual, 1, 2, 35, 12},
	{30, CategorySkillBuilding, "Repair %d broken skills", MetricManual, 1, 3, 25, 8},
	{31, CategorySkillBuilding, "Read %d short texts", MetricManual, 1, 4, 20, 6},
	{32, CategorySkillBuilding, "Answer %d comprehension questions", MetricManual, 5, 12, 20, 6},
	{33, CategorySkillBuilding, "Complete %d timed challenges", MetricManual, 1, 3, 25, 8},
	{34, CategorySkillBuilding, "Finish %d mixed-skill reviews", MetricManual, 1, 3, 25, 8},
	{35, CategorySkillBuilding, "Score %d%% or better on a quiz", MetricManual, 80, 95, 30, 10},
	{36, CategorySkillBuilding, "Practice numbers for %d minutes", MetricManual, 3, 10, 15, 5},
	{37, CategorySkillBuilding, "Complete %d dialogue exercises", MetricManual, 2, 5, 20, 6},
	{38, CategorySkillBuilding, "Label %d pictures correctly", MetricManual, 8, 20, 15, 5},
	{39, CategorySkillBuilding, "Fill %d gaps correctly", MetricManual, 8, 20, 15, 5},
	{40, CategorySkillBuilding, "Earn %d XP from new material", MetricManual, 15, 50, 25, 8},
	// achievements (41-60)
	{41, CategoryAchievements, "Reach a %d-day streak", MetricStreak, 3, 7, 50, 20},
	{42, CategoryAchievements, "Complete %d lessons this week", MetricLessons, 10, 20, 60, 25},
	{43, CategoryAchievements, "Earn %d XP this week", MetricXP, 150, 400, 60, 25},
	{44, CategoryAchievements, "Finish %d perfect lessons this week", MetricPerfectLessons, 3, 8, 70, 30},
	{45, CategoryAchievements, "Complete %d quests this week", MetricQuests, 5, 12, 60, 25},
	{46, CategoryAchievements, "Keep a full heart count for %d days", MetricManual, 2, 5, 50, 20},
	{47, CategoryAchievements, "Learn %d new words this week", MetricManual, 20, 50, 60, 25},
	{48, CategoryAchievements, "Practice every day for %d days", MetricStreak, 5, 7, 80, 35},
	{49, CategoryAchievements, "Finish %d units this week", MetricManual, 2, 5, 70, 30},
	{50, CategoryAchievements, "Review %d skills this week", MetricManual, 5, 15, 50, 20},
	{51, CategoryAchievements, "Complete %d stories this week", MetricManual, 3, 7, 60, 25},
	{52, CategoryAchievements, "Spend %d minutes learning this week", MetricManual, 30, 90, 50, 20},
	{53, CategoryAchievements, "Earn %d XP without losing hearts", MetricManual, 50, 150, 70, 30},
	{54, CategoryAchievements, "Complete %d listening exercises this week", MetricManual, 10, 25, 50, 20},
	{55, CategoryAchievements, "Complete %d speaking exercises this week", MetricManual, 10, 25, 50, 20},
	{56, CategoryAchievements, "Translate %d sentences this week", MetricManual, 20, 60, 50, 20},
	{57, CategoryAchievements, "Make %d shop purchases", MetricPurchases, 1, 3, 40, 15},
	{58, CategoryAchievements, "Win %d XP challenges", MetricManual, 2, 6, 60, 25},
	{59, CategoryAchievements, "Pass %d checkpoints this week", MetricManual, 1, 3, 80, 35},
	{60, CategoryAchievements, "Hold a top-10 league spot for %d days", MetricManual, 2, 5, 80, 35},
	// challenges (61-80)
	{61, CategoryChallenges, "Beat your weekly XP record by %d", MetricManual, 10, 50, 90, 40},
	{62, CategoryChallenges, "Complete %d hard lessons", MetricManual, 3, 8, 80, 35},
	{63, CategoryChallenges, "Finish %d lessons with zero mistakes", MetricPerfectLessons, 5, 10, 90, 40},
	{64, CategoryChallenges, "Earn %d XP in a single day", MetricManual, 50, 120, 80, 35},
	{65, CategoryChallenges, "Complete %d legendary levels", MetricManual, 1, 3, 100, 45},
	{66, CategoryChallenges, "Survive %d timed rounds", MetricManual, 3, 8, 70, 30},
	{67, CategoryChallenges, "Win %d duels", MetricManual, 2, 5, 80, 35},
	{68, CategoryChallenges, "Answer %d questions in 5 minutes", MetricManual, 20, 40, 70, 30},
	{69, CategoryChallenges, "Finish %d lessons before 9am", MetricManual, 2, 5, 70, 30},
	{70, CategoryChallenges, "Complete %d night-owl sessions", MetricManual, 2, 5, 70, 30},
	{71, CategoryChallenges, "Clear %d review piles", MetricManual, 2, 6, 70, 30},
	{72, CategoryChallenges, "Complete %d lessons in one sitting", MetricManual, 4, 8, 80, 35},
	{73, CategoryChallenges, "Restore %d hearts through practice", MetricManual, 3, 8, 60, 25},
	{74, CategoryChallenges, "Keep an accuracy above %d%% all week", MetricManual, 85, 95, 100, 45},
	{75, CategoryChallenges, "Complete %d units without skipping", MetricManual, 1, 3, 90, 40},
	{76, CategoryChallenges, "Double your daily XP goal %d times", MetricManual, 2, 5, 80, 35},
	{77, CategoryChallenges, "Complete %d speed rounds", MetricManual, 3, 8, 70, 30},
	{78, CategoryChallenges, "Earn %d gems from quests", MetricManual, 30, 80, 70, 30},
	{79, CategoryChallenges, "Finish %d lessons in a new skill", MetricManual, 3, 6, 70, 30},
	{80, CategoryChallenges, "Climb %d league ranks", MetricManual, 3, 10, 90, 40},
	// special (81-100)
	{81, CategorySpecial, "Greet the day: finish %d lesson before breakfast", MetricManual, 1, 1, 40, 15},
	{82, CategorySpecial, "Weekend warrior: earn %d XP on the weekend", MetricManual, 40, 100, 60, 25},
	{83, CategorySpecial, "Comeback: practice after %d days away", MetricManual, 2, 2, 50, 20},
	{84, CategorySpecial, "Polyglot: practice %d languages", MetricManual, 2, 3, 60, 25},
	{85, CategorySpecial, "Perfect week: %d perfect days", MetricManual, 5, 7, 120, 50},
	{86, CategorySpecial, "Early bird: %d sunrise sessions", MetricManual, 2, 4, 50, 20},
	{87, CategorySpecial, "Gem hoarder: save up %d gems", MetricManual, 200, 500, 60, 25},
	{88, CategorySpecial, "Generous: gift %d gems to a friend", MetricManual, 20, 50, 40, 15},
	{89, CategorySpecial, "Collector: own %d shop items", MetricPurchases, 2, 5, 50, 20},
	{90, CategorySpecial, "Untouchable: %d lessons with full hearts", MetricManual, 3, 8, 70, 30},
	{91, CategorySpecial, "Marathon: one %d-lesson day", MetricManual, 5, 10, 90, 40},
	{92, CategorySpecial, "Scholar: review %d grammar notes", MetricManual, 3, 8, 40, 15},
	{93, CategorySpecial, "Storyteller: finish %d story chapters", MetricManual, 2, 5, 60, 25},
	{94, CategorySpecial, "Globetrotter: complete %d culture lessons", MetricManual, 1, 3, 50, 20},
	{95, CategorySpecial, "Quiz master: ace %d quizzes", MetricManual, 2, 5, 70, 30},
	{96, CategorySpecial, "Streak saver: protect a %d-day streak", MetricManual, 7, 30, 80, 35},
	{97, CategorySpecial, "Socialite: follow %d learners", MetricManual, 2, 5, 30, 10},
	{98, CategorySpecial, "Champion: finish top %d in your league", MetricManual, 1, 3, 120, 50},
	{99, CategorySpecial, "Completionist: clear %d whole skill rows", MetricManual, 1, 2, 100, 45},
	{100, CategorySpecial, "Monthly challenge: complete %d lessons this month", MetricLessons, 30, 30, 500, 200},
}

// weeklyPoolIDs names the big archetypes eligible for weekly quests.
var weeklyPoolIDs = []int{41, 42, 43, 44, 45, 47, 48, 53, 61, 63, 64, 74, 82, 85, 91}

// monthlyArchetypeID is the single fixed monthly challenge.
const monthlyArchetypeID = 100

const (
	weeklyRewardFactor = 2
	monthlyXPBonus     = 500
	monthlyGemBonus    = 200
)

// ─── Deterministic PRNG ─────────────────────────────────────────────────────

// rng is a 64-bit linear congruential generator (Knuth MMIX constants)
// seeded from an FNV-1a hash of the period key. The only contract is that
// the same key always yields the same sequence.
type rng struct{ s uint64 }

func newRNG(key string) *rng {
	h := fnv.New64a()
	h.Write([]byte(key))
	return &rng{s: h.Sum64()}
}

func (r *rng) next() uint64 {
	r.s = r.s*6364136223846793005 + 1442695040888963407
	return r.s
}

func (r *rng) intn(n int) int {
	if n <= 1 {
		return 0
	}
	return int((r.next() >> 11) % uint64(n))
}

func (r *rng) shuffle(pool []Archetype) {
	for i := len(pool) - 1; i > 0; i-- {
		j := r.intn(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
}

// ─── Period keys ────────────────────────────────────────────────────────────

// DailyKey identifies one user-day. Same key, same quest set.
func DailyKey(userID string, now time.Time) string {
	return fmt.Sprintf("%s:%s", userID, now.Format("2006-01-02"))
}

// WeeklyKey identifies one user-ISO-week.
func WeeklyKey(userID string, now time.Time) string {
	year, week := now.ISOWeek()
	return fmt.Sprintf("%s:%d-W%02d", userID, year, week)
}

// MonthlyKey identifies one user-month.
func MonthlyKey(userID string, now time.Time) string {
	return fmt.Sprintf("%s:%s", userID, now.Format("2006-01"))
}

// EndOfDay is the last instant of now's calendar day (daily quest expiry).
func EndOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999e6, now.Location())
}

// EndOfMonth is the last instant of now's calendar month.
func EndOfMonth(now time.Time) time.Time {
	firstOfNext := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
	return firstOfNext.Add(-time.Millisecond)
}

// ─── Generation ─────────────────────────────────────────────────────────────

// GenerateDaily returns the deterministic daily quest set for a user-day.
// Pure and total: calling it twice with the same inputs yields identical
// ids and targets, and any userID (including empty) is valid.
func GenerateDaily(userID string, count int, now time.Time) []QuestInstance {
	key := DailyKey(userID, now)
	pool := make([]Archetype, 0, 40)
	for _, a := range Archetypes {
		if a.ID <= 40 {
			pool = append(pool, a)
		}
	}
	return instantiate(key, pool, count, EndOfDay(now), 1, false, false)
}

// GenerateWeekly returns the deterministic weekly quest set. Rewards are
// doubled over the archetype base; expiry is seven days out.
func GenerateWeekly(userID string, count int, now time.Time) []QuestInstance {
	key := WeeklyKey(userID, now)
	pool := make([]Archetype, 0, len(weeklyPoolIDs))
	for _, id := range weeklyPoolIDs {
		pool = append(pool, Archetypes[id-1])
	}
	return instantiate(key, pool, count, now.Add(7*24*time.Hour), weeklyRewardFactor, true, false)
}

// GenerateMonthly returns the single monthly challenge with its fixed
// target and a large fixed bonus.
func GenerateMonthly(userID string, now time.Time) QuestInstance {
	key := MonthlyKey(userID, now)
	a := Archetypes[monthlyArchetypeID-1]
	q := buildQuest(key, a, a.MinTarget, EndOfMonth(now))
	q.XPReward = monthlyXPBonus
	q.GemReward = monthlyGemBonus
	q.IsMonthly = true
	return q
}

func instantiate(key string, pool []Archetype, count int, expiresAt time.Time, rewardFactor int, weekly, monthly bool) []QuestInstance {
	r := newRNG(key)
	r.shuffle(pool)
	if count > len(pool) {
		count = len(pool)
	}
	if count < 0 {
		count = 0
	}

	quests := make([]QuestInstance, 0, count)
	for _, a := range pool[:count] {
		target := a.MinTarget + r.intn(a.MaxTarget-a.MinTarget+1)
		q := buildQuest(key, a, target, expiresAt)
		q.XPReward *= rewardFactor
		q.GemReward *= rewardFactor
		q.IsWeekly = weekly
		q.IsMonthly = monthly
		quests = append(quests, q)
	}
	return quests
}

func buildQuest(periodKey string, a Archetype, target int, expiresAt time.Time) QuestInstance {
	return QuestInstance{
		ID:        fmt.Sprintf("%s:%d", periodKey, a.ID),
		TypeID:    a.ID,
		Title:     fmt.Sprintf(a.Title, target),
		Category:  a.Category,
		Metric:    a.Metric,
		Target:    target,
		XPReward:  a.XPReward,
		GemReward: a.GemReward,
		ExpiresAt: expiresAt,
	}
}
