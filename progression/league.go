// progression/league.go
package progression

// Zone classifies a ranked participant within their league for display and
// reward preview. Actual league advancement is a server-side batch process
// outside this package; nothing here mutates LeagueID.
type Zone string

const (
	ZonePromotion Zone = "promotion"
	ZoneSafe      Zone = "safe"
	ZoneDemotion  Zone = "demotion"
)

// League is one tier in the fixed ladder.
type League struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	MinXP             int    `json:"min_xp"`
	PromotionCount    int    `json:"promotion_count"`
	DemotionThreshold int    `json:"demotion_threshold"`
	BaseReward        int    `json:"base_reward"`
}

// Leagues is the fixed ordered ladder, Bronze through Diamond.
var Leagues = []League{
	{ID: 1, Name: "Bronze", MinXP: 0, PromotionCount: 10, DemotionThreshold: 30, BaseReward: 20},
	{ID: 2, Name: "Silver", MinXP: 100, PromotionCount: 10, DemotionThreshold: 28, BaseReward: 30},
	{ID: 3, Name: "Gold", MinXP: 300, PromotionCount: 8, DemotionThreshold: 26, BaseReward: 40},
	{ID: 4, Name: "Sapphire", MinXP: 700, PromotionCount: 8, DemotionThreshold: 25, BaseReward: 50},
	{ID: 5, Name: "Ruby", MinXP: 1500, PromotionCount: 7, DemotionThreshold: 24, BaseReward: 60},
	{ID: 6, Name: "Emerald", MinXP: 3000, PromotionCount: 7, DemotionThreshold: 23, BaseReward: 80},
	{ID: 7, Name: "Amethyst", MinXP: 6000, PromotionCount: 6, DemotionThreshold: 22, BaseReward: 100},
	{ID: 8, Name: "Pearl", MinXP: 12000, PromotionCount: 6, DemotionThreshold: 21, BaseReward: 130},
	{ID: 9, Name: "Obsidian", MinXP: 25000, PromotionCount: 5, DemotionThreshold: 20, BaseReward: 170},
	{ID: 10, Name: "Diamond", MinXP: 50000, PromotionCount: 0, DemotionThreshold: 16, BaseReward: 250},
}

// LeagueByID returns the league for an id, falling back to Bronze for
// anything out of range.
func LeagueByID(id int) League {
	for _, l := range Leagues {
		if l.ID == id {
			return l
		}
	}
	return Leagues[0]
}

// RankedUser is one leaderboard row, constructed per render from a remote
// query result. Not persisted by this package.
type RankedUser struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"user_id"`
	Username      string `json:"username"`
	XP            int    `json:"xp"`
	IsCurrentUser bool   `json:"is_current_user"`
	Zone          Zone   `json:"zone"`
}

// Classify maps a rank into its zone. Ranks are 1-based; demotionStart is
// the first demoted rank.
func Classify(rank, totalParticipants, promotionCount, demotionStart int) Zone {
	switch {
	case rank <= promotionCount:
		return ZonePromotion
	case rank >= demotionStart:
		return ZoneDemotion
	default:
		return ZoneSafe
	}
}

// RewardFor previews the end-of-week gem reward for a rank in a league.
// Top three ranks carry multipliers over the tier's base reward.
func RewardFor(leagueID, rank int) int {
	base := LeagueByID(leagueID).BaseReward
	switch rank {
	case 1:
		return base * 3
	case 2:
		return base * 2
	case 3:
		return base * 3 / 2
	default:
		return base
	}
}
