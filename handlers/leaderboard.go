// handlers/leaderboard.go
package handlers

import (
	"strconv"

	"lingua/database"
	"lingua/middleware"
	"lingua/models"
	"lingua/progression"
	"lingua/services"

	"github.com/gofiber/fiber/v2"
)

// GetLeagueStandings returns this week's ranked list for the caller's
// league, with each row classified into its promotion/safe/demotion zone
// and the caller's reward preview.
func GetLeagueStandings(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	store := services.GetStoreManager().Get(userID)
	state := store.Snapshot()
	league := progression.LeagueByID(state.LeagueID)

	limit := parseIntDefault(c.Query("limit"), 30)
	limit = clampInt(limit, 1, 50)

	entries, err := services.GetLeaderboard().Standings(c.Context(), league.ID, limit)
	if err != nil {
		// Standings are informational; an unreachable Redis just yields an
		// empty board, not an error page.
		entries = nil
	}

	ids := make([]uint, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.UserID)
	}
	names := usernamesByID(ids)

	ranked := make([]progression.RankedUser, 0, len(entries))
	var callerRank int
	for _, e := range entries {
		zone := progression.Classify(e.Rank, len(entries), league.PromotionCount, league.DemotionThreshold)
		ru := progression.RankedUser{
			Rank:          e.Rank,
			UserID:        strconv.FormatUint(uint64(e.UserID), 10),
			Username:      names[e.UserID],
			XP:            e.XP,
			IsCurrentUser: e.UserID == userID,
			Zone:          zone,
		}
		if ru.IsCurrentUser {
			callerRank = e.Rank
		}
		ranked = append(ranked, ru)
	}

	response := fiber.Map{
		"success":  true,
		"league":   league,
		"entries":  ranked,
		"total":    len(ranked),
	}
	if callerRank > 0 {
		response["rank"] = callerRank
		response["zone"] = progression.Classify(callerRank, len(ranked), league.PromotionCount, league.DemotionThreshold)
		response["reward_preview"] = progression.RewardFor(league.ID, callerRank)
	}
	return c.JSON(response)
}

// GetLeagues returns the fixed league ladder.
func GetLeagues(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"leagues": progression.Leagues,
	})
}

// GetUserRank returns the caller's current rank and zone.
func GetUserRank(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	state := services.GetStoreManager().Get(userID).Snapshot()
	league := progression.LeagueByID(state.LeagueID)

	rank := services.GetLeaderboard().Rank(c.Context(), league.ID, userID)
	if rank == 0 {
		return c.JSON(fiber.Map{
			"success": true,
			"league":  league,
			"ranked":  false,
		})
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"league":         league,
		"ranked":         true,
		"rank":           rank,
		"zone":           progression.Classify(rank, 0, league.PromotionCount, league.DemotionThreshold),
		"reward_preview": progression.RewardFor(league.ID, rank),
	})
}

func usernamesByID(ids []uint) map[uint]string {
	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names
	}
	var users []models.User
	if err := database.GetDB().Select("id", "username").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return names
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names
}

// helpers
func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
