// handlers/quests.go
package handlers

import (
	"lingua/middleware"
	"lingua/progression"
	"lingua/services"

	"github.com/gofiber/fiber/v2"
)

type ClaimQuestRequest struct {
	QuestID string `json:"quest_id"`
}

// GetQuests rolls periods over if needed and returns the active quest sets.
// Regeneration is idempotent per (user, period): hitting this twice on the
// same day returns the same ids and targets.
func GetQuests(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	store := services.GetStoreManager().Get(userID)
	active := store.EnsureQuests()

	daily := make([]progression.QuestInstance, 0, len(active))
	weekly := make([]progression.QuestInstance, 0, 4)
	var monthly []progression.QuestInstance
	for _, q := range active {
		switch {
		case q.IsMonthly:
			monthly = append(monthly, q)
		case q.IsWeekly:
			weekly = append(weekly, q)
		default:
			daily = append(daily, q)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"daily":   daily,
		"weekly":  weekly,
		"monthly": monthly,
	})
}

// GetCompletedQuests returns the append-only archive.
func GetCompletedQuests(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	state := services.GetStoreManager().Get(userID).Snapshot()
	return c.JSON(fiber.Map{
		"success": true,
		"quests":  state.CompletedQuests,
		"total":   len(state.CompletedQuests),
	})
}

// ClaimQuest completes a client-tracked quest and awards its rewards.
func ClaimQuest(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req ClaimQuestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.QuestID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "quest_id required"})
	}

	store := services.GetStoreManager().Get(userID)
	quest, ok := store.ClaimQuest(req.QuestID)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Quest not claimable"})
	}

	state := store.Snapshot()
	return c.JSON(fiber.Map{
		"success":    true,
		"quest":      quest,
		"xp_reward":  quest.XPReward,
		"gem_reward": quest.GemReward,
		"xp":         state.XP,
		"gems":       state.Gems,
	})
}
