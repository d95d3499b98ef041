// handlers/progression.go
package handlers

import (
	"context"

	"lingua/middleware"
	"lingua/progression"
	"lingua/services"

	"github.com/gofiber/fiber/v2"
)

type CompleteLessonRequest struct {
	LanguageCode string `json:"language_code"`
	LessonID     string `json:"lesson_id"`
	Mistakes     int    `json:"mistakes"`
	XPReward     int    `json:"xp_reward"`
	GemReward    int    `json:"gem_reward"`
}

type AwardXPRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

type SwitchLanguageRequest struct {
	LanguageCode string `json:"language_code"`
}

// GetProgression returns the full progression snapshot with regeneration
// applied.
func GetProgression(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	store := services.GetStoreManager().Get(userID)
	state := store.Snapshot()

	return c.JSON(fiber.Map{
		"success":            true,
		"xp":                 state.XP,
		"gems":               state.Gems,
		"hearts":             state.Hearts,
		"max_hearts":         progression.MaxHearts,
		"next_heart_in":      store.NextHeartCountdown(),
		"unlimited_hearts":   store.UnlimitedActive(),
		"streak":             state.Streak,
		"league":             progression.LeagueByID(state.LeagueID),
		"learning_language":  state.LearningLanguage,
		"lessons_completed":  state.LessonCount(state.LearningLanguage),
		"inventory":          state.Inventory,
	})
}

// CompleteLesson is the main gameplay endpoint: rewards, streak, hearts and
// quest progress in one atomic store mutation.
func CompleteLesson(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req CompleteLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.LanguageCode == "" || req.LessonID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "language_code and lesson_id required"})
	}
	if req.Mistakes < 0 || req.XPReward < 0 || req.GemReward < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Negative values not allowed"})
	}

	store := services.GetStoreManager().Get(userID)
	result := store.CompleteLesson(req.LanguageCode, req.LessonID, req.Mistakes, req.XPReward, req.GemReward)

	if !result.AlreadyCompleted && req.XPReward > 0 {
		// Weekly league standings mirror, best-effort like the profile push.
		state := store.Snapshot()
		go services.GetLeaderboard().RecordXP(context.Background(), state.LeagueID, userID, req.XPReward)
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"already_completed": result.AlreadyCompleted,
		"xp_earned":         result.XPEarned,
		"gems_earned":       result.GemsEarned,
		"xp":                result.XP,
		"gems":              result.Gems,
		"hearts":            result.Hearts,
		"streak":            result.Streak,
		"quests_completed":  result.QuestsCompleted,
	})
}

// AwardXP credits XP outside a lesson (practice sessions, events).
func AwardXP(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req AwardXPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Amount <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "XP amount must be positive"})
	}

	store := services.GetStoreManager().Get(userID)
	newXP := store.AddXP(req.Amount)

	state := store.Snapshot()
	go services.GetLeaderboard().RecordXP(context.Background(), state.LeagueID, userID, req.Amount)

	return c.JSON(fiber.Map{
		"success":    true,
		"xp_awarded": req.Amount,
		"xp":         newXP,
		"reason":     req.Reason,
	})
}

// RecordPractice registers activity for the streak without lesson rewards.
func RecordPractice(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	store := services.GetStoreManager().Get(userID)
	streak := store.RecordActivity()

	return c.JSON(fiber.Map{"success": true, "streak": streak})
}

// SwitchLanguage changes the active learning language. Progress in other
// languages is kept.
func SwitchLanguage(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req SwitchLanguageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.LanguageCode == "" {
		return c.Status(400).JSON(fiber.Map{"error": "language_code required"})
	}

	store := services.GetStoreManager().Get(userID)
	store.SwitchLanguage(req.LanguageCode)
	state := store.Snapshot()

	return c.JSON(fiber.Map{
		"success":           true,
		"learning_language": state.LearningLanguage,
		"lessons_completed": state.LessonCount(state.LearningLanguage),
	})
}

// ResetProgress discards all progression state for the caller. This is the
// only way state is ever destroyed.
func ResetProgress(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	store := services.GetStoreManager().Get(userID)
	store.ResetProgress()

	return c.JSON(fiber.Map{"success": true})
}
