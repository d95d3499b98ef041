// handlers/hearts.go
package handlers

import (
	"lingua/middleware"
	"lingua/progression"
	"lingua/services"

	"github.com/gofiber/fiber/v2"
)

// GetHearts returns the current heart count after lazy regeneration, plus
// the countdown to the next heart for display.
func GetHearts(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	store := services.GetStoreManager().Get(userID)
	state := store.Snapshot()

	return c.JSON(fiber.Map{
		"success":          true,
		"hearts":           state.Hearts,
		"max_hearts":       progression.MaxHearts,
		"next_heart_in":    store.NextHeartCountdown(),
		"unlimited_hearts": store.UnlimitedActive(),
	})
}

// ConsumeHeart spends one heart (a mistake outside the lesson-completion
// flow). A no-op while the unlimited override is active.
func ConsumeHeart(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	store := services.GetStoreManager().Get(userID)
	hearts := store.ConsumeHeart()

	return c.JSON(fiber.Map{
		"success":       true,
		"hearts":        hearts,
		"next_heart_in": store.NextHeartCountdown(),
	})
}
