// handlers/admin/users.go
package admin

import (
	"strconv"

	"lingua/database"
	"lingua/models"
	"lingua/services"

	"github.com/gofiber/fiber/v2"
)

// GetUsers lists profiles with pagination.
// GET /api/admin/users?limit=50&offset=0&search=...
func GetUsers(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	db := database.GetDB()
	query := db.Model(&models.User{})
	if search := c.Query("search"); search != "" {
		query = query.Where("username ILIKE ?", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch users"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"users":   users,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetUser returns one profile row plus the live progression snapshot.
func GetUser(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user id"})
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, uint(id)).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	state := services.GetStoreManager().Get(uint(id)).Snapshot()
	return c.JSON(fiber.Map{
		"success":     true,
		"user":        user,
		"progression": state,
	})
}

// ResetUserStreak forces a user's streak to zero. This is the explicit
// admin reset, distinct from natural lapse handling.
func ResetUserStreak(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user id"})
	}

	store := services.GetStoreManager().Get(uint(id))
	store.ResetStreak()

	return c.JSON(fiber.Map{"success": true})
}

// ResetUserProgress discards a user's entire progression state.
func ResetUserProgress(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user id"})
	}

	store := services.GetStoreManager().Get(uint(id))
	store.ResetProgress()

	return c.JSON(fiber.Map{"success": true})
}

// DeleteUser removes a profile row. The local progression blob is left in
// place; it is unreachable once the id is gone.
func DeleteUser(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user id"})
	}

	if err := database.GetDB().Delete(&models.User{}, uint(id)).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete user"})
	}
	return c.JSON(fiber.Map{"success": true})
}
