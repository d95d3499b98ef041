// handlers/shop.go
package handlers

import (
	"lingua/middleware"
	"lingua/services"

	"github.com/gofiber/fiber/v2"
)

type PurchaseRequest struct {
	ItemID string `json:"item_id"`
}

// ShopItem is a fixed-catalog entry purchasable with gems.
type ShopItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int    `json:"cost"`
}

var shopCatalog = []ShopItem{
	{ID: "heart_refill", Name: "Heart Refill", Description: "Restore all hearts instantly", Cost: 350},
	{ID: "unlimited_hearts_day", Name: "Unlimited Hearts (24h)", Description: "No heart loss for a full day", Cost: 1000},
	{ID: "streak_freeze", Name: "Streak Freeze", Description: "Protect your streak for one missed day", Cost: 200},
	{ID: "double_xp_boost", Name: "Double XP Boost", Description: "2x XP for your next lesson", Cost: 150},
	{ID: "timed_challenge", Name: "Timed Challenge", Description: "Unlock a timed bonus round", Cost: 100},
}

func shopItemByID(id string) (ShopItem, bool) {
	for _, item := range shopCatalog {
		if item.ID == id {
			return item, true
		}
	}
	return ShopItem{}, false
}

// GetShopItems returns the catalog with the caller's gem balance.
func GetShopItems(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	state := services.GetStoreManager().Get(userID).Snapshot()
	return c.JSON(fiber.Map{
		"success": true,
		"items":   shopCatalog,
		"gems":    state.Gems,
	})
}

// PurchaseItem spends gems on a catalog item. Consumable effects (refill,
// unlimited hearts) apply immediately; every purchase lands in the
// append-only inventory ledger.
func PurchaseItem(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	item, ok := shopItemByID(req.ItemID)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Unknown shop item"})
	}

	store := services.GetStoreManager().Get(userID)
	if !store.SpendGems(item.Cost) {
		state := store.Snapshot()
		return c.Status(400).JSON(fiber.Map{
			"error":     "Insufficient gems",
			"required":  item.Cost,
			"available": state.Gems,
		})
	}

	switch item.ID {
	case "heart_refill":
		store.RefillHearts()
	case "unlimited_hearts_day":
		store.GrantUnlimitedHearts(24)
	}
	store.Purchase(item.ID)

	state := store.Snapshot()
	return c.JSON(fiber.Map{
		"success":        true,
		"item":           item,
		"cost":           item.Cost,
		"remaining_gems": state.Gems,
		"hearts":         state.Hearts,
	})
}

// GetInventory returns the purchase ledger.
func GetInventory(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	state := services.GetStoreManager().Get(userID).Snapshot()
	return c.JSON(fiber.Map{
		"success":   true,
		"inventory": state.Inventory,
		"gems":      state.Gems,
	})
}
