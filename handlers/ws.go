// handlers/ws.go
package handlers

import (
	"time"

	"lingua/progression"
	"lingua/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ProgressionFeedUpgrade gates /ws/progression to websocket requests. Auth
// middleware has already stored the user id in locals; stash it for the
// websocket handler, which runs outside the fiber context.
func ProgressionFeedUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

type progressionFrame struct {
	XP            int  `json:"xp"`
	Gems          int  `json:"gems"`
	Hearts        int  `json:"hearts"`
	MaxHearts     int  `json:"max_hearts"`
	NextHeartIn   int  `json:"next_heart_in"`
	Streak        int  `json:"streak"`
	ActiveQuests  int  `json:"active_quests"`
	QuestsPending int  `json:"quests_pending"`
	Unlimited     bool `json:"unlimited_hearts"`
}

// ProgressionFeed streams a state snapshot every second so the client can
// render a live heart countdown without polling. The tick drives display
// freshness only; regeneration stays lazy and correct without it.
var ProgressionFeed = websocket.New(func(conn *websocket.Conn) {
	userID, ok := localsUserID(conn)
	if !ok {
		conn.Close()
		return
	}

	store := services.GetStoreManager().Get(userID)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		state := store.Snapshot()

		pending := 0
		for _, q := range state.ActiveQuests {
			if !q.Completed {
				pending++
			}
		}

		frame := progressionFrame{
			XP:            state.XP,
			Gems:          state.Gems,
			Hearts:        state.Hearts,
			MaxHearts:     progression.MaxHearts,
			NextHeartIn:   store.NextHeartCountdown(),
			Streak:        state.Streak,
			ActiveQuests:  len(state.ActiveQuests),
			QuestsPending: pending,
			Unlimited:     store.UnlimitedActive(),
		}
		if err := conn.WriteJSON(frame); err != nil {
			return
		}
	}
})

func localsUserID(conn *websocket.Conn) (uint, bool) {
	switch v := conn.Locals("userId").(type) {
	case float64:
		return uint(v), true
	case uint:
		return v, true
	default:
		return 0, false
	}
}
