// services/leaderboard.go
package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// LeaderboardService keeps weekly per-league XP in Redis sorted sets, one
// key per (league, ISO week). Writes are best-effort like every other
// remote mirror: a failed write is logged and dropped, never retried.
type LeaderboardService struct {
	rdb *redis.Client
}

var leaderboardService *LeaderboardService

// InitLeaderboard connects to Redis. The app still runs without it; the
// leaderboard endpoints then return empty standings.
func InitLeaderboard() {
	rdb := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  Redis not reachable (%v), leaderboard disabled", err)
	} else {
		log.Println("✅ Redis leaderboard connected")
	}

	leaderboardService = &LeaderboardService{rdb: rdb}
}

// GetLeaderboard returns the initialized service.
func GetLeaderboard() *LeaderboardService {
	if leaderboardService == nil {
		log.Fatal("Leaderboard not initialized. Call InitLeaderboard() first.")
	}
	return leaderboardService
}

// LeagueEntry is one row of the weekly standings, ordered by XP.
type LeagueEntry struct {
	Rank   int
	UserID uint
	XP     int
}

func leagueWeekKey(leagueID int, now time.Time) string {
	year, week := now.ISOWeek()
	return fmt.Sprintf("league:%d:%d-W%02d", leagueID, year, week)
}

// RecordXP adds weekly XP for a user in their league. Keys expire two
// weeks out so finished seasons clean themselves up.
func (s *LeaderboardService) RecordXP(ctx context.Context, leagueID int, userID uint, xp int) {
	if xp <= 0 {
		return
	}
	key := leagueWeekKey(leagueID, time.Now())
	member := fmt.Sprintf("%d", userID)

	pipe := s.rdb.Pipeline()
	pipe.ZIncrBy(ctx, key, float64(xp), member)
	pipe.Expire(ctx, key, 14*24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("leaderboard: record xp for user %d: %v", userID, err)
	}
}

// Standings returns the top entries of the current week for a league.
func (s *LeaderboardService) Standings(ctx context.Context, leagueID, limit int) ([]LeagueEntry, error) {
	key := leagueWeekKey(leagueID, time.Now())
	scores, err := s.rdb.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeagueEntry, 0, len(scores))
	for i, z := range scores {
		member, _ := z.Member.(string)
		var id uint
		fmt.Sscanf(member, "%d", &id)
		entries = append(entries, LeagueEntry{
			Rank:   i + 1,
			UserID: id,
			XP:     int(z.Score),
		})
	}
	return entries, nil
}

// Rank returns a user's 1-based rank in their league this week, or 0 when
// they have no score yet.
func (s *LeaderboardService) Rank(ctx context.Context, leagueID int, userID uint) int {
	key := leagueWeekKey(leagueID, time.Now())
	rank, err := s.rdb.ZRevRank(ctx, key, fmt.Sprintf("%d", userID)).Result()
	if err != nil {
		return 0
	}
	return int(rank) + 1
}
