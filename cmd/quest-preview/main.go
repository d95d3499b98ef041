// cmd/quest-preview/main.go - Dev tool: print the deterministic quest set
// for a user and date. Useful for verifying that two runs with the same
// inputs produce identical ids and targets.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"lingua/progression"
)

func main() {
	userID := flag.String("user", "", "user id (required)")
	date := flag.String("date", "", "date YYYY-MM-DD (default today)")
	count := flag.Int("count", progression.DailyQuestCount, "daily quest count")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "usage: quest-preview -user <id> [-date YYYY-MM-DD]")
		os.Exit(1)
	}

	now := time.Now()
	if *date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", *date, time.Local)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid date %q: %v\n", *date, err)
			os.Exit(1)
		}
		now = parsed
	}

	fmt.Printf("Daily quests for user %s on %s:\n", *userID, now.Format("2006-01-02"))
	for _, q := range progression.GenerateDaily(*userID, *count, now) {
		printQuest(q)
	}

	fmt.Println("\nWeekly quests:")
	for _, q := range progression.GenerateWeekly(*userID, progression.WeeklyQuestCount, now) {
		printQuest(q)
	}

	fmt.Println("\nMonthly challenge:")
	printQuest(progression.GenerateMonthly(*userID, now))
}

func printQuest(q progression.QuestInstance) {
	fmt.Printf("  [%s] %s (target %d, +%d XP, +%d gems, expires %s)\n",
		q.ID, q.Title, q.Target, q.XPReward, q.GemReward, q.ExpiresAt.Format(time.RFC3339))
}
