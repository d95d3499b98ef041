package progression

import "testing"

func TestClassify(t *testing.T) {
	// 30 participants, top 5 promoted, ranks 16 and below demoted.
	const (
		total          = 30
		promotionCount = 5
		demotionStart  = 16
	)

	tests := []struct {
		rank int
		want Zone
	}{
		{1, ZonePromotion},
		{5, ZonePromotion},
		{6, ZoneSafe},
		{10, ZoneSafe},
		{15, ZoneSafe},
		{16, ZoneDemotion},
		{30, ZoneDemotion},
	}

	for _, tt := range tests {
		if got := Classify(tt.rank, total, promotionCount, demotionStart); got != tt.want {
			t.Errorf("Classify(%d) = %q, want %q", tt.rank, got, tt.want)
		}
	}
}

func TestRewardFor(t *testing.T) {
	bronze := LeagueByID(1)

	tests := []struct {
		rank int
		want int
	}{
		{1, bronze.BaseReward * 3},
		{2, bronze.BaseReward * 2},
		{3, bronze.BaseReward * 3 / 2},
		{4, bronze.BaseReward},
		{25, bronze.BaseReward},
	}

	for _, tt := range tests {
		if got := RewardFor(1, tt.rank); got != tt.want {
			t.Errorf("RewardFor(1, %d) = %d, want %d", tt.rank, got, tt.want)
		}
	}
}

func TestLeagueByID(t *testing.T) {
	if got := LeagueByID(3); got.Name != "Gold" {
		t.Errorf("LeagueByID(3).Name = %q, want Gold", got.Name)
	}
	if got := LeagueByID(99); got.Name != "Bronze" {
		t.Errorf("LeagueByID(99).Name = %q, want Bronze fallback", got.Name)
	}
	if got := LeagueByID(0); got.Name != "Bronze" {
		t.Errorf("LeagueByID(0).Name = %q, want Bronze fallback", got.Name)
	}
}

func TestLeaguesLadderOrdering(t *testing.T) {
	for i := 1; i < len(Leagues); i++ {
		if Leagues[i].MinXP <= Leagues[i-1].MinXP {
			t.Errorf("league %s MinXP %d not above %s MinXP %d",
				Leagues[i].Name, Leagues[i].MinXP, Leagues[i-1].Name, Leagues[i-1].MinXP)
		}
		if Leagues[i].ID != i+1 {
			t.Errorf("league %s has id %d, want %d", Leagues[i].Name, Leagues[i].ID, i+1)
		}
	}
}
