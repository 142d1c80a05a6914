package domain

import "testing"

func ladder() []*BattlepassTier {
	return []*BattlepassTier{
		{Level: 1, XPRequired: 0},
		{Level: 2, XPRequired: 100},
		{Level: 3, XPRequired: 250},
		{Level: 4, XPRequired: 500},
	}
}

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp   int64
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{500, 4},
		{100000, 4},
	}
	for _, tc := range cases {
		if got := LevelForXP(ladder(), tc.xp); got != tc.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tc.xp, got, tc.want)
		}
	}
}

func TestLevelForXPBelowFirstThreshold(t *testing.T) {
	tiers := []*BattlepassTier{
		{Level: 1, XPRequired: 50},
		{Level: 2, XPRequired: 150},
	}
	if got := LevelForXP(tiers, 49); got != 0 {
		t.Errorf("LevelForXP(49) = %d, want 0", got)
	}
	if got := LevelForXP(tiers, 50); got != 1 {
		t.Errorf("LevelForXP(50) = %d, want 1", got)
	}
}

func TestLevelForXPEmptyLadder(t *testing.T) {
	if got := LevelForXP(nil, 1000); got != 0 {
		t.Errorf("LevelForXP on empty ladder = %d, want 0", got)
	}
}
