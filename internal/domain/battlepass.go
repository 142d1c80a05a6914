package domain

import (
	"sort"
	"time"
)

// RewardType - what a battlepass tier hands out
type RewardType string

const (
	RewardXcoins      RewardType = "xcoins"
	RewardCase        RewardType = "case"
	RewardSkin        RewardType = "skin"
	RewardTitle       RewardType = "title"
	RewardBadge       RewardType = "badge"
	RewardPremiumDays RewardType = "premium_days"
)

// ClaimTrack - free or premium reward lane within a tier
type ClaimTrack string

const (
	TrackFree    ClaimTrack = "free"
	TrackPremium ClaimTrack = "premium"
)

// Battlepass is a season of the progression ladder
type Battlepass struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Season       int       `db:"season" json:"season"`
	PremiumPrice int64     `db:"premium_price" json:"premium_price"`
	StartsAt     time.Time `db:"starts_at" json:"starts_at"`
	EndsAt       time.Time `db:"ends_at" json:"ends_at"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// RewardItem is immutable once defined on a tier
type RewardItem struct {
	Type   RewardType `json:"type"`
	Amount int64      `json:"amount"`
	Name   string     `json:"name"`
}

// BattlepassTier is one rung of the ladder. XPRequired is strictly
// increasing with Level.
type BattlepassTier struct {
	ID             int64        `db:"id" json:"id"`
	BattlepassID   int64        `db:"battlepass_id" json:"battlepass_id"`
	Level          int          `db:"level" json:"level"`
	XPRequired     int64        `db:"xp_required" json:"xp_required"`
	FreeRewards    []RewardItem `db:"free_rewards" json:"free_rewards"`
	PremiumRewards []RewardItem `db:"premium_rewards" json:"premium_rewards"`
}

// UserBattlepassProgress - per (user, battlepass) progression state.
// Created lazily on first interaction, archived (not deleted) at season end.
type UserBattlepassProgress struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	BattlepassID int64     `db:"battlepass_id" json:"battlepass_id"`
	CurrentLevel int       `db:"current_level" json:"current_level"`
	CurrentXP    int64     `db:"current_xp" json:"current_xp"`
	IsPremium    bool      `db:"is_premium" json:"is_premium"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ClaimedReward records one consumed (level, track) pair
type ClaimedReward struct {
	Level     int        `db:"level" json:"level"`
	Track     ClaimTrack `db:"track" json:"track"`
	ClaimedAt time.Time  `db:"claimed_at" json:"claimed_at"`
}

// LevelForXP returns the highest tier level whose xp_required does not
// exceed xp. Tiers must be sorted ascending by level. Below the first
// threshold the level is 0.
func LevelForXP(tiers []*BattlepassTier, xp int64) int {
	i := sort.Search(len(tiers), func(i int) bool {
		return tiers[i].XPRequired > xp
	})
	if i == 0 {
		return 0
	}
	return tiers[i-1].Level
}
