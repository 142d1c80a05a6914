package domain

import "time"

// MissionType - cadence of a mission
type MissionType string

const (
	MissionTypeDaily    MissionType = "daily"
	MissionTypeWeekly   MissionType = "weekly"
	MissionTypeSeasonal MissionType = "seasonal"
)

// Mission metrics tracked by the progression engine
const (
	MetricCasesOpened = "cases_opened"
	MetricSkinsSold   = "skins_sold"
	MetricXcoinsSpent = "xcoins_spent"
	MetricLogins      = "logins"
)

// Mission - reward template. Requirements maps a metric name to the
// count that must be reached before the mission completes.
type Mission struct {
	ID           int64            `db:"id" json:"id"`
	Type         MissionType      `db:"mission_type" json:"mission_type"`
	Category     string           `db:"category" json:"category"`
	Title        string           `db:"title" json:"title"`
	Description  string           `db:"description" json:"description"`
	Requirements map[string]int64 `db:"requirements" json:"requirements"`
	XPReward     int64            `db:"xp_reward" json:"xp_reward"`
	XcoinsReward int64            `db:"xcoins_reward" json:"xcoins_reward"`
	IsActive     bool             `db:"is_active" json:"is_active"`
	SortOrder    int              `db:"sort_order" json:"sort_order"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// UserMission - per-user progress for one mission period
type UserMission struct {
	ID              int64            `db:"id" json:"id"`
	UserID          int64            `db:"user_id" json:"user_id"`
	MissionID       int64            `db:"mission_id" json:"mission_id"`
	Progress        map[string]int64 `db:"progress" json:"progress"`
	Completed       bool             `db:"completed" json:"completed"`
	RewardClaimed   bool             `db:"reward_claimed" json:"reward_claimed"`
	StartedAt       time.Time        `db:"started_at" json:"started_at"`
	CompletedAt     *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
	RewardClaimedAt *time.Time       `db:"reward_claimed_at" json:"reward_claimed_at,omitempty"`
	PeriodStart     time.Time        `db:"period_start" json:"period_start"`
}

// UserMissionWithDetails - progress joined with its mission (for API responses)
type UserMissionWithDetails struct {
	UserMission
	Mission Mission `json:"mission"`
}

// CanClaim reports whether the reward is ready and not yet taken
func (um *UserMission) CanClaim() bool {
	return um.Completed && !um.RewardClaimed
}

// MeetsRequirements checks every metric threshold against the progress map
func (um *UserMission) MeetsRequirements(m *Mission) bool {
	for metric, target := range m.Requirements {
		if um.Progress[metric] < target {
			return false
		}
	}
	return true
}

// ProgressPercent returns overall completion 0-100 across all requirements
func (um *UserMission) ProgressPercent(m *Mission) int {
	if len(m.Requirements) == 0 {
		return 100
	}
	var total, done int64
	for metric, target := range m.Requirements {
		if target <= 0 {
			continue
		}
		total += target
		cur := um.Progress[metric]
		if cur > target {
			cur = target
		}
		done += cur
	}
	if total == 0 {
		return 100
	}
	return int(done * 100 / total)
}

// MissionPeriodStart returns the start of the current period for a
// mission type: midnight for daily, Monday midnight for weekly, and a
// fixed epoch for seasonal (the season itself bounds the mission).
func MissionPeriodStart(t MissionType, now time.Time) time.Time {
	switch t {
	case MissionTypeDaily:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case MissionTypeWeekly:
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		return time.Date(now.Year(), now.Month(), now.Day()-weekday+1, 0, 0, 0, 0, now.Location())
	case MissionTypeSeasonal:
		return time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return now
}
