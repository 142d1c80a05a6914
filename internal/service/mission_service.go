package service

import (
	"context"
	"errors"
	"time"

	"skincase_backend/internal/domain"
	"skincase_backend/internal/logger"
	"skincase_backend/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrMissionNotClaimable = errors.New("mission reward not claimable")

// MissionService runs the mission progression loop: track metrics,
// complete missions, pay out rewards
type MissionService struct {
	repo       *repository.MissionRepository
	balance    *BalanceService
	battlepass *BattlepassService
}

func NewMissionService(db *pgxpool.Pool, battlepass *BattlepassService) *MissionService {
	return &MissionService{
		repo:       repository.NewMissionRepository(db),
		balance:    NewBalanceService(db),
		battlepass: battlepass,
	}
}

// MissionView is one mission with the user's current-period progress
type MissionView struct {
	Mission         *domain.Mission  `json:"mission"`
	Progress        map[string]int64 `json:"progress"`
	ProgressPercent int              `json:"progress_percent"`
	Completed       bool             `json:"completed"`
	RewardClaimed   bool             `json:"reward_claimed"`
	UserMissionID   int64            `json:"user_mission_id"`
}

// ListWithProgress returns active missions with the user's progress for
// the current period, creating period rows lazily
func (s *MissionService) ListWithProgress(ctx context.Context, userID int64) ([]*MissionView, error) {
	missions, err := s.repo.ActiveMissions(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	views := make([]*MissionView, 0, len(missions))
	for _, m := range missions {
		periodStart := domain.MissionPeriodStart(m.Type, now)
		um, err := s.repo.GetOrCreateUserMission(ctx, userID, m.ID, periodStart)
		if err != nil {
			return nil, err
		}
		views = append(views, &MissionView{
			Mission:         m,
			Progress:        um.Progress,
			ProgressPercent: um.ProgressPercent(m),
			Completed:       um.Completed,
			RewardClaimed:   um.RewardClaimed,
			UserMissionID:   um.ID,
		})
	}
	return views, nil
}

// ClaimResult is what a mission claim paid out
type ClaimResult struct {
	XP         int64 `json:"xp"`
	Xcoins     int64 `json:"xcoins"`
	NewBalance int64 `json:"new_balance"`
	NewLevel   int   `json:"new_level"`
}

// Claim pays out a completed mission exactly once. The repository's
// conditional update is the idempotence point.
func (s *MissionService) Claim(ctx context.Context, userID, userMissionID int64) (*ClaimResult, error) {
	xp, xcoins, err := s.repo.ClaimReward(ctx, userID, userMissionID)
	if err != nil {
		if errors.Is(err, repository.ErrMissionNotClaimable) {
			return nil, ErrMissionNotClaimable
		}
		return nil, err
	}

	result := &ClaimResult{XP: xp, Xcoins: xcoins}

	if xcoins > 0 {
		newBalance, err := s.balance.Credit(ctx, userID, xcoins, domain.TxMissionReward,
			map[string]interface{}{"user_mission_id": userMissionID})
		if err != nil {
			logger.Error("mission xcoins payout failed", "error", err, "user_id", userID, "user_mission_id", userMissionID)
		} else {
			result.NewBalance = newBalance
		}
	}

	if xp > 0 {
		_, newLevel, err := s.battlepass.GrantXP(ctx, userID, xp)
		if err != nil {
			logger.Error("mission xp payout failed", "error", err, "user_id", userID, "user_mission_id", userMissionID)
		} else {
			result.NewLevel = newLevel
		}
	}

	return result, nil
}

// Track advances a metric across every active mission that counts it.
// Tracking is best-effort: a failed update never blocks the action that
// produced the metric.
func (s *MissionService) Track(ctx context.Context, userID int64, metric string, delta int64) {
	missions, err := s.repo.ActiveMissions(ctx)
	if err != nil {
		logger.Error("mission tracking: load failed", "error", err, "metric", metric)
		return
	}
	for _, m := range missions {
		if err := s.repo.IncrementMetric(ctx, userID, m, metric, delta); err != nil {
			logger.Error("mission tracking: increment failed",
				"error", err, "metric", metric, "mission_id", m.ID, "user_id", userID)
		}
	}
}
