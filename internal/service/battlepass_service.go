package service

import (
	"context"
	"errors"

	"skincase_backend/internal/domain"
	"skincase_backend/internal/logger"
	"skincase_backend/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrTierNotFound    = errors.New("tier not found")
	ErrNotUnlocked     = errors.New("tier not unlocked")
	ErrPremiumRequired = errors.New("premium battlepass required")
	ErrAlreadyClaimed  = errors.New("reward already claimed")
	ErrAlreadyPremium  = errors.New("already premium")
	ErrNoBattlepass    = errors.New("no active battlepass")
)

// ProgressStore is the persistence seam of the battlepass engine.
// *repository.BattlepassRepository is the production implementation.
type ProgressStore interface {
	ActiveBattlepass(ctx context.Context) (*domain.Battlepass, error)
	Tiers(ctx context.Context, battlepassID int64) ([]*domain.BattlepassTier, error)
	Progress(ctx context.Context, userID, battlepassID int64) (*domain.UserBattlepassProgress, error)
	AddXP(ctx context.Context, progressID, amount int64) (int64, error)
	PromoteLevel(ctx context.Context, progressID int64, level int) error
	InsertClaim(ctx context.Context, progressID int64, level int, track domain.ClaimTrack) (bool, error)
	Claims(ctx context.Context, progressID int64) ([]domain.ClaimedReward, error)
	SetPremium(ctx context.Context, progressID int64) error
	PurchasePremium(ctx context.Context, userID, progressID, price int64) error
}

// RewardSink applies granted reward items to the user's account
type RewardSink interface {
	GrantXcoins(ctx context.Context, userID, amount int64, meta map[string]interface{}) error
	GrantItem(ctx context.Context, userID int64, item domain.RewardItem) error
	GrantTitle(ctx context.Context, userID int64, title string) error
	GrantBadge(ctx context.Context, userID int64, badge string) error
}

// BattlepassService runs the seasonal progression ladder
type BattlepassService struct {
	store ProgressStore
	sink  RewardSink
}

func NewBattlepassService(store ProgressStore, sink RewardSink) *BattlepassService {
	return &BattlepassService{store: store, sink: sink}
}

// SeasonView is the public battlepass overview
type SeasonView struct {
	Battlepass *domain.Battlepass       `json:"battlepass"`
	Tiers      []*domain.BattlepassTier `json:"tiers"`
}

// ProgressView is the per-user battlepass state
type ProgressView struct {
	Battlepass *domain.Battlepass             `json:"battlepass"`
	Progress   *domain.UserBattlepassProgress `json:"progress"`
	Claims     []domain.ClaimedReward         `json:"claims"`
}

// Season returns the active battlepass with its tier ladder
func (s *BattlepassService) Season(ctx context.Context) (*SeasonView, error) {
	bp, err := s.store.ActiveBattlepass(ctx)
	if err != nil {
		return nil, mapBattlepassErr(err)
	}
	tiers, err := s.store.Tiers(ctx, bp.ID)
	if err != nil {
		return nil, err
	}
	return &SeasonView{Battlepass: bp, Tiers: tiers}, nil
}

// UserProgress returns the user's state for the active season, creating
// it on first touch
func (s *BattlepassService) UserProgress(ctx context.Context, userID int64) (*ProgressView, error) {
	bp, err := s.store.ActiveBattlepass(ctx)
	if err != nil {
		return nil, mapBattlepassErr(err)
	}
	progress, err := s.store.Progress(ctx, userID, bp.ID)
	if err != nil {
		return nil, err
	}
	claims, err := s.store.Claims(ctx, progress.ID)
	if err != nil {
		return nil, err
	}
	return &ProgressView{Battlepass: bp, Progress: progress, Claims: claims}, nil
}

// GrantXP adds XP to the user's season progress and promotes the level
// to the highest tier the new total qualifies for. XP only moves up;
// levels never drop.
func (s *BattlepassService) GrantXP(ctx context.Context, userID, amount int64) (newXP int64, newLevel int, err error) {
	if amount <= 0 {
		return 0, 0, ErrInvalidAmount
	}

	bp, err := s.store.ActiveBattlepass(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveBattlepass) {
			// off-season XP is simply dropped
			return 0, 0, nil
		}
		return 0, 0, err
	}

	progress, err := s.store.Progress(ctx, userID, bp.ID)
	if err != nil {
		return 0, 0, err
	}

	newXP, err = s.store.AddXP(ctx, progress.ID, amount)
	if err != nil {
		return 0, 0, err
	}

	tiers, err := s.store.Tiers(ctx, bp.ID)
	if err != nil {
		return 0, 0, err
	}

	newLevel = domain.LevelForXP(tiers, newXP)
	if newLevel > progress.CurrentLevel {
		if err := s.store.PromoteLevel(ctx, progress.ID, newLevel); err != nil {
			return 0, 0, err
		}
	} else {
		newLevel = progress.CurrentLevel
	}

	return newXP, newLevel, nil
}

// ClaimReward consumes one (level, track) claim and grants the tier's
// rewards. The store's insert is the idempotence point: concurrent
// duplicate claims grant at most once.
func (s *BattlepassService) ClaimReward(ctx context.Context, userID int64, level int, track domain.ClaimTrack) ([]domain.RewardItem, error) {
	bp, err := s.store.ActiveBattlepass(ctx)
	if err != nil {
		return nil, mapBattlepassErr(err)
	}

	tiers, err := s.store.Tiers(ctx, bp.ID)
	if err != nil {
		return nil, err
	}
	var tier *domain.BattlepassTier
	for _, t := range tiers {
		if t.Level == level {
			tier = t
			break
		}
	}
	if tier == nil {
		return nil, ErrTierNotFound
	}

	progress, err := s.store.Progress(ctx, userID, bp.ID)
	if err != nil {
		return nil, err
	}

	// recompute from XP so a lagging level column cannot block a
	// legitimately earned claim
	unlocked := progress.CurrentLevel
	if fromXP := domain.LevelForXP(tiers, progress.CurrentXP); fromXP > unlocked {
		unlocked = fromXP
	}
	if level > unlocked {
		return nil, ErrNotUnlocked
	}

	if track == domain.TrackPremium && !progress.IsPremium {
		return nil, ErrPremiumRequired
	}

	inserted, err := s.store.InsertClaim(ctx, progress.ID, level, track)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrAlreadyClaimed
	}

	rewards := tier.FreeRewards
	if track == domain.TrackPremium {
		rewards = tier.PremiumRewards
	}

	for _, item := range rewards {
		if err := s.applyReward(ctx, userID, progress.ID, level, track, item); err != nil {
			// the claim stands; a failed grant is logged, not rolled back
			logger.Error("battlepass reward grant failed",
				"error", err, "user_id", userID, "level", level, "track", track, "type", item.Type)
		}
	}

	return rewards, nil
}

func (s *BattlepassService) applyReward(ctx context.Context, userID, progressID int64, level int, track domain.ClaimTrack, item domain.RewardItem) error {
	switch item.Type {
	case domain.RewardXcoins:
		return s.sink.GrantXcoins(ctx, userID, item.Amount, map[string]interface{}{
			"level": level,
			"track": string(track),
		})
	case domain.RewardCase, domain.RewardSkin:
		return s.sink.GrantItem(ctx, userID, item)
	case domain.RewardTitle:
		return s.sink.GrantTitle(ctx, userID, item.Name)
	case domain.RewardBadge:
		return s.sink.GrantBadge(ctx, userID, item.Name)
	case domain.RewardPremiumDays:
		// premium unlocks for the rest of the season
		return s.store.SetPremium(ctx, progressID)
	}
	return nil
}

// PurchasePremium upgrades the user's season to the premium track. The
// debit and the flag flip commit together; a duplicate purchase is a
// free no-op.
func (s *BattlepassService) PurchasePremium(ctx context.Context, userID int64) (*domain.Battlepass, error) {
	bp, err := s.store.ActiveBattlepass(ctx)
	if err != nil {
		return nil, mapBattlepassErr(err)
	}

	progress, err := s.store.Progress(ctx, userID, bp.ID)
	if err != nil {
		return nil, err
	}
	if progress.IsPremium {
		return nil, ErrAlreadyPremium
	}

	if err := s.store.PurchasePremium(ctx, userID, progress.ID, bp.PremiumPrice); err != nil {
		if errors.Is(err, repository.ErrInsufficientFunds) {
			return nil, ErrInsufficientFunds
		}
		return nil, err
	}

	return bp, nil
}

func mapBattlepassErr(err error) error {
	if errors.Is(err, repository.ErrNoActiveBattlepass) {
		return ErrNoBattlepass
	}
	return err
}

// PgRewardSink applies rewards against Postgres
type PgRewardSink struct {
	balance   *BalanceService
	users     *repository.UserRepository
	inventory *repository.InventoryRepository
}

func NewPgRewardSink(db *pgxpool.Pool) *PgRewardSink {
	return &PgRewardSink{
		balance:   NewBalanceService(db),
		users:     repository.NewUserRepository(db),
		inventory: repository.NewInventoryRepository(db),
	}
}

func (s *PgRewardSink) GrantXcoins(ctx context.Context, userID, amount int64, meta map[string]interface{}) error {
	_, err := s.balance.Credit(ctx, userID, amount, domain.TxBattlepassReward, meta)
	return err
}

func (s *PgRewardSink) GrantItem(ctx context.Context, userID int64, item domain.RewardItem) error {
	return s.inventory.Add(ctx, &domain.InventoryItem{
		UserID:   userID,
		CaseName: "Battlepass",
		SkinName: item.Name,
		Rarity:   domain.RarityClassified,
		Value:    item.Amount,
	})
}

func (s *PgRewardSink) GrantTitle(ctx context.Context, userID int64, title string) error {
	return s.users.SetTitle(ctx, userID, title)
}

func (s *PgRewardSink) GrantBadge(ctx context.Context, userID int64, badge string) error {
	return s.users.AddBadge(ctx, userID, badge)
}
