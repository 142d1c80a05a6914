package repository

import (
	"context"
	"encoding/json"
	"errors"

	"skincase_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoActiveBattlepass = errors.New("no active battlepass")

type BattlepassRepository struct {
	db *pgxpool.Pool
}

func NewBattlepassRepository(db *pgxpool.Pool) *BattlepassRepository {
	return &BattlepassRepository{db: db}
}

// ActiveBattlepass returns the currently running season
func (r *BattlepassRepository) ActiveBattlepass(ctx context.Context) (*domain.Battlepass, error) {
	var bp domain.Battlepass
	err := r.db.QueryRow(ctx,
		`SELECT id, name, season, premium_price, starts_at, ends_at, is_active, created_at
		 FROM battlepasses
		 WHERE is_active = true AND starts_at <= now() AND ends_at > now()
		 ORDER BY season DESC
		 LIMIT 1`,
	).Scan(&bp.ID, &bp.Name, &bp.Season, &bp.PremiumPrice, &bp.StartsAt, &bp.EndsAt, &bp.IsActive, &bp.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoActiveBattlepass
	}
	if err != nil {
		return nil, err
	}
	return &bp, nil
}

// Tiers returns the tier ladder sorted ascending by level
func (r *BattlepassRepository) Tiers(ctx context.Context, battlepassID int64) ([]*domain.BattlepassTier, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, battlepass_id, level, xp_required, free_rewards, premium_rewards
		 FROM battlepass_tiers
		 WHERE battlepass_id = $1
		 ORDER BY level`,
		battlepassID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []*domain.BattlepassTier
	for rows.Next() {
		var t domain.BattlepassTier
		var freeJSON, premiumJSON []byte
		if err := rows.Scan(&t.ID, &t.BattlepassID, &t.Level, &t.XPRequired, &freeJSON, &premiumJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(freeJSON, &t.FreeRewards); err != nil {
			t.FreeRewards = nil
		}
		if err := json.Unmarshal(premiumJSON, &t.PremiumRewards); err != nil {
			t.PremiumRewards = nil
		}
		tiers = append(tiers, &t)
	}
	return tiers, rows.Err()
}

// Progress returns the user's season progress, creating the row lazily
// on first interaction. The unique (user_id, battlepass_id) index makes
// the create race-safe: a concurrent loser re-reads the winner's row.
func (r *BattlepassRepository) Progress(ctx context.Context, userID, battlepassID int64) (*domain.UserBattlepassProgress, error) {
	p, err := r.progressRow(ctx, userID, battlepassID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var created domain.UserBattlepassProgress
	err = r.db.QueryRow(ctx,
		`INSERT INTO user_battlepass_progress (user_id, battlepass_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, battlepass_id) DO NOTHING
		 RETURNING id, user_id, battlepass_id, current_level, current_xp, is_premium, created_at, updated_at`,
		userID, battlepassID,
	).Scan(&created.ID, &created.UserID, &created.BattlepassID, &created.CurrentLevel,
		&created.CurrentXP, &created.IsPremium, &created.CreatedAt, &created.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// lost the insert race
		return r.progressRow(ctx, userID, battlepassID)
	}
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *BattlepassRepository) progressRow(ctx context.Context, userID, battlepassID int64) (*domain.UserBattlepassProgress, error) {
	var p domain.UserBattlepassProgress
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, battlepass_id, current_level, current_xp, is_premium, created_at, updated_at
		 FROM user_battlepass_progress
		 WHERE user_id = $1 AND battlepass_id = $2`,
		userID, battlepassID,
	).Scan(&p.ID, &p.UserID, &p.BattlepassID, &p.CurrentLevel, &p.CurrentXP, &p.IsPremium, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AddXP atomically increments the XP counter and returns the new total
func (r *BattlepassRepository) AddXP(ctx context.Context, progressID int64, amount int64) (int64, error) {
	var newXP int64
	err := r.db.QueryRow(ctx,
		`UPDATE user_battlepass_progress
		 SET current_xp = current_xp + $1, updated_at = now()
		 WHERE id = $2
		 RETURNING current_xp`,
		amount, progressID,
	).Scan(&newXP)
	return newXP, err
}

// PromoteLevel raises current_level, never lowering it. Concurrent
// recomputations settle on the highest qualifying level.
func (r *BattlepassRepository) PromoteLevel(ctx context.Context, progressID int64, level int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE user_battlepass_progress
		 SET current_level = $1, updated_at = now()
		 WHERE id = $2 AND current_level < $1`,
		level, progressID,
	)
	return err
}

// InsertClaim records a (level, track) claim if absent. Returns false
// when the pair was already claimed; the unique index makes concurrent
// duplicate claims grant at most once.
func (r *BattlepassRepository) InsertClaim(ctx context.Context, progressID int64, level int, track domain.ClaimTrack) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO battlepass_claims (progress_id, level, track)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (progress_id, level, track) DO NOTHING`,
		progressID, level, track,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Claims lists the consumed (level, track) pairs for a progress row
func (r *BattlepassRepository) Claims(ctx context.Context, progressID int64) ([]domain.ClaimedReward, error) {
	rows, err := r.db.Query(ctx,
		`SELECT level, track, claimed_at
		 FROM battlepass_claims
		 WHERE progress_id = $1
		 ORDER BY level, track`,
		progressID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []domain.ClaimedReward
	for rows.Next() {
		var c domain.ClaimedReward
		if err := rows.Scan(&c.Level, &c.Track, &c.ClaimedAt); err != nil {
			return nil, err
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

// SetPremium flags the progress premium without payment (used by the
// premium_days reward item)
func (r *BattlepassRepository) SetPremium(ctx context.Context, progressID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE user_battlepass_progress SET is_premium = true, updated_at = now() WHERE id = $1`,
		progressID,
	)
	return err
}

// PurchasePremium debits the price and flags the progress premium in
// one transaction; both succeed or neither does. A conditional debit
// guards the balance, so a concurrent spend cannot leave the user
// debited without the upgrade.
func (r *BattlepassRepository) PurchasePremium(ctx context.Context, userID, progressID, price int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE users SET xcoins = xcoins - $1 WHERE id = $2 AND xcoins >= $1`,
		price, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientFunds
	}

	tag, err = tx.Exec(ctx,
		`UPDATE user_battlepass_progress
		 SET is_premium = true, updated_at = now()
		 WHERE id = $1 AND is_premium = false`,
		progressID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// already premium: roll the debit back by aborting the tx
		return nil
	}

	metaJSON, _ := json.Marshal(map[string]any{"progress_id": progressID})
	if _, err := tx.Exec(ctx,
		`INSERT INTO transactions (user_id, type, amount, meta) VALUES ($1, $2, $3, $4)`,
		userID, domain.TxPremiumPurchase, -price, metaJSON,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
