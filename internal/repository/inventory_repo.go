package repository

import (
	"context"
	"errors"

	"skincase_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrItemNotSellable = errors.New("item not found or already sold")

type InventoryRepository struct {
	db *pgxpool.Pool
}

func NewInventoryRepository(db *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// AddWithTx records a won skin inside an existing transaction so the
// case debit and the drop land atomically
func (r *InventoryRepository) AddWithTx(ctx context.Context, tx pgx.Tx, item *domain.InventoryItem) error {
	return tx.QueryRow(ctx, insertItemSQL,
		item.UserID, item.CaseID, item.CaseName, item.SkinName, item.Rarity, item.Value,
	).Scan(&item.ID, &item.AcquiredAt)
}

// Add records a skin outside any transaction (battlepass item rewards).
// A zero case_id is stored as NULL; reward skins come from no case.
func (r *InventoryRepository) Add(ctx context.Context, item *domain.InventoryItem) error {
	return r.db.QueryRow(ctx, insertItemSQL,
		item.UserID, item.CaseID, item.CaseName, item.SkinName, item.Rarity, item.Value,
	).Scan(&item.ID, &item.AcquiredAt)
}

const insertItemSQL = `INSERT INTO inventory (user_id, case_id, case_name, skin_name, rarity, value)
	 VALUES ($1, NULLIF($2, 0), $3, $4, $5, $6)
	 RETURNING id, acquired_at`

// ListByUser returns the user's unsold skins, newest first
func (r *InventoryRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.InventoryItem, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, COALESCE(case_id, 0), case_name, skin_name, rarity, value, acquired_at, sold_at
		 FROM inventory
		 WHERE user_id = $1 AND sold_at IS NULL
		 ORDER BY acquired_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.InventoryItem
	for rows.Next() {
		var it domain.InventoryItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.CaseID, &it.CaseName, &it.SkinName,
			&it.Rarity, &it.Value, &it.AcquiredAt, &it.SoldAt); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// MarkSoldWithTx flips sold_at once and returns the skin's value. Zero
// rows means the item is gone or already sold, keeping sell-back
// idempotent under concurrent requests.
func (r *InventoryRepository) MarkSoldWithTx(ctx context.Context, tx pgx.Tx, userID, itemID int64) (int64, error) {
	var value int64
	err := tx.QueryRow(ctx,
		`UPDATE inventory
		 SET sold_at = now()
		 WHERE id = $1 AND user_id = $2 AND sold_at IS NULL
		 RETURNING value`,
		itemID, userID,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrItemNotSellable
	}
	return value, err
}

// RecentDrops feeds the live drop ticker
func (r *InventoryRepository) RecentDrops(ctx context.Context, limit int) ([]*domain.InventoryItem, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, COALESCE(case_id, 0), case_name, skin_name, rarity, value, acquired_at, sold_at
		 FROM inventory
		 ORDER BY acquired_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.InventoryItem
	for rows.Next() {
		var it domain.InventoryItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.CaseID, &it.CaseName, &it.SkinName,
			&it.Rarity, &it.Value, &it.AcquiredAt, &it.SoldAt); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}
