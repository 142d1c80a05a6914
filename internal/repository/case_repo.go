package repository

import (
	"context"
	"encoding/json"
	"errors"

	"skincase_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrCaseNotFound = errors.New("case not found")

type CaseRepository struct {
	db *pgxpool.Pool
}

func NewCaseRepository(db *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{db: db}
}

const caseColumns = `id, name, description, price, COALESCE(image_url, ''), items, is_active, created_at, updated_at`

func scanCase(row interface{ Scan(dest ...any) error }) (*domain.Case, error) {
	var cs domain.Case
	var itemsJSON []byte
	if err := row.Scan(&cs.ID, &cs.Name, &cs.Description, &cs.Price, &cs.ImageURL,
		&itemsJSON, &cs.IsActive, &cs.CreatedAt, &cs.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &cs.Items); err != nil {
		cs.Items = nil
	}
	return &cs, nil
}

// ActiveCases returns all purchasable cases
func (r *CaseRepository) ActiveCases(ctx context.Context) ([]*domain.Case, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE is_active = true ORDER BY price, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Case
	for rows.Next() {
		cs, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, cs)
	}
	return result, rows.Err()
}

func (r *CaseRepository) GetByID(ctx context.Context, id int64) (*domain.Case, error) {
	cs, err := scanCase(r.db.QueryRow(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCaseNotFound
	}
	return cs, err
}

// Create inserts a case (admin back-office)
func (r *CaseRepository) Create(ctx context.Context, cs *domain.Case) error {
	itemsJSON, err := json.Marshal(cs.Items)
	if err != nil {
		return err
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO cases (name, description, price, image_url, items, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		cs.Name, cs.Description, cs.Price, cs.ImageURL, itemsJSON, cs.IsActive,
	).Scan(&cs.ID, &cs.CreatedAt, &cs.UpdatedAt)
}

// Update rewrites a case definition (admin back-office)
func (r *CaseRepository) Update(ctx context.Context, cs *domain.Case) error {
	itemsJSON, err := json.Marshal(cs.Items)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE cases
		 SET name = $1, description = $2, price = $3, image_url = $4, items = $5, is_active = $6, updated_at = now()
		 WHERE id = $7`,
		cs.Name, cs.Description, cs.Price, cs.ImageURL, itemsJSON, cs.IsActive, cs.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCaseNotFound
	}
	return nil
}
