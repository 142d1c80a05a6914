package repository

import (
	"context"
	"errors"
	"time"

	"skincase_backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrDuplicateUser     = errors.New("username or email already taken")
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, xcoins, is_admin, is_banned,
	COALESCE(ban_reason, ''), ban_expires, COALESCE(permissions, '{}'),
	COALESCE(title, ''), COALESCE(badges, '{}'), created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Xcoins,
		&u.IsAdmin,
		&u.IsBanned,
		&u.BanReason,
		&u.BanExpires,
		&u.Permissions,
		&u.Title,
		&u.Badges,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new account with the welcome balance
func (r *UserRepository) Create(ctx context.Context, u *domain.User, welcomeXcoins int64) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, xcoins)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, xcoins, created_at`,
		u.Username, u.Email, u.PasswordHash, welcomeXcoins,
	).Scan(&u.ID, &u.Xcoins, &u.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateUser
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

// UpdateXcoins applies a delta, refusing to go negative
func (r *UserRepository) UpdateXcoins(ctx context.Context, userID int64, delta int64) (int64, error) {
	var newBalance int64
	err := r.db.QueryRow(ctx,
		`UPDATE users SET xcoins = xcoins + $1 WHERE id = $2 AND xcoins + $1 >= 0 RETURNING xcoins`,
		delta, userID,
	).Scan(&newBalance)
	return newBalance, err
}

func (r *UserRepository) GetXcoins(ctx context.Context, userID int64) (int64, error) {
	var xcoins int64
	err := r.db.QueryRow(ctx, `SELECT xcoins FROM users WHERE id = $1`, userID).Scan(&xcoins)
	return xcoins, err
}

// Ban marks the account banned; a nil expiry is a permanent ban
func (r *UserRepository) Ban(ctx context.Context, userID int64, reason string, expires *time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET is_banned = true, ban_reason = $1, ban_expires = $2 WHERE id = $3`,
		reason, expires, userID,
	)
	return err
}

func (r *UserRepository) Unban(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET is_banned = false, ban_reason = NULL, ban_expires = NULL WHERE id = $1`,
		userID,
	)
	return err
}

// SetTitle sets the profile title earned from battlepass rewards
func (r *UserRepository) SetTitle(ctx context.Context, userID int64, title string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET title = $1 WHERE id = $2`, title, userID)
	return err
}

// AddBadge appends a badge unless already owned
func (r *UserRepository) AddBadge(ctx context.Context, userID int64, badge string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET badges = array_append(COALESCE(badges, '{}'), $1)
		 WHERE id = $2 AND NOT ($1 = ANY(COALESCE(badges, '{}')))`,
		badge, userID,
	)
	return err
}

// TopUserEntry is one leaderboard row
type TopUserEntry struct {
	Rank        int    `json:"rank"`
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	Title       string `json:"title,omitempty"`
	CasesOpened int64  `json:"cases_opened"`
	TotalValue  int64  `json:"total_value"`
}

// GetMonthlyTop returns the top users by cases opened in the current month
func (r *UserRepository) GetMonthlyTop(ctx context.Context, limit int) ([]TopUserEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.username, COALESCE(u.title, ''),
		       COALESCE(s.opened, 0) AS cases_opened, COALESCE(s.total_value, 0) AS total_value
		FROM users u
		JOIN (
			SELECT user_id, COUNT(*) AS opened, SUM(value) AS total_value
			FROM inventory
			WHERE acquired_at >= date_trunc('month', CURRENT_DATE)
			GROUP BY user_id
		) s ON s.user_id = u.id
		ORDER BY cases_opened DESC, total_value DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []TopUserEntry
	rank := 1
	for rows.Next() {
		var e TopUserEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Title, &e.CasesOpened, &e.TotalValue); err != nil {
			return nil, err
		}
		e.Rank = rank
		res = append(res, e)
		rank++
	}
	return res, rows.Err()
}

// GetUserRank returns the user's position in the monthly leaderboard
func (r *UserRepository) GetUserRank(ctx context.Context, userID int64) (int, int64, error) {
	var rank int
	var opened int64
	err := r.db.QueryRow(ctx, `
		WITH monthly AS (
			SELECT user_id, COUNT(*) AS opened
			FROM inventory
			WHERE acquired_at >= date_trunc('month', CURRENT_DATE)
			GROUP BY user_id
		),
		ranked AS (
			SELECT u.id, COALESCE(m.opened, 0) AS opened,
			       RANK() OVER (ORDER BY COALESCE(m.opened, 0) DESC) AS rank
			FROM users u
			LEFT JOIN monthly m ON m.user_id = u.id
		)
		SELECT rank, opened FROM ranked WHERE id = $1
	`, userID).Scan(&rank, &opened)
	if err != nil {
		return 0, 0, err
	}
	return rank, opened, nil
}
