package repository

import (
	"context"
	"errors"

	"skincase_backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrDuplicateServer = errors.New("server name taken")
	ErrServerNotFound  = errors.New("server not found")
)

type ServerRepository struct {
	db *pgxpool.Pool
}

func NewServerRepository(db *pgxpool.Pool) *ServerRepository {
	return &ServerRepository{db: db}
}

// ActiveServers returns the community listing, newest first
func (r *ServerRepository) ActiveServers(ctx context.Context) ([]*domain.CommunityServer, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, name, COALESCE(description, ''), address, max_players, is_active, created_at
		 FROM community_servers
		 WHERE is_active = true
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.CommunityServer
	for rows.Next() {
		var s domain.CommunityServer
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Description, &s.Address,
			&s.MaxPlayers, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &s)
	}
	return result, rows.Err()
}

func (r *ServerRepository) Create(ctx context.Context, s *domain.CommunityServer) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO community_servers (owner_id, name, description, address, max_players, is_active)
		 VALUES ($1, $2, $3, $4, $5, true)
		 RETURNING id, created_at`,
		s.OwnerID, s.Name, s.Description, s.Address, s.MaxPlayers,
	).Scan(&s.ID, &s.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateServer
	}
	return err
}

// Delist deactivates a server. Only the owner may delist.
func (r *ServerRepository) Delist(ctx context.Context, ownerID, serverID int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE community_servers SET is_active = false WHERE id = $1 AND owner_id = $2 AND is_active = true`,
		serverID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrServerNotFound
	}
	return nil
}
