package domain

import "time"

// CommunityServer is a player-registered game server shown on the
// community listing
type CommunityServer struct {
	ID          int64     `db:"id" json:"id"`
	OwnerID     int64     `db:"owner_id" json:"owner_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Address     string    `db:"address" json:"address"`
	MaxPlayers  int       `db:"max_players" json:"max_players"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
