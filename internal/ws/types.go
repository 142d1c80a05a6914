package ws

import "time"

const (
	// server - client
	MsgDrop    = "drop"
	MsgBacklog = "backlog"

	// client - server
	MsgPing = "ping"
)

// DropEvent is one skin win pushed to the live feed
type DropEvent struct {
	ID       string    `json:"id"`
	UserID   int64     `json:"user_id"`
	Username string    `json:"username,omitempty"`
	CaseName string    `json:"case_name"`
	SkinName string    `json:"skin_name"`
	Rarity   string    `json:"rarity"`
	Value    int64     `json:"value"`
	At       time.Time `json:"at"`
}

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}
