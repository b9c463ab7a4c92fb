package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// DropRecord is one resolved drop as stored in drop_outcomes
type DropRecord struct {
	ID         int       `db:"id" json:"id"`
	DropID     string    `db:"drop_id" json:"drop_id"`
	PlayerName string    `db:"player_name" json:"player_name"`
	ChipColor  string    `db:"chip_color" json:"chip_color"`
	SlotIndex  int       `db:"slot_index" json:"slot_index"`
	Label      string    `db:"label" json:"label"`
	Missed     bool      `db:"missed" json:"missed"`
	Forced     bool      `db:"forced" json:"forced"`
	Steps      int       `db:"steps" json:"steps"`
	PegHits    int       `db:"peg_hits" json:"peg_hits"`
	FinalX     float64   `db:"final_x" json:"final_x"`
	BoardWidth float64   `db:"board_width" json:"board_width"`
	Seed       *int64    `db:"seed" json:"seed,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// RewardTemplate is a named, saved reward label set
type RewardTemplate struct {
	Name      string         `db:"name" json:"name"`
	Labels    pq.StringArray `db:"labels" json:"labels"`
	CreatedBy string         `db:"created_by" json:"created_by"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// OperatorAccount represents a board operator allowed to change the board
type OperatorAccount struct {
	Username     string         `db:"username" json:"username"`
	DisplayName  string         `db:"display_name" json:"display_name"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Roles        pq.StringArray `db:"roles" json:"roles"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// OperatorAudit records an operator action (resize, reward reload, template save)
type OperatorAudit struct {
	ID        int             `db:"id" json:"id"`
	Username  string          `db:"username" json:"username"`
	IP        string          `db:"ip" json:"ip"`
	Route     string          `db:"route" json:"route"`
	Action    string          `db:"action" json:"action"`
	Details   json.RawMessage `db:"details" json:"details"`
	Success   bool            `db:"success" json:"success"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
