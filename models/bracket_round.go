package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type RoundStatus string

const (
	RoundPending    RoundStatus = "pending"
	RoundInProgress RoundStatus = "in_progress"
	RoundCompleted  RoundStatus = "completed"
	RoundCancelled  RoundStatus = "cancelled"
)

// Double-elimination lanes.
const (
	BracketWinners = "winners"
	BracketLosers  = "losers"
	BracketFinals  = "finals"
)

// Losers-bracket round kinds.
const (
	LosersDropDown    = "drop_down"
	LosersAdvancement = "advancement"
)

// RoundData is per-round metadata, stored as a JSON column.
type RoundData struct {
	Format                 string `json:"format,omitempty"`
	Type                   string `json:"type,omitempty"` // drop_down, advancement
	FeedsFromWinners       int    `json:"feeds_from_winners,omitempty"`
	TotalRounds            int    `json:"total_rounds,omitempty"`
	TotalMatchesPerFighter int    `json:"total_matches_per_fighter,omitempty"`
	MaxRematches           *int   `json:"max_rematches,omitempty"`
}

func (d RoundData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *RoundData) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = RoundData{}
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	}
	return fmt.Errorf("unsupported round data column type %T", src)
}

type BracketRound struct {
	ID              int         `json:"id"`
	BracketFormatID int         `json:"bracket_format_id"`
	RoundNumber     int         `json:"round_number"` // 1-based, globally ordered within the bracket
	RoundName       string      `json:"round_name"`
	BracketType     *string     `json:"bracket_type,omitempty"` // winners, losers, finals
	Status          RoundStatus `json:"status"`
	RoundData       RoundData   `json:"round_data"`
	CreatedAt       time.Time   `json:"created_at"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
}

func (r *BracketRound) InLane(lane string) bool {
	return r.BracketType != nil && *r.BracketType == lane
}
