package models

import "time"

// Entry registers a player for an event. Belt rank and weight are
// snapshotted at check-in so later profile edits do not affect pairing.
type Entry struct {
	ID            int       `json:"id"`
	EventID       int       `json:"event_id"`
	PlayerID      int       `json:"player_id"`
	WeightClassID *int      `json:"weight_class_id,omitempty"`
	CheckedIn     bool      `json:"checked_in"`
	BeltRank      *string   `json:"belt_rank,omitempty"`
	Weight        *float64  `json:"weight,omitempty"` // pounds
	CreatedAt     time.Time `json:"created_at"`
}
