package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type TournamentFormat string

const (
	FormatSingleElimination TournamentFormat = "single_elimination"
	FormatDoubleElimination TournamentFormat = "double_elimination"
	FormatSwiss             TournamentFormat = "swiss"
	FormatRoundRobin        TournamentFormat = "round_robin"
	FormatGuaranteedMatches TournamentFormat = "guaranteed_matches"
)

func (f TournamentFormat) Valid() bool {
	switch f {
	case FormatSingleElimination, FormatDoubleElimination, FormatSwiss,
		FormatRoundRobin, FormatGuaranteedMatches:
		return true
	}
	return false
}

const (
	SeedingRandom = "random"

	DefaultGuaranteedMatchCount = 3
	DefaultMaxRematches         = 1
)

// BracketConfig carries the per-format knobs. It is stored as a JSON
// column; unknown keys from older rows are dropped on scan.
type BracketConfig struct {
	SeedingMethod      string `json:"seeding_method,omitempty"`
	Rounds             int    `json:"rounds,omitempty"`        // swiss
	MatchCount         int    `json:"match_count,omitempty"`   // guaranteed matches, per fighter
	MaxRematches       *int   `json:"max_rematches,omitempty"` // guaranteed matches
	WeightBasedPairing *bool  `json:"weight_based_pairing,omitempty"`
}

func (c BracketConfig) RandomSeeding() bool {
	return c.SeedingMethod == SeedingRandom
}

// TargetMatchCount is the guaranteed per-fighter match count.
func (c BracketConfig) TargetMatchCount() int {
	if c.MatchCount > 0 {
		return c.MatchCount
	}
	return DefaultGuaranteedMatchCount
}

func (c BracketConfig) RematchLimit() int {
	if c.MaxRematches != nil {
		return *c.MaxRematches
	}
	return DefaultMaxRematches
}

// WeightPairingEnabled defaults to true; only an explicit false disables it.
func (c BracketConfig) WeightPairingEnabled() bool {
	return c.WeightBasedPairing == nil || *c.WeightBasedPairing
}

func (c BracketConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *BracketConfig) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = BracketConfig{}
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	}
	return fmt.Errorf("unsupported bracket config column type %T", src)
}

// BracketFormat configures one bracket for an event, optionally scoped
// to a single weight class (nil means all checked-in fighters).
type BracketFormat struct {
	ID            int              `json:"id"`
	EventID       int              `json:"event_id"`
	WeightClassID *int             `json:"weight_class_id,omitempty"`
	Format        TournamentFormat `json:"format_type"`
	Config        BracketConfig    `json:"config"`

	MinRestMinutes int `json:"min_rest_minutes"`

	AutoGenerate bool `json:"auto_generate"`
	IsGenerated  bool `json:"is_generated"`
	IsFinalized  bool `json:"is_finalized"`

	CreatedAt time.Time `json:"created_at"`
}
