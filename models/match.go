package models

import "time"

type MatchResult string

const (
	ResultPlayerAWin MatchResult = "a_win"
	ResultPlayerBWin MatchResult = "b_win"
	ResultDraw       MatchResult = "draw"
	ResultNoContest  MatchResult = "no_contest"
)

type MatchStatus string

const (
	MatchPending    MatchStatus = "pending"
	MatchReady      MatchStatus = "ready"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
	MatchCancelled  MatchStatus = "cancelled"
)

// MethodBye marks auto-completed advancement matches.
const MethodBye = "Bye"

type Match struct {
	ID             int  `json:"id"`
	EventID        int  `json:"event_id"`
	BracketRoundID *int `json:"bracket_round_id,omitempty"` // nil for manual pairings

	APlayerID     *int `json:"a_player_id,omitempty"` // nil encodes TBD or bye slot
	BPlayerID     *int `json:"b_player_id,omitempty"`
	WeightClassID *int `json:"weight_class_id,omitempty"`

	Result          *MatchResult `json:"result,omitempty"`
	Method          *string      `json:"method,omitempty"`
	DurationSeconds *int         `json:"duration_seconds,omitempty"`
	Status          MatchStatus  `json:"match_status"`
	MatchNumber     *int         `json:"match_number,omitempty"`

	// Dependency pair: each slot may be fed by a predecessor match.
	// RequiresWinner selects the predecessor's winner (true) or loser
	// (false, losers-bracket drop-downs only).
	DependsOnMatchA *int `json:"depends_on_match_a,omitempty"`
	DependsOnMatchB *int `json:"depends_on_match_b,omitempty"`
	RequiresWinnerA bool `json:"requires_winner_a"`
	RequiresWinnerB bool `json:"requires_winner_b"`

	AEloChange *int `json:"a_elo_change,omitempty"`
	BEloChange *int `json:"b_elo_change,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// WinnerID returns the winning player id, or nil for draws, no contests
// and unresolved matches.
func (m *Match) WinnerID() *int {
	if m.Result == nil {
		return nil
	}
	switch *m.Result {
	case ResultPlayerAWin:
		return m.APlayerID
	case ResultPlayerBWin:
		return m.BPlayerID
	}
	return nil
}

// LoserID returns the losing player id, or nil when there is no decision.
func (m *Match) LoserID() *int {
	if m.Result == nil {
		return nil
	}
	switch *m.Result {
	case ResultPlayerAWin:
		return m.BPlayerID
	case ResultPlayerBWin:
		return m.APlayerID
	}
	return nil
}

// IsBye reports whether the match is a bye advancement.
func (m *Match) IsBye() bool {
	return m.Method != nil && *m.Method == MethodBye
}
