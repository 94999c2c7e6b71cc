package models

// PlayerStanding is a fighter's record within one bracket, used by the
// Swiss and guaranteed-matches pairing strategies.
type PlayerStanding struct {
	PlayerID       int          `json:"player_id"`
	Wins           int          `json:"wins"`
	Losses         int          `json:"losses"`
	Draws          int          `json:"draws"`
	Points         float64      `json:"points"` // 1 per win, 0.5 per draw
	OpponentsFaced map[int]bool `json:"-"`
}

func NewPlayerStanding(playerID int) *PlayerStanding {
	return &PlayerStanding{PlayerID: playerID, OpponentsFaced: make(map[int]bool)}
}
