package models

import "time"

// RatingTrack selects one of the per-division rating columns on a Player.
type RatingTrack string

const (
	TrackLightweight  RatingTrack = "lightweight"
	TrackMiddleweight RatingTrack = "middleweight"
	TrackHeavyweight  RatingTrack = "heavyweight"
)

type Player struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	BeltRank      *string  `json:"belt_rank,omitempty"` // white, blue, purple, brown, black
	Weight        *float64 `json:"weight,omitempty"`    // pounds
	WeightClassID *int     `json:"weight_class_id,omitempty"`
	Academy       *string  `json:"academy,omitempty"`
	PhotoURL      *string  `json:"photo_url,omitempty"`

	// Overall (pound-for-pound) rating plus one rating per division track.
	EloRating       float64 `json:"elo_rating"`
	EloLightweight  float64 `json:"elo_lightweight"`
	EloMiddleweight float64 `json:"elo_middleweight"`
	EloHeavyweight  float64 `json:"elo_heavyweight"`

	InitialEloLightweight  float64 `json:"initial_elo_lightweight"`
	InitialEloMiddleweight float64 `json:"initial_elo_middleweight"`
	InitialEloHeavyweight  float64 `json:"initial_elo_heavyweight"`

	ManualBadges []string  `json:"manual_badges,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DivisionRating returns the player's current rating on the given track.
func (p *Player) DivisionRating(track RatingTrack) float64 {
	switch track {
	case TrackLightweight:
		return p.EloLightweight
	case TrackMiddleweight:
		return p.EloMiddleweight
	case TrackHeavyweight:
		return p.EloHeavyweight
	}
	return p.EloRating
}

func (p *Player) SetDivisionRating(track RatingTrack, rating float64) {
	switch track {
	case TrackLightweight:
		p.EloLightweight = rating
	case TrackMiddleweight:
		p.EloMiddleweight = rating
	case TrackHeavyweight:
		p.EloHeavyweight = rating
	}
}

func (p *Player) SetInitialDivisionRating(track RatingTrack, rating float64) {
	switch track {
	case TrackLightweight:
		p.InitialEloLightweight = rating
	case TrackMiddleweight:
		p.InitialEloMiddleweight = rating
	case TrackHeavyweight:
		p.InitialEloHeavyweight = rating
	}
}
