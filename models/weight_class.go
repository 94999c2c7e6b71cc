package models

type WeightClass struct {
	ID     int         `json:"id"`
	Name   string      `json:"name"` // e.g. "Lightweight", "Middleweight", "Heavyweight"
	MinLbs *float64    `json:"min_lbs,omitempty"`
	MaxLbs *float64    `json:"max_lbs,omitempty"`
	Track  RatingTrack `json:"track"`
}
