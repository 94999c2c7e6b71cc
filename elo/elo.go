// Package elo holds the pure rating arithmetic shared by the replay
// engine and the per-match preview endpoints.
package elo

import (
	"math"
	"strings"
)

// Belt-based starting ratings. Unknown or missing belts fall back to the
// Blue baseline.
var beltRatings = map[string]float64{
	"black":  2000,
	"brown":  1600,
	"purple": 1467,
	"blue":   1333,
	"white":  1200,
}

const defaultBelt = "blue"

const (
	// K-factor: volatile for new fighters, steadier once established.
	kProvisional = 32
	kEstablished = 24

	// Matches before a fighter's K-factor settles.
	provisionalMatches = 10
)

// Scores for RatingChange's actual parameter.
const (
	ScoreWin  = 1.0
	ScoreDraw = 0.5
	ScoreLoss = 0.0
)

// StartingRating returns the belt-based baseline rating. Belt names are
// matched case-insensitively.
func StartingRating(beltRank *string) float64 {
	if beltRank == nil {
		return beltRatings[defaultBelt]
	}
	belt := strings.ToLower(strings.TrimSpace(*beltRank))
	if rating, ok := beltRatings[belt]; ok {
		return rating
	}
	return beltRatings[defaultBelt]
}

// ExpectedScore is the probability that a fighter rated rating beats an
// opponent rated opponentRating.
func ExpectedScore(rating, opponentRating float64) float64 {
	return 1 / (1 + math.Pow(10, (opponentRating-rating)/400))
}

// KFactor returns the update step size given how many rated matches the
// fighter has played.
func KFactor(matchesPlayed int) float64 {
	if matchesPlayed < provisionalMatches {
		return kProvisional
	}
	return kEstablished
}

// RatingChange is the signed rating delta after a match with the given
// actual score (1 win, 0.5 draw, 0 loss).
func RatingChange(rating, opponentRating, actual float64, matchesPlayed int) float64 {
	return KFactor(matchesPlayed) * (actual - ExpectedScore(rating, opponentRating))
}
