package elo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strRef(s string) *string { return &s }

func TestStartingRating(t *testing.T) {
	tests := []struct {
		name string
		belt *string
		want float64
	}{
		{"black", strRef("black"), 2000},
		{"brown", strRef("brown"), 1600},
		{"purple", strRef("purple"), 1467},
		{"blue", strRef("blue"), 1333},
		{"white", strRef("white"), 1200},
		{"case insensitive", strRef("Black"), 2000},
		{"padded", strRef(" purple "), 1467},
		{"unknown falls back to blue", strRef("red"), 1333},
		{"nil falls back to blue", nil, 1333},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StartingRating(tt.belt))
		})
	}
}

func TestExpectedScore(t *testing.T) {
	assert.InDelta(t, 0.5, ExpectedScore(1500, 1500), 1e-9)

	// 400 points of rating difference is 10:1 odds.
	assert.InDelta(t, 10.0/11.0, ExpectedScore(1900, 1500), 1e-9)
	assert.InDelta(t, 1.0/11.0, ExpectedScore(1500, 1900), 1e-9)

	// Symmetry: expectations sum to 1.
	assert.InDelta(t, 1.0, ExpectedScore(1700, 1450)+ExpectedScore(1450, 1700), 1e-9)
}

func TestKFactor(t *testing.T) {
	assert.Equal(t, 32.0, KFactor(0))
	assert.Equal(t, 32.0, KFactor(9))
	assert.Equal(t, 24.0, KFactor(10))
	assert.Equal(t, 24.0, KFactor(100))
}

func TestRatingChange(t *testing.T) {
	// Even match, provisional K: a win moves +16, a loss -16.
	assert.InDelta(t, 16, RatingChange(1500, 1500, ScoreWin, 0), 1e-9)
	assert.InDelta(t, -16, RatingChange(1500, 1500, ScoreLoss, 0), 1e-9)
	assert.InDelta(t, 0, RatingChange(1500, 1500, ScoreDraw, 0), 1e-9)

	// Upsets move more than expected wins.
	upset := RatingChange(1400, 1700, ScoreWin, 20)
	expected := RatingChange(1700, 1400, ScoreWin, 20)
	assert.Greater(t, upset, expected)

	// Zero-sum at equal K.
	winner := RatingChange(1600, 1450, ScoreWin, 20)
	loser := RatingChange(1450, 1600, ScoreLoss, 20)
	assert.InDelta(t, 0, winner+loser, 1e-9)
}
