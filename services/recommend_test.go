package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vglabs/grapple-league/models"
)

func TestMatchCountFor(t *testing.T) {
	assert.Equal(t, 7, MatchCountFor(models.FormatSingleElimination, 8, 0))
	assert.Equal(t, 14, MatchCountFor(models.FormatDoubleElimination, 8, 0))
	assert.Equal(t, 0, MatchCountFor(models.FormatDoubleElimination, 7, 0))
	assert.Equal(t, 28, MatchCountFor(models.FormatRoundRobin, 8, 0))
	assert.Equal(t, 12, MatchCountFor(models.FormatSwiss, 8, 3))
	assert.Equal(t, 12, MatchCountFor(models.FormatGuaranteedMatches, 8, 3))
	assert.Equal(t, 0, MatchCountFor(models.FormatRoundRobin, 1, 0))
}

func TestRecommendFormatsDefaults(t *testing.T) {
	recs := RecommendFormats(RecommendRequest{Participants: 8})
	require.Len(t, recs, 6)

	first := recs[0]
	assert.Equal(t, models.FormatDoubleElimination, first.Format)
	assert.Equal(t, 14, first.MatchCount)
	assert.Equal(t, 166, first.EstimatedMinutes)
	assert.False(t, first.InRange)
	assert.Equal(t, 1, first.DistanceFromRange)
	assert.Nil(t, first.FitsInBudget)

	// Ties on distance keep candidate order: Swiss before the
	// three-match guarantee, both at distance 3.
	assert.Equal(t, models.FormatSwiss, recs[1].Format)
	require.NotNil(t, recs[1].SwissRounds)
	assert.Equal(t, 3, *recs[1].SwissRounds)
	assert.Equal(t, models.FormatGuaranteedMatches, recs[2].Format)
	assert.InDelta(t, 3, recs[2].MatchesPerFighter, 1e-9)

	// Round robin (28 matches) and single elimination (7) are both a
	// distance of 8 from the 5-20 window; candidate order breaks the tie.
	assert.Equal(t, models.FormatRoundRobin, recs[4].Format)
	assert.InDelta(t, 7, recs[4].MatchesPerFighter, 1e-9)
	assert.Equal(t, models.FormatSingleElimination, recs[5].Format)
	assert.InDelta(t, 0.9, recs[5].MatchesPerFighter, 1e-9)
}

func TestRecommendFormatsWithTimeBudget(t *testing.T) {
	budget := 100
	recs := RecommendFormats(RecommendRequest{Participants: 8, TimeBudgetMin: &budget})
	require.Len(t, recs, 6)

	// Only single elimination (82m) and the two-match guarantee (94m)
	// fit in 100 minutes; the closer one wins.
	first, second := recs[0], recs[1]
	assert.Equal(t, models.FormatGuaranteedMatches, first.Format)
	assert.Equal(t, 94, first.EstimatedMinutes)
	require.NotNil(t, first.FitsInBudget)
	assert.True(t, *first.FitsInBudget)

	assert.Equal(t, models.FormatSingleElimination, second.Format)
	require.NotNil(t, second.FitsInBudget)
	assert.True(t, *second.FitsInBudget)

	for _, rec := range recs[2:] {
		require.NotNil(t, rec.FitsInBudget)
		assert.False(t, *rec.FitsInBudget)
	}
}

func TestRecommendFormatsSmallFieldExcludesDoubleElim(t *testing.T) {
	recs := RecommendFormats(RecommendRequest{Participants: 5})
	require.Len(t, recs, 5)
	for _, rec := range recs {
		assert.NotEqual(t, models.FormatDoubleElimination, rec.Format)
	}
	assert.Equal(t, models.FormatRoundRobin, recs[0].Format, "10 matches is closest to the 15-20 range")
}

func TestRecommendFormatsTooFewFighters(t *testing.T) {
	assert.Nil(t, RecommendFormats(RecommendRequest{Participants: 1}))
}

func TestEstimatedDuration(t *testing.T) {
	assert.Equal(t, "45m", EstimatedDuration(45))
	assert.Equal(t, "2h 46m", EstimatedDuration(166))
}
