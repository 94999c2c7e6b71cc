package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vglabs/grapple-league/models"
)

func fightersN(n int) []*Fighter {
	fighters := make([]*Fighter, 0, n)
	for i := 1; i <= n; i++ {
		fighters = append(fighters, &Fighter{ID: i})
	}
	return fighters
}

func bracketFor(format models.TournamentFormat, config models.BracketConfig) *models.BracketFormat {
	return &models.BracketFormat{ID: 1, EventID: 1, Format: format, Config: config}
}

func TestSingleEliminationEightFighters(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	rounds, err := gen.GeneratePlan(context.Background(), GenerateParams{
		Bracket:      bracketFor(models.FormatSingleElimination, models.BracketConfig{}),
		Participants: fightersN(8),
	})
	require.NoError(t, err)
	require.Len(t, rounds, 3)

	assert.Equal(t, "Quarterfinals", rounds[0].Name)
	assert.Equal(t, "Semifinals", rounds[1].Name)
	assert.Equal(t, "Final", rounds[2].Name)

	assert.Equal(t, models.RoundInProgress, rounds[0].Status)
	assert.Equal(t, models.RoundPending, rounds[1].Status)

	require.Len(t, rounds[0].Matches, 4)
	require.Len(t, rounds[1].Matches, 2)
	require.Len(t, rounds[2].Matches, 1)

	// Seeded in order: 1v2, 3v4, 5v6, 7v8, no byes.
	for i, match := range rounds[0].Matches {
		require.NotNil(t, match.PlayerAID)
		require.NotNil(t, match.PlayerBID)
		assert.Equal(t, 2*i+1, *match.PlayerAID)
		assert.Equal(t, 2*i+2, *match.PlayerBID)
		assert.False(t, match.Bye)
	}

	// Semifinal 1 takes the winners of QF1 and QF2.
	semi := rounds[1].Matches[0]
	require.NotNil(t, semi.DependsOnA)
	require.NotNil(t, semi.DependsOnB)
	assert.Equal(t, rounds[0].Matches[0].UID, *semi.DependsOnA)
	assert.Equal(t, rounds[0].Matches[1].UID, *semi.DependsOnB)
	assert.True(t, semi.RequiresWinnerA)
	assert.True(t, semi.RequiresWinnerB)
}

func TestSingleEliminationSixFighters(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	rounds, err := gen.GeneratePlan(context.Background(), GenerateParams{
		Bracket:      bracketFor(models.FormatSingleElimination, models.BracketConfig{}),
		Participants: fightersN(6),
	})
	require.NoError(t, err)
	require.Len(t, rounds, 3)

	// Round one padded to four matches: the top two seeds take byes,
	// the remaining four pair off.
	require.Len(t, rounds[0].Matches, 4)
	for i, match := range rounds[0].Matches[:2] {
		assert.True(t, match.Bye)
		require.NotNil(t, match.PlayerAID)
		assert.Equal(t, i+1, *match.PlayerAID)
		assert.Nil(t, match.PlayerBID)
	}
	for _, match := range rounds[0].Matches[2:] {
		assert.False(t, match.Bye)
		assert.NotNil(t, match.PlayerBID)
	}

	// Both semifinals carry two feeders.
	require.Len(t, rounds[1].Matches, 2)
	for i, semi := range rounds[1].Matches {
		require.NotNil(t, semi.DependsOnA)
		require.NotNil(t, semi.DependsOnB)
		assert.Equal(t, rounds[0].Matches[2*i].UID, *semi.DependsOnA)
		assert.Equal(t, rounds[0].Matches[2*i+1].UID, *semi.DependsOnB)
	}
}

func TestSingleEliminationOddField(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	rounds, err := gen.GeneratePlan(context.Background(), GenerateParams{
		Bracket:      bracketFor(models.FormatSingleElimination, models.BracketConfig{}),
		Participants: fightersN(5),
	})
	require.NoError(t, err)
	require.Len(t, rounds, 3)

	require.Len(t, rounds[0].Matches, 4)
	for i, bye := range rounds[0].Matches[:3] {
		assert.True(t, bye.Bye)
		require.NotNil(t, bye.PlayerAID)
		assert.Equal(t, i+1, *bye.PlayerAID)
		assert.Nil(t, bye.PlayerBID)
	}
	contested := rounds[0].Matches[3]
	assert.False(t, contested.Bye)
	assert.Equal(t, 4, *contested.PlayerAID)
	assert.Equal(t, 5, *contested.PlayerBID)
}

func TestSingleEliminationNineFighterTopology(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	rounds, err := gen.GeneratePlan(context.Background(), GenerateParams{
		Bracket:      bracketFor(models.FormatSingleElimination, models.BracketConfig{}),
		Participants: fightersN(9),
	})
	require.NoError(t, err)
	require.Len(t, rounds, 4)

	// Round one holds a full eight-match row: seven byes plus one
	// contested match, so every later-round slot has a feeder.
	require.Len(t, rounds[0].Matches, 8)
	byes := 0
	for _, match := range rounds[0].Matches {
		if match.Bye {
			byes++
		}
	}
	assert.Equal(t, 7, byes)
	last := rounds[0].Matches[7]
	assert.False(t, last.Bye)
	assert.Equal(t, 8, *last.PlayerAID)
	assert.Equal(t, 9, *last.PlayerBID)

	for roundIdx, want := range map[int]int{1: 4, 2: 2, 3: 1} {
		require.Len(t, rounds[roundIdx].Matches, want)
		for _, match := range rounds[roundIdx].Matches {
			require.NotNil(t, match.DependsOnA, "round %d match %d", roundIdx+1, match.Number)
			require.NotNil(t, match.DependsOnB, "round %d match %d", roundIdx+1, match.Number)
			assert.Nil(t, match.PlayerAID)
			assert.Nil(t, match.PlayerBID)
		}
	}
}

func TestSingleEliminationTooFew(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	_, err := gen.GeneratePlan(context.Background(), GenerateParams{
		Bracket:      bracketFor(models.FormatSingleElimination, models.BracketConfig{}),
		Participants: fightersN(1),
	})
	assert.ErrorIs(t, err, ErrTooFewParticipants)
}
