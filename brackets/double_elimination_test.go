package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vglabs/grapple-league/models"
)

func TestDoubleEliminationEightFighters(t *testing.T) {
	gen := NewDoubleEliminationGenerator()
	rounds, err := gen.GeneratePlan(context.Background(), GenerateParams{
		Bracket:      bracketFor(models.FormatDoubleElimination, models.BracketConfig{}),
		Participants: fightersN(8),
	})
	require.NoError(t, err)

	// W=3 winners rounds, 2*(W-1)=4 losers rounds, grand finals.
	require.Len(t, rounds, 8)

	assert.Equal(t, "Winners Round 1", rounds[0].Name)
	assert.Equal(t, "Winners Semifinals", rounds[1].Name)
	assert.Equal(t, "Winners Finals", rounds[2].Name)
	assert.Equal(t, "Grand Finals", rounds[7].Name)

	for _, round := range rounds[:3] {
		assert.Equal(t, models.BracketWinners, round.BracketType)
	}
	for _, round := range rounds[3:7] {
		assert.Equal(t, models.BracketLosers, round.BracketType)
	}
	assert.Equal(t, models.BracketFinals, rounds[7].BracketType)

	// Only winners round 1 starts in progress.
	assert.Equal(t, models.RoundInProgress, rounds[0].Status)
	for _, round := range rounds[1:] {
		assert.Equal(t, models.RoundPending, round.Status)
	}
}

func TestDoubleEliminationLosersWiring(t *testing.T) {
	gen := NewDoubleEliminationGenerator()
	rounds, err := gen.GeneratePlan(context.Background(), GenerateParams{
		Bracket:      bracketFor(models.FormatDoubleElimination, models.BracketConfig{}),
		Participants: fightersN(8),
	})
	require.NoError(t, err)

	winnersR1 := rounds[0]
	winnersR2 := rounds[1]
	dropDown1 := rounds[3]
	advancement1 := rounds[4]
	dropDown2 := rounds[5]
	losersFinal := rounds[6]
	finals := rounds[7]

	// First drop-down pairs the four R1 losers into two matches.
	assert.Equal(t, models.LosersDropDown, dropDown1.Data.Type)
	assert.Equal(t, 1, dropDown1.Data.FeedsFromWinners)
	require.Len(t, dropDown1.Matches, 2)
	first := dropDown1.Matches[0]
	require.NotNil(t, first.DependsOnA)
	require.NotNil(t, first.DependsOnB)
	assert.Equal(t, winnersR1.Matches[0].UID, *first.DependsOnA)
	assert.Equal(t, winnersR1.Matches[1].UID, *first.DependsOnB)
	assert.False(t, first.RequiresWinnerA)
	assert.False(t, first.RequiresWinnerB)

	// First advancement pairs the two drop-down winners.
	assert.Equal(t, models.LosersAdvancement, advancement1.Data.Type)
	require.Len(t, advancement1.Matches, 1)
	adv := advancement1.Matches[0]
	assert.Equal(t, dropDown1.Matches[0].UID, *adv.DependsOnA)
	assert.Equal(t, dropDown1.Matches[1].UID, *adv.DependsOnB)
	assert.True(t, adv.RequiresWinnerA)
	assert.True(t, adv.RequiresWinnerB)

	// Second drop-down takes the two semifinal losers.
	assert.Equal(t, 2, dropDown2.Data.FeedsFromWinners)
	require.Len(t, dropDown2.Matches, 1)
	assert.Equal(t, winnersR2.Matches[0].UID, *dropDown2.Matches[0].DependsOnA)

	// Losers final merges the fresh drop-down with the surviving loser.
	require.Len(t, losersFinal.Matches, 1)
	lf := losersFinal.Matches[0]
	assert.Equal(t, dropDown2.Matches[0].UID, *lf.DependsOnA)
	assert.Equal(t, advancement1.Matches[0].UID, *lf.DependsOnB)

	// Grand finals: winners champion vs losers champion.
	require.Len(t, finals.Matches, 1)
	gf := finals.Matches[0]
	assert.Equal(t, rounds[2].Matches[0].UID, *gf.DependsOnA)
	assert.Equal(t, losersFinal.Matches[0].UID, *gf.DependsOnB)
}

func TestDoubleEliminationNineFighterTopology(t *testing.T) {
	gen := NewDoubleEliminationGenerator()
	rounds, err := gen.GeneratePlan(context.Background(), GenerateParams{
		Bracket:      bracketFor(models.FormatDoubleElimination, models.BracketConfig{}),
		Participants: fightersN(9),
	})
	require.NoError(t, err)

	// W=4 winners rounds, 2*(W-1)=6 losers rounds, grand finals.
	require.Len(t, rounds, 11)

	// Winners round one is padded to eight matches, seven of them byes.
	winnersR1 := rounds[0]
	require.Len(t, winnersR1.Matches, 8)
	byes := 0
	for _, match := range winnersR1.Matches {
		if match.Bye {
			byes++
		}
	}
	assert.Equal(t, 7, byes)
	for i, want := range []int{4, 2, 1} {
		require.Len(t, rounds[i+1].Matches, want)
		for _, match := range rounds[i+1].Matches {
			require.NotNil(t, match.DependsOnA)
			require.NotNil(t, match.DependsOnB)
		}
	}

	// The first drop-down takes the lone contested round-one loser on a
	// single-slot forward; byes feed nothing into the losers lane.
	dropDown1 := rounds[4]
	require.Len(t, dropDown1.Matches, 1)
	first := dropDown1.Matches[0]
	require.NotNil(t, first.DependsOnA)
	assert.Equal(t, winnersR1.Matches[7].UID, *first.DependsOnA)
	assert.Nil(t, first.DependsOnB)
	assert.False(t, first.RequiresWinnerA)

	// Second drop-down pairs all four semifinal-feed losers.
	dropDown2 := rounds[6]
	require.Len(t, dropDown2.Matches, 2)
	for _, match := range dropDown2.Matches {
		require.NotNil(t, match.DependsOnA)
		require.NotNil(t, match.DependsOnB)
		assert.False(t, match.RequiresWinnerA)
		assert.False(t, match.RequiresWinnerB)
	}

	// Grand finals draws from the winners final and the last losers match.
	finals := rounds[10]
	require.Len(t, finals.Matches, 1)
	gf := finals.Matches[0]
	assert.Equal(t, rounds[3].Matches[0].UID, *gf.DependsOnA)
	lastLosers := rounds[9]
	assert.Equal(t, lastLosers.Matches[len(lastLosers.Matches)-1].UID, *gf.DependsOnB)
}

func TestDoubleEliminationRejectsSmallFields(t *testing.T) {
	gen := NewDoubleEliminationGenerator()
	_, err := gen.GeneratePlan(context.Background(), GenerateParams{
		Bracket:      bracketFor(models.FormatDoubleElimination, models.BracketConfig{}),
		Participants: fightersN(7),
	})
	assert.ErrorIs(t, err, ErrDoubleElimTooSmall)
}
