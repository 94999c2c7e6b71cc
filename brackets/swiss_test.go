package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vglabs/grapple-league/models"
)

func TestSwissFirstRoundPairing(t *testing.T) {
	gen := NewSwissGenerator()
	rounds, err := gen.GeneratePlan(context.Background(), GenerateParams{
		Bracket:      bracketFor(models.FormatSwiss, models.BracketConfig{Rounds: 3}),
		Participants: fightersN(5),
	})
	require.NoError(t, err)
	require.Len(t, rounds, 1)

	round := rounds[0]
	assert.Equal(t, "Swiss Round 1", round.Name)
	assert.Equal(t, models.RoundInProgress, round.Status)
	assert.Equal(t, 3, round.Data.TotalRounds)

	// Top half against bottom half: 1v5, 2v4; the middle seed sits out.
	require.Len(t, round.Matches, 3)
	assert.Equal(t, 1, *round.Matches[0].PlayerAID)
	assert.Equal(t, 5, *round.Matches[0].PlayerBID)
	assert.Equal(t, 2, *round.Matches[1].PlayerAID)
	assert.Equal(t, 4, *round.Matches[1].PlayerBID)

	bye := round.Matches[2]
	assert.True(t, bye.Bye)
	assert.Equal(t, 3, *bye.PlayerAID)
	assert.Nil(t, bye.PlayerBID)
}

func TestSwissRoundsDefault(t *testing.T) {
	assert.Equal(t, 3, SwissRounds(models.BracketConfig{}, 5))
	assert.Equal(t, 3, SwissRounds(models.BracketConfig{}, 8))
	assert.Equal(t, 4, SwissRounds(models.BracketConfig{}, 9))
	assert.Equal(t, 7, SwissRounds(models.BracketConfig{Rounds: 7}, 5))
}

func TestSwissPairingAvoidsRematches(t *testing.T) {
	standings := map[int]*models.PlayerStanding{
		1: {PlayerID: 1, Wins: 1, Points: 1},
		2: {PlayerID: 2, Wins: 1, Points: 1},
		3: {PlayerID: 3, Losses: 1},
		4: {PlayerID: 4, Losses: 1},
	}
	// 1 already beat 2, 3 already lost to 4.
	history := map[int]map[int]int{
		1: {2: 1}, 2: {1: 1},
		3: {4: 1}, 4: {3: 1},
	}

	pairings := SwissPairing(standings, history)
	require.Len(t, pairings, 2)

	// Leader pairs down to avoid the rematch.
	assert.Equal(t, 1, pairings[0].PlayerAID)
	require.NotNil(t, pairings[0].PlayerBID)
	assert.Equal(t, 3, *pairings[0].PlayerBID)
	assert.Equal(t, 2, pairings[1].PlayerAID)
	assert.Equal(t, 4, *pairings[1].PlayerBID)
}

func TestSwissPairingRelaxesWhenUnavoidable(t *testing.T) {
	standings := map[int]*models.PlayerStanding{
		1: {PlayerID: 1, Wins: 1, Points: 1},
		2: {PlayerID: 2},
	}
	history := map[int]map[int]int{1: {2: 1}, 2: {1: 1}}

	pairings := SwissPairing(standings, history)
	require.Len(t, pairings, 1)
	require.NotNil(t, pairings[0].PlayerBID)
	assert.Equal(t, 2, *pairings[0].PlayerBID)
}

func TestSwissPairingOddFieldBye(t *testing.T) {
	standings := map[int]*models.PlayerStanding{
		1: {PlayerID: 1, Wins: 1, Points: 1},
		2: {PlayerID: 2, Losses: 1},
		3: {PlayerID: 3, Wins: 1, Points: 1},
	}
	pairings := SwissPairing(standings, map[int]map[int]int{})
	require.Len(t, pairings, 2)
	assert.Nil(t, pairings[1].PlayerBID)
}
