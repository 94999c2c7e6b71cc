package brackets

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vglabs/grapple-league/models"
)

func roundRobinPlan(t *testing.T, n int) []*PlannedRound {
	t.Helper()
	gen := NewRoundRobinGenerator()
	rounds, err := gen.GeneratePlan(context.Background(), GenerateParams{
		Bracket:      bracketFor(models.FormatRoundRobin, models.BracketConfig{}),
		Participants: fightersN(n),
	})
	require.NoError(t, err)
	return rounds
}

func TestRoundRobinEvenField(t *testing.T) {
	rounds := roundRobinPlan(t, 4)
	require.Len(t, rounds, 3)
	assert.Equal(t, models.RoundInProgress, rounds[0].Status)
	assert.Equal(t, models.RoundPending, rounds[1].Status)

	total := 0
	for _, round := range rounds {
		assert.Len(t, round.Matches, 2)
		total += len(round.Matches)
	}
	assert.Equal(t, 6, total) // n(n-1)/2
}

func TestRoundRobinEveryPairExactlyOnce(t *testing.T) {
	for _, n := range []int{4, 5, 7} {
		t.Run(fmt.Sprintf("%d fighters", n), func(t *testing.T) {
			rounds := roundRobinPlan(t, n)
			seen := make(map[[2]int]int)
			perFighter := make(map[int]int)
			for _, round := range rounds {
				inRound := make(map[int]bool)
				for _, match := range round.Matches {
					a, b := *match.PlayerAID, *match.PlayerBID
					if a > b {
						a, b = b, a
					}
					seen[[2]int{a, b}]++
					perFighter[*match.PlayerAID]++
					perFighter[*match.PlayerBID]++

					// Nobody fights twice in one round.
					assert.False(t, inRound[a])
					assert.False(t, inRound[b])
					inRound[a] = true
					inRound[b] = true
				}
			}

			assert.Len(t, seen, n*(n-1)/2)
			for pair, count := range seen {
				assert.Equal(t, 1, count, "pair %v repeated", pair)
			}
			for id := 1; id <= n; id++ {
				assert.Equal(t, n-1, perFighter[id], "fighter %d match count", id)
			}
		})
	}
}

func TestRoundRobinOddFieldRounds(t *testing.T) {
	// Odd fields get a virtual bye slot: n rounds, each fighter idle once.
	rounds := roundRobinPlan(t, 5)
	require.Len(t, rounds, 5)
	for _, round := range rounds {
		assert.Len(t, round.Matches, 2)
	}
}
