package brackets

import (
	"context"
	"fmt"

	"github.com/vglabs/grapple-league/models"
)

// RoundRobinGenerator pre-creates every round using the circle method:
// position 0 is fixed, the rest rotate one step per round. An odd field
// gets a virtual bye slot; pairings against it are simply skipped, so
// each fighter sits out exactly once.
type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() *RoundRobinGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "Round Robin"
}

func (g *RoundRobinGenerator) GeneratePlan(ctx context.Context, params GenerateParams) ([]*PlannedRound, error) {
	participants := seeded(params)
	if len(participants) < 2 {
		return nil, ErrTooFewParticipants
	}

	positions := make([]*Fighter, len(participants))
	copy(positions, participants)
	if len(positions)%2 == 1 {
		positions = append(positions, nil)
	}
	n := len(positions)
	numRounds := n - 1

	rounds := make([]*PlannedRound, 0, numRounds)
	for roundNum := 1; roundNum <= numRounds; roundNum++ {
		round := &PlannedRound{
			Number: roundNum,
			Name:   fmt.Sprintf("Round %d", roundNum),
			Status: models.RoundPending,
			Data:   models.RoundData{Format: string(models.FormatRoundRobin)},
		}
		if roundNum == 1 {
			round.Status = models.RoundInProgress
		}

		matchNum := 0
		for i := 0; i < n/2; i++ {
			a, b := positions[i], positions[n-1-i]
			if a == nil || b == nil {
				continue
			}
			matchNum++
			round.Matches = append(round.Matches, &PlannedMatch{
				UID:       matchUID(roundNum, matchNum),
				Number:    matchNum,
				PlayerAID: fighterIDPtr(a),
				PlayerBID: fighterIDPtr(b),
			})
		}
		rounds = append(rounds, round)

		// Rotate everything but the fixed head.
		rotated := make([]*Fighter, 0, n)
		rotated = append(rotated, positions[0], positions[n-1])
		rotated = append(rotated, positions[1:n-1]...)
		positions = rotated
	}

	return rounds, nil
}
