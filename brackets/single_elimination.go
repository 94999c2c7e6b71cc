package brackets

import (
	"context"
	"fmt"

	"github.com/vglabs/grapple-league/models"
)

// SingleEliminationGenerator builds a knockout bracket. Round one is
// padded to a full power-of-two row: when the field is short, the top
// seeds receive completed bye matches and the rest pair off. That way
// every later round holds exactly half the matches of the one before
// it, each fed by the winners of two specific feeder matches.
type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() *SingleEliminationGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "Single Elimination"
}

func (g *SingleEliminationGenerator) GeneratePlan(ctx context.Context, params GenerateParams) ([]*PlannedRound, error) {
	participants := seeded(params)
	n := len(participants)
	if n < 2 {
		return nil, ErrTooFewParticipants
	}

	totalRounds := numRoundsFor(n)
	rounds := make([]*PlannedRound, 0, totalRounds)

	firstRoundSize := 1 << (totalRounds - 1)
	byes := 2*firstRoundSize - n

	firstRound := &PlannedRound{
		Number: 1,
		Name:   eliminationRoundName(1, totalRounds),
		Status: models.RoundInProgress,
		Data:   models.RoundData{Format: string(models.FormatSingleElimination), TotalRounds: totalRounds},
	}
	idx := 0
	for matchNum := 1; matchNum <= firstRoundSize; matchNum++ {
		match := &PlannedMatch{
			UID:    matchUID(1, matchNum),
			Number: matchNum,
		}
		if matchNum <= byes {
			// Top seeds sit out the padded slots.
			match.PlayerAID = fighterIDPtr(participants[idx])
			match.Bye = true
			idx++
		} else {
			match.PlayerAID = fighterIDPtr(participants[idx])
			match.PlayerBID = fighterIDPtr(participants[idx+1])
			idx += 2
		}
		firstRound.Matches = append(firstRound.Matches, match)
	}
	rounds = append(rounds, firstRound)

	prev := firstRound
	for roundNum := 2; roundNum <= totalRounds; roundNum++ {
		round := &PlannedRound{
			Number: roundNum,
			Name:   eliminationRoundName(roundNum, totalRounds),
			Status: models.RoundPending,
			Data:   models.RoundData{Format: string(models.FormatSingleElimination), TotalRounds: totalRounds},
		}
		matchesInRound := 1 << (totalRounds - roundNum)
		for matchNum := 1; matchNum <= matchesInRound; matchNum++ {
			match := &PlannedMatch{
				UID:             matchUID(roundNum, matchNum),
				Number:          matchNum,
				DependsOnA:      uidPtr(prev.Matches[2*matchNum-2].UID),
				DependsOnB:      uidPtr(prev.Matches[2*matchNum-1].UID),
				RequiresWinnerA: true,
				RequiresWinnerB: true,
			}
			round.Matches = append(round.Matches, match)
		}
		rounds = append(rounds, round)
		prev = round
	}

	return rounds, nil
}

func eliminationRoundName(round, totalRounds int) string {
	switch totalRounds - round {
	case 0:
		return "Final"
	case 1:
		return "Semifinals"
	case 2:
		return "Quarterfinals"
	}
	return fmt.Sprintf("Round %d", round)
}
