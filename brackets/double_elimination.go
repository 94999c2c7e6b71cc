package brackets

import (
	"context"
	"fmt"

	"github.com/vglabs/grapple-league/models"
)

// DoubleEliminationGenerator builds the full three-lane structure up
// front: a winners bracket, a losers bracket alternating drop-down and
// advancement rounds, and a grand finals. The winners bracket is laid
// out like a single elimination, with round one padded to a power of
// two by giving the top seeds byes. Every non-first-round match is a
// placeholder wired to its feeders by dependency links; drop-down
// slots take losers (requiresWinner=false), everything else takes
// winners.
type DoubleEliminationGenerator struct{}

func NewDoubleEliminationGenerator() *DoubleEliminationGenerator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) GetName() string {
	return "Double Elimination"
}

func (g *DoubleEliminationGenerator) GeneratePlan(ctx context.Context, params GenerateParams) ([]*PlannedRound, error) {
	participants := seeded(params)
	n := len(participants)
	if n < 8 {
		return nil, ErrDoubleElimTooSmall
	}

	winnersRounds := numRoundsFor(n)
	totalLosersRounds := 2 * (winnersRounds - 1)

	rounds := make([]*PlannedRound, 0, winnersRounds+totalLosersRounds+1)
	winnersByRound := make(map[int][]*PlannedMatch)

	// Winners bracket, laid out like a single elimination.
	var prev []*PlannedMatch
	for roundNum := 1; roundNum <= winnersRounds; roundNum++ {
		round := &PlannedRound{
			Number:      roundNum,
			Name:        winnersRoundName(roundNum, winnersRounds),
			BracketType: models.BracketWinners,
			Status:      models.RoundPending,
			Data:        models.RoundData{Format: string(models.FormatDoubleElimination)},
		}
		if roundNum == 1 {
			round.Status = models.RoundInProgress
			firstRoundSize := 1 << (winnersRounds - 1)
			byes := 2*firstRoundSize - n
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
				round.Matches = append(round.Matches, match)
			}
		} else {
			matchesInRound := 1 << (winnersRounds - roundNum)
			for matchNum := 1; matchNum <= matchesInRound; matchNum++ {
				match := &PlannedMatch{
					UID:             matchUID(roundNum, matchNum),
					Number:          matchNum,
					DependsOnA:      uidPtr(prev[2*matchNum-2].UID),
					DependsOnB:      uidPtr(prev[2*matchNum-1].UID),
					RequiresWinnerA: true,
					RequiresWinnerB: true,
				}
				round.Matches = append(round.Matches, match)
			}
		}
		rounds = append(rounds, round)
		winnersByRound[roundNum] = round.Matches
		prev = round.Matches
	}

	// Losers bracket. Each winners round w < W feeds a drop-down round
	// pairing its losers, followed by an advancement round merging the
	// drop-down winners with the winners of the previous losers round.
	var losersPrev []*PlannedMatch
	losersCounter := 0
	for feed := 1; feed < winnersRounds; feed++ {
		losersCounter++
		roundNum := winnersRounds + losersCounter
		dropDown := &PlannedRound{
			Number:      roundNum,
			Name:        fmt.Sprintf("Losers Round %d", losersCounter),
			BracketType: models.BracketLosers,
			Status:      models.RoundPending,
			Data: models.RoundData{
				Format:           string(models.FormatDoubleElimination),
				Type:             models.LosersDropDown,
				FeedsFromWinners: feed,
			},
		}
		// Bye matches produce no loser, so only contested feeders drop.
		feeders := contestedOnly(winnersByRound[feed])
		numLosers := len(feeders)
		for matchNum := 1; matchNum <= numLosers/2; matchNum++ {
			dropDown.Matches = append(dropDown.Matches, &PlannedMatch{
				UID:        matchUID(roundNum, matchNum),
				Number:     matchNum,
				DependsOnA: uidPtr(feeders[2*matchNum-2].UID),
				DependsOnB: uidPtr(feeders[2*matchNum-1].UID),
				// Both slots take the feeder's loser.
				RequiresWinnerA: false,
				RequiresWinnerB: false,
			})
		}
		if numLosers%2 == 1 {
			// Odd loser count: the trailing loser is forwarded on a bye.
			dropDown.Matches = append(dropDown.Matches, &PlannedMatch{
				UID:             matchUID(roundNum, numLosers/2+1),
				Number:          numLosers/2 + 1,
				DependsOnA:      uidPtr(feeders[numLosers-1].UID),
				RequiresWinnerA: false,
				RequiresWinnerB: false,
			})
		}
		rounds = append(rounds, dropDown)

		losersCounter++
		roundNum = winnersRounds + losersCounter
		advancement := &PlannedRound{
			Number:      roundNum,
			Name:        fmt.Sprintf("Losers Round %d", losersCounter),
			BracketType: models.BracketLosers,
			Status:      models.RoundPending,
			Data: models.RoundData{
				Format: string(models.FormatDoubleElimination),
				Type:   models.LosersAdvancement,
			},
		}
		merged := interleave(dropDown.Matches, losersPrev)
		for matchNum := 1; 2*matchNum <= len(merged); matchNum++ {
			advancement.Matches = append(advancement.Matches, &PlannedMatch{
				UID:             matchUID(roundNum, matchNum),
				Number:          matchNum,
				DependsOnA:      uidPtr(merged[2*matchNum-2].UID),
				DependsOnB:      uidPtr(merged[2*matchNum-1].UID),
				RequiresWinnerA: true,
				RequiresWinnerB: true,
			})
		}
		if len(merged)%2 == 1 {
			// Odd pool: the leftover fighter is forwarded on a bye.
			advancement.Matches = append(advancement.Matches, &PlannedMatch{
				UID:             matchUID(roundNum, len(merged)/2+1),
				Number:          len(merged)/2 + 1,
				DependsOnA:      uidPtr(merged[len(merged)-1].UID),
				RequiresWinnerA: true,
				RequiresWinnerB: false,
			})
		}
		rounds = append(rounds, advancement)
		losersPrev = advancement.Matches
	}

	// Grand finals: winners champion vs losers champion.
	finalsNum := winnersRounds + totalLosersRounds + 1
	finals := &PlannedRound{
		Number:      finalsNum,
		Name:        "Grand Finals",
		BracketType: models.BracketFinals,
		Status:      models.RoundPending,
		Data:        models.RoundData{Format: string(models.FormatDoubleElimination)},
	}
	winnersFinal := winnersByRound[winnersRounds][len(winnersByRound[winnersRounds])-1]
	grandFinals := &PlannedMatch{
		UID:             matchUID(finalsNum, 1),
		Number:          1,
		DependsOnA:      uidPtr(winnersFinal.UID),
		RequiresWinnerA: true,
		RequiresWinnerB: true,
	}
	if len(losersPrev) > 0 {
		grandFinals.DependsOnB = uidPtr(losersPrev[len(losersPrev)-1].UID)
	}
	finals.Matches = append(finals.Matches, grandFinals)
	rounds = append(rounds, finals)

	return rounds, nil
}

func contestedOnly(matches []*PlannedMatch) []*PlannedMatch {
	kept := make([]*PlannedMatch, 0, len(matches))
	for _, match := range matches {
		if !match.Bye {
			kept = append(kept, match)
		}
	}
	return kept
}

// interleave alternates entries from two pools, appending leftovers.
func interleave(a, b []*PlannedMatch) []*PlannedMatch {
	merged := make([]*PlannedMatch, 0, len(a)+len(b))
	for i := 0; i < len(a) || i < len(b); i++ {
		if i < len(a) {
			merged = append(merged, a[i])
		}
		if i < len(b) {
			merged = append(merged, b[i])
		}
	}
	return merged
}

func winnersRoundName(round, winnersRounds int) string {
	switch winnersRounds - round {
	case 0:
		return "Winners Finals"
	case 1:
		return "Winners Semifinals"
	}
	return fmt.Sprintf("Winners Round %d", round)
}
