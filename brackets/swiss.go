package brackets

import (
	"context"

	"github.com/vglabs/grapple-league/models"
)

// SwissGenerator creates only the first round up front; subsequent
// rounds are paired from standings as rounds complete.
type SwissGenerator struct{}

func NewSwissGenerator() *SwissGenerator {
	return &SwissGenerator{}
}

func (g *SwissGenerator) GetName() string {
	return "Swiss"
}

// SwissRounds resolves the configured round count, defaulting to
// ceil(log2 n).
func SwissRounds(config models.BracketConfig, n int) int {
	if config.Rounds > 0 {
		return config.Rounds
	}
	return numRoundsFor(n)
}

func (g *SwissGenerator) GeneratePlan(ctx context.Context, params GenerateParams) ([]*PlannedRound, error) {
	participants := seeded(params)
	n := len(participants)
	if n < 2 {
		return nil, ErrTooFewParticipants
	}

	totalRounds := SwissRounds(params.Bracket.Config, n)
	round := &PlannedRound{
		Number: 1,
		Name:   "Swiss Round 1",
		Status: models.RoundInProgress,
		Data:   models.RoundData{Format: string(models.FormatSwiss), TotalRounds: totalRounds},
	}

	// Round 1 is strength-seeded: top half against bottom half.
	numMatches := n / 2
	for matchNum := 1; matchNum <= numMatches; matchNum++ {
		round.Matches = append(round.Matches, &PlannedMatch{
			UID:       matchUID(1, matchNum),
			Number:    matchNum,
			PlayerAID: fighterIDPtr(participants[matchNum-1]),
			PlayerBID: fighterIDPtr(participants[n-matchNum]),
		})
	}
	if n%2 == 1 {
		round.Matches = append(round.Matches, &PlannedMatch{
			UID:       matchUID(1, numMatches+1),
			Number:    numMatches + 1,
			PlayerAID: fighterIDPtr(participants[n/2]),
			Bye:       true,
		})
	}

	return []*PlannedRound{round}, nil
}
