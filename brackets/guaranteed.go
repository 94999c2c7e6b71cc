package brackets

import (
	"context"

	"github.com/vglabs/grapple-league/models"
)

// GuaranteedMatchesGenerator runs a ladder: nobody is eliminated, and
// rounds keep being paired until every fighter reaches the configured
// match count. Multi-class brackets pair with weight constraints unless
// disabled in the config.
type GuaranteedMatchesGenerator struct{}

func NewGuaranteedMatchesGenerator() *GuaranteedMatchesGenerator {
	return &GuaranteedMatchesGenerator{}
}

func (g *GuaranteedMatchesGenerator) GetName() string {
	return "Guaranteed Matches"
}

// UseWeightPairing reports whether a bracket pairs across weight
// classes with the weight-aware strategy.
func UseWeightPairing(bracket *models.BracketFormat) bool {
	return bracket.WeightClassID == nil && bracket.Config.WeightPairingEnabled()
}

func (g *GuaranteedMatchesGenerator) GeneratePlan(ctx context.Context, params GenerateParams) ([]*PlannedRound, error) {
	participants := seeded(params)
	n := len(participants)
	if n < 2 {
		return nil, ErrTooFewParticipants
	}

	config := params.Bracket.Config
	round := &PlannedRound{
		Number: 1,
		Name:   "Round 1",
		Status: models.RoundInProgress,
		Data: models.RoundData{
			Format:                 string(models.FormatGuaranteedMatches),
			TotalMatchesPerFighter: config.TargetMatchCount(),
			MaxRematches:           intPtr(config.RematchLimit()),
		},
	}

	if UseWeightPairing(params.Bracket) {
		// Everyone starts 0-0-0; the weight-aware sort falls back to
		// rating, giving competitive opening pairings.
		standings := make(map[int]*models.PlayerStanding, n)
		fighters := make(map[int]*Fighter, n)
		for _, p := range participants {
			standings[p.ID] = models.NewPlayerStanding(p.ID)
			fighters[p.ID] = p
		}
		pairings := WeightAwarePairing(standings, nil, config.RematchLimit(), fighters)
		round.Matches = MatchesFromPairings(pairings, 1)
		return []*PlannedRound{round}, nil
	}

	matchNum := 0
	for i := 0; i+1 < n; i += 2 {
		matchNum++
		round.Matches = append(round.Matches, &PlannedMatch{
			UID:       matchUID(1, matchNum),
			Number:    matchNum,
			PlayerAID: fighterIDPtr(participants[i]),
			PlayerBID: fighterIDPtr(participants[i+1]),
		})
	}
	if n%2 == 1 {
		matchNum++
		round.Matches = append(round.Matches, &PlannedMatch{
			UID:       matchUID(1, matchNum),
			Number:    matchNum,
			PlayerAID: fighterIDPtr(participants[n-1]),
			Bye:       true,
		})
	}

	return []*PlannedRound{round}, nil
}

// MatchesFromPairings turns pairings into planned matches for the given
// round number. Pairings without an opponent become byes.
func MatchesFromPairings(pairings []Pairing, roundNum int) []*PlannedMatch {
	matches := make([]*PlannedMatch, 0, len(pairings))
	for i, pairing := range pairings {
		match := &PlannedMatch{
			UID:           matchUID(roundNum, i+1),
			Number:        i + 1,
			PlayerAID:     intPtr(pairing.PlayerAID),
			PlayerBID:     pairing.PlayerBID,
			WeightClassID: pairing.WeightClassID,
		}
		if pairing.PlayerBID == nil {
			match.Bye = true
		}
		matches = append(matches, match)
	}
	return matches
}
