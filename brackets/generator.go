package brackets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/vglabs/grapple-league/models"
)

var (
	ErrTooFewParticipants = errors.New("not enough participants to generate a bracket (minimum 2)")

	// Double elimination below 8 fighters forces repeated byes for the
	// same fighter, so it is rejected outright.
	ErrDoubleElimTooSmall = errors.New("double elimination requires at least 8 participants")
)

// Fighter is the slice of player state the pairing strategies need.
type Fighter struct {
	ID            int
	Weight        float64 // pounds, 0 when unknown
	WeightClassID *int
	Rating        float64
}

// PlannedMatch is one match in a generated plan. Dependency links point
// at other planned matches by UID and are resolved to database ids when
// the plan is persisted.
type PlannedMatch struct {
	UID           string
	Number        int
	PlayerAID     *int
	PlayerBID     *int
	WeightClassID *int

	DependsOnA      *string
	DependsOnB      *string
	RequiresWinnerA bool
	RequiresWinnerB bool

	// Bye matches are persisted already completed (result a_win, method "Bye").
	Bye bool
}

type PlannedRound struct {
	Number      int
	Name        string
	BracketType string // winners/losers/finals for double elim, empty otherwise
	Status      models.RoundStatus
	Data        models.RoundData
	Matches     []*PlannedMatch
}

type GenerateParams struct {
	Bracket      *models.BracketFormat
	Participants []*Fighter

	// Rand drives seeding shuffles; nil falls back to the global source.
	Rand *rand.Rand
}

type Generator interface {
	GeneratePlan(ctx context.Context, params GenerateParams) ([]*PlannedRound, error)

	GetName() string
}

// NewGenerator returns the strategy for the given format.
func NewGenerator(format models.TournamentFormat) (Generator, error) {
	switch format {
	case models.FormatSingleElimination:
		return NewSingleEliminationGenerator(), nil
	case models.FormatDoubleElimination:
		return NewDoubleEliminationGenerator(), nil
	case models.FormatSwiss:
		return NewSwissGenerator(), nil
	case models.FormatRoundRobin:
		return NewRoundRobinGenerator(), nil
	case models.FormatGuaranteedMatches:
		return NewGuaranteedMatchesGenerator(), nil
	}
	return nil, fmt.Errorf("unsupported bracket format %q", format)
}

func matchUID(round, number int) string {
	return fmt.Sprintf("R%dM%d", round, number)
}

// seeded returns the participant order to pair from, shuffling a copy
// when the bracket is configured for random seeding.
func seeded(params GenerateParams) []*Fighter {
	participants := make([]*Fighter, len(params.Participants))
	copy(participants, params.Participants)

	if params.Bracket != nil && params.Bracket.Config.RandomSeeding() {
		shuffle := rand.Shuffle
		if params.Rand != nil {
			shuffle = params.Rand.Shuffle
		}
		shuffle(len(participants), func(i, j int) {
			participants[i], participants[j] = participants[j], participants[i]
		})
	}
	return participants
}

func numRoundsFor(n int) int {
	if n < 2 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(n))))
}

func intPtr(v int) *int          { return &v }
func strPtr(v string) *string    { return &v }
func uidPtr(uid string) *string  { return &uid }
func fighterIDPtr(f *Fighter) *int {
	if f == nil {
		return nil
	}
	return intPtr(f.ID)
}
