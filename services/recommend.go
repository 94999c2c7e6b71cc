package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/vglabs/grapple-league/models"
)

// Defaults for format recommendation requests.
const (
	DefaultMinMatches       = 15
	DefaultMaxMatches       = 20
	DefaultMatchDurationMin = 10

	// Scheduling gap between consecutive matches.
	matchGapMinutes = 2
)

type RecommendRequest struct {
	Participants     int
	MinMatches       int
	MaxMatches       int
	MatchDurationMin int

	// TimeBudgetMin, when set, reorders recommendations around the
	// event's available mat time instead of the match-count range.
	TimeBudgetMin *int
}

type FormatRecommendation struct {
	Format            models.TournamentFormat `json:"format"`
	Name              string                  `json:"format_name"`
	MatchCount        int                     `json:"match_count"`
	MatchesPerFighter float64                 `json:"matches_per_fighter"`
	EstimatedMinutes  int                     `json:"estimated_minutes"`
	InRange           bool                    `json:"in_range"`
	DistanceFromRange int                     `json:"distance_from_range"`
	FitsInBudget      *bool                   `json:"fits_in_budget,omitempty"`
	SwissRounds       *int                    `json:"swiss_rounds,omitempty"`
}

// MatchCountFor returns how many decided matches a format produces for
// n fighters. rounds is the Swiss round count or the guaranteed
// per-fighter match count, depending on the format. Zero means the
// format cannot run with this field.
func MatchCountFor(format models.TournamentFormat, n, rounds int) int {
	if n < 2 {
		return 0
	}
	switch format {
	case models.FormatSingleElimination:
		return n - 1
	case models.FormatDoubleElimination:
		if n < 8 {
			return 0
		}
		return (n - 1) + (n - 2) + 1
	case models.FormatRoundRobin:
		return n * (n - 1) / 2
	case models.FormatSwiss:
		return (n / 2) * rounds
	case models.FormatGuaranteedMatches:
		return n * rounds / 2
	}
	return 0
}

// RecommendFormats sizes every runnable format for the field and ranks
// the options. With a time budget the sort puts formats that fit the
// budget first, closest to the budget within each group; without one it
// ranks by the requested match-count range.
func RecommendFormats(req RecommendRequest) []*FormatRecommendation {
	if req.Participants < 2 {
		return nil
	}
	if req.MinMatches <= 0 {
		req.MinMatches = DefaultMinMatches
	}
	if req.MaxMatches <= 0 {
		req.MaxMatches = DefaultMaxMatches
	}
	if req.MatchDurationMin <= 0 {
		req.MatchDurationMin = DefaultMatchDurationMin
	}

	type candidate struct {
		format models.TournamentFormat
		name   string
		rounds int
	}
	candidates := []candidate{
		{models.FormatRoundRobin, "Round Robin", 0},
		{models.FormatSingleElimination, "Single Elimination", 0},
		{models.FormatDoubleElimination, "Double Elimination", 0},
		{models.FormatSwiss, "Swiss (3 rounds)", 3},
		{models.FormatGuaranteedMatches, "Guaranteed Matches (2 each)", 2},
		{models.FormatGuaranteedMatches, "Guaranteed Matches (3 each)", 3},
	}

	n := req.Participants
	var recommendations []*FormatRecommendation
	for _, c := range candidates {
		matchCount := MatchCountFor(c.format, n, c.rounds)
		if matchCount == 0 {
			continue
		}

		estimated := matchCount*(req.MatchDurationMin+matchGapMinutes) - matchGapMinutes

		var perFighter float64
		switch c.format {
		case models.FormatRoundRobin:
			perFighter = float64(n - 1)
		case models.FormatSwiss, models.FormatGuaranteedMatches:
			perFighter = float64(c.rounds)
		default:
			perFighter = math.Round(float64(matchCount)/float64(n)*10) / 10
		}

		rec := &FormatRecommendation{
			Format:            c.format,
			Name:              c.name,
			MatchCount:        matchCount,
			MatchesPerFighter: perFighter,
			EstimatedMinutes:  estimated,
			InRange:           matchCount >= req.MinMatches && matchCount <= req.MaxMatches,
		}
		switch {
		case matchCount < req.MinMatches:
			rec.DistanceFromRange = req.MinMatches - matchCount
		case matchCount > req.MaxMatches:
			rec.DistanceFromRange = matchCount - req.MaxMatches
		}
		if c.format == models.FormatSwiss {
			rounds := c.rounds
			rec.SwissRounds = &rounds
		}
		if req.TimeBudgetMin != nil {
			fits := estimated <= *req.TimeBudgetMin
			rec.FitsInBudget = &fits
		}
		recommendations = append(recommendations, rec)
	}

	if req.TimeBudgetMin != nil {
		budget := *req.TimeBudgetMin
		sort.SliceStable(recommendations, func(i, j int) bool {
			a, b := recommendations[i], recommendations[j]
			if *a.FitsInBudget != *b.FitsInBudget {
				return *a.FitsInBudget
			}
			return absInt(a.EstimatedMinutes-budget) < absInt(b.EstimatedMinutes-budget)
		})
	} else {
		sort.SliceStable(recommendations, func(i, j int) bool {
			a, b := recommendations[i], recommendations[j]
			if a.InRange != b.InRange {
				return a.InRange
			}
			return a.DistanceFromRange < b.DistanceFromRange
		})
	}
	return recommendations
}

// EstimatedDuration formats an estimate in minutes for display.
func EstimatedDuration(minutes int) string {
	if minutes >= 60 {
		return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
	}
	return fmt.Sprintf("%dm", minutes)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
