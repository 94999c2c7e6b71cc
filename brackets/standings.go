package brackets

import (
	"sort"

	"github.com/vglabs/grapple-league/models"
)

// Pairing is one planned pairing for a dynamically generated round.
// PlayerBID nil means a bye. WeightClassID is set by the weight-aware
// path; callers fall back to the bracket's class when nil.
type Pairing struct {
	PlayerAID     int
	PlayerBID     *int
	WeightClassID *int
}

// ComputeStandings folds decided matches into per-fighter records.
// NoContest results count for nothing.
func ComputeStandings(matches []*models.Match) map[int]*models.PlayerStanding {
	standings := make(map[int]*models.PlayerStanding)

	ensure := func(playerID *int) *models.PlayerStanding {
		if playerID == nil {
			return nil
		}
		s, ok := standings[*playerID]
		if !ok {
			s = models.NewPlayerStanding(*playerID)
			standings[*playerID] = s
		}
		return s
	}

	for _, match := range matches {
		if match.Result == nil {
			continue
		}
		a := ensure(match.APlayerID)
		b := ensure(match.BPlayerID)

		switch *match.Result {
		case models.ResultPlayerAWin:
			if a != nil {
				a.Wins++
				a.Points += 1.0
			}
			if a != nil && b != nil {
				b.Losses++
				a.OpponentsFaced[b.PlayerID] = true
				b.OpponentsFaced[a.PlayerID] = true
			}
		case models.ResultPlayerBWin:
			if b != nil {
				b.Wins++
				b.Points += 1.0
			}
			if a != nil && b != nil {
				a.Losses++
				a.OpponentsFaced[b.PlayerID] = true
				b.OpponentsFaced[a.PlayerID] = true
			}
		case models.ResultDraw:
			if a != nil {
				a.Draws++
				a.Points += 0.5
			}
			if b != nil {
				b.Draws++
				b.Points += 0.5
			}
			if a != nil && b != nil {
				a.OpponentsFaced[b.PlayerID] = true
				b.OpponentsFaced[a.PlayerID] = true
			}
		}
	}
	return standings
}

// MatchupHistory counts how many times each pair has been matched,
// including matches not yet decided. The map is symmetric.
func MatchupHistory(matches []*models.Match) map[int]map[int]int {
	history := make(map[int]map[int]int)
	record := func(a, b int) {
		if history[a] == nil {
			history[a] = make(map[int]int)
		}
		history[a][b]++
	}
	for _, match := range matches {
		if match.APlayerID == nil || match.BPlayerID == nil {
			continue
		}
		record(*match.APlayerID, *match.BPlayerID)
		record(*match.BPlayerID, *match.APlayerID)
	}
	return history
}

// MatchCounts counts completed matches (byes included) per fighter.
func MatchCounts(matches []*models.Match) map[int]int {
	counts := make(map[int]int)
	for _, match := range matches {
		if match.Status != models.MatchCompleted {
			continue
		}
		if match.APlayerID != nil {
			counts[*match.APlayerID]++
		}
		if match.BPlayerID != nil {
			counts[*match.BPlayerID]++
		}
	}
	return counts
}

// sortByRecord orders fighters by points, then wins, then rating when
// provided, with the id as a deterministic tail tiebreak.
func sortByRecord(standings map[int]*models.PlayerStanding, ratings map[int]float64) []int {
	ids := make([]int, 0, len(standings))
	for id := range standings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := standings[ids[i]], standings[ids[j]]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if ratings != nil && ratings[ids[i]] != ratings[ids[j]] {
			return ratings[ids[i]] > ratings[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

// SwissPairing pairs fighters with similar records, avoiding rematches
// when possible. When every remaining candidate is a rematch the
// constraint is relaxed; a leftover fighter gets a bye.
func SwissPairing(standings map[int]*models.PlayerStanding, history map[int]map[int]int) []Pairing {
	order := sortByRecord(standings, nil)
	paired := make(map[int]bool)
	var pairings []Pairing

	for i, playerID := range order {
		if paired[playerID] {
			continue
		}
		opponent := pickOpponent(order[i+1:], paired, func(candidate int) bool {
			return history[playerID][candidate] == 0
		})
		if opponent == nil {
			opponent = pickOpponent(order[i+1:], paired, nil)
		}
		pairings = append(pairings, Pairing{PlayerAID: playerID, PlayerBID: opponent})
		paired[playerID] = true
		if opponent != nil {
			paired[*opponent] = true
		}
	}
	return pairings
}

// GuaranteedPairing is the single-class pairing for the guaranteed
// matches format: like Swiss, but rematches are tolerated up to
// maxRematches, and exceeded as a last resort rather than leaving a
// fighter unpaired.
func GuaranteedPairing(standings map[int]*models.PlayerStanding, history map[int]map[int]int, maxRematches int) []Pairing {
	order := sortByRecord(standings, nil)
	paired := make(map[int]bool)
	var pairings []Pairing

	for i, playerID := range order {
		if paired[playerID] {
			continue
		}
		opponent := pickOpponent(order[i+1:], paired, func(candidate int) bool {
			return history[playerID][candidate] < maxRematches
		})
		if opponent == nil {
			opponent = pickOpponent(order[i+1:], paired, nil)
		}
		pairings = append(pairings, Pairing{PlayerAID: playerID, PlayerBID: opponent})
		paired[playerID] = true
		if opponent != nil {
			paired[*opponent] = true
		}
	}
	return pairings
}

// pickOpponent returns the first unpaired candidate passing the filter
// (nil filter accepts anyone), or nil when none remains.
func pickOpponent(candidates []int, paired map[int]bool, ok func(int) bool) *int {
	for _, candidate := range candidates {
		if paired[candidate] {
			continue
		}
		if ok != nil && !ok(candidate) {
			continue
		}
		return intPtr(candidate)
	}
	return nil
}
