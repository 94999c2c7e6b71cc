package brackets

import (
	"math"

	"github.com/vglabs/grapple-league/models"
)

// Weight legality: everyone must be within 30 lb of their opponent,
// except that two heavyweights (over 200 lb) may always meet. Unknown
// weights are not constrained.
const (
	maxWeightGapLbs    = 30.0
	heavyweightFloorLb = 200.0
)

func weightLegal(a, b *Fighter) bool {
	if a.Weight == 0 || b.Weight == 0 {
		return true
	}
	if a.Weight > heavyweightFloorLb && b.Weight > heavyweightFloorLb {
		return true
	}
	return math.Abs(a.Weight-b.Weight) <= maxWeightGapLbs
}

func sameWeightClass(a, b *Fighter) bool {
	return a.WeightClassID != nil && b.WeightClassID != nil && *a.WeightClassID == *b.WeightClassID
}

// matchWeightClass assigns the match to the heavier fighter's class.
func matchWeightClass(a, b *Fighter) *int {
	if a.Weight >= b.Weight {
		return a.WeightClassID
	}
	return b.WeightClassID
}

// WeightAwarePairing pairs a multi-class field. Candidates are tried in
// four passes: same class within the rematch limit, cross class within
// the limit, then the same two passes with the limit relaxed. Weight
// legality is never relaxed; a fighter with no legal opponent gets a
// bye in their own class.
func WeightAwarePairing(
	standings map[int]*models.PlayerStanding,
	history map[int]map[int]int,
	maxRematches int,
	fighters map[int]*Fighter,
) []Pairing {
	ratings := make(map[int]float64, len(fighters))
	for id, f := range fighters {
		ratings[id] = f.Rating
	}
	order := sortByRecord(standings, ratings)
	paired := make(map[int]bool)
	var pairings []Pairing

	for i, playerID := range order {
		if paired[playerID] {
			continue
		}
		fighter := fighters[playerID]
		if fighter == nil {
			fighter = &Fighter{ID: playerID}
		}

		passes := []func(*Fighter) bool{
			func(c *Fighter) bool { return sameWeightClass(fighter, c) && history[playerID][c.ID] < maxRematches },
			func(c *Fighter) bool { return !sameWeightClass(fighter, c) && history[playerID][c.ID] < maxRematches },
			func(c *Fighter) bool { return sameWeightClass(fighter, c) },
			func(c *Fighter) bool { return !sameWeightClass(fighter, c) },
		}

		var opponent *Fighter
		for _, pass := range passes {
			for _, candidateID := range order[i+1:] {
				if paired[candidateID] {
					continue
				}
				candidate := fighters[candidateID]
				if candidate == nil {
					candidate = &Fighter{ID: candidateID}
				}
				if !weightLegal(fighter, candidate) {
					continue
				}
				if pass(candidate) {
					opponent = candidate
					break
				}
			}
			if opponent != nil {
				break
			}
		}

		if opponent != nil {
			pairings = append(pairings, Pairing{
				PlayerAID:     playerID,
				PlayerBID:     intPtr(opponent.ID),
				WeightClassID: matchWeightClass(fighter, opponent),
			})
			paired[playerID] = true
			paired[opponent.ID] = true
		} else {
			pairings = append(pairings, Pairing{
				PlayerAID:     playerID,
				WeightClassID: fighter.WeightClassID,
			})
			paired[playerID] = true
		}
	}
	return pairings
}
