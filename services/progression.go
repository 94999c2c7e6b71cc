package services

import (
	"context"
	"fmt"

	"github.com/vglabs/grapple-league/brackets"
	"github.com/vglabs/grapple-league/live"
	"github.com/vglabs/grapple-league/models"
	"github.com/vglabs/grapple-league/repositories"
)

// propagateResult pushes a completed match's winner and loser into the
// matches that depend on it, auto-completes explicit bye-forwards, and
// activates pending rounds that gained a ready match. Errors on single
// dependents are logged, not returned: the originating result write
// stands, and the rating replay re-derives anything rating-related.
func (s *TournamentService) propagateResult(ctx context.Context, match *models.Match) error {
	if match.Result == nil || *match.Result == models.ResultNoContest {
		return nil
	}
	winner := match.WinnerID()
	loser := match.LoserID()
	if winner == nil && loser == nil {
		// Draw: nothing advances.
		return nil
	}

	dependents, err := s.matches.ListByDependency(ctx, match.ID)
	if err != nil {
		return err
	}

	var completedByes []*models.Match
	for _, dependent := range dependents {
		if dependent.Status == models.MatchCompleted || dependent.Status == models.MatchCancelled {
			continue
		}

		aPlayer := dependent.APlayerID
		bPlayer := dependent.BPlayerID
		if dependent.DependsOnMatchA != nil && *dependent.DependsOnMatchA == match.ID {
			if dependent.RequiresWinnerA && winner != nil {
				aPlayer = winner
			} else if !dependent.RequiresWinnerA && loser != nil {
				aPlayer = loser
			}
		}
		if dependent.DependsOnMatchB != nil && *dependent.DependsOnMatchB == match.ID {
			if dependent.RequiresWinnerB && winner != nil {
				bPlayer = winner
			} else if !dependent.RequiresWinnerB && loser != nil {
				bPlayer = loser
			}
		}

		changed := !intPtrEqual(aPlayer, dependent.APlayerID) || !intPtrEqual(bPlayer, dependent.BPlayerID)
		if changed {
			if err := s.matches.UpdateSlots(ctx, dependent.ID, aPlayer, bPlayer); err != nil {
				s.logger.Error("failed to advance fighter into dependent match",
					"match_id", match.ID, "dependent_id", dependent.ID, "error", err)
				continue
			}
			dependent.APlayerID = aPlayer
			dependent.BPlayerID = bPlayer
		}

		switch {
		case aPlayer != nil && bPlayer != nil:
			if err := s.matches.UpdateStatus(ctx, dependent.ID, models.MatchReady); err != nil {
				s.logger.Error("failed to mark dependent ready",
					"dependent_id", dependent.ID, "error", err)
				continue
			}
			dependent.Status = models.MatchReady

		case aPlayer != nil && bPlayer == nil && dependent.DependsOnMatchB == nil:
			// Explicit bye-forward: no second feed exists, so the
			// fighter advances unopposed.
			if err := s.completeAsBye(ctx, dependent); err != nil {
				s.logger.Error("failed to auto-complete bye-forward",
					"dependent_id", dependent.ID, "error", err)
				continue
			}
			completedByes = append(completedByes, dependent)
		}
	}

	for _, bye := range completedByes {
		if err := s.propagateResult(ctx, bye); err != nil {
			s.logger.Error("recursive bye propagation failed",
				"match_id", bye.ID, "error", err)
		}
		// A bye-forward can be the last open match in its round.
		if bye.BracketRoundID != nil {
			if err := s.checkRoundCompletion(ctx, *bye.BracketRoundID); err != nil {
				s.logger.Error("round completion check failed after bye-forward",
					"match_id", bye.ID, "round_id", *bye.BracketRoundID, "error", err)
			}
		}
	}

	return s.activatePendingRounds(ctx, match.EventID)
}

func (s *TournamentService) completeAsBye(ctx context.Context, match *models.Match) error {
	result := models.ResultPlayerAWin
	method := models.MethodBye
	duration := 0
	now := s.clock.Now()
	if err := s.matches.UpdateResult(ctx, match.ID, &result, &method, &duration, models.MatchCompleted, &now); err != nil {
		return err
	}
	match.Result = &result
	match.Method = &method
	match.DurationSeconds = &duration
	match.Status = models.MatchCompleted
	match.CompletedAt = &now
	return nil
}

// activatePendingRounds promotes any pending round of the event's
// brackets that now holds at least one ready match.
func (s *TournamentService) activatePendingRounds(ctx context.Context, eventID int) error {
	eventBrackets, err := s.brackets.ListByEvent(ctx, eventID)
	if err != nil {
		return err
	}
	for _, bracket := range eventBrackets {
		rounds, err := s.rounds.ListByBracket(ctx, bracket.ID)
		if err != nil {
			return err
		}
		for _, round := range rounds {
			if round.Status != models.RoundPending {
				continue
			}
			matches, err := s.matches.ListByRound(ctx, round.ID)
			if err != nil {
				return err
			}
			for _, match := range matches {
				if match.Status == models.MatchReady {
					if err := s.rounds.UpdateStatus(ctx, round.ID, models.RoundInProgress, nil); err != nil {
						return err
					}
					break
				}
			}
		}
	}
	return nil
}

// checkRoundCompletion marks a round completed once every match in it
// is done, then runs the bracket's format-specific advancement when
// auto-generation is on.
func (s *TournamentService) checkRoundCompletion(ctx context.Context, roundID int) error {
	matches, err := s.matches.ListByRound(ctx, roundID)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return nil
	}
	for _, match := range matches {
		if match.Status != models.MatchCompleted {
			return nil
		}
	}

	round, err := s.rounds.GetByID(ctx, roundID)
	if err != nil {
		return err
	}
	if round.Status == models.RoundCompleted {
		return nil
	}

	now := s.clock.Now()
	if err := s.rounds.UpdateStatus(ctx, roundID, models.RoundCompleted, &now); err != nil {
		return err
	}
	round.Status = models.RoundCompleted
	round.CompletedAt = &now

	bracket, err := s.getBracket(ctx, round.BracketFormatID)
	if err != nil {
		return err
	}
	s.notifier.BroadcastEvent(bracket.EventID, live.TypeRoundCompleted, map[string]interface{}{
		"bracket_id":   bracket.ID,
		"round_id":     round.ID,
		"round_number": round.RoundNumber,
		"round_name":   round.RoundName,
	})

	if !bracket.AutoGenerate {
		return nil
	}

	switch bracket.Format {
	case models.FormatSingleElimination:
		// Dependency propagation alone advances the bracket.
		return nil
	case models.FormatSwiss:
		return s.advanceSwiss(ctx, bracket, round)
	case models.FormatGuaranteedMatches:
		return s.advanceGuaranteed(ctx, bracket, round)
	case models.FormatRoundRobin:
		return s.advanceRoundRobin(ctx, bracket)
	case models.FormatDoubleElimination:
		return s.advanceDoubleElim(ctx, bracket, round)
	}
	return nil
}

// advanceSwiss pairs the next round from standings, or finalizes the
// bracket after the last configured round.
func (s *TournamentService) advanceSwiss(ctx context.Context, bracket *models.BracketFormat, round *models.BracketRound) error {
	allMatches, err := s.matches.ListByBracket(ctx, bracket.ID)
	if err != nil {
		return err
	}

	totalRounds := round.RoundData.TotalRounds
	if totalRounds == 0 {
		totalRounds = brackets.SwissRounds(bracket.Config, countBracketFighters(allMatches))
	}
	if round.RoundNumber >= totalRounds {
		return s.finalizeBracket(ctx, bracket)
	}

	standings := brackets.ComputeStandings(allMatches)
	for _, id := range bracketFighterIDs(allMatches) {
		if _, ok := standings[id]; !ok {
			standings[id] = models.NewPlayerStanding(id)
		}
	}
	history := brackets.MatchupHistory(allMatches)
	pairings := brackets.SwissPairing(standings, history)

	nextNumber := round.RoundNumber + 1
	data := models.RoundData{Format: string(models.FormatSwiss), TotalRounds: totalRounds}
	return s.createDynamicRound(ctx, bracket, nextNumber, fmt.Sprintf("Swiss Round %d", nextNumber), data, pairings)
}

// advanceGuaranteed pairs another round among fighters still short of
// their guaranteed match count, or finalizes once everyone is done.
func (s *TournamentService) advanceGuaranteed(ctx context.Context, bracket *models.BracketFormat, round *models.BracketRound) error {
	allMatches, err := s.matches.ListByBracket(ctx, bracket.ID)
	if err != nil {
		return err
	}

	target := round.RoundData.TotalMatchesPerFighter
	if target == 0 {
		target = bracket.Config.TargetMatchCount()
	}
	maxRematches := bracket.Config.RematchLimit()
	if round.RoundData.MaxRematches != nil {
		maxRematches = *round.RoundData.MaxRematches
	}

	counts := brackets.MatchCounts(allMatches)
	var needing []int
	for _, id := range bracketFighterIDs(allMatches) {
		if counts[id] < target {
			needing = append(needing, id)
		}
	}
	if len(needing) == 0 {
		return s.finalizeBracket(ctx, bracket)
	}

	full := brackets.ComputeStandings(allMatches)
	restricted := make(map[int]*models.PlayerStanding, len(needing))
	for _, id := range needing {
		if standing, ok := full[id]; ok {
			restricted[id] = standing
		} else {
			restricted[id] = models.NewPlayerStanding(id)
		}
	}
	history := brackets.MatchupHistory(allMatches)

	var pairings []brackets.Pairing
	if brackets.UseWeightPairing(bracket) {
		fighters, err := s.loadFighters(ctx, bracket.EventID, nil)
		if err != nil {
			return err
		}
		fighterByID := make(map[int]*brackets.Fighter, len(needing))
		for _, fighter := range fighters {
			for _, id := range needing {
				if fighter.ID == id {
					fighterByID[id] = fighter
				}
			}
		}
		pairings = brackets.WeightAwarePairing(restricted, history, maxRematches, fighterByID)
	} else {
		pairings = brackets.GuaranteedPairing(restricted, history, maxRematches)
	}

	nextNumber := round.RoundNumber + 1
	data := models.RoundData{
		Format:                 string(models.FormatGuaranteedMatches),
		TotalMatchesPerFighter: target,
		MaxRematches:           &maxRematches,
	}
	return s.createDynamicRound(ctx, bracket, nextNumber, fmt.Sprintf("Round %d", nextNumber), data, pairings)
}

// createDynamicRound persists a standings-derived round. Byes are
// stored already completed; if the whole round came out as byes the
// completion check runs immediately so the format keeps advancing.
func (s *TournamentService) createDynamicRound(ctx context.Context, bracket *models.BracketFormat, number int, name string, data models.RoundData, pairings []brackets.Pairing) error {
	round := &models.BracketRound{
		BracketFormatID: bracket.ID,
		RoundNumber:     number,
		RoundName:       name,
		Status:          models.RoundInProgress,
		RoundData:       data,
	}

	var byes []*models.Match
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.rounds.Create(ctx, exec, round); err != nil {
			return err
		}
		now := s.clock.Now()
		for i, pairing := range pairings {
			planned := &brackets.PlannedMatch{
				Number:        i + 1,
				PlayerAID:     &pairing.PlayerAID,
				PlayerBID:     pairing.PlayerBID,
				WeightClassID: pairing.WeightClassID,
				Bye:           pairing.PlayerBID == nil,
			}
			match := s.matchFromPlan(bracket, round, planned, now)
			if err := s.matches.Create(ctx, exec, match); err != nil {
				return err
			}
			if match.IsBye() {
				byes = append(byes, match)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, bye := range byes {
		if err := s.propagateResult(ctx, bye); err != nil {
			s.logger.Error("bye propagation failed in dynamic round",
				"round_id", round.ID, "match_id", bye.ID, "error", err)
		}
	}
	if len(byes) == len(pairings) {
		return s.checkRoundCompletion(ctx, round.ID)
	}
	return nil
}

// advanceRoundRobin activates the next pre-created round, or finalizes
// when none remains.
func (s *TournamentService) advanceRoundRobin(ctx context.Context, bracket *models.BracketFormat) error {
	rounds, err := s.rounds.ListByBracket(ctx, bracket.ID)
	if err != nil {
		return err
	}
	for _, round := range rounds {
		if round.Status != models.RoundPending {
			continue
		}
		if err := s.rounds.UpdateStatus(ctx, round.ID, models.RoundInProgress, nil); err != nil {
			return err
		}
		matches, err := s.matches.ListByRound(ctx, round.ID)
		if err != nil {
			return err
		}
		for _, match := range matches {
			if match.Status == models.MatchPending {
				if err := s.matches.UpdateStatus(ctx, match.ID, models.MatchReady); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return s.finalizeBracket(ctx, bracket)
}

// advanceDoubleElim drives the three double-elimination lanes after a
// round completes.
func (s *TournamentService) advanceDoubleElim(ctx context.Context, bracket *models.BracketFormat, completed *models.BracketRound) error {
	rounds, err := s.rounds.ListByBracket(ctx, bracket.ID)
	if err != nil {
		return err
	}

	switch {
	case completed.InLane(models.BracketWinners):
		if err := s.activateNextWinnersRound(ctx, rounds, completed.RoundNumber); err != nil {
			return err
		}
		if err := s.activateDropDownRounds(ctx, rounds, completed.RoundNumber); err != nil {
			return err
		}
	case completed.InLane(models.BracketLosers):
		if err := s.activateAdvancementRounds(ctx, rounds); err != nil {
			return err
		}
		if s.losersLaneFinished(rounds) {
			if err := s.assignLosersChampion(ctx, rounds); err != nil {
				return err
			}
		}
	}

	return s.checkGrandFinalsActivation(ctx, rounds)
}

// activateNextWinnersRound promotes the following winners round once
// every one of its matches has both fighters.
func (s *TournamentService) activateNextWinnersRound(ctx context.Context, rounds []*models.BracketRound, completedNumber int) error {
	for _, round := range rounds {
		if !round.InLane(models.BracketWinners) || round.Status != models.RoundPending || round.RoundNumber <= completedNumber {
			continue
		}
		matches, err := s.matches.ListByRound(ctx, round.ID)
		if err != nil {
			return err
		}
		if !allSlotsPopulated(matches) {
			return nil
		}
		if err := s.rounds.UpdateStatus(ctx, round.ID, models.RoundInProgress, nil); err != nil {
			return err
		}
		return s.promotePendingMatches(ctx, matches)
	}
	return nil
}

// activateDropDownRounds opens the losers drop-down rounds fed by the
// just-completed winners round.
func (s *TournamentService) activateDropDownRounds(ctx context.Context, rounds []*models.BracketRound, winnersRoundNumber int) error {
	for _, round := range rounds {
		if !round.InLane(models.BracketLosers) || round.Status != models.RoundPending {
			continue
		}
		if round.RoundData.Type != models.LosersDropDown || round.RoundData.FeedsFromWinners != winnersRoundNumber {
			continue
		}
		if err := s.rounds.UpdateStatus(ctx, round.ID, models.RoundInProgress, nil); err != nil {
			return err
		}
		matches, err := s.matches.ListByRound(ctx, round.ID)
		if err != nil {
			return err
		}
		if err := s.promotePendingMatches(ctx, matches); err != nil {
			return err
		}
	}
	return nil
}

// activateAdvancementRounds opens losers advancement rounds whose
// matches are fully populated.
func (s *TournamentService) activateAdvancementRounds(ctx context.Context, rounds []*models.BracketRound) error {
	for _, round := range rounds {
		if !round.InLane(models.BracketLosers) || round.Status != models.RoundPending {
			continue
		}
		if round.RoundData.Type != models.LosersAdvancement {
			continue
		}
		matches, err := s.matches.ListByRound(ctx, round.ID)
		if err != nil {
			return err
		}
		if !allSlotsPopulated(matches) {
			continue
		}
		if err := s.rounds.UpdateStatus(ctx, round.ID, models.RoundInProgress, nil); err != nil {
			return err
		}
		if err := s.promotePendingMatches(ctx, matches); err != nil {
			return err
		}
	}
	return nil
}

func (s *TournamentService) losersLaneFinished(rounds []*models.BracketRound) bool {
	sawLosers := false
	for _, round := range rounds {
		if !round.InLane(models.BracketLosers) {
			continue
		}
		sawLosers = true
		if round.Status != models.RoundCompleted {
			return false
		}
	}
	return sawLosers
}

// assignLosersChampion places the losers-bracket champion into the
// open grand-finals slot. Normal dependency propagation fills the slot
// already; this covers the bye-heavy paths where the losers final
// resolved without the grand-finals dependency firing.
func (s *TournamentService) assignLosersChampion(ctx context.Context, rounds []*models.BracketRound) error {
	var losersFinal *models.BracketRound
	for _, round := range rounds {
		if round.InLane(models.BracketLosers) && round.Status == models.RoundCompleted {
			if losersFinal == nil || round.RoundNumber > losersFinal.RoundNumber {
				losersFinal = round
			}
		}
	}
	if losersFinal == nil {
		return nil
	}

	matches, err := s.matches.ListByRound(ctx, losersFinal.ID)
	if err != nil {
		return err
	}
	var champion *int
	for _, match := range matches {
		if winner := match.WinnerID(); winner != nil {
			champion = winner
		}
	}
	if champion == nil {
		return nil
	}

	finals := s.findFinalsMatch(ctx, rounds)
	if finals == nil {
		return nil
	}
	if finals.APlayerID != nil && finals.BPlayerID != nil {
		return nil
	}

	aPlayer, bPlayer := finals.APlayerID, finals.BPlayerID
	if bPlayer == nil {
		bPlayer = champion
	} else {
		aPlayer = champion
	}
	if err := s.matches.UpdateSlots(ctx, finals.ID, aPlayer, bPlayer); err != nil {
		return err
	}
	finals.APlayerID = aPlayer
	finals.BPlayerID = bPlayer
	if finals.APlayerID != nil && finals.BPlayerID != nil && finals.Status == models.MatchPending {
		if err := s.matches.UpdateStatus(ctx, finals.ID, models.MatchReady); err != nil {
			return err
		}
		finals.Status = models.MatchReady
	}
	return nil
}

func (s *TournamentService) checkGrandFinalsActivation(ctx context.Context, rounds []*models.BracketRound) error {
	for _, round := range rounds {
		if !round.InLane(models.BracketFinals) {
			continue
		}
		matches, err := s.matches.ListByRound(ctx, round.ID)
		if err != nil {
			return err
		}
		if !allSlotsPopulated(matches) {
			return nil
		}
		if round.Status == models.RoundPending {
			if err := s.rounds.UpdateStatus(ctx, round.ID, models.RoundInProgress, nil); err != nil {
				return err
			}
		}
		return s.promotePendingMatches(ctx, matches)
	}
	return nil
}

// allSlotsPopulated reports whether every live match has both fighters.
// Completed and cancelled rows don't block activation.
func allSlotsPopulated(matches []*models.Match) bool {
	for _, match := range matches {
		if match.Status == models.MatchCompleted || match.Status == models.MatchCancelled {
			continue
		}
		if match.APlayerID == nil || match.BPlayerID == nil {
			return false
		}
	}
	return true
}

func (s *TournamentService) promotePendingMatches(ctx context.Context, matches []*models.Match) error {
	for _, match := range matches {
		if match.Status == models.MatchPending && match.APlayerID != nil && match.BPlayerID != nil {
			if err := s.matches.UpdateStatus(ctx, match.ID, models.MatchReady); err != nil {
				return err
			}
			match.Status = models.MatchReady
		}
	}
	return nil
}

func (s *TournamentService) finalizeBracket(ctx context.Context, bracket *models.BracketFormat) error {
	if bracket.IsFinalized {
		return nil
	}
	if err := s.brackets.SetFinalized(ctx, bracket.ID, true); err != nil {
		return err
	}
	bracket.IsFinalized = true
	return nil
}

func (s *TournamentService) findFinalsMatch(ctx context.Context, rounds []*models.BracketRound) *models.Match {
	for _, round := range rounds {
		if !round.InLane(models.BracketFinals) {
			continue
		}
		matches, err := s.matches.ListByRound(ctx, round.ID)
		if err != nil || len(matches) == 0 {
			return nil
		}
		return matches[0]
	}
	return nil
}

// bracketFighterIDs collects every fighter that appears in a bracket's
// matches, in first-seen order.
func bracketFighterIDs(matches []*models.Match) []int {
	seen := make(map[int]bool)
	var ids []int
	add := func(id *int) {
		if id != nil && !seen[*id] {
			seen[*id] = true
			ids = append(ids, *id)
		}
	}
	for _, match := range matches {
		add(match.APlayerID)
		add(match.BPlayerID)
	}
	return ids
}

func countBracketFighters(matches []*models.Match) int {
	return len(bracketFighterIDs(matches))
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
