package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/coder/quartz"

	"github.com/vglabs/grapple-league/brackets"
	"github.com/vglabs/grapple-league/live"
	"github.com/vglabs/grapple-league/models"
	"github.com/vglabs/grapple-league/repositories"
)

// DefaultMinRestMinutes is the rest window between a fighter's matches
// when the bracket does not override it.
const DefaultMinRestMinutes = 30

// Manual pairing legality reuses the bracket weight gap.
const manualWeightGapLbs = 30.0

// TournamentServiceDeps wires the tournament service. Ratings and
// Notifier may be nil; Clock and Rand default to real implementations.
type TournamentServiceDeps struct {
	Brackets repositories.BracketRepository
	Rounds   repositories.RoundRepository
	Matches  repositories.MatchRepository
	Entries  repositories.EntryRepository
	Players  repositories.PlayerRepository
	Events   repositories.EventRepository

	Tx       TxRunner
	Ratings  RatingRecalculator
	Notifier Notifier
	Clock    quartz.Clock
	Rand     *rand.Rand
	Logger   *slog.Logger
}

// TournamentService drives the bracket lifecycle: creation, generation,
// result entry, dependency propagation, and round advancement.
type TournamentService struct {
	brackets repositories.BracketRepository
	rounds   repositories.RoundRepository
	matches  repositories.MatchRepository
	entries  repositories.EntryRepository
	players  repositories.PlayerRepository
	events   repositories.EventRepository

	tx       TxRunner
	ratings  RatingRecalculator
	notifier Notifier
	clock    quartz.Clock
	rand     *rand.Rand
	logger   *slog.Logger
}

func NewTournamentService(deps TournamentServiceDeps) *TournamentService {
	if deps.Clock == nil {
		deps.Clock = quartz.NewReal()
	}
	if deps.Notifier == nil {
		deps.Notifier = NopNotifier()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &TournamentService{
		brackets: deps.Brackets,
		rounds:   deps.Rounds,
		matches:  deps.Matches,
		entries:  deps.Entries,
		players:  deps.Players,
		events:   deps.Events,
		tx:       deps.Tx,
		ratings:  deps.Ratings,
		notifier: deps.Notifier,
		clock:    deps.Clock,
		rand:     deps.Rand,
		logger:   deps.Logger,
	}
}

type CreateBracketInput struct {
	EventID        int
	WeightClassID  *int
	Format         models.TournamentFormat
	Config         models.BracketConfig
	MinRestMinutes int
	AutoGenerate   *bool
}

// CreateBracket persists a bracket skeleton. Rounds and matches are
// allocated later by GenerateBracket.
func (s *TournamentService) CreateBracket(ctx context.Context, input CreateBracketInput) (*models.BracketFormat, error) {
	if !input.Format.Valid() {
		return nil, ErrInvalidFormat
	}
	if _, err := s.events.GetByID(ctx, input.EventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	minRest := input.MinRestMinutes
	if minRest <= 0 {
		minRest = DefaultMinRestMinutes
	}
	autoGenerate := true
	if input.AutoGenerate != nil {
		autoGenerate = *input.AutoGenerate
	}

	bracket := &models.BracketFormat{
		EventID:        input.EventID,
		WeightClassID:  input.WeightClassID,
		Format:         input.Format,
		Config:         input.Config,
		MinRestMinutes: minRest,
		AutoGenerate:   autoGenerate,
	}
	if err := s.brackets.Create(ctx, bracket); err != nil {
		switch {
		case errors.Is(err, repositories.ErrBracketEventInvalid):
			return nil, ErrEventNotFound
		case errors.Is(err, repositories.ErrBracketClassInvalid):
			return nil, ErrWeightClassNotFound
		}
		return nil, err
	}
	return bracket, nil
}

// GenerateBracket draws the field from checked-in entries, runs the
// format's generator, and persists the full round plan in one
// transaction. Round-one byes are propagated afterwards so their
// winners land in dependent matches immediately.
func (s *TournamentService) GenerateBracket(ctx context.Context, bracketID int) ([]*models.BracketRound, error) {
	bracket, err := s.getBracket(ctx, bracketID)
	if err != nil {
		return nil, err
	}
	if bracket.IsGenerated {
		return nil, ErrAlreadyGenerated
	}

	fighters, err := s.loadFighters(ctx, bracket.EventID, bracket.WeightClassID)
	if err != nil {
		return nil, err
	}
	if len(fighters) < 2 {
		return nil, ErrTooFewParticipants
	}

	generator, err := brackets.NewGenerator(bracket.Format)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	plan, err := generator.GeneratePlan(ctx, brackets.GenerateParams{
		Bracket:      bracket,
		Participants: fighters,
		Rand:         s.rand,
	})
	if err != nil {
		if errors.Is(err, brackets.ErrTooFewParticipants) || errors.Is(err, brackets.ErrDoubleElimTooSmall) {
			return nil, ErrTooFewParticipants
		}
		return nil, err
	}

	byes, err := s.persistPlan(ctx, bracket, plan)
	if err != nil {
		return nil, err
	}

	for _, bye := range byes {
		if err := s.propagateResult(ctx, bye); err != nil {
			s.logger.Error("bye propagation failed after generation",
				"bracket_id", bracket.ID, "match_id", bye.ID, "error", err)
		}
	}

	rounds, err := s.rounds.ListByBracket(ctx, bracket.ID)
	if err != nil {
		return nil, err
	}
	s.notifier.BroadcastEvent(bracket.EventID, live.TypeBracketGenerated, map[string]interface{}{
		"bracket_id": bracket.ID,
		"format":     bracket.Format,
		"rounds":     len(rounds),
	})
	return rounds, nil
}

// persistPlan writes the planned rounds and matches, then resolves the
// planner's match UIDs into database ids in a second pass. Returns the
// bye matches created, which the caller propagates.
func (s *TournamentService) persistPlan(ctx context.Context, bracket *models.BracketFormat, plan []*brackets.PlannedRound) ([]*models.Match, error) {
	var byes []*models.Match

	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		now := s.clock.Now()
		idByUID := make(map[string]int)

		type pendingDeps struct {
			matchID int
			depA    *string
			depB    *string
		}
		var deferred []pendingDeps

		for _, plannedRound := range plan {
			round := &models.BracketRound{
				BracketFormatID: bracket.ID,
				RoundNumber:     plannedRound.Number,
				RoundName:       plannedRound.Name,
				Status:          plannedRound.Status,
				RoundData:       plannedRound.Data,
			}
			if plannedRound.BracketType != "" {
				bracketType := plannedRound.BracketType
				round.BracketType = &bracketType
			}
			if err := s.rounds.Create(ctx, exec, round); err != nil {
				return err
			}

			for _, planned := range plannedRound.Matches {
				match := s.matchFromPlan(bracket, round, planned, now)
				if err := s.matches.Create(ctx, exec, match); err != nil {
					return err
				}
				idByUID[planned.UID] = match.ID
				if planned.DependsOnA != nil || planned.DependsOnB != nil {
					deferred = append(deferred, pendingDeps{match.ID, planned.DependsOnA, planned.DependsOnB})
				}
				if match.IsBye() {
					byes = append(byes, match)
				}
			}
		}

		for _, dep := range deferred {
			var depA, depB *int
			if dep.depA != nil {
				if id, ok := idByUID[*dep.depA]; ok {
					depA = &id
				}
			}
			if dep.depB != nil {
				if id, ok := idByUID[*dep.depB]; ok {
					depB = &id
				}
			}
			if err := s.matches.UpdateDependencies(ctx, exec, dep.matchID, depA, depB); err != nil {
				return err
			}
		}

		return s.brackets.MarkGenerated(ctx, exec, bracket.ID)
	})
	if err != nil {
		return nil, err
	}
	return byes, nil
}

func (s *TournamentService) matchFromPlan(bracket *models.BracketFormat, round *models.BracketRound, planned *brackets.PlannedMatch, now time.Time) *models.Match {
	roundID := round.ID
	matchNumber := planned.Number
	match := &models.Match{
		EventID:         bracket.EventID,
		BracketRoundID:  &roundID,
		APlayerID:       planned.PlayerAID,
		BPlayerID:       planned.PlayerBID,
		WeightClassID:   planned.WeightClassID,
		MatchNumber:     &matchNumber,
		RequiresWinnerA: planned.RequiresWinnerA,
		RequiresWinnerB: planned.RequiresWinnerB,
	}
	if match.WeightClassID == nil {
		match.WeightClassID = bracket.WeightClassID
	}

	switch {
	case planned.Bye:
		result := models.ResultPlayerAWin
		method := models.MethodBye
		duration := 0
		completedAt := now
		match.Result = &result
		match.Method = &method
		match.DurationSeconds = &duration
		match.Status = models.MatchCompleted
		match.CompletedAt = &completedAt
	case planned.PlayerAID != nil && planned.PlayerBID != nil:
		match.Status = models.MatchReady
	default:
		match.Status = models.MatchPending
	}
	return match
}

// loadFighters resolves an event's checked-in entries to fighters,
// preferring the check-in weight and class snapshots over the profile.
func (s *TournamentService) loadFighters(ctx context.Context, eventID int, weightClassID *int) ([]*brackets.Fighter, error) {
	entries, err := s.entries.ListCheckedIn(ctx, eventID, weightClassID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	ids := make([]int, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.PlayerID)
	}
	players, err := s.players.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]*models.Player, len(players))
	for _, player := range players {
		byID[player.ID] = player
	}

	fighters := make([]*brackets.Fighter, 0, len(entries))
	for _, entry := range entries {
		fighter := &brackets.Fighter{ID: entry.PlayerID}
		player := byID[entry.PlayerID]

		if entry.Weight != nil {
			fighter.Weight = *entry.Weight
		} else if player != nil && player.Weight != nil {
			fighter.Weight = *player.Weight
		}
		if entry.WeightClassID != nil {
			fighter.WeightClassID = entry.WeightClassID
		} else if player != nil {
			fighter.WeightClassID = player.WeightClassID
		}
		if player != nil {
			fighter.Rating = player.EloRating
		}
		fighters = append(fighters, fighter)
	}
	return fighters, nil
}

// DeleteBracket removes the bracket with its rounds and matches. If any
// deleted match carried a result the ratings are replayed.
func (s *TournamentService) DeleteBracket(ctx context.Context, bracketID int) error {
	bracket, err := s.getBracket(ctx, bracketID)
	if err != nil {
		return err
	}

	matches, err := s.matches.ListByBracket(ctx, bracketID)
	if err != nil {
		return err
	}
	hadResult := false
	for _, match := range matches {
		if match.Result != nil {
			hadResult = true
			break
		}
	}

	if err := s.brackets.Delete(ctx, bracketID); err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return ErrBracketNotFound
		}
		return err
	}

	if hadResult {
		s.replayRatings(ctx)
	}
	s.notifier.BroadcastEvent(bracket.EventID, live.TypeBracketDeleted, map[string]interface{}{
		"bracket_id": bracketID,
	})
	return nil
}

// UpdateMatchResult records a result, propagates it through dependent
// matches, and checks the round for completion. Rating replay runs
// best-effort afterwards.
func (s *TournamentService) UpdateMatchResult(ctx context.Context, matchID int, result models.MatchResult, method *string, durationSeconds *int) (*models.Match, error) {
	switch result {
	case models.ResultPlayerAWin, models.ResultPlayerBWin, models.ResultDraw, models.ResultNoContest:
	default:
		return nil, ErrInvalidState
	}

	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.APlayerID == nil || match.BPlayerID == nil {
		return nil, ErrMissingFighters
	}
	if match.Status == models.MatchCancelled {
		return nil, ErrInvalidState
	}

	now := s.clock.Now()
	if err := s.matches.UpdateResult(ctx, matchID, &result, method, durationSeconds, models.MatchCompleted, &now); err != nil {
		return nil, err
	}
	match, err = s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if err := s.propagateResult(ctx, match); err != nil {
		s.logger.Error("result propagation failed", "match_id", matchID, "error", err)
	}
	if match.BracketRoundID != nil {
		if err := s.checkRoundCompletion(ctx, *match.BracketRoundID); err != nil {
			s.logger.Error("round completion check failed",
				"match_id", matchID, "round_id", *match.BracketRoundID, "error", err)
		}
	}

	s.replayRatings(ctx)
	s.notifier.BroadcastEvent(match.EventID, live.TypeMatchUpdated, match)
	return match, nil
}

// UndoMatchResult clears a recorded result and pulls the fighters this
// match had advanced back out of its dependent matches.
func (s *TournamentService) UndoMatchResult(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Result == nil {
		return nil, ErrNoResultToUndo
	}

	if err := s.retractFromDependents(ctx, match); err != nil {
		s.logger.Error("dependent retraction failed during undo", "match_id", matchID, "error", err)
	}

	status := models.MatchPending
	if match.APlayerID != nil && match.BPlayerID != nil {
		status = models.MatchReady
	}
	if err := s.matches.UpdateResult(ctx, matchID, nil, nil, nil, status, nil); err != nil {
		return nil, err
	}
	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.matches.UpdateEloChanges(ctx, exec, matchID, nil, nil)
	})
	if err != nil {
		return nil, err
	}

	match, err = s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	s.replayRatings(ctx)
	s.notifier.BroadcastEvent(match.EventID, live.TypeMatchUpdated, match)
	return match, nil
}

// DeleteMatch removes a match after detaching every dependent: slots
// this match had populated are cleared and dependency references are
// nulled so the remaining graph stays consistent.
func (s *TournamentService) DeleteMatch(ctx context.Context, matchID int) error {
	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return err
	}
	hadResult := match.Result != nil

	if err := s.retractFromDependents(ctx, match); err != nil {
		s.logger.Error("dependent retraction failed during delete", "match_id", matchID, "error", err)
	}
	if err := s.matches.ClearDependenciesOn(ctx, matchID); err != nil {
		return err
	}
	if err := s.matches.Delete(ctx, matchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return err
	}

	if hadResult {
		s.replayRatings(ctx)
	}
	s.notifier.BroadcastEvent(match.EventID, live.TypeMatchUpdated, map[string]interface{}{
		"match_id": matchID,
		"deleted":  true,
	})
	return nil
}

// retractFromDependents clears, in every dependent match, any slot that
// was populated from this match's winner or loser, and downgrades the
// dependent's status accordingly.
func (s *TournamentService) retractFromDependents(ctx context.Context, match *models.Match) error {
	winner := match.WinnerID()
	loser := match.LoserID()
	if winner == nil && loser == nil {
		return nil
	}

	dependents, err := s.matches.ListByDependency(ctx, match.ID)
	if err != nil {
		return err
	}
	for _, dependent := range dependents {
		aPlayer := dependent.APlayerID
		bPlayer := dependent.BPlayerID
		changed := false

		if dependent.DependsOnMatchA != nil && *dependent.DependsOnMatchA == match.ID {
			fed := loser
			if dependent.RequiresWinnerA {
				fed = winner
			}
			if fed != nil && aPlayer != nil && *aPlayer == *fed {
				aPlayer = nil
				changed = true
			}
		}
		if dependent.DependsOnMatchB != nil && *dependent.DependsOnMatchB == match.ID {
			fed := loser
			if dependent.RequiresWinnerB {
				fed = winner
			}
			if fed != nil && bPlayer != nil && *bPlayer == *fed {
				bPlayer = nil
				changed = true
			}
		}
		if !changed {
			continue
		}

		if err := s.matches.UpdateSlots(ctx, dependent.ID, aPlayer, bPlayer); err != nil {
			s.logger.Error("failed to clear dependent slots",
				"match_id", match.ID, "dependent_id", dependent.ID, "error", err)
			continue
		}

		// A dependent that had auto-completed as a bye loses that
		// result along with the fighter.
		if dependent.IsBye() {
			if err := s.matches.UpdateResult(ctx, dependent.ID, nil, nil, nil, models.MatchPending, nil); err != nil {
				s.logger.Error("failed to reset bye dependent",
					"dependent_id", dependent.ID, "error", err)
			}
			continue
		}

		status := models.MatchPending
		if aPlayer != nil && bPlayer != nil {
			status = models.MatchReady
		}
		if dependent.Status == models.MatchReady || dependent.Status == models.MatchPending {
			if err := s.matches.UpdateStatus(ctx, dependent.ID, status); err != nil {
				s.logger.Error("failed to downgrade dependent status",
					"dependent_id", dependent.ID, "error", err)
			}
		}
	}
	return nil
}

type CreateManualMatchInput struct {
	EventID       int
	APlayerID     int
	BPlayerID     int
	WeightClassID *int
	MatchNumber   *int
}

// CreateManualMatch creates a standalone match outside any bracket.
// Both fighters must be checked in and the pairing must be within the
// weight gap or share a weight class.
func (s *TournamentService) CreateManualMatch(ctx context.Context, input CreateManualMatchInput) (*models.Match, error) {
	if input.APlayerID == input.BPlayerID {
		return nil, ErrSamePlayer
	}
	if _, err := s.events.GetByID(ctx, input.EventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	entryA, err := s.checkedInEntry(ctx, input.EventID, input.APlayerID)
	if err != nil {
		return nil, err
	}
	entryB, err := s.checkedInEntry(ctx, input.EventID, input.BPlayerID)
	if err != nil {
		return nil, err
	}

	weightA, classA := s.entryWeight(ctx, entryA)
	weightB, classB := s.entryWeight(ctx, entryB)

	sameClass := classA != nil && classB != nil && *classA == *classB
	withinGap := weightA == 0 || weightB == 0 || math.Abs(weightA-weightB) <= manualWeightGapLbs
	if !sameClass && !withinGap {
		return nil, ErrWeightMismatch
	}

	weightClassID := input.WeightClassID
	if weightClassID == nil {
		if weightA >= weightB {
			weightClassID = classA
		} else {
			weightClassID = classB
		}
	}

	matchNumber := input.MatchNumber
	if matchNumber == nil {
		max, err := s.matches.MaxMatchNumberByEvent(ctx, input.EventID)
		if err != nil {
			return nil, err
		}
		next := max + 1
		matchNumber = &next
	}

	aID, bID := input.APlayerID, input.BPlayerID
	match := &models.Match{
		EventID:       input.EventID,
		APlayerID:     &aID,
		BPlayerID:     &bID,
		WeightClassID: weightClassID,
		MatchNumber:   matchNumber,
		Status:        models.MatchReady,
	}
	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.matches.Create(ctx, exec, match)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrMatchPlayerInvalid) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}

	s.notifier.BroadcastEvent(input.EventID, live.TypeMatchUpdated, match)
	return match, nil
}

func (s *TournamentService) checkedInEntry(ctx context.Context, eventID, playerID int) (*models.Entry, error) {
	entry, err := s.entries.GetByEventAndPlayer(ctx, eventID, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrEntryNotFound) {
			return nil, ErrPlayerNotCheckedIn
		}
		return nil, err
	}
	if !entry.CheckedIn {
		return nil, ErrPlayerNotCheckedIn
	}
	return entry, nil
}

// entryWeight resolves a fighter's pairing weight and class from the
// check-in snapshot, falling back to the profile.
func (s *TournamentService) entryWeight(ctx context.Context, entry *models.Entry) (float64, *int) {
	weight := 0.0
	class := entry.WeightClassID
	if entry.Weight != nil {
		weight = *entry.Weight
	}
	if entry.Weight == nil || class == nil {
		if player, err := s.players.GetByID(ctx, entry.PlayerID); err == nil {
			if entry.Weight == nil && player.Weight != nil {
				weight = *player.Weight
			}
			if class == nil {
				class = player.WeightClassID
			}
		}
	}
	return weight, class
}

// ClearManualMatches removes every non-bracket match of an event,
// replaying ratings when any removed match had a result.
func (s *TournamentService) ClearManualMatches(ctx context.Context, eventID int) (int, error) {
	deleted, err := s.matches.DeleteManualByEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	for _, match := range deleted {
		if match.Result != nil {
			s.replayRatings(ctx)
			break
		}
	}
	if len(deleted) > 0 {
		s.notifier.BroadcastEvent(eventID, live.TypeMatchUpdated, map[string]interface{}{
			"manual_matches_cleared": len(deleted),
		})
	}
	return len(deleted), nil
}

// GetUpcomingMatches returns Ready matches whose fighters have both
// rested at least the bracket's minimum since their last completed
// match. Matches still missing a fighter are omitted.
func (s *TournamentService) GetUpcomingMatches(ctx context.Context, bracketID, limit int) ([]*models.Match, error) {
	bracket, err := s.getBracket(ctx, bracketID)
	if err != nil {
		return nil, err
	}

	ready, err := s.matches.ListReadyByBracket(ctx, bracketID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	minRest := time.Duration(bracket.MinRestMinutes) * time.Minute

	upcoming := make([]*models.Match, 0, len(ready))
	for _, match := range ready {
		if match.APlayerID == nil || match.BPlayerID == nil {
			continue
		}
		restedA, err := s.fighterRested(ctx, *match.APlayerID, now, minRest)
		if err != nil {
			return nil, err
		}
		restedB, err := s.fighterRested(ctx, *match.BPlayerID, now, minRest)
		if err != nil {
			return nil, err
		}
		if restedA && restedB {
			upcoming = append(upcoming, match)
		}
		if limit > 0 && len(upcoming) >= limit {
			break
		}
	}
	return upcoming, nil
}

func (s *TournamentService) fighterRested(ctx context.Context, playerID int, now time.Time, minRest time.Duration) (bool, error) {
	latest, err := s.matches.LatestCompletedByPlayer(ctx, playerID)
	if err != nil {
		return false, err
	}
	if latest == nil || latest.CompletedAt == nil {
		return true, nil
	}
	return now.Sub(*latest.CompletedAt) >= minRest, nil
}

// RoundView is a round with its matches, for bracket reads.
type RoundView struct {
	Round   *models.BracketRound `json:"round"`
	Matches []*models.Match      `json:"matches"`
}

// GetBracket returns the bracket with every round and match.
func (s *TournamentService) GetBracket(ctx context.Context, bracketID int) (*models.BracketFormat, []*RoundView, error) {
	bracket, err := s.getBracket(ctx, bracketID)
	if err != nil {
		return nil, nil, err
	}
	rounds, err := s.rounds.ListByBracket(ctx, bracketID)
	if err != nil {
		return nil, nil, err
	}
	views := make([]*RoundView, 0, len(rounds))
	for _, round := range rounds {
		matches, err := s.matches.ListByRound(ctx, round.ID)
		if err != nil {
			return nil, nil, err
		}
		views = append(views, &RoundView{Round: round, Matches: matches})
	}
	return bracket, views, nil
}

func (s *TournamentService) ListEventBrackets(ctx context.Context, eventID int) ([]*models.BracketFormat, error) {
	return s.brackets.ListByEvent(ctx, eventID)
}

// ListBracketMatches returns a bracket's matches, optionally filtered
// by status.
func (s *TournamentService) ListBracketMatches(ctx context.Context, bracketID int, status *models.MatchStatus) ([]*models.Match, error) {
	if _, err := s.getBracket(ctx, bracketID); err != nil {
		return nil, err
	}
	matches, err := s.matches.ListByBracket(ctx, bracketID)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return matches, nil
	}
	filtered := make([]*models.Match, 0, len(matches))
	for _, match := range matches {
		if match.Status == *status {
			filtered = append(filtered, match)
		}
	}
	return filtered, nil
}

// FighterMatchCount is one fighter's share of an event's manual card.
type FighterMatchCount struct {
	PlayerID int `json:"player_id"`
	Matches  int `json:"matches"`
}

// PairingStats summarises an event's manual card for the pairing
// workflow.
type PairingStats struct {
	TotalMatches     int                 `json:"total_matches"`
	CompletedMatches int                 `json:"completed_matches"`
	PendingMatches   int                 `json:"pending_matches"`
	EstimatedMinutes int                 `json:"estimated_minutes"`
	Estimated        string              `json:"estimated_duration"`
	PerFighter       []FighterMatchCount `json:"matches_per_fighter"`
}

// EventPairingStats reports how the event's manual matches are spread
// across fighters and how much mat time the remainder needs.
func (s *TournamentService) EventPairingStats(ctx context.Context, eventID int) (*PairingStats, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	matches, err := s.matches.ListManualByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	stats := &PairingStats{}
	perFighter := make(map[int]int)
	for _, match := range matches {
		if match.Status == models.MatchCancelled {
			continue
		}
		stats.TotalMatches++
		if match.Status == models.MatchCompleted {
			stats.CompletedMatches++
		} else {
			stats.PendingMatches++
		}
		if match.APlayerID != nil {
			perFighter[*match.APlayerID]++
		}
		if match.BPlayerID != nil {
			perFighter[*match.BPlayerID]++
		}
	}

	if stats.PendingMatches > 0 {
		stats.EstimatedMinutes = stats.PendingMatches*(DefaultMatchDurationMin+matchGapMinutes) - matchGapMinutes
	}
	stats.Estimated = EstimatedDuration(stats.EstimatedMinutes)

	ids := make([]int, 0, len(perFighter))
	for id := range perFighter {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	stats.PerFighter = make([]FighterMatchCount, 0, len(ids))
	for _, id := range ids {
		stats.PerFighter = append(stats.PerFighter, FighterMatchCount{PlayerID: id, Matches: perFighter[id]})
	}
	return stats, nil
}

func (s *TournamentService) getBracket(ctx context.Context, id int) (*models.BracketFormat, error) {
	bracket, err := s.brackets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}
	return bracket, nil
}

func (s *TournamentService) getMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matches.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

// replayRatings reruns the rating replay after a result mutation.
// Failures are logged, not returned: the replay is re-derivable and the
// originating write must not be rolled back by a rating error.
func (s *TournamentService) replayRatings(ctx context.Context) {
	if s.ratings == nil {
		return
	}
	if _, err := s.ratings.RecalculateAll(ctx); err != nil {
		s.logger.Error("rating replay failed", "error", err)
	}
}
