package services

import (
	"context"
	"sort"
	"time"

	"github.com/vglabs/grapple-league/models"
	"github.com/vglabs/grapple-league/repositories"
)

// fakeStore is an in-memory stand-in for the Postgres repositories.
// The fake repos below share it and ignore the SQLExecutor argument,
// which the nop transaction runner passes as nil.
type fakeStore struct {
	players  map[int]*models.Player
	events   map[int]*models.Event
	entries  []*models.Entry
	classes  map[int]*models.WeightClass
	brackets map[int]*models.BracketFormat
	rounds   map[int]*models.BracketRound
	matches  map[int]*models.Match

	nextPlayerID  int
	nextEventID   int
	nextEntryID   int
	nextClassID   int
	nextBracketID int
	nextRoundID   int
	nextMatchID   int

	now time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		players:  make(map[int]*models.Player),
		events:   make(map[int]*models.Event),
		classes:  make(map[int]*models.WeightClass),
		brackets: make(map[int]*models.BracketFormat),
		rounds:   make(map[int]*models.BracketRound),
		matches:  make(map[int]*models.Match),
		now:      time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (s *fakeStore) addEvent(name string, date time.Time) *models.Event {
	s.nextEventID++
	event := &models.Event{
		ID:        s.nextEventID,
		Name:      name,
		Date:      date,
		Status:    models.EventInProgress,
		CreatedAt: s.now,
	}
	s.events[event.ID] = event
	return event
}

func (s *fakeStore) addClass(name string, track models.RatingTrack) *models.WeightClass {
	s.nextClassID++
	class := &models.WeightClass{ID: s.nextClassID, Name: name, Track: track}
	s.classes[class.ID] = class
	return class
}

func (s *fakeStore) addPlayer(name string, belt string, weight float64, classID *int) *models.Player {
	s.nextPlayerID++
	player := &models.Player{
		ID:            s.nextPlayerID,
		Name:          name,
		BeltRank:      &belt,
		Weight:        &weight,
		WeightClassID: classID,
		Active:        true,
		CreatedAt:     s.now,
	}
	s.players[player.ID] = player
	return player
}

func (s *fakeStore) checkIn(eventID int, player *models.Player) *models.Entry {
	s.nextEntryID++
	entry := &models.Entry{
		ID:            s.nextEntryID,
		EventID:       eventID,
		PlayerID:      player.ID,
		WeightClassID: player.WeightClassID,
		CheckedIn:     true,
		BeltRank:      player.BeltRank,
		Weight:        player.Weight,
		CreatedAt:     s.now,
	}
	s.entries = append(s.entries, entry)
	return entry
}

type fakePlayerRepo struct{ s *fakeStore }

func (r *fakePlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	player, ok := r.s.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	clone := *player
	return &clone, nil
}

func (r *fakePlayerRepo) ListByIDs(_ context.Context, ids []int) ([]*models.Player, error) {
	players := make([]*models.Player, 0, len(ids))
	for _, id := range ids {
		if player, ok := r.s.players[id]; ok {
			clone := *player
			players = append(players, &clone)
		}
	}
	return players, nil
}

func (r *fakePlayerRepo) ListAll(_ context.Context) ([]*models.Player, error) {
	ids := make([]int, 0, len(r.s.players))
	for id := range r.s.players {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	players := make([]*models.Player, 0, len(ids))
	for _, id := range ids {
		clone := *r.s.players[id]
		players = append(players, &clone)
	}
	return players, nil
}

func (r *fakePlayerRepo) UpdateRatings(_ context.Context, _ repositories.SQLExecutor, player *models.Player) error {
	stored, ok := r.s.players[player.ID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	stored.EloRating = player.EloRating
	stored.EloLightweight = player.EloLightweight
	stored.EloMiddleweight = player.EloMiddleweight
	stored.EloHeavyweight = player.EloHeavyweight
	stored.InitialEloLightweight = player.InitialEloLightweight
	stored.InitialEloMiddleweight = player.InitialEloMiddleweight
	stored.InitialEloHeavyweight = player.InitialEloHeavyweight
	return nil
}

type fakeEventRepo struct{ s *fakeStore }

func (r *fakeEventRepo) GetByID(_ context.Context, id int) (*models.Event, error) {
	event, ok := r.s.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	clone := *event
	return &clone, nil
}

type fakeEntryRepo struct{ s *fakeStore }

func (r *fakeEntryRepo) ListCheckedIn(_ context.Context, eventID int, weightClassID *int) ([]*models.Entry, error) {
	var entries []*models.Entry
	for _, entry := range r.s.entries {
		if entry.EventID != eventID || !entry.CheckedIn {
			continue
		}
		if weightClassID != nil && (entry.WeightClassID == nil || *entry.WeightClassID != *weightClassID) {
			continue
		}
		clone := *entry
		entries = append(entries, &clone)
	}
	return entries, nil
}

func (r *fakeEntryRepo) GetByEventAndPlayer(_ context.Context, eventID, playerID int) (*models.Entry, error) {
	for _, entry := range r.s.entries {
		if entry.EventID == eventID && entry.PlayerID == playerID {
			clone := *entry
			return &clone, nil
		}
	}
	return nil, repositories.ErrEntryNotFound
}

type fakeWeightClassRepo struct{ s *fakeStore }

func (r *fakeWeightClassRepo) GetByID(_ context.Context, id int) (*models.WeightClass, error) {
	class, ok := r.s.classes[id]
	if !ok {
		return nil, repositories.ErrWeightClassNotFound
	}
	clone := *class
	return &clone, nil
}

func (r *fakeWeightClassRepo) ListAll(_ context.Context) ([]*models.WeightClass, error) {
	ids := make([]int, 0, len(r.s.classes))
	for id := range r.s.classes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	classes := make([]*models.WeightClass, 0, len(ids))
	for _, id := range ids {
		clone := *r.s.classes[id]
		classes = append(classes, &clone)
	}
	return classes, nil
}

type fakeBracketRepo struct{ s *fakeStore }

func (r *fakeBracketRepo) Create(_ context.Context, bracket *models.BracketFormat) error {
	if _, ok := r.s.events[bracket.EventID]; !ok {
		return repositories.ErrBracketEventInvalid
	}
	if bracket.WeightClassID != nil {
		if _, ok := r.s.classes[*bracket.WeightClassID]; !ok {
			return repositories.ErrBracketClassInvalid
		}
	}
	r.s.nextBracketID++
	bracket.ID = r.s.nextBracketID
	bracket.CreatedAt = r.s.now
	clone := *bracket
	r.s.brackets[bracket.ID] = &clone
	return nil
}

func (r *fakeBracketRepo) GetByID(_ context.Context, id int) (*models.BracketFormat, error) {
	bracket, ok := r.s.brackets[id]
	if !ok {
		return nil, repositories.ErrBracketNotFound
	}
	clone := *bracket
	return &clone, nil
}

func (r *fakeBracketRepo) ListByEvent(_ context.Context, eventID int) ([]*models.BracketFormat, error) {
	ids := make([]int, 0, len(r.s.brackets))
	for id, bracket := range r.s.brackets {
		if bracket.EventID == eventID {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	brackets := make([]*models.BracketFormat, 0, len(ids))
	for _, id := range ids {
		clone := *r.s.brackets[id]
		brackets = append(brackets, &clone)
	}
	return brackets, nil
}

func (r *fakeBracketRepo) MarkGenerated(_ context.Context, _ repositories.SQLExecutor, id int) error {
	bracket, ok := r.s.brackets[id]
	if !ok {
		return repositories.ErrBracketNotFound
	}
	bracket.IsGenerated = true
	return nil
}

func (r *fakeBracketRepo) SetFinalized(_ context.Context, id int, finalized bool) error {
	bracket, ok := r.s.brackets[id]
	if !ok {
		return repositories.ErrBracketNotFound
	}
	bracket.IsFinalized = finalized
	return nil
}

func (r *fakeBracketRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.s.brackets[id]; !ok {
		return repositories.ErrBracketNotFound
	}
	for roundID, round := range r.s.rounds {
		if round.BracketFormatID != id {
			continue
		}
		for matchID, match := range r.s.matches {
			if match.BracketRoundID != nil && *match.BracketRoundID == roundID {
				delete(r.s.matches, matchID)
			}
		}
		delete(r.s.rounds, roundID)
	}
	delete(r.s.brackets, id)
	return nil
}

type fakeRoundRepo struct{ s *fakeStore }

func (r *fakeRoundRepo) Create(_ context.Context, _ repositories.SQLExecutor, round *models.BracketRound) error {
	r.s.nextRoundID++
	round.ID = r.s.nextRoundID
	round.CreatedAt = r.s.now
	clone := *round
	r.s.rounds[round.ID] = &clone
	return nil
}

func (r *fakeRoundRepo) GetByID(_ context.Context, id int) (*models.BracketRound, error) {
	round, ok := r.s.rounds[id]
	if !ok {
		return nil, repositories.ErrRoundNotFound
	}
	clone := *round
	return &clone, nil
}

func (r *fakeRoundRepo) ListByBracket(_ context.Context, bracketID int) ([]*models.BracketRound, error) {
	var rounds []*models.BracketRound
	for _, round := range r.s.rounds {
		if round.BracketFormatID == bracketID {
			clone := *round
			rounds = append(rounds, &clone)
		}
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].RoundNumber < rounds[j].RoundNumber })
	return rounds, nil
}

func (r *fakeRoundRepo) UpdateStatus(_ context.Context, id int, status models.RoundStatus, completedAt *time.Time) error {
	round, ok := r.s.rounds[id]
	if !ok {
		return repositories.ErrRoundNotFound
	}
	round.Status = status
	round.CompletedAt = completedAt
	return nil
}

type fakeMatchRepo struct{ s *fakeStore }

func (r *fakeMatchRepo) get(id int) (*models.Match, error) {
	match, ok := r.s.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return match, nil
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	if match.APlayerID != nil {
		if _, ok := r.s.players[*match.APlayerID]; !ok {
			return repositories.ErrMatchPlayerInvalid
		}
	}
	if match.BPlayerID != nil {
		if _, ok := r.s.players[*match.BPlayerID]; !ok {
			return repositories.ErrMatchPlayerInvalid
		}
	}
	r.s.nextMatchID++
	match.ID = r.s.nextMatchID
	match.CreatedAt = r.s.now
	clone := *match
	r.s.matches[match.ID] = &clone
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	match, err := r.get(id)
	if err != nil {
		return nil, err
	}
	clone := *match
	return &clone, nil
}

func (r *fakeMatchRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.s.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.s.matches, id)
	return nil
}

func (r *fakeMatchRepo) UpdateDependencies(_ context.Context, _ repositories.SQLExecutor, id int, dependsOnA, dependsOnB *int) error {
	match, err := r.get(id)
	if err != nil {
		return err
	}
	match.DependsOnMatchA = dependsOnA
	match.DependsOnMatchB = dependsOnB
	return nil
}

func (r *fakeMatchRepo) UpdateSlots(_ context.Context, id int, aPlayerID, bPlayerID *int) error {
	match, err := r.get(id)
	if err != nil {
		return err
	}
	match.APlayerID = aPlayerID
	match.BPlayerID = bPlayerID
	return nil
}

func (r *fakeMatchRepo) UpdateStatus(_ context.Context, id int, status models.MatchStatus) error {
	match, err := r.get(id)
	if err != nil {
		return err
	}
	match.Status = status
	return nil
}

func (r *fakeMatchRepo) UpdateResult(_ context.Context, id int, result *models.MatchResult, method *string, durationSeconds *int, status models.MatchStatus, completedAt *time.Time) error {
	match, err := r.get(id)
	if err != nil {
		return err
	}
	match.Result = result
	match.Method = method
	match.DurationSeconds = durationSeconds
	match.Status = status
	match.CompletedAt = completedAt
	return nil
}

func (r *fakeMatchRepo) UpdateEloChanges(_ context.Context, _ repositories.SQLExecutor, id int, aChange, bChange *int) error {
	match, err := r.get(id)
	if err != nil {
		return err
	}
	match.AEloChange = aChange
	match.BEloChange = bChange
	return nil
}

func (r *fakeMatchRepo) ClearDependenciesOn(_ context.Context, matchID int) error {
	for _, match := range r.s.matches {
		if match.DependsOnMatchA != nil && *match.DependsOnMatchA == matchID {
			match.DependsOnMatchA = nil
		}
		if match.DependsOnMatchB != nil && *match.DependsOnMatchB == matchID {
			match.DependsOnMatchB = nil
		}
	}
	return nil
}

func (r *fakeMatchRepo) collect(keep func(*models.Match) bool) []*models.Match {
	var matches []*models.Match
	for _, match := range r.s.matches {
		if keep(match) {
			clone := *match
			matches = append(matches, &clone)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches
}

func (r *fakeMatchRepo) ListByRound(_ context.Context, roundID int) ([]*models.Match, error) {
	return r.collect(func(m *models.Match) bool {
		return m.BracketRoundID != nil && *m.BracketRoundID == roundID
	}), nil
}

func (r *fakeMatchRepo) bracketOf(m *models.Match) int {
	if m.BracketRoundID == nil {
		return 0
	}
	round, ok := r.s.rounds[*m.BracketRoundID]
	if !ok {
		return 0
	}
	return round.BracketFormatID
}

func (r *fakeMatchRepo) ListByBracket(_ context.Context, bracketID int) ([]*models.Match, error) {
	return r.collect(func(m *models.Match) bool { return r.bracketOf(m) == bracketID }), nil
}

func (r *fakeMatchRepo) ListByDependency(_ context.Context, matchID int) ([]*models.Match, error) {
	return r.collect(func(m *models.Match) bool {
		return (m.DependsOnMatchA != nil && *m.DependsOnMatchA == matchID) ||
			(m.DependsOnMatchB != nil && *m.DependsOnMatchB == matchID)
	}), nil
}

func (r *fakeMatchRepo) ListReadyByBracket(_ context.Context, bracketID int) ([]*models.Match, error) {
	return r.collect(func(m *models.Match) bool {
		return r.bracketOf(m) == bracketID && m.Status == models.MatchReady
	}), nil
}

func (r *fakeMatchRepo) ListManualByEvent(_ context.Context, eventID int) ([]*models.Match, error) {
	return r.collect(func(m *models.Match) bool {
		return m.EventID == eventID && m.BracketRoundID == nil
	}), nil
}

func (r *fakeMatchRepo) DeleteManualByEvent(ctx context.Context, eventID int) ([]*models.Match, error) {
	deleted, _ := r.ListManualByEvent(ctx, eventID)
	for _, match := range deleted {
		delete(r.s.matches, match.ID)
	}
	return deleted, nil
}

func (r *fakeMatchRepo) ListBetweenPlayers(_ context.Context, playerID, opponentID int) ([]*models.Match, error) {
	return r.collect(func(m *models.Match) bool {
		if m.APlayerID == nil || m.BPlayerID == nil {
			return false
		}
		return (*m.APlayerID == playerID && *m.BPlayerID == opponentID) ||
			(*m.APlayerID == opponentID && *m.BPlayerID == playerID)
	}), nil
}

func (r *fakeMatchRepo) ListDecidedByPlayer(_ context.Context, playerID int) ([]*models.Match, error) {
	return r.collect(func(m *models.Match) bool {
		if m.Result == nil {
			return false
		}
		return (m.APlayerID != nil && *m.APlayerID == playerID) ||
			(m.BPlayerID != nil && *m.BPlayerID == playerID)
	}), nil
}

func (r *fakeMatchRepo) ListDecidedOrdered(_ context.Context) ([]*models.Match, error) {
	matches := r.collect(func(m *models.Match) bool { return m.Result != nil })
	sort.Slice(matches, func(i, j int) bool {
		dateI := r.s.events[matches[i].EventID].Date
		dateJ := r.s.events[matches[j].EventID].Date
		if !dateI.Equal(dateJ) {
			return dateI.Before(dateJ)
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

func (r *fakeMatchRepo) LatestCompletedByPlayer(_ context.Context, playerID int) (*models.Match, error) {
	var latest *models.Match
	for _, match := range r.s.matches {
		if match.Status != models.MatchCompleted || match.CompletedAt == nil {
			continue
		}
		involved := (match.APlayerID != nil && *match.APlayerID == playerID) ||
			(match.BPlayerID != nil && *match.BPlayerID == playerID)
		if !involved {
			continue
		}
		if latest == nil || match.CompletedAt.After(*latest.CompletedAt) {
			clone := *match
			latest = &clone
		}
	}
	return latest, nil
}

func (r *fakeMatchRepo) MaxMatchNumberByEvent(_ context.Context, eventID int) (int, error) {
	max := 0
	for _, match := range r.s.matches {
		if match.EventID == eventID && match.MatchNumber != nil && *match.MatchNumber > max {
			max = *match.MatchNumber
		}
	}
	return max, nil
}

// countingRecalculator records replay invocations.
type countingRecalculator struct{ calls int }

func (c *countingRecalculator) RecalculateAll(context.Context) (*RecalcSummary, error) {
	c.calls++
	return &RecalcSummary{}, nil
}
