package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/vglabs/grapple-league/elo"
	"github.com/vglabs/grapple-league/models"
	"github.com/vglabs/grapple-league/repositories"
)

// RatingRecalculator triggers a full rating replay. TournamentService
// calls it best-effort after every result mutation.
type RatingRecalculator interface {
	RecalculateAll(ctx context.Context) (*RecalcSummary, error)
}

// RatingService owns the rating replay engine plus the per-match
// preview and head-to-head reads.
type RatingService struct {
	players repositories.PlayerRepository
	matches repositories.MatchRepository
	classes repositories.WeightClassRepository
	tx      TxRunner
	logger  *slog.Logger
}

func NewRatingService(
	players repositories.PlayerRepository,
	matches repositories.MatchRepository,
	classes repositories.WeightClassRepository,
	tx TxRunner,
	logger *slog.Logger,
) *RatingService {
	return &RatingService{
		players: players,
		matches: matches,
		classes: classes,
		tx:      tx,
		logger:  logger,
	}
}

type LeaderboardEntry struct {
	PlayerID int    `json:"player_id"`
	Name     string `json:"name"`
	Rating   int    `json:"rating"`
	Matches  int    `json:"matches"`
}

type RecalcSummary struct {
	PlayersRated    int                `json:"players_rated"`
	MatchesReplayed int                `json:"matches_replayed"`
	Leaderboard     []LeaderboardEntry `json:"leaderboard"`
}

// RecalculateAll replays every decided match in chronological order and
// rebuilds all ratings from the belt baselines. Each fighter carries an
// overall rating plus one rating per division track; a match moves the
// overall rating and the rating of the track its weight class belongs
// to, each with its own match count driving the K-factor. The replay is
// deterministic, so running it twice yields identical ratings.
func (s *RatingService) RecalculateAll(ctx context.Context) (*RecalcSummary, error) {
	players, err := s.players.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	classes, err := s.classes.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := s.matches.ListDecidedOrdered(ctx)
	if err != nil {
		return nil, err
	}

	trackByClass := make(map[int]models.RatingTrack, len(classes))
	for _, class := range classes {
		trackByClass[class.ID] = class.Track
	}

	byID := make(map[int]*models.Player, len(players))
	for _, player := range players {
		baseline := elo.StartingRating(player.BeltRank)
		player.EloRating = baseline
		for _, track := range []models.RatingTrack{models.TrackLightweight, models.TrackMiddleweight, models.TrackHeavyweight} {
			player.SetDivisionRating(track, baseline)
			player.SetInitialDivisionRating(track, baseline)
		}
		byID[player.ID] = player
	}

	overallCounts := make(map[int]int)
	trackCounts := make(map[int]map[models.RatingTrack]int)
	trackCount := func(playerID int, track models.RatingTrack) int {
		return trackCounts[playerID][track]
	}
	bumpTrackCount := func(playerID int, track models.RatingTrack) {
		if trackCounts[playerID] == nil {
			trackCounts[playerID] = make(map[models.RatingTrack]int)
		}
		trackCounts[playerID][track]++
	}

	type matchDelta struct {
		matchID int
		aChange int
		bChange int
	}
	var deltas []matchDelta
	replayed := 0

	for _, match := range matches {
		if match.APlayerID == nil || match.BPlayerID == nil {
			continue
		}
		if match.Result == nil || *match.Result == models.ResultNoContest {
			continue
		}
		if match.WeightClassID == nil {
			continue
		}
		track, ok := trackByClass[*match.WeightClassID]
		if !ok {
			s.logger.Warn("replay skipping match with unknown weight class",
				"match_id", match.ID, "weight_class_id", *match.WeightClassID)
			continue
		}
		a, okA := byID[*match.APlayerID]
		b, okB := byID[*match.BPlayerID]
		if !okA || !okB {
			s.logger.Warn("replay skipping match with missing player", "match_id", match.ID)
			continue
		}

		var actualA, actualB float64
		switch *match.Result {
		case models.ResultPlayerAWin:
			actualA, actualB = elo.ScoreWin, elo.ScoreLoss
		case models.ResultPlayerBWin:
			actualA, actualB = elo.ScoreLoss, elo.ScoreWin
		case models.ResultDraw:
			actualA, actualB = elo.ScoreDraw, elo.ScoreDraw
		default:
			continue
		}

		// Division track update.
		aTrack := a.DivisionRating(track)
		bTrack := b.DivisionRating(track)
		aTrackDelta := elo.RatingChange(aTrack, bTrack, actualA, trackCount(a.ID, track))
		bTrackDelta := elo.RatingChange(bTrack, aTrack, actualB, trackCount(b.ID, track))
		a.SetDivisionRating(track, aTrack+aTrackDelta)
		b.SetDivisionRating(track, bTrack+bTrackDelta)

		// Overall (pound-for-pound) update with its own match count.
		aOverallDelta := elo.RatingChange(a.EloRating, b.EloRating, actualA, overallCounts[a.ID])
		bOverallDelta := elo.RatingChange(b.EloRating, a.EloRating, actualB, overallCounts[b.ID])
		a.EloRating += aOverallDelta
		b.EloRating += bOverallDelta

		deltas = append(deltas, matchDelta{
			matchID: match.ID,
			aChange: int(math.Round(aTrackDelta)),
			bChange: int(math.Round(bTrackDelta)),
		})
		bumpTrackCount(a.ID, track)
		bumpTrackCount(b.ID, track)
		overallCounts[a.ID]++
		overallCounts[b.ID]++
		replayed++
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, player := range players {
			if err := s.players.UpdateRatings(ctx, exec, player); err != nil {
				return err
			}
		}
		for _, delta := range deltas {
			aChange, bChange := delta.aChange, delta.bChange
			if err := s.matches.UpdateEloChanges(ctx, exec, delta.matchID, &aChange, &bChange); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &RecalcSummary{
		PlayersRated:    len(players),
		MatchesReplayed: replayed,
		Leaderboard:     buildLeaderboard(players, overallCounts),
	}, nil
}

// buildLeaderboard ranks fighters with at least one replayed match by
// overall rating, top ten.
func buildLeaderboard(players []*models.Player, counts map[int]int) []LeaderboardEntry {
	rated := make([]*models.Player, 0, len(players))
	for _, player := range players {
		if counts[player.ID] > 0 {
			rated = append(rated, player)
		}
	}
	sort.Slice(rated, func(i, j int) bool {
		if rated[i].EloRating != rated[j].EloRating {
			return rated[i].EloRating > rated[j].EloRating
		}
		return rated[i].ID < rated[j].ID
	})
	if len(rated) > 10 {
		rated = rated[:10]
	}

	leaderboard := make([]LeaderboardEntry, 0, len(rated))
	for _, player := range rated {
		leaderboard = append(leaderboard, LeaderboardEntry{
			PlayerID: player.ID,
			Name:     player.Name,
			Rating:   int(math.Round(player.EloRating)),
			Matches:  counts[player.ID],
		})
	}
	return leaderboard
}

// RatingOutcome is the rating movement for one hypothetical result.
type RatingOutcome struct {
	AChange float64 `json:"a_change"`
	BChange float64 `json:"b_change"`
	ANew    float64 `json:"a_new"`
	BNew    float64 `json:"b_new"`
}

type MatchPreview struct {
	ARating  float64 `json:"a_rating"`
	BRating  float64 `json:"b_rating"`
	AMatches int     `json:"a_matches"`
	BMatches int     `json:"b_matches"`

	// Win probabilities as percentages.
	AWinProbability float64 `json:"a_win_probability"`
	BWinProbability float64 `json:"b_win_probability"`

	IfAWins RatingOutcome `json:"if_a_wins"`
	IfBWins RatingOutcome `json:"if_b_wins"`
	IfDraw  RatingOutcome `json:"if_draw"`
}

// PreviewMatch projects the rating stakes of a prospective matchup
// without writing anything.
func (s *RatingService) PreviewMatch(ctx context.Context, aPlayerID, bPlayerID int) (*MatchPreview, error) {
	a, err := s.loadPlayer(ctx, aPlayerID)
	if err != nil {
		return nil, err
	}
	b, err := s.loadPlayer(ctx, bPlayerID)
	if err != nil {
		return nil, err
	}

	aMatches, err := s.decidedMatchCount(ctx, aPlayerID)
	if err != nil {
		return nil, err
	}
	bMatches, err := s.decidedMatchCount(ctx, bPlayerID)
	if err != nil {
		return nil, err
	}

	aRating := ratingOrBaseline(a)
	bRating := ratingOrBaseline(b)
	expectedA := elo.ExpectedScore(aRating, bRating)

	outcome := func(actualA, actualB float64) RatingOutcome {
		aChange := roundTenth(elo.RatingChange(aRating, bRating, actualA, aMatches))
		bChange := roundTenth(elo.RatingChange(bRating, aRating, actualB, bMatches))
		return RatingOutcome{
			AChange: aChange,
			BChange: bChange,
			ANew:    roundTenth(aRating + aChange),
			BNew:    roundTenth(bRating + bChange),
		}
	}

	return &MatchPreview{
		ARating:         roundTenth(aRating),
		BRating:         roundTenth(bRating),
		AMatches:        aMatches,
		BMatches:        bMatches,
		AWinProbability: roundTenth(expectedA * 100),
		BWinProbability: roundTenth((1 - expectedA) * 100),
		IfAWins:         outcome(elo.ScoreWin, elo.ScoreLoss),
		IfBWins:         outcome(elo.ScoreLoss, elo.ScoreWin),
		IfDraw:          outcome(elo.ScoreDraw, elo.ScoreDraw),
	}, nil
}

// PreviewForMatch is PreviewMatch keyed by a scheduled match.
func (s *RatingService) PreviewForMatch(ctx context.Context, matchID int) (*MatchPreview, error) {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if match.APlayerID == nil || match.BPlayerID == nil {
		return nil, ErrMissingFighters
	}
	return s.PreviewMatch(ctx, *match.APlayerID, *match.BPlayerID)
}

type HeadToHeadSummary struct {
	TotalMatches int `json:"total_matches"`

	// From fighter A's perspective.
	AWins int `json:"a_wins"`
	BWins int `json:"b_wins"`
	Draws int `json:"draws"`

	// Recent decided meetings, newest first, at most five.
	Recent []*models.Match `json:"recent"`
}

// HeadToHead summarises every decided meeting between two fighters.
func (s *RatingService) HeadToHead(ctx context.Context, aPlayerID, bPlayerID int) (*HeadToHeadSummary, error) {
	between, err := s.matches.ListBetweenPlayers(ctx, aPlayerID, bPlayerID)
	if err != nil {
		return nil, err
	}

	decided := make([]*models.Match, 0, len(between))
	for _, match := range between {
		if match.Result == nil || *match.Result == models.ResultNoContest {
			continue
		}
		decided = append(decided, match)
	}
	sort.Slice(decided, func(i, j int) bool {
		return decided[i].CreatedAt.After(decided[j].CreatedAt)
	})

	summary := &HeadToHeadSummary{TotalMatches: len(decided)}
	for _, match := range decided {
		winner := match.WinnerID()
		switch {
		case winner == nil:
			summary.Draws++
		case *winner == aPlayerID:
			summary.AWins++
		default:
			summary.BWins++
		}
	}
	if len(decided) > 5 {
		decided = decided[:5]
	}
	summary.Recent = decided
	return summary, nil
}

// FighterRecord is a career win/loss/draw line. NoContest results are
// excluded.
type FighterRecord struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
}

type TaleOfTheTape struct {
	Match   *models.Match  `json:"match"`
	PlayerA *models.Player `json:"player_a"`
	PlayerB *models.Player `json:"player_b"`

	RecordA FighterRecord `json:"record_a"`
	RecordB FighterRecord `json:"record_b"`

	HeadToHead *HeadToHeadSummary `json:"head_to_head"`
	Preview    *MatchPreview      `json:"elo_preview"`
}

// BuildTaleOfTheTape composes the pre-match card for a scheduled match:
// both fighters, their career records, the head-to-head history, and
// the rating stakes. The independent reads are fanned out.
func (s *RatingService) BuildTaleOfTheTape(ctx context.Context, matchID int) (*TaleOfTheTape, error) {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if match.APlayerID == nil || match.BPlayerID == nil {
		return nil, ErrMissingFighters
	}
	aID, bID := *match.APlayerID, *match.BPlayerID

	tape := &TaleOfTheTape{Match: match}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		tape.PlayerA, err = s.loadPlayer(gctx, aID)
		return err
	})
	g.Go(func() error {
		var err error
		tape.PlayerB, err = s.loadPlayer(gctx, bID)
		return err
	})
	g.Go(func() error {
		var err error
		tape.RecordA, err = s.careerRecord(gctx, aID)
		return err
	})
	g.Go(func() error {
		var err error
		tape.RecordB, err = s.careerRecord(gctx, bID)
		return err
	})
	g.Go(func() error {
		var err error
		tape.HeadToHead, err = s.HeadToHead(gctx, aID, bID)
		return err
	})
	g.Go(func() error {
		var err error
		tape.Preview, err = s.PreviewMatch(gctx, aID, bID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tape, nil
}

func (s *RatingService) careerRecord(ctx context.Context, playerID int) (FighterRecord, error) {
	decided, err := s.matches.ListDecidedByPlayer(ctx, playerID)
	if err != nil {
		return FighterRecord{}, err
	}
	var record FighterRecord
	for _, match := range decided {
		if match.Result == nil || *match.Result == models.ResultNoContest {
			continue
		}
		switch {
		case *match.Result == models.ResultDraw:
			record.Draws++
		case match.WinnerID() != nil && *match.WinnerID() == playerID:
			record.Wins++
		default:
			record.Losses++
		}
	}
	return record, nil
}

func (s *RatingService) decidedMatchCount(ctx context.Context, playerID int) (int, error) {
	decided, err := s.matches.ListDecidedByPlayer(ctx, playerID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, match := range decided {
		if match.Result != nil && *match.Result != models.ResultNoContest {
			count++
		}
	}
	return count, nil
}

func (s *RatingService) loadPlayer(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.players.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

// ratingOrBaseline falls back to the belt baseline for fighters who
// have never been rated.
func ratingOrBaseline(player *models.Player) float64 {
	if player.EloRating > 0 {
		return player.EloRating
	}
	return elo.StartingRating(player.BeltRank)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
