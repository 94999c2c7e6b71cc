package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/vglabs/grapple-league/models"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchPlayerInvalid = errors.New("match references an unknown player")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	Delete(ctx context.Context, id int) error

	UpdateDependencies(ctx context.Context, exec SQLExecutor, id int, dependsOnA, dependsOnB *int) error
	UpdateSlots(ctx context.Context, id int, aPlayerID, bPlayerID *int) error
	UpdateStatus(ctx context.Context, id int, status models.MatchStatus) error
	UpdateResult(ctx context.Context, id int, result *models.MatchResult, method *string, durationSeconds *int, status models.MatchStatus, completedAt *time.Time) error
	UpdateEloChanges(ctx context.Context, exec SQLExecutor, id int, aChange, bChange *int) error
	// ClearDependenciesOn nulls any dependency reference pointing at the
	// given match, ahead of deleting it.
	ClearDependenciesOn(ctx context.Context, matchID int) error

	ListByRound(ctx context.Context, roundID int) ([]*models.Match, error)
	ListByBracket(ctx context.Context, bracketID int) ([]*models.Match, error)
	ListByDependency(ctx context.Context, matchID int) ([]*models.Match, error)
	ListReadyByBracket(ctx context.Context, bracketID int) ([]*models.Match, error)
	ListManualByEvent(ctx context.Context, eventID int) ([]*models.Match, error)
	DeleteManualByEvent(ctx context.Context, eventID int) ([]*models.Match, error)
	ListBetweenPlayers(ctx context.Context, playerID, opponentID int) ([]*models.Match, error)
	ListDecidedByPlayer(ctx context.Context, playerID int) ([]*models.Match, error)
	// ListDecidedOrdered returns every match with a result in replay
	// order: event date, then match id.
	ListDecidedOrdered(ctx context.Context) ([]*models.Match, error)
	LatestCompletedByPlayer(ctx context.Context, playerID int) (*models.Match, error)
	MaxMatchNumberByEvent(ctx context.Context, eventID int) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	m.id, m.event_id, m.bracket_round_id, m.a_player_id, m.b_player_id, m.weight_class_id,
	m.result, m.method, m.duration_seconds, m.match_status, m.match_number,
	m.depends_on_match_a, m.depends_on_match_b, m.requires_winner_a, m.requires_winner_b,
	m.a_elo_change, m.b_elo_change, m.created_at, m.completed_at`

func scanMatch(scanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	match := &models.Match{}
	err := scanner.Scan(
		&match.ID,
		&match.EventID,
		&match.BracketRoundID,
		&match.APlayerID,
		&match.BPlayerID,
		&match.WeightClassID,
		&match.Result,
		&match.Method,
		&match.DurationSeconds,
		&match.Status,
		&match.MatchNumber,
		&match.DependsOnMatchA,
		&match.DependsOnMatchB,
		&match.RequiresWinnerA,
		&match.RequiresWinnerB,
		&match.AEloChange,
		&match.BEloChange,
		&match.CreatedAt,
		&match.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return match, nil
}

func collectMatches(rows *sql.Rows) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(event_id, bracket_round_id, a_player_id, b_player_id, weight_class_id,
			 result, method, duration_seconds, match_status, match_number,
			 depends_on_match_a, depends_on_match_b, requires_winner_a, requires_winner_b,
			 completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.EventID,
		match.BracketRoundID,
		match.APlayerID,
		match.BPlayerID,
		match.WeightClassID,
		match.Result,
		match.Method,
		match.DurationSeconds,
		match.Status,
		match.MatchNumber,
		match.DependsOnMatchA,
		match.DependsOnMatchB,
		match.RequiresWinnerA,
		match.RequiresWinnerB,
		match.CompletedAt,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches m WHERE m.id = $1`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateDependencies(ctx context.Context, exec SQLExecutor, id int, dependsOnA, dependsOnB *int) error {
	query := `UPDATE matches SET depends_on_match_a = $1, depends_on_match_b = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, dependsOnA, dependsOnB, id)
	if err != nil {
		return fmt.Errorf("failed to update dependencies of match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateSlots(ctx context.Context, id int, aPlayerID, bPlayerID *int) error {
	query := `UPDATE matches SET a_player_id = $1, b_player_id = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, aPlayerID, bPlayerID, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, id int, status models.MatchStatus) error {
	query := `UPDATE matches SET match_status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status of match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, id int, matchResult *models.MatchResult, method *string, durationSeconds *int, status models.MatchStatus, completedAt *time.Time) error {
	query := `
		UPDATE matches
		SET result = $1, method = $2, duration_seconds = $3, match_status = $4, completed_at = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query, matchResult, method, durationSeconds, status, completedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update result of match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateEloChanges(ctx context.Context, exec SQLExecutor, id int, aChange, bChange *int) error {
	query := `UPDATE matches SET a_elo_change = $1, b_elo_change = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, aChange, bChange, id)
	if err != nil {
		return fmt.Errorf("failed to update rating deltas of match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) ClearDependenciesOn(ctx context.Context, matchID int) error {
	queries := []string{
		`UPDATE matches SET depends_on_match_a = NULL WHERE depends_on_match_a = $1`,
		`UPDATE matches SET depends_on_match_b = NULL WHERE depends_on_match_b = $1`,
	}
	for _, query := range queries {
		if _, err := r.db.ExecContext(ctx, query, matchID); err != nil {
			return fmt.Errorf("failed to clear dependencies on match %d: %w", matchID, err)
		}
	}
	return nil
}

func (r *postgresMatchRepository) ListByRound(ctx context.Context, roundID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches m WHERE m.bracket_round_id = $1 ORDER BY m.match_number, m.id`

	rows, err := r.db.QueryContext(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for round %d: %w", roundID, err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListByBracket(ctx context.Context, bracketID int) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches m
		JOIN bracket_rounds r ON r.id = m.bracket_round_id
		WHERE r.bracket_format_id = $1
		ORDER BY r.round_number, m.match_number, m.id`

	rows, err := r.db.QueryContext(ctx, query, bracketID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for bracket %d: %w", bracketID, err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListByDependency(ctx context.Context, matchID int) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches m
		WHERE m.depends_on_match_a = $1 OR m.depends_on_match_b = $1
		ORDER BY m.id`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dependents of match %d: %w", matchID, err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListReadyByBracket(ctx context.Context, bracketID int) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches m
		JOIN bracket_rounds r ON r.id = m.bracket_round_id
		WHERE r.bracket_format_id = $1 AND m.match_status = $2
		ORDER BY r.round_number, m.match_number, m.id`

	rows, err := r.db.QueryContext(ctx, query, bracketID, models.MatchReady)
	if err != nil {
		return nil, fmt.Errorf("failed to query ready matches for bracket %d: %w", bracketID, err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListManualByEvent(ctx context.Context, eventID int) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches m
		WHERE m.event_id = $1 AND m.bracket_round_id IS NULL
		ORDER BY m.match_number, m.id`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query manual matches for event %d: %w", eventID, err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *postgresMatchRepository) DeleteManualByEvent(ctx context.Context, eventID int) ([]*models.Match, error) {
	deleted, err := r.ListManualByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	query := `DELETE FROM matches WHERE event_id = $1 AND bracket_round_id IS NULL`
	if _, err := r.db.ExecContext(ctx, query, eventID); err != nil {
		return nil, fmt.Errorf("failed to delete manual matches for event %d: %w", eventID, err)
	}
	return deleted, nil
}

func (r *postgresMatchRepository) ListBetweenPlayers(ctx context.Context, playerID, opponentID int) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches m
		WHERE (m.a_player_id = $1 AND m.b_player_id = $2)
		   OR (m.a_player_id = $2 AND m.b_player_id = $1)
		ORDER BY m.id`

	rows, err := r.db.QueryContext(ctx, query, playerID, opponentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches between players %d and %d: %w", playerID, opponentID, err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListDecidedByPlayer(ctx context.Context, playerID int) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches m
		WHERE m.result IS NOT NULL AND (m.a_player_id = $1 OR m.b_player_id = $1)
		ORDER BY m.id`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query decided matches for player %d: %w", playerID, err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListDecidedOrdered(ctx context.Context) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches m
		JOIN events e ON e.id = m.event_id
		WHERE m.result IS NOT NULL
		ORDER BY e.date, m.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query decided matches: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *postgresMatchRepository) LatestCompletedByPlayer(ctx context.Context, playerID int) (*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches m
		WHERE (m.a_player_id = $1 OR m.b_player_id = $1)
		  AND m.match_status = $2 AND m.completed_at IS NOT NULL
		ORDER BY m.completed_at DESC
		LIMIT 1`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, playerID, models.MatchCompleted))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan latest completed match for player %d: %w", playerID, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) MaxMatchNumberByEvent(ctx context.Context, eventID int) (int, error) {
	query := `SELECT COALESCE(MAX(match_number), 0) FROM matches WHERE event_id = $1`

	var max int
	if err := r.db.QueryRowContext(ctx, query, eventID).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to query max match number for event %d: %w", eventID, err)
	}
	return max, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
		switch pqErr.Constraint {
		case "matches_a_player_id_fkey", "matches_b_player_id_fkey":
			return ErrMatchPlayerInvalid
		}
	}
	return fmt.Errorf("match persistence error: %w", err)
}
