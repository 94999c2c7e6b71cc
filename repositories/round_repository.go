package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vglabs/grapple-league/models"
)

var ErrRoundNotFound = errors.New("bracket round not found")

type RoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.BracketRound) error
	GetByID(ctx context.Context, id int) (*models.BracketRound, error)
	ListByBracket(ctx context.Context, bracketID int) ([]*models.BracketRound, error)
	UpdateStatus(ctx context.Context, id int, status models.RoundStatus, completedAt *time.Time) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

const roundColumns = `
	id, bracket_format_id, round_number, round_name, bracket_type,
	status, round_data, created_at, completed_at`

func scanRound(scanner interface{ Scan(...interface{}) error }) (*models.BracketRound, error) {
	round := &models.BracketRound{}
	err := scanner.Scan(
		&round.ID,
		&round.BracketFormatID,
		&round.RoundNumber,
		&round.RoundName,
		&round.BracketType,
		&round.Status,
		&round.RoundData,
		&round.CreatedAt,
		&round.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return round, nil
}

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.BracketRound) error {
	query := `
		INSERT INTO bracket_rounds
			(bracket_format_id, round_number, round_name, bracket_type, status, round_data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		round.BracketFormatID,
		round.RoundNumber,
		round.RoundName,
		round.BracketType,
		round.Status,
		round.RoundData,
	).Scan(&round.ID, &round.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert round %d for bracket %d: %w", round.RoundNumber, round.BracketFormatID, err)
	}
	return nil
}

func (r *postgresRoundRepository) GetByID(ctx context.Context, id int) (*models.BracketRound, error) {
	query := `SELECT ` + roundColumns + ` FROM bracket_rounds WHERE id = $1`

	round, err := scanRound(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to scan round %d: %w", id, err)
	}
	return round, nil
}

func (r *postgresRoundRepository) ListByBracket(ctx context.Context, bracketID int) ([]*models.BracketRound, error) {
	query := `SELECT ` + roundColumns + ` FROM bracket_rounds WHERE bracket_format_id = $1 ORDER BY round_number`

	rows, err := r.db.QueryContext(ctx, query, bracketID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds for bracket %d: %w", bracketID, err)
	}
	defer rows.Close()

	rounds := make([]*models.BracketRound, 0)
	for rows.Next() {
		round, scanErr := scanRound(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan round row: %w", scanErr)
		}
		rounds = append(rounds, round)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during round rows iteration: %w", err)
	}
	return rounds, nil
}

func (r *postgresRoundRepository) UpdateStatus(ctx context.Context, id int, status models.RoundStatus, completedAt *time.Time) error {
	query := `UPDATE bracket_rounds SET status = $1, completed_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, completedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update status of round %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}
