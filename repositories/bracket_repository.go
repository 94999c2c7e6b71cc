package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/vglabs/grapple-league/models"
)

var (
	ErrBracketNotFound     = errors.New("bracket not found")
	ErrBracketEventInvalid = errors.New("bracket references an unknown event")
	ErrBracketClassInvalid = errors.New("bracket references an unknown weight class")
)

type BracketRepository interface {
	Create(ctx context.Context, bracket *models.BracketFormat) error
	GetByID(ctx context.Context, id int) (*models.BracketFormat, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.BracketFormat, error)
	MarkGenerated(ctx context.Context, exec SQLExecutor, id int) error
	SetFinalized(ctx context.Context, id int, finalized bool) error
	// Delete removes the bracket; rounds and matches go with it through
	// ON DELETE CASCADE.
	Delete(ctx context.Context, id int) error
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

const bracketColumns = `
	id, event_id, weight_class_id, format_type, config,
	min_rest_minutes, auto_generate, is_generated, is_finalized, created_at`

func scanBracket(scanner interface{ Scan(...interface{}) error }) (*models.BracketFormat, error) {
	bracket := &models.BracketFormat{}
	err := scanner.Scan(
		&bracket.ID,
		&bracket.EventID,
		&bracket.WeightClassID,
		&bracket.Format,
		&bracket.Config,
		&bracket.MinRestMinutes,
		&bracket.AutoGenerate,
		&bracket.IsGenerated,
		&bracket.IsFinalized,
		&bracket.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return bracket, nil
}

func (r *postgresBracketRepository) Create(ctx context.Context, bracket *models.BracketFormat) error {
	query := `
		INSERT INTO bracket_formats
			(event_id, weight_class_id, format_type, config, min_rest_minutes, auto_generate)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_generated, is_finalized, created_at`

	err := r.db.QueryRowContext(ctx, query,
		bracket.EventID,
		bracket.WeightClassID,
		bracket.Format,
		bracket.Config,
		bracket.MinRestMinutes,
		bracket.AutoGenerate,
	).Scan(&bracket.ID, &bracket.IsGenerated, &bracket.IsFinalized, &bracket.CreatedAt)

	return r.handleBracketError(err)
}

func (r *postgresBracketRepository) GetByID(ctx context.Context, id int) (*models.BracketFormat, error) {
	query := `SELECT ` + bracketColumns + ` FROM bracket_formats WHERE id = $1`

	bracket, err := scanBracket(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to scan bracket %d: %w", id, err)
	}
	return bracket, nil
}

func (r *postgresBracketRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.BracketFormat, error) {
	query := `SELECT ` + bracketColumns + ` FROM bracket_formats WHERE event_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query brackets for event %d: %w", eventID, err)
	}
	defer rows.Close()

	brackets := make([]*models.BracketFormat, 0)
	for rows.Next() {
		bracket, scanErr := scanBracket(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan bracket row: %w", scanErr)
		}
		brackets = append(brackets, bracket)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bracket rows iteration: %w", err)
	}
	return brackets, nil
}

func (r *postgresBracketRepository) MarkGenerated(ctx context.Context, exec SQLExecutor, id int) error {
	query := `UPDATE bracket_formats SET is_generated = TRUE WHERE id = $1`
	result, err := exec.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark bracket %d generated: %w", id, err)
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) SetFinalized(ctx context.Context, id int, finalized bool) error {
	query := `UPDATE bracket_formats SET is_finalized = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, finalized, id)
	if err != nil {
		return fmt.Errorf("failed to set bracket %d finalized: %w", id, err)
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bracket_formats WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bracket %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) handleBracketError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
		switch pqErr.Constraint {
		case "bracket_formats_event_id_fkey":
			return ErrBracketEventInvalid
		case "bracket_formats_weight_class_id_fkey":
			return ErrBracketClassInvalid
		}
	}
	return fmt.Errorf("bracket persistence error: %w", err)
}
