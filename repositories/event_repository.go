package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vglabs/grapple-league/models"
)

var ErrEventNotFound = errors.New("event not found")

type EventRepository interface {
	GetByID(ctx context.Context, id int) (*models.Event, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `
		SELECT id, name, date, venue, status, created_at
		FROM events
		WHERE id = $1`

	event := &models.Event{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.Date,
		&event.Venue,
		&event.Status,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event %d: %w", id, err)
	}
	return event, nil
}
