package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vglabs/grapple-league/models"
)

var ErrEntryNotFound = errors.New("entry not found")

type EntryRepository interface {
	// ListCheckedIn returns the checked-in entries for an event,
	// optionally narrowed to one weight class.
	ListCheckedIn(ctx context.Context, eventID int, weightClassID *int) ([]*models.Entry, error)
	GetByEventAndPlayer(ctx context.Context, eventID, playerID int) (*models.Entry, error)
}

type postgresEntryRepository struct {
	db *sql.DB
}

func NewPostgresEntryRepository(db *sql.DB) EntryRepository {
	return &postgresEntryRepository{db: db}
}

const entryColumns = `id, event_id, player_id, weight_class_id, checked_in, belt_rank, weight, created_at`

func scanEntry(scanner interface{ Scan(...interface{}) error }) (*models.Entry, error) {
	entry := &models.Entry{}
	err := scanner.Scan(
		&entry.ID,
		&entry.EventID,
		&entry.PlayerID,
		&entry.WeightClassID,
		&entry.CheckedIn,
		&entry.BeltRank,
		&entry.Weight,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *postgresEntryRepository) ListCheckedIn(ctx context.Context, eventID int, weightClassID *int) ([]*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE event_id = $1 AND checked_in = TRUE`
	args := []interface{}{eventID}
	if weightClassID != nil {
		query += ` AND weight_class_id = $2`
		args = append(args, *weightClassID)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query checked-in entries for event %d: %w", eventID, err)
	}
	defer rows.Close()

	entries := make([]*models.Entry, 0)
	for rows.Next() {
		entry, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", scanErr)
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during entry rows iteration: %w", err)
	}
	return entries, nil
}

func (r *postgresEntryRepository) GetByEventAndPlayer(ctx context.Context, eventID, playerID int) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE event_id = $1 AND player_id = $2`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, eventID, playerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to scan entry for event %d player %d: %w", eventID, playerID, err)
	}
	return entry, nil
}
