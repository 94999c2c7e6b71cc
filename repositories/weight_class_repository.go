package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vglabs/grapple-league/models"
)

var ErrWeightClassNotFound = errors.New("weight class not found")

type WeightClassRepository interface {
	GetByID(ctx context.Context, id int) (*models.WeightClass, error)
	ListAll(ctx context.Context) ([]*models.WeightClass, error)
}

type postgresWeightClassRepository struct {
	db *sql.DB
}

func NewPostgresWeightClassRepository(db *sql.DB) WeightClassRepository {
	return &postgresWeightClassRepository{db: db}
}

func (r *postgresWeightClassRepository) GetByID(ctx context.Context, id int) (*models.WeightClass, error) {
	query := `SELECT id, name, min_lbs, max_lbs, track FROM weight_classes WHERE id = $1`

	wc := &models.WeightClass{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&wc.ID, &wc.Name, &wc.MinLbs, &wc.MaxLbs, &wc.Track)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWeightClassNotFound
		}
		return nil, fmt.Errorf("failed to scan weight class %d: %w", id, err)
	}
	return wc, nil
}

func (r *postgresWeightClassRepository) ListAll(ctx context.Context) ([]*models.WeightClass, error) {
	query := `SELECT id, name, min_lbs, max_lbs, track FROM weight_classes ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query weight classes: %w", err)
	}
	defer rows.Close()

	classes := make([]*models.WeightClass, 0)
	for rows.Next() {
		wc := &models.WeightClass{}
		if scanErr := rows.Scan(&wc.ID, &wc.Name, &wc.MinLbs, &wc.MaxLbs, &wc.Track); scanErr != nil {
			return nil, fmt.Errorf("failed to scan weight class row: %w", scanErr)
		}
		classes = append(classes, wc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during weight class rows iteration: %w", err)
	}
	return classes, nil
}
