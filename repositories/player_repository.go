package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/vglabs/grapple-league/models"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	GetByID(ctx context.Context, id int) (*models.Player, error)
	ListByIDs(ctx context.Context, ids []int) ([]*models.Player, error)
	ListAll(ctx context.Context) ([]*models.Player, error)
	UpdateRatings(ctx context.Context, exec SQLExecutor, player *models.Player) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `
	id, name, belt_rank, weight, weight_class_id, academy, photo_url,
	elo_rating, elo_lightweight, elo_middleweight, elo_heavyweight,
	initial_elo_lightweight, initial_elo_middleweight, initial_elo_heavyweight,
	manual_badges, active, created_at, updated_at`

func scanPlayer(scanner interface{ Scan(...interface{}) error }) (*models.Player, error) {
	player := &models.Player{}
	err := scanner.Scan(
		&player.ID,
		&player.Name,
		&player.BeltRank,
		&player.Weight,
		&player.WeightClassID,
		&player.Academy,
		&player.PhotoURL,
		&player.EloRating,
		&player.EloLightweight,
		&player.EloMiddleweight,
		&player.EloHeavyweight,
		&player.InitialEloLightweight,
		&player.InitialEloMiddleweight,
		&player.InitialEloHeavyweight,
		pq.Array(&player.ManualBadges),
		&player.Active,
		&player.CreatedAt,
		&player.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return player, nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	player, err := scanPlayer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player %d: %w", id, err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.Player, error) {
	if len(ids) == 0 {
		return []*models.Player{}, nil
	}
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = ANY($1) ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query players by ids: %w", err)
	}
	defer rows.Close()
	return collectPlayers(rows)
}

func (r *postgresPlayerRepository) ListAll(ctx context.Context) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()
	return collectPlayers(rows)
}

func collectPlayers(rows *sql.Rows) ([]*models.Player, error) {
	players := make([]*models.Player, 0)
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) UpdateRatings(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	query := `
		UPDATE players
		SET elo_rating = $1,
		    elo_lightweight = $2, elo_middleweight = $3, elo_heavyweight = $4,
		    initial_elo_lightweight = $5, initial_elo_middleweight = $6, initial_elo_heavyweight = $7,
		    updated_at = NOW()
		WHERE id = $8`

	result, err := exec.ExecContext(ctx, query,
		player.EloRating,
		player.EloLightweight,
		player.EloMiddleweight,
		player.EloHeavyweight,
		player.InitialEloLightweight,
		player.InitialEloMiddleweight,
		player.InitialEloHeavyweight,
		player.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ratings for player %d: %w", player.ID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
