package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/gamelog/apiserver/types"
	"github.com/google/uuid"
)

// GameRepository handles persistence for games.
type GameRepository struct {
	db *sql.DB
}

func NewGameRepository(db *sql.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) List(ctx context.Context, offset, limit int) ([]types.Game, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM games`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT id, external_id, title, description, cover_key, release_year, platforms, genre, created_at, updated_at
		FROM games
		ORDER BY title
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	games := make([]types.Game, 0, limit)
	for rows.Next() {
		var game types.Game
		var platformsJSON []byte
		if err := rows.Scan(
			&game.ID,
			&game.ExternalID,
			&game.Title,
			&game.Description,
			&game.CoverKey,
			&game.ReleaseYear,
			&platformsJSON,
			&game.Genre,
			&game.CreatedAt,
			&game.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}

		_ = json.Unmarshal(platformsJSON, &game.Platforms)
		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return games, total, nil
}

func (r *GameRepository) Get(ctx context.Context, id string) (types.Game, error) {
	const query = `
		SELECT id, external_id, title, description, cover_key, release_year, platforms, genre, created_at, updated_at
		FROM games
		WHERE id = $1`
	var game types.Game
	var platformsJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&game.ID,
		&game.ExternalID,
		&game.Title,
		&game.Description,
		&game.CoverKey,
		&game.ReleaseYear,
		&platformsJSON,
		&game.Genre,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Game{}, ErrNotFound
		}
		return types.Game{}, err
	}

	_ = json.Unmarshal(platformsJSON, &game.Platforms)
	return game, nil
}

func (r *GameRepository) Create(ctx context.Context, game types.Game) (types.Game, error) {
	now := time.Now()
	game.ID = uuid.NewString()
	game.CreatedAt = now
	game.UpdatedAt = now

	platformsJSON, err := json.Marshal(game.Platforms)
	if err != nil {
		return types.Game{}, err
	}

	const query = `
		INSERT INTO games (id, external_id, title, description, cover_key, release_year, platforms, genre, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		game.ID,
		game.ExternalID,
		game.Title,
		game.Description,
		game.CoverKey,
		game.ReleaseYear,
		platformsJSON,
		game.Genre,
		game.CreatedAt,
		game.UpdatedAt,
	); err != nil {
		return types.Game{}, err
	}

	return game, nil
}

func (r *GameRepository) Update(ctx context.Context, game types.Game) (types.Game, error) {
	game.UpdatedAt = time.Now()

	platformsJSON, err := json.Marshal(game.Platforms)
	if err != nil {
		return types.Game{}, err
	}

	const query = `
		UPDATE games
		SET external_id = $1,
			title = $2,
			description = $3,
			cover_key = $4,
			release_year = $5,
			platforms = $6,
			genre = $7,
			updated_at = $8
		WHERE id = $9`
	result, err := r.db.ExecContext(
		ctx,
		query,
		game.ExternalID,
		game.Title,
		game.Description,
		game.CoverKey,
		game.ReleaseYear,
		platformsJSON,
		game.Genre,
		game.UpdatedAt,
		game.ID,
	)
	if err != nil {
		return types.Game{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Game{}, err
	}
	if affected == 0 {
		return types.Game{}, ErrNotFound
	}

	return game, nil
}

func (r *GameRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM games WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
