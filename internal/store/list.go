package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gamelog/apiserver/types"
	"github.com/google/uuid"
)

// ListRepository handles persistence for curated lists and their items.
type ListRepository struct {
	db *sql.DB
}

func NewListRepository(db *sql.DB) *ListRepository {
	return &ListRepository{db: db}
}

func (r *ListRepository) ListByAccount(ctx context.Context, accountID string, offset, limit int) ([]types.List, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM lists WHERE account_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, accountID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT id, account_id, name, public, created_at, updated_at
		FROM lists
		WHERE account_id = $1
		ORDER BY name
		OFFSET $2 LIMIT $3`
	rows, err := r.db.QueryContext(ctx, listQuery, accountID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	lists := make([]types.List, 0, limit)
	for rows.Next() {
		var list types.List
		if err := rows.Scan(
			&list.ID,
			&list.AccountID,
			&list.Name,
			&list.Public,
			&list.CreatedAt,
			&list.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		lists = append(lists, list)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return lists, total, nil
}

func (r *ListRepository) Get(ctx context.Context, id string) (types.List, error) {
	const query = `
		SELECT id, account_id, name, public, created_at, updated_at
		FROM lists
		WHERE id = $1`
	var list types.List
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&list.ID,
		&list.AccountID,
		&list.Name,
		&list.Public,
		&list.CreatedAt,
		&list.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.List{}, ErrNotFound
		}
		return types.List{}, err
	}

	const itemsQuery = `
		SELECT game_id
		FROM list_items
		WHERE list_id = $1
		ORDER BY position`
	rows, err := r.db.QueryContext(ctx, itemsQuery, id)
	if err != nil {
		return types.List{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var gameID string
		if err := rows.Scan(&gameID); err != nil {
			return types.List{}, err
		}
		list.GameIDs = append(list.GameIDs, gameID)
	}
	if err := rows.Err(); err != nil {
		return types.List{}, err
	}

	return list, nil
}

func (r *ListRepository) Create(ctx context.Context, list types.List) (types.List, error) {
	now := time.Now()
	list.ID = uuid.NewString()
	list.CreatedAt = now
	list.UpdatedAt = now

	const query = `
		INSERT INTO lists (id, account_id, name, public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		list.ID,
		list.AccountID,
		list.Name,
		list.Public,
		list.CreatedAt,
		list.UpdatedAt,
	); err != nil {
		return types.List{}, err
	}
	return list, nil
}

func (r *ListRepository) Update(ctx context.Context, list types.List) (types.List, error) {
	list.UpdatedAt = time.Now()

	const query = `
		UPDATE lists
		SET name = $1,
			public = $2,
			updated_at = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(
		ctx,
		query,
		list.Name,
		list.Public,
		list.UpdatedAt,
		list.ID,
	)
	if err != nil {
		return types.List{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.List{}, err
	}
	if affected == 0 {
		return types.List{}, ErrNotFound
	}
	return list, nil
}

func (r *ListRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM lists WHERE id = $1`
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

func (r *ListRepository) AddItem(ctx context.Context, listID, gameID string) error {
	const query = `
		INSERT INTO list_items (list_id, game_id, position)
		VALUES ($1, $2, COALESCE((SELECT MAX(position) + 1 FROM list_items WHERE list_id = $1), 0))
		ON CONFLICT (list_id, game_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, listID, gameID)
	return err
}

func (r *ListRepository) RemoveItem(ctx context.Context, listID, gameID string) error {
	const query = `DELETE FROM list_items WHERE list_id = $1 AND game_id = $2`
	result, err := r.db.ExecContext(ctx, query, listID, gameID)
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
