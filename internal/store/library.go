package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gamelog/apiserver/types"
	"github.com/google/uuid"
)

// LibraryRepository handles persistence for library entries.
type LibraryRepository struct {
	db *sql.DB
}

func NewLibraryRepository(db *sql.DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

func (r *LibraryRepository) ListByAccount(ctx context.Context, accountID string, offset, limit int) ([]types.LibraryEntry, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM library_entries WHERE account_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, accountID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT id, account_id, game_id, status, favorite, created_at, updated_at
		FROM library_entries
		WHERE account_id = $1
		ORDER BY updated_at DESC
		OFFSET $2 LIMIT $3`
	rows, err := r.db.QueryContext(ctx, listQuery, accountID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := make([]types.LibraryEntry, 0, limit)
	for rows.Next() {
		var entry types.LibraryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.GameID,
			&entry.Status,
			&entry.Favorite,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *LibraryRepository) Get(ctx context.Context, id string) (types.LibraryEntry, error) {
	const query = `
		SELECT id, account_id, game_id, status, favorite, created_at, updated_at
		FROM library_entries
		WHERE id = $1`
	var entry types.LibraryEntry
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&entry.ID,
		&entry.AccountID,
		&entry.GameID,
		&entry.Status,
		&entry.Favorite,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.LibraryEntry{}, ErrNotFound
		}
		return types.LibraryEntry{}, err
	}
	return entry, nil
}

func (r *LibraryRepository) Create(ctx context.Context, entry types.LibraryEntry) (types.LibraryEntry, error) {
	now := time.Now()
	entry.ID = uuid.NewString()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	const query = `
		INSERT INTO library_entries (id, account_id, game_id, status, favorite, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.AccountID,
		entry.GameID,
		entry.Status,
		entry.Favorite,
		entry.CreatedAt,
		entry.UpdatedAt,
	); err != nil {
		return types.LibraryEntry{}, err
	}
	return entry, nil
}

func (r *LibraryRepository) Update(ctx context.Context, entry types.LibraryEntry) (types.LibraryEntry, error) {
	entry.UpdatedAt = time.Now()

	const query = `
		UPDATE library_entries
		SET status = $1,
			favorite = $2,
			updated_at = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(
		ctx,
		query,
		entry.Status,
		entry.Favorite,
		entry.UpdatedAt,
		entry.ID,
	)
	if err != nil {
		return types.LibraryEntry{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.LibraryEntry{}, err
	}
	if affected == 0 {
		return types.LibraryEntry{}, ErrNotFound
	}
	return entry, nil
}

func (r *LibraryRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM library_entries WHERE id = $1`
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
