package services

import (
	"context"

	"github.com/gamelog/apiserver/types"
)

// LibraryRepository defines persistence operations for library entries.
type LibraryRepository interface {
	ListByAccount(ctx context.Context, accountID string, offset, limit int) ([]types.LibraryEntry, int, error)
	Get(ctx context.Context, id string) (types.LibraryEntry, error)
	Create(ctx context.Context, entry types.LibraryEntry) (types.LibraryEntry, error)
	Update(ctx context.Context, entry types.LibraryEntry) (types.LibraryEntry, error)
	Delete(ctx context.Context, id string) error
}

// LibraryService encapsulates library use-cases.
type LibraryService struct {
	repo LibraryRepository
}

func NewLibraryService(repo LibraryRepository) *LibraryService {
	return &LibraryService{repo: repo}
}

func (s *LibraryService) ListByAccount(ctx context.Context, accountID string, offset, limit int) ([]types.LibraryEntry, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.ListByAccount(ctx, accountID, offset, limit)
}

func (s *LibraryService) Get(ctx context.Context, id string) (types.LibraryEntry, error) {
	return s.repo.Get(ctx, id)
}

func (s *LibraryService) Create(ctx context.Context, entry types.LibraryEntry) (types.LibraryEntry, error) {
	if !entry.Status.Valid() {
		entry.Status = types.StatusWishlist
	}
	return s.repo.Create(ctx, entry)
}

func (s *LibraryService) Update(ctx context.Context, entry types.LibraryEntry) (types.LibraryEntry, error) {
	return s.repo.Update(ctx, entry)
}

func (s *LibraryService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
