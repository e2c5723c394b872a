package services

import (
	"context"

	"github.com/gamelog/apiserver/types"
)

// ListRepository defines persistence operations for curated lists.
type ListRepository interface {
	ListByAccount(ctx context.Context, accountID string, offset, limit int) ([]types.List, int, error)
	Get(ctx context.Context, id string) (types.List, error)
	Create(ctx context.Context, list types.List) (types.List, error)
	Update(ctx context.Context, list types.List) (types.List, error)
	Delete(ctx context.Context, id string) error
	AddItem(ctx context.Context, listID, gameID string) error
	RemoveItem(ctx context.Context, listID, gameID string) error
}

// ListService encapsulates curated-list use-cases.
type ListService struct {
	repo ListRepository
}

func NewListService(repo ListRepository) *ListService {
	return &ListService{repo: repo}
}

func (s *ListService) ListByAccount(ctx context.Context, accountID string, offset, limit int) ([]types.List, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.ListByAccount(ctx, accountID, offset, limit)
}

func (s *ListService) Get(ctx context.Context, id string) (types.List, error) {
	return s.repo.Get(ctx, id)
}

func (s *ListService) Create(ctx context.Context, list types.List) (types.List, error) {
	return s.repo.Create(ctx, list)
}

func (s *ListService) Update(ctx context.Context, list types.List) (types.List, error) {
	return s.repo.Update(ctx, list)
}

func (s *ListService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *ListService) AddItem(ctx context.Context, listID, gameID string) error {
	return s.repo.AddItem(ctx, listID, gameID)
}

func (s *ListService) RemoveItem(ctx context.Context, listID, gameID string) error {
	return s.repo.RemoveItem(ctx, listID, gameID)
}
