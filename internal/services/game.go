package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gamelog/apiserver/internal/storage"
	"github.com/gamelog/apiserver/types"
)

// ErrNoCover is returned when a game has no stored cover image.
var ErrNoCover = errors.New("no cover image")

// GameRepository defines persistence operations for games.
type GameRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.Game, int, error)
	Get(ctx context.Context, id string) (types.Game, error)
	Create(ctx context.Context, game types.Game) (types.Game, error)
	Update(ctx context.Context, game types.Game) (types.Game, error)
	Delete(ctx context.Context, id string) error
}

// GameService encapsulates game use-cases, including cover art stored in
// object storage.
type GameService struct {
	repo    GameRepository
	storage *storage.Storage
}

func NewGameService(repo GameRepository, storage *storage.Storage) *GameService {
	return &GameService{repo: repo, storage: storage}
}

func (s *GameService) List(ctx context.Context, offset, limit int) ([]types.Game, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *GameService) Get(ctx context.Context, id string) (types.Game, error) {
	return s.repo.Get(ctx, id)
}

func (s *GameService) Create(ctx context.Context, game types.Game) (types.Game, error) {
	return s.repo.Create(ctx, game)
}

func (s *GameService) Update(ctx context.Context, game types.Game) (types.Game, error) {
	return s.repo.Update(ctx, game)
}

func (s *GameService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// SetCover stores cover image bytes for a game and records the object key.
func (s *GameService) SetCover(ctx context.Context, id string, data []byte, contentType string) (types.Game, error) {
	if s.storage == nil {
		return types.Game{}, fmt.Errorf("object storage is not configured")
	}

	game, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Game{}, err
	}

	key := fmt.Sprintf("covers/%s", game.ID)
	if err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return types.Game{}, err
	}

	game.CoverKey = key
	return s.repo.Update(ctx, game)
}

// GetCover opens a reader for a game's stored cover image.
func (s *GameService) GetCover(ctx context.Context, id string) (io.ReadCloser, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}

	game, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if game.CoverKey == "" {
		return nil, ErrNoCover
	}
	return s.storage.Get(ctx, game.CoverKey)
}
