package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gamelog/apiserver/internal/mq"
	"github.com/gamelog/apiserver/types"
)

// ErrInvalidRating is returned when a review rating is outside 1..5.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

const reviewCreatedChannel = "review.created"

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	List(ctx context.Context, gameID string, offset, limit int) ([]types.Review, int, error)
	Get(ctx context.Context, id string) (types.Review, error)
	Create(ctx context.Context, review types.Review) (types.Review, error)
	Update(ctx context.Context, review types.Review) (types.Review, error)
	Delete(ctx context.Context, id string) error
}

// ReviewService encapsulates review use-cases.
type ReviewService struct {
	repo   ReviewRepository
	events *mq.MQ
}

func NewReviewService(repo ReviewRepository, events *mq.MQ) *ReviewService {
	return &ReviewService{repo: repo, events: events}
}

func (s *ReviewService) List(ctx context.Context, gameID string, offset, limit int) ([]types.Review, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, gameID, offset, limit)
}

func (s *ReviewService) Get(ctx context.Context, id string) (types.Review, error) {
	return s.repo.Get(ctx, id)
}

func (s *ReviewService) Create(ctx context.Context, review types.Review) (types.Review, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return types.Review{}, ErrInvalidRating
	}

	created, err := s.repo.Create(ctx, review)
	if err != nil {
		return types.Review{}, err
	}

	if s.events != nil {
		payload, _ := json.Marshal(map[string]string{
			"review_id":  created.ID,
			"account_id": created.AccountID,
			"game_id":    created.GameID,
			"rating":     strconv.Itoa(created.Rating),
		})
		// Best effort: event delivery never fails the write.
		_, _ = s.events.Publish(ctx, reviewCreatedChannel, payload, nil)
	}

	return created, nil
}

func (s *ReviewService) Update(ctx context.Context, review types.Review) (types.Review, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return types.Review{}, ErrInvalidRating
	}
	return s.repo.Update(ctx, review)
}

func (s *ReviewService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
