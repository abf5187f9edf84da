package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yamdb/internal/data/entity"
	"yamdb/internal/data/repository"
	"yamdb/internal/dto/request"
	"yamdb/internal/dto/response"
	"yamdb/internal/policy"
	"yamdb/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewService interface {
	List(ctx context.Context, titleID uuid.UUID, q request.ListQuery) (*response.PaginatedResponse[response.ReviewResponse], error)
	Get(ctx context.Context, titleID, reviewID uuid.UUID) (*response.ReviewResponse, error)
	// Create fails with ErrConflict when the actor already reviewed the title.
	Create(ctx context.Context, actor policy.Actor, titleID uuid.UUID, req *request.CreateReviewRequest) (*response.ReviewResponse, error)
	Update(ctx context.Context, actor policy.Actor, titleID, reviewID uuid.UUID, req *request.UpdateReviewRequest) (*response.ReviewResponse, error)
	Delete(ctx context.Context, actor policy.Actor, titleID, reviewID uuid.UUID) error

	// Rating is the title's mean score, nil without reviews.
	Rating(ctx context.Context, titleID uuid.UUID) (*float64, error)
}

type reviewService struct {
	repo      *repository.Repository
	validator *utils.Validator
	log       *zap.Logger
	now       func() time.Time
}

func NewReviewService(repo *repository.Repository, validator *utils.Validator, log *zap.Logger) ReviewService {
	return &reviewService{
		repo:      repo,
		validator: validator,
		log:       log.With(zap.String("service", "review")),
		now:       time.Now,
	}
}

var errDuplicateReview = conflict("Review already exists", map[string]string{
	"non_field_errors": "You have already reviewed this title",
})

func (s *reviewService) List(ctx context.Context, titleID uuid.UUID, q request.ListQuery) (*response.PaginatedResponse[response.ReviewResponse], error) {
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, err
	}

	q = q.Normalize()
	reviews, err := s.repo.Review.FindByTitleID(ctx, titleID, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	total, err := s.repo.Review.CountByTitleID(ctx, titleID)
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	results := make([]response.ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		results = append(results, response.ReviewToResponse(review))
	}

	return response.NewPaginatedResponse(results, total, q.Limit, q.Offset), nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID uuid.UUID) (*response.ReviewResponse, error) {
	review, err := s.find(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	resp := response.ReviewToResponse(review)
	return &resp, nil
}

func (s *reviewService) Create(ctx context.Context, actor policy.Actor, titleID uuid.UUID, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
	if err := policy.Check(actor, policy.ActionCreate, policy.Resource{Kind: policy.KindReview}); err != nil {
		return nil, err
	}

	if errs := s.validator.Struct(req); errs != nil {
		s.log.Warn("Create review validation failed", zap.Any("errors", errs))
		return nil, invalidInput(errs)
	}

	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, err
	}

	// friendlier error for the common case; the unique constraint settles races
	existing, err := s.repo.Review.FindByAuthorAndTitle(ctx, actor.ID, titleID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if existing != nil {
		return nil, errDuplicateReview
	}

	review := &entity.Review{
		ID: uuid.New(),
		Publication: entity.Publication{
			AuthorID: actor.ID,
			Author:   actor.Username,
			Text:     req.Text,
			PubDate:  s.now(),
		},
		TitleID: titleID,
		Score:   req.Score,
	}

	if err := s.repo.Review.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errDuplicateReview
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.log.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("author_id", actor.ID.String()),
		zap.String("title_id", titleID.String()),
		zap.Int("score", review.Score),
	)
	s.logRating(ctx, titleID)

	resp := response.ReviewToResponse(review)
	return &resp, nil
}

func (s *reviewService) Update(ctx context.Context, actor policy.Actor, titleID, reviewID uuid.UUID, req *request.UpdateReviewRequest) (*response.ReviewResponse, error) {
	review, err := s.find(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if err := policy.Check(actor, policy.ActionUpdate, policy.Resource{Kind: policy.KindReview, OwnerID: review.AuthorID}); err != nil {
		s.log.Warn("Review update denied",
			zap.String("review_id", reviewID.String()),
			zap.String("actor_id", actor.ID.String()),
		)
		return nil, err
	}

	if errs := s.validator.Struct(req); errs != nil {
		return nil, invalidInput(errs)
	}

	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		review.Score = *req.Score
	}

	if err := s.repo.Review.Update(ctx, review); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Review not found")
		}
		return nil, fmt.Errorf("update review: %w", err)
	}

	if req.Score != nil {
		s.logRating(ctx, titleID)
	}

	resp := response.ReviewToResponse(review)
	return &resp, nil
}

func (s *reviewService) Delete(ctx context.Context, actor policy.Actor, titleID, reviewID uuid.UUID) error {
	review, err := s.find(ctx, titleID, reviewID)
	if err != nil {
		return err
	}

	if err := policy.Check(actor, policy.ActionDelete, policy.Resource{Kind: policy.KindReview, OwnerID: review.AuthorID}); err != nil {
		s.log.Warn("Review delete denied",
			zap.String("review_id", reviewID.String()),
			zap.String("actor_id", actor.ID.String()),
		)
		return err
	}

	if err := s.repo.Review.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Review not found")
		}
		return fmt.Errorf("delete review: %w", err)
	}

	s.logRating(ctx, titleID)
	return nil
}

func (s *reviewService) Rating(ctx context.Context, titleID uuid.UUID) (*float64, error) {
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, err
	}

	rating, err := s.repo.Review.AverageScore(ctx, titleID)
	if err != nil {
		return nil, fmt.Errorf("rating: %w", err)
	}
	return rating, nil
}

func (s *reviewService) find(ctx context.Context, titleID, reviewID uuid.UUID) (*entity.Review, error) {
	review, err := s.repo.Review.FindByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, fmt.Errorf("find review: %w", err)
	}
	if review == nil {
		return nil, notFound("Review not found")
	}
	return review, nil
}

func (s *reviewService) ensureTitle(ctx context.Context, titleID uuid.UUID) error {
	title, err := s.repo.Title.FindByID(ctx, titleID)
	if err != nil {
		return fmt.Errorf("find title: %w", err)
	}
	if title == nil {
		return notFound("Title not found")
	}
	return nil
}

// logRating records the recomputed rating; failures only cost the log line.
func (s *reviewService) logRating(ctx context.Context, titleID uuid.UUID) {
	rating, err := s.repo.Review.AverageScore(ctx, titleID)
	if err != nil {
		s.log.Warn("Failed to recompute rating", zap.Error(err), zap.String("title_id", titleID.String()))
		return
	}
	if rating == nil {
		s.log.Debug("Title has no reviews", zap.String("title_id", titleID.String()))
		return
	}
	s.log.Debug("Title rating", zap.String("title_id", titleID.String()), zap.Float64("rating", *rating))
}
