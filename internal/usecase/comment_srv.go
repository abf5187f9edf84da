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

type CommentService interface {
	List(ctx context.Context, titleID, reviewID uuid.UUID, q request.ListQuery) (*response.PaginatedResponse[response.CommentResponse], error)
	Get(ctx context.Context, titleID, reviewID, commentID uuid.UUID) (*response.CommentResponse, error)
	Create(ctx context.Context, actor policy.Actor, titleID, reviewID uuid.UUID, req *request.CommentRequest) (*response.CommentResponse, error)
	Update(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID uuid.UUID, req *request.CommentRequest) (*response.CommentResponse, error)
	Delete(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID uuid.UUID) error
}

type commentService struct {
	repo      *repository.Repository
	validator *utils.Validator
	log       *zap.Logger
}

func NewCommentService(repo *repository.Repository, validator *utils.Validator, log *zap.Logger) CommentService {
	return &commentService{
		repo:      repo,
		validator: validator,
		log:       log.With(zap.String("service", "comment")),
	}
}

func (s *commentService) List(ctx context.Context, titleID, reviewID uuid.UUID, q request.ListQuery) (*response.PaginatedResponse[response.CommentResponse], error) {
	if err := s.ensureReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	q = q.Normalize()
	comments, err := s.repo.Comment.FindByReviewID(ctx, reviewID, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	total, err := s.repo.Comment.CountByReviewID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}

	results := make([]response.CommentResponse, 0, len(comments))
	for _, comment := range comments {
		results = append(results, response.CommentToResponse(comment))
	}

	return response.NewPaginatedResponse(results, total, q.Limit, q.Offset), nil
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID uuid.UUID) (*response.CommentResponse, error) {
	comment, err := s.find(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	resp := response.CommentToResponse(comment)
	return &resp, nil
}

func (s *commentService) Create(ctx context.Context, actor policy.Actor, titleID, reviewID uuid.UUID, req *request.CommentRequest) (*response.CommentResponse, error) {
	if err := policy.Check(actor, policy.ActionCreate, policy.Resource{Kind: policy.KindComment}); err != nil {
		return nil, err
	}

	if errs := s.validator.Struct(req); errs != nil {
		return nil, invalidInput(errs)
	}

	if err := s.ensureReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		ID: uuid.New(),
		Publication: entity.Publication{
			AuthorID: actor.ID,
			Author:   actor.Username,
			Text:     req.Text,
			PubDate:  time.Now(),
		},
		ReviewID: reviewID,
	}

	if err := s.repo.Comment.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.log.Info("Comment created",
		zap.String("comment_id", comment.ID.String()),
		zap.String("review_id", reviewID.String()),
	)

	resp := response.CommentToResponse(comment)
	return &resp, nil
}

func (s *commentService) Update(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID uuid.UUID, req *request.CommentRequest) (*response.CommentResponse, error) {
	comment, err := s.find(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	if err := policy.Check(actor, policy.ActionUpdate, policy.Resource{Kind: policy.KindComment, OwnerID: comment.AuthorID}); err != nil {
		return nil, err
	}

	if errs := s.validator.Struct(req); errs != nil {
		return nil, invalidInput(errs)
	}

	comment.Text = req.Text
	if err := s.repo.Comment.Update(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Comment not found")
		}
		return nil, fmt.Errorf("update comment: %w", err)
	}

	resp := response.CommentToResponse(comment)
	return &resp, nil
}

func (s *commentService) Delete(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID uuid.UUID) error {
	comment, err := s.find(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}

	if err := policy.Check(actor, policy.ActionDelete, policy.Resource{Kind: policy.KindComment, OwnerID: comment.AuthorID}); err != nil {
		return err
	}

	if err := s.repo.Comment.Delete(ctx, commentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Comment not found")
		}
		return fmt.Errorf("delete comment: %w", err)
	}

	return nil
}

func (s *commentService) find(ctx context.Context, titleID, reviewID, commentID uuid.UUID) (*entity.Comment, error) {
	if err := s.ensureReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment, err := s.repo.Comment.FindByID(ctx, reviewID, commentID)
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	if comment == nil {
		return nil, notFound("Comment not found")
	}
	return comment, nil
}

// ensureReview checks the review exists under titleID.
func (s *commentService) ensureReview(ctx context.Context, titleID, reviewID uuid.UUID) error {
	review, err := s.repo.Review.FindByID(ctx, titleID, reviewID)
	if err != nil {
		return fmt.Errorf("find review: %w", err)
	}
	if review == nil {
		return notFound("Review not found")
	}
	return nil
}
