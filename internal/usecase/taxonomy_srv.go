package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

// TaxonomyService manages categories or genres, depending on how it was built.
type TaxonomyService interface {
	List(ctx context.Context, q request.ListQuery) (*response.PaginatedResponse[response.TaxonomyResponse], error)
	Create(ctx context.Context, actor policy.Actor, req *request.TaxonomyRequest) (*response.TaxonomyResponse, error)
	Delete(ctx context.Context, actor policy.Actor, slug string) error
}

type taxonomyService struct {
	repo      repository.TaxonomyRepository
	kind      policy.Kind
	noun      string
	validator *utils.Validator
	log       *zap.Logger
}

func NewCategoryService(repo repository.TaxonomyRepository, validator *utils.Validator, log *zap.Logger) TaxonomyService {
	return &taxonomyService{
		repo:      repo,
		kind:      policy.KindCategory,
		noun:      "Category",
		validator: validator,
		log:       log.With(zap.String("service", "category")),
	}
}

func NewGenreService(repo repository.TaxonomyRepository, validator *utils.Validator, log *zap.Logger) TaxonomyService {
	return &taxonomyService{
		repo:      repo,
		kind:      policy.KindGenre,
		noun:      "Genre",
		validator: validator,
		log:       log.With(zap.String("service", "genre")),
	}
}

func (s *taxonomyService) List(ctx context.Context, q request.ListQuery) (*response.PaginatedResponse[response.TaxonomyResponse], error) {
	q = q.Normalize()

	tags, err := s.repo.FindAll(ctx, repository.ListParams{Limit: q.Limit, Offset: q.Offset, Search: q.Search})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.noun, err)
	}

	total, err := s.repo.Count(ctx, q.Search)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", s.noun, err)
	}

	return response.NewPaginatedResponse(response.TaxonomiesToResponse(tags), total, q.Limit, q.Offset), nil
}

func (s *taxonomyService) Create(ctx context.Context, actor policy.Actor, req *request.TaxonomyRequest) (*response.TaxonomyResponse, error) {
	if err := policy.Check(actor, policy.ActionCreate, policy.Resource{Kind: s.kind}); err != nil {
		return nil, err
	}

	if errs := s.validator.Struct(req); errs != nil {
		return nil, invalidInput(errs)
	}

	tag := &entity.Taxonomy{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		Name: req.Name,
		Slug: req.Slug,
	}

	if err := s.repo.Create(ctx, tag); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			field := "slug"
			var dup *repository.DuplicateError
			if errors.As(err, &dup) && strings.HasSuffix(dup.Constraint, "_name_key") {
				field = "name"
			}
			return nil, conflict(s.noun+" already exists", map[string]string{
				field: fmt.Sprintf("%s with this %s already exists", s.noun, field),
			})
		}
		return nil, fmt.Errorf("create %s: %w", s.noun, err)
	}

	s.log.Info(s.noun+" created", zap.String("slug", tag.Slug))

	resp := response.TaxonomyToResponse(tag)
	return &resp, nil
}

func (s *taxonomyService) Delete(ctx context.Context, actor policy.Actor, slug string) error {
	if err := policy.Check(actor, policy.ActionDelete, policy.Resource{Kind: s.kind}); err != nil {
		return err
	}

	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(s.noun + " not found")
		}
		return fmt.Errorf("delete %s: %w", s.noun, err)
	}

	return nil
}
