package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
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

type TitleService interface {
	List(ctx context.Context, q request.TitleQuery) (*response.PaginatedResponse[response.TitleResponse], error)
	Get(ctx context.Context, id uuid.UUID) (*response.TitleResponse, error)
	Create(ctx context.Context, actor policy.Actor, req *request.CreateTitleRequest) (*response.TitleResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req *request.UpdateTitleRequest) (*response.TitleResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
}

type titleService struct {
	repo      *repository.Repository
	validator *utils.Validator
	log       *zap.Logger
}

func NewTitleService(repo *repository.Repository, validator *utils.Validator, log *zap.Logger) TitleService {
	return &titleService{
		repo:      repo,
		validator: validator,
		log:       log.With(zap.String("service", "title")),
	}
}

var titleResource = policy.Resource{Kind: policy.KindTitle}

func (s *titleService) List(ctx context.Context, q request.TitleQuery) (*response.PaginatedResponse[response.TitleResponse], error) {
	page := q.ListQuery.Normalize()
	filter := repository.TitleFilter{
		Genre:    q.Genre,
		Category: q.Category,
		Name:     q.Name,
		Year:     q.Year,
	}

	titles, err := s.repo.Title.FindAll(ctx, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}

	total, err := s.repo.Title.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count titles: %w", err)
	}

	results := make([]response.TitleResponse, 0, len(titles))
	for _, title := range titles {
		if err := s.loadGenres(ctx, title); err != nil {
			return nil, err
		}
		results = append(results, response.TitleToResponse(title))
	}

	return response.NewPaginatedResponse(results, total, page.Limit, page.Offset), nil
}

func (s *titleService) Get(ctx context.Context, id uuid.UUID) (*response.TitleResponse, error) {
	title, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.TitleToResponse(title)
	return &resp, nil
}

func (s *titleService) Create(ctx context.Context, actor policy.Actor, req *request.CreateTitleRequest) (*response.TitleResponse, error) {
	if err := policy.Check(actor, policy.ActionCreate, titleResource); err != nil {
		return nil, err
	}

	if errs := s.validator.Struct(req); errs != nil {
		s.log.Warn("Create title validation failed", zap.Any("errors", errs))
		return nil, invalidInput(errs)
	}

	categoryID, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}
	genreIDs, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	title := &entity.Title{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		CategoryID:  categoryID,
	}

	if err := s.repo.Title.Create(ctx, title); err != nil {
		return nil, fmt.Errorf("create title: %w", err)
	}

	if err := s.repo.TitleGenre.ReplaceForTitle(ctx, title.ID, genreIDs); err != nil {
		// rollback: don't leave a title without the genres the caller asked for
		if delErr := s.repo.Title.Delete(ctx, title.ID); delErr != nil {
			s.log.Error("Failed to remove title after genre link failure",
				zap.Error(delErr),
				zap.String("title_id", title.ID.String()),
			)
		}
		return nil, fmt.Errorf("set title genres: %w", err)
	}

	s.log.Info("Title created",
		zap.String("title_id", title.ID.String()),
		zap.String("name", title.Name),
	)

	return s.Get(ctx, title.ID)
}

func (s *titleService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req *request.UpdateTitleRequest) (*response.TitleResponse, error) {
	if err := policy.Check(actor, policy.ActionUpdate, titleResource); err != nil {
		return nil, err
	}

	if errs := s.validator.Struct(req); errs != nil {
		s.log.Warn("Update title validation failed", zap.Any("errors", errs))
		return nil, invalidInput(errs)
	}

	title, err := s.repo.Title.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find title: %w", err)
	}
	if title == nil {
		return nil, notFound("Title not found")
	}

	if req.Name != nil {
		title.Name = *req.Name
	}
	if req.Year != nil {
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = req.Description
	}
	if req.Category != nil {
		title.CategoryID, err = s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
	}

	var genreIDs []uuid.UUID
	if req.Genre != nil {
		genreIDs, err = s.resolveGenres(ctx, *req.Genre)
		if err != nil {
			return nil, err
		}
	}

	title.UpdatedAt = time.Now()
	if err := s.repo.Title.Update(ctx, title); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Title not found")
		}
		return nil, fmt.Errorf("update title: %w", err)
	}

	if req.Genre != nil {
		if err := s.repo.TitleGenre.ReplaceForTitle(ctx, title.ID, genreIDs); err != nil {
			return nil, fmt.Errorf("set title genres: %w", err)
		}
	}

	return s.Get(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	if err := policy.Check(actor, policy.ActionDelete, titleResource); err != nil {
		return err
	}

	if err := s.repo.Title.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Title not found")
		}
		return fmt.Errorf("delete title: %w", err)
	}

	s.log.Info("Title deleted", zap.String("title_id", id.String()))
	return nil
}

func (s *titleService) find(ctx context.Context, id uuid.UUID) (*entity.Title, error) {
	title, err := s.repo.Title.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find title: %w", err)
	}
	if title == nil {
		return nil, notFound("Title not found")
	}

	if err := s.loadGenres(ctx, title); err != nil {
		return nil, err
	}
	return title, nil
}

func (s *titleService) loadGenres(ctx context.Context, title *entity.Title) error {
	genres, err := s.repo.TitleGenre.FindGenresByTitleID(ctx, title.ID)
	if err != nil {
		return fmt.Errorf("load genres of %s: %w", title.ID.String(), err)
	}
	title.Genres = genres
	return nil
}

// resolveCategory maps an empty slug to no category.
func (s *titleService) resolveCategory(ctx context.Context, slug string) (*uuid.UUID, error) {
	if slug == "" {
		return nil, nil
	}

	category, err := s.repo.Category.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if category == nil {
		return nil, invalidInput(map[string]string{
			"category": fmt.Sprintf("Category '%s' does not exist", slug),
		})
	}
	return &category.ID, nil
}

func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]uuid.UUID, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	genres, err := s.repo.Genre.FindBySlugs(ctx, slugs)
	if err != nil {
		return nil, fmt.Errorf("find genres: %w", err)
	}

	found := make(map[string]uuid.UUID, len(genres))
	for _, genre := range genres {
		found[genre.Slug] = genre.ID
	}

	var (
		ids     []uuid.UUID
		missing []string
	)
	for _, slug := range slugs {
		id, ok := found[slug]
		if !ok {
			missing = append(missing, slug)
			continue
		}
		ids = append(ids, id)
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, invalidInput(map[string]string{
			"genre": fmt.Sprintf("Unknown genres: %s", strings.Join(missing, ", ")),
		})
	}

	return ids, nil
}
