package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"yamdb/internal/data/entity"
	"yamdb/internal/data/repository"
	"yamdb/internal/dto/request"
	"yamdb/internal/policy"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memTitleGenres keeps title -> genres links and resolves them against a fixed genre set.
type memTitleGenres struct {
	mu     sync.Mutex
	genres map[uuid.UUID]*entity.Genre
	links  map[uuid.UUID][]uuid.UUID

	replaceErr error
}

func (m *memTitleGenres) ReplaceForTitle(_ context.Context, titleID uuid.UUID, genreIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.links[titleID] = append([]uuid.UUID(nil), genreIDs...)
	return nil
}

func (m *memTitleGenres) Create(_ context.Context, link *entity.TitleGenre) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[link.TitleID] = append(m.links[link.TitleID], link.GenreID)
	return nil
}

func (m *memTitleGenres) FindGenresByTitleID(_ context.Context, titleID uuid.UUID) ([]*entity.Genre, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Genre
	for _, id := range m.links[titleID] {
		out = append(out, m.genres[id])
	}
	return out, nil
}

type titleFixture struct {
	titles     *memTitles
	links      *memTitleGenres
	categories *MockTaxonomyRepository
	genres     *MockTaxonomyRepository
	service    TitleService

	drama, comedy *entity.Genre
	film          *entity.Category
}

func newTitleFixture() *titleFixture {
	f := &titleFixture{
		titles:     newMemTitles(),
		categories: new(MockTaxonomyRepository),
		genres:     new(MockTaxonomyRepository),
		drama:      &entity.Genre{BaseSimple: entity.BaseSimple{ID: uuid.New()}, Name: "Drama", Slug: "drama"},
		comedy:     &entity.Genre{BaseSimple: entity.BaseSimple{ID: uuid.New()}, Name: "Comedy", Slug: "comedy"},
		film:       &entity.Category{BaseSimple: entity.BaseSimple{ID: uuid.New()}, Name: "Film", Slug: "film"},
	}
	f.links = &memTitleGenres{
		genres: map[uuid.UUID]*entity.Genre{f.drama.ID: f.drama, f.comedy.ID: f.comedy},
		links:  make(map[uuid.UUID][]uuid.UUID),
	}

	repo := &repository.Repository{
		Title:      f.titles,
		TitleGenre: f.links,
		Category:   f.categories,
		Genre:      f.genres,
	}
	f.service = NewTitleService(repo, testValidator(), zap.NewNop())
	return f
}

func TestTitleService_CreateResolvesSlugs(t *testing.T) {
	f := newTitleFixture()
	ctx := context.Background()

	f.categories.On("FindBySlug", mock.Anything, "film").Return(f.film, nil)
	f.genres.On("FindBySlugs", mock.Anything, []string{"drama", "comedy"}).Return([]*entity.Genre{f.comedy, f.drama}, nil)

	resp, err := f.service.Create(ctx, adminActor, &request.CreateTitleRequest{
		Name:     "Stalker",
		Year:     1979,
		Category: "film",
		Genre:    []string{"drama", "comedy"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Stalker", resp.Name)
	assert.Nil(t, resp.Rating)

	require.Len(t, resp.Genre, 2)
	assert.Equal(t, "drama", resp.Genre[0].Slug)
	assert.Equal(t, "comedy", resp.Genre[1].Slug)

	stored, err := f.titles.FindByID(ctx, uuid.MustParse(resp.ID))
	require.NoError(t, err)
	require.NotNil(t, stored.CategoryID)
	assert.Equal(t, f.film.ID, *stored.CategoryID)
}

func TestTitleService_UnknownSlugs(t *testing.T) {
	f := newTitleFixture()
	ctx := context.Background()

	f.categories.On("FindBySlug", mock.Anything, "book").Return(nil, nil)
	_, err := f.service.Create(ctx, adminActor, &request.CreateTitleRequest{Name: "X", Year: 2000, Category: "book"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, Fields(err), "category")

	f.genres.On("FindBySlugs", mock.Anything, []string{"drama", "horror"}).Return([]*entity.Genre{f.drama}, nil)
	_, err = f.service.Create(ctx, adminActor, &request.CreateTitleRequest{Name: "X", Year: 2000, Genre: []string{"drama", "horror"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, Fields(err)["genre"], "horror")

	count, err := f.titles.Count(ctx, repository.TitleFilter{})
	require.NoError(t, err)
	assert.Zero(t, count, "nothing stored on invalid slugs")
}

func TestTitleService_CreateRemovesTitleWhenGenreLinkFails(t *testing.T) {
	f := newTitleFixture()
	ctx := context.Background()
	f.links.replaceErr = errors.New("connection reset")

	f.genres.On("FindBySlugs", mock.Anything, []string{"drama"}).Return([]*entity.Genre{f.drama}, nil)

	_, err := f.service.Create(ctx, adminActor, &request.CreateTitleRequest{
		Name:  "Mirror",
		Year:  1975,
		Genre: []string{"drama"},
	})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidInput))

	count, err := f.titles.Count(ctx, repository.TitleFilter{})
	require.NoError(t, err)
	assert.Zero(t, count, "failed create leaves no title behind")
}

func TestTitleService_FutureYear(t *testing.T) {
	f := newTitleFixture()

	_, err := f.service.Create(context.Background(), adminActor, &request.CreateTitleRequest{
		Name: "Later",
		Year: testNow.Year() + 1,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, Fields(err), "year")
}

func TestTitleService_WriteRequiresAdmin(t *testing.T) {
	f := newTitleFixture()
	ctx := context.Background()
	moderator := policy.Actor{ID: uuid.New(), Role: policy.RoleModerator}

	_, err := f.service.Create(ctx, moderator, &request.CreateTitleRequest{Name: "X", Year: 2000})
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = f.service.Create(ctx, policy.Anonymous, &request.CreateTitleRequest{Name: "X", Year: 2000})
	assert.True(t, errors.Is(err, ErrUnauthenticated))

	err = f.service.Delete(ctx, userActor, uuid.New())
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestTitleService_UpdateReplacesGenresAndClearsCategory(t *testing.T) {
	f := newTitleFixture()
	ctx := context.Background()

	categoryID := f.film.ID
	title := &entity.Title{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: testNow, UpdatedAt: testNow},
		Name:       "Mirror",
		Year:       1975,
		CategoryID: &categoryID,
	}
	require.NoError(t, f.titles.Create(ctx, title))
	require.NoError(t, f.links.ReplaceForTitle(ctx, title.ID, []uuid.UUID{f.drama.ID}))

	f.genres.On("FindBySlugs", mock.Anything, []string{"comedy"}).Return([]*entity.Genre{f.comedy}, nil)

	none := ""
	genres := []string{"comedy"}
	resp, err := f.service.Update(ctx, adminActor, title.ID, &request.UpdateTitleRequest{Category: &none, Genre: &genres})
	require.NoError(t, err)
	require.Len(t, resp.Genre, 1)
	assert.Equal(t, "comedy", resp.Genre[0].Slug)
	assert.Equal(t, "Mirror", resp.Name)

	stored, err := f.titles.FindByID(ctx, title.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.CategoryID)
	assert.True(t, stored.UpdatedAt.After(testNow))
}

func TestTitleService_GetAndDeleteUnknown(t *testing.T) {
	f := newTitleFixture()
	ctx := context.Background()

	_, err := f.service.Get(ctx, uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))

	err = f.service.Delete(ctx, adminActor, uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestTitleService_ListEmbedsGenres(t *testing.T) {
	f := newTitleFixture()
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		title := &entity.Title{Base: entity.Base{ID: uuid.New()}, Name: name, Year: 2001}
		require.NoError(t, f.titles.Create(ctx, title))
		require.NoError(t, f.links.ReplaceForTitle(ctx, title.ID, []uuid.UUID{f.drama.ID}))
	}

	page, err := f.service.List(ctx, request.TitleQuery{ListQuery: request.ListQuery{Limit: 2, Offset: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "B", page.Results[0].Name)
	assert.Equal(t, "drama", page.Results[0].Genre[0].Slug)
}

func TestTaxonomyService_DuplicateFields(t *testing.T) {
	repo := new(MockTaxonomyRepository)
	svc := NewGenreService(repo, testValidator(), zap.NewNop())
	ctx := context.Background()

	repo.On("Create", mock.Anything, mock.MatchedBy(func(tag *entity.Taxonomy) bool { return tag.Slug == "drama" })).
		Return(&repository.DuplicateError{Constraint: "genres_slug_key"}).Once()
	_, err := svc.Create(ctx, adminActor, &request.TaxonomyRequest{Name: "Drama", Slug: "drama"})
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Contains(t, Fields(err), "slug")

	repo.On("Create", mock.Anything, mock.MatchedBy(func(tag *entity.Taxonomy) bool { return tag.Slug == "drama-2" })).
		Return(&repository.DuplicateError{Constraint: "genres_name_key"}).Once()
	_, err = svc.Create(ctx, adminActor, &request.TaxonomyRequest{Name: "Drama", Slug: "drama-2"})
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Contains(t, Fields(err), "name")
}

func TestTaxonomyService_InvalidSlug(t *testing.T) {
	repo := new(MockTaxonomyRepository)
	svc := NewCategoryService(repo, testValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), adminActor, &request.TaxonomyRequest{Name: "Films", Slug: "Not A Slug"})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, Fields(err), "slug")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTaxonomyService_DeleteUnknown(t *testing.T) {
	repo := new(MockTaxonomyRepository)
	svc := NewCategoryService(repo, testValidator(), zap.NewNop())

	repo.On("DeleteBySlug", mock.Anything, "ghost").Return(repository.ErrNotFound)

	err := svc.Delete(context.Background(), adminActor, "ghost")
	assert.True(t, errors.Is(err, ErrNotFound))

	err = svc.Delete(context.Background(), userActor, "ghost")
	assert.True(t, errors.Is(err, ErrForbidden))
}
