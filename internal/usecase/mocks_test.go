package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"yamdb/internal/data/entity"
	"yamdb/internal/data/repository"
	"yamdb/pkg/token"
	"yamdb/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testValidator() *utils.Validator {
	v := utils.NewValidator(utils.ValidationConfig{ReservedUsernames: []string{"me"}, UsernameMaxLength: 150})
	v.Now = func() time.Time { return testNow }
	return v
}

// MockUserRepository mocks repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, params repository.ListParams) ([]*entity.User, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context, search string) (int64, error) {
	args := m.Called(ctx, search)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockCodeRepository mocks repository.ConfirmationCodeRepository
type MockCodeRepository struct {
	mock.Mock
}

func (m *MockCodeRepository) Replace(ctx context.Context, code *entity.ConfirmationCode) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockCodeRepository) FindActive(ctx context.Context, userID uuid.UUID) (*entity.ConfirmationCode, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ConfirmationCode), args.Error(1)
}

func (m *MockCodeRepository) Consume(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockThrottle mocks repository.SignupThrottle
type MockThrottle struct {
	mock.Mock
}

func (m *MockThrottle) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

// MockMailer mocks mailer.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

// MockTokenIssuer mocks TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(id token.Identity) (string, error) {
	args := m.Called(id)
	return args.String(0), args.Error(1)
}

// MockTaxonomyRepository mocks repository.TaxonomyRepository
type MockTaxonomyRepository struct {
	mock.Mock
}

func (m *MockTaxonomyRepository) Create(ctx context.Context, tag *entity.Taxonomy) error {
	return m.Called(ctx, tag).Error(0)
}

func (m *MockTaxonomyRepository) FindBySlug(ctx context.Context, slug string) (*entity.Taxonomy, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Taxonomy), args.Error(1)
}

func (m *MockTaxonomyRepository) FindBySlugs(ctx context.Context, slugs []string) ([]*entity.Taxonomy, error) {
	args := m.Called(ctx, slugs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Taxonomy), args.Error(1)
}

func (m *MockTaxonomyRepository) FindAll(ctx context.Context, params repository.ListParams) ([]*entity.Taxonomy, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Taxonomy), args.Error(1)
}

func (m *MockTaxonomyRepository) Count(ctx context.Context, search string) (int64, error) {
	args := m.Called(ctx, search)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaxonomyRepository) DeleteBySlug(ctx context.Context, slug string) error {
	return m.Called(ctx, slug).Error(0)
}

// memTitles is an in-memory repository.TitleRepository keyed by id.
type memTitles struct {
	mu     sync.Mutex
	titles map[uuid.UUID]*entity.Title
}

func newMemTitles(titles ...*entity.Title) *memTitles {
	m := &memTitles{titles: make(map[uuid.UUID]*entity.Title)}
	for _, t := range titles {
		m.titles[t.ID] = t
	}
	return m
}

func (m *memTitles) Create(_ context.Context, title *entity.Title) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.titles[title.ID]; ok {
		return &repository.DuplicateError{Constraint: "titles_pkey"}
	}
	cp := *title
	m.titles[title.ID] = &cp
	return nil
}

func (m *memTitles) FindByID(_ context.Context, id uuid.UUID) (*entity.Title, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.titles[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *memTitles) FindAll(_ context.Context, _ repository.TitleFilter, limit, offset int) ([]*entity.Title, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*entity.Title, 0, len(m.titles))
	for _, t := range m.titles {
		cp := *t
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	if offset >= len(all) {
		return []*entity.Title{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memTitles) Count(_ context.Context, _ repository.TitleFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.titles)), nil
}

func (m *memTitles) Update(_ context.Context, title *entity.Title) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.titles[title.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *title
	m.titles[title.ID] = &cp
	return nil
}

func (m *memTitles) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.titles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.titles, id)
	return nil
}

// memReviews is an in-memory repository.ReviewRepository that enforces one
// review per (author, title) under its lock, like the table constraint does.
type memReviews struct {
	mu      sync.Mutex
	reviews []*entity.Review
}

func (m *memReviews) Create(_ context.Context, review *entity.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.AuthorID == review.AuthorID && r.TitleID == review.TitleID {
			return &repository.DuplicateError{Constraint: "reviews_author_title_key"}
		}
	}
	cp := *review
	m.reviews = append(m.reviews, &cp)
	return nil
}

func (m *memReviews) FindByID(_ context.Context, titleID, id uuid.UUID) (*entity.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.ID == id && r.TitleID == titleID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memReviews) FindByTitleID(_ context.Context, titleID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Review
	for _, r := range m.reviews {
		if r.TitleID == titleID {
			cp := *r
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return []*entity.Review{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (m *memReviews) FindByAuthorAndTitle(_ context.Context, authorID, titleID uuid.UUID) (*entity.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.AuthorID == authorID && r.TitleID == titleID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memReviews) CountByTitleID(_ context.Context, titleID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.reviews {
		if r.TitleID == titleID {
			n++
		}
	}
	return n, nil
}

func (m *memReviews) Update(_ context.Context, review *entity.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.reviews {
		if r.ID == review.ID {
			cp := *review
			m.reviews[i] = &cp
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memReviews) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.reviews {
		if r.ID == id {
			m.reviews = append(m.reviews[:i], m.reviews[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memReviews) AverageScore(_ context.Context, titleID uuid.UUID) (*float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum, n int
	for _, r := range m.reviews {
		if r.TitleID == titleID {
			sum += r.Score
			n++
		}
	}
	if n == 0 {
		return nil, nil
	}
	avg := float64(sum) / float64(n)
	return &avg, nil
}

// memComments is an in-memory repository.CommentRepository.
type memComments struct {
	mu       sync.Mutex
	comments []*entity.Comment
}

func (m *memComments) Create(_ context.Context, comment *entity.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *comment
	m.comments = append(m.comments, &cp)
	return nil
}

func (m *memComments) FindByID(_ context.Context, reviewID, id uuid.UUID) (*entity.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.comments {
		if c.ID == id && c.ReviewID == reviewID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memComments) FindByReviewID(_ context.Context, reviewID uuid.UUID, limit, offset int) ([]*entity.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Comment
	for _, c := range m.comments {
		if c.ReviewID == reviewID {
			cp := *c
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return []*entity.Comment{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (m *memComments) CountByReviewID(_ context.Context, reviewID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.comments {
		if c.ReviewID == reviewID {
			n++
		}
	}
	return n, nil
}

func (m *memComments) Update(_ context.Context, comment *entity.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.comments {
		if c.ID == comment.ID {
			cp := *comment
			m.comments[i] = &cp
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memComments) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.comments {
		if c.ID == id {
			m.comments = append(m.comments[:i], m.comments[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}
