package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"yamdb/internal/data/entity"
	"yamdb/internal/data/repository"
	"yamdb/internal/policy"
	"yamdb/pkg/token"
	"yamdb/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockTokenParser struct {
	mock.Mock
}

func (m *MockTokenParser) Parse(tokenString string) (token.Identity, error) {
	args := m.Called(tokenString)
	return args.Get(0).(token.Identity), args.Error(1)
}

// userStore serves FindByID from a map; the rest of the interface is unused here.
type userStore struct {
	repository.UserRepository
	users map[uuid.UUID]*entity.User
}

func (s *userStore) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return s.users[id], nil
}

// actorEcho writes back the actor the middleware resolved.
func actorEcho(w http.ResponseWriter, r *http.Request) {
	actor := utils.GetActorFromContext(r.Context())
	json.NewEncoder(w).Encode(map[string]any{
		"anonymous": actor.IsAnonymous(),
		"username":  actor.Username,
		"role":      string(actor.Role),
	})
}

func serve(h http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	bob := &entity.User{Base: entity.Base{ID: uuid.New()}, Username: "bob", Role: policy.RoleModerator}
	store := &userStore{users: map[uuid.UUID]*entity.User{bob.ID: bob}}

	parser := new(MockTokenParser)
	// the token still says "user"; the store's role wins
	parser.On("Parse", "good").Return(token.Identity{UserID: bob.ID, Username: "bob", Role: "user"}, nil)
	parser.On("Parse", "orphan").Return(token.Identity{UserID: uuid.New()}, nil)
	parser.On("Parse", "bad").Return(token.Identity{}, token.ErrInvalidToken)

	h := Authenticate(parser, store, zap.NewNop())(http.HandlerFunc(actorEcho))

	t.Run("no header is anonymous", func(t *testing.T) {
		rec := serve(h, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"anonymous":true`)
	})

	t.Run("valid token uses stored role", func(t *testing.T) {
		rec := serve(h, "Bearer good")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"role":"moderator"`)
	})

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		rec := serve(h, "bearer good")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer bad").Code)
	})

	t.Run("deleted account", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer orphan").Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(h, "Basic Ym9iOnB3").Code)
		assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer").Code)
	})
}

func withActor(actor policy.Actor, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(utils.SetActorContext(r.Context(), actor)))
	})
}

func TestRequireAuthAndAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	admin := Admin(zap.NewNop())(ok)

	user := policy.Actor{ID: uuid.New(), Role: policy.RoleUser}
	boss := policy.Actor{ID: uuid.New(), Role: policy.RoleAdmin}

	assert.Equal(t, http.StatusUnauthorized, serve(RequireAuth(ok), "").Code)
	assert.Equal(t, http.StatusOK, serve(withActor(user, RequireAuth(ok)), "").Code)

	assert.Equal(t, http.StatusUnauthorized, serve(admin, "").Code)
	assert.Equal(t, http.StatusForbidden, serve(withActor(user, admin), "").Code)
	assert.Equal(t, http.StatusOK, serve(withActor(boss, admin), "").Code)
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"), "burst exhausted")
	assert.True(t, limiter.Allow("10.0.0.2"), "buckets are per address")

	now = now.Add(time.Second)
	assert.True(t, limiter.Allow("10.0.0.1"), "refilled after a second")
}

func TestIPRateLimiterKeepsNewBucket(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 1)

	allowed := 0
	for i := 0; i < 5; i++ {
		if limiter.Allow("1.2.3.4") {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.limiters, 1)
}

func TestIPRateLimiterEvictsIdle(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.Allow("10.0.0.1")
	now = now.Add(time.Hour)
	limiter.Allow("10.0.0.2")

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.limiters, "10.0.0.1")
	assert.Contains(t, limiter.limiters, "10.0.0.2")
}

func TestRateLimitMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RateLimit(NewIPRateLimiter(0.001, 1), zap.NewNop())(ok)

	first := serve(h, "")
	assert.Equal(t, http.StatusOK, first.Code)

	second := serve(h, "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
}

func TestRecover(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := Recover(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := serve(h, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body utils.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Status)
	assert.Equal(t, 1, logs.FilterMessage("PANIC recovered").Len())
}

func TestLoggerRecordsStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	serve(h, "")

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.EqualValues(t, len("short and stout"), fields["bytes"])
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
}
