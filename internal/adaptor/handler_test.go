package adaptor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"yamdb/internal/dto/request"
	"yamdb/internal/dto/response"
	"yamdb/internal/policy"
	"yamdb/internal/usecase"
	"yamdb/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockAuthService mocks usecase.AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, req *request.SignupRequest) (*response.SignupResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.SignupResponse), args.Error(1)
}

func (m *MockAuthService) Token(ctx context.Context, req *request.TokenRequest) (*response.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.TokenResponse), args.Error(1)
}

// MockTitleService mocks usecase.TitleService
type MockTitleService struct {
	mock.Mock
}

func (m *MockTitleService) List(ctx context.Context, q request.TitleQuery) (*response.PaginatedResponse[response.TitleResponse], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.PaginatedResponse[response.TitleResponse]), args.Error(1)
}

func (m *MockTitleService) Get(ctx context.Context, id uuid.UUID) (*response.TitleResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Create(ctx context.Context, actor policy.Actor, req *request.CreateTitleRequest) (*response.TitleResponse, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req *request.UpdateTitleRequest) (*response.TitleResponse, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var body utils.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestWriteServiceError(t *testing.T) {
	fields := map[string]string{"username": "taken"}

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid input", &usecase.FieldError{Err: usecase.ErrInvalidInput, Message: "Validation failed", Fields: fields}, http.StatusBadRequest},
		{"invalid code", &usecase.FieldError{Err: usecase.ErrInvalidCode, Message: "Invalid confirmation code", Fields: fields}, http.StatusBadRequest},
		{"conflict", &usecase.FieldError{Err: usecase.ErrConflict, Message: "exists", Fields: fields}, http.StatusConflict},
		{"not found", fmt.Errorf("wrapped: %w", usecase.ErrNotFound), http.StatusNotFound},
		{"unauthenticated", usecase.ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", usecase.ErrForbidden, http.StatusForbidden},
		{"throttled", fmt.Errorf("%w: slow down", usecase.ErrTooManyRequests), http.StatusTooManyRequests},
		{"unknown", errors.New("db exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, zap.NewNop(), tt.err, "test")

			assert.Equal(t, tt.status, rec.Code)
			body := decodeEnvelope(t, rec)
			assert.False(t, body.Status)
			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, body.Message, "exploded", "internal errors stay internal")
			}
		})
	}
}

func TestWriteServiceErrorCarriesFields(t *testing.T) {
	rec := httptest.NewRecorder()
	err := &usecase.FieldError{Err: usecase.ErrConflict, Message: "exists", Fields: map[string]string{"email": "taken"}}

	writeServiceError(rec, zap.NewNop(), err, "signup")

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "taken", body.Errors["email"])
}

func TestAuthHandler_Signup(t *testing.T) {
	svc := new(MockAuthService)
	h := NewAuthHandler(svc, zap.NewNop())

	svc.On("Signup", mock.Anything, &request.SignupRequest{Username: "bob", Email: "bob@example.com"}).
		Return(&response.SignupResponse{Username: "bob", Email: "bob@example.com"}, nil)

	body, _ := json.Marshal(map[string]string{"username": "bob", "email": "bob@example.com"})
	rec := httptest.NewRecorder()
	h.Signup(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"bob"`)
	assert.NotContains(t, rec.Body.String(), "warning")
	svc.AssertExpectations(t)
}

func TestAuthHandler_BadBody(t *testing.T) {
	svc := new(MockAuthService)
	h := NewAuthHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Token(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", bytes.NewBufferString("{not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Token(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", http.NoBody))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.AssertNotCalled(t, "Token", mock.Anything, mock.Anything)
}

func TestAuthHandler_TokenInvalidCode(t *testing.T) {
	svc := new(MockAuthService)
	h := NewAuthHandler(svc, zap.NewNop())

	svc.On("Token", mock.Anything, mock.Anything).Return(nil, &usecase.FieldError{
		Err:     usecase.ErrInvalidCode,
		Message: "Invalid confirmation code",
		Fields:  map[string]string{"confirmation_code": "Invalid or expired confirmation code"},
	})

	rec := httptest.NewRecorder()
	h.Token(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/token",
		bytes.NewBufferString(`{"username":"bob","confirmation_code":"123"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "confirmation_code")
}

func titleRouter(h *TitleHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/titles", h.List)
	r.Get("/titles/{titleID}", h.Get)
	r.Delete("/titles/{titleID}", h.Delete)
	return r
}

func TestTitleHandler_MalformedIDIsNotFound(t *testing.T) {
	svc := new(MockTitleService)
	r := titleRouter(NewTitleHandler(svc, zap.NewNop()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/titles/not-a-uuid", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestTitleHandler_Get(t *testing.T) {
	svc := new(MockTitleService)
	r := titleRouter(NewTitleHandler(svc, zap.NewNop()))

	id := uuid.New()
	svc.On("Get", mock.Anything, id).Return(&response.TitleResponse{ID: id.String(), Name: "Solaris", Genre: []response.TaxonomyResponse{}}, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/titles/"+id.String(), nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rating":null`)
	assert.Contains(t, rec.Body.String(), `"category":null`)
}

func TestTitleHandler_ListParsesFiltersAndLinks(t *testing.T) {
	svc := new(MockTitleService)
	r := titleRouter(NewTitleHandler(svc, zap.NewNop()))

	results := []response.TitleResponse{{Name: "A"}, {Name: "B"}}
	svc.On("List", mock.Anything, mock.MatchedBy(func(q request.TitleQuery) bool {
		return q.Genre == "drama" && q.Year == 1972 && q.Limit == 2 && q.Offset == 0
	})).Return(response.NewPaginatedResponse(results, 5, 2, 0), nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/titles?genre=drama&year=1972&limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data response.PaginatedResponse[response.TitleResponse] `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(5), body.Data.Count)
	require.NotNil(t, body.Data.Next)
	assert.Contains(t, *body.Data.Next, "offset=2")
	assert.Contains(t, *body.Data.Next, "genre=drama")
	assert.Nil(t, body.Data.Previous)
}

func TestTitleHandler_DeletePassesActor(t *testing.T) {
	svc := new(MockTitleService)
	h := NewTitleHandler(svc, zap.NewNop())

	admin := policy.Actor{ID: uuid.New(), Role: policy.RoleAdmin}
	id := uuid.New()
	svc.On("Delete", mock.Anything, admin, id).Return(nil)

	r := chi.NewRouter()
	r.With(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(utils.SetActorContext(req.Context(), admin)))
		})
	}).Delete("/titles/{titleID}", h.Delete)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/titles/"+id.String(), nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	svc.AssertExpectations(t)
}
