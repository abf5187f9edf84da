package wire

import (
	"net/http"

	"yamdb/internal/adaptor"
	"yamdb/internal/data/repository"
	"yamdb/internal/usecase"
	"yamdb/pkg/mailer"
	"yamdb/pkg/middleware"
	"yamdb/pkg/token"
	"yamdb/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type App struct {
	Router *chi.Mux
}

// Wiring builds services, handlers and routes on top of the given repositories.
func Wiring(
	repo *repository.Repository,
	tokens *token.Service,
	mail mailer.Mailer,
	validator *utils.Validator,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, mail, tokens, validator, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, tokens, config, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	tokens middleware.TokenParser,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.CORS.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		wireAuth(r, handler.Auth, config, logger)

		// Everything below resolves the optional bearer token into an actor.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(tokens, repo.User, logger))

			wireUser(r, handler.User, logger)
			wireTaxonomy(r, "/categories", handler.Category, logger)
			wireTaxonomy(r, "/genres", handler.Genre, logger)
			wireTitle(r, handler.Title, handler.Review, handler.Comment, logger)
		})
	})

	return r
}
