package wire

import (
	"yamdb/internal/adaptor"
	"yamdb/pkg/middleware"
	"yamdb/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	limiter := middleware.NewIPRateLimiter(config.RateLimit.RequestsPerSecond, config.RateLimit.Burst)

	r.Route("/auth", func(r chi.Router) {
		r.Use(middleware.RateLimit(limiter, log))

		r.Post("/signup", authHandler.Signup)
		r.Post("/token", authHandler.Token)
	})
}
