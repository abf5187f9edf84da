package wire

import (
	"yamdb/internal/adaptor"
	"yamdb/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireUser(r chi.Router, userHandler *adaptor.UserHandler, log *zap.Logger) {
	r.Route("/users", func(r chi.Router) {
		// /me is registered before /{username} so it is never read as a username.
		r.With(middleware.RequireAuth).Get("/me", userHandler.Me)
		r.With(middleware.RequireAuth).Patch("/me", userHandler.UpdateMe)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Admin(log))

			r.Get("/", userHandler.List)
			r.Post("/", userHandler.Create)
			r.Get("/{username}", userHandler.Get)
			r.Patch("/{username}", userHandler.Update)
			r.Delete("/{username}", userHandler.Delete)
		})
	})
}
