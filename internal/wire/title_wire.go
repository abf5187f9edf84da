package wire

import (
	"yamdb/internal/adaptor"
	"yamdb/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireTitle(
	r chi.Router,
	titleHandler *adaptor.TitleHandler,
	reviewHandler *adaptor.ReviewHandler,
	commentHandler *adaptor.CommentHandler,
	log *zap.Logger,
) {
	r.Route("/titles", func(r chi.Router) {
		r.Get("/", titleHandler.List)
		r.Get("/{titleID}", titleHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Admin(log))

			r.Post("/", titleHandler.Create)
			r.Patch("/{titleID}", titleHandler.Update)
			r.Delete("/{titleID}", titleHandler.Delete)
		})

		wireReview(r, reviewHandler, commentHandler)
	})
}
