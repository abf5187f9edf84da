package wire

import (
	"yamdb/internal/adaptor"
	"yamdb/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

// wireReview mounts reviews and their comments under /titles. Ownership checks for updates
// and deletes happen in the services, which know the author of the record.
func wireReview(r chi.Router, reviewHandler *adaptor.ReviewHandler, commentHandler *adaptor.CommentHandler) {
	r.Route("/{titleID}/reviews", func(r chi.Router) {
		r.Get("/", reviewHandler.List)
		r.With(middleware.RequireAuth).Post("/", reviewHandler.Create)

		r.Route("/{reviewID}", func(r chi.Router) {
			r.Get("/", reviewHandler.Get)
			r.With(middleware.RequireAuth).Patch("/", reviewHandler.Update)
			r.With(middleware.RequireAuth).Delete("/", reviewHandler.Delete)

			r.Route("/comments", func(r chi.Router) {
				r.Get("/", commentHandler.List)
				r.With(middleware.RequireAuth).Post("/", commentHandler.Create)
				r.Get("/{commentID}", commentHandler.Get)
				r.With(middleware.RequireAuth).Patch("/{commentID}", commentHandler.Update)
				r.With(middleware.RequireAuth).Delete("/{commentID}", commentHandler.Delete)
			})
		})
	})
}
