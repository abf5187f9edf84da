package wire

import (
	"yamdb/internal/adaptor"
	"yamdb/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireTaxonomy mounts the list/create/delete routes shared by categories and genres.
func wireTaxonomy(r chi.Router, prefix string, h *adaptor.TaxonomyHandler, log *zap.Logger) {
	r.Route(prefix, func(r chi.Router) {
		r.Get("/", h.List)

		r.With(middleware.Admin(log)).Post("/", h.Create)
		r.With(middleware.Admin(log)).Delete("/{slug}", h.Delete)
	})
}
