package adaptor

import (
	"net/http"

	"yamdb/internal/dto/request"
	"yamdb/internal/usecase"
	"yamdb/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TaxonomyHandler serves categories and genres; they differ only by service.
type TaxonomyHandler struct {
	service usecase.TaxonomyService
	noun    string
	log     *zap.Logger
}

func NewTaxonomyHandler(service usecase.TaxonomyService, noun string, log *zap.Logger) *TaxonomyHandler {
	return &TaxonomyHandler{
		service: service,
		noun:    noun,
		log:     log.With(zap.String("handler", noun)),
	}
}

func (h *TaxonomyHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context(), request.ParseListQuery(r.URL.Query()))
	if err != nil {
		writeServiceError(w, h.log, err, "list "+h.noun)
		return
	}

	utils.ResponseSuccess(w, "success", items.WithLinks(r.URL))
}

func (h *TaxonomyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.TaxonomyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.service.Create(r.Context(), utils.GetActorFromContext(r.Context()), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create "+h.noun)
		return
	}

	utils.ResponseCreated(w, "success", item)
}

func (h *TaxonomyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), utils.GetActorFromContext(r.Context()), chi.URLParam(r, "slug")); err != nil {
		writeServiceError(w, h.log, err, "delete "+h.noun)
		return
	}

	utils.ResponseNoContent(w)
}
