package adaptor

import (
	"net/http"

	"yamdb/internal/dto/request"
	"yamdb/internal/usecase"
	"yamdb/pkg/utils"

	"go.uber.org/zap"
)

type TitleHandler struct {
	service usecase.TitleService
	log     *zap.Logger
}

func NewTitleHandler(service usecase.TitleService, log *zap.Logger) *TitleHandler {
	return &TitleHandler{
		service: service,
		log:     log.With(zap.String("handler", "title")),
	}
}

// List handles GET /api/v1/titles?genre=&category=&name=&year=
func (h *TitleHandler) List(w http.ResponseWriter, r *http.Request) {
	titles, err := h.service.List(r.Context(), request.ParseTitleQuery(r.URL.Query()))
	if err != nil {
		writeServiceError(w, h.log, err, "list titles")
		return
	}

	utils.ResponseSuccess(w, "success", titles.WithLinks(r.URL))
}

func (h *TitleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "titleID", "Title")
	if !ok {
		return
	}

	title, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err, "get title")
		return
	}

	utils.ResponseSuccess(w, "success", title)
}

func (h *TitleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTitleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	title, err := h.service.Create(r.Context(), utils.GetActorFromContext(r.Context()), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create title")
		return
	}

	utils.ResponseCreated(w, "success", title)
}

func (h *TitleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "titleID", "Title")
	if !ok {
		return
	}

	var req request.UpdateTitleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	title, err := h.service.Update(r.Context(), utils.GetActorFromContext(r.Context()), id, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update title")
		return
	}

	utils.ResponseSuccess(w, "success", title)
}

func (h *TitleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "titleID", "Title")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), utils.GetActorFromContext(r.Context()), id); err != nil {
		writeServiceError(w, h.log, err, "delete title")
		return
	}

	utils.ResponseNoContent(w)
}
