package adaptor

import (
	"net/http"

	"yamdb/internal/dto/request"
	"yamdb/internal/usecase"
	"yamdb/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CommentHandler struct {
	service usecase.CommentService
	log     *zap.Logger
}

func NewCommentHandler(service usecase.CommentService, log *zap.Logger) *CommentHandler {
	return &CommentHandler{
		service: service,
		log:     log.With(zap.String("handler", "comment")),
	}
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := reviewPath(w, r)
	if !ok {
		return
	}

	comments, err := h.service.List(r.Context(), titleID, reviewID, request.ParseListQuery(r.URL.Query()))
	if err != nil {
		writeServiceError(w, h.log, err, "list comments")
		return
	}

	utils.ResponseSuccess(w, "success", comments.WithLinks(r.URL))
}

func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, commentID, ok := commentPath(w, r)
	if !ok {
		return
	}

	comment, err := h.service.Get(r.Context(), titleID, reviewID, commentID)
	if err != nil {
		writeServiceError(w, h.log, err, "get comment")
		return
	}

	utils.ResponseSuccess(w, "success", comment)
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := reviewPath(w, r)
	if !ok {
		return
	}

	var req request.CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.service.Create(r.Context(), utils.GetActorFromContext(r.Context()), titleID, reviewID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create comment")
		return
	}

	utils.ResponseCreated(w, "success", comment)
}

func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, commentID, ok := commentPath(w, r)
	if !ok {
		return
	}

	var req request.CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.service.Update(r.Context(), utils.GetActorFromContext(r.Context()), titleID, reviewID, commentID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update comment")
		return
	}

	utils.ResponseSuccess(w, "success", comment)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, commentID, ok := commentPath(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), utils.GetActorFromContext(r.Context()), titleID, reviewID, commentID); err != nil {
		writeServiceError(w, h.log, err, "delete comment")
		return
	}

	utils.ResponseNoContent(w)
}

func reviewPath(w http.ResponseWriter, r *http.Request) (titleID, reviewID uuid.UUID, ok bool) {
	if titleID, ok = uuidParam(w, r, "titleID", "Title"); !ok {
		return
	}
	reviewID, ok = uuidParam(w, r, "reviewID", "Review")
	return
}

func commentPath(w http.ResponseWriter, r *http.Request) (titleID, reviewID, commentID uuid.UUID, ok bool) {
	if titleID, reviewID, ok = reviewPath(w, r); !ok {
		return
	}
	commentID, ok = uuidParam(w, r, "commentID", "Comment")
	return
}
