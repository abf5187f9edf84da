package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"yamdb/internal/usecase"
	"yamdb/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// writeServiceError maps usecase errors onto the response envelope.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	fields := usecase.Fields(err)

	warn := func() {
		log.Warn(operation+" failed", zap.Error(err), zap.String("operation", operation))
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidInput), errors.Is(err, usecase.ErrInvalidCode):
		warn()
		utils.ResponseBadRequest(w, err.Error(), fields)
	case errors.Is(err, usecase.ErrConflict):
		warn()
		utils.ResponseConflict(w, err.Error(), fields)
	case errors.Is(err, usecase.ErrNotFound):
		warn()
		utils.ResponseNotFound(w, err.Error())
	case errors.Is(err, usecase.ErrUnauthenticated):
		warn()
		utils.ResponseUnauthorized(w, "Authentication required")
	case errors.Is(err, usecase.ErrForbidden):
		warn()
		utils.ResponseForbidden(w, "You do not have permission to perform this action")
	case errors.Is(err, usecase.ErrTooManyRequests):
		warn()
		utils.ResponseTooManyRequests(w, "Too many requests, try again later")
	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// decodeJSON reads a JSON body into dst, answering 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			utils.ResponseBadRequest(w, "Request body is required", nil)
			return false
		}
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// uuidParam reads a path id. Malformed ids cannot match any row, so they answer 404.
func uuidParam(w http.ResponseWriter, r *http.Request, name, noun string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		utils.ResponseNotFound(w, noun+" not found")
		return uuid.Nil, false
	}
	return id, true
}
