package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/notegrove/notegrove/internal/ctxtr"
	"github.com/notegrove/notegrove/internal/entity"
	"github.com/notegrove/notegrove/pkg/logger/slogx"
)

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []entity.FieldError `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if body == nil {
		return
	}

	// The status line is already out, nothing to salvage on failure.
	_ = json.NewEncoder(w).Encode(body)
}

// respondError maps domain errors onto HTTP statuses. Anything
// unrecognized is a 500 with the internals kept out of the body.
func respondError(w http.ResponseWriter, req *http.Request, err error) {
	var verr *entity.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "validation failed",
			Fields: verr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, ctxtr.ErrUserNotFound):
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
	case errors.Is(err, entity.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, entity.ErrForbidden):
		respondJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
	case errors.Is(err, entity.ErrConflict):
		respondJSON(w, http.StatusConflict, errorResponse{Error: "conflict"})
	case errors.Is(err, entity.ErrAlreadyDone):
		respondJSON(w, http.StatusConflict, errorResponse{Error: "already done"})
	default:
		slogx.Error(req.Context(), "request failed", slogx.Err(err))
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
