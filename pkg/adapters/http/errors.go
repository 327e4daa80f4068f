package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/schema"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound),
		errors.Is(err, domain.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRejected),
		errors.Is(err, domain.ErrInvalidNodeID),
		errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, domain.ErrUnknownOperation),
		errors.Is(err, domain.ErrNothingToUndo),
		errors.Is(err, domain.ErrNothingToRedo),
		errors.Is(err, domain.ErrMacroOpen),
		errors.Is(err, strata.ErrAmbiguous):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func writeValidation(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: "invalid document"}
	for _, v := range schema.ValidationErrors(err) {
		resp.Details = append(resp.Details, v.Error())
	}
	if len(resp.Details) == 0 {
		resp.Details = []string{err.Error()}
	}
	writeJSON(w, http.StatusBadRequest, resp)
}
