package ui

import (
	"encoding/json"
	"errors"
	"net/http"

	"quizforge/domain/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses. Unrecognized errors
// become opaque 500s so internals never leak to the client.
func (a *App) writeError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAuthError(err):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case core.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrUnsupportedType):
		writeJSON(w, http.StatusUnsupportedMediaType, errorResponse{Error: err.Error()})
	case core.IsInvalidRequest(err), core.IsInvalidState(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrInsufficientContent):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case core.IsUpstreamFailure(err):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "question generation failed, please try again"})
	default:
		a.log.Error("unhandled error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return core.NewInvalidRequestError("malformed JSON body")
	}
	return nil
}
