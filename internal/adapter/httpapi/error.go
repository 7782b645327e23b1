package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eslsoft/wordladder/internal/entity"
	"github.com/eslsoft/wordladder/internal/usecase"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// toStatus maps domain errors onto HTTP status codes.
func toStatus(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrWordNotFound), errors.Is(err, entity.ErrTranslationNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, entity.ErrWordAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, entity.ErrInvalidWord), errors.Is(err, entity.ErrInvalidDisposition),
		errors.Is(err, entity.ErrInvalidRecordEdit), errors.Is(err, entity.ErrUnknownState),
		errors.Is(err, usecase.ErrInvalidQuery), errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, entity.ErrRecordNotPractisable):
		return http.StatusUnprocessableEntity, "failed_precondition"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

var errBadRequest = errors.New("bad request")

func writeError(w http.ResponseWriter, err error) {
	status, code := toStatus(err)
	writeJSON(w, status, errorBody{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
