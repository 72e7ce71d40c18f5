package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/sitelore/backend/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps the error taxonomy onto HTTP status codes.
// Internal error details stay out of responses.
func respondWithAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.IsType(err, errors.ErrorTypeValidation):
		respondWithError(w, http.StatusBadRequest, errorMessage(err))
	case errors.IsType(err, errors.ErrorTypeNotFound):
		respondWithError(w, http.StatusNotFound, errorMessage(err))
	case errors.IsType(err, errors.ErrorTypeConflict):
		respondWithError(w, http.StatusConflict, errorMessage(err))
	case errors.IsType(err, errors.ErrorTypeExternal):
		respondWithError(w, http.StatusBadGateway, errorMessage(err))
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

func errorMessage(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
