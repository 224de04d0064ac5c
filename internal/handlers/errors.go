package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"robinhoodarmy/internal/models"
	"robinhoodarmy/internal/repository"
	"robinhoodarmy/internal/service"
	"robinhoodarmy/internal/storage"
)

// Error codes carried in JSON error bodies
const (
	CodeAuth       = "auth_error"
	CodeForbidden  = "forbidden"
	CodeValidation = "validation_error"
	CodeNotFound   = "not_found"
	CodeStorage    = "storage_error"
	CodeRateLimit  = "rate_limited"
	CodeInternal   = "internal_error"
)

// ErrorResponse is the body of every non-function error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return CodeAuth
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		return CodeValidation
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusBadGateway:
		return CodeStorage
	case http.StatusTooManyRequests:
		return CodeRateLimit
	}
	return CodeInternal
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondJSON(w, status, ErrorResponse{Code: codeForStatus(status), Message: userMsg})
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// respondWithServiceError maps service and repository errors to a status
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	var verr models.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithError(w, http.StatusBadRequest, verr.Error(), "", nil)
	case errors.Is(err, service.ErrInvalidBody),
		errors.Is(err, service.ErrInvalidReference),
		errors.Is(err, service.ErrReadOnlyTable),
		errors.Is(err, service.ErrInvalidCounter),
		errors.Is(err, repository.ErrInvalidColumn),
		errors.Is(err, repository.ErrNoChanges):
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
	case errors.Is(err, service.ErrInvalidTable), errors.Is(err, repository.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error(), "", nil)
	case errors.Is(err, storage.ErrInvalidKey), errors.Is(err, storage.ErrUnsupportedType):
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error", logMsg, err)
	}
}
