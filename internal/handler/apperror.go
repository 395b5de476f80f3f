package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusUnprocessableEntity, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrCompteNotFound         = &AppError{http.StatusNotFound, "COMPTE_NOT_FOUND", "Compte not found"}
	ErrClientNotFound         = &AppError{http.StatusNotFound, "CLIENT_NOT_FOUND", "Client not found"}
	ErrInvalidStateTransition = &AppError{http.StatusBadRequest, "INVALID_STATE_TRANSITION", "Invalid account state transition"}
	ErrDuplicateKey           = &AppError{http.StatusUnprocessableEntity, "DUPLICATE_KEY", "A record with this value already exists"}
)
