package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/daisamonteiro/banque-backoffice/internal/domain"
)

type APIResponse struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
	})
}

func RespondSuccessMessage(w http.ResponseWriter, status int, data any, message string) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func RespondPage(w http.ResponseWriter, data any, p Pagination) {
	RespondJSON(w, http.StatusOK, APIResponse{
		Success:    true,
		Data:       data,
		Pagination: &p,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

// RespondDomainError maps domain sentinels onto the HTTP error taxonomy.
// Anything unrecognized is logged in full and surfaced as a generic 500.
func RespondDomainError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		fields := make([]FieldError, len(vErr.Fields))
		for i, f := range vErr.Fields {
			fields[i] = FieldError{Field: f.Field, Message: f.Message}
		}
		RespondValidationError(w, fields)
		return
	}

	var appErr *AppError
	switch {
	case errors.Is(err, domain.ErrCompteNotFound):
		appErr = ErrCompteNotFound
	case errors.Is(err, domain.ErrClientNotFound):
		appErr = ErrClientNotFound
	case errors.Is(err, domain.ErrNotFound):
		appErr = ErrResourceNotFound
	case errors.Is(err, domain.ErrInvalidStateTransition):
		appErr = ErrInvalidStateTransition
	case errors.Is(err, domain.ErrDuplicateKey):
		appErr = ErrDuplicateKey
	case errors.Is(err, domain.ErrMotifRequired):
		RespondValidationError(w, []FieldError{{Field: "motifBlocage", Message: "required"}})
		return
	case errors.Is(err, domain.ErrInvalidCompteType):
		RespondValidationError(w, []FieldError{{Field: "type", Message: "must be cheque or epargne"}})
		return
	case errors.Is(err, domain.ErrInvalidDevise):
		RespondValidationError(w, []FieldError{{Field: "devise", Message: "must be FCFA"}})
		return
	case errors.Is(err, domain.ErrInvalidStatut):
		RespondValidationError(w, []FieldError{{Field: "statut", Message: "must be actif, bloque or ferme"}})
		return
	case errors.Is(err, domain.ErrInvalidDureeUnite):
		RespondValidationError(w, []FieldError{{Field: "unite", Message: "must be jours, semaines, mois or annees"}})
		return
	case errors.Is(err, domain.ErrInvalidDuree):
		RespondValidationError(w, []FieldError{{Field: "duree", Message: "must be at least 1"}})
		return
	case errors.Is(err, domain.ErrEmptyUpdate):
		RespondValidationError(w, []FieldError{{Field: "payload", Message: "at least one field is required"}})
		return
	case errors.Is(err, domain.ErrValidation):
		appErr = ErrValidationFailed
	default:
		slog.Error("unhandled domain error", "error", err)
		appErr = ErrInternalError
	}

	RespondAppError(w, appErr, nil)
}
