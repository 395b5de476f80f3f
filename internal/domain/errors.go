package domain

import "errors"

// ValidationError carries field-level violations up to the HTTP layer,
// where they become the details of a VALIDATION_FAILED response. It
// unwraps to ErrValidation so callers can match it as a sentinel.
type ValidationError struct {
	Fields []FieldViolation
}

func (e *ValidationError) Error() string { return "validation failed" }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(fields []FieldViolation) *ValidationError {
	return &ValidationError{Fields: fields}
}

var (
	ErrNotFound               = errors.New("not found")
	ErrCompteNotFound         = errors.New("compte not found")
	ErrClientNotFound         = errors.New("client not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrMotifRequired          = errors.New("motif blocage is required")
	ErrInvalidStatut          = errors.New("invalid statut")
	ErrInvalidCompteType      = errors.New("invalid compte type")
	ErrInvalidDevise          = errors.New("devise not accepted")
	ErrInvalidDureeUnite      = errors.New("invalid duration unit")
	ErrInvalidDuree           = errors.New("duree must be at least 1")
	ErrDuplicateKey           = errors.New("unique constraint violation")
	ErrNumeroExhausted        = errors.New("could not generate a unique account number")
	ErrValidation             = errors.New("validation failed")
	ErrEmptyUpdate            = errors.New("at least one field is required")
)
