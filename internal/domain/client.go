package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

type Sexe string

const (
	SexeMasculin Sexe = "masculin"
	SexeFeminin  Sexe = "feminin"
)

func (s Sexe) IsValid() bool {
	return s == SexeMasculin || s == SexeFeminin
}

var (
	// Senegalese mobile numbers: two-digit operator prefix + 7 digits.
	telephonePattern = regexp.MustCompile(`^(70|75|76|77|78)[0-9]{7}$`)

	cniMasculinPattern = regexp.MustCompile(`^1[0-9]{12}$`)
	cniFemininPattern  = regexp.MustCompile(`^2[0-9]{12}$`)

	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type Client struct {
	ID        uuid.UUID
	Nom       string
	Prenom    string
	Telephone string
	CNI       string
	Email     string
	Sexe      Sexe
	Adresse   string
	Statut    string
	Metadata  Metadata
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FieldViolation is one field-level validation failure, surfaced in the
// details of a VALIDATION_FAILED response.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func ValidTelephone(t string) bool {
	return telephonePattern.MatchString(t)
}

// ValidCNI checks the national ID format against the declared gender:
// prefix 1 + 12 digits for masculin, prefix 2 + 12 digits for feminin.
func ValidCNI(cni string, sexe Sexe) bool {
	switch sexe {
	case SexeMasculin:
		return cniMasculinPattern.MatchString(cni)
	case SexeFeminin:
		return cniFemininPattern.MatchString(cni)
	}
	return false
}

// ValidateClient enforces the client invariants synchronously, before any
// persistence. Uniqueness of telephone/cni/email is left to the database
// constraints.
func ValidateClient(c *Client) []FieldViolation {
	var v []FieldViolation

	if c.Nom == "" {
		v = append(v, FieldViolation{Field: "nom", Message: "required"})
	} else if len(c.Nom) > 255 {
		v = append(v, FieldViolation{Field: "nom", Message: "must not exceed 255 characters"})
	}
	if c.Prenom == "" {
		v = append(v, FieldViolation{Field: "prenom", Message: "required"})
	} else if len(c.Prenom) > 255 {
		v = append(v, FieldViolation{Field: "prenom", Message: "must not exceed 255 characters"})
	}

	if !c.Sexe.IsValid() {
		v = append(v, FieldViolation{Field: "sexe", Message: "must be masculin or feminin"})
	}

	if c.Telephone == "" {
		v = append(v, FieldViolation{Field: "telephone", Message: "required"})
	} else if !ValidTelephone(c.Telephone) {
		v = append(v, FieldViolation{Field: "telephone", Message: "must be a valid Senegalese mobile number"})
	}

	if c.CNI == "" {
		v = append(v, FieldViolation{Field: "cni", Message: "required"})
	} else if c.Sexe.IsValid() && !ValidCNI(c.CNI, c.Sexe) {
		v = append(v, FieldViolation{Field: "cni", Message: "prefix must match declared sexe (1 for masculin, 2 for feminin) followed by 12 digits"})
	}

	if c.Email != "" && !emailPattern.MatchString(c.Email) {
		v = append(v, FieldViolation{Field: "email", Message: "must be a valid email address"})
	}

	return v
}
