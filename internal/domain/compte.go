package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

type CompteStatut string

const (
	StatutActif  CompteStatut = "actif"
	StatutBloque CompteStatut = "bloque"
	StatutFerme  CompteStatut = "ferme"
)

func (s CompteStatut) IsValid() bool {
	switch s {
	case StatutActif, StatutBloque, StatutFerme:
		return true
	}
	return false
}

type CompteType string

const (
	TypeCheque  CompteType = "cheque"
	TypeEpargne CompteType = "epargne"
)

func (t CompteType) IsValid() bool {
	return t == TypeCheque || t == TypeEpargne
}

// NormalizeCompteType maps the legacy "courant" value, still present in
// ingested data, onto "cheque".
func NormalizeCompteType(raw string) CompteType {
	if raw == "courant" {
		return TypeCheque
	}
	return CompteType(raw)
}

// DeviseFCFA is the single currency accepted by the current business rule.
// The schema stores an arbitrary code for extensibility.
const DeviseFCFA = "FCFA"

type DureeUnite string

const (
	UniteJours    DureeUnite = "jours"
	UniteSemaines DureeUnite = "semaines"
	UniteMois     DureeUnite = "mois"
	UniteAnnees   DureeUnite = "annees"
)

func (u DureeUnite) IsValid() bool {
	switch u {
	case UniteJours, UniteSemaines, UniteMois, UniteAnnees:
		return true
	}
	return false
}

// NumeroComptePattern matches generated account numbers: 'C' + 8 digits.
var NumeroComptePattern = regexp.MustCompile(`^C[0-9]{8}$`)

// Compte is the core aggregate. NumeroCompte is assigned once at creation
// and immutable thereafter; Statut and the block/closure metadata keys are
// only ever written together by the lifecycle engine.
type Compte struct {
	ID            uuid.UUID
	ClientID      uuid.UUID
	NumeroCompte  string
	Titulaire     string
	Type          CompteType
	Devise        string
	DateCreation  time.Time
	Statut        CompteStatut
	DateFermeture *time.Time
	Metadata      Metadata
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}
