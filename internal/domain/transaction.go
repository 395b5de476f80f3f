package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionDepot   TransactionType = "depot"
	TransactionRetrait TransactionType = "retrait"
)

// Transaction is an input to the balance accessor only; there is no ledger
// or money-movement logic in this system.
type Transaction struct {
	ID              uuid.UUID
	CompteID        uuid.UUID
	Type            TransactionType
	Montant         decimal.Decimal
	Devise          string
	Description     string
	DateTransaction *time.Time
	Statut          string
	Metadata        Metadata
	CreatedAt       time.Time
}
