package domain

import (
	"time"

	"github.com/google/uuid"
)

type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
	OperationOther  Operation = "other"
)

// OperationLog is one audit row written for every mutating request against
// the comptes resource.
type OperationLog struct {
	ID         uuid.UUID
	AdminID    *uuid.UUID
	Operation  Operation
	Resource   string
	Method     string
	Path       string
	IP         string
	Message    string
	Payload    Metadata
	StatusCode int
	CreatedAt  time.Time
}
