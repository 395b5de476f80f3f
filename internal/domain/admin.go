package domain

import (
	"time"

	"github.com/google/uuid"
)

type Admin struct {
	ID           uuid.UUID
	Email        string
	Nom          string
	PasswordHash string
	CreatedAt    time.Time
}
