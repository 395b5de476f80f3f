package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/daisamonteiro/banque-backoffice/internal/domain"
)

type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, nom, password_hash, created_at FROM admins WHERE email = $1`, email,
	)
	var a domain.Admin
	err := row.Scan(&a.ID, &a.Email, &a.Nom, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByEmail: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByEmail: %w", err)
	}
	return &a, nil
}
