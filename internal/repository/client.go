package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/daisamonteiro/banque-backoffice/internal/domain"
)

const clientColumns = `id, nom, prenom, telephone, cni, email, sexe, adresse,
	statut, metadata, created_at, updated_at`

type ClientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id,
	)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrClientNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (
			id, nom, prenom, telephone, cni, email, sexe, adresse,
			statut, metadata, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.Nom, c.Prenom, c.Telephone, c.CNI, c.Email, c.Sexe, c.Adresse,
		c.Statut, c.Metadata, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Create: %w", domain.ErrDuplicateKey)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	return r.update(ctx, r.db, c)
}

func (r *ClientRepository) UpdateTx(ctx context.Context, tx *sql.Tx, c *domain.Client) error {
	return r.update(ctx, tx, c)
}

func (r *ClientRepository) update(ctx context.Context, ex execer, c *domain.Client) error {
	res, err := ex.ExecContext(ctx,
		`UPDATE clients SET
			nom = $1, prenom = $2, telephone = $3, cni = $4, email = $5,
			sexe = $6, adresse = $7, statut = $8, metadata = $9, updated_at = $10
		WHERE id = $11`,
		c.Nom, c.Prenom, c.Telephone, c.CNI, c.Email,
		c.Sexe, c.Adresse, c.Statut, c.Metadata, c.UpdatedAt, c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Update: %w", domain.ErrDuplicateKey)
		}
		return fmt.Errorf("Update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Update: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("Update: %w", domain.ErrClientNotFound)
	}
	return nil
}

func (r *ClientRepository) List(ctx context.Context, search string, limit, offset int) ([]domain.Client, int, error) {
	where := "TRUE"
	var args []any
	if search != "" {
		args = append(args, "%"+search+"%")
		where = `(nom ILIKE $1 OR prenom ILIKE $1 OR telephone ILIKE $1 OR cni ILIKE $1)`
	}

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clients WHERE `+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("List: count: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT %s FROM clients WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		clientColumns, where, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("List: scan: %w", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("List: rows: %w", err)
	}
	return clients, total, nil
}

func scanClient(s scanner) (*domain.Client, error) {
	var c domain.Client
	err := s.Scan(
		&c.ID, &c.Nom, &c.Prenom, &c.Telephone, &c.CNI, &c.Email, &c.Sexe,
		&c.Adresse, &c.Statut, &c.Metadata, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
