package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/daisamonteiro/banque-backoffice/internal/domain"
)

const compteColumns = `id, client_id, numero_compte, titulaire, type, devise,
	date_creation, statut, date_fermeture, metadata, created_at, updated_at, deleted_at`

type CompteRepository struct {
	db *sql.DB
}

func NewCompteRepository(db *sql.DB) *CompteRepository {
	return &CompteRepository{db: db}
}

// GetByID returns a visible (not soft-deleted) compte.
func (r *CompteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Compte, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+compteColumns+` FROM comptes WHERE id = $1 AND deleted_at IS NULL`, id,
	)
	c, err := scanCompte(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrCompteNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

func (r *CompteRepository) GetByClientID(ctx context.Context, clientID uuid.UUID) ([]domain.Compte, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+compteColumns+` FROM comptes
		WHERE client_id = $1 AND deleted_at IS NULL ORDER BY created_at`, clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByClientID: %w", err)
	}
	defer rows.Close()

	var comptes []domain.Compte
	for rows.Next() {
		c, err := scanCompte(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByClientID: scan: %w", err)
		}
		comptes = append(comptes, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByClientID: rows: %w", err)
	}
	return comptes, nil
}

// NumeroExists checks a candidate account number against every record,
// soft-deleted rows included: closed accounts keep their number forever.
func (r *CompteRepository) NumeroExists(ctx context.Context, numero string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM comptes WHERE numero_compte = $1)`, numero,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("NumeroExists: %w", err)
	}
	return exists, nil
}

func (r *CompteRepository) Create(ctx context.Context, c *domain.Compte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comptes (
			id, client_id, numero_compte, titulaire, type, devise,
			date_creation, statut, date_fermeture, metadata, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.ClientID, c.NumeroCompte, c.Titulaire, c.Type, c.Devise,
		c.DateCreation, c.Statut, c.DateFermeture, c.Metadata, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Create: %w", domain.ErrDuplicateKey)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// Update persists the fields the lifecycle engine writes: titulaire, statut,
// date_fermeture, deleted_at and metadata move together in one statement.
func (r *CompteRepository) Update(ctx context.Context, c *domain.Compte) error {
	return r.update(ctx, r.db, c)
}

// UpdateTx is Update inside a caller-owned transaction, for mutations that
// also touch the owning client.
func (r *CompteRepository) UpdateTx(ctx context.Context, tx *sql.Tx, c *domain.Compte) error {
	return r.update(ctx, tx, c)
}

func (r *CompteRepository) update(ctx context.Context, ex execer, c *domain.Compte) error {
	res, err := ex.ExecContext(ctx,
		`UPDATE comptes SET
			titulaire = $1, statut = $2, date_fermeture = $3,
			metadata = $4, updated_at = $5, deleted_at = $6
		WHERE id = $7`,
		c.Titulaire, c.Statut, c.DateFermeture,
		c.Metadata, c.UpdatedAt, c.DeletedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Update: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("Update: %w", domain.ErrCompteNotFound)
	}
	return nil
}

// ListFilter narrows and orders the default (visible-only) compte listing.
type ListFilter struct {
	Type   string
	Statut string
	Search string
	Sort   string // dateCreation | titulaire
	Order  string // asc | desc
	Limit  int
	Offset int
}

var compteSortColumns = map[string]string{
	"dateCreation": "date_creation",
	"titulaire":    "titulaire",
}

func (r *CompteRepository) List(ctx context.Context, f ListFilter) ([]domain.Compte, int, error) {
	where := []string{"deleted_at IS NULL"}
	var args []any

	if f.Type != "" {
		args = append(args, f.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.Statut != "" {
		args = append(args, f.Statut)
		where = append(where, fmt.Sprintf("statut = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = append(where, fmt.Sprintf("(titulaire ILIKE $%d OR numero_compte ILIKE $%d)", len(args), len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comptes WHERE `+whereClause, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("List: count: %w", err)
	}

	sortCol, ok := compteSortColumns[f.Sort]
	if !ok {
		sortCol = "date_creation"
	}
	order := "DESC"
	if strings.EqualFold(f.Order, "asc") {
		order = "ASC"
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(
		`SELECT %s FROM comptes WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		compteColumns, whereClause, sortCol, order, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var comptes []domain.Compte
	for rows.Next() {
		c, err := scanCompte(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("List: scan: %w", err)
		}
		comptes = append(comptes, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("List: rows: %w", err)
	}
	return comptes, total, nil
}

func scanCompte(s scanner) (*domain.Compte, error) {
	var c domain.Compte
	err := s.Scan(
		&c.ID, &c.ClientID, &c.NumeroCompte, &c.Titulaire, &c.Type, &c.Devise,
		&c.DateCreation, &c.Statut, &c.DateFermeture, &c.Metadata,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
