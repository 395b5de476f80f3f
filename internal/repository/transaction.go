package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/daisamonteiro/banque-backoffice/internal/domain"
)

const transactionColumns = `id, compte_id, type, montant, devise, description,
	date_transaction, statut, metadata, created_at`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// SumByType aggregates montant over one compte's transactions of one type.
// The balance accessor derives solde from two of these sums on every read.
func (r *TransactionRepository) SumByType(ctx context.Context, compteID uuid.UUID, t domain.TransactionType) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(montant), 0) FROM transactions
		WHERE compte_id = $1 AND type = $2`,
		compteID, t,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("SumByType: %w", err)
	}
	return sum, nil
}

func (r *TransactionRepository) GetByCompteID(ctx context.Context, compteID uuid.UUID, limit, offset int) ([]domain.Transaction, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE compte_id = $1`, compteID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("GetByCompteID: count: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE compte_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		compteID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("GetByCompteID: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("GetByCompteID: scan: %w", err)
		}
		txs = append(txs, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("GetByCompteID: rows: %w", err)
	}
	return txs, total, nil
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var t domain.Transaction
	err := s.Scan(
		&t.ID, &t.CompteID, &t.Type, &t.Montant, &t.Devise, &t.Description,
		&t.DateTransaction, &t.Statut, &t.Metadata, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
