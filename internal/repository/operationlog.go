package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/daisamonteiro/banque-backoffice/internal/domain"
)

// OperationLogRepository is the append sink for the audit trail. Rows are
// written once and never updated.
type OperationLogRepository struct {
	db *sql.DB
}

func NewOperationLogRepository(db *sql.DB) *OperationLogRepository {
	return &OperationLogRepository{db: db}
}

func (r *OperationLogRepository) Create(ctx context.Context, l *domain.OperationLog) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO operation_logs (
			id, admin_id, operation, resource, method, path, ip,
			message, payload, status_code, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		l.ID, l.AdminID, l.Operation, l.Resource, l.Method, l.Path, l.IP,
		l.Message, l.Payload, l.StatusCode, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}
