package repository

import (
	"context"

	"tripbroker/internal/domain"
)

// AdminLogRepository defines the persistence operations for audit records.
// The log is append-only: there is deliberately no update or delete.
type AdminLogRepository interface {
	// Create appends an audit record.
	Create(ctx context.Context, log *domain.AdminLog) error

	// List retrieves the most recent audit records, newest first.
	List(ctx context.Context, limit int) ([]*domain.AdminLog, error)

	// ListByTarget retrieves audit records for one target, newest first.
	ListByTarget(ctx context.Context, targetUserID string) ([]*domain.AdminLog, error)
}
