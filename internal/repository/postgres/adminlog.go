package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"tripbroker/internal/domain"
)

// AdminLogRepository is a PostgreSQL implementation of
// repository.AdminLogRepository. Append-only by construction.
type AdminLogRepository struct {
	q Querier
}

// NewAdminLogRepository creates a new PostgreSQL admin log repository.
func NewAdminLogRepository(db *sql.DB) *AdminLogRepository {
	return &AdminLogRepository{q: db}
}

// NewAdminLogRepositoryWithTx creates an admin log repository using a transaction.
func NewAdminLogRepositoryWithTx(tx *sql.Tx) *AdminLogRepository {
	return &AdminLogRepository{q: tx}
}

const adminLogColumns = `id, action, freeze_type, reason, target_user_id, admin_id, target_snapshot, created_at`

// Create appends an audit record.
func (r *AdminLogRepository) Create(ctx context.Context, log *domain.AdminLog) error {
	snapshot, err := json.Marshal(log.Target)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO admin_logs (` + adminLogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.q.ExecContext(ctx, query,
		log.ID,
		log.Action,
		log.FreezeType,
		log.Reason,
		log.TargetUserID,
		log.AdminID,
		snapshot,
		log.CreatedAt,
	)

	return err
}

// List retrieves the most recent audit records, newest first.
func (r *AdminLogRepository) List(ctx context.Context, limit int) ([]*domain.AdminLog, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ` + adminLogColumns + ` FROM admin_logs
		ORDER BY created_at DESC
		LIMIT $1
	`
	return r.list(ctx, query, limit)
}

// ListByTarget retrieves audit records for one target, newest first.
func (r *AdminLogRepository) ListByTarget(ctx context.Context, targetUserID string) ([]*domain.AdminLog, error) {
	query := `
		SELECT ` + adminLogColumns + ` FROM admin_logs
		WHERE target_user_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, targetUserID)
}

func (r *AdminLogRepository) list(ctx context.Context, query string, args ...any) ([]*domain.AdminLog, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.AdminLog
	for rows.Next() {
		var log domain.AdminLog
		var reason sql.NullString
		var snapshot []byte

		if err := rows.Scan(
			&log.ID,
			&log.Action,
			&log.FreezeType,
			&reason,
			&log.TargetUserID,
			&log.AdminID,
			&snapshot,
			&log.CreatedAt,
		); err != nil {
			return nil, err
		}

		log.Reason = reason.String
		if len(snapshot) > 0 {
			if err := json.Unmarshal(snapshot, &log.Target); err != nil {
				return nil, err
			}
		}
		logs = append(logs, &log)
	}
	return logs, rows.Err()
}
