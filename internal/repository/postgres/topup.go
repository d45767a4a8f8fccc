package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tripbroker/internal/domain"
	"tripbroker/internal/repository"
)

// TopUpRepository is a PostgreSQL implementation of repository.TopUpRepository.
type TopUpRepository struct {
	q Querier
}

// NewTopUpRepository creates a new PostgreSQL top-up repository.
func NewTopUpRepository(db *sql.DB) *TopUpRepository {
	return &TopUpRepository{q: db}
}

const topUpColumns = `id, user_id, amount, currency, receipt_ref, status, reviewed_by, reviewed_at, created_at`

// Create persists a new top-up request.
func (r *TopUpRepository) Create(ctx context.Context, req *domain.TopUpRequest) error {
	query := `
		INSERT INTO topup_requests (` + topUpColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		req.ID,
		req.UserID,
		req.Amount,
		req.Currency,
		nullString(req.ReceiptRef),
		req.Status,
		nullString(req.ReviewedBy),
		nullTime(req.ReviewedAt),
		req.CreatedAt,
	)

	return err
}

// GetByID retrieves a top-up request by ID.
func (r *TopUpRepository) GetByID(ctx context.Context, id string) (*domain.TopUpRequest, error) {
	query := `SELECT ` + topUpColumns + ` FROM topup_requests WHERE id = $1`

	req, err := scanTopUp(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

// ListByUser retrieves a user's top-up requests, newest first.
func (r *TopUpRepository) ListByUser(ctx context.Context, userID string) ([]*domain.TopUpRequest, error) {
	query := `
		SELECT ` + topUpColumns + ` FROM topup_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []*domain.TopUpRequest
	for rows.Next() {
		req, err := scanTopUp(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// SetStatus records the manual review outcome. Only a pending request may be
// reviewed.
func (r *TopUpRepository) SetStatus(ctx context.Context, id string, status domain.TopUpStatus, reviewedBy string, reviewedAt time.Time) error {
	query := `
		UPDATE topup_requests
		SET status = $2, reviewed_by = $3, reviewed_at = $4
		WHERE id = $1 AND status = $5
	`

	res, err := r.q.ExecContext(ctx, query, id, status, reviewedBy, reviewedAt, domain.TopUpStatusPending)
	if err != nil {
		return err
	}
	return requireRow(res, repository.ErrStale)
}

func scanTopUp(s rowScanner) (*domain.TopUpRequest, error) {
	var req domain.TopUpRequest
	var receiptRef, reviewedBy sql.NullString
	var reviewedAt sql.NullTime

	err := s.Scan(
		&req.ID,
		&req.UserID,
		&req.Amount,
		&req.Currency,
		&receiptRef,
		&req.Status,
		&reviewedBy,
		&reviewedAt,
		&req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.ReceiptRef = receiptRef.String
	req.ReviewedBy = reviewedBy.String
	if reviewedAt.Valid {
		req.ReviewedAt = reviewedAt.Time
	}
	return &req, nil
}
