package postgres

import (
	"context"
	"database/sql"

	"tripbroker/internal/repository"
)

// TxManager is the PostgreSQL implementation of repository.TxManager.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a transaction manager over the database handle.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx runs fn with transaction-scoped repositories, committing on nil
// and rolling back on error.
func (m *TxManager) WithinTx(ctx context.Context, fn func(repository.TxRepos) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	repos := repository.TxRepos{
		Trips:     NewTripRepositoryWithTx(tx),
		Offers:    NewOfferRepositoryWithTx(tx),
		Users:     NewUserRepositoryWithTx(tx),
		AdminLogs: NewAdminLogRepositoryWithTx(tx),
	}

	if err := fn(repos); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

var _ repository.TxManager = (*TxManager)(nil)
