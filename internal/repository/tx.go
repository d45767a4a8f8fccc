package repository

import "context"

// TxRepos bundles transaction-scoped repositories handed to a WithinTx
// callback. Every repository in the bundle runs on the same transaction.
type TxRepos struct {
	Trips     TripRepository
	Offers    OfferRepository
	Users     UserRepository
	AdminLogs AdminLogRepository
}

// TxManager runs a function inside a single store transaction. The writes
// made through the provided repositories commit together or not at all.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(TxRepos) error) error
}
