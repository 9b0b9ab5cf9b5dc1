package interfaces

import "context"

// UnitOfWork scopes a set of repository operations to one database
// transaction. Repository accessors panic if called before Begin.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PoolRepository() PoolRepository
	TicketRepository() TicketRepository
	DrawRepository() DrawRepository
	WinnerRepository() WinnerRepository
	CommissionPayoutRepository() CommissionPayoutRepository
	UserRepository() UserRepository
	PaymentRepository() PaymentRepository
}

// UnitOfWorkFactory creates fresh units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
