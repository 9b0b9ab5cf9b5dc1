package interfaces

import (
	"context"

	"jackpot/domain/entities"
)

// PoolRepository defines the interface for prize pool data access
type PoolRepository interface {
	// GetOpenPool returns the currently open pool, or nil if none exists
	GetOpenPool(ctx context.Context) (*entities.Pool, error)

	// GetCurrentPoolForUpdate returns the latest non-closed pool with a row
	// lock held for the remainder of the transaction, or nil if none exists
	GetCurrentPoolForUpdate(ctx context.Context) (*entities.Pool, error)

	// GetByID retrieves a pool by its ID
	GetByID(ctx context.Context, id int64) (*entities.Pool, error)

	// Create inserts a new pool and populates its ID and CreatedAt
	Create(ctx context.Context, pool *entities.Pool) error

	// Update persists status, totals and period fields of an existing pool
	Update(ctx context.Context, pool *entities.Pool) error

	// IncrementTotal atomically adds amountCents to an open pool's aggregate
	IncrementTotal(ctx context.Context, poolID, amountCents int64) error

	// SumPaymentTotals recomputes the pool's tip value from the payments
	// attributed to its tickets. Fallback for when the aggregate is unusable.
	SumPaymentTotals(ctx context.Context, poolID int64) (int64, error)
}

// TicketRepository defines the interface for lottery ticket data access
type TicketRepository interface {
	// CreateBatch inserts all tickets in one statement and populates IDs
	CreateBatch(ctx context.Context, tickets []*entities.Ticket) error

	// GetByPaymentID returns all tickets minted for a source payment
	GetByPaymentID(ctx context.Context, paymentID string) ([]*entities.Ticket, error)

	// CountForPool returns the number of tickets in a pool
	CountForPool(ctx context.Context, poolID int64) (int64, error)

	// GetByOffset returns the ticket at a stable offset within the pool,
	// used for uniform random selection
	GetByOffset(ctx context.Context, poolID, offset int64) (*entities.Ticket, error)

	// CountForPoolExcludingCode and GetByOffsetExcludingCode mirror the two
	// methods above over the subset of tickets not carrying the given code,
	// used for the independent second-place selection
	CountForPoolExcludingCode(ctx context.Context, poolID int64, code string) (int64, error)
	GetByOffsetExcludingCode(ctx context.Context, poolID int64, code string, offset int64) (*entities.Ticket, error)

	// GetByCode returns the ticket with the given code in the pool, or nil
	GetByCode(ctx context.Context, poolID int64, code string) (*entities.Ticket, error)

	// FilterExistingCodes returns the subset of codes already minted in the pool
	FilterExistingCodes(ctx context.Context, poolID int64, codes []string) ([]string, error)

	// ListRecent returns the newest tickets in a pool, optionally filtered
	// by the owning tipper's username
	ListRecent(ctx context.Context, poolID int64, tipperUsername string, limit int) ([]*entities.TicketDetail, error)
}

// DrawRepository defines the interface for draw data access
type DrawRepository interface {
	// Create inserts a draw and populates its ID. The unique constraint on
	// pool_id makes a second insert for the same pool fail.
	Create(ctx context.Context, draw *entities.Draw) error

	// GetByPoolID returns the draw executed against a pool, or nil
	GetByPoolID(ctx context.Context, poolID int64) (*entities.Draw, error)

	// GetByID retrieves a draw by its ID
	GetByID(ctx context.Context, id int64) (*entities.Draw, error)
}

// WinnerRepository defines the interface for winner row data access
type WinnerRepository interface {
	// CreateBatch inserts all winner rows in one statement and populates IDs
	CreateBatch(ctx context.Context, winners []*entities.Winner) error

	// GetByDraw returns all winner rows for a draw
	GetByDraw(ctx context.Context, drawID int64) ([]*entities.Winner, error)

	// GetByDrawAndUser returns the winner rows a user holds in a draw
	GetByDrawAndUser(ctx context.Context, drawID, userID int64) ([]*entities.Winner, error)

	// GetByStatus returns winner rows in a given approval state
	GetByStatus(ctx context.Context, status entities.WinnerStatus, limit int) ([]*entities.Winner, error)

	// GetByUser returns a user's winner rows, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.Winner, error)

	// ListLatest returns the newest winner rows enriched with user identity
	ListLatest(ctx context.Context, limit int) ([]*entities.WinnerDetail, error)

	// UpdateStatus advances all of a user's rows in a draw from one status
	// to another and returns how many rows moved. A guard on the current
	// status makes concurrent transitions lose cleanly.
	UpdateStatus(ctx context.Context, drawID, userID int64, from, to entities.WinnerStatus) (int64, error)
}

// CommissionPayoutRepository defines the interface for commission ledger access
type CommissionPayoutRepository interface {
	// CreateIdempotent inserts a commission row unless one already exists for
	// (source_payment_id, commission_type). Returns false when skipped.
	CreateIdempotent(ctx context.Context, payout *entities.CommissionPayout) (bool, error)

	// GetBySourcePayment returns all commission rows for a payment
	GetBySourcePayment(ctx context.Context, paymentID string) ([]*entities.CommissionPayout, error)

	// GetByUser returns a user's commission rows, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.CommissionPayout, error)
}

// UserRepository defines read access to the externally-owned users table
type UserRepository interface {
	// GetByID retrieves a user by ID, or nil if not found
	GetByID(ctx context.Context, id int64) (*entities.User, error)

	// GetByUsername retrieves a user by username, or nil if not found
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
}

// PaymentRepository defines read access to the externally-owned payments table
type PaymentRepository interface {
	// GetByID retrieves a payment by its provider transaction id, or nil
	GetByID(ctx context.Context, id string) (*entities.Payment, error)

	// GetByIDForUpdate retrieves a payment with a row lock held for the
	// remainder of the transaction. Serializes concurrent deliveries of the
	// same payment event so the mint-once guard holds.
	GetByIDForUpdate(ctx context.Context, id string) (*entities.Payment, error)
}
