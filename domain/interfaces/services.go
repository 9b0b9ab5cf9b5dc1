package interfaces

import (
	"context"
	"time"

	"jackpot/domain/entities"
)

// IssueResult is the outcome of minting tickets for a payment
type IssueResult struct {
	Tickets       []*entities.Ticket
	Pool          *entities.Pool
	AlreadyIssued bool // True when the payment had been processed before (no-op)
}

// TicketIssuer turns completed tip payments into pool-scoped lottery tickets
type TicketIssuer interface {
	// IssueForPayment mints floor(amount) uniquely-coded tickets for a
	// completed tip payment. Re-submitting a processed payment id is a no-op.
	IssueForPayment(ctx context.Context, payment *entities.Payment) (*IssueResult, error)
}

// CloseResult is the outcome of closing a pool and opening its successor
type CloseResult struct {
	Closed        *entities.Pool
	Opened        *entities.Pool
	RolloverCents int64
}

// PoolService owns the prize pool lifecycle
type PoolService interface {
	// GetActivePool returns the open pool with its total. If the maintained
	// aggregate cannot be read the total is recomputed from attributed
	// payments rather than failing the caller.
	GetActivePool(ctx context.Context) (*entities.Pool, error)

	// StagePool moves the open pool to ready for operator review
	StagePool(ctx context.Context) (*entities.Pool, error)

	// CloseAndOpenNext closes the current pool and atomically opens the next
	// one carrying the rollover
	CloseAndOpenNext(ctx context.Context, now time.Time) (*CloseResult, error)

	// ListRecentTicketCodes returns the newest ticket codes in a pool,
	// optionally filtered by tipper username
	ListRecentTicketCodes(ctx context.Context, poolID int64, tipperUsername string, limit int) ([]*entities.TicketDetail, error)
}

// DrawResult is the outcome of a draw execution
type DrawResult struct {
	Draw           *entities.Draw
	Winners        []*entities.Winner
	PoolTotalCents int64
}

// DrawEngine executes draws and resolves prize-role winners
type DrawEngine interface {
	// RunDraw selects a winning ticket uniformly at random from the current
	// pool and writes the draw and winner rows atomically
	RunDraw(ctx context.Context, now time.Time) (*DrawResult, error)

	// RunDrawForce executes a draw with an operator-supplied code. The code
	// need not exist as a minted ticket; ticket-derived roles are skipped
	// when it does not.
	RunDrawForce(ctx context.Context, code string, now time.Time) (*DrawResult, error)
}

// PayoutLedger enforces the winner approval state machine and query surface
type PayoutLedger interface {
	// SetWinnerStatus advances a user's winner rows in a draw to the given
	// status, rejecting transitions the state machine forbids
	SetWinnerStatus(ctx context.Context, drawID, userID int64, status entities.WinnerStatus) error

	// ListLatestWinners returns the newest winners enriched with identity
	ListLatestWinners(ctx context.Context, limit int) ([]*entities.WinnerDetail, error)

	// ListWinnersByDraw returns all winner rows for a draw
	ListWinnersByDraw(ctx context.Context, drawID int64) ([]*entities.Winner, error)

	// ListWinnersByStatus returns winner rows in a given approval state
	ListWinnersByStatus(ctx context.Context, status entities.WinnerStatus, limit int) ([]*entities.Winner, error)

	// ListWinnersByUser returns a user's winner rows
	ListWinnersByUser(ctx context.Context, userID int64, limit int) ([]*entities.Winner, error)
}

// CommissionResult is the outcome of resolving commissions for a payment
type CommissionResult struct {
	Payouts []*entities.CommissionPayout
}

// CommissionResolver walks the referral chain of a completed payment and
// writes commission ledger rows
type CommissionResolver interface {
	// ResolveForPayment writes the direct and upline commission rows for a
	// commissionable payment. Unresolvable referrers yield fewer rows, not
	// errors; duplicate processing is a no-op.
	ResolveForPayment(ctx context.Context, payment *entities.Payment) (*CommissionResult, error)
}
