package services

import "errors"

// Stable error kinds surfaced by the ledger and draw services. Callers match
// these with errors.Is; the API layer maps them onto response codes.
var (
	// ErrInvalidAmount means a tip amount was outside the allowed range
	ErrInvalidAmount = errors.New("tip amount outside allowed range")

	// ErrNoActivePool means no pool is open to receive tickets
	ErrNoActivePool = errors.New("no active pool is open")

	// ErrNoOpenPool means a pool lifecycle operation found nothing to act on
	ErrNoOpenPool = errors.New("no open pool exists")

	// ErrCodeSpaceExhausted means unique code generation gave up after
	// bounded retries
	ErrCodeSpaceExhausted = errors.New("ticket code space exhausted")

	// ErrInvalidCode means an operator-supplied code is not five uppercase letters
	ErrInvalidCode = errors.New("code must be exactly five uppercase letters")

	// ErrCodeNotFound means a referenced code is not minted in the pool
	ErrCodeNotFound = errors.New("code not found in pool")

	// ErrDrawAlreadyExecuted means the pool already has a successful draw
	ErrDrawAlreadyExecuted = errors.New("draw already executed for this pool")

	// ErrNoTickets means a draw was attempted against a pool with no tickets
	ErrNoTickets = errors.New("pool has no tickets")

	// ErrInvalidTransition means a winner status change violates the
	// approval state machine
	ErrInvalidTransition = errors.New("invalid winner status transition")

	// ErrWinnerNotFound means no winner rows match the given draw and user
	ErrWinnerNotFound = errors.New("winner not found")

	// ErrReferrerNotFound means a referred_by username did not resolve.
	// The commission resolver logs and swallows this; it is exported for
	// callers that want to detect the condition explicitly.
	ErrReferrerNotFound = errors.New("referrer not found")
)
