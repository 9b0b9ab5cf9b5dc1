package repository

import (
	"context"
	"fmt"

	"jackpot/database"
	"jackpot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// PaymentRepository implements the PaymentRepository interface. The payments
// table is owned by the payment intake path; this repository only reads it.
type PaymentRepository struct {
	q queryable
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *database.DB) *PaymentRepository {
	return &PaymentRepository{q: db.Pool}
}

// newPaymentRepositoryWithTx creates a new payment repository with a transaction
func newPaymentRepositoryWithTx(tx queryable) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

// GetByID retrieves a payment by its provider transaction id
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*entities.Payment, error) {
	query := `
		SELECT id, user_id, recipient_id, amount_cents, payment_type, payment_status, referred_by, created_at
		FROM payments
		WHERE id = $1
	`

	payment, err := scanPayment(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get payment %s: %w", id, err)
	}
	return payment, nil
}

// GetByIDForUpdate retrieves a payment with a row lock. Concurrent
// transactions on the same payment id queue here, so the second delivery of
// a webhook event observes the first one's committed tickets.
func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, id string) (*entities.Payment, error) {
	query := `
		SELECT id, user_id, recipient_id, amount_cents, payment_type, payment_status, referred_by, created_at
		FROM payments
		WHERE id = $1
		FOR UPDATE
	`

	payment, err := scanPayment(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to lock payment %s: %w", id, err)
	}
	return payment, nil
}

func scanPayment(row pgx.Row) (*entities.Payment, error) {
	var payment entities.Payment
	err := row.Scan(
		&payment.ID,
		&payment.UserID,
		&payment.RecipientID,
		&payment.AmountCents,
		&payment.PaymentType,
		&payment.PaymentStatus,
		&payment.ReferredBy,
		&payment.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
