package repository

import (
	"context"
	"fmt"

	"jackpot/database"
	"jackpot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// CommissionPayoutRepository implements the CommissionPayoutRepository interface
type CommissionPayoutRepository struct {
	q queryable
}

// NewCommissionPayoutRepository creates a new commission payout repository
func NewCommissionPayoutRepository(db *database.DB) *CommissionPayoutRepository {
	return &CommissionPayoutRepository{q: db.Pool}
}

// newCommissionPayoutRepositoryWithTx creates a new commission payout repository with a transaction
func newCommissionPayoutRepositoryWithTx(tx queryable) *CommissionPayoutRepository {
	return &CommissionPayoutRepository{q: tx}
}

// CreateIdempotent inserts a commission row unless one of the same type
// already exists for the source payment. Returns true when a row was written.
func (r *CommissionPayoutRepository) CreateIdempotent(ctx context.Context, payout *entities.CommissionPayout) (bool, error) {
	query := `
		INSERT INTO commission_payouts (user_id, source_payment_id, commission_type, amount_cents, payout_status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source_payment_id, commission_type) DO NOTHING
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		payout.UserID,
		payout.SourcePaymentID,
		payout.CommissionType,
		payout.AmountCents,
		payout.PayoutStatus,
	).Scan(&payout.ID, &payout.CreatedAt)

	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create %s commission for payment %s: %w",
			payout.CommissionType, payout.SourcePaymentID, err)
	}
	return true, nil
}

// GetBySourcePayment retrieves all commission rows written for a payment
func (r *CommissionPayoutRepository) GetBySourcePayment(ctx context.Context, paymentID string) ([]*entities.CommissionPayout, error) {
	query := `
		SELECT id, user_id, source_payment_id, commission_type, amount_cents, payout_status, created_at
		FROM commission_payouts
		WHERE source_payment_id = $1
		ORDER BY commission_type
	`

	rows, err := r.q.Query(ctx, query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get commissions for payment %s: %w", paymentID, err)
	}
	defer rows.Close()

	return scanCommissionPayouts(rows)
}

// GetByUser retrieves a user's commission rows, newest first
func (r *CommissionPayoutRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.CommissionPayout, error) {
	query := `
		SELECT id, user_id, source_payment_id, commission_type, amount_cents, payout_status, created_at
		FROM commission_payouts
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get commissions for user %d: %w", userID, err)
	}
	defer rows.Close()

	return scanCommissionPayouts(rows)
}

func scanCommissionPayouts(rows pgx.Rows) ([]*entities.CommissionPayout, error) {
	var payouts []*entities.CommissionPayout
	for rows.Next() {
		var p entities.CommissionPayout
		err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.SourcePaymentID,
			&p.CommissionType,
			&p.AmountCents,
			&p.PayoutStatus,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commission payout: %w", err)
		}
		payouts = append(payouts, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate commission payouts: %w", err)
	}
	return payouts, nil
}
