package testutil

import (
	"context"
	"testing"
	"time"

	"jackpot/database"
	"jackpot/domain/entities"

	"github.com/stretchr/testify/require"
)

// InsertUser seeds a user row and returns its id. The users table is owned by
// the registration service in production, so tests write it directly.
func InsertUser(t *testing.T, db *database.DB, username string, referredBy *string, tier entities.MembershipTier) int64 {
	var id int64
	err := db.QueryRow(context.Background(),
		`INSERT INTO users (username, referred_by, membership_tier) VALUES ($1, $2, $3) RETURNING id`,
		username, referredBy, tier,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// InsertPayment seeds a payment row as the provider webhook path would
func InsertPayment(t *testing.T, db *database.DB, payment *entities.Payment) {
	_, err := db.Exec(context.Background(),
		`INSERT INTO payments (id, user_id, recipient_id, amount_cents, payment_type, payment_status, referred_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		payment.ID, payment.UserID, payment.RecipientID, payment.AmountCents,
		payment.PaymentType, payment.PaymentStatus, payment.ReferredBy,
	)
	require.NoError(t, err)
}

// CreateTestPayment builds a completed tip payment
func CreateTestPayment(id string, userID int64, amountCents int64) *entities.Payment {
	return &entities.Payment{
		ID:            id,
		UserID:        userID,
		AmountCents:   amountCents,
		PaymentType:   entities.PaymentTypeTip,
		PaymentStatus: entities.PaymentStatusCompleted,
		CreatedAt:     time.Now(),
	}
}

// CreateTestPool builds an open pool starting now
func CreateTestPool() *entities.Pool {
	return &entities.Pool{
		Status:      entities.PoolStatusOpen,
		PeriodStart: time.Now().UTC(),
	}
}
