package entities

import "time"

// CommissionType distinguishes the referral level a commission was earned at
type CommissionType string

const (
	// CommissionTypeDirect is paid to the payer's direct referrer
	CommissionTypeDirect CommissionType = "direct"
	// CommissionTypeUpline is the override paid to the referrer's own referrer
	CommissionTypeUpline CommissionType = "upline"
)

// CommissionPayoutStatus is the disbursement state of a commission row.
// Advancement is owned by an external payout process.
type CommissionPayoutStatus string

const (
	CommissionPayoutPending   CommissionPayoutStatus = "pending"
	CommissionPayoutCompleted CommissionPayoutStatus = "completed"
	CommissionPayoutFailed    CommissionPayoutStatus = "failed"
)

// CommissionPayout records commission owed to a user for a completed payment.
// (source_payment_id, commission_type) is the idempotency key; re-processing
// the same payment never creates a second row.
type CommissionPayout struct {
	ID              int64                  `db:"id"`
	UserID          int64                  `db:"user_id"`
	SourcePaymentID string                 `db:"source_payment_id"`
	CommissionType  CommissionType         `db:"commission_type"`
	AmountCents     int64                  `db:"amount_cents"`
	PayoutStatus    CommissionPayoutStatus `db:"payout_status"`
	CreatedAt       time.Time              `db:"created_at"`
}
