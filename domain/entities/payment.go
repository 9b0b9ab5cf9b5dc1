package entities

import "time"

// PaymentType categorizes what a payment bought
type PaymentType string

const (
	PaymentTypeTip         PaymentType = "tip"
	PaymentTypeMembership  PaymentType = "membership"
	PaymentTypeEventTicket PaymentType = "event_ticket"
)

// PaymentStatus is the provider-reported state of a payment
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment is a completed payment as reported by the provider webhook.
// The payments table is owned by the payment intake path; this core reads it.
type Payment struct {
	ID            string        `db:"id"` // Provider transaction id
	UserID        int64         `db:"user_id"`
	RecipientID   *int64        `db:"recipient_id"` // The performer a tip was sent to, NULL otherwise
	AmountCents   int64         `db:"amount_cents"`
	PaymentType   PaymentType   `db:"payment_type"`
	PaymentStatus PaymentStatus `db:"payment_status"`
	ReferredBy    *string       `db:"referred_by"` // Referrer username captured at payment time
	CreatedAt     time.Time     `db:"created_at"`
}

// IsCompleted returns true if the provider reported the payment captured
func (p *Payment) IsCompleted() bool {
	return p.PaymentStatus == PaymentStatusCompleted
}

// IsTip returns true for tip payments, the only type that mints tickets
func (p *Payment) IsTip() bool {
	return p.PaymentType == PaymentTypeTip
}

// IsCommissionable returns true for payment types that earn referral commission
func (p *Payment) IsCommissionable() bool {
	switch p.PaymentType {
	case PaymentTypeTip, PaymentTypeMembership, PaymentTypeEventTicket:
		return true
	}
	return false
}

// WholeDollars returns the payment amount truncated to whole dollars,
// which is the number of tickets a qualifying tip mints
func (p *Payment) WholeDollars() int {
	return int(p.AmountCents / 100)
}
