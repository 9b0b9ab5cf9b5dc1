package services

import (
	"context"
	"fmt"

	"jackpot/domain/entities"
	"jackpot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// commissionResolver walks the two-level referral chain behind a completed
// payment and writes the commission ledger rows
type commissionResolver struct {
	commissionRepo interfaces.CommissionPayoutRepository
	userRepo       interfaces.UserRepository
	rates          entities.CommissionRates
}

// NewCommissionResolver creates a new commission resolver
func NewCommissionResolver(
	commissionRepo interfaces.CommissionPayoutRepository,
	userRepo interfaces.UserRepository,
	rates entities.CommissionRates,
) interfaces.CommissionResolver {
	return &commissionResolver{
		commissionRepo: commissionRepo,
		userRepo:       userRepo,
		rates:          rates,
	}
}

// ResolveForPayment writes the direct and upline commission rows for a
// commissionable payment. The referrer identity comes solely from the
// referred_by username the payment captured; a payment without one earns no
// commission regardless of the payer's current user record. The direct rate
// depends on the referrer's membership tier at the moment the row is
// written. A referrer that cannot be resolved ends the chain with a warning
// rather than an error, and rows already written for the payment are never
// duplicated.
func (s *commissionResolver) ResolveForPayment(ctx context.Context, payment *entities.Payment) (*interfaces.CommissionResult, error) {
	if !payment.IsCompleted() || !payment.IsCommissionable() {
		return nil, fmt.Errorf("payment %s is not commissionable (%s/%s)",
			payment.ID, payment.PaymentType, payment.PaymentStatus)
	}
	if payment.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: %d cents", ErrInvalidAmount, payment.AmountCents)
	}

	if payment.ReferredBy == nil || *payment.ReferredBy == "" {
		return &interfaces.CommissionResult{}, nil
	}

	referrer, err := s.userRepo.GetByUsername(ctx, *payment.ReferredBy)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve referrer: %w", err)
	}
	if referrer == nil {
		log.WithFields(log.Fields{
			"payment_id": payment.ID,
			"referrer":   *payment.ReferredBy,
		}).Warn("Referrer not found, no commission written")
		return &interfaces.CommissionResult{}, nil
	}

	result := &interfaces.CommissionResult{}

	directRate := s.rates.DirectPercent(referrer.MembershipTier)
	if err := s.writeRow(ctx, result, payment, referrer.ID, entities.CommissionTypeDirect, directRate); err != nil {
		return nil, err
	}

	if referrer.HasReferrer() {
		upline, err := s.userRepo.GetByUsername(ctx, *referrer.ReferredBy)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve upline referrer: %w", err)
		}
		if upline == nil {
			log.WithFields(log.Fields{
				"payment_id": payment.ID,
				"referrer":   *referrer.ReferredBy,
			}).Warn("Upline referrer not found, chain ends at direct level")
			return result, nil
		}
		if err := s.writeRow(ctx, result, payment, upline.ID, entities.CommissionTypeUpline, s.rates.UplinePercent); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// writeRow inserts one commission row if no row of its type exists for the
// payment yet
func (s *commissionResolver) writeRow(ctx context.Context, result *interfaces.CommissionResult, payment *entities.Payment, userID int64, commissionType entities.CommissionType, rate float64) error {
	amount := int64(float64(payment.AmountCents) * rate)
	if amount <= 0 {
		return nil
	}

	payout := &entities.CommissionPayout{
		UserID:          userID,
		SourcePaymentID: payment.ID,
		CommissionType:  commissionType,
		AmountCents:     amount,
		PayoutStatus:    entities.CommissionPayoutPending,
	}

	inserted, err := s.commissionRepo.CreateIdempotent(ctx, payout)
	if err != nil {
		return fmt.Errorf("failed to write %s commission: %w", commissionType, err)
	}
	if !inserted {
		log.WithFields(log.Fields{
			"payment_id": payment.ID,
			"type":       commissionType,
		}).Info("Commission already recorded, skipping")
		return nil
	}

	result.Payouts = append(result.Payouts, payout)
	return nil
}
