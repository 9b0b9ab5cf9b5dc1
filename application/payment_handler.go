package application

import (
	"context"
	"fmt"

	"jackpot/domain/entities"
	"jackpot/domain/interfaces"
	"jackpot/domain/services"
	"jackpot/observability"

	log "github.com/sirupsen/logrus"
)

// PaymentOutcome summarizes what a payment event produced
type PaymentOutcome struct {
	TicketsMinted int
	AlreadyIssued bool
	Commissions   int
}

// PaymentHandler fans a completed payment out to ticket minting and
// commission resolution. The two run in separate transactions: commission
// failure never takes minted tickets down with it.
type PaymentHandler struct {
	uowFactory interfaces.UnitOfWorkFactory
	limits     services.TipLimits
	rates      entities.CommissionRates
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(uowFactory interfaces.UnitOfWorkFactory, limits services.TipLimits, rates entities.CommissionRates) *PaymentHandler {
	return &PaymentHandler{
		uowFactory: uowFactory,
		limits:     limits,
		rates:      rates,
	}
}

// HandlePaymentCompleted processes a provider completion event for the given
// payment id. Re-delivery of the same event is a no-op on both paths.
func (h *PaymentHandler) HandlePaymentCompleted(ctx context.Context, paymentID string) (*PaymentOutcome, error) {
	outcome := &PaymentOutcome{}

	payment, err := h.mintTickets(ctx, paymentID, outcome)
	if err != nil {
		observability.PaymentEventsTotal.WithLabelValues(observability.ResultError).Inc()
		return nil, err
	}

	if err := h.resolveCommissions(ctx, payment, outcome); err != nil {
		// Tickets are already committed; commission resolution retries on the
		// next delivery thanks to its idempotency key
		log.WithError(err).WithField("payment_id", paymentID).
			Error("Commission resolution failed, tickets unaffected")
	}

	switch {
	case outcome.AlreadyIssued:
		observability.PaymentEventsTotal.WithLabelValues(observability.ResultDuplicate).Inc()
	case outcome.TicketsMinted > 0:
		observability.PaymentEventsTotal.WithLabelValues(observability.ResultMinted).Inc()
	default:
		observability.PaymentEventsTotal.WithLabelValues(observability.ResultSkipped).Inc()
	}

	return outcome, nil
}

// mintTickets runs the ticket path in its own transaction and returns the
// loaded payment for the commission path
func (h *PaymentHandler) mintTickets(ctx context.Context, paymentID string, outcome *PaymentOutcome) (*entities.Payment, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// The payment row lock serializes concurrent deliveries of the same
	// event: the loser waits here and then sees the winner's tickets
	payment, err := uow.PaymentRepository().GetByIDForUpdate(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, fmt.Errorf("payment %s not found", paymentID)
	}

	if !payment.IsCompleted() || !payment.IsTip() {
		// Non-tip payments still earn commission but mint nothing
		return payment, uow.Rollback()
	}

	issuer := services.NewTicketIssuer(uow.PoolRepository(), uow.TicketRepository(), h.limits)
	result, err := issuer.IssueForPayment(ctx, payment)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	outcome.TicketsMinted = len(result.Tickets)
	outcome.AlreadyIssued = result.AlreadyIssued
	if !result.AlreadyIssued {
		observability.TicketsMintedTotal.Add(float64(len(result.Tickets)))
	}
	return payment, nil
}

// resolveCommissions runs the commission path in its own transaction
func (h *PaymentHandler) resolveCommissions(ctx context.Context, payment *entities.Payment, outcome *PaymentOutcome) error {
	if !payment.IsCompleted() || !payment.IsCommissionable() {
		return nil
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	resolver := services.NewCommissionResolver(uow.CommissionPayoutRepository(), uow.UserRepository(), h.rates)
	result, err := resolver.ResolveForPayment(ctx, payment)
	if err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	outcome.Commissions = len(result.Payouts)
	for _, payout := range result.Payouts {
		observability.CommissionsWrittenTotal.WithLabelValues(string(payout.CommissionType)).Inc()
	}
	return nil
}
