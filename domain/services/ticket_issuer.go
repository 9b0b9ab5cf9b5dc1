package services

import (
	"context"
	"fmt"

	"jackpot/domain/entities"
	"jackpot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// maxCodeRounds bounds collision retries during code generation. At 26^5
// possible codes per pool this is effectively unreachable.
const maxCodeRounds = 10

// TipLimits are the business bounds on qualifying tip amounts
type TipLimits struct {
	MinTipCents int64
	MaxTipCents int64
}

// ticketIssuer implements ticket minting for completed tip payments
type ticketIssuer struct {
	poolRepo   interfaces.PoolRepository
	ticketRepo interfaces.TicketRepository
	limits     TipLimits
}

// NewTicketIssuer creates a new ticket issuer
func NewTicketIssuer(
	poolRepo interfaces.PoolRepository,
	ticketRepo interfaces.TicketRepository,
	limits TipLimits,
) interfaces.TicketIssuer {
	return &ticketIssuer{
		poolRepo:   poolRepo,
		ticketRepo: ticketRepo,
		limits:     limits,
	}
}

// IssueForPayment mints one ticket per whole dollar of a completed tip.
// Minting is idempotent on the payment id so retried webhook deliveries
// never duplicate tickets. The existing-tickets check is a plain read;
// callers running concurrently must hold the payment row lock in the same
// transaction so deliveries of one payment are serialized.
func (s *ticketIssuer) IssueForPayment(ctx context.Context, payment *entities.Payment) (*interfaces.IssueResult, error) {
	if !payment.IsCompleted() || !payment.IsTip() {
		return nil, fmt.Errorf("payment %s is not a completed tip", payment.ID)
	}

	if payment.AmountCents < s.limits.MinTipCents || payment.AmountCents > s.limits.MaxTipCents {
		return nil, fmt.Errorf("%w: %d cents not in [%d, %d]",
			ErrInvalidAmount, payment.AmountCents, s.limits.MinTipCents, s.limits.MaxTipCents)
	}

	// Webhook retry guard: tickets for this payment already exist
	existing, err := s.ticketRepo.GetByPaymentID(ctx, payment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing tickets: %w", err)
	}
	if len(existing) > 0 {
		log.WithFields(log.Fields{
			"payment_id": payment.ID,
			"tickets":    len(existing),
		}).Info("Tickets already minted for payment, skipping")
		return &interfaces.IssueResult{Tickets: existing, AlreadyIssued: true}, nil
	}

	pool, err := s.poolRepo.GetOpenPool(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get open pool: %w", err)
	}
	if pool == nil {
		return nil, ErrNoActivePool
	}

	count := payment.WholeDollars()
	codes, err := s.generateUniqueCodes(ctx, pool.ID, count)
	if err != nil {
		return nil, err
	}

	tickets := make([]*entities.Ticket, 0, count)
	for _, code := range codes {
		tickets = append(tickets, &entities.Ticket{
			PoolID:    pool.ID,
			PaymentID: payment.ID,
			TipperID:  payment.UserID,
			Code:      code,
		})
	}

	if err := s.ticketRepo.CreateBatch(ctx, tickets); err != nil {
		return nil, fmt.Errorf("failed to create tickets: %w", err)
	}

	// The pool accumulates the full tip value, cents included, even though
	// only whole dollars mint tickets
	if err := s.poolRepo.IncrementTotal(ctx, pool.ID, payment.AmountCents); err != nil {
		return nil, fmt.Errorf("failed to increment pool total: %w", err)
	}
	pool.TotalCents += payment.AmountCents

	log.WithFields(log.Fields{
		"payment_id": payment.ID,
		"pool_id":    pool.ID,
		"tickets":    len(tickets),
		"amount":     payment.AmountCents,
	}).Info("Tickets minted")

	return &interfaces.IssueResult{Tickets: tickets, Pool: pool}, nil
}

// generateUniqueCodes produces count codes unique within the pool. Each
// round generates the outstanding quantity, filters the ones the pool
// already holds, and retries the remainder.
func (s *ticketIssuer) generateUniqueCodes(ctx context.Context, poolID int64, count int) ([]string, error) {
	codes := make([]string, 0, count)
	local := make(map[string]bool, count)

	for round := 0; round < maxCodeRounds && len(codes) < count; round++ {
		candidates := make([]string, 0, count-len(codes))
		for len(candidates) < count-len(codes) {
			code, err := entities.GenerateTicketCode()
			if err != nil {
				return nil, fmt.Errorf("code generation failed: %w", err)
			}
			if !local[code] {
				local[code] = true
				candidates = append(candidates, code)
			}
		}

		taken, err := s.ticketRepo.FilterExistingCodes(ctx, poolID, candidates)
		if err != nil {
			return nil, fmt.Errorf("failed to check code collisions: %w", err)
		}
		takenSet := make(map[string]bool, len(taken))
		for _, code := range taken {
			takenSet[code] = true
		}

		for _, code := range candidates {
			if !takenSet[code] {
				codes = append(codes, code)
			}
		}
	}

	if len(codes) < count {
		return nil, fmt.Errorf("%w: %d of %d codes after %d rounds",
			ErrCodeSpaceExhausted, len(codes), count, maxCodeRounds)
	}
	return codes, nil
}
