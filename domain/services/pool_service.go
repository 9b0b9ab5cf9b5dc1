package services

import (
	"context"
	"fmt"
	"time"

	"jackpot/domain/entities"
	"jackpot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// poolService implements the prize pool lifecycle
type poolService struct {
	poolRepo   interfaces.PoolRepository
	ticketRepo interfaces.TicketRepository
}

// NewPoolService creates a new pool service
func NewPoolService(
	poolRepo interfaces.PoolRepository,
	ticketRepo interfaces.TicketRepository,
) interfaces.PoolService {
	return &poolService{
		poolRepo:   poolRepo,
		ticketRepo: ticketRepo,
	}
}

// GetActivePool returns the open pool. The maintained aggregate is the
// source of truth for the total; when it cannot be read the total is
// recomputed from the payments behind the pool's tickets so callers see a
// degraded value instead of an error.
func (s *poolService) GetActivePool(ctx context.Context) (*entities.Pool, error) {
	pool, err := s.poolRepo.GetOpenPool(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get open pool: %w", err)
	}
	if pool == nil {
		return nil, ErrNoActivePool
	}

	if pool.TotalCents < pool.RolloverInCents {
		// Aggregate fell behind the carried rollover, which only happens if
		// an increment was lost. Recompute from attributed payments.
		recomputed, sumErr := s.poolRepo.SumPaymentTotals(ctx, pool.ID)
		if sumErr != nil {
			log.WithError(sumErr).WithField("pool_id", pool.ID).
				Warn("Pool total fallback failed, serving maintained aggregate")
			return pool, nil
		}
		log.WithFields(log.Fields{
			"pool_id":    pool.ID,
			"aggregate":  pool.TotalCents,
			"recomputed": recomputed + pool.RolloverInCents,
		}).Warn("Pool aggregate inconsistent, serving recomputed total")
		pool.TotalCents = recomputed + pool.RolloverInCents
	}

	return pool, nil
}

// StagePool moves the open pool into the ready state for operator review.
// Ticket minting stops until the pool is drawn and rolled over.
func (s *poolService) StagePool(ctx context.Context) (*entities.Pool, error) {
	pool, err := s.poolRepo.GetCurrentPoolForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock current pool: %w", err)
	}
	if pool == nil {
		return nil, ErrNoOpenPool
	}

	if !pool.Stage() {
		return nil, fmt.Errorf("pool %d is %s, only open pools can be staged", pool.ID, pool.Status)
	}

	if err := s.poolRepo.Update(ctx, pool); err != nil {
		return nil, fmt.Errorf("failed to stage pool: %w", err)
	}

	log.WithField("pool_id", pool.ID).Info("Pool staged for review")
	return pool, nil
}

// CloseAndOpenNext closes the current pool and opens its successor in the
// same transaction, carrying rollover = total - distributed. The caller's
// unit of work makes the swap atomic, so there is never a window with zero
// or two open pools.
func (s *poolService) CloseAndOpenNext(ctx context.Context, now time.Time) (*interfaces.CloseResult, error) {
	current, err := s.poolRepo.GetCurrentPoolForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock current pool: %w", err)
	}
	if current == nil {
		return nil, ErrNoOpenPool
	}

	rollover := current.Close(now)
	if err := s.poolRepo.Update(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to close pool %d: %w", current.ID, err)
	}

	next := &entities.Pool{
		Status:          entities.PoolStatusOpen,
		TotalCents:      rollover,
		RolloverInCents: rollover,
		PeriodStart:     now,
	}
	if err := s.poolRepo.Create(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to open next pool: %w", err)
	}

	log.WithFields(log.Fields{
		"closed_pool_id": current.ID,
		"next_pool_id":   next.ID,
		"rollover":       rollover,
	}).Info("Pool closed and rolled over")

	return &interfaces.CloseResult{
		Closed:        current,
		Opened:        next,
		RolloverCents: rollover,
	}, nil
}

// ListRecentTicketCodes returns the newest ticket codes in a pool,
// optionally filtered to one tipper's username
func (s *poolService) ListRecentTicketCodes(ctx context.Context, poolID int64, tipperUsername string, limit int) ([]*entities.TicketDetail, error) {
	if limit <= 0 {
		limit = 50
	}

	tickets, err := s.ticketRepo.ListRecent(ctx, poolID, tipperUsername, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent tickets: %w", err)
	}
	return tickets, nil
}
