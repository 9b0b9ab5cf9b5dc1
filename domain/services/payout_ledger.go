package services

import (
	"context"
	"fmt"

	"jackpot/domain/entities"
	"jackpot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// payoutLedger enforces the winner approval state machine over the winner rows
type payoutLedger struct {
	winnerRepo interfaces.WinnerRepository
}

// NewPayoutLedger creates a new payout ledger
func NewPayoutLedger(winnerRepo interfaces.WinnerRepository) interfaces.PayoutLedger {
	return &payoutLedger{winnerRepo: winnerRepo}
}

// SetWinnerStatus advances every row a user holds in a draw to the given
// status. All rows must currently sit in a state that permits the move; the
// update itself is guarded on the observed status so a concurrent transition
// loses cleanly.
func (s *payoutLedger) SetWinnerStatus(ctx context.Context, drawID, userID int64, status entities.WinnerStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("unknown winner status %q", status)
	}

	winners, err := s.winnerRepo.GetByDrawAndUser(ctx, drawID, userID)
	if err != nil {
		return fmt.Errorf("failed to get winner rows: %w", err)
	}
	if len(winners) == 0 {
		return ErrWinnerNotFound
	}

	observed := make(map[entities.WinnerStatus]struct{})
	for _, w := range winners {
		if !entities.CanTransition(w.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, w.Status, status)
		}
		observed[w.Status] = struct{}{}
	}

	// One guarded update per observed status moves every row holding it; zero
	// affected rows means a concurrent transition won the race
	for from := range observed {
		affected, err := s.winnerRepo.UpdateStatus(ctx, drawID, userID, from, status)
		if err != nil {
			return fmt.Errorf("failed to update winner status: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: winner rows changed concurrently", ErrInvalidTransition)
		}
	}

	log.WithFields(log.Fields{
		"draw_id": drawID,
		"user_id": userID,
		"status":  status,
		"rows":    len(winners),
	}).Info("Winner status updated")

	return nil
}

// ListLatestWinners returns the newest winners enriched with identity
func (s *payoutLedger) ListLatestWinners(ctx context.Context, limit int) ([]*entities.WinnerDetail, error) {
	if limit <= 0 {
		limit = 20
	}
	winners, err := s.winnerRepo.ListLatest(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest winners: %w", err)
	}
	return winners, nil
}

// ListWinnersByDraw returns all winner rows for a draw
func (s *payoutLedger) ListWinnersByDraw(ctx context.Context, drawID int64) ([]*entities.Winner, error) {
	winners, err := s.winnerRepo.GetByDraw(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to list winners for draw %d: %w", drawID, err)
	}
	return winners, nil
}

// ListWinnersByStatus returns winner rows in a given approval state
func (s *payoutLedger) ListWinnersByStatus(ctx context.Context, status entities.WinnerStatus, limit int) ([]*entities.Winner, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("unknown winner status %q", status)
	}
	if limit <= 0 {
		limit = 100
	}
	winners, err := s.winnerRepo.GetByStatus(ctx, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list winners by status: %w", err)
	}
	return winners, nil
}

// ListWinnersByUser returns a user's winner rows
func (s *payoutLedger) ListWinnersByUser(ctx context.Context, userID int64, limit int) ([]*entities.Winner, error) {
	if limit <= 0 {
		limit = 100
	}
	winners, err := s.winnerRepo.GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list winners for user %d: %w", userID, err)
	}
	return winners, nil
}
