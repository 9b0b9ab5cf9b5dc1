package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"jackpot/domain/entities"
	"jackpot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// drawEngine executes draws against the current pool and resolves the
// prize-role winners from the drawn code
type drawEngine struct {
	poolRepo    interfaces.PoolRepository
	ticketRepo  interfaces.TicketRepository
	drawRepo    interfaces.DrawRepository
	winnerRepo  interfaces.WinnerRepository
	userRepo    interfaces.UserRepository
	paymentRepo interfaces.PaymentRepository
	prizes      entities.PrizeTable
}

// NewDrawEngine creates a new draw engine
func NewDrawEngine(
	poolRepo interfaces.PoolRepository,
	ticketRepo interfaces.TicketRepository,
	drawRepo interfaces.DrawRepository,
	winnerRepo interfaces.WinnerRepository,
	userRepo interfaces.UserRepository,
	paymentRepo interfaces.PaymentRepository,
	prizes entities.PrizeTable,
) interfaces.DrawEngine {
	return &drawEngine{
		poolRepo:    poolRepo,
		ticketRepo:  ticketRepo,
		drawRepo:    drawRepo,
		winnerRepo:  winnerRepo,
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		prizes:      prizes,
	}
}

// RunDraw selects one ticket uniformly at random from the current pool and
// executes the draw against it. The pool row lock taken here serializes
// concurrent attempts; the loser observes the drawn status and fails with
// ErrDrawAlreadyExecuted.
func (s *drawEngine) RunDraw(ctx context.Context, now time.Time) (*interfaces.DrawResult, error) {
	pool, err := s.lockDrawablePool(ctx)
	if err != nil {
		return nil, err
	}

	count, err := s.ticketRepo.CountForPool(ctx, pool.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets: %w", err)
	}
	if count == 0 {
		return nil, ErrNoTickets
	}

	offset, err := randomInt64(count)
	if err != nil {
		return nil, fmt.Errorf("failed to select winning ticket: %w", err)
	}

	ticket, err := s.ticketRepo.GetByOffset(ctx, pool.ID, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch winning ticket: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("no ticket at offset %d of %d in pool %d", offset, count, pool.ID)
	}

	return s.execute(ctx, pool, ticket, ticket.Code, false, now)
}

// RunDrawForce executes a draw with an operator-supplied code, used for
// auditing and testing. The code need not exist as a minted ticket: when it
// does not, the roles derived from the winning ticket are skipped and the
// independent second-place selection still runs.
func (s *drawEngine) RunDrawForce(ctx context.Context, code string, now time.Time) (*interfaces.DrawResult, error) {
	if !entities.IsValidTicketCode(code) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}

	pool, err := s.lockDrawablePool(ctx)
	if err != nil {
		return nil, err
	}

	count, err := s.ticketRepo.CountForPool(ctx, pool.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets: %w", err)
	}
	if count == 0 {
		return nil, ErrNoTickets
	}

	ticket, err := s.ticketRepo.GetByCode(ctx, pool.ID, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up forced code: %w", err)
	}
	if ticket == nil {
		log.WithFields(log.Fields{
			"pool_id": pool.ID,
			"code":    code,
		}).Warn("Forced draw code not minted in pool, ticket-derived roles will be skipped")
	}

	return s.execute(ctx, pool, ticket, code, true, now)
}

// lockDrawablePool acquires the current pool row for update and verifies a
// draw may run against it
func (s *drawEngine) lockDrawablePool(ctx context.Context) (*entities.Pool, error) {
	pool, err := s.poolRepo.GetCurrentPoolForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock pool: %w", err)
	}
	if pool == nil {
		return nil, ErrNoOpenPool
	}
	if !pool.IsDrawable() {
		return nil, ErrDrawAlreadyExecuted
	}

	// The unique constraint on draws.pool_id is the backstop; checking here
	// gives the clean error to lock-then-observe racers
	existing, err := s.drawRepo.GetByPoolID(ctx, pool.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing draw: %w", err)
	}
	if existing != nil {
		return nil, ErrDrawAlreadyExecuted
	}

	return pool, nil
}

// execute writes the draw and its winner rows atomically and marks the pool
// drawn. ticket is nil for a forced code that was never minted.
func (s *drawEngine) execute(ctx context.Context, pool *entities.Pool, ticket *entities.Ticket, code string, forced bool, now time.Time) (*interfaces.DrawResult, error) {
	var winners []*entities.Winner
	addWinner := func(place int, role entities.WinnerRole, userID int64) {
		amount, pct, ok := CalculatePrize(pool.TotalCents, place, role, s.prizes)
		if !ok {
			log.WithFields(log.Fields{
				"place": place,
				"role":  role,
			}).Warn("No prize share configured, skipping winner row")
			return
		}
		winners = append(winners, &entities.Winner{
			UserID:      userID,
			Role:        role,
			Place:       place,
			Percentage:  pct,
			AmountCents: amount,
			Status:      entities.WinnerStatusPending,
		})
	}

	// Place 1: ticket owner, the tipped performer, and the performer's referrer
	if ticket != nil {
		addWinner(1, entities.RoleTipper, ticket.TipperID)

		if err := s.resolveTicketRoles(ctx, ticket, 1, addWinner); err != nil {
			return nil, err
		}
	}

	// Place 2: an independent secondary selection among the remaining tickets,
	// dime roles only
	if err := s.resolveSecondPlace(ctx, pool.ID, code, addWinner); err != nil {
		return nil, err
	}

	// Place 3: whoever referred the winning tipper
	if ticket != nil {
		tipper, err := s.userRepo.GetByID(ctx, ticket.TipperID)
		if err != nil {
			return nil, fmt.Errorf("failed to get winning tipper: %w", err)
		}
		if tipper != nil && tipper.HasReferrer() {
			referrer, err := s.userRepo.GetByUsername(ctx, *tipper.ReferredBy)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve tipper referrer: %w", err)
			}
			if referrer != nil {
				addWinner(3, entities.RoleReferredTipper, referrer.ID)
			}
		}
	}

	draw := entities.NewDraw(pool.ID, code, forced, now)
	if err := s.drawRepo.Create(ctx, draw); err != nil {
		return nil, fmt.Errorf("failed to create draw: %w", err)
	}

	var distributed int64
	for _, w := range winners {
		w.DrawID = draw.ID
		distributed += w.AmountCents
	}
	if len(winners) > 0 {
		if err := s.winnerRepo.CreateBatch(ctx, winners); err != nil {
			return nil, fmt.Errorf("failed to create winner rows: %w", err)
		}
	}

	pool.MarkDrawn(distributed)
	if err := s.poolRepo.Update(ctx, pool); err != nil {
		return nil, fmt.Errorf("failed to mark pool drawn: %w", err)
	}

	log.WithFields(log.Fields{
		"draw_id":     draw.ID,
		"pool_id":     pool.ID,
		"drawn_code":  code,
		"forced":      forced,
		"winners":     len(winners),
		"distributed": distributed,
		"pool_total":  pool.TotalCents,
	}).Info("Draw executed")

	return &interfaces.DrawResult{
		Draw:           draw,
		Winners:        winners,
		PoolTotalCents: pool.TotalCents,
	}, nil
}

// resolveTicketRoles adds the dime and referred-dime winners derived from a
// ticket's source payment. A payment without a recipient, or a dime without
// a resolvable referrer, yields fewer rows rather than an error.
func (s *drawEngine) resolveTicketRoles(ctx context.Context, ticket *entities.Ticket, place int, addWinner func(int, entities.WinnerRole, int64)) error {
	payment, err := s.paymentRepo.GetByID(ctx, ticket.PaymentID)
	if err != nil {
		return fmt.Errorf("failed to get ticket payment: %w", err)
	}
	if payment == nil || payment.RecipientID == nil {
		log.WithFields(log.Fields{
			"ticket_id":  ticket.ID,
			"payment_id": ticket.PaymentID,
		}).Warn("Ticket payment has no recipient, skipping dime roles")
		return nil
	}

	dimeID := *payment.RecipientID
	addWinner(place, entities.RoleDime, dimeID)

	dime, err := s.userRepo.GetByID(ctx, dimeID)
	if err != nil {
		return fmt.Errorf("failed to get dime user: %w", err)
	}
	if dime == nil || !dime.HasReferrer() {
		return nil
	}

	referrer, err := s.userRepo.GetByUsername(ctx, *dime.ReferredBy)
	if err != nil {
		return fmt.Errorf("failed to resolve dime referrer: %w", err)
	}
	if referrer != nil {
		addWinner(place, entities.RoleReferredDime, referrer.ID)
	}
	return nil
}

// resolveSecondPlace draws a second ticket among those not carrying the
// primary code and adds its dime-side winners
func (s *drawEngine) resolveSecondPlace(ctx context.Context, poolID int64, primaryCode string, addWinner func(int, entities.WinnerRole, int64)) error {
	count, err := s.ticketRepo.CountForPoolExcludingCode(ctx, poolID, primaryCode)
	if err != nil {
		return fmt.Errorf("failed to count secondary tickets: %w", err)
	}
	if count == 0 {
		return nil
	}

	offset, err := randomInt64(count)
	if err != nil {
		return fmt.Errorf("failed to select secondary ticket: %w", err)
	}

	ticket, err := s.ticketRepo.GetByOffsetExcludingCode(ctx, poolID, primaryCode, offset)
	if err != nil {
		return fmt.Errorf("failed to fetch secondary ticket: %w", err)
	}
	if ticket == nil {
		return nil
	}

	return s.resolveTicketRoles(ctx, ticket, 2, addWinner)
}

// randomInt64 returns a cryptographically random value in [0, max)
func randomInt64(max int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}
