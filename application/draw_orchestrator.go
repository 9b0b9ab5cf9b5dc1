package application

import (
	"context"
	"time"

	"jackpot/domain/entities"
	"jackpot/domain/interfaces"
	"jackpot/domain/services"
	"jackpot/observability"
)

// DrawOrchestrator wraps the transactional write paths of the draw and pool
// lifecycle. Each operation runs inside one unit of work so the draw row,
// winner rows and pool state always land together.
type DrawOrchestrator struct {
	uowFactory interfaces.UnitOfWorkFactory
	prizes     entities.PrizeTable
}

// NewDrawOrchestrator creates a new draw orchestrator
func NewDrawOrchestrator(uowFactory interfaces.UnitOfWorkFactory, prizes entities.PrizeTable) *DrawOrchestrator {
	return &DrawOrchestrator{
		uowFactory: uowFactory,
		prizes:     prizes,
	}
}

// RunDraw executes a random draw against the current pool
func (o *DrawOrchestrator) RunDraw(ctx context.Context, now time.Time, trigger string) (*interfaces.DrawResult, error) {
	uow := o.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	engine := o.engine(uow)
	result, err := engine.RunDraw(ctx, now)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	o.recordDraw(result, trigger)
	return result, nil
}

// RunDrawForce executes a draw with an operator-supplied code
func (o *DrawOrchestrator) RunDrawForce(ctx context.Context, code string, now time.Time) (*interfaces.DrawResult, error) {
	uow := o.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	engine := o.engine(uow)
	result, err := engine.RunDrawForce(ctx, code, now)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	o.recordDraw(result, observability.TriggerForced)
	return result, nil
}

// StagePool moves the open pool to the ready state
func (o *DrawOrchestrator) StagePool(ctx context.Context) (*entities.Pool, error) {
	uow := o.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	poolService := services.NewPoolService(uow.PoolRepository(), uow.TicketRepository())
	pool, err := poolService.StagePool(ctx)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return pool, nil
}

// CloseAndOpenNext closes the current pool and opens its successor atomically
func (o *DrawOrchestrator) CloseAndOpenNext(ctx context.Context, now time.Time) (*interfaces.CloseResult, error) {
	uow := o.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	poolService := services.NewPoolService(uow.PoolRepository(), uow.TicketRepository())
	result, err := poolService.CloseAndOpenNext(ctx, now)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return result, nil
}

// SetWinnerStatus advances a user's winner rows in a draw
func (o *DrawOrchestrator) SetWinnerStatus(ctx context.Context, drawID, userID int64, status entities.WinnerStatus) error {
	uow := o.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	ledger := services.NewPayoutLedger(uow.WinnerRepository())
	if err := ledger.SetWinnerStatus(ctx, drawID, userID, status); err != nil {
		return err
	}

	return uow.Commit()
}

func (o *DrawOrchestrator) engine(uow interfaces.UnitOfWork) interfaces.DrawEngine {
	return services.NewDrawEngine(
		uow.PoolRepository(),
		uow.TicketRepository(),
		uow.DrawRepository(),
		uow.WinnerRepository(),
		uow.UserRepository(),
		uow.PaymentRepository(),
		o.prizes,
	)
}

func (o *DrawOrchestrator) recordDraw(result *interfaces.DrawResult, trigger string) {
	observability.DrawsExecutedTotal.WithLabelValues(trigger).Inc()
	observability.WinnersWrittenTotal.Add(float64(len(result.Winners)))
}
