package application

import (
	"context"
	"errors"
	"time"

	"jackpot/domain/services"
	"jackpot/observability"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// DefaultDrawSchedule runs the weekly draw Friday 14:00 UTC
const DefaultDrawSchedule = "0 14 * * FRI"

// DrawScheduler runs the weekly draw-and-rollover cycle on a cron schedule
type DrawScheduler struct {
	orchestrator *DrawOrchestrator
	schedule     string
	cron         *cron.Cron
}

// NewDrawScheduler creates a scheduler with the given cron expression,
// falling back to the default weekly schedule when empty
func NewDrawScheduler(orchestrator *DrawOrchestrator, schedule string) *DrawScheduler {
	if schedule == "" {
		schedule = DefaultDrawSchedule
	}
	return &DrawScheduler{
		orchestrator: orchestrator,
		schedule:     schedule,
	}
}

// Start registers the weekly job and begins the cron loop
func (s *DrawScheduler) Start(ctx context.Context) error {
	s.cron = cron.New(cron.WithLocation(time.UTC))

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runCycle(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.WithField("schedule", s.schedule).Info("Draw scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running job to finish
func (s *DrawScheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		log.Info("Draw scheduler stopped")
	}
}

// runCycle executes one weekly cycle: draw the current pool, then close it
// and open the successor carrying the rollover. A pool with no tickets skips
// the draw but still rolls over.
func (s *DrawScheduler) runCycle(ctx context.Context) {
	now := time.Now().UTC()

	_, err := s.orchestrator.RunDraw(ctx, now, observability.TriggerScheduled)
	switch {
	case err == nil:
		log.Info("Scheduled draw executed")
	case errors.Is(err, services.ErrNoTickets):
		log.Info("No tickets in pool, skipping draw and rolling over")
	case errors.Is(err, services.ErrDrawAlreadyExecuted):
		log.Info("Pool already drawn, proceeding to rollover")
	default:
		log.WithError(err).Error("Scheduled draw failed, pool left open")
		return
	}

	result, err := s.orchestrator.CloseAndOpenNext(ctx, now)
	if err != nil {
		log.WithError(err).Error("Pool rollover failed")
		return
	}

	log.WithFields(log.Fields{
		"closed_pool_id": result.Closed.ID,
		"next_pool_id":   result.Opened.ID,
		"rollover":       result.RolloverCents,
	}).Info("Weekly cycle completed")
}
