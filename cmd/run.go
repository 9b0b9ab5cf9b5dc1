package cmd

import (
	"context"
	"fmt"
	"time"

	"jackpot/api"
	"jackpot/application"
	"jackpot/config"
	"jackpot/database"
	"jackpot/domain/services"
	"jackpot/repository"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting jackpot service...")

	// Load configuration
	cfg := config.Get()

	// Load prize and commission tables
	prizeCfg, err := config.LoadPrizeConfig(cfg.PrizeConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load prize config: %w", err)
	}

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db)

	// Initialize application services
	limits := services.TipLimits{
		MinTipCents: cfg.MinTipCents,
		MaxTipCents: cfg.MaxTipCents,
	}
	paymentHandler := application.NewPaymentHandler(uowFactory, limits, prizeCfg.Commissions)
	drawOrchestrator := application.NewDrawOrchestrator(uowFactory, prizeCfg.Prizes)

	// Read-path services run outside a transaction
	poolService := services.NewPoolService(
		repository.NewPoolRepository(db),
		repository.NewTicketRepository(db),
	)
	payoutLedger := services.NewPayoutLedger(repository.NewWinnerRepository(db))

	// Start the weekly draw cycle
	scheduler := application.NewDrawScheduler(drawOrchestrator, cfg.DrawSchedule)
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start draw scheduler: %w", err)
	}

	// Start the HTTP server
	server := api.NewServer(cfg.HTTPAddr, paymentHandler, drawOrchestrator, poolService, payoutLedger)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	log.WithField("environment", cfg.Environment).Info("Service is running")

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Info("Shutting down...")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return nil
}
