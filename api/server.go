package api

import (
	"context"
	"net/http"
	"time"

	"jackpot/application"
	"jackpot/domain/interfaces"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Server exposes the payment webhook and the operator surface over HTTP
type Server struct {
	payments   *application.PaymentHandler
	draws      *application.DrawOrchestrator
	pools      interfaces.PoolService
	ledger     interfaces.PayoutLedger
	httpServer *http.Server
}

// NewServer creates the HTTP server with all routes mounted
func NewServer(
	addr string,
	payments *application.PaymentHandler,
	draws *application.DrawOrchestrator,
	pools interfaces.PoolService,
	ledger interfaces.PayoutLedger,
) *Server {
	s := &Server{
		payments: payments,
		draws:    draws,
		pools:    pools,
		ledger:   ledger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/webhooks/payments", s.handlePaymentWebhook)

	r.Route("/pool", func(r chi.Router) {
		r.Get("/", s.handleGetPool)
		r.Get("/tickets", s.handleListTickets)
		r.Post("/stage", s.handleStagePool)
		r.Post("/close", s.handleClosePool)
	})

	r.Route("/draws", func(r chi.Router) {
		r.Post("/", s.handleRunDraw)
		r.Post("/force", s.handleRunDrawForce)
	})

	r.Route("/winners", func(r chi.Router) {
		r.Get("/", s.handleListWinners)
		r.Put("/status", s.handleSetWinnerStatus)
	})

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start begins serving. Blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	log.WithField("addr", s.httpServer.Addr).Info("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the mounted router, used by tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
