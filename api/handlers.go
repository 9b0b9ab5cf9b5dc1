package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"jackpot/domain/entities"
	"jackpot/domain/services"
	"jackpot/observability"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

var validate = validator.New()

type paymentWebhookRequest struct {
	PaymentID string `json:"payment_id" validate:"required"`
}

type forceDrawRequest struct {
	Code string `json:"code" validate:"required,len=5"`
}

type winnerStatusRequest struct {
	DrawID int64  `json:"draw_id" validate:"required"`
	UserID int64  `json:"user_id" validate:"required"`
	Status string `json:"status" validate:"required,oneof=approved paid void"`
}

func (s *Server) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var req paymentWebhookRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	outcome, err := s.payments.HandlePaymentCompleted(r.Context(), req.PaymentID)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusCreated
	if outcome.AlreadyIssued {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{
		"tickets_minted": outcome.TicketsMinted,
		"already_issued": outcome.AlreadyIssued,
		"commissions":    outcome.Commissions,
	})
}

func (s *Server) handleGetPool(w http.ResponseWriter, r *http.Request) {
	pool, err := s.pools.GetActivePool(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pool)
}

func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	var poolID int64
	if raw := r.URL.Query().Get("pool_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid pool_id"})
			return
		}
		poolID = id
	} else {
		pool, err := s.pools.GetActivePool(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		poolID = pool.ID
	}

	username := r.URL.Query().Get("username")
	limit := queryInt(r, "limit", 50)

	tickets, err := s.pools.ListRecentTicketCodes(r.Context(), poolID, username, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pool_id": poolID, "tickets": tickets})
}

func (s *Server) handleStagePool(w http.ResponseWriter, r *http.Request) {
	pool, err := s.draws.StagePool(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pool)
}

func (s *Server) handleClosePool(w http.ResponseWriter, r *http.Request) {
	result, err := s.draws.CloseAndOpenNext(r.Context(), time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"closed_pool_id": result.Closed.ID,
		"next_pool_id":   result.Opened.ID,
		"rollover_cents": result.RolloverCents,
	})
}

func (s *Server) handleRunDraw(w http.ResponseWriter, r *http.Request) {
	result, err := s.draws.RunDraw(r.Context(), time.Now().UTC(), observability.TriggerManual)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleRunDrawForce(w http.ResponseWriter, r *http.Request) {
	var req forceDrawRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := s.draws.RunDrawForce(r.Context(), req.Code, time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListWinners(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := queryInt(r, "limit", 20)

	if raw := r.URL.Query().Get("draw_id"); raw != "" {
		drawID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid draw_id"})
			return
		}
		winners, err := s.ledger.ListWinnersByDraw(ctx, drawID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, winners)
		return
	}

	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user_id"})
			return
		}
		winners, err := s.ledger.ListWinnersByUser(ctx, userID, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, winners)
		return
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		winners, err := s.ledger.ListWinnersByStatus(ctx, entities.WinnerStatus(raw), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, winners)
		return
	}

	winners, err := s.ledger.ListLatestWinners(ctx, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, winners)
}

func (s *Server) handleSetWinnerStatus(w http.ResponseWriter, r *http.Request) {
	var req winnerStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := s.draws.SetWinnerStatus(r.Context(), req.DrawID, req.UserID, entities.WinnerStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// decodeAndValidate decodes the JSON body into dst and validates it, writing
// a 400 response on failure
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

// writeError maps domain sentinel errors onto HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNoActivePool),
		errors.Is(err, services.ErrNoOpenPool),
		errors.Is(err, services.ErrWinnerNotFound),
		errors.Is(err, services.ErrCodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidCode):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrDrawAlreadyExecuted),
		errors.Is(err, services.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, services.ErrNoTickets):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
