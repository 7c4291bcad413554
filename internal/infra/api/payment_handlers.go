package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"advocate-payments/internal/domain"
	"advocate-payments/internal/domain/model"
	"advocate-payments/internal/infra/logging"
	"advocate-payments/internal/infra/metrics"
	"advocate-payments/internal/usecase"
)

const (
	completedMessage = "Payment completed successfully (simulated)"
	checkoutPath     = "/payment/checkout"
)

type completeResponse struct {
	Success       bool            `json:"success"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Message       string          `json:"message"`
	IsFakePayment bool            `json:"is_fake_payment"`
	RedirectURL   string          `json:"redirect_url"`
}

// handleCompletePayment is the checkout webhook that finalises a payment session.
func (s *Server) handleCompletePayment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var card model.CardDetails
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		metrics.IncPayment("rejected")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}
	ctx := logging.WithSessID(r.Context(), card.SessionID)
	r = r.WithContext(ctx)

	res, err := s.payUC.Complete(ctx, card)
	if err != nil {
		outcome := completionOutcome(err)
		metrics.IncPayment(outcome)
		metrics.ObserveCompletion(outcome, time.Since(start))
		writeErr(w, s.log, r, err)
		return
	}

	metrics.IncPayment("completed")
	metrics.AddPaymentRevenue(res.Payment.Amount)
	metrics.ObserveCompletion("completed", time.Since(start))

	writeJSON(w, http.StatusOK, completeResponse{
		Success:       true,
		TransactionID: res.TransactionID,
		Amount:        res.Payment.Amount,
		Message:       completedMessage,
		IsFakePayment: true,
		RedirectURL:   res.RedirectURL,
	})
}

func completionOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrPaymentDeclined):
		return "declined"
	case errors.Is(err, domain.ErrAlreadyProcessed):
		return "duplicate"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrSessionNotFound):
		return "rejected"
	default:
		return "error"
	}
}

type initiateRequest struct {
	RequestID  string          `json:"request_id"`
	ClientID   string          `json:"client_id"`
	AdvocateID string          `json:"advocate_id"`
	Amount     decimal.Decimal `json:"amount"`
}

type initiateResponse struct {
	SessionID   string          `json:"session_id"`
	PaymentID   string          `json:"payment_id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	CheckoutURL string          `json:"checkout_url"`
}

func (s *Server) handleInitiatePayment(w http.ResponseWriter, r *http.Request) {
	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}
	p, err := s.payUC.Initiate(r.Context(), usecase.InitiateRequest{
		RequestID:  req.RequestID,
		ClientID:   req.ClientID,
		AdvocateID: req.AdvocateID,
		Amount:     req.Amount,
	})
	if err != nil {
		writeErr(w, s.log, r, err)
		return
	}
	metrics.IncPayment("initiated")
	writeJSON(w, http.StatusCreated, initiateResponse{
		SessionID:   p.SessionID,
		PaymentID:   p.ID,
		Amount:      p.Amount,
		Status:      string(p.Status),
		CheckoutURL: checkoutPath + "?session_id=" + url.QueryEscape(p.SessionID),
	})
}

type sessionResponse struct {
	SessionID     string          `json:"session_id"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	p, err := s.payUC.GetBySession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeErr(w, s.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID:     p.SessionID,
		Status:        string(p.Status),
		Amount:        p.Amount,
		TransactionID: p.TransactionID,
		PaymentMethod: p.PaymentMethod,
		ProcessedAt:   p.ProcessedAt,
	})
}
