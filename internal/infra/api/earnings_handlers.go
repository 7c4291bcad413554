package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"advocate-payments/internal/domain"
	"advocate-payments/internal/infra/metrics"
)

type loginRequest struct {
	APIKey string `json:"api_key"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "Forbidden"})
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}
	if !s.auth.CheckAPIKey(req.APIKey) {
		metrics.IncAdminLogin("unauthorized")
		writeErr(w, s.log, r, domain.ErrUnauthorized)
		return
	}
	tok, exp, err := s.auth.Mint()
	if err != nil {
		writeErr(w, s.log, r, err)
		return
	}
	metrics.IncAdminLogin("authorized")
	writeJSON(w, http.StatusOK, loginResponse{Token: tok, ExpiresAt: exp})
}

type profileResponse struct {
	AdvocateID         string          `json:"advocate_id"`
	TotalEarnings      decimal.Decimal `json:"total_earnings"`
	TotalConsultations int             `json:"total_consultations"`
}

func (s *Server) handleAdvocateEarnings(w http.ResponseWriter, r *http.Request) {
	p, err := s.earningsUC.Profile(r.Context(), chi.URLParam(r, "advocateID"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "Advocate not found"})
			return
		}
		writeErr(w, s.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{
		AdvocateID:         p.UserID,
		TotalEarnings:      p.TotalEarnings,
		TotalConsultations: p.TotalConsultations,
	})
}

type monthlyResponse struct {
	AdvocateID        string          `json:"advocate_id"`
	Year              int             `json:"year"`
	Month             int             `json:"month"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	ConsultationCount int             `json:"consultation_count"`
}

func (s *Server) handleMonthlyEarnings(w http.ResponseWriter, r *http.Request) {
	year, yerr := strconv.Atoi(chi.URLParam(r, "year"))
	month, merr := strconv.Atoi(chi.URLParam(r, "month"))
	if yerr != nil || merr != nil {
		writeErr(w, s.log, r, domain.ErrInvalidArgument)
		return
	}
	m, err := s.earningsUC.Monthly(r.Context(), chi.URLParam(r, "advocateID"), year, month)
	if err != nil {
		writeErr(w, s.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, monthlyResponse{
		AdvocateID:        m.AdvocateID,
		Year:              m.Year,
		Month:             m.Month,
		TotalAmount:       m.TotalAmount,
		ConsultationCount: m.ConsultationCount,
	})
}
