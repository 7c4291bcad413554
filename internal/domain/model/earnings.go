package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyEarnings aggregates an advocate's revenue for one calendar month.
type MonthlyEarnings struct {
	AdvocateID        string
	Year              int
	Month             int // 1..12
	TotalAmount       decimal.Decimal
	ConsultationCount int
}

// EarningsPeriod returns the (year, month) bucket t falls into.
func EarningsPeriod(t time.Time) (int, int) {
	return t.Year(), int(t.Month())
}

// AdvocateProfile holds lifetime totals for an advocate.
type AdvocateProfile struct {
	UserID             string
	TotalEarnings      decimal.Decimal
	TotalConsultations int
	UpdatedAt          time.Time
}
