package service

import "time"

// AccrualPolicy supplies how many leave days a user earns in a period.
type AccrualPolicy interface {
	Accrued(userID string, period time.Time) int
}

// MonthlyAccrual grants the same number of days every calendar month.
type MonthlyAccrual struct {
	PerPeriod int
}

// Accrued implements AccrualPolicy.
func (m MonthlyAccrual) Accrued(string, time.Time) int {
	if m.PerPeriod < 0 {
		return 0
	}
	return m.PerPeriod
}
