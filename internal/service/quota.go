package service

import (
	"time"

	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/model"
)

// QuotaLimits holds the per-calendar-month award cap for each medal type.
// These are configuration constants, not data.
type QuotaLimits struct {
	Gold   int
	Silver int
	Bronze int
}

// DefaultQuotaLimits are the school's standard monthly caps.
var DefaultQuotaLimits = QuotaLimits{Gold: 2, Silver: 2, Bronze: 48}

// Limit returns the monthly cap for a medal type.
func (q QuotaLimits) Limit(t model.MedalType) int {
	switch t {
	case model.MedalGold:
		return q.Gold
	case model.MedalSilver:
		return q.Silver
	case model.MedalBronze:
		return q.Bronze
	}
	return 0
}

// monthBounds returns the half-open interval [start, end) of the calendar
// month containing now, in server-local time.
func monthBounds(now time.Time) (time.Time, time.Time) {
	now = now.Local()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 1, 0)
}
