package notifier

import (
	"time"

	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/pkg/utils"
)

// EffectivePeriodicity returns how many days must pass between reminders.
// Overdue debts use overdueDays whatever their own setting is. ok is false
// when a non-overdue debt has no periodicity configured.
func EffectivePeriodicity(status domain.DebtStatus, configured *int, overdueDays int) (days int, ok bool) {
	if status == domain.DebtStatusOverdue {
		return overdueDays, true
	}
	if configured == nil {
		return 0, false
	}
	return *configured, true
}

// Eligible reports whether debt is due a reminder at now, given its projected status.
func Eligible(debt *domain.Debt, status domain.DebtStatus, now time.Time, overdueDays int) bool {
	if status == domain.DebtStatusPaid {
		return false
	}

	periodicity, ok := EffectivePeriodicity(status, debt.NotifyPeriodicity, overdueDays)
	if !ok {
		return false
	}
	if debt.LastNotification == nil {
		return true
	}

	return utils.DaysBetweenFloor(*debt.LastNotification, now) >= periodicity
}
