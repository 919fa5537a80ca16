// Package aggregation derives report figures from a set of expenses.
// Every function is pure: the result depends only on the arguments.
package aggregation

import (
	"time"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

// FilterByTimeFrame returns the expenses that fall inside frame as seen at now.
// Input order is preserved. Unknown frames behave like the default frame.
func FilterByTimeFrame(expenses []entity.Expense, frame entity.TimeFrame, now time.Time) []entity.Expense {
	include := windowFor(frame, now)

	filtered := make([]entity.Expense, 0, len(expenses))
	for _, e := range expenses {
		if include(e.Date) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func windowFor(frame entity.TimeFrame, now time.Time) func(time.Time) bool {
	loc := now.Location()

	switch frame {
	case entity.TimeFrameThisWeek:
		year, week := now.ISOWeek()
		return func(d time.Time) bool {
			y, w := d.In(loc).ISOWeek()
			return y == year && w == week
		}
	case entity.TimeFrameLast30Days:
		return sinceDaysAgo(now, 30)
	case entity.TimeFrameLast90Days:
		return sinceDaysAgo(now, 90)
	default:
		return func(d time.Time) bool {
			local := d.In(loc)
			return local.Year() == now.Year() && local.Month() == now.Month()
		}
	}
}

// sinceDaysAgo includes every date at or after now minus days. There is no
// upper bound, so future-dated expenses are kept.
func sinceDaysAgo(now time.Time, days int) func(time.Time) bool {
	lower, ok := LowerBound(now, days)
	if !ok {
		lower = now
	}
	return func(d time.Time) bool {
		return !d.Before(lower)
	}
}

// LowerBound returns now minus days calendar days. It reports false when the
// arithmetic does not land strictly before now, which happens when the
// result overflows the representable range.
func LowerBound(now time.Time, days int) (time.Time, bool) {
	if days <= 0 {
		return now, false
	}
	lower := now.AddDate(0, 0, -days)
	if !lower.Before(now) {
		return now, false
	}
	return lower, true
}
