package aggregation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

// DailyAmount is the spending of one calendar day.
type DailyAmount struct {
	Day    time.Time
	Amount decimal.Decimal
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

// DailyTrend buckets expenses by calendar day in each expense's own location
// and returns the sums in ascending day order. Days without expenses are omitted.
func DailyTrend(expenses []entity.Expense) []DailyAmount {
	index := make(map[civilDate]int)
	trend := make([]DailyAmount, 0)

	for _, e := range expenses {
		y, m, d := e.Date.Date()
		key := civilDate{year: y, month: m, day: d}

		if i, ok := index[key]; ok {
			trend[i].Amount = trend[i].Amount.Add(e.Amount)
			continue
		}
		index[key] = len(trend)
		trend = append(trend, DailyAmount{
			Day:    time.Date(y, m, d, 0, 0, 0, 0, e.Date.Location()),
			Amount: e.Amount,
		})
	}

	sort.Slice(trend, func(i, j int) bool {
		return civilBefore(trend[i].Day, trend[j].Day)
	})
	return trend
}

func civilBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
