package aggregation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

// CategoryAmount is the summed amount of one category.
type CategoryAmount struct {
	Category entity.Category
	Amount   decimal.Decimal
}

// CategoryShare is a category's sum together with its share of the total.
type CategoryShare struct {
	Category entity.Category
	Amount   decimal.Decimal
	Percent  float64
}

// TotalAmount sums every expense. An empty input yields zero.
func TotalAmount(expenses []entity.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// SumByCategory groups expenses by category. Categories without expenses are absent.
func SumByCategory(expenses []entity.Expense) map[entity.Category]decimal.Decimal {
	sums := make(map[entity.Category]decimal.Decimal)
	for _, e := range expenses {
		sums[e.Category] = sums[e.Category].Add(e.Amount)
	}
	return sums
}

// CategoryOrder lists categories in the order they first appear in expenses.
func CategoryOrder(expenses []entity.Expense) []entity.Category {
	seen := make(map[entity.Category]struct{})
	order := make([]entity.Category, 0)
	for _, e := range expenses {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		order = append(order, e.Category)
	}
	return order
}

// RankCategories returns every category sum, largest first. Ties keep the
// first-appearance order of the input.
func RankCategories(expenses []entity.Expense) []CategoryAmount {
	sums := SumByCategory(expenses)
	order := CategoryOrder(expenses)

	ranked := make([]CategoryAmount, len(order))
	for i, c := range order {
		ranked[i] = CategoryAmount{Category: c, Amount: sums[c]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount.GreaterThan(ranked[j].Amount)
	})
	return ranked
}

// TopCategories returns at most limit entries of RankCategories.
func TopCategories(expenses []entity.Expense, limit int) []CategoryAmount {
	if limit <= 0 {
		return []CategoryAmount{}
	}
	ranked := RankCategories(expenses)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// CategoryPercentages returns each category's share of the grand total in
// percent. A zero grand total yields zero for every category.
func CategoryPercentages(sums map[entity.Category]decimal.Decimal) map[entity.Category]float64 {
	total := decimal.Zero
	for _, amount := range sums {
		total = total.Add(amount)
	}

	percentages := make(map[entity.Category]float64, len(sums))
	for c, amount := range sums {
		percentages[c] = percentOf(amount, total)
	}
	return percentages
}

// CategoryBreakdown ranks categories and attaches their share of the total.
func CategoryBreakdown(expenses []entity.Expense) []CategoryShare {
	ranked := RankCategories(expenses)
	total := TotalAmount(expenses)

	shares := make([]CategoryShare, len(ranked))
	for i, r := range ranked {
		shares[i] = CategoryShare{
			Category: r.Category,
			Amount:   r.Amount,
			Percent:  percentOf(r.Amount, total),
		}
	}
	return shares
}

func percentOf(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
