package services

import (
	"github.com/isdelr/despesas-be/internal/models"
	"github.com/shopspring/decimal"
)

// CategoryTotals is the category-share report consumed by the dashboard.
type CategoryTotals struct {
	Labels []string  `json:"labels"`
	Totals []float64 `json:"totals"`
}

// AggregateByCategory groups expenses by category name and sums their
// amounts. Labels appear in the order each category is first encountered in
// the input, so a fixed input order gives a fixed output order.
func AggregateByCategory(expenses []models.Expense) CategoryTotals {
	index := make(map[string]int)
	var sums []decimal.Decimal
	out := CategoryTotals{Labels: []string{}, Totals: []float64{}}

	for _, e := range expenses {
		i, ok := index[e.CategoryName]
		if !ok {
			i = len(out.Labels)
			index[e.CategoryName] = i
			out.Labels = append(out.Labels, e.CategoryName)
			sums = append(sums, decimal.Zero)
		}
		sums[i] = sums[i].Add(decimal.NewFromFloat(e.Amount))
	}

	for _, sum := range sums {
		out.Totals = append(out.Totals, sum.Round(2).InexactFloat64())
	}
	return out
}
