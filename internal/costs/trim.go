package costs

import (
	"slices"

	"github.com/shopspring/decimal"
)

// OtherName is the synthetic bucket that absorbs trimmed categories
const OtherName = "Other"

// Trim collapses a breakdown into its significant entries. Items whose share
// of the total is below threshold (0.02 = 2%) are folded into a trailing
// "Other" item; the rest are ordered by descending cost. An input item already
// named "Other" is always merged into the bucket, whatever its share, so it
// is placed last rather than in cost order.
//
// A threshold <= 0 disables folding and only sorts. A zero total disables
// folding and sorting altogether.
func Trim(items []NamedCostItem, threshold float64) []NamedCostItem {
	if threshold <= 0 {
		return sortedByCost(items)
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Cost)
	}
	if total.IsZero() {
		return slices.Clone(items)
	}

	limit := decimal.NewFromFloat(threshold)
	other := decimal.Zero
	kept := make([]NamedCostItem, 0, len(items)+1)
	for _, item := range items {
		if item.Name == OtherName || item.Cost.Div(total).LessThan(limit) {
			other = other.Add(item.Cost)
			continue
		}
		kept = append(kept, item)
	}

	kept = sortedByCost(kept)
	if other.IsPositive() {
		kept = append(kept, NamedCostItem{Name: OtherName, Cost: other})
	}
	return kept
}

func sortedByCost(items []NamedCostItem) []NamedCostItem {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b NamedCostItem) int {
		return b.Cost.Cmp(a.Cost)
	})
	return sorted
}
