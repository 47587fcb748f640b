// Package costs implements the aggregation engine behind the cost summary.
//
// Every function in this package is a pure computation over caller-owned
// slices: inputs are never mutated and results are freshly allocated, so the
// functions may be called concurrently without coordination.
//
// The engine is made of four independent parts:
//   - Summarize: rolling time-window totals (today, yesterday, month to date,
//     last 7 and last 30 days) with a fallback to the latest available date
//     when the billing data has not caught up with the current day
//   - Accumulate: a running-total series over actual costs continued by a
//     forecast tail, for charting
//   - Trim: collapses a breakdown into its significant entries plus a
//     synthetic "Other" bucket under a cost-share threshold
//   - BuildHierarchy: groups per-meter resource costs into a resource -> meter
//     tree ordered by descending cost
//
// Amounts are shopspring/decimal values. Sums are exact and are rounded to two
// places only when emitted.
//
// Example usage:
//
//	summary, err := costs.Summarize(records, time.Now())
//	if errors.Is(err, costs.ErrEmptyInput) {
//		fmt.Println("no data for the selected period")
//		return
//	}
//	fmt.Printf("%s: %s %s\n", summary.Today.Label, summary.Today.Cost.StringFixed(2), summary.Currency)
package costs
