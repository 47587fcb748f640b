package costs

import (
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// AccumulatedPoint is one step of a running-total cost series
type AccumulatedPoint struct {
	Date     time.Time       `json:"date"`
	Value    decimal.Decimal `json:"value"`
	Forecast bool            `json:"forecast"`
}

// Label returns the chart label of the point, e.g. "07 Mar"
func (p AccumulatedPoint) Label() string {
	return p.Date.Format("02 Jan")
}

// Accumulate builds the accumulated-cost series: the running total over the
// actual records in date order, continued by the forecast records dated after
// the last actual date. Forecast records on or before that date are dropped so
// nothing is counted twice.
func Accumulate(actual, forecast []CostRecord) ([]AccumulatedPoint, error) {
	if len(actual) == 0 {
		return nil, EmptyInputError{Op: "accumulate"}
	}

	sorted := sortedByDate(actual)
	lastActual := DateOf(sorted[len(sorted)-1].Date)

	tail := sortedByDate(lo.Filter(forecast, func(r CostRecord, _ int) bool {
		return DateOf(r.Date).After(lastActual)
	}))

	points := make([]AccumulatedPoint, 0, len(sorted)+len(tail))
	acc := decimal.Zero
	for _, r := range sorted {
		acc = acc.Add(r.Cost)
		points = append(points, AccumulatedPoint{Date: DateOf(r.Date), Value: round2(acc)})
	}
	for _, r := range tail {
		acc = acc.Add(r.Cost)
		points = append(points, AccumulatedPoint{Date: DateOf(r.Date), Value: round2(acc), Forecast: true})
	}

	return points, nil
}

// sortedByDate returns a date-ordered copy; records sharing a date keep their order
func sortedByDate(records []CostRecord) []CostRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b CostRecord) int {
		return DateOf(a.Date).Compare(DateOf(b.Date))
	})
	return sorted
}
