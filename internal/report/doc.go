// Package report turns flat provider cost records into a cost summary report.
//
// Provider records carry every grouping dimension on one row per day. This
// package derives the engine inputs from them (the daily series, one
// breakdown per dimension and one item per resource meter) and runs the
// costs package over them:
//
//	rep, err := report.Build(records, forecast, time.Now(), report.Options{OthersCutoff: 0.02})
//	if errors.Is(err, costs.ErrEmptyInput) {
//		// no data for the selected period
//	}
package report
