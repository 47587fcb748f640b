package costs

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Default window labels
const (
	TodayLabel      = "Today"
	YesterdayLabel  = "Yesterday"
	Last7DaysLabel  = "Last 7 days"
	Last30DaysLabel = "Last 30 days"
)

// Window is a labelled total over a relative date range
type Window struct {
	Label string          `json:"label"`
	Cost  decimal.Decimal `json:"cost"`
}

// Summary holds the rolling time-window totals of a cost series
type Summary struct {
	// EffectiveToday is the anchor of every window. It equals the current date
	// unless the data stops earlier, in which case it is the latest date present.
	EffectiveToday time.Time `json:"effective_today"`
	// Stale is set when EffectiveToday fell back to the latest available date
	Stale bool `json:"stale"`

	Today       Window `json:"today"`
	Yesterday   Window `json:"yesterday"`
	MonthToDate Window `json:"month_to_date"`
	Last7Days   Window `json:"last_7_days"`
	Last30Days  Window `json:"last_30_days"`

	// From and To span the whole input series, independent of EffectiveToday
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	Currency string    `json:"currency"`
}

// Windows returns the summary windows in display order
func (s Summary) Windows() []Window {
	return []Window{s.Today, s.Yesterday, s.MonthToDate, s.Last7Days, s.Last30Days}
}

// EffectiveToday returns the date "today" windows anchor on: the UTC calendar
// date of now, or the latest date in records when the data has not reached now yet.
// The boolean reports whether the fallback happened.
func EffectiveToday(records []CostRecord, now time.Time) (time.Time, bool, error) {
	if len(records) == 0 {
		return time.Time{}, false, EmptyInputError{Op: "effective today"}
	}

	today := DateOf(now.UTC())
	latest := DateOf(lo.MaxBy(records, func(a, b CostRecord) bool {
		return DateOf(a.Date).After(DateOf(b.Date))
	}).Date)

	if today.After(latest) {
		return latest, true, nil
	}
	return today, false, nil
}

// Summarize computes the time-window totals of records relative to now
func Summarize(records []CostRecord, now time.Time) (Summary, error) {
	today, stale, err := EffectiveToday(records, now)
	if err != nil {
		return Summary{}, EmptyInputError{Op: "summarize"}
	}

	yesterday := today.AddDate(0, 0, -1)
	monthStart := today.AddDate(0, 0, -today.Day()+1)

	todayLabel, yesterdayLabel := TodayLabel, YesterdayLabel
	if stale {
		todayLabel = today.Format(DateFormat)
		yesterdayLabel = yesterday.Format(DateFormat)
	}

	from := lo.MinBy(records, func(a, b CostRecord) bool {
		return DateOf(a.Date).Before(DateOf(b.Date))
	}).Date
	to := lo.MaxBy(records, func(a, b CostRecord) bool {
		return DateOf(a.Date).After(DateOf(b.Date))
	}).Date

	return Summary{
		EffectiveToday: today,
		Stale:          stale,
		Today: Window{
			Label: todayLabel,
			Cost:  sumWhere(records, func(d time.Time) bool { return d.Equal(today) }),
		},
		Yesterday: Window{
			Label: yesterdayLabel,
			Cost:  sumWhere(records, func(d time.Time) bool { return d.Equal(yesterday) }),
		},
		MonthToDate: Window{
			Label: "Since start of " + today.Format("Jan"),
			Cost:  sumSince(records, monthStart),
		},
		Last7Days: Window{
			Label: Last7DaysLabel,
			Cost:  sumSince(records, today.AddDate(0, 0, -7)),
		},
		Last30Days: Window{
			Label: Last30DaysLabel,
			Cost:  sumSince(records, today.AddDate(0, 0, -30)),
		},
		From:     DateOf(from),
		To:       DateOf(to),
		Currency: records[0].Currency,
	}, nil
}

// sumSince sums records dated on or after start. The lower bound is inclusive,
// so a "last 7 days" window covers 8 calendar days.
func sumSince(records []CostRecord, start time.Time) decimal.Decimal {
	return sumWhere(records, func(d time.Time) bool { return !d.Before(start) })
}

func sumWhere(records []CostRecord, match func(date time.Time) bool) decimal.Decimal {
	total := lo.Reduce(records, func(acc decimal.Decimal, r CostRecord, _ int) decimal.Decimal {
		if match(DateOf(r.Date)) {
			return acc.Add(r.Cost)
		}
		return acc
	}, decimal.Zero)
	return round2(total)
}
