package costs

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the short date layout used for labels and date keys
const DateFormat = "2006-01-02"

// CostRecord is one day's spend. Several records may share a date.
type CostRecord struct {
	Date     time.Time       `json:"date"`
	Cost     decimal.Decimal `json:"cost"`
	Currency string          `json:"currency"`
}

// NamedCostItem is spend attributed to one category value (service, location, resource group)
type NamedCostItem struct {
	Name string          `json:"name"`
	Cost decimal.Decimal `json:"cost"`
}

// ResourceCostItem is one meter's contribution to one resource's cost
type ResourceCostItem struct {
	ResourceID        string          `json:"resource_id"`
	ResourceType      string          `json:"resource_type"`
	Location          string          `json:"location"`
	ResourceGroupName string          `json:"resource_group_name"`
	Tags              []string        `json:"tags,omitempty"`
	ServiceName       string          `json:"service_name"`
	ServiceTier       string          `json:"service_tier"`
	Meter             string          `json:"meter"`
	Cost              decimal.Decimal `json:"cost"`
	Currency          string          `json:"currency"`
}

// DateOf truncates t to its calendar date, expressed as UTC midnight.
// The wall-clock date of t is kept; no timezone conversion happens.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// round2 rounds half to even, matching the rounding of the billing reports
func round2(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}
