package report

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/zgpcy/azure-cost-summary/internal/costs"
	"github.com/zgpcy/azure-cost-summary/internal/provider"
)

// Dimension identifies a breakdown attribute of a cost record
type Dimension string

// Breakdown dimensions
const (
	DimensionService       Dimension = "service_name"
	DimensionLocation      Dimension = "location"
	DimensionResourceGroup Dimension = "resource_group"
)

// Dimensions lists the breakdowns of a report in display order
var Dimensions = []Dimension{DimensionService, DimensionLocation, DimensionResourceGroup}

// UnassignedName replaces blank dimension values
const UnassignedName = "Unassigned"

// Options controls report assembly
type Options struct {
	// OthersCutoff is the cost share under which breakdown entries fold into "Other"
	OthersCutoff float64
}

// Report is everything the summary surfaces need, computed in one pass
type Report struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Summary     costs.Summary            `json:"summary"`
	Accumulated []costs.AccumulatedPoint `json:"accumulated"`

	ByServiceName   []costs.NamedCostItem `json:"by_service_name"`
	ByLocation      []costs.NamedCostItem `json:"by_location"`
	ByResourceGroup []costs.NamedCostItem `json:"by_resource_group"`

	Resources []costs.ResourceNode `json:"resources"`
}

// Breakdown returns the trimmed breakdown for d
func (r *Report) Breakdown(d Dimension) []costs.NamedCostItem {
	switch d {
	case DimensionService:
		return r.ByServiceName
	case DimensionLocation:
		return r.ByLocation
	case DimensionResourceGroup:
		return r.ByResourceGroup
	default:
		return nil
	}
}

// Build assembles a report from actual and forecast provider records.
// It fails with costs.ErrEmptyInput when there are no actual records.
func Build(records, forecast []provider.CostRecord, now time.Time, opts Options) (*Report, error) {
	daily := DailyTotals(records)

	summary, err := costs.Summarize(daily, now)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize costs: %w", err)
	}

	accumulated, err := costs.Accumulate(daily, DailyTotals(forecast))
	if err != nil {
		return nil, fmt.Errorf("failed to accumulate costs: %w", err)
	}

	return &Report{
		GeneratedAt:     now,
		Summary:         summary,
		Accumulated:     accumulated,
		ByServiceName:   costs.Trim(Breakdown(records, DimensionService), opts.OthersCutoff),
		ByLocation:      costs.Trim(Breakdown(records, DimensionLocation), opts.OthersCutoff),
		ByResourceGroup: costs.Trim(Breakdown(records, DimensionResourceGroup), opts.OthersCutoff),
		Resources:       costs.BuildHierarchy(ResourceItems(records)),
	}, nil
}

// DailyCosts maps provider records to the engine's dated cost records
func DailyCosts(records []provider.CostRecord) []costs.CostRecord {
	return lo.Map(records, func(r provider.CostRecord, _ int) costs.CostRecord {
		return costs.CostRecord{
			Date:     costs.DateOf(r.Date),
			Cost:     r.Cost,
			Currency: r.Currency,
		}
	})
}

// DailyTotals sums records per calendar date, in first-seen order, so that
// the accumulated series has one point per day however the query was grouped
func DailyTotals(records []provider.CostRecord) []costs.CostRecord {
	var totals []costs.CostRecord
	index := make(map[time.Time]int)

	for _, r := range DailyCosts(records) {
		i, ok := index[r.Date]
		if !ok {
			index[r.Date] = len(totals)
			totals = append(totals, r)
			continue
		}
		totals[i].Cost = totals[i].Cost.Add(r.Cost)
	}

	return totals
}

// Breakdown sums record costs per value of d, in first-seen order
func Breakdown(records []provider.CostRecord, d Dimension) []costs.NamedCostItem {
	var items []costs.NamedCostItem
	index := make(map[string]int)

	for _, r := range records {
		name := dimensionValue(r, d)
		if name == "" {
			name = UnassignedName
		}
		i, ok := index[name]
		if !ok {
			i = len(items)
			index[name] = i
			items = append(items, costs.NamedCostItem{Name: name, Cost: decimal.Zero})
		}
		items[i].Cost = items[i].Cost.Add(r.Cost)
	}

	return items
}

func dimensionValue(r provider.CostRecord, d Dimension) string {
	switch d {
	case DimensionService:
		return r.Service
	case DimensionLocation:
		return r.ResourceLocation
	case DimensionResourceGroup:
		return r.ResourceGroup
	default:
		return ""
	}
}

type meterKey struct {
	resourceID  string
	service     string
	serviceTier string
	meter       string
}

// ResourceItems collapses the daily records of each resource meter into one
// item. Records without a resource id are skipped.
func ResourceItems(records []provider.CostRecord) []costs.ResourceCostItem {
	var items []costs.ResourceCostItem
	index := make(map[meterKey]int)

	for _, r := range records {
		if r.ResourceID == "" {
			continue
		}
		key := meterKey{r.ResourceID, r.Service, r.ServiceTier, r.Meter}
		i, ok := index[key]
		if !ok {
			i = len(items)
			index[key] = i
			items = append(items, costs.ResourceCostItem{
				ResourceID:        r.ResourceID,
				ResourceType:      r.ResourceType,
				Location:          r.ResourceLocation,
				ResourceGroupName: r.ResourceGroup,
				Tags:              r.Tags,
				ServiceName:       r.Service,
				ServiceTier:       r.ServiceTier,
				Meter:             r.Meter,
				Cost:              decimal.Zero,
				Currency:          r.Currency,
			})
		}
		items[i].Cost = items[i].Cost.Add(r.Cost)
	}

	return items
}
