package costs

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// MeterNode is one metered line item beneath a resource
type MeterNode struct {
	ServiceName string          `json:"service_name"`
	ServiceTier string          `json:"service_tier"`
	Meter       string          `json:"meter"`
	Cost        decimal.Decimal `json:"cost"`
	Currency    string          `json:"currency"`
}

// ResourceNode is a resource with its aggregate cost and its meters
type ResourceNode struct {
	ResourceID        string          `json:"resource_id"`
	ResourceType      string          `json:"resource_type"`
	Location          string          `json:"location"`
	ResourceGroupName string          `json:"resource_group_name"`
	Tags              []string        `json:"tags,omitempty"`
	Cost              decimal.Decimal `json:"cost"`
	Currency          string          `json:"currency"`
	Meters            []MeterNode     `json:"meters"`
}

// Name returns the last segment of the resource id
func (n ResourceNode) Name() string {
	return n.ResourceID[strings.LastIndex(n.ResourceID, "/")+1:]
}

// BuildHierarchy groups per-meter cost items by resource id. Resource metadata
// comes from the first item seen for each id. Resources and their meters are
// ordered by descending cost; ties keep their input order.
func BuildHierarchy(items []ResourceCostItem) []ResourceNode {
	nodes := make([]ResourceNode, 0)
	index := make(map[string]int)

	for _, item := range items {
		i, ok := index[item.ResourceID]
		if !ok {
			i = len(nodes)
			index[item.ResourceID] = i
			nodes = append(nodes, ResourceNode{
				ResourceID:        item.ResourceID,
				ResourceType:      item.ResourceType,
				Location:          item.Location,
				ResourceGroupName: item.ResourceGroupName,
				Tags:              slices.Clone(item.Tags),
				Cost:              decimal.Zero,
				Currency:          item.Currency,
			})
		}
		nodes[i].Cost = nodes[i].Cost.Add(item.Cost)
		nodes[i].Meters = append(nodes[i].Meters, MeterNode{
			ServiceName: item.ServiceName,
			ServiceTier: item.ServiceTier,
			Meter:       item.Meter,
			Cost:        item.Cost,
			Currency:    item.Currency,
		})
	}

	for i := range nodes {
		slices.SortStableFunc(nodes[i].Meters, func(a, b MeterNode) int {
			return b.Cost.Cmp(a.Cost)
		})
	}
	slices.SortStableFunc(nodes, func(a, b ResourceNode) int {
		return b.Cost.Cmp(a.Cost)
	})

	return nodes
}
