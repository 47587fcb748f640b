package provider

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ProviderType represents a cloud provider
type ProviderType string

// Supported cloud providers
const (
	ProviderAzure ProviderType = "azure"
)

// CloudProvider is the interface a cost data source must implement
type CloudProvider interface {
	// QueryCosts retrieves actual daily cost data for the configured date range
	QueryCosts(ctx context.Context) ([]CostRecord, error)

	// QueryForecast retrieves forecasted daily costs from tomorrow until the end
	// of the current month. Providers without forecasts return nil, nil.
	QueryForecast(ctx context.Context) ([]CostRecord, error)

	// Name returns the provider name
	Name() ProviderType

	// AccountCount returns the number of accounts/subscriptions being monitored
	AccountCount() int
}

// CostRecord represents a single daily cost entry from a cloud provider.
// Which optional fields are populated depends on the grouping requested.
type CostRecord struct {
	Date        time.Time       // Calendar date, UTC midnight
	Provider    string          // Cloud provider name
	AccountID   string          // Subscription ID
	AccountName string          // Friendly name for the subscription
	Cost        decimal.Decimal // Cost amount
	Currency    string          // Billing currency

	ResourceID       string   // Full resource identifier
	ResourceName     string   // Last segment of ResourceID
	ResourceType     string   // microsoft.storage/storageaccounts, etc.
	ResourceGroup    string   // Resource group name
	ResourceLocation string   // Region/location
	Tags             []string // "key:value" pairs

	Service     string // Service name (Storage, Virtual Machines, etc.)
	ServiceTier string // Service tier (Premium SSD Managed Disks, etc.)
	Meter       string // Meter name
	ChargeType  string // Usage, Purchase, Refund, etc.
}
