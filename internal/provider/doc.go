// Package provider defines the cost data source abstraction.
//
// The collector only talks to a CloudProvider, which keeps the Azure client
// replaceable by test doubles:
//
//	type CloudProvider interface {
//		QueryCosts(ctx context.Context) ([]CostRecord, error)
//		QueryForecast(ctx context.Context) ([]CostRecord, error)
//		Name() ProviderType
//		AccountCount() int
//	}
//
// A CostRecord is one day of spend for one combination of the grouping
// dimensions requested from the provider (resource, service, meter, ...).
// Records are flat; the report package derives the daily series, the
// breakdowns and the resource hierarchy from them.
//
// Costs are shopspring/decimal values so that sums over thousands of records
// stay exact.
package provider
