// Package azure provides the Azure Cost Management data source.
//
// Client queries every configured subscription for daily actual costs and
// for the month-end forecast, and parses the results into provider.CostRecord
// values. It handles:
//   - Authentication using Azure Default Credentials
//   - Actual cost queries over the configured date range, grouped by the
//     configured dimensions
//   - Forecast queries from tomorrow until the end of the month
//   - Retries with exponential backoff and per-call timeouts
//   - Partial results when some subscriptions fail
//
// Example usage:
//
//	client, err := azure.NewClient(cfg, log)
//	if err != nil {
//		log.Error("Failed to create Azure client", "error", err)
//		os.Exit(1)
//	}
//
//	records, err := client.QueryCosts(ctx)
//	if err != nil {
//		return err
//	}
//	forecast, err := client.QueryForecast(ctx)
package azure
