// Package collector implements a Prometheus collector for the cost summary report.
//
// CostCollector periodically fetches actual and forecast costs from a
// provider.CloudProvider, builds a report.Report from them and caches it so
// Prometheus scrapes and the JSON API are served from memory.
//
// Report metrics:
//   - azure_cost_window: rolling window totals (today, yesterday, month to date, last 7 and 30 days)
//   - azure_cost_accumulated: accumulated daily cost, kind="actual" or kind="forecast"
//   - azure_cost_breakdown: trimmed breakdowns by service name, location and resource group
//   - azure_cost_resource, azure_cost_resource_meter: per-resource costs, only with
//     enable_high_cardinality_metrics
//
// Operational metrics:
//   - up: health status (1 = success, 0 = failure) with provider label
//   - azure_cost_summary_scrape_duration_seconds
//   - azure_cost_summary_scrape_errors_total
//   - azure_cost_summary_last_scrape_timestamp_seconds
//   - azure_cost_summary_records_count
//   - azure_cost_summary_build_info
//
// A failed cost query marks the collector as not ready. A failed forecast query
// only drops the forecast from the report.
//
// Example usage:
//
//	costCollector := collector.NewCostCollector(azureClient, cfg, log)
//	prometheus.MustRegister(costCollector)
//	costCollector.StartBackgroundRefresh(ctx)
//
//	if rep := costCollector.Report(); rep != nil {
//		fmt.Println(rep.Summary.Today.Cost)
//	}
package collector
