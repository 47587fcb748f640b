// Package config provides configuration management for the Azure Cost Summary service.
//
// This package handles loading configuration from YAML files, applying
// environment variable overrides, setting defaults, and validating the
// configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (highest priority)
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// Supported environment variables:
//   - AZURE_COST_CURRENCY: Fallback currency when the API returns none
//   - AZURE_COST_REFRESH_INTERVAL: Refresh interval in seconds (minimum: 60)
//   - AZURE_COST_HTTP_PORT: HTTP server port (1-65535)
//   - AZURE_COST_LOG_LEVEL: Log level (debug, info, warn, error)
//   - AZURE_COST_LOG_FORMAT: Log format (json, text)
//   - AZURE_COST_END_DATE_OFFSET: Days to offset the end date
//   - AZURE_COST_DAYS_TO_QUERY: Number of days to query (minimum: 1)
//   - AZURE_COST_OTHERS_CUTOFF: Breakdown share folded into "Other" (0.02 = 2%)
//   - AZURE_COST_FORECAST: Query forecast costs (true, false)
//   - AZURE_COST_SUBSCRIPTIONS: Comma-separated subscription IDs or id:name pairs
//
// Example configuration file (config.yaml):
//
//	subscriptions:
//	  - id: "sub-123"
//	    name: "Production"
//
//	refresh_interval: 3600
//	http_port: 8080
//	log_level: "info"
//
//	date_range:
//	  end_date_offset: 0    # Up to today
//	  days_to_query: 31     # Covers the last-30-days window
//
//	report:
//	  others_cutoff: 0.02
//	  forecast: true
//
//	group_by:
//	  groups:
//	    - type: "Dimension"
//	      name: "ResourceId"
//	    - type: "Dimension"
//	      name: "ServiceName"
//
// When group_by.groups is empty the resource dimensions in DefaultGroups are used.
package config
