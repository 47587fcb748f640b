package config

import (
	"os"
	"path/filepath"
	"testing"
)

// writeConfig writes content to a temporary config.yaml and returns its path
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}
	return configPath
}

func validConfig() *Config {
	cutoff := 0.02
	return &Config{
		Subscriptions:   []Subscription{{ID: "test", Name: "test"}},
		RefreshInterval: 3600,
		HTTPPort:        8080,
		DateRange:       DateRange{DaysToQuery: 31},
		Report:          Report{OthersCutoff: &cutoff},
		APITimeout:      30,
	}
}

func TestLoad_ValidConfig_Success(t *testing.T) {
	configPath := writeConfig(t, `
subscriptions:
  - id: "test-sub-1"
    name: "test-subscription"

currency: "USD"

date_range:
  end_date_offset: 1
  days_to_query: 40

report:
  others_cutoff: 0.05
  forecast: false

refresh_interval: 7200
http_port: 9100
log_level: "debug"
log_format: "text"
enable_high_cardinality_metrics: true

group_by:
  groups:
    - type: Dimension
      name: ServiceName
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Subscriptions", len(cfg.Subscriptions), 1},
		{"SubscriptionID", cfg.Subscriptions[0].ID, "test-sub-1"},
		{"Currency", cfg.Currency, "USD"},
		{"EndDateOffset", *cfg.DateRange.EndDateOffset, 1},
		{"DaysToQuery", cfg.DateRange.DaysToQuery, 40},
		{"OthersCutoff", cfg.Report.Cutoff(), 0.05},
		{"Forecast", cfg.Report.ForecastEnabled(), false},
		{"RefreshInterval", cfg.RefreshInterval, 7200},
		{"HTTPPort", cfg.HTTPPort, 9100},
		{"LogLevel", cfg.LogLevel, "debug"},
		{"LogFormat", cfg.LogFormat, "text"},
		{"HighCardinality", cfg.HighCardinalityEnabled(), true},
		{"Groups", len(cfg.GroupBy.Groups), 1},
		{"GroupingEnabled", cfg.GroupBy.IsEnabled(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_ApplyDefaults_Success(t *testing.T) {
	configPath := writeConfig(t, `
subscriptions:
  - id: "test-sub-1"
    name: "test"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
		desc string
	}{
		{"Currency", cfg.Currency, DefaultCurrency, "default currency"},
		{"EndDateOffset", *cfg.DateRange.EndDateOffset, 0, "default end date offset"},
		{"DaysToQuery", cfg.DateRange.DaysToQuery, 31, "default days to query"},
		{"RefreshInterval", cfg.RefreshInterval, 3600, "default refresh interval"},
		{"HTTPPort", cfg.HTTPPort, 8080, "default HTTP port"},
		{"LogLevel", cfg.LogLevel, "info", "default log level"},
		{"LogFormat", cfg.LogFormat, "json", "default log format"},
		{"APITimeout", cfg.APITimeout, 30, "default API timeout"},
		{"OthersCutoff", cfg.Report.Cutoff(), 0.02, "default others cutoff"},
		{"Forecast", cfg.Report.ForecastEnabled(), true, "forecast enabled by default"},
		{"HighCardinality", cfg.HighCardinalityEnabled(), false, "per-resource metrics disabled by default"},
		{"Groups", len(cfg.GroupBy.Groups), len(DefaultGroups), "default resource grouping"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s: got %v, want %v", tt.desc, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_GroupingDisabled_NoDefaultGroups(t *testing.T) {
	configPath := writeConfig(t, `
subscriptions:
  - id: "test-sub-1"
    name: "test"
group_by:
  enabled: false
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if cfg.GroupBy.IsEnabled() {
		t.Error("GroupBy.IsEnabled() = true, want false")
	}
	if len(cfg.GroupBy.Groups) != 0 {
		t.Errorf("Expected no groups when grouping is disabled, got %d", len(cfg.GroupBy.Groups))
	}
}

func TestLoad_EnvOverrides_Success(t *testing.T) {
	configPath := writeConfig(t, `
subscriptions:
  - id: "test-sub-1"
    name: "test"
currency: "EUR"
refresh_interval: 3600
http_port: 8080
`)

	t.Setenv("AZURE_COST_CURRENCY", "USD")
	t.Setenv("AZURE_COST_REFRESH_INTERVAL", "7200")
	t.Setenv("AZURE_COST_HTTP_PORT", "9090")
	t.Setenv("AZURE_COST_LOG_LEVEL", "debug")
	t.Setenv("AZURE_COST_LOG_FORMAT", "text")
	t.Setenv("AZURE_COST_END_DATE_OFFSET", "2")
	t.Setenv("AZURE_COST_DAYS_TO_QUERY", "60")
	t.Setenv("AZURE_COST_OTHERS_CUTOFF", "0.1")
	t.Setenv("AZURE_COST_FORECAST", "false")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if cfg.Currency != "USD" {
		t.Errorf("Currency = %v, want USD (env override)", cfg.Currency)
	}
	if cfg.RefreshInterval != 7200 {
		t.Errorf("RefreshInterval = %v, want 7200 (env override)", cfg.RefreshInterval)
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("HTTPPort = %v, want 9090 (env override)", cfg.HTTPPort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug (env override)", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %v, want text (env override)", cfg.LogFormat)
	}
	if *cfg.DateRange.EndDateOffset != 2 {
		t.Errorf("EndDateOffset = %v, want 2 (env override)", *cfg.DateRange.EndDateOffset)
	}
	if cfg.DateRange.DaysToQuery != 60 {
		t.Errorf("DaysToQuery = %v, want 60 (env override)", cfg.DateRange.DaysToQuery)
	}
	if cfg.Report.Cutoff() != 0.1 {
		t.Errorf("OthersCutoff = %v, want 0.1 (env override)", cfg.Report.Cutoff())
	}
	if cfg.Report.ForecastEnabled() {
		t.Error("ForecastEnabled() = true, want false (env override)")
	}
}

func TestLoad_InvalidEnvOverride_Error(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"AZURE_COST_REFRESH_INTERVAL", "hourly"},
		{"AZURE_COST_HTTP_PORT", "http"},
		{"AZURE_COST_END_DATE_OFFSET", "yesterday"},
		{"AZURE_COST_DAYS_TO_QUERY", "month"},
		{"AZURE_COST_OTHERS_CUTOFF", "two percent"},
		{"AZURE_COST_FORECAST", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			configPath := writeConfig(t, `
subscriptions:
  - id: "test-sub-1"
    name: "test"
`)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(configPath); err == nil {
				t.Errorf("Load() error = nil, want error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_SubscriptionsEnvOverride_Success(t *testing.T) {
	configPath := writeConfig(t, `
subscriptions:
  - id: "original-sub"
    name: "original"
`)

	t.Setenv("AZURE_COST_SUBSCRIPTIONS", "sub1:prod,sub2:dev,sub3,,")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if len(cfg.Subscriptions) != 3 {
		t.Fatalf("Expected 3 subscriptions from env, got %d", len(cfg.Subscriptions))
	}

	expected := []struct {
		id   string
		name string
	}{
		{"sub1", "prod"},
		{"sub2", "dev"},
		{"sub3", "sub3"}, // No name provided, should use ID
	}

	for i, exp := range expected {
		if cfg.Subscriptions[i].ID != exp.id {
			t.Errorf("Subscription[%d].ID = %v, want %v", i, cfg.Subscriptions[i].ID, exp.id)
		}
		if cfg.Subscriptions[i].Name != exp.name {
			t.Errorf("Subscription[%d].Name = %v, want %v", i, cfg.Subscriptions[i].Name, exp.name)
		}
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := validate(validConfig()); err != nil {
		t.Errorf("validate() error = %v, want nil", err)
	}
}

func TestValidate_InvalidConfig_Error(t *testing.T) {
	negative := -1
	negativeCutoff := -0.1
	fullCutoff := 1.0

	tests := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"empty subscriptions", func(cfg *Config) { cfg.Subscriptions = nil }},
		{"empty subscription ID", func(cfg *Config) {
			cfg.Subscriptions = append(cfg.Subscriptions, Subscription{ID: "", Name: "invalid"})
		}},
		{"empty subscription name", func(cfg *Config) { cfg.Subscriptions[0].Name = "" }},
		{"refresh interval too low", func(cfg *Config) { cfg.RefreshInterval = 30 }},
		{"days to query too low", func(cfg *Config) { cfg.DateRange.DaysToQuery = 0 }},
		{"negative end date offset", func(cfg *Config) { cfg.DateRange.EndDateOffset = &negative }},
		{"port too low", func(cfg *Config) { cfg.HTTPPort = 0 }},
		{"port too high", func(cfg *Config) { cfg.HTTPPort = 70000 }},
		{"negative port", func(cfg *Config) { cfg.HTTPPort = -1 }},
		{"negative others cutoff", func(cfg *Config) { cfg.Report.OthersCutoff = &negativeCutoff }},
		{"others cutoff of 100 percent", func(cfg *Config) { cfg.Report.OthersCutoff = &fullCutoff }},
		{"unknown log format", func(cfg *Config) { cfg.LogFormat = "xml" }},
		{"incomplete group", func(cfg *Config) { cfg.GroupBy.Groups = []GroupBy{{Type: "Dimension"}} }},
		{"zero API timeout", func(cfg *Config) { cfg.APITimeout = 0 }},
		{"API timeout too high", func(cfg *Config) { cfg.APITimeout = 301 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			if err := validate(cfg); err == nil {
				t.Errorf("validate() error = nil, want error for %s", tt.name)
			}
		})
	}
}

func TestLoad_MissingFile_Error(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() error = nil, want error for missing file")
	}
}

func TestLoad_MalformedYAML_Error(t *testing.T) {
	// Invalid YAML - incorrect indentation and structure
	configPath := writeConfig(t, `
subscriptions:
  - id: "test"
    name: "test"
    invalid_nested:
- this: is
  : malformed
    yaml: [[[
`)

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() error = nil, want error for malformed YAML")
	}
}
