package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Configuration validation constants
const (
	MinRefreshInterval = 60    // Minimum refresh interval in seconds
	MinPort            = 1     // Minimum valid port number
	MaxPort            = 65535 // Maximum valid port number
	MinDaysToQuery     = 1     // Minimum days to query
	MaxAPITimeout      = 300   // Maximum API timeout in seconds

	// Default values
	DefaultCurrency        = "EUR"
	DefaultEndDateOffset   = 0
	DefaultDaysToQuery     = 31 // Last 30 days plus today
	DefaultRefreshInterval = 3600
	DefaultHTTPPort        = 8080
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultAPITimeout      = 30
	DefaultOthersCutoff    = 0.02
)

// DefaultGroups are the dimensions needed for the breakdowns and the resource report
var DefaultGroups = []GroupBy{
	{Type: "Dimension", Name: "ResourceId"},
	{Type: "Dimension", Name: "ResourceType"},
	{Type: "Dimension", Name: "ResourceLocation"},
	{Type: "Dimension", Name: "ResourceGroupName"},
	{Type: "Dimension", Name: "ServiceName"},
	{Type: "Dimension", Name: "ServiceTier"},
	{Type: "Dimension", Name: "Meter"},
}

// Subscription represents an Azure subscription to monitor
type Subscription struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// GroupBy represents a grouping dimension for cost queries
type GroupBy struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`
}

// GroupByConfig represents the grouping configuration
type GroupByConfig struct {
	Enabled *bool     `yaml:"enabled"`
	Groups  []GroupBy `yaml:"groups"`
}

// IsEnabled reports whether grouped queries are enabled (default true)
func (g GroupByConfig) IsEnabled() bool {
	return g.Enabled == nil || *g.Enabled
}

// DateRange represents the date range configuration
type DateRange struct {
	EndDateOffset *int `yaml:"end_date_offset"` // Pointer to distinguish between 0 and unset
	DaysToQuery   int  `yaml:"days_to_query"`
}

// Report holds the summary report settings
type Report struct {
	OthersCutoff *float64 `yaml:"others_cutoff"` // Cost share under which breakdown entries fold into "Other"
	Forecast     *bool    `yaml:"forecast"`      // Query forecast costs for the accumulated series
}

// ForecastEnabled reports whether forecasts are queried (default true)
func (r Report) ForecastEnabled() bool {
	return r.Forecast == nil || *r.Forecast
}

// Cutoff returns the others cutoff, or the default when unset
func (r Report) Cutoff() float64 {
	if r.OthersCutoff == nil {
		return DefaultOthersCutoff
	}
	return *r.OthersCutoff
}

// Config represents the application configuration
type Config struct {
	Subscriptions                []Subscription `yaml:"subscriptions"`
	Currency                     string         `yaml:"currency"` // Used when the API response has no currency column
	DateRange                    DateRange      `yaml:"date_range"`
	GroupBy                      GroupByConfig  `yaml:"group_by"`
	Report                       Report         `yaml:"report"`
	RefreshInterval              int            `yaml:"refresh_interval"` // seconds
	HTTPPort                     int            `yaml:"http_port"`
	LogLevel                     string         `yaml:"log_level"`
	LogFormat                    string         `yaml:"log_format"`
	APITimeout                   int            `yaml:"api_timeout"` // Azure API timeout in seconds
	EnableHighCardinalityMetrics *bool          `yaml:"enable_high_cardinality_metrics"`
}

// HighCardinalityEnabled reports whether per-resource metrics are exported
func (c *Config) HighCardinalityEnabled() bool {
	return c.EnableHighCardinalityMetrics != nil && *c.EnableHighCardinalityMetrics
}

// Load loads configuration from a YAML file and applies environment variable overrides
func Load(path string) (*Config, error) {
	// #nosec G304 -- Config file path is provided by administrator via CLI flag, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("environment variable error: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for configuration
func applyDefaults(cfg *Config) {
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	if cfg.DateRange.EndDateOffset == nil {
		offset := DefaultEndDateOffset
		cfg.DateRange.EndDateOffset = &offset
	}
	if cfg.DateRange.DaysToQuery == 0 {
		cfg.DateRange.DaysToQuery = DefaultDaysToQuery
	}
	if cfg.GroupBy.IsEnabled() && len(cfg.GroupBy.Groups) == 0 {
		cfg.GroupBy.Groups = append([]GroupBy(nil), DefaultGroups...)
	}
	if cfg.Report.OthersCutoff == nil {
		cutoff := DefaultOthersCutoff
		cfg.Report.OthersCutoff = &cutoff
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.HTTPPort == 0 {
		cfg.HTTPPort = DefaultHTTPPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if cfg.APITimeout == 0 {
		cfg.APITimeout = DefaultAPITimeout
	}
}

// applyEnvOverrides applies environment variable overrides to configuration
func applyEnvOverrides(cfg *Config) error {
	if val := os.Getenv("AZURE_COST_CURRENCY"); val != "" {
		cfg.Currency = val
	}

	if err := envInt("AZURE_COST_REFRESH_INTERVAL", &cfg.RefreshInterval); err != nil {
		return err
	}
	if err := envInt("AZURE_COST_HTTP_PORT", &cfg.HTTPPort); err != nil {
		return err
	}
	if err := envInt("AZURE_COST_DAYS_TO_QUERY", &cfg.DateRange.DaysToQuery); err != nil {
		return err
	}

	if val := os.Getenv("AZURE_COST_END_DATE_OFFSET"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid AZURE_COST_END_DATE_OFFSET: must be an integer, got %q", val)
		}
		cfg.DateRange.EndDateOffset = &i
	}

	if val := os.Getenv("AZURE_COST_LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}
	if val := os.Getenv("AZURE_COST_LOG_FORMAT"); val != "" {
		cfg.LogFormat = val
	}

	if val := os.Getenv("AZURE_COST_OTHERS_CUTOFF"); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid AZURE_COST_OTHERS_CUTOFF: must be a number, got %q", val)
		}
		cfg.Report.OthersCutoff = &f
	}

	if val := os.Getenv("AZURE_COST_FORECAST"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid AZURE_COST_FORECAST: must be a boolean, got %q", val)
		}
		cfg.Report.Forecast = &b
	}

	// Comma-separated id:name pairs, e.g. AZURE_COST_SUBSCRIPTIONS="sub1:prod,sub2:dev"
	if val := os.Getenv("AZURE_COST_SUBSCRIPTIONS"); val != "" {
		subs := []Subscription{}
		for _, pair := range strings.Split(val, ",") {
			parts := strings.SplitN(pair, ":", 2)
			id := strings.TrimSpace(parts[0])
			if id == "" {
				continue
			}
			name := id
			if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
				name = strings.TrimSpace(parts[1])
			}
			subs = append(subs, Subscription{ID: id, Name: name})
		}
		if len(subs) > 0 {
			cfg.Subscriptions = subs
		}
	}

	return nil
}

func envInt(key string, dst *int) error {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("invalid %s: must be an integer, got %q", key, val)
	}
	*dst = i
	return nil
}

// validate validates the configuration
func validate(cfg *Config) error {
	if len(cfg.Subscriptions) == 0 {
		return fmt.Errorf("no subscriptions configured")
	}

	for i, sub := range cfg.Subscriptions {
		if sub.ID == "" {
			return fmt.Errorf("subscription at index %d has empty ID", i)
		}
		if sub.Name == "" {
			return fmt.Errorf("subscription at index %d has empty name", i)
		}
	}

	if cfg.RefreshInterval < MinRefreshInterval {
		return fmt.Errorf("refresh_interval must be at least %d seconds, got %d", MinRefreshInterval, cfg.RefreshInterval)
	}

	if cfg.DateRange.DaysToQuery < MinDaysToQuery {
		return fmt.Errorf("days_to_query must be at least %d", MinDaysToQuery)
	}

	if cfg.DateRange.EndDateOffset != nil && *cfg.DateRange.EndDateOffset < 0 {
		return fmt.Errorf("end_date_offset cannot be negative, got %d", *cfg.DateRange.EndDateOffset)
	}

	for i, g := range cfg.GroupBy.Groups {
		if g.Type == "" || g.Name == "" {
			return fmt.Errorf("group_by group at index %d needs both type and name", i)
		}
	}

	if cutoff := cfg.Report.Cutoff(); cutoff < 0 || cutoff >= 1 {
		return fmt.Errorf("report.others_cutoff must be in [0, 1), got %g", cutoff)
	}

	if cfg.HTTPPort < MinPort || cfg.HTTPPort > MaxPort {
		return fmt.Errorf("http_port must be between %d and %d", MinPort, MaxPort)
	}

	switch strings.ToLower(cfg.LogFormat) {
	case "", "json", "text":
	default:
		return fmt.Errorf("log_format must be json or text, got %q", cfg.LogFormat)
	}

	if cfg.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be positive, got %d", cfg.APITimeout)
	}

	if cfg.APITimeout > MaxAPITimeout {
		return fmt.Errorf("api_timeout should not exceed %d seconds, got %d", MaxAPITimeout, cfg.APITimeout)
	}

	return nil
}
