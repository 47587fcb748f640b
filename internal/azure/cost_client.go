package azure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"github.com/zgpcy/azure-cost-summary/internal/clock"
	"github.com/zgpcy/azure-cost-summary/internal/config"
	"github.com/zgpcy/azure-cost-summary/internal/costs"
	"github.com/zgpcy/azure-cost-summary/internal/logger"
	"github.com/zgpcy/azure-cost-summary/internal/provider"
)

// Azure API retry constants
const (
	// MaxRetryElapsedTime is the maximum time to spend retrying a failed API call
	MaxRetryElapsedTime = 2 * time.Minute

	// InitialRetryInterval is the initial backoff interval for retries
	InitialRetryInterval = 1 * time.Second

	// MaxRetryInterval is the maximum backoff interval between retries
	MaxRetryInterval = 30 * time.Second
)

// usageQuerier is the part of armcostmanagement.QueryClient the client uses
type usageQuerier interface {
	Usage(ctx context.Context, scope string, parameters armcostmanagement.QueryDefinition, options *armcostmanagement.QueryClientUsageOptions) (armcostmanagement.QueryClientUsageResponse, error)
}

// forecastQuerier is the part of armcostmanagement.ForecastClient the client uses
type forecastQuerier interface {
	Usage(ctx context.Context, scope string, parameters armcostmanagement.ForecastDefinition, options *armcostmanagement.ForecastClientUsageOptions) (armcostmanagement.ForecastClientUsageResponse, error)
}

// Client wraps the Azure Cost Management clients and implements provider.CloudProvider
type Client struct {
	query    usageQuerier
	forecast forecastQuerier
	cfg      *config.Config
	logger   *logger.Logger
	clock    clock.Clock
	backoff  func() backoff.BackOff
}

// Verify that Client implements provider.CloudProvider
var _ provider.CloudProvider = (*Client)(nil)

// NewClient creates a new Azure Cost Management client using the default credential chain
func NewClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	queryClient, err := armcostmanagement.NewQueryClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost management query client: %w", err)
	}

	forecastClient, err := armcostmanagement.NewForecastClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost management forecast client: %w", err)
	}

	return &Client{
		query:    queryClient,
		forecast: forecastClient,
		cfg:      cfg,
		logger:   log,
		clock:    clock.RealClock{},
		backoff:  defaultBackOff,
	}, nil
}

func defaultBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = InitialRetryInterval
	bo.MaxInterval = MaxRetryInterval
	bo.MaxElapsedTime = MaxRetryElapsedTime
	return bo
}

// Name returns the provider type
func (c *Client) Name() provider.ProviderType {
	return provider.ProviderAzure
}

// AccountCount returns the number of Azure subscriptions being monitored
func (c *Client) AccountCount() int {
	return len(c.cfg.Subscriptions)
}

// QueryCosts retrieves actual daily costs for all configured subscriptions.
// Returns partial data if some subscriptions fail.
func (c *Client) QueryCosts(ctx context.Context) ([]provider.CostRecord, error) {
	return c.querySubscriptions(ctx, "cost", c.queryCostsForSubscription)
}

// QueryForecast retrieves forecasted daily costs from tomorrow to the end of
// the current month for all configured subscriptions.
func (c *Client) QueryForecast(ctx context.Context) ([]provider.CostRecord, error) {
	from := clock.Today(c.clock).AddDate(0, 0, 1)
	if from.After(clock.EndOfMonth(clock.Today(c.clock))) {
		c.logger.Debug("Last day of the month, nothing to forecast")
		return nil, nil
	}
	return c.querySubscriptions(ctx, "forecast", c.queryForecastForSubscription)
}

type subscriptionQuery func(ctx context.Context, sub config.Subscription) ([]provider.CostRecord, error)

// querySubscriptions runs query for every subscription, skipping failed ones.
// It only fails when every subscription failed.
func (c *Client) querySubscriptions(ctx context.Context, kind string, query subscriptionQuery) ([]provider.CostRecord, error) {
	var (
		allRecords []provider.CostRecord
		errs       []error
	)

	for _, sub := range c.cfg.Subscriptions {
		var records []provider.CostRecord
		err := c.retry(ctx, sub, func() error {
			var err error
			records, err = query(ctx, sub)
			return err
		})
		if err != nil {
			c.logger.Warn("Failed to query subscription, continuing with others",
				"query", kind,
				"subscription_name", sub.Name,
				"subscription_id", sub.ID,
				"error", err)
			errs = append(errs, fmt.Errorf("subscription %s: %w", sub.Name, err))
			continue
		}
		allRecords = append(allRecords, records...)
	}

	if len(errs) > 0 && len(errs) == len(c.cfg.Subscriptions) {
		return nil, fmt.Errorf("all %d subscriptions failed %s query (check Azure credentials and permissions): %v",
			len(c.cfg.Subscriptions), kind, errs)
	}

	if len(errs) > 0 {
		c.logger.Warn("Some subscriptions failed, returning partial data",
			"query", kind,
			"failed_count", len(errs),
			"total_subscriptions", len(c.cfg.Subscriptions),
			"records_returned", len(allRecords))
	}

	return allRecords, nil
}

// retry runs operation with exponential backoff bound to ctx
func (c *Client) retry(ctx context.Context, sub config.Subscription, operation func() error) error {
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		if err := operation(); err != nil {
			c.logger.Debug("Azure API call failed, will retry",
				"subscription_name", sub.Name,
				"subscription_id", sub.ID,
				"attempt", attempt,
				"error", err)
			return err
		}
		return nil
	}, backoff.WithContext(c.backoff(), ctx))
	if err != nil {
		return fmt.Errorf("subscription %s (ID: %s) failed after %d attempts: %w", sub.Name, sub.ID, attempt, err)
	}
	return nil
}

// queryRange returns the actual cost query window derived from the date range config
func (c *Client) queryRange() (time.Time, time.Time) {
	endDateOffset := 0
	if c.cfg.DateRange.EndDateOffset != nil {
		endDateOffset = *c.cfg.DateRange.EndDateOffset
	}
	endDate := clock.Today(c.clock).AddDate(0, 0, -endDateOffset)
	startDate := endDate.AddDate(0, 0, -(c.cfg.DateRange.DaysToQuery - 1))
	return startDate, endDate
}

// queryCostsForSubscription performs one actual cost API call
func (c *Client) queryCostsForSubscription(ctx context.Context, sub config.Subscription) ([]provider.CostRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.APITimeout)*time.Second)
	defer cancel()

	startDate, endDate := c.queryRange()

	c.logger.Debug("Querying Azure Cost Management API",
		"subscription", sub.Name,
		"start_date", startDate.Format(costs.DateFormat),
		"end_date", endDate.Format(costs.DateFormat),
		"current_time", c.clock.Now().Format("2006-01-02 15:04:05 MST"))

	var grouping []*armcostmanagement.QueryGrouping
	if c.cfg.GroupBy.IsEnabled() {
		for _, g := range c.cfg.GroupBy.Groups {
			groupType := armcostmanagement.QueryColumnType(g.Type)
			grouping = append(grouping, &armcostmanagement.QueryGrouping{
				Type: &groupType,
				Name: stringPtr(g.Name),
			})
		}
	}

	queryDef := armcostmanagement.QueryDefinition{
		Type:      to(armcostmanagement.ExportTypeActualCost),
		Timeframe: to(armcostmanagement.TimeframeTypeCustom),
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: &startDate,
			To:   &endDate,
		},
		Dataset: &armcostmanagement.QueryDataset{
			Granularity: to(armcostmanagement.GranularityTypeDaily),
			Aggregation: map[string]*armcostmanagement.QueryAggregation{
				"totalCost": {
					Name:     stringPtr("Cost"),
					Function: to(armcostmanagement.FunctionTypeSum),
				},
			},
			Grouping: grouping,
		},
	}

	resp, err := c.query.Usage(ctx, scopeOf(sub), queryDef, nil)
	if err != nil {
		return nil, fmt.Errorf("cost query failed for date range %s to %s: %w",
			startDate.Format(costs.DateFormat), endDate.Format(costs.DateFormat), err)
	}

	return c.parseResponse(resp.QueryResult, sub), nil
}

// queryForecastForSubscription performs one forecast API call
func (c *Client) queryForecastForSubscription(ctx context.Context, sub config.Subscription) ([]provider.CostRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.APITimeout)*time.Second)
	defer cancel()

	today := clock.Today(c.clock)
	from := today.AddDate(0, 0, 1)
	until := clock.EndOfMonth(today)

	c.logger.Debug("Querying Azure Cost Management forecast API",
		"subscription", sub.Name,
		"start_date", from.Format(costs.DateFormat),
		"end_date", until.Format(costs.DateFormat))

	forecastDef := armcostmanagement.ForecastDefinition{
		Type:      to(armcostmanagement.ForecastTypeActualCost),
		Timeframe: to(armcostmanagement.ForecastTimeframeTypeCustom),
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: &from,
			To:   &until,
		},
		IncludeActualCost:       to(false),
		IncludeFreshPartialCost: to(false),
		Dataset: &armcostmanagement.ForecastDataset{
			Granularity: to(armcostmanagement.GranularityTypeDaily),
			Aggregation: map[string]*armcostmanagement.QueryAggregation{
				"totalCost": {
					Name:     stringPtr("Cost"),
					Function: to(armcostmanagement.FunctionTypeSum),
				},
			},
		},
	}

	resp, err := c.forecast.Usage(ctx, scopeOf(sub), forecastDef, nil)
	if err != nil {
		return nil, fmt.Errorf("forecast query failed for date range %s to %s: %w",
			from.Format(costs.DateFormat), until.Format(costs.DateFormat), err)
	}

	return c.parseResponse(resp.QueryResult, sub), nil
}

func scopeOf(sub config.Subscription) string {
	return fmt.Sprintf("/subscriptions/%s", sub.ID)
}

// buildColumnMap creates a map of column names to their indices
func buildColumnMap(columns []*armcostmanagement.QueryColumn) map[string]int {
	columnMap := make(map[string]int)
	for i, col := range columns {
		if col != nil && col.Name != nil {
			columnMap[*col.Name] = i
		}
	}
	return columnMap
}

// getStringFromRow extracts a string value from a row by column name
func getStringFromRow(row []interface{}, columnMap map[string]int, columnName string) string {
	if idx, ok := columnMap[columnName]; ok && len(row) > idx && row[idx] != nil {
		value := strings.TrimSpace(fmt.Sprintf("%v", row[idx]))
		if value != "<nil>" {
			return value
		}
	}
	return ""
}

// parseCost converts a cost cell to a decimal, 0 for unsupported values
func parseCost(value interface{}) decimal.Decimal {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// formatDateValue converts various date types to string
func formatDateValue(value interface{}) string {
	switch v := value.(type) {
	case int, int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%.0f", v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// extractDigits extracts only digit characters from a string
func extractDigits(s string) string {
	var digits strings.Builder
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			digits.WriteRune(ch)
		}
	}
	return digits.String()
}

// parseDate accepts 20260115, "20260115", "2026-01-15" and "2026-01-15T00:00:00"
func parseDate(value interface{}) (time.Time, bool) {
	digits := extractDigits(formatDateValue(value))
	if len(digits) < 8 {
		return time.Time{}, false
	}
	date, err := time.Parse("20060102", digits[:8])
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// parseTags accepts the Tags column either as a list or as a comma-separated string
func parseTags(row []interface{}, columnMap map[string]int) []string {
	idx, ok := columnMap["Tags"]
	if !ok || len(row) <= idx {
		return nil
	}

	var raw []string
	switch v := row[idx].(type) {
	case []interface{}:
		for _, item := range v {
			raw = append(raw, fmt.Sprintf("%v", item))
		}
	case []string:
		raw = v
	case string:
		raw = strings.Split(v, ",")
	default:
		return nil
	}

	var tags []string
	for _, tag := range raw {
		tag = strings.TrimSpace(strings.ReplaceAll(tag, `"`, ""))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// extractResourceInfo extracts resource ID and name from a row
func extractResourceInfo(row []interface{}, columnMap map[string]int) (string, string) {
	resourceID := getStringFromRow(row, columnMap, "ResourceId")
	if resourceID == "" {
		return "", ""
	}
	return resourceID, resourceID[strings.LastIndex(resourceID, "/")+1:]
}

// extractService extracts service name with fallback to MeterCategory
func extractService(row []interface{}, columnMap map[string]int) string {
	if service := getStringFromRow(row, columnMap, "ServiceName"); service != "" {
		return service
	}
	if meterCat := getStringFromRow(row, columnMap, "MeterCategory"); meterCat != "" {
		return meterCat
	}
	return "Unknown"
}

// extractResourceGroup extracts resource group with fallback to ResourceGroupName
func extractResourceGroup(row []interface{}, columnMap map[string]int) string {
	if rg := getStringFromRow(row, columnMap, "ResourceGroup"); rg != "" {
		return rg
	}
	return getStringFromRow(row, columnMap, "ResourceGroupName")
}

// parseRow parses a single row from the Azure API response
func (c *Client) parseRow(row []interface{}, columnMap map[string]int, costIdx int, date time.Time, sub config.Subscription) provider.CostRecord {
	resourceID, resourceName := extractResourceInfo(row, columnMap)

	currency := getStringFromRow(row, columnMap, "Currency")
	if currency == "" {
		currency = c.cfg.Currency
	}

	return provider.CostRecord{
		Date:             date,
		Provider:         string(provider.ProviderAzure),
		AccountID:        sub.ID,
		AccountName:      sub.Name,
		Cost:             parseCost(row[costIdx]),
		Currency:         currency,
		ResourceID:       resourceID,
		ResourceName:     resourceName,
		ResourceType:     getStringFromRow(row, columnMap, "ResourceType"),
		ResourceGroup:    extractResourceGroup(row, columnMap),
		ResourceLocation: getStringFromRow(row, columnMap, "ResourceLocation"),
		Tags:             parseTags(row, columnMap),
		Service:          extractService(row, columnMap),
		ServiceTier:      getStringFromRow(row, columnMap, "ServiceTier"),
		Meter:            getStringFromRow(row, columnMap, "Meter"),
		ChargeType:       getStringFromRow(row, columnMap, "ChargeType"),
	}
}

// parseResponse converts an Azure API response to CostRecords.
// Rows with a missing cost or an unreadable date are skipped.
func (c *Client) parseResponse(result armcostmanagement.QueryResult, sub config.Subscription) []provider.CostRecord {
	var records []provider.CostRecord

	if result.Properties == nil || result.Properties.Rows == nil {
		return records
	}

	columnMap := buildColumnMap(result.Properties.Columns)

	costIdx, hasCost := columnMap["Cost"]
	if !hasCost {
		costIdx, hasCost = columnMap["PreTaxCost"]
	}
	dateIdx, hasDate := columnMap["UsageDate"]

	if !hasCost || !hasDate {
		c.logger.Warn("Azure response lacks cost or date column, ignoring it",
			"subscription", sub.Name,
			"columns", len(columnMap))
		return records
	}

	skipped := 0
	for _, row := range result.Properties.Rows {
		if len(row) <= costIdx || len(row) <= dateIdx {
			skipped++
			continue
		}

		date, ok := parseDate(row[dateIdx])
		if !ok {
			skipped++
			continue
		}

		records = append(records, c.parseRow(row, columnMap, costIdx, date, sub))
	}

	if skipped > 0 {
		c.logger.Debug("Skipped malformed Azure rows", "subscription", sub.Name, "skipped", skipped)
	}

	return records
}

// Helper functions
func stringPtr(s string) *string {
	return &s
}

func to[T any](v T) *T {
	return &v
}
