package collector

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zgpcy/azure-cost-summary/internal/clock"
	"github.com/zgpcy/azure-cost-summary/internal/config"
	"github.com/zgpcy/azure-cost-summary/internal/costs"
	"github.com/zgpcy/azure-cost-summary/internal/logger"
	"github.com/zgpcy/azure-cost-summary/internal/provider"
	"github.com/zgpcy/azure-cost-summary/internal/report"
	"github.com/zgpcy/azure-cost-summary/internal/version"
)

// Window label values of azure_cost_window, in costs.Summary.Windows order
var windowNames = []string{"today", "yesterday", "month_to_date", "last_7_days", "last_30_days"}

// Values of the kind label of azure_cost_accumulated
const (
	KindActual   = "actual"
	KindForecast = "forecast"
)

// CostCollector implements prometheus.Collector for the cost summary report
type CostCollector struct {
	cloudProvider provider.CloudProvider
	cfg           *config.Config
	logger        *logger.Logger
	clock         clock.Clock // Time provider for testing

	// Report metrics
	windowMetric        *prometheus.Desc
	accumulatedMetric   *prometheus.Desc
	breakdownMetric     *prometheus.Desc
	resourceMetric      *prometheus.Desc // Optional high-cardinality metric
	resourceMeterMetric *prometheus.Desc // Optional high-cardinality metric

	// Operational metrics
	upMetric             *prometheus.Desc
	scrapeDurationMetric *prometheus.Desc
	scrapeErrorsTotal    *prometheus.CounterVec
	lastScrapeTimeMetric *prometheus.Desc
	recordCountMetric    *prometheus.Desc
	buildInfo            *prometheus.GaugeVec

	// State
	mu                 sync.RWMutex
	lastReport         *report.Report
	lastRecordCount    int
	lastError          error
	lastScrape         time.Time
	lastScrapeDuration time.Duration
	refreshStarted     atomic.Bool // Prevent multiple refresh goroutines
	isReady            bool
}

// NewCostCollector creates a new CostCollector
func NewCostCollector(cloudProvider provider.CloudProvider, cfg *config.Config, log *logger.Logger) *CostCollector {
	scrapeErrorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "azure_cost_summary_scrape_errors_total",
			Help: "Total number of cost data refresh errors since startup",
		},
		[]string{"provider"},
	)

	buildInfo := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "azure_cost_summary_build_info",
			Help: "Build version information",
		},
		[]string{"version", "git_commit", "build_date", "go_version"},
	)

	versionInfo := version.Info()
	buildInfo.With(prometheus.Labels{
		"version":    versionInfo["version"],
		"git_commit": versionInfo["git_commit"],
		"build_date": versionInfo["build_date"],
		"go_version": versionInfo["go_version"],
	}).Set(1)

	return &CostCollector{
		cloudProvider: cloudProvider,
		cfg:           cfg,
		logger:        log,
		clock:         clock.RealClock{},
		windowMetric: prometheus.NewDesc(
			"azure_cost_window",
			"Total cost over a rolling window anchored on the latest day with data.",
			[]string{"window", "label", "currency"},
			nil,
		),
		accumulatedMetric: prometheus.NewDesc(
			"azure_cost_accumulated",
			"Running total of daily costs over the queried range, continued by the month-end forecast.",
			[]string{"date", "kind"},
			nil,
		),
		breakdownMetric: prometheus.NewDesc(
			"azure_cost_breakdown",
			"Cost over the queried range by dimension. Entries under the others cutoff are folded into \"Other\".",
			[]string{"dimension", "name", "currency"},
			nil,
		),
		resourceMetric: prometheus.NewDesc(
			"azure_cost_resource",
			"Cost over the queried range by resource. Higher cardinality - use recording rules or limit time ranges.",
			[]string{"resource_id", "resource_name", "resource_type", "resource_group", "location", "currency"},
			nil,
		),
		resourceMeterMetric: prometheus.NewDesc(
			"azure_cost_resource_meter",
			"Cost over the queried range by resource meter. Higher cardinality - use recording rules or limit time ranges.",
			[]string{"resource_id", "service_name", "service_tier", "meter", "currency"},
			nil,
		),
		upMetric: prometheus.NewDesc(
			"up",
			"Was the last cost query successful (1 = success, 0 = failure)",
			[]string{"provider"},
			nil,
		),
		scrapeDurationMetric: prometheus.NewDesc(
			"azure_cost_summary_scrape_duration_seconds",
			"Duration of the last cost data refresh in seconds",
			[]string{"provider"},
			nil,
		),
		scrapeErrorsTotal: scrapeErrorsTotal,
		lastScrapeTimeMetric: prometheus.NewDesc(
			"azure_cost_summary_last_scrape_timestamp_seconds",
			"Unix timestamp of the last refresh",
			[]string{"provider"},
			nil,
		),
		recordCountMetric: prometheus.NewDesc(
			"azure_cost_summary_records_count",
			"Number of cost records behind the current report",
			[]string{"provider"},
			nil,
		),
		buildInfo: buildInfo,
	}
}

// Describe implements prometheus.Collector
func (c *CostCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.windowMetric
	ch <- c.accumulatedMetric
	ch <- c.breakdownMetric
	ch <- c.resourceMetric
	ch <- c.resourceMeterMetric
	ch <- c.upMetric
	ch <- c.scrapeDurationMetric
	c.scrapeErrorsTotal.Describe(ch)
	ch <- c.lastScrapeTimeMetric
	ch <- c.recordCountMetric
	c.buildInfo.Describe(ch)
}

// Collect implements prometheus.Collector
func (c *CostCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	providerName := string(c.cloudProvider.Name())

	if c.lastReport != nil {
		c.collectReport(ch, c.lastReport)
	}

	upValue := 0.0
	if c.lastError == nil && c.lastRecordCount > 0 {
		upValue = 1.0
	}
	ch <- prometheus.MustNewConstMetric(c.upMetric, prometheus.GaugeValue, upValue, providerName)

	ch <- prometheus.MustNewConstMetric(
		c.scrapeDurationMetric,
		prometheus.GaugeValue,
		c.lastScrapeDuration.Seconds(),
		providerName,
	)

	c.scrapeErrorsTotal.Collect(ch)

	if !c.lastScrape.IsZero() {
		ch <- prometheus.MustNewConstMetric(
			c.lastScrapeTimeMetric,
			prometheus.GaugeValue,
			float64(c.lastScrape.Unix()),
			providerName,
		)
	}

	ch <- prometheus.MustNewConstMetric(
		c.recordCountMetric,
		prometheus.GaugeValue,
		float64(c.lastRecordCount),
		providerName,
	)

	c.buildInfo.Collect(ch)
}

// collectReport exports the summary report. Caller holds the read lock.
func (c *CostCollector) collectReport(ch chan<- prometheus.Metric, rep *report.Report) {
	currency := rep.Summary.Currency

	for i, w := range rep.Summary.Windows() {
		ch <- prometheus.MustNewConstMetric(
			c.windowMetric,
			prometheus.GaugeValue,
			w.Cost.InexactFloat64(),
			windowNames[i],
			w.Label,
			currency,
		)
	}

	for _, p := range rep.Accumulated {
		kind := KindActual
		if p.Forecast {
			kind = KindForecast
		}
		ch <- prometheus.MustNewConstMetric(
			c.accumulatedMetric,
			prometheus.GaugeValue,
			p.Value.InexactFloat64(),
			p.Date.Format(costs.DateFormat),
			kind,
		)
	}

	for _, d := range report.Dimensions {
		for _, item := range rep.Breakdown(d) {
			ch <- prometheus.MustNewConstMetric(
				c.breakdownMetric,
				prometheus.GaugeValue,
				item.Cost.InexactFloat64(),
				string(d),
				item.Name,
				currency,
			)
		}
	}

	if !c.cfg.HighCardinalityEnabled() {
		return
	}

	for _, node := range rep.Resources {
		ch <- prometheus.MustNewConstMetric(
			c.resourceMetric,
			prometheus.GaugeValue,
			node.Cost.InexactFloat64(),
			node.ResourceID,
			node.Name(),
			node.ResourceType,
			node.ResourceGroupName,
			node.Location,
			node.Currency,
		)
		for _, m := range node.Meters {
			ch <- prometheus.MustNewConstMetric(
				c.resourceMeterMetric,
				prometheus.GaugeValue,
				m.Cost.InexactFloat64(),
				node.ResourceID,
				m.ServiceName,
				m.ServiceTier,
				m.Meter,
				m.Currency,
			)
		}
	}
}

// StartBackgroundRefresh starts a goroutine that periodically refreshes cost data
// Uses atomic flag to prevent multiple refresh goroutines
func (c *CostCollector) StartBackgroundRefresh(ctx context.Context) {
	if !c.refreshStarted.CompareAndSwap(false, true) {
		c.logger.Warn("Background refresh already started, skipping")
		return
	}

	// Initial fetch
	c.refresh(ctx)

	ticker := time.NewTicker(time.Duration(c.cfg.RefreshInterval) * time.Second)
	go func() {
		defer ticker.Stop()
		defer c.refreshStarted.Store(false)
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Stopping background refresh")
				return
			case <-ticker.C:
				c.refresh(ctx)
			}
		}
	}()
}

// refresh queries the cloud provider, rebuilds the report and swaps it in
func (c *CostCollector) refresh(ctx context.Context) {
	providerName := c.cloudProvider.Name()
	c.logger.Info("Refreshing cost data", "provider", providerName)
	start := time.Now()

	records, err := c.cloudProvider.QueryCosts(ctx)

	var forecast []provider.CostRecord
	if err == nil && c.cfg.Report.ForecastEnabled() {
		var forecastErr error
		forecast, forecastErr = c.cloudProvider.QueryForecast(ctx)
		if forecastErr != nil {
			c.logger.Warn("Failed to query cost forecast, building report without it",
				"provider", providerName,
				"error", forecastErr)
			forecast = nil
		}
	}

	var rep *report.Report
	if err == nil {
		rep, err = c.buildReport(records, forecast)
	}
	duration := time.Since(start)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastScrape = c.clock.Now()
	c.lastScrapeDuration = duration
	c.lastError = err

	if err != nil {
		c.scrapeErrorsTotal.With(prometheus.Labels{"provider": string(providerName)}).Inc()
		c.logger.Error("Failed to refresh cost data", "provider", providerName, "error", err)
		c.lastReport = nil
		c.lastRecordCount = 0
		c.isReady = false
		return
	}

	c.lastReport = rep
	c.lastRecordCount = len(records)
	c.isReady = true
	c.logger.Info("Successfully refreshed cost report",
		"provider", providerName,
		"record_count", len(records),
		"forecast_count", len(forecast),
		"duration_seconds", duration.Seconds())
}

// buildReport returns a nil report without error when the period had no costs
func (c *CostCollector) buildReport(records, forecast []provider.CostRecord) (*report.Report, error) {
	rep, err := report.Build(records, forecast, c.clock.Now().UTC(), report.Options{
		OthersCutoff: c.cfg.Report.Cutoff(),
	})
	if errors.Is(err, costs.ErrEmptyInput) {
		c.logger.Warn("No cost data for the selected period", "provider", c.cloudProvider.Name())
		return nil, nil
	}
	return rep, err
}

// IsReady returns true if the last refresh succeeded
func (c *CostCollector) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isReady
}

// LastError returns the last error encountered during refresh
func (c *CostCollector) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// LastScrapeTime returns the time of the last refresh attempt
func (c *CostCollector) LastScrapeTime() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastScrape
}

// RecordCount returns the number of cost records behind the current report
func (c *CostCollector) RecordCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastRecordCount
}

// Report returns the current report, or nil when the period had no data or
// no refresh has succeeded yet. The report is shared and must not be modified.
func (c *CostCollector) Report() *report.Report {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastReport
}
