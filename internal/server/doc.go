// Package server provides the HTTP surface of the cost summary service.
//
// Available endpoints:
//   - /               : Status page with the current cost windows
//   - /metrics        : Prometheus metrics endpoint
//   - /api/summary    : Summary report as JSON (windows, accumulated series, breakdowns)
//   - /api/resources  : Resource to meter cost hierarchy as JSON
//   - /health         : Liveness probe (always returns 200)
//   - /ready          : Readiness probe (returns 200 only when data is loaded)
//
// The API endpoints answer 503 until the first refresh succeeds and 404 when
// the queried period had no costs. Costs are encoded as decimal strings.
//
// The server uses fixed timeouts: 15s read, 15s write, 60s idle.
//
// Example usage:
//
//	srv := server.NewServer(cfg, costCollector, log)
//
//	serverErrors := make(chan error, 1)
//	go func() {
//		serverErrors <- srv.Start()
//	}()
//
//	// on shutdown
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//	_ = srv.Shutdown(ctx)
package server
