// Package metric provides Prometheus-based instrumentation for the
// engine: command traffic, resolution tiers, catalog and cache
// population, and NATS connectivity.
//
// MetricsRegistry owns the Prometheus registry and the core metrics
// set; services register their own collectors through the
// MetricsRegistrar interface. Server exposes everything on a standalone
// HTTP endpoint in OpenMetrics format.
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//	go func() {
//	    if err := server.Start(); err != nil {
//	        log.Printf("metrics server error: %v", err)
//	    }
//	}()
//
//	core := registry.CoreMetrics()
//	core.RecordCommand("discover_nodes", "success", elapsed)
//	core.RecordResolveTier("exact_cache")
package metric
