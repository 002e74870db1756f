// Package config provides 12-factor configuration for the SDK's runtime
// surfaces (CLI, event emitter, HTTP sink).
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Logging: log level and output format
//   - Events: emitter source, batching, and buffering
//   - Sink: CloudEvents HTTP sink endpoint and delivery tuning
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("emitting as %s\n", cfg.Events.Source)
//
// Environment Variables:
//   - OSSA_LOG_LEVEL, OSSA_LOG_DEV
//   - OSSA_EVENT_SOURCE, OSSA_EVENT_BATCH_SIZE, OSSA_EVENT_FLUSH_INTERVAL, OSSA_EVENT_BUFFER_SIZE
//   - OSSA_SINK_URL, OSSA_SINK_MODE, OSSA_SINK_TIMEOUT, OSSA_SINK_RETRIES
//   - OSSA_SINK_RPS, OSSA_SINK_BURST, OSSA_SINK_TRIP_AFTER, OSSA_SINK_COOLDOWN
package config
