// Package config loads runtime configuration for the inventory CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-b string   store backend: memory, redis or postgres
//	-a string   tenant application id
//	-r string   redis address (host:port)
//	-n int      redis database number
//	-d string   PostgreSQL DSN
//	-e string   remote auth endpoint base URL
//	-k string   remote auth api key
//	-t int      idle timeout (minutes)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the idle timeout, so the value can
// be either a string like "15m" or integer nanoseconds:
//
//	{
//	  "backend": "redis",
//	  "app_id": "inventario-demo",
//	  "redis_addr": "127.0.0.1:6379",
//	  "idle_timeout": "15m"
//	}
//
// Primary API
//
//   - type Config                     — runtime settings for the CLI
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//   - func (*Config) Validate() error — rejects unusable configurations
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
