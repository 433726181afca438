package transport

import "time"

// Transport kinds accepted by Config.Kind.
const (
	KindNone     = "none"
	KindHTTP     = "http"
	KindStorage  = "storage"
	KindDatabase = "database"
)

// Config holds configuration for the collection transport.
type Config struct {
	// Kind selects the transport: none, http, storage or database.
	Kind string `mapstructure:"kind" default:"none"`
	// BaseURL is prefixed to every request target of the HTTP transport.
	BaseURL string `mapstructure:"base_url" default:""`
	// ApiKey is sent as X-API-Key by the HTTP transport when set.
	ApiKey string `mapstructure:"api_key" default:""`
	// TimeoutSeconds bounds a single HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// RateLimit is the sustained number of HTTP requests per second; 0 disables throttling.
	RateLimit float64 `mapstructure:"rate_limit" default:"0"`
	// Burst is the number of HTTP requests allowed at once when throttling.
	Burst int `mapstructure:"burst" default:"1"`
	// Prefix is prepended to object names by the storage transport.
	Prefix string `mapstructure:"prefix" default:"collections"`
	// Compress stores snapshots zstd-compressed.
	Compress bool `mapstructure:"compress" default:"false"`
	// Table is the table used by the database transport.
	Table string `mapstructure:"table" default:"records"`
}

// Timeout returns the HTTP request timeout, 30s when unset.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
