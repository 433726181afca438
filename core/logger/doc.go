// Package logger builds the service's zap logger.
//
// Level "debug" starts from zap's development config, every other level from
// the production config. Format "console" switches to colored console output
// without stack traces; anything else encodes JSON with the keys "time",
// "level" and "message". An unknown level is an error.
//
// # Request correlation
//
// WithRayID returns a child logger carrying the ray id the rayid middleware
// stored in the Fiber context, so every line of one request can be grouped.
//
// # Usage
//
//	log, err := logger.New(&cfg.Log)
//	log.Info("Collection fetched", zap.Int("records", c.Len()))
//
//	l := logger.WithRayID(log, c)
//	l.Warn("Record rejected", zap.Error(err))
package logger
