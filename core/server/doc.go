// Package server holds the HTTP server configuration.
//
// The serve command reads the listen address, the API key enforced by the
// auth middleware and the graceful shutdown deadline from Config.
package server
