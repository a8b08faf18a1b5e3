// Package server holds the HTTP server configuration.
//
// The entry point in cmd builds the fiber app from these values: listen
// port, API key, body limit for document uploads and timeouts.
package server
