// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber app from this configuration: the listen
// port, the API key enforced by the auth middleware and the body limit applied to
// workbook uploads.
package server
