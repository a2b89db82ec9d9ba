// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting every endpoint.
//   - rayid: assigns each request a ray id, stored in the context locals and
//     echoed in the response headers for tracing.
//
// rayid must be registered first so every later log line can carry the id.
package middleware
