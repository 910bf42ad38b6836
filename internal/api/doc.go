// Package api implements the HTTP server for Bookshelf.
//
// This package provides:
//   - JSON endpoints for listing, finding, creating, updating and deleting books
//   - Server-rendered pages (/, /contact, /shorts) behind an authorization gate
//   - A token login endpoint for the token gate
//   - A WebSocket hub that relays committed book changes to subscribers
//   - Health and runtime metrics endpoints
//   - Middleware stack (request ID, logging, recovery, security headers, CORS,
//     body limit, timeout, optional access log)
//
// # Errors
//
// Every failure is a JSON body {"status","code","message"}. Validation errors
// return 400 with a message naming the field, unknown ids and names return
// 404, and denied page requests return 401.
package api
