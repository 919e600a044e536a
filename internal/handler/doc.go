// Package handler is the HTTP front of pathrouter. It turns each incoming
// request into an exchange, tags it with a request ID and a trace span, and
// dispatches it into the root router with the leading slash removed.
package handler
