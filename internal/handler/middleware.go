package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"

	"github.com/angeloszaimis/pathrouter/pkg/logger"
)

type WrapOptions struct {
	Environment string
	// TrustProxyHeaders rewrites the request's RemoteAddr from
	// X-Forwarded-For / X-Real-IP. Any client can set those headers, so
	// leave it off unless a trusted proxy sits in front.
	TrustProxyHeaders bool
}

// Wrap adds panic recovery in front of h, and forwarded-address handling
// when opts trusts proxy headers. Stack traces are printed outside prod.
func Wrap(h http.Handler, log *slog.Logger, opts WrapOptions) http.Handler {
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger.Std(log, slog.LevelError)),
		handlers.PrintRecoveryStack(opts.Environment != "prod"),
	)

	if opts.TrustProxyHeaders {
		h = handlers.ProxyHeaders(h)
	}

	return recovery(h)
}
