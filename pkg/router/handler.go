package router

import "net/http"

// Handler is the terminal behavior of a Router. It receives the exchange
// and the part of the path no binding consumed.
type Handler interface {
	Handle(ex Exchange, path string)
}

// HandlerFunc adapts an ordinary function to a Handler.
type HandlerFunc func(ex Exchange, path string)

// Handle calls f(ex, path).
func (f HandlerFunc) Handle(ex Exchange, path string) {
	f(ex, path)
}

// NotFound completes every exchange with 404.
var NotFound Handler = HandlerFunc(func(ex Exchange, _ string) {
	ex.WriteError(http.StatusNotFound)
})

// FromHTTP turns a plain http.Handler into a terminal Handler. The remainder
// path is ignored; the wrapped handler sees the original request.
func FromHTTP(h http.Handler) Handler {
	return HandlerFunc(func(ex Exchange, _ string) {
		h.ServeHTTP(ex.ResponseWriter(), ex.Request())
	})
}
