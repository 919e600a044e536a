package router

import (
	"net/http"
	"sync"
)

// Exchange is the in-flight request/response pair handed down the tree.
// Routers never touch it; only terminal Handlers read the request and
// write the response.
type Exchange interface {
	Method() string
	Header() http.Header
	Request() *http.Request
	ResponseWriter() http.ResponseWriter

	// WriteError writes an error response with the given status and
	// completes the exchange.
	WriteError(status int)

	// Status is the status code written so far, 0 if none.
	Status() int
	Completed() bool
}

// HTTPExchange is the Exchange served over net/http.
type HTTPExchange struct {
	req *http.Request
	rw  *statusWriter
}

type statusWriter struct {
	http.ResponseWriter
	mutex  sync.Mutex
	status int
}

// NewExchange wraps an http.ResponseWriter and request.
func NewExchange(w http.ResponseWriter, r *http.Request) *HTTPExchange {
	return &HTTPExchange{
		req: r,
		rw:  &statusWriter{ResponseWriter: w},
	}
}

func (e *HTTPExchange) Method() string {
	return e.req.Method
}

func (e *HTTPExchange) Header() http.Header {
	return e.req.Header
}

func (e *HTTPExchange) Request() *http.Request {
	return e.req
}

// ResponseWriter returns a writer that records the status it sends.
func (e *HTTPExchange) ResponseWriter() http.ResponseWriter {
	return e.rw
}

// WriteError sends status with its standard text. Calls after the exchange
// has been completed are ignored.
func (e *HTTPExchange) WriteError(status int) {
	if e.Completed() {
		return
	}

	http.Error(e.rw, http.StatusText(status), status)
}

func (e *HTTPExchange) Status() int {
	e.rw.mutex.Lock()
	defer e.rw.mutex.Unlock()
	return e.rw.status
}

func (e *HTTPExchange) Completed() bool {
	return e.Status() != 0
}

func (w *statusWriter) WriteHeader(code int) {
	w.mutex.Lock()
	if w.status == 0 {
		w.status = code
	}
	w.mutex.Unlock()

	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.mutex.Lock()
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.mutex.Unlock()

	return w.ResponseWriter.Write(b)
}

// Flush passes through to the underlying writer when it supports flushing.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
