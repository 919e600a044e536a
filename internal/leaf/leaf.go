package leaf

import (
	"net/http"

	"github.com/angeloszaimis/pathrouter/pkg/router"
)

// Static answers every request with the same status and body.
type Static struct {
	Status      int
	Body        string
	ContentType string
}

func (s Static) Handle(ex router.Exchange, _ string) {
	w := ex.ResponseWriter()

	contentType := s.ContentType
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)

	status := s.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if ex.Method() != http.MethodHead {
		w.Write([]byte(s.Body))
	}
}

// Redirect sends the client to Location. With AppendPath the routed
// remainder is added to the location.
type Redirect struct {
	Location   string
	Status     int
	AppendPath bool
}

func (r Redirect) Handle(ex router.Exchange, path string) {
	target := r.Location
	if r.AppendPath {
		target += path
	}

	status := r.Status
	if status == 0 {
		status = http.StatusFound
	}

	http.Redirect(ex.ResponseWriter(), ex.Request(), target, status)
}
