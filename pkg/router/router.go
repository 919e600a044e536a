package router

import (
	"net/http"
	"strings"
)

// Binding pairs a Pattern with the Router that receives paths it matches.
// The target is shared; a Router may be bound from any number of parents.
type Binding struct {
	Pattern *Pattern
	Target  *Router
}

// Router dispatches a path to the first binding whose pattern it contains,
// or to its own terminal Handler when none does.
type Router struct {
	bindings  []Binding
	unmatched Handler
}

// Option configures a Router at construction.
type Option func(*Router)

// WithUnmatched sets the Handler that runs when no binding matches.
func WithUnmatched(h Handler) Option {
	return func(r *Router) {
		r.unmatched = h
	}
}

// New creates a Router with no bindings that answers 404 unless an Option
// overrides its terminal Handler.
func New(opts ...Option) *Router {
	r := &Router{unmatched: NotFound}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// NewLeaf creates a Router that serves every path it receives with h.
func NewLeaf(h Handler) *Router {
	return New(WithUnmatched(h))
}

// Bind appends a binding. Earlier bindings take priority, and nothing stops
// the same pattern or target from being bound more than once.
func (r *Router) Bind(pattern *Pattern, target *Router) {
	r.bindings = append(r.bindings, Binding{Pattern: pattern, Target: target})
}

// BindExpr compiles expr and binds it to target.
func (r *Router) BindExpr(expr string, target *Router) error {
	p, err := Compile(expr)
	if err != nil {
		return err
	}

	r.Bind(p, target)
	return nil
}

// MustBind is like BindExpr but panics on a malformed expression.
func (r *Router) MustBind(expr string, target *Router) {
	r.Bind(MustCompile(expr), target)
}

// SetUnmatched replaces the terminal Handler. A nil h restores NotFound.
func (r *Router) SetUnmatched(h Handler) {
	if h == nil {
		h = NotFound
	}

	r.unmatched = h
}

// Bindings returns a copy of the bindings in registration order.
func (r *Router) Bindings() []Binding {
	out := make([]Binding, len(r.bindings))
	copy(out, r.bindings)
	return out
}

// Dispatch resolves path against the bindings. On the first match the
// matched length is removed from the start of path, whatever offset the
// match was found at, and the rest goes to the binding's target.
//
// A binding graph with a cycle recurses without bound.
func (r *Router) Dispatch(ex Exchange, path string) {
	for _, b := range r.bindings {
		if _, n, ok := b.Pattern.Match(path); ok {
			b.Target.Dispatch(ex, trimChars(path, n))
			return
		}
	}

	r.Handle(ex, path)
}

// Handle runs the terminal Handler, so a Router can itself be used
// wherever a Handler is expected.
func (r *Router) Handle(ex Exchange, path string) {
	r.unmatched.Handle(ex, path)
}

// ServeHTTP dispatches the request path with its leading slash removed.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.Dispatch(NewExchange(w, req), strings.TrimPrefix(req.URL.Path, "/"))
}
