// Package proxy implements the proxy leaf: a terminal behavior that forwards
// the request to one of a pool of upstreams, with the routed remainder as
// the upstream path.
package proxy
