// Package healthcheck probes proxy upstreams in the background and flips
// their health flag so proxy leaves stop sending traffic to dead servers.
package healthcheck
