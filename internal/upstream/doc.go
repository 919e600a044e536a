// Package upstream models the servers a proxy leaf forwards to: their URL
// and weight, health, active connections and a smoothed response time.
package upstream
