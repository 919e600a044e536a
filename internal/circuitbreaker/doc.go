// Package circuitbreaker keeps proxy leaves away from upstreams that keep
// failing.
//
// A breaker is CLOSED while requests succeed. After threshold consecutive
// failures it OPENs and refuses traffic until the reset timeout passes, then
// turns HALF-OPEN: traffic flows again, the next success closes it and the
// next failure opens it anew.
//
//	breakers := circuitbreaker.NewRegistry(5, 30*time.Second)
//	cb := breakers.Breaker("http://10.0.0.5:8080")
//	if cb.Allow() {
//	    // forward, then cb.RecordSuccess() or cb.RecordFailure()
//	}
package circuitbreaker
