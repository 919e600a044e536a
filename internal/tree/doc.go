// Package tree builds the router graph described by config.Config.
//
// Every declared router becomes exactly one *router.Router, and every mount
// that targets it shares that instance. Terminal behaviors are wrapped so
// the collector learns which route answered, how long it took and with what
// status.
package tree
