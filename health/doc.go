// Package health reports dependency health for the dispatch core.
//
// The operator-facing surface (HTTP handlers, probes) is out of scope; this
// package provides the Checker primitives and a checker that derives health
// from circuit breaker state, so an open breaker is visible to operations
// before users notice rejected requests.
package health
