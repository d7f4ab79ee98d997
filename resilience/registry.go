package resilience

import "sort"

// Registry holds one circuit breaker per dependency name.
//
// The name set is fixed at construction so the map cannot grow unbounded
// under dynamic names; operations on unregistered names fail closed.
//
// Contract:
// - Concurrency: safe for concurrent use. The map itself is immutable after
//   construction; each breaker serializes its own state.
type Registry struct {
	breakers map[string]*Breaker
}

// NewRegistry creates a registry with one breaker per name, all sharing the
// same configuration. Use NewRegistryFunc when breakers need per-name tuning
// or a name-aware OnStateChange hook.
func NewRegistry(config BreakerConfig, names ...string) *Registry {
	breakers := make(map[string]*Breaker, len(names))
	for _, name := range names {
		breakers[name] = NewBreaker(config)
	}
	return &Registry{breakers: breakers}
}

// NewRegistryFunc creates a registry where each breaker's configuration is
// produced per name, allowing per-dependency tuning and name-aware state
// change hooks.
func NewRegistryFunc(configFor func(name string) BreakerConfig, names ...string) *Registry {
	breakers := make(map[string]*Breaker, len(names))
	for _, name := range names {
		breakers[name] = NewBreaker(configFor(name))
	}
	return &Registry{breakers: breakers}
}

// Get returns the breaker for a dependency name.
func (r *Registry) Get(name string) (*Breaker, bool) {
	b, ok := r.breakers[name]
	return b, ok
}

// Allow reports whether a call to the named dependency may proceed.
// Unregistered names are rejected.
func (r *Registry) Allow(name string) bool {
	b, ok := r.breakers[name]
	if !ok {
		return false
	}
	return b.Allow()
}

// RecordSuccess records a successful call to the named dependency.
func (r *Registry) RecordSuccess(name string) {
	if b, ok := r.breakers[name]; ok {
		b.RecordSuccess()
	}
}

// RecordFailure records a failed call to the named dependency.
func (r *Registry) RecordFailure(name string) {
	if b, ok := r.breakers[name]; ok {
		b.RecordFailure()
	}
}

// CancelProbe releases an abandoned half-open probe for the named
// dependency.
func (r *Registry) CancelProbe(name string) {
	if b, ok := r.breakers[name]; ok {
		b.CancelProbe()
	}
}

// CurrentState returns the state and failure ratio for the named dependency.
// ok is false for unregistered names.
func (r *Registry) CurrentState(name string) (state State, failureRatio float64, ok bool) {
	b, found := r.breakers[name]
	if !found {
		return StateClosed, 0, false
	}
	state, failureRatio = b.CurrentState()
	return state, failureRatio, true
}

// Names returns the registered dependency names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
