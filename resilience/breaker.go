package resilience

import (
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is operating normally.
	StateClosed State = iota
	// StateOpen means the circuit is blocking all requests.
	StateOpen
	// StateHalfOpen means the circuit is testing if the dependency recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a circuit breaker.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures before opening
	// the circuit.
	// Default: 5
	FailureThreshold int

	// RatioThreshold opens the circuit when the failure ratio over the
	// rolling window reaches this value, once MinSamples outcomes have been
	// observed. Zero disables the ratio trip condition.
	RatioThreshold float64

	// WindowSize is the number of recent outcomes kept for the failure
	// ratio.
	// Default: 10
	WindowSize int

	// MinSamples is the number of outcomes required in the window before
	// the ratio condition is evaluated.
	// Default: 5
	MinSamples int

	// Cooldown is how long the circuit stays open before a recovery probe
	// is allowed.
	// Default: 30 seconds
	Cooldown time.Duration

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(from, to State)
}

// Breaker implements the circuit breaker pattern for one dependency.
//
// Unlike a wrap-style breaker, gating and outcome recording are separate
// calls: Allow reports whether a call may proceed, and the caller reports
// the outcome via RecordSuccess or RecordFailure. This keeps breaker state
// untouched on paths that never attempt the protected operation.
//
// Contract:
// - Concurrency: safe for concurrent use; at most one half-open probe is
//   admitted at a time.
// - Transitions: Allow is side-effecting only for open -> half-open once the
//   cool-down has elapsed; all other transitions happen in RecordSuccess /
//   RecordFailure.
type Breaker struct {
	config BreakerConfig

	mu                  sync.Mutex
	state               State
	consecutiveFailures int
	openedAt            time.Time
	probeInFlight       bool

	// Rolling outcome window; true marks a failure.
	window      []bool
	windowNext  int
	windowCount int

	// now is overridable in tests.
	now func() time.Time
}

// NewBreaker creates a new circuit breaker.
func NewBreaker(config BreakerConfig) *Breaker {
	// Apply defaults
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.WindowSize <= 0 {
		config.WindowSize = 10
	}
	if config.MinSamples <= 0 {
		config.MinSamples = 5
	}
	if config.Cooldown <= 0 {
		config.Cooldown = 30 * time.Second
	}

	return &Breaker{
		config: config,
		state:  StateClosed,
		window: make([]bool, config.WindowSize),
		now:    time.Now,
	}
}

// Allow reports whether a call may proceed.
//
// In the open state, Allow transitions to half-open once the cool-down has
// elapsed and admits exactly that one caller as the recovery probe. While a
// probe is in flight, concurrent callers are rejected as if open.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true

	case StateOpen:
		if b.now().Sub(b.openedAt) < b.config.Cooldown {
			return false
		}
		b.setStateLocked(StateHalfOpen)
		b.probeInFlight = true
		return true

	case StateHalfOpen:
		if b.probeInFlight {
			return false
		}
		b.probeInFlight = true
		return true
	}

	return false
}

// RecordSuccess records a successful call outcome.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.observeLocked(false)

	switch b.state {
	case StateClosed:
		b.consecutiveFailures = 0

	case StateHalfOpen:
		// Probe succeeded, the dependency recovered.
		b.probeInFlight = false
		b.consecutiveFailures = 0
		b.setStateLocked(StateClosed)
	}
	// A success while open comes from a call that was already in flight
	// when the circuit tripped; it carries no recovery signal.
}

// RecordFailure records a failed call outcome. Timeouts count as failures.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.observeLocked(true)

	switch b.state {
	case StateClosed:
		b.consecutiveFailures++
		if b.consecutiveFailures >= b.config.FailureThreshold || b.ratioTripsLocked() {
			b.openedAt = b.now()
			b.setStateLocked(StateOpen)
		}

	case StateHalfOpen:
		// Probe failed, restart the cool-down.
		b.probeInFlight = false
		b.openedAt = b.now()
		b.setStateLocked(StateOpen)
	}
}

// CancelProbe releases a half-open probe that was abandoned without an
// outcome, such as an inbound request cancelled mid-call. The breaker
// returns to open with the cool-down restarted so a later caller can probe
// again; without the release the probe slot would stay occupied and every
// future call would be rejected. No-op in any other state.
func (b *Breaker) CancelProbe() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateHalfOpen || !b.probeInFlight {
		return
	}
	b.probeInFlight = false
	b.openedAt = b.now()
	b.setStateLocked(StateOpen)
}

// CurrentState returns the current state and the failure ratio over the
// rolling window. It is read-only: a cooled-down open circuit still reports
// open until the next Allow admits a probe.
func (b *Breaker) CurrentState() (State, float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state, b.failureRatioLocked()
}

// Reset returns the breaker to the closed state and clears all counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures = 0
	b.probeInFlight = false
	b.windowNext = 0
	b.windowCount = 0
	b.setStateLocked(StateClosed)
}

func (b *Breaker) setStateLocked(state State) {
	if b.state == state {
		return
	}
	from := b.state
	b.state = state
	if b.config.OnStateChange != nil {
		b.config.OnStateChange(from, state)
	}
}

func (b *Breaker) observeLocked(failure bool) {
	b.window[b.windowNext] = failure
	b.windowNext = (b.windowNext + 1) % len(b.window)
	if b.windowCount < len(b.window) {
		b.windowCount++
	}
}

func (b *Breaker) failureRatioLocked() float64 {
	if b.windowCount == 0 {
		return 0
	}
	failures := 0
	for i := 0; i < b.windowCount; i++ {
		if b.window[i] {
			failures++
		}
	}
	return float64(failures) / float64(b.windowCount)
}

func (b *Breaker) ratioTripsLocked() bool {
	if b.config.RatioThreshold <= 0 {
		return false
	}
	if b.windowCount < b.config.MinSamples {
		return false
	}
	return b.failureRatioLocked() >= b.config.RatioThreshold
}
