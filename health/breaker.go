package health

import (
	"context"
	"fmt"

	"github.com/assistkit/aidispatch/resilience"
)

// BreakerChecker derives health from the circuit breaker registry.
//
// Any open breaker makes the check unhealthy; a half-open breaker (probe in
// progress) reports degraded; otherwise healthy. Per-dependency state and
// failure ratio are included in the result details.
type BreakerChecker struct {
	registry *resilience.Registry
}

// NewBreakerChecker creates a checker over the given registry.
func NewBreakerChecker(registry *resilience.Registry) *BreakerChecker {
	return &BreakerChecker{registry: registry}
}

// Name identifies the checked component.
func (c *BreakerChecker) Name() string { return "circuit-breakers" }

// Check reports the aggregate breaker health.
func (c *BreakerChecker) Check(_ context.Context) Result {
	details := make(map[string]any)
	open, halfOpen := 0, 0

	for _, name := range c.registry.Names() {
		state, ratio, ok := c.registry.CurrentState(name)
		if !ok {
			continue
		}
		details[name] = map[string]any{
			"state":         state.String(),
			"failure_ratio": ratio,
		}
		switch state {
		case resilience.StateOpen:
			open++
		case resilience.StateHalfOpen:
			halfOpen++
		}
	}

	var result Result
	switch {
	case open > 0:
		result = Unhealthy(fmt.Sprintf("%d dependency breaker(s) open", open))
	case halfOpen > 0:
		result = Degraded(fmt.Sprintf("%d dependency breaker(s) probing recovery", halfOpen))
	default:
		result = Healthy("all dependency breakers closed")
	}
	result.Details = details
	return result
}

// Ensure BreakerChecker implements Checker
var _ Checker = (*BreakerChecker)(nil)
