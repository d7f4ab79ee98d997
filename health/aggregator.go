package health

import (
	"context"
	"sync"
	"time"
)

// AggregatorConfig configures the aggregator.
type AggregatorConfig struct {
	// Timeout bounds a full CheckAll pass; a checker still running when it
	// expires reports unhealthy.
	// Default: 10 seconds
	Timeout time.Duration
}

// Aggregator combines the results of several checkers into one status, for
// a readiness surface that watches the breaker registry alongside other
// dependencies. The checker set is fixed at construction.
//
// Contract:
// - Concurrency: safe for concurrent use; checkers run in parallel.
// - Reduction: any unhealthy result wins, then degraded, else healthy.
type Aggregator struct {
	config   AggregatorConfig
	checkers []Checker
}

// NewAggregator creates an aggregator over the given checkers.
func NewAggregator(config AggregatorConfig, checkers ...Checker) *Aggregator {
	// Apply defaults
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &Aggregator{
		config:   config,
		checkers: checkers,
	}
}

// CheckAll runs every checker and returns the per-checker results keyed by
// checker name.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]Result, len(a.checkers))
	)
	for _, checker := range a.checkers {
		wg.Add(1)
		go func(checker Checker) {
			defer wg.Done()
			result := a.runCheck(ctx, checker)
			mu.Lock()
			results[checker.Name()] = result
			mu.Unlock()
		}(checker)
	}
	wg.Wait()

	return results
}

// Check runs all checkers and reduces them to a single Result, letting the
// aggregator itself satisfy the Checker interface.
func (a *Aggregator) Check(ctx context.Context) Result {
	results := a.CheckAll(ctx)
	status := Reduce(results)

	details := make(map[string]any, len(results))
	for name, result := range results {
		details[name] = map[string]any{
			"status":  result.Status.String(),
			"message": result.Message,
		}
	}

	var result Result
	switch status {
	case StatusUnhealthy:
		result = Unhealthy("one or more checks failed")
	case StatusDegraded:
		result = Degraded("one or more checks degraded")
	default:
		result = Healthy("all checks passed")
	}
	result.Details = details
	return result
}

// Name identifies the aggregate check.
func (a *Aggregator) Name() string { return "aggregate" }

// Reduce collapses a result set to the worst status present. An empty set
// is healthy.
func Reduce(results map[string]Result) Status {
	status := StatusHealthy
	for _, result := range results {
		if result.Status > status {
			status = result.Status
		}
	}
	return status
}

// runCheck runs one checker, bounding it by the pass context so a stuck
// checker cannot hang the whole pass.
func (a *Aggregator) runCheck(ctx context.Context, checker Checker) Result {
	done := make(chan Result, 1)
	go func() {
		done <- checker.Check(ctx)
	}()

	select {
	case result := <-done:
		return result
	case <-ctx.Done():
		return Unhealthy("check timed out")
	}
}

// Ensure Aggregator implements Checker
var _ Checker = (*Aggregator)(nil)
