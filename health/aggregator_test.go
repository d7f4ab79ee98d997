package health

import (
	"context"
	"testing"
	"time"

	"github.com/assistkit/aidispatch/resilience"
)

func staticChecker(name string, result Result) Checker {
	return CheckerFunc{
		ComponentName: name,
		CheckFn:       func(context.Context) Result { return result },
	}
}

func TestAggregator_AllHealthy(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{},
		staticChecker("store", Healthy("ok")),
		staticChecker("queue", Healthy("ok")))

	res := agg.Check(context.Background())
	if res.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", res.Status)
	}
	if len(res.Details) != 2 {
		t.Errorf("Details = %d entries, want 2", len(res.Details))
	}
}

func TestAggregator_WorstStatusWins(t *testing.T) {
	tests := []struct {
		name string
		mix  []Checker
		want Status
	}{
		{
			"degraded beats healthy",
			[]Checker{
				staticChecker("a", Healthy("ok")),
				staticChecker("b", Degraded("slow")),
			},
			StatusDegraded,
		},
		{
			"unhealthy beats degraded",
			[]Checker{
				staticChecker("a", Degraded("slow")),
				staticChecker("b", Unhealthy("down")),
				staticChecker("c", Healthy("ok")),
			},
			StatusUnhealthy,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewAggregator(AggregatorConfig{}, tt.mix...).Check(context.Background())
			if res.Status != tt.want {
				t.Errorf("Status = %v, want %v", res.Status, tt.want)
			}
		})
	}
}

func TestAggregator_WithBreakerChecker(t *testing.T) {
	reg := resilience.NewRegistry(resilience.BreakerConfig{FailureThreshold: 1}, "ai-detect")
	reg.RecordFailure("ai-detect")

	agg := NewAggregator(AggregatorConfig{},
		NewBreakerChecker(reg),
		staticChecker("store", Healthy("ok")))

	res := agg.Check(context.Background())
	if res.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy from open breaker", res.Status)
	}
	if _, ok := res.Details["circuit-breakers"]; !ok {
		t.Error("Details missing circuit-breakers entry")
	}
}

func TestAggregator_StuckCheckerTimesOut(t *testing.T) {
	stuck := CheckerFunc{
		ComponentName: "stuck",
		CheckFn: func(ctx context.Context) Result {
			<-ctx.Done()
			return Healthy("late")
		},
	}

	agg := NewAggregator(AggregatorConfig{Timeout: 20 * time.Millisecond},
		stuck, staticChecker("store", Healthy("ok")))

	results := agg.CheckAll(context.Background())
	if results["stuck"].Status != StatusUnhealthy {
		t.Errorf("stuck checker Status = %v, want unhealthy timeout", results["stuck"].Status)
	}
	if results["store"].Status != StatusHealthy {
		t.Errorf("store checker Status = %v, want healthy", results["store"].Status)
	}
}

func TestReduce_EmptyIsHealthy(t *testing.T) {
	if got := Reduce(nil); got != StatusHealthy {
		t.Errorf("Reduce(nil) = %v, want healthy", got)
	}
}
