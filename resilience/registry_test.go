package resilience

import (
	"reflect"
	"testing"
	"time"
)

func TestRegistry_FixedNameSet(t *testing.T) {
	reg := NewRegistry(BreakerConfig{}, "ai-detect", "ai-ocr")

	if _, ok := reg.Get("ai-detect"); !ok {
		t.Error("Get(ai-detect) ok = false, want true")
	}
	if _, ok := reg.Get("ai-unknown"); ok {
		t.Error("Get(ai-unknown) ok = true, want false")
	}

	want := []string{"ai-detect", "ai-ocr"}
	if got := reg.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestRegistry_UnknownNameFailsClosed(t *testing.T) {
	reg := NewRegistry(BreakerConfig{}, "ai-detect")

	if reg.Allow("ai-unknown") {
		t.Error("Allow(unknown) = true, want false")
	}

	// Recording for unknown names must not panic
	reg.RecordSuccess("ai-unknown")
	reg.RecordFailure("ai-unknown")

	if _, _, ok := reg.CurrentState("ai-unknown"); ok {
		t.Error("CurrentState(unknown) ok = true, want false")
	}
}

func TestRegistry_IndependentBreakers(t *testing.T) {
	reg := NewRegistry(BreakerConfig{FailureThreshold: 2}, "ai-detect", "ai-ocr")

	reg.RecordFailure("ai-detect")
	reg.RecordFailure("ai-detect")

	if state, _, _ := reg.CurrentState("ai-detect"); state != StateOpen {
		t.Errorf("ai-detect state = %v, want open", state)
	}
	if state, _, _ := reg.CurrentState("ai-ocr"); state != StateClosed {
		t.Errorf("ai-ocr state = %v, want closed (isolation)", state)
	}
	if reg.Allow("ai-detect") {
		t.Error("Allow(ai-detect) = true while open, want false")
	}
	if !reg.Allow("ai-ocr") {
		t.Error("Allow(ai-ocr) = false while closed, want true")
	}
}

func TestNewRegistryFunc_PerNameConfig(t *testing.T) {
	reg := NewRegistryFunc(func(name string) BreakerConfig {
		cfg := BreakerConfig{FailureThreshold: 5, Cooldown: time.Minute}
		if name == "ai-transcribe" {
			cfg.FailureThreshold = 1
		}
		return cfg
	}, "ai-detect", "ai-transcribe")

	reg.RecordFailure("ai-detect")
	reg.RecordFailure("ai-transcribe")

	if state, _, _ := reg.CurrentState("ai-detect"); state != StateClosed {
		t.Errorf("ai-detect state = %v, want closed", state)
	}
	if state, _, _ := reg.CurrentState("ai-transcribe"); state != StateOpen {
		t.Errorf("ai-transcribe state = %v, want open", state)
	}
}
