package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"idle", StateIdle, true},
		{"submitted", StateSubmitted, true},
		{"invalid state", State("INVALID"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsBusy(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateIdle, false},
		{StateExtracting, true},
		{StateExtractionFailed, false},
		{StateExtracted, false},
		{StateSubmitting, true},
		{StateSubmissionFailed, false},
		{StateSubmitted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsBusy(); got != tt.expected {
				t.Errorf("State.IsBusy() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_HasRecord(t *testing.T) {
	if StateIdle.HasRecord() || StateExtracting.HasRecord() {
		t.Error("idle and extracting sessions have no record")
	}
	if !StateExtracted.HasRecord() || !StateSubmitted.HasRecord() {
		t.Error("extracted and submitted sessions keep the record")
	}
}

func TestBuilder_ConfigureReturnsSameConfig(t *testing.T) {
	builder := NewBuilder()

	config := builder.Configure(StateIdle)
	if config == nil {
		t.Fatal("Configure() returned nil")
	}
	if config2 := builder.Configure(StateIdle); config != config2 {
		t.Error("Configure() should return same config for same state")
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	NewBuilder().Configure(State("INVALID"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()

	NewBuilder().Build(State("INVALID"))
}

func TestStateConfiguration_Permit(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateIdle).Permit(TriggerSelectFile, StateExtracting)

	machine := builder.Build(StateIdle)

	if !machine.CanFire(TriggerSelectFile) {
		t.Error("CanFire() should return true for permitted trigger")
	}
	if err := machine.Fire(context.Background(), TriggerSelectFile); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}
	if machine.State() != StateExtracting {
		t.Errorf("State after Fire() = %v, want %v", machine.State(), StateExtracting)
	}
}

func TestStateMachine_FireUnconfiguredTrigger(t *testing.T) {
	machine := NewBuilder().Build(StateIdle)

	err := machine.Fire(context.Background(), TriggerSubmit)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
	if machine.State() != StateIdle {
		t.Errorf("state changed to %v after rejected trigger", machine.State())
	}
}

func TestStateConfiguration_PermitIf_GuardFails(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateExtracted).
		PermitIf(TriggerSubmit, StateSubmitting, func(ctx context.Context) bool { return false })

	machine := builder.Build(StateExtracted)

	err := machine.Fire(context.Background(), TriggerSubmit)
	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() error = %v, want %v", err, ErrGuardFailed)
	}
	if machine.State() != StateExtracted {
		t.Errorf("State should remain %v after failed Fire(), got %v", StateExtracted, machine.State())
	}
}

func TestStateConfiguration_PermitIf_FirstPassingGuardWins(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateExtracted).
		PermitIf(TriggerSubmit, StateSubmitted, func(ctx context.Context) bool { return false }).
		PermitIf(TriggerSubmit, StateSubmitting, func(ctx context.Context) bool { return true })

	machine := builder.Build(StateExtracted)
	if err := machine.Fire(context.Background(), TriggerSubmit); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if machine.State() != StateSubmitting {
		t.Errorf("State = %v, want %v", machine.State(), StateSubmitting)
	}
}

func TestBuilder_PermitFromAll(t *testing.T) {
	builder := NewBuilder().PermitFromAll(TriggerClear, StateIdle)

	for state := range validStates {
		machine := builder.Build(state)
		if err := machine.Fire(context.Background(), TriggerClear); err != nil {
			t.Errorf("clear from %v failed: %v", state, err)
		}
		if machine.State() != StateIdle {
			t.Errorf("clear from %v landed in %v", state, machine.State())
		}
	}
}

func TestBuilder_OnTransitionListener(t *testing.T) {
	var seen []Transition
	builder := NewBuilder().OnTransition(func(ctx context.Context, tr Transition) {
		seen = append(seen, tr)
	})
	builder.Configure(StateIdle).Permit(TriggerSelectFile, StateExtracting)

	machine := builder.Build(StateIdle)
	_ = machine.Fire(context.Background(), TriggerSelectFile)
	_ = machine.Fire(context.Background(), TriggerSubmit) // rejected, not observed

	if len(seen) != 1 {
		t.Fatalf("listener saw %d transitions, want 1", len(seen))
	}
	want := Transition{From: StateIdle, To: StateExtracting, Trigger: TriggerSelectFile}
	if seen[0] != want {
		t.Errorf("transition = %+v, want %+v", seen[0], want)
	}
}

func TestBuilder_BuildIsIsolated(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateIdle).Permit(TriggerSelectFile, StateExtracting)
	machine := builder.Build(StateIdle)

	builder.Configure(StateIdle).Permit(TriggerClear, StateIdle)

	if machine.CanFire(TriggerClear) {
		t.Error("configuration added after Build() leaked into the machine")
	}
}

func TestStateMachine_PermittedTriggersSorted(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateExtracted).
		Permit(TriggerSubmit, StateSubmitting).
		Permit(TriggerEdit, StateExtracted).
		Permit(TriggerClear, StateIdle)

	got := builder.Build(StateExtracted).PermittedTriggers()
	want := []Trigger{TriggerClear, TriggerEdit, TriggerSubmit}
	if len(got) != len(want) {
		t.Fatalf("PermittedTriggers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PermittedTriggers()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
