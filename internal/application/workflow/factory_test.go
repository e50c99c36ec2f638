package workflow

import (
	"context"
	"errors"
	"testing"

	domainwf "github.com/garyjia/mrsl-intake/internal/domain/workflow"
)

func fireAll(t *testing.T, m domainwf.StateMachine, triggers ...domainwf.Trigger) {
	t.Helper()
	for _, tr := range triggers {
		if err := m.Fire(context.Background(), tr); err != nil {
			t.Fatalf("Fire(%s) from %s failed: %v", tr, m.State(), err)
		}
	}
}

func TestSessionMachine_HappyPath(t *testing.T) {
	m := BuildSessionStateMachine(domainwf.StateIdle)

	fireAll(t, m,
		domainwf.TriggerSelectFile,
		domainwf.TriggerExtractionSucceeded,
		domainwf.TriggerEdit,
		domainwf.TriggerSubmit,
		domainwf.TriggerSubmissionSucceeded,
	)

	if m.State() != domainwf.StateSubmitted {
		t.Errorf("State = %v, want %v", m.State(), domainwf.StateSubmitted)
	}
}

func TestSessionMachine_ExtractionFailureReturnsToIdle(t *testing.T) {
	m := BuildSessionStateMachine(domainwf.StateIdle)

	fireAll(t, m,
		domainwf.TriggerSelectFile,
		domainwf.TriggerExtractionFailed,
		domainwf.TriggerReset,
	)

	if m.State() != domainwf.StateIdle {
		t.Errorf("State = %v, want %v", m.State(), domainwf.StateIdle)
	}
}

func TestSessionMachine_SubmissionFailureReturnsToExtracted(t *testing.T) {
	m := BuildSessionStateMachine(domainwf.StateExtracted)

	fireAll(t, m,
		domainwf.TriggerSubmit,
		domainwf.TriggerSubmissionFailed,
		domainwf.TriggerRecover,
	)

	if m.State() != domainwf.StateExtracted {
		t.Errorf("State = %v, want %v", m.State(), domainwf.StateExtracted)
	}
}

func TestSessionMachine_ResubmitAndEditAfterSubmit(t *testing.T) {
	m := BuildSessionStateMachine(domainwf.StateSubmitted)
	fireAll(t, m, domainwf.TriggerSubmit, domainwf.TriggerSubmissionSucceeded)

	fireAll(t, m, domainwf.TriggerEdit)
	if m.State() != domainwf.StateExtracted {
		t.Errorf("edit after submit should return to %v, got %v", domainwf.StateExtracted, m.State())
	}
}

func TestSessionMachine_BusyStatesRejectNewFile(t *testing.T) {
	for _, s := range []domainwf.State{domainwf.StateExtracting, domainwf.StateSubmitting} {
		m := BuildSessionStateMachine(s)
		err := m.Fire(context.Background(), domainwf.TriggerSelectFile)
		if !errors.Is(err, domainwf.ErrInvalidTransition) {
			t.Errorf("select file in %v: error = %v, want %v", s, err, domainwf.ErrInvalidTransition)
		}
	}
}

func TestSessionMachine_ClearFromAnyState(t *testing.T) {
	states := []domainwf.State{
		domainwf.StateIdle,
		domainwf.StateExtracting,
		domainwf.StateExtractionFailed,
		domainwf.StateExtracted,
		domainwf.StateSubmitting,
		domainwf.StateSubmissionFailed,
		domainwf.StateSubmitted,
	}

	for _, s := range states {
		m := BuildSessionStateMachine(s)
		fireAll(t, m, domainwf.TriggerClear)
		if m.State() != domainwf.StateIdle {
			t.Errorf("clear from %v landed in %v", s, m.State())
		}
	}
}

func TestSessionMachine_ListenersObserveTransitions(t *testing.T) {
	var seen []domainwf.Transition
	m := BuildSessionStateMachine(domainwf.StateIdle, func(ctx context.Context, tr domainwf.Transition) {
		seen = append(seen, tr)
	})

	fireAll(t, m, domainwf.TriggerSelectFile, domainwf.TriggerExtractionSucceeded)

	if len(seen) != 2 || seen[1].To != domainwf.StateExtracted {
		t.Errorf("listener saw %+v", seen)
	}
}
