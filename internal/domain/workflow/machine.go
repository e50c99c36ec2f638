package workflow

import "context"

// Transition describes one completed state change
type Transition struct {
	From    State
	To      State
	Trigger Trigger
}

// TransitionListener observes completed transitions
type TransitionListener func(ctx context.Context, t Transition)

// StateMachine tracks the current state and validates transitions.
// It is not safe for concurrent use; the owner serialises access.
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger is configured for the current state
	CanFire(trigger Trigger) bool

	// Fire executes the trigger, moving to the configured target state
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers returns the triggers configured for the current state
	PermittedTriggers() []Trigger
}
