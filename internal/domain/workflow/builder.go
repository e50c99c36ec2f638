package workflow

import (
	"context"
	"fmt"
	"sort"
)

// GuardFunc decides whether a transition may be taken
type GuardFunc func(ctx context.Context) bool

// StateMachineBuilder builds a configured state machine
type StateMachineBuilder interface {
	// Configure returns the configuration of the given source state
	Configure(state State) StateConfiguration

	// PermitFromAll allows a trigger to reach toState from every valid state
	PermitFromAll(trigger Trigger, toState State) StateMachineBuilder

	// OnTransition registers a listener called after every successful transition
	OnTransition(listener TransitionListener) StateMachineBuilder

	// Build creates a machine positioned at initialState
	Build(initialState State) StateMachine
}

// StateConfiguration configures the outgoing transitions of one state
type StateConfiguration interface {
	// Permit allows a trigger to transition to the target state
	Permit(trigger Trigger, toState State) StateConfiguration

	// PermitIf allows a trigger to transition to the target state when guard passes
	PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration
}

type transition struct {
	toState State
	guard   GuardFunc
}

type stateConfig struct {
	transitions map[Trigger][]transition
}

type stateMachineBuilder struct {
	configurations map[State]*stateConfig
	listeners      []TransitionListener
}

type stateMachine struct {
	current        State
	configurations map[State]*stateConfig
	listeners      []TransitionListener
}

// NewBuilder creates a new state machine builder
func NewBuilder() StateMachineBuilder {
	return &stateMachineBuilder{
		configurations: make(map[State]*stateConfig),
	}
}

func (b *stateMachineBuilder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}

	config, ok := b.configurations[state]
	if !ok {
		config = &stateConfig{transitions: make(map[Trigger][]transition)}
		b.configurations[state] = config
	}
	return config
}

func (b *stateMachineBuilder) PermitFromAll(trigger Trigger, toState State) StateMachineBuilder {
	for state := range validStates {
		b.Configure(state).Permit(trigger, toState)
	}
	return b
}

func (b *stateMachineBuilder) OnTransition(listener TransitionListener) StateMachineBuilder {
	if listener != nil {
		b.listeners = append(b.listeners, listener)
	}
	return b
}

// Build copies the configuration so later builder calls do not affect built machines
func (b *stateMachineBuilder) Build(initialState State) StateMachine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initialState))
	}

	configs := make(map[State]*stateConfig, len(b.configurations))
	for state, config := range b.configurations {
		transitions := make(map[Trigger][]transition, len(config.transitions))
		for trigger, ts := range config.transitions {
			transitions[trigger] = append([]transition(nil), ts...)
		}
		configs[state] = &stateConfig{transitions: transitions}
	}

	return &stateMachine{
		current:        initialState,
		configurations: configs,
		listeners:      append([]TransitionListener(nil), b.listeners...),
	}
}

func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	return c.PermitIf(trigger, toState, nil)
}

func (c *stateConfig) PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", toState))
	}
	c.transitions[trigger] = append(c.transitions[trigger], transition{toState: toState, guard: guard})
	return c
}

func (m *stateMachine) State() State {
	return m.current
}

func (m *stateMachine) CanFire(trigger Trigger) bool {
	config, ok := m.configurations[m.current]
	if !ok {
		return false
	}
	return len(config.transitions[trigger]) > 0
}

func (m *stateMachine) Fire(ctx context.Context, trigger Trigger) error {
	config, ok := m.configurations[m.current]
	if !ok || len(config.transitions[trigger]) == 0 {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, m.current)
	}

	// first transition whose guard passes wins
	for _, t := range config.transitions[trigger] {
		if t.guard != nil && !t.guard(ctx) {
			continue
		}
		done := Transition{From: m.current, To: t.toState, Trigger: trigger}
		m.current = t.toState
		for _, listener := range m.listeners {
			listener(ctx, done)
		}
		return nil
	}

	return fmt.Errorf("%w: trigger %s from state %s", ErrGuardFailed, trigger, m.current)
}

func (m *stateMachine) PermittedTriggers() []Trigger {
	config, ok := m.configurations[m.current]
	if !ok {
		return []Trigger{}
	}

	triggers := make([]Trigger, 0, len(config.transitions))
	for trigger := range config.transitions {
		triggers = append(triggers, trigger)
	}
	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })
	return triggers
}
