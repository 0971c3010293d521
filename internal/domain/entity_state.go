package domain

import "fmt"

// EntityState is a TargetProcess workflow state.
// The numeric codes are defined by the TargetProcess process configuration.
type EntityState int

const (
	EntityStateOpen       EntityState = 73
	EntityStatePlanned    EntityState = 74
	EntityStateInProgress EntityState = 75
	EntityStateInStaging  EntityState = 127
)

var entityStateNames = map[EntityState]string{
	EntityStateOpen:       "Open",
	EntityStatePlanned:    "Planned",
	EntityStateInProgress: "In Progress",
	EntityStateInStaging:  "In Staging",
}

// AllEntityStates returns every known entity state.
func AllEntityStates() []EntityState {
	return []EntityState{
		EntityStateOpen,
		EntityStatePlanned,
		EntityStateInProgress,
		EntityStateInStaging,
	}
}

// EntityStateFromCode maps a TargetProcess state id to an EntityState.
// Unknown codes are rejected rather than guessed.
func EntityStateFromCode(code int) (EntityState, error) {
	s := EntityState(code)
	if !s.IsValid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownEntityState, code)
	}
	return s, nil
}

// Code returns the TargetProcess state id.
func (s EntityState) Code() int {
	return int(s)
}

// IsValid returns true if the state is a known entity state.
func (s EntityState) IsValid() bool {
	_, ok := entityStateNames[s]
	return ok
}

// IsPickable returns true if a ticket in this state can be started.
func (s EntityState) IsPickable() bool {
	return s == EntityStateOpen || s == EntityStatePlanned
}

// String returns the display name of the state.
func (s EntityState) String() string {
	if name, ok := entityStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("EntityState(%d)", int(s))
}
