// Package workflow orchestrates the extract-then-generate pipeline:
// one source becomes a scene, the scene fans out into per-modality
// generation, and every run is journaled for later inspection.
package workflow

// State is the lifecycle of one pipeline run.
type State string

const (
	StatePending    State = "pending"
	StateExtracting State = "extracting"
	StateValidated  State = "validated"
	StateGenerating State = "generating"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

var allStates = []State{
	StatePending,
	StateExtracting,
	StateValidated,
	StateGenerating,
	StateCompleted,
	StateFailed,
}

var stateSet = func() map[State]struct{} {
	set := make(map[State]struct{}, len(allStates))
	for _, state := range allStates {
		set[state] = struct{}{}
	}
	return set
}()

// Valid reports whether the state is part of the lifecycle.
func (s State) Valid() bool {
	_, ok := stateSet[s]
	return ok
}

// Terminal reports whether a run in this state is finished.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// forward transitions; Failed is reachable from every non-terminal
// state and is handled separately.
var forwardTransitions = map[State]State{
	StatePending:    StateExtracting,
	StateExtracting: StateValidated,
	StateValidated:  StateGenerating,
	StateGenerating: StateCompleted,
}

// CanTransition reports whether from → to is a legal state change.
func (from State) CanTransition(to State) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if to == StateFailed {
		return !from.Terminal()
	}
	return forwardTransitions[from] == to
}
