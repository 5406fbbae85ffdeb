package workflow_test

import (
	"testing"

	"genarrative/internal/workflow"
)

func TestStateTransitions(t *testing.T) {
	legal := []struct{ from, to workflow.State }{
		{workflow.StatePending, workflow.StateExtracting},
		{workflow.StateExtracting, workflow.StateValidated},
		{workflow.StateValidated, workflow.StateGenerating},
		{workflow.StateGenerating, workflow.StateCompleted},
		{workflow.StatePending, workflow.StateFailed},
		{workflow.StateExtracting, workflow.StateFailed},
		{workflow.StateGenerating, workflow.StateFailed},
	}
	for _, tc := range legal {
		if !tc.from.CanTransition(tc.to) {
			t.Errorf("%s → %s should be legal", tc.from, tc.to)
		}
	}

	illegal := []struct{ from, to workflow.State }{
		{workflow.StatePending, workflow.StateGenerating},
		{workflow.StateExtracting, workflow.StateCompleted},
		{workflow.StateCompleted, workflow.StateFailed},
		{workflow.StateFailed, workflow.StateExtracting},
		{workflow.StateCompleted, workflow.StatePending},
		{workflow.StateValidated, workflow.StateExtracting},
	}
	for _, tc := range illegal {
		if tc.from.CanTransition(tc.to) {
			t.Errorf("%s → %s should be illegal", tc.from, tc.to)
		}
	}
}

func TestStateTerminal(t *testing.T) {
	for _, state := range []workflow.State{workflow.StateCompleted, workflow.StateFailed} {
		if !state.Terminal() {
			t.Errorf("%s should be terminal", state)
		}
	}
	for _, state := range []workflow.State{workflow.StatePending, workflow.StateExtracting, workflow.StateValidated, workflow.StateGenerating} {
		if state.Terminal() {
			t.Errorf("%s should not be terminal", state)
		}
	}
}

func TestStateValid(t *testing.T) {
	if workflow.State("paused").Valid() {
		t.Fatal("unknown state accepted")
	}
	if !workflow.StateGenerating.Valid() {
		t.Fatal("known state rejected")
	}
}
