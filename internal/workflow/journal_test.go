package workflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"genarrative/internal/config"
	"genarrative/internal/testsupport"
	"genarrative/internal/workflow"
)

func openJournal(t *testing.T) (*workflow.Journal, *config.Config) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	journal, err := workflow.OpenJournal(cfg)
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	t.Cleanup(func() { journal.Close() })
	return journal, cfg
}

func TestJournalRunLifecycle(t *testing.T) {
	journal, _ := openJournal(t)
	ctx := context.Background()

	if err := journal.CreateRun(ctx, "run-1", "scene.png"); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	run, err := journal.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.State != workflow.StatePending || run.Source != "scene.png" {
		t.Fatalf("fresh run: %+v", run)
	}

	steps := []workflow.State{workflow.StateExtracting, workflow.StateValidated, workflow.StateGenerating, workflow.StateCompleted}
	for _, state := range steps {
		if err := journal.Transition(ctx, "run-1", state, "", ""); err != nil {
			t.Fatalf("Transition to %s: %v", state, err)
		}
	}
	run, err = journal.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.State != workflow.StateCompleted {
		t.Fatalf("final state: %s", run.State)
	}
}

func TestJournalRejectsIllegalTransition(t *testing.T) {
	journal, _ := openJournal(t)
	ctx := context.Background()

	if err := journal.CreateRun(ctx, "run-2", ""); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	err := journal.Transition(ctx, "run-2", workflow.StateCompleted, "", "")
	if err == nil || !strings.Contains(err.Error(), "illegal run transition") {
		t.Fatalf("expected illegal transition error, got %v", err)
	}
}

func TestJournalSceneIDStickiness(t *testing.T) {
	journal, _ := openJournal(t)
	ctx := context.Background()

	if err := journal.CreateRun(ctx, "run-3", ""); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := journal.Transition(ctx, "run-3", workflow.StateExtracting, "", ""); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if err := journal.Transition(ctx, "run-3", workflow.StateValidated, "scene_x", ""); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if err := journal.Transition(ctx, "run-3", workflow.StateFailed, "", "backend went away"); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	run, err := journal.GetRun(ctx, "run-3")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.SceneID != "scene_x" {
		t.Fatalf("scene ID lost across transitions: %+v", run)
	}
	if run.Error != "backend went away" {
		t.Fatalf("error not recorded: %q", run.Error)
	}
}

func TestJournalOutcomesRoundTrip(t *testing.T) {
	journal, _ := openJournal(t)
	ctx := context.Background()

	if err := journal.CreateRun(ctx, "run-4", ""); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	outcomes := []workflow.ModalityOutcome{
		{Modality: "text", Status: workflow.OutcomeCompleted, MediaID: "media_a", Attempts: 1},
		{Modality: "image", Status: workflow.OutcomeFailed, ErrorKind: "backend_unavailable", Error: "connection refused", Attempts: 3},
	}
	for _, outcome := range outcomes {
		if err := journal.RecordOutcome(ctx, "run-4", outcome); err != nil {
			t.Fatalf("RecordOutcome: %v", err)
		}
	}

	got, err := journal.Outcomes(ctx, "run-4")
	if err != nil {
		t.Fatalf("Outcomes: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("outcome count: %d", len(got))
	}
	// Ordered by modality name.
	if got[0].Modality != "image" || got[0].Attempts != 3 || got[0].ErrorKind != "backend_unavailable" {
		t.Fatalf("outcome[0]: %+v", got[0])
	}
	if got[1].Modality != "text" || got[1].MediaID != "media_a" {
		t.Fatalf("outcome[1]: %+v", got[1])
	}

	// Re-recording the same modality replaces, not duplicates.
	if err := journal.RecordOutcome(ctx, "run-4", workflow.ModalityOutcome{
		Modality: "image", Status: workflow.OutcomeCompleted, MediaID: "media_b", Attempts: 4,
	}); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	got, err = journal.Outcomes(ctx, "run-4")
	if err != nil {
		t.Fatalf("Outcomes: %v", err)
	}
	if len(got) != 2 || got[0].MediaID != "media_b" {
		t.Fatalf("replaced outcome: %+v", got)
	}
}

func TestJournalGetRunNotFound(t *testing.T) {
	journal, _ := openJournal(t)

	_, err := journal.GetRun(context.Background(), "run-missing")
	if !errors.Is(err, workflow.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestJournalListRunsNewestFirst(t *testing.T) {
	journal, _ := openJournal(t)
	ctx := context.Background()

	for _, id := range []string{"run-a", "run-b", "run-c"} {
		if err := journal.CreateRun(ctx, id, ""); err != nil {
			t.Fatalf("CreateRun %s: %v", id, err)
		}
	}

	runs, err := journal.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("limit ignored: %d runs", len(runs))
	}
}

func TestJournalReopenKeepsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	journal, err := workflow.OpenJournal(cfg)
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	if err := journal.CreateRun(context.Background(), "run-keep", "x"); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := journal.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := workflow.OpenJournal(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.GetRun(context.Background(), "run-keep"); err != nil {
		t.Fatalf("history lost on reopen: %v", err)
	}
}
