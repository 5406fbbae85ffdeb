package workflow

// Outcome statuses for a single modality within a run.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// ModalityOutcome is the final word on one modality of a run.
type ModalityOutcome struct {
	Modality  string `json:"modality"`
	Status    string `json:"status"`
	MediaID   string `json:"media_id,omitempty"`
	Artifact  string `json:"artifact,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
	Attempts  int    `json:"attempts"`
}

// Result is the uniform run envelope. Pipeline failures live inside
// it; a run that failed still yields a Result describing how far it
// got and what each modality did.
type Result struct {
	RunID         string                     `json:"run_id"`
	State         State                      `json:"state"`
	SceneID       string                     `json:"scene_id,omitempty"`
	SourceMediaID string                     `json:"source_media_id,omitempty"`
	Error         string                     `json:"error,omitempty"`
	ErrorKind     string                     `json:"error_kind,omitempty"`
	Outcomes      map[string]ModalityOutcome `json:"modalities,omitempty"`
}

// Succeeded reports whether at least one modality completed.
func (r *Result) Succeeded() bool {
	for _, outcome := range r.Outcomes {
		if outcome.Status == OutcomeCompleted {
			return true
		}
	}
	return false
}
