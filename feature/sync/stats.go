package sync

import (
	"strings"

	"stock-sync/feature/catalog/models"
)

// maxDetailNotes bounds the free-text detail kept on a run row.
const maxDetailNotes = 20

// RunStatistics accumulates per-record outcomes for one run. It is owned by
// the orchestrator and updated only through Record; connectors never touch it.
type RunStatistics struct {
	Total   int
	Created int
	Updated int
	Skipped int
	Errors  int

	notes []string
}

// Record folds one reconciliation outcome into the counters.
func (s *RunStatistics) Record(o Outcome) {
	s.Total++
	switch o.Action {
	case models.ActionCreated:
		s.Created++
	case models.ActionUpdated:
		s.Updated++
	case models.ActionSkipped, models.ActionSkippedConflict:
		s.Skipped++
	case models.ActionError:
		s.Errors++
		s.Note(o.Detail)
	}
}

// Note appends a diagnostic line, dropping everything past the cap.
func (s *RunStatistics) Note(detail string) {
	if detail == "" || len(s.notes) >= maxDetailNotes {
		return
	}
	s.notes = append(s.notes, detail)
}

// Status derives the terminal run status from the error counter.
func (s *RunStatistics) Status() models.RunStatus {
	if s.Errors > 0 {
		return models.RunStatusCompletedWithErrors
	}
	return models.RunStatusCompleted
}

// ApplyTo copies the counters onto the persisted run row.
func (s *RunStatistics) ApplyTo(run *models.SyncRun) {
	run.Total = s.Total
	run.Created = s.Created
	run.Updated = s.Updated
	run.Skipped = s.Skipped
	run.Errors = s.Errors
	run.Detail = strings.Join(s.notes, "; ")
}
