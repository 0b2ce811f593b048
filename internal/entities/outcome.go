package entities

import "time"

type OutcomeStatus string

const (
	OutcomeImported      OutcomeStatus = "imported"
	OutcomeSkippedNoData OutcomeStatus = "skipped_no_data"
	OutcomeFailed        OutcomeStatus = "failed"
)

// ImportOutcome is the result of processing one book in a run.
type ImportOutcome struct {
	BookID string        `json:"book_id"`
	Title  string        `json:"title,omitempty"`
	Status OutcomeStatus `json:"status"`
	Reason string        `json:"reason,omitempty"` // set for failed books
	Path   string        `json:"path,omitempty"`   // set for imported books
}

// RunSummary aggregates the outcomes of a whole import run.
// Err is set when the run stopped early: a fatal book-list failure leaves
// Outcomes empty, while an interrupted run keeps the outcomes of the books
// processed before the interruption.
type RunSummary struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Outcomes   []ImportOutcome `json:"outcomes"`
	Imported   int             `json:"imported"`
	Skipped    int             `json:"skipped"`
	Failed     int             `json:"failed"`
	Err        error           `json:"-"`
}

// Add appends an outcome and updates the counters.
func (s *RunSummary) Add(outcome ImportOutcome) {
	s.Outcomes = append(s.Outcomes, outcome)
	switch outcome.Status {
	case OutcomeImported:
		s.Imported++
	case OutcomeSkippedNoData:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}

// Aborted reports whether the run stopped before every listed book was
// processed.
func (s RunSummary) Aborted() bool {
	return s.Err != nil
}
