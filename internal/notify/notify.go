// Package notify carries advisory import notices from the importer to
// whatever displays them: logs, the status endpoint and the audit trail.
//
// Reporters are called synchronously and must return quickly. The import
// never depends on a notice being delivered.
package notify

import (
	"log"
	"time"
)

type EventKind string

const (
	EventStarting  EventKind = "starting"
	EventSaving    EventKind = "saving"
	EventCompleted EventKind = "completed"
	EventFailed    EventKind = "failed"
)

// DefaultDuration is how long a non-forced notice stays visible
const DefaultDuration = 5 * time.Second

// Event is a single user-facing notice.
// Force keeps the notice visible until another one supersedes it.
type Event struct {
	Kind     EventKind     `json:"kind"`
	Message  string        `json:"message"`
	Urgent   bool          `json:"urgent"`
	Duration time.Duration `json:"duration"`
	Force    bool          `json:"force"`
}

// Reporter receives import notices.
type Reporter interface {
	Report(event Event)
}

// Nop discards every notice.
type Nop struct{}

func (Nop) Report(Event) {}

// Multi fans a notice out to several reporters in order.
type Multi []Reporter

func (m Multi) Report(event Event) {
	for _, r := range m {
		if r != nil {
			r.Report(event)
		}
	}
}

// Logger writes notices to the standard logger.
type Logger struct{}

func (Logger) Report(event Event) {
	if event.Urgent {
		log.Printf("Perlego import: [%s] WARNING %s", event.Kind, event.Message)
		return
	}
	log.Printf("Perlego import: [%s] %s", event.Kind, event.Message)
}
