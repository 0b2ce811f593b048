package audit

import (
	"fmt"
	"log"
	"time"

	"github.com/mrlokans/perlego-sync/internal/database/audit"
	"github.com/mrlokans/perlego-sync/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	go func() {
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// LogNotice records a user-visible import notice.
func (s *Service) LogNotice(action, message string, urgent bool) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventNotice,
		Action:      action,
		Description: truncate(message, 500),
		Urgent:      urgent,
		Status:      entities.AuditStatusSuccess,
	}
	if urgent {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogImport records the outcome of an import run.
func (s *Service) LogImport(summary entities.RunSummary) {
	event := &entities.AuditEvent{
		EventType: entities.AuditEventImport,
		Action:    "perlego_import",
		Description: fmt.Sprintf("Imported %d books, skipped %d, failed %d",
			summary.Imported, summary.Skipped, summary.Failed),
		Status: entities.AuditStatusSuccess,
	}

	if summary.Err != nil {
		event.Status = entities.AuditStatusFailed
		event.Description = truncate("Import aborted: "+summary.Err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogSettings records a settings change.
func (s *Service) LogSettings(action, description string) {
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventSettings,
		Action:      action,
		Description: truncate(description, 500),
		Status:      entities.AuditStatusSuccess,
	})
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(eventType, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
