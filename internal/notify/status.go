package notify

import (
	"sync"
	"time"
)

// StatusNotice is the notice currently shown in the status line.
type StatusNotice struct {
	Event
	ReportedAt time.Time  `json:"reported_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// Status keeps the most recent notice for a status-line display.
type Status struct {
	mu      sync.RWMutex
	current *StatusNotice
	now     func() time.Time
}

func NewStatus() *Status {
	return &Status{now: time.Now}
}

func (s *Status) Report(event Event) {
	now := s.now()
	notice := &StatusNotice{Event: event, ReportedAt: now}
	if !event.Force {
		duration := event.Duration
		if duration <= 0 {
			duration = DefaultDuration
		}
		expires := now.Add(duration)
		notice.ExpiresAt = &expires
	}

	s.mu.Lock()
	s.current = notice
	s.mu.Unlock()
}

// Current returns the visible notice, or nil when the last one expired.
func (s *Status) Current() *StatusNotice {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	if s.current.ExpiresAt != nil && s.now().After(*s.current.ExpiresAt) {
		return nil
	}
	notice := *s.current
	return &notice
}

// Last returns the most recent notice regardless of expiry.
func (s *Status) Last() *StatusNotice {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	notice := *s.current
	return &notice
}
