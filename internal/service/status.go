package service

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// maxStatusErrors caps the error list carried in status payloads.
const maxStatusErrors = 20

// StatusError is one recorded failure in a status payload.
type StatusError struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	When    string         `json:"when,omitempty"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// Status accumulates service health for the retained status topic.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Status struct {
	mu sync.Mutex

	state             string
	eventCount        int
	lastRunTS         int64
	lastRunISO        string
	publishErrorCount int
	errorCount        int
	errors            []StatusError
}

// NewStatus creates a Status in the given initial state (e.g. "starting").
func NewStatus(state string) *Status {
	return &Status{state: state}
}

// SetState updates the reported state string.
func (s *Status) SetState(state string) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// AddEvents adds to the processed-event counter.
func (s *Status) AddEvents(n int) {
	s.mu.Lock()
	s.eventCount += n
	s.mu.Unlock()
}

// MarkRun records now as the last run time.
func (s *Status) MarkRun() {
	now := time.Now().UTC()
	s.mu.Lock()
	s.lastRunTS = now.Unix()
	s.lastRunISO = now.Format(time.RFC3339Nano)
	s.mu.Unlock()
}

// AddError records a failure. The error list is capped at the most recent
// maxStatusErrors entries; the counter keeps the true total.
func (s *Status) AddError(errType, message string, extra map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errorCount++
	s.errors = append(s.errors, StatusError{
		Type:    errType,
		Message: message,
		When:    time.Now().UTC().Format(time.RFC3339Nano),
		Extra:   extra,
	})
	if len(s.errors) > maxStatusErrors {
		s.errors = s.errors[len(s.errors)-maxStatusErrors:]
	}
}

// AddPublishError counts a transport publish failure.
func (s *Status) AddPublishError() {
	s.mu.Lock()
	s.publishErrorCount++
	s.mu.Unlock()
}

// Payload renders the status document.
func (s *Status) Payload() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload := map[string]any{
		"status":              s.state,
		"event_count":         s.eventCount,
		"publish_error_count": s.publishErrorCount,
		"error_count":         s.errorCount,
		"errors":              append([]StatusError(nil), s.errors...),
	}
	if s.lastRunTS != 0 {
		payload["last_run_ts"] = s.lastRunTS
		payload["last_run_iso"] = s.lastRunISO
	}
	return payload
}

// Publish sends the retained status document to topic.
func (s *Status) Publish(pub Publisher, topic string, qos byte) error {
	payload, err := json.Marshal(s.Payload())
	if err != nil {
		return fmt.Errorf("marshaling status payload: %w", err)
	}
	if err := pub.Publish(topic, payload, qos, true); err != nil {
		return fmt.Errorf("publishing status: %w", err)
	}
	return nil
}
