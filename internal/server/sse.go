package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Stream event names sent by /analyze/stream
const (
	EventExtraction = "extraction"
	EventStatus     = "status"
	EventProfile    = "profile"
	EventError      = "error"
	EventComplete   = "complete"
)

// Completion statuses carried by EventComplete
const (
	StreamCompleted = "completed"
	StreamFailed    = "failed"
)

// errStreamingUnsupported is returned when the ResponseWriter cannot flush
var errStreamingUnsupported = errors.New("streaming not supported")

// SSEWriter writes Server-Sent Events with sequential ids.
// The first write error sticks: later writes are skipped and Err reports it.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
	err     error
}

// NewSSEWriter sends the stream headers and a 200 status
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher, nextID: 1}, nil
}

// WriteEvent sends data as a JSON-encoded event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	if s.err != nil {
		return s.err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		s.err = fmt.Errorf("failed to encode %s event: %w", event, err)
		return s.err
	}

	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload); err != nil {
		s.err = err
		return err
	}
	s.nextID++
	s.flusher.Flush()
	return nil
}

// WriteFailure sends an error event followed by a failed completion
func (s *SSEWriter) WriteFailure(failure FailureResponse) error {
	_ = s.WriteEvent(EventError, failure)
	return s.WriteComplete(StreamFailed)
}

// WriteComplete sends the terminal event
func (s *SSEWriter) WriteComplete(status string) error {
	return s.WriteEvent(EventComplete, map[string]string{"status": status})
}

// Err returns the first write error, if any
func (s *SSEWriter) Err() error {
	return s.err
}
