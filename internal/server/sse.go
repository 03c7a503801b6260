package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rotisserie/eris"

	"github.com/jonathan/job-verifier/internal/types"
)

// SSE event names on /v1/verify/stream.
const (
	eventStep   = "step"
	eventResult = "result"
	eventError  = "error"
)

// SSEWriter frames JSON payloads as server-sent events and flushes after each one.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter sets the event-stream headers. It fails when w cannot flush.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, eris.New("streaming not supported")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends one event whose data line is data encoded as JSON.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return eris.Wrapf(err, "encode %s event", event)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return eris.Wrapf(err, "write %s event", event)
	}
	s.flusher.Flush()
	return nil
}

// WriteError ends the stream with an error event.
func (s *SSEWriter) WriteError(message string) {
	_ = s.WriteEvent(eventError, map[string]string{"error": message})
}

// WriteResult ends the stream with the verification result.
func (s *SSEWriter) WriteResult(res *types.Result) {
	_ = s.WriteEvent(eventResult, res)
}
