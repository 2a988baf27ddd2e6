// Package sse writes Server-Sent Events.
//
//	stream, err := sse.New(w, r)
//	if err != nil {
//	    return
//	}
//	for msg := range feed {
//	    if err := stream.Send("order.created", msg); err != nil {
//	        break
//	    }
//	}
package sse

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrClosed is returned once the client has gone away.
var ErrClosed = errors.New("sse: client disconnected")

// Stream is an open event stream to one client.
type Stream struct {
	w  http.ResponseWriter
	r  *http.Request
	rc *http.ResponseController
}

// New sets the event-stream headers and flushes them, so the client sees the
// connection open before the first event. It fails when no writer in the
// middleware chain can flush.
func New(w http.ResponseWriter, r *http.Request) (*Stream, error) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		return nil, fmt.Errorf("sse: flush unsupported: %w", err)
	}
	return &Stream{w: w, r: r, rc: rc}, nil
}

// Send writes one named event whose data is an already encoded payload.
// Multi-line payloads are split into several data lines.
func (s *Stream) Send(event string, data []byte) error {
	if s.Closed() {
		return ErrClosed
	}
	var b strings.Builder
	if event != "" {
		fmt.Fprintf(&b, "event: %s\n", event)
	}
	for _, line := range strings.Split(string(data), "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	return s.write(b.String())
}

// Comment writes an SSE comment line; clients ignore it, proxies see
// traffic.
func (s *Stream) Comment(msg string) error {
	if s.Closed() {
		return ErrClosed
	}
	return s.write(": " + msg + "\n\n")
}

// Closed reports whether the client has disconnected.
func (s *Stream) Closed() bool {
	select {
	case <-s.r.Context().Done():
		return true
	default:
		return false
	}
}

func (s *Stream) write(frame string) error {
	if _, err := fmt.Fprint(s.w, frame); err != nil {
		return err
	}
	return s.rc.Flush()
}
