package mail

import (
	"context"
	"sync"
)

// Sent is one message captured by Recorder.
type Sent struct {
	To      string
	Subject string
	HTML    string
}

// Recorder is an in-memory Mailer for tests and the memory KV profile.
// When Fail is set every Send returns it without recording.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
	Fail error
}

func (r *Recorder) Send(_ context.Context, to, subject, html string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	r.sent = append(r.sent, Sent{To: to, Subject: subject, HTML: html})
	return nil
}

// Messages returns a copy of everything sent so far.
func (r *Recorder) Messages() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.sent...)
}

// Reset forgets recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.sent = nil
	r.mu.Unlock()
}
