// Package mailertest provides an in-memory mailer.Sender for tests.
package mailertest

import (
	"context"
	"errors"
	"sync"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/mailer"
)

var ErrRejected = errors.New("recipient rejected")

// Recorder captures sent messages. Sends to any address in FailFor return
// ErrRejected.
type Recorder struct {
	mu      sync.Mutex
	FailFor map[string]bool
	sent    []mailer.Message
}

func NewRecorder(failFor ...string) *Recorder {
	r := &Recorder{FailFor: make(map[string]bool)}
	for _, addr := range failFor {
		r.FailFor[addr] = true
	}
	return r
}

func (r *Recorder) Send(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, to := range msg.To {
		if r.FailFor[to] {
			return ErrRejected
		}
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *Recorder) Sent() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]mailer.Message, len(r.sent))
	copy(out, r.sent)
	return out
}

// SentTo returns the messages addressed to one recipient.
func (r *Recorder) SentTo(addr string) []mailer.Message {
	var out []mailer.Message
	for _, m := range r.Sent() {
		for _, to := range m.To {
			if to == addr {
				out = append(out, m)
			}
		}
	}
	return out
}
