// Package notificationstest records dispatched notifications in tests.
package notificationstest

import (
	"sync"

	"taskhire/pkg/model"
)

type Recorder struct {
	mu   sync.Mutex
	sent []*model.Notification
}

func (r *Recorder) Dispatch(n *model.Notification) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return true
}

func (r *Recorder) Sent() []*model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.Notification(nil), r.sent...)
}

// Receivers lists who was notified, in dispatch order.
func (r *Recorder) Receivers() []model.Party {
	sent := r.Sent()
	out := make([]model.Party, 0, len(sent))
	for _, n := range sent {
		out = append(out, n.Receiver)
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}
