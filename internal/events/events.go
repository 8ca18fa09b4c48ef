// Package events defines the change notifications storefront instances
// exchange so that every instance revalidates after an admin edit.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const (
	ProductCreated  = "ProductCreated"
	ProductUpdated  = "ProductUpdated"
	ProductDeleted  = "ProductDeleted"
	SiteInfoUpdated = "SiteInfoUpdated"
)

// Event is the envelope written to the change topic.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Source     string          `json:"source"`
	Key        string          `json:"key"`
	Data       json.RawMessage `json:"data,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// Publisher announces a change. Implementations must not block the caller for long.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, data any) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }

// Published is one call recorded by Recorder.
type Published struct {
	Type string
	Key  string
	Data any
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Published
	Err    error
}

func (r *Recorder) Publish(_ context.Context, eventType, key string, data any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, Published{Type: eventType, Key: key, Data: data})
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Published(nil), r.events...)
}

// Types returns the published event types in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}
