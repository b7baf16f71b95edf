// Package nop provides the publisher used when no event stream is configured.
package nop

import (
	"context"
	"sync/atomic"

	"github.com/papercomputeco/rubberduck/pkg/eventstream"
)

// Publisher drops every event, keeping only a count of what it was handed.
type Publisher struct {
	published atomic.Int64
	closed    atomic.Bool
}

var _ eventstream.Publisher = (*Publisher)(nil)

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Publish(_ context.Context, event *eventstream.ConversationEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	if p.closed.Load() {
		return eventstream.ErrClosed
	}

	p.published.Add(1)
	return nil
}

// Published reports how many events were accepted.
func (p *Publisher) Published() int64 {
	return p.published.Load()
}

func (p *Publisher) Close() error {
	p.closed.Store(true)
	return nil
}
