package eventstream

import (
	"context"
	"errors"
)

var (
	// ErrNilEvent is returned when a nil event is handed to a publisher.
	ErrNilEvent = errors.New("nil conversation event")

	// ErrClosed is returned by Publish after Close.
	ErrClosed = errors.New("eventstream publisher closed")
)

// Publisher delivers conversation events to a stream backend. Publish is
// called from worker pool goroutines and must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event *ConversationEvent) error
	Close() error
}
