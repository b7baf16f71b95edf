// Package kafka publishes conversation events to a Kafka topic, keyed by
// conversation id so that one conversation's events stay ordered within a
// partition.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/rubberduck/pkg/eventstream"
)

const (
	defaultTopic        = "rubberduck.events"
	defaultBatchTimeout = 10 * time.Millisecond

	headerEventType     = "event_type"
	headerSchemaVersion = "schema_version"
)

// MessageWriter is the subset of *kafkago.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Config is the Kafka publisher configuration.
type Config struct {
	// Brokers is a list of host:port addresses.
	Brokers []string

	// Topic defaults to "rubberduck.events".
	Topic string

	// Writer replaces the kafka-go writer. Used in tests.
	Writer MessageWriter
}

// Publisher writes events as JSON messages.
type Publisher struct {
	writer MessageWriter
	topic  string
	closed atomic.Bool
}

var _ eventstream.Publisher = (*Publisher)(nil)

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// NewPublisher builds a Publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	topic := cfg.Topic
	if topic == "" {
		topic = defaultTopic
	}

	w := cfg.Writer
	if w == nil {
		if len(cfg.Brokers) == 0 {
			return nil, errors.New("kafka: at least one broker is required")
		}
		w = &kafkago.Writer{
			Addr:                   kafkago.TCP(cfg.Brokers...),
			Topic:                  topic,
			Balancer:               &kafkago.Hash{},
			RequiredAcks:           kafkago.RequireOne,
			BatchTimeout:           defaultBatchTimeout,
			AllowAutoTopicCreation: true,
		}
	}

	return &Publisher{writer: w, topic: topic}, nil
}

// Topic returns the destination topic.
func (p *Publisher) Topic() string {
	return p.topic
}

// Publish writes event synchronously.
func (p *Publisher) Publish(ctx context.Context, event *eventstream.ConversationEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	if p.closed.Load() {
		return eventstream.ErrClosed
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.ConversationID),
		Value: payload,
		Time:  event.EmittedAt,
		Headers: []kafkago.Header{
			{Key: headerEventType, Value: []byte(event.EventType)},
			{Key: headerSchemaVersion, Value: []byte(fmt.Sprint(event.SchemaVersion))},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing event to kafka: %w", err)
	}
	return nil
}

// Close flushes and closes the writer. Later calls are no-ops.
func (p *Publisher) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}
