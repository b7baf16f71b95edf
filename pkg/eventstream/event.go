package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/rubberduck/pkg/conversation"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	EventTypeConversationCreated = "rubberduck.conversation.created"
	EventTypeMessageAppended     = "rubberduck.conversation.message_appended"
	EventTypeStateChanged        = "rubberduck.conversation.state_changed"
	EventTypeProjectionFailed    = "rubberduck.conversation.projection_failed"
	EventTypeConversationClosed  = "rubberduck.conversation.closed"
)

// ConversationEvent is a transport-neutral payload describing one panel
// event.
type ConversationEvent struct {
	SchemaVersion  int       `json:"schema_version"`
	EventType      string    `json:"event_type"`
	EventID        string    `json:"event_id"`
	EmittedAt      time.Time `json:"emitted_at"`
	ConversationID string    `json:"conversation_id"`

	Action  conversation.ActionKind `json:"action,omitempty"`
	Message *conversation.Message   `json:"message,omitempty"`
	State   *conversation.State     `json:"state,omitempty"`

	// Error carries the projection failure for projection_failed events.
	Error string `json:"error,omitempty"`
}

// NewEvent returns an event of eventType with a fresh id and timestamp.
func NewEvent(eventType, conversationID string) *ConversationEvent {
	return &ConversationEvent{
		SchemaVersion:  SchemaVersionV1,
		EventType:      eventType,
		EventID:        "evt_" + uuid.NewString(),
		EmittedAt:      time.Now().UTC(),
		ConversationID: conversationID,
	}
}
