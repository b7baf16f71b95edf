package conversation

// EventKind names a conversation mutation.
type EventKind string

const (
	EventMessageAppended EventKind = "message-appended"
	EventStateChanged    EventKind = "state-changed"
)

// Event is delivered to listeners after a mutation has been applied.
type Event struct {
	Kind           EventKind `json:"kind"`
	ConversationID string    `json:"conversationId"`

	// Message is set for message-appended.
	Message *Message `json:"message,omitempty"`

	// State is the state after the mutation.
	State State `json:"state"`
}

// Listener receives conversation events. Listeners are called without the
// conversation lock held, in mutation order, and may call back into the
// conversation except for Wait, which would block on the listener itself.
type Listener func(Event)
