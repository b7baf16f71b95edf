package panel

import "github.com/papercomputeco/rubberduck/pkg/conversation"

// EventKind names a panel event.
type EventKind string

const (
	EventConversationCreated EventKind = "conversation-created"
	EventMessageAppended     EventKind = "message-appended"
	EventStateChanged        EventKind = "state-changed"
	EventProjectionFailed    EventKind = "projection-failed"
	EventConversationClosed  EventKind = "conversation-closed"
)

// Event is what the panel tells its subscribers.
type Event struct {
	Kind           EventKind             `json:"kind"`
	ConversationID string                `json:"conversationId"`
	Trigger        *conversation.Trigger `json:"trigger,omitempty"`
	Message        *conversation.Message `json:"message,omitempty"`
	State          *conversation.State   `json:"state,omitempty"`
	Error          string                `json:"error,omitempty"`
}

// Subscriber receives panel events. It runs on the goroutine that produced
// the event and must not block.
type Subscriber func(Event)

// Subscribe registers s and returns a function that removes it.
func (p *Panel) Subscribe(s Subscriber) (unsubscribe func()) {
	p.subsMu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = s
	p.subsMu.Unlock()

	return func() {
		p.subsMu.Lock()
		delete(p.subs, id)
		p.subsMu.Unlock()
	}
}

func (p *Panel) publish(ev Event) {
	p.subsMu.RLock()
	subs := make([]Subscriber, 0, len(p.subs))
	for _, s := range p.subs {
		subs = append(subs, s)
	}
	p.subsMu.RUnlock()

	for _, s := range subs {
		s(ev)
	}
}

func fromConversationEvent(ev conversation.Event) Event {
	state := ev.State
	out := Event{
		ConversationID: ev.ConversationID,
		Message:        ev.Message,
		State:          &state,
	}

	switch ev.Kind {
	case conversation.EventMessageAppended:
		out.Kind = EventMessageAppended
	default:
		out.Kind = EventStateChanged
	}
	return out
}
