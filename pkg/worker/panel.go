package worker

import (
	"github.com/papercomputeco/rubberduck/pkg/eventstream"
	"github.com/papercomputeco/rubberduck/pkg/panel"
)

var eventTypes = map[panel.EventKind]string{
	panel.EventConversationCreated: eventstream.EventTypeConversationCreated,
	panel.EventMessageAppended:     eventstream.EventTypeMessageAppended,
	panel.EventStateChanged:        eventstream.EventTypeStateChanged,
	panel.EventProjectionFailed:    eventstream.EventTypeProjectionFailed,
	panel.EventConversationClosed:  eventstream.EventTypeConversationClosed,
}

// ToConversationEvent converts a panel event into its stream payload. It
// returns nil for kinds that are not streamed.
func ToConversationEvent(ev panel.Event) *eventstream.ConversationEvent {
	eventType, ok := eventTypes[ev.Kind]
	if !ok {
		return nil
	}

	out := eventstream.NewEvent(eventType, ev.ConversationID)
	if ev.Trigger != nil {
		out.Action = ev.Trigger.Type
	}
	if ev.Message != nil {
		msg := *ev.Message
		out.Message = &msg
	}
	if ev.State != nil {
		state := *ev.State
		out.State = &state
	}
	out.Error = ev.Error
	return out
}

// Subscriber returns a panel subscriber that enqueues every event. It never
// blocks the conversation that produced the event.
func (p *Pool) Subscriber() panel.Subscriber {
	return func(ev panel.Event) {
		if event := ToConversationEvent(ev); event != nil {
			p.Enqueue(Job{Event: event})
		}
	}
}
