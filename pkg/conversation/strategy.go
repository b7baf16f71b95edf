package conversation

import "context"

// Strategy carries the per-action behavior of a conversation. It replaces
// subclassing: the conversation runs the same state machine for every action
// kind and only calls into these hooks.
type Strategy struct {
	// InitialAction labels the first answer (e.g. "Generating test").
	InitialAction string

	// RefineAction labels answers to user messages (e.g. "Updating test").
	RefineAction string

	// ProduceInitial generates content from the trigger.
	ProduceInitial func(ctx context.Context, trigger Trigger) (string, error)

	// ProduceRefinement reworks base according to the latest user message.
	ProduceRefinement func(ctx context.Context, base, instruction string) (string, error)

	// Reply returns the bot message text and the next input placeholder for
	// freshly produced content.
	Reply func(content string) (message, placeholder string)

	// Project pushes content into an external document. Optional.
	Project func(ctx context.Context, content string) error
}
