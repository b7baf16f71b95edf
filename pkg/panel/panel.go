// Package panel hosts the live conversations of one editor session. It
// builds each conversation from its trigger, forwards user input into it,
// projects artifacts after every successful answer and fans conversation
// events out to subscribers (the terminal UI, the websocket bridge, the
// event stream).
package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/papercomputeco/rubberduck/pkg/conversation"
	"github.com/papercomputeco/rubberduck/pkg/logger"
)

// ErrNotFound is returned for unknown or closed conversation ids.
var ErrNotFound = errors.New("conversation not found")

// StrategyFactory builds the strategy for a trigger. action.New bound to its
// Deps is the production factory.
type StrategyFactory func(trigger conversation.Trigger) (conversation.Strategy, error)

// Config is the panel configuration.
type Config struct {
	Strategies StrategyFactory

	// NewID issues conversation ids. Defaults to random UUIDs.
	NewID func() string

	Logger *slog.Logger
}

// Panel is a registry of conversations. It is safe for concurrent use.
type Panel struct {
	strategies StrategyFactory
	newID      func() string
	logger     *slog.Logger

	mu            sync.RWMutex
	conversations map[string]*conversation.Conversation
	order         []string

	subsMu  sync.RWMutex
	subs    map[int]Subscriber
	nextSub int
}

// New returns an empty panel.
func New(cfg Config) (*Panel, error) {
	if cfg.Strategies == nil {
		return nil, errors.New("panel: strategy factory is required")
	}

	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Panel{
		strategies:    cfg.Strategies,
		newID:         newID,
		logger:        log.With("component", "panel"),
		conversations: map[string]*conversation.Conversation{},
		subs:          map[int]Subscriber{},
	}, nil
}

// Create builds the conversation for trigger, registers it and starts its
// first answer in the background.
func (p *Panel) Create(ctx context.Context, trigger conversation.Trigger) (*conversation.Conversation, error) {
	strategy, err := p.strategies(trigger)
	if err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}

	id := p.newID()
	projectCtx := context.WithoutCancel(ctx)
	log := p.logger.With("conversation_id", id)

	var conv *conversation.Conversation
	conv = conversation.New(id, trigger, strategy,
		conversation.WithLogger(log),
		conversation.WithListener(func(ev conversation.Event) {
			p.onConversationEvent(projectCtx, conv, ev)
		}),
	)

	p.mu.Lock()
	p.conversations[id] = conv
	p.order = append(p.order, id)
	p.mu.Unlock()

	log.Info("conversation created", "action", string(trigger.Type), "filename", trigger.Selection.Filename)
	t := trigger
	p.publish(Event{Kind: EventConversationCreated, ConversationID: id, Trigger: &t})

	conv.Start(ctx)
	return conv, nil
}

// Submit forwards a user message. It returns false when the conversation is
// busy, errored, or text is blank.
func (p *Panel) Submit(ctx context.Context, id, text string) (bool, error) {
	conv, err := p.Get(id)
	if err != nil {
		return false, err
	}

	if strings.TrimSpace(text) == "" {
		return false, nil
	}

	return conv.AddUserMessage(ctx, text), nil
}

// Get returns a registered conversation.
func (p *Panel) Get(id string) (*conversation.Conversation, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	conv, ok := p.conversations[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return conv, nil
}

// List returns views of every conversation in creation order.
func (p *Panel) List() []conversation.View {
	p.mu.RLock()
	convs := make([]*conversation.Conversation, 0, len(p.order))
	for _, id := range p.order {
		convs = append(convs, p.conversations[id])
	}
	p.mu.RUnlock()

	views := make([]conversation.View, 0, len(convs))
	for _, c := range convs {
		views = append(views, c.View())
	}
	return views
}

// Close unregisters a conversation. An answer still in flight completes but
// its events are no longer forwarded and nothing is projected.
func (p *Panel) Close(id string) error {
	p.mu.Lock()
	if _, ok := p.conversations[id]; !ok {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(p.conversations, id)
	for i, oid := range p.order {
		if oid == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	p.mu.Unlock()

	p.logger.Info("conversation closed", "conversation_id", id)
	p.publish(Event{Kind: EventConversationClosed, ConversationID: id})
	return nil
}

// Wait blocks until no registered conversation has an answer in flight.
func (p *Panel) Wait() {
	p.mu.RLock()
	convs := make([]*conversation.Conversation, 0, len(p.conversations))
	for _, c := range p.conversations {
		convs = append(convs, c)
	}
	p.mu.RUnlock()

	for _, c := range convs {
		c.Wait()
	}
}

func (p *Panel) registered(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.conversations[id]
	return ok
}

func (p *Panel) onConversationEvent(ctx context.Context, conv *conversation.Conversation, ev conversation.Event) {
	if !p.registered(ev.ConversationID) {
		return
	}

	p.publish(fromConversationEvent(ev))

	if ev.Kind != conversation.EventStateChanged || ev.State.Type != conversation.StateWaitingForUserReply {
		return
	}
	if !conv.Projects() {
		return
	}

	if err := conv.Project(ctx); err != nil {
		p.logger.WarnContext(ctx, "projection failed", "conversation_id", ev.ConversationID, "error", err)
		p.publish(Event{Kind: EventProjectionFailed, ConversationID: ev.ConversationID, Error: err.Error()})
	}
}
