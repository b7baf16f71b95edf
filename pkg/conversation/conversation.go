// Package conversation implements the per-conversation state machine that
// takes turns between the user and the completion backend.
package conversation

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/papercomputeco/rubberduck/pkg/logger"
	"github.com/papercomputeco/rubberduck/pkg/utils"
)

const previewLen = 60

var (
	errNoInitialBuilder    = errors.New("conversation: no initial builder")
	errNoRefinementBuilder = errors.New("conversation: no refinement builder")
)

// Conversation owns the message history, the lifecycle state and the latest
// produced content of one conversation. All methods are safe for concurrent
// use. At most one answer step runs at a time; user messages arriving while
// it runs are dropped.
type Conversation struct {
	id       string
	trigger  Trigger
	strategy Strategy

	logger    *slog.Logger
	listeners []Listener

	mu        sync.Mutex
	idle      *sync.Cond
	messages  []Message
	state     State
	content   string
	answering bool
	inflight  int

	// projectMu orders projections so an older content never lands after a
	// newer one.
	projectMu sync.Mutex
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithListener registers l for every event of the conversation.
func WithListener(l Listener) Option {
	return func(c *Conversation) {
		if l != nil {
			c.listeners = append(c.listeners, l)
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Conversation) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a conversation waiting for its first bot answer. Nothing runs
// until Start is called.
func New(id string, trigger Trigger, strategy Strategy, opts ...Option) *Conversation {
	c := &Conversation{
		id:       id,
		trigger:  trigger,
		strategy: strategy,
		logger:   logger.Nop(),
		state:    WaitingForBotAnswer(strategy.InitialAction),
	}
	c.idle = sync.NewCond(&c.mu)

	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.With("conversation_id", id, "action", string(trigger.Type))

	return c
}

func (c *Conversation) ID() string {
	return c.id
}

func (c *Conversation) Trigger() Trigger {
	return c.trigger
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Content returns the latest produced content and whether there is any.
func (c *Conversation) Content() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.content, c.content != ""
}

// View returns a consistent snapshot of the conversation.
func (c *Conversation) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := make([]Message, len(c.messages))
	copy(msgs, c.messages)

	return View{
		ID:       c.id,
		Trigger:  c.trigger,
		Messages: msgs,
		State:    c.state,
		Content:  c.content,
	}
}

// Start launches the first answer step in the background.
func (c *Conversation) Start(ctx context.Context) {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()

	go c.run(ctx)
}

// AddUserMessage appends a user message and launches the next answer step.
// It only has an effect while the conversation waits for a user reply; in
// any other state it does nothing and returns false.
func (c *Conversation) AddUserMessage(ctx context.Context, content string) bool {
	c.mu.Lock()
	if c.state.Type != StateWaitingForUserReply {
		state := c.state.Type
		c.mu.Unlock()
		c.logger.Debug("user message dropped", "state", string(state))
		return false
	}

	msg := Message{Author: AuthorUser, Content: content}
	c.messages = append(c.messages, msg)
	c.state = WaitingForBotAnswer(c.strategy.RefineAction)
	c.inflight++
	events := []Event{
		c.event(EventMessageAppended, &msg),
		c.event(EventStateChanged, nil),
	}
	c.mu.Unlock()

	c.emit(events)
	c.logger.Debug("user message accepted", "preview", utils.Preview(content, previewLen))

	go c.run(ctx)
	return true
}

func (c *Conversation) run(ctx context.Context) {
	defer c.done()
	c.answer(ctx)
}

func (c *Conversation) done() {
	c.mu.Lock()
	c.inflight--
	if c.inflight == 0 {
		c.idle.Broadcast()
	}
	c.mu.Unlock()
}

// Answer runs one answer step synchronously. It does nothing unless the
// conversation waits for a bot answer and no other step is running. The step
// is never cancelled: ctx only contributes its values. Wait covers the step
// like those launched by Start and AddUserMessage.
func (c *Conversation) Answer(ctx context.Context) {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()

	defer c.done()
	c.answer(ctx)
}

func (c *Conversation) answer(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	c.mu.Lock()
	if c.state.Type != StateWaitingForBotAnswer || c.answering {
		c.mu.Unlock()
		return
	}
	c.answering = true
	refine := ShouldRefine(c.messages, c.content != "")
	base := c.content
	instruction, _ := LatestUserMessage(c.messages)
	c.mu.Unlock()

	var (
		content string
		err     error
	)
	if refine {
		c.logger.DebugContext(ctx, "refining content")
		content, err = c.refine(ctx, base, instruction)
	} else {
		c.logger.DebugContext(ctx, "generating content")
		content, err = c.generate(ctx)
	}

	c.mu.Lock()
	c.answering = false

	if err != nil {
		c.state = Errored(DescribeError(err))
		events := []Event{c.event(EventStateChanged, nil)}
		c.mu.Unlock()

		c.logger.WarnContext(ctx, "answer failed", "refine", refine, "error", err)
		c.emit(events)
		return
	}

	c.content = content
	text, placeholder := c.reply(content)
	msg := Message{Author: AuthorBot, Content: text, ResponsePlaceholder: placeholder}
	c.messages = append(c.messages, msg)
	c.state = WaitingForUserReply(placeholder)
	events := []Event{
		c.event(EventMessageAppended, &msg),
		c.event(EventStateChanged, nil),
	}
	count := len(c.messages)
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "answer produced", "refine", refine, "messages", count)
	c.emit(events)
}

func (c *Conversation) generate(ctx context.Context) (string, error) {
	if c.strategy.ProduceInitial == nil {
		return "", errNoInitialBuilder
	}
	return c.strategy.ProduceInitial(ctx, c.trigger)
}

func (c *Conversation) refine(ctx context.Context, base, instruction string) (string, error) {
	if c.strategy.ProduceRefinement == nil {
		return "", errNoRefinementBuilder
	}
	return c.strategy.ProduceRefinement(ctx, base, instruction)
}

func (c *Conversation) reply(content string) (string, string) {
	if c.strategy.Reply == nil {
		return content, ""
	}
	return c.strategy.Reply(content)
}

// Project pushes the latest content through the strategy's projection hook.
// It is a no-op without content or without a hook. Concurrent calls run one
// at a time and each reads the content current when its turn comes.
func (c *Conversation) Project(ctx context.Context) error {
	c.projectMu.Lock()
	defer c.projectMu.Unlock()

	c.mu.Lock()
	content := c.content
	c.mu.Unlock()

	if content == "" || c.strategy.Project == nil {
		return nil
	}
	return c.strategy.Project(ctx, content)
}

// Projects reports whether the conversation has a projection hook.
func (c *Conversation) Projects() bool {
	return c.strategy.Project != nil
}

// Wait blocks until no answer step is running, including the listeners it
// notifies.
func (c *Conversation) Wait() {
	c.mu.Lock()
	for c.inflight > 0 {
		c.idle.Wait()
	}
	c.mu.Unlock()
}

// event must be called with c.mu held.
func (c *Conversation) event(kind EventKind, msg *Message) Event {
	return Event{
		Kind:           kind,
		ConversationID: c.id,
		Message:        msg,
		State:          c.state,
	}
}

func (c *Conversation) emit(events []Event) {
	for _, ev := range events {
		for _, l := range c.listeners {
			l(ev)
		}
	}
}

// ShouldRefine decides between refining and generating: refine only when the
// user has spoken and there is content to refine.
func ShouldRefine(messages []Message, hasContent bool) bool {
	if !hasContent {
		return false
	}
	_, ok := LatestUserMessage(messages)
	return ok
}

// LatestUserMessage returns the content of the most recent user message.
func LatestUserMessage(messages []Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Author == AuthorUser {
			return messages[i].Content, true
		}
	}
	return "", false
}
