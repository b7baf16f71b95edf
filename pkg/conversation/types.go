package conversation

// Author identifies who wrote a message.
type Author string

const (
	AuthorUser Author = "user"
	AuthorBot  Author = "bot"
)

// Message is one entry of the conversation history. Messages are never
// modified once appended.
type Message struct {
	Author  Author `json:"author"`
	Content string `json:"content"`

	// ResponsePlaceholder hints at the next expected user input. Only set on
	// bot messages.
	ResponsePlaceholder string `json:"responsePlaceholder,omitempty"`
}

// StateType tags the active State variant.
type StateType string

const (
	StateWaitingForBotAnswer StateType = "waitingForBotAnswer"
	StateWaitingForUserReply StateType = "waitingForUserReply"
	StateError               StateType = "error"
)

// State is the lifecycle state of a conversation. Exactly one variant holds
// at a time and only the payload field of that variant is set; build values
// with WaitingForBotAnswer, WaitingForUserReply or Errored.
type State struct {
	Type StateType `json:"type"`

	// BotAction labels the in-flight answer (waitingForBotAnswer).
	BotAction string `json:"botAction,omitempty"`

	// ResponsePlaceholder is shown in the input box (waitingForUserReply).
	ResponsePlaceholder string `json:"responsePlaceholder,omitempty"`

	// ErrorMessage is the human readable failure (error).
	ErrorMessage string `json:"errorMessage,omitempty"`
}

func WaitingForBotAnswer(botAction string) State {
	return State{Type: StateWaitingForBotAnswer, BotAction: botAction}
}

func WaitingForUserReply(placeholder string) State {
	return State{Type: StateWaitingForUserReply, ResponsePlaceholder: placeholder}
}

func Errored(message string) State {
	return State{Type: StateError, ErrorMessage: message}
}

// ActionKind names the action that created a conversation.
type ActionKind string

const (
	ActionExplain      ActionKind = "explain"
	ActionGenerateTest ActionKind = "generateTest"
	ActionRefine       ActionKind = "refine"
)

// ActionKinds lists every supported kind.
func ActionKinds() []ActionKind {
	return []ActionKind{ActionExplain, ActionGenerateTest, ActionRefine}
}

// Valid reports whether k is a supported kind.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionExplain, ActionGenerateTest, ActionRefine:
		return true
	}
	return false
}

// Selection is the source code range an action was invoked on. Lines are
// 1-based and inclusive.
type Selection struct {
	Filename  string `json:"filename"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	Text      string `json:"text"`
	Language  string `json:"language,omitempty"`
}

// Trigger describes why a conversation exists. It never changes after the
// conversation is created.
type Trigger struct {
	Type        ActionKind `json:"type"`
	Selection   Selection  `json:"selection"`
	Instruction string     `json:"instruction,omitempty"`
}

// View is a point-in-time copy of a conversation for rendering.
type View struct {
	ID       string    `json:"id"`
	Trigger  Trigger   `json:"trigger"`
	Messages []Message `json:"messages"`
	State    State     `json:"state"`
	Content  string    `json:"content,omitempty"`
}
