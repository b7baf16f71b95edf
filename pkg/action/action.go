// Package action builds the conversation strategy for each action kind.
package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/papercomputeco/rubberduck/pkg/completion"
	"github.com/papercomputeco/rubberduck/pkg/conversation"
	"github.com/papercomputeco/rubberduck/pkg/logger"
	"github.com/papercomputeco/rubberduck/pkg/projection"
)

var (
	ErrUnknownAction      = errors.New("unknown action")
	ErrEmptySelection     = errors.New("selection text is empty")
	ErrMissingInstruction = errors.New("refine requires an instruction")
	ErrNoCompleter        = errors.New("no completer configured")
	ErrNoHost             = errors.New("no projection host configured")
)

const (
	MessageTestGenerated = "Test generated."
	MessageCodeRefined   = "Code refined."

	PlaceholderExplain      = "Ask a follow-up question…"
	PlaceholderGenerateTest = "Instruct how to refine the test…"
	PlaceholderRefine       = "Instruct how to refine the code…"
)

// Deps are the collaborators shared by every strategy.
type Deps struct {
	Completer completion.Completer

	// Host receives projected documents. Required for code producing
	// actions.
	Host projection.Host

	Logger *slog.Logger
}

// New returns the strategy for trigger's action kind.
func New(trigger conversation.Trigger, deps Deps) (conversation.Strategy, error) {
	if err := Validate(trigger); err != nil {
		return conversation.Strategy{}, err
	}
	if deps.Completer == nil {
		return conversation.Strategy{}, ErrNoCompleter
	}

	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	switch trigger.Type {
	case conversation.ActionExplain:
		return explain(trigger, deps.Completer), nil
	case conversation.ActionGenerateTest:
		if deps.Host == nil {
			return conversation.Strategy{}, ErrNoHost
		}
		return generateTest(trigger, deps.Completer, newProjector(deps.Host, trigger, log)), nil
	case conversation.ActionRefine:
		if deps.Host == nil {
			return conversation.Strategy{}, ErrNoHost
		}
		return refine(trigger, deps.Completer, newProjector(deps.Host, trigger, log)), nil
	}

	return conversation.Strategy{}, fmt.Errorf("%w: %q", ErrUnknownAction, trigger.Type)
}

// Validate checks that trigger carries what its action needs.
func Validate(trigger conversation.Trigger) error {
	if !trigger.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownAction, trigger.Type)
	}
	if strings.TrimSpace(trigger.Selection.Text) == "" {
		return ErrEmptySelection
	}
	if trigger.Type == conversation.ActionRefine && strings.TrimSpace(trigger.Instruction) == "" {
		return ErrMissingInstruction
	}
	return nil
}

func newProjector(host projection.Host, trigger conversation.Trigger, log *slog.Logger) *projection.Projector {
	return projection.NewProjector(host, trigger.Selection.Language,
		projection.WithLogger(log.With("action", string(trigger.Type))))
}

func explain(trigger conversation.Trigger, c completion.Completer) conversation.Strategy {
	code := trigger.Selection.Text

	return conversation.Strategy{
		InitialAction: "Generating explanation",
		RefineAction:  "Answering",
		ProduceInitial: func(ctx context.Context, t conversation.Trigger) (string, error) {
			return completion.Explain(ctx, c, t.Selection.Text)
		},
		ProduceRefinement: func(ctx context.Context, base, instruction string) (string, error) {
			return completion.AnswerFollowUp(ctx, c, code, base, instruction)
		},
		Reply: func(content string) (string, string) {
			return content, PlaceholderExplain
		},
	}
}

func generateTest(trigger conversation.Trigger, c completion.Completer, p *projection.Projector) conversation.Strategy {
	language := trigger.Selection.Language

	return conversation.Strategy{
		InitialAction: "Generating test",
		RefineAction:  "Updating test",
		ProduceInitial: func(ctx context.Context, t conversation.Trigger) (string, error) {
			return completion.GenerateTest(ctx, c, t.Selection.Text, language)
		},
		ProduceRefinement: func(ctx context.Context, base, instruction string) (string, error) {
			return completion.RefineCode(ctx, c, base, instruction, language)
		},
		Reply: func(string) (string, string) {
			return MessageTestGenerated, PlaceholderGenerateTest
		},
		Project: p.Project,
	}
}

func refine(trigger conversation.Trigger, c completion.Completer, p *projection.Projector) conversation.Strategy {
	language := trigger.Selection.Language

	return conversation.Strategy{
		InitialAction: "Refining code",
		RefineAction:  "Updating code",
		ProduceInitial: func(ctx context.Context, t conversation.Trigger) (string, error) {
			return completion.RefineCode(ctx, c, t.Selection.Text, t.Instruction, language)
		},
		ProduceRefinement: func(ctx context.Context, base, instruction string) (string, error) {
			return completion.RefineCode(ctx, c, base, instruction, language)
		},
		Reply: func(string) (string, string) {
			return MessageCodeRefined, PlaceholderRefine
		},
		Project: p.Project,
	}
}
