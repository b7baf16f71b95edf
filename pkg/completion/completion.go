// Package completion turns action-specific context into a prompt and runs it
// through a Completer. Every builder returns plain text.
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Completer is the single completion call the builders need. *gateway.Client
// satisfies it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ErrEmptyInput is returned when a builder has nothing to send.
var ErrEmptyInput = errors.New("completion: empty input")

// Explain asks for an explanation of code.
func Explain(ctx context.Context, c Completer, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", ErrEmptyInput
	}

	out, err := c.Complete(ctx, buildExplainPrompt(code))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// AnswerFollowUp answers a question about code given the previous answer.
func AnswerFollowUp(ctx context.Context, c Completer, code, previous, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyInput
	}

	out, err := c.Complete(ctx, buildFollowUpPrompt(code, previous, question))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// GenerateTest asks for a unit test covering code. The result is source code
// with any surrounding markdown fence removed.
func GenerateTest(ctx context.Context, c Completer, code, language string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", ErrEmptyInput
	}

	out, err := c.Complete(ctx, buildGenerateTestPrompt(code, language))
	if err != nil {
		return "", err
	}
	return TrimCodeFence(out), nil
}

// RefineCode rewrites code according to instruction and returns the new
// source code.
func RefineCode(ctx context.Context, c Completer, code, instruction, language string) (string, error) {
	if strings.TrimSpace(code) == "" || strings.TrimSpace(instruction) == "" {
		return "", ErrEmptyInput
	}

	out, err := c.Complete(ctx, buildRefineCodePrompt(code, instruction, language))
	if err != nil {
		return "", err
	}
	return TrimCodeFence(out), nil
}

func buildExplainPrompt(code string) string {
	return "Explain the code below:\n\n " + code
}

func buildFollowUpPrompt(code, previous, question string) string {
	var b strings.Builder
	b.WriteString("Answer the question about the code below.\n\n")
	fmt.Fprintf(&b, "Code:\n%s\n\n", code)
	if previous != "" {
		fmt.Fprintf(&b, "Previous explanation:\n%s\n\n", previous)
	}
	fmt.Fprintf(&b, "Question:\n%s\n\nAnswer:\n", question)
	return b.String()
}

func buildGenerateTestPrompt(code, language string) string {
	var b strings.Builder
	b.WriteString("Write a unit test for the code below.\n")
	if language != "" {
		fmt.Fprintf(&b, "Use %s and the most common test framework for it.\n", language)
	}
	b.WriteString("Return only the test source code.\n\n")
	fmt.Fprintf(&b, "Code:\n%s\n\nTest:\n", code)
	return b.String()
}

func buildRefineCodePrompt(code, instruction, language string) string {
	var b strings.Builder
	b.WriteString("Rewrite the code below according to the instruction.\n")
	if language != "" {
		fmt.Fprintf(&b, "The code is %s.\n", language)
	}
	b.WriteString("Return only the complete rewritten source code.\n\n")
	fmt.Fprintf(&b, "Instruction:\n%s\n\nCode:\n%s\n\nRewritten code:\n", instruction, code)
	return b.String()
}

// TrimCodeFence strips a single markdown code fence wrapping s, if present,
// along with surrounding blank lines.
func TrimCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	nl := strings.Index(trimmed, "\n")
	if nl < 0 {
		return trimmed
	}
	body := trimmed[nl+1:]

	body = strings.TrimRight(body, " \t\n")
	body = strings.TrimSuffix(body, "```")

	return strings.TrimSpace(body)
}
