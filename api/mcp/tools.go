package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/rubberduck/pkg/conversation"
)

var (
	startToolName    = "start_conversation"
	startDescription = "Start a conversation about a code selection. The action is one of explain, generateTest or refine; refine requires an instruction. The first answer is produced in the background; poll get_conversation for it."

	sendToolName    = "send_message"
	sendDescription = "Send a follow-up message to a conversation. Only accepted while the conversation waits for a user reply."

	getToolName    = "get_conversation"
	getDescription = "Get the messages, state and produced content of a conversation."
)

// StartInput represents the input arguments for the start_conversation tool.
type StartInput struct {
	Action      string `json:"action" jsonschema:"one of explain, generateTest, refine"`
	Filename    string `json:"filename,omitempty" jsonschema:"name of the file the code was selected from"`
	Code        string `json:"code" jsonschema:"the selected source code"`
	Language    string `json:"language,omitempty" jsonschema:"language id of the selection, e.g. go or javascript"`
	StartLine   int    `json:"start_line,omitempty" jsonschema:"first selected line, 1-based"`
	EndLine     int    `json:"end_line,omitempty" jsonschema:"last selected line, inclusive"`
	Instruction string `json:"instruction,omitempty" jsonschema:"what to change, required for refine"`
}

// SendInput represents the input arguments for the send_message tool.
type SendInput struct {
	ConversationID string `json:"conversation_id" jsonschema:"id returned by start_conversation"`
	Content        string `json:"content" jsonschema:"the message text"`
}

// SendOutput reports whether the conversation took the message.
type SendOutput struct {
	ConversationID string `json:"conversation_id"`
	Accepted       bool   `json:"accepted"`
}

// GetInput represents the input arguments for the get_conversation tool.
type GetInput struct {
	ConversationID string `json:"conversation_id" jsonschema:"id returned by start_conversation"`
}

func (s *Server) handleStart(ctx context.Context, _ *mcp.CallToolRequest, input StartInput) (*mcp.CallToolResult, conversation.View, error) {
	trigger := conversation.Trigger{
		Type: conversation.ActionKind(input.Action),
		Selection: conversation.Selection{
			Filename:  input.Filename,
			StartLine: input.StartLine,
			EndLine:   input.EndLine,
			Text:      input.Code,
			Language:  input.Language,
		},
		Instruction: input.Instruction,
	}

	s.config.Logger.Debug("MCP start request", "action", input.Action, "filename", input.Filename)

	conv, err := s.config.Panel.Create(ctx, trigger)
	if err != nil {
		return errorResult("Failed to start conversation: %v", err), conversation.View{}, nil
	}

	return textResult(s, conv.View())
}

func (s *Server) handleSend(ctx context.Context, _ *mcp.CallToolRequest, input SendInput) (*mcp.CallToolResult, SendOutput, error) {
	accepted, err := s.config.Panel.Submit(ctx, input.ConversationID, input.Content)
	if err != nil {
		return errorResult("Failed to send message: %v", err), SendOutput{}, nil
	}

	return textResult(s, SendOutput{ConversationID: input.ConversationID, Accepted: accepted})
}

func (s *Server) handleGet(_ context.Context, _ *mcp.CallToolRequest, input GetInput) (*mcp.CallToolResult, conversation.View, error) {
	conv, err := s.config.Panel.Get(input.ConversationID)
	if err != nil {
		return errorResult("Failed to get conversation: %v", err), conversation.View{}, nil
	}

	return textResult(s, conv.View())
}

// textResult mirrors the structured output as JSON text for clients that
// ignore structured content.
func textResult[T any](s *Server, out T) (*mcp.CallToolResult, T, error) {
	jsonBytes, err := json.Marshal(out)
	if err != nil {
		s.config.Logger.Error("failed to marshal tool output", "error", err)
		var zero T
		return errorResult("Failed to serialize result: %v", err), zero, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, out, nil
}

func errorResult(format string, err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, err)},
		},
	}
}
