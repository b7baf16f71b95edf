package llm

// CompletionResponse is the part of a completion response rubberduck reads.
type CompletionResponse struct {
	// Model that generated the response
	Model string `json:"model"`

	// Text of the first choice
	Text string `json:"text"`

	// Stop reason (e.g., "stop", "length")
	FinishReason string `json:"finish_reason,omitempty"`

	// Token usage
	Usage *Usage `json:"usage,omitempty"`
}

// Usage contains token counts.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// ErrorResponse is the JSON error body returned by the rubberduck API.
type ErrorResponse struct {
	Error string `json:"error"`
}
