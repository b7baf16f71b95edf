package llm

// CompletionRequest is the single completion API shape rubberduck speaks:
// one prompt in, one text out. Sampling is pinned so that answers are
// deterministic for a given prompt.
type CompletionRequest struct {
	// Model name (e.g., "gpt-3.5-turbo-instruct")
	Model string `json:"model"`

	// Prompt text sent verbatim
	Prompt string `json:"prompt"`

	MaxTokens        int     `json:"max_tokens"`
	Temperature      float64 `json:"temperature"`
	BestOf           int     `json:"best_of"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
	PresencePenalty  float64 `json:"presence_penalty"`
}

// NewCompletionRequest returns a request with deterministic sampling:
// temperature 0, best_of 1 and no penalties. top_p is deliberately absent
// so it is never sent alongside temperature.
func NewCompletionRequest(model, prompt string, maxTokens int) CompletionRequest {
	return CompletionRequest{
		Model:     model,
		Prompt:    prompt,
		MaxTokens: maxTokens,
		BestOf:    1,
	}
}
