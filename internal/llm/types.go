package llm

// LLMRequest carries the rendered analysis prompt and the generation
// parameters from the analysis config.
type LLMRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// LLMResponse is the provider-neutral result; StopReason keeps the
// provider's own vocabulary (Bedrock stop_reason, OpenAI finish_reason).
type LLMResponse struct {
	Content    string
	StopReason string
}
