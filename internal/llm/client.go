package llm

import (
	"context"
)

// LLMClient is the provider contract for the attack-pattern analyzer: one
// prompt in, generated text out. Implementations live under llm/bedrock and
// llm/gpt; the analyzer picks the retry variant from its config. The small
// surface keeps the analyzer mockable without real API calls.
type LLMClient interface {
	InvokeModel(ctx context.Context, request LLMRequest) (*LLMResponse, error)
	InvokeModelWithRetry(ctx context.Context, request LLMRequest) (*LLMResponse, error)
}
