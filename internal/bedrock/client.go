package bedrock

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// Client invokes a Bedrock model with a guardrail attached. It owns the
// retry policy the evaluation driver delegates to the invoker.
type Client struct {
	client           *bedrockruntime.Client
	ModelID          string
	GuardrailID      string
	GuardrailVersion string
	MaxTokens        int
	MaxRetries       int
	InitialDelay     time.Duration
	MaxDelay         time.Duration
}

func NewClient(ctx context.Context, region, modelID, guardrailID, guardrailVersion string) (*Client, error) {
	if modelID == "" {
		return nil, fmt.Errorf("bedrock model ID is required")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return &Client{
		client:           bedrockruntime.NewFromConfig(cfg),
		ModelID:          modelID,
		GuardrailID:      guardrailID,
		GuardrailVersion: guardrailVersion,
		MaxTokens:        1000,
		MaxRetries:       3,
		InitialDelay:     100 * time.Millisecond,
		MaxDelay:         12 * time.Second,
	}, nil
}
