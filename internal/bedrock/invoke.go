package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// Nova-style messages payload; the guarded target models in this workflow
// (amazon.nova-*) share it.
type novaRequest struct {
	InferenceConfig inferenceConfig `json:"inferenceConfig"`
	Messages        []novaMessage   `json:"messages"`
}

type inferenceConfig struct {
	MaxNewTokens int `json:"max_new_tokens"`
}

type novaMessage struct {
	Role    string        `json:"role"`
	Content []novaContent `json:"content"`
}

type novaContent struct {
	Text string `json:"text"`
}

// Invoke sends one prompt through the guarded model and returns the raw
// response body. The body is handed to the classifier undecoded: blocked
// responses come back in several shapes and deciding between them is not
// this layer's job. Retries happen here, transparently to the driver.
func (c *Client) Invoke(ctx context.Context, prompt string) (json.RawMessage, error) {
	var lastErr error

	for attempt := 0; attempt < c.MaxRetries; attempt++ {
		body, err := c.invokeOnce(ctx, prompt)
		if err == nil {
			return body, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			return nil, err
		}

		delay := calculateBackoff(attempt, c.InitialDelay, c.MaxDelay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("max retries %d exceeded: %w", c.MaxRetries, lastErr)
}

func (c *Client) invokeOnce(ctx context.Context, prompt string) (json.RawMessage, error) {
	payload, err := buildPayload(prompt, c.MaxTokens)
	if err != nil {
		return nil, err
	}

	input := &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.ModelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	}
	if c.GuardrailID != "" {
		input.GuardrailIdentifier = aws.String(c.GuardrailID)
		input.GuardrailVersion = aws.String(c.GuardrailVersion)
	}

	output, err := c.client.InvokeModel(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("unable to invoke model %s: %w", c.ModelID, err)
	}

	return json.RawMessage(output.Body), nil
}

func buildPayload(prompt string, maxTokens int) ([]byte, error) {
	payload := novaRequest{
		InferenceConfig: inferenceConfig{MaxNewTokens: maxTokens},
		Messages: []novaMessage{
			{
				Role:    "user",
				Content: []novaContent{{Text: prompt}},
			},
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("unable to serialize invocation payload: %w", err)
	}
	return data, nil
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()

	// Throttling
	if strings.Contains(errStr, "ThrottlingException") ||
		strings.Contains(errStr, "TooManyRequestsException") ||
		strings.Contains(errStr, "Rate exceeded") {
		return true
	}

	// Service errors (5xx)
	if strings.Contains(errStr, "InternalServerException") ||
		strings.Contains(errStr, "ServiceUnavailableException") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "503") {
		return true
	}

	// Network errors
	if strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "timeout") {
		return true
	}

	// 4xx client errors, validation errors and the like are not worth a retry.
	return false
}

func calculateBackoff(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	backoff := float64(initialDelay) * math.Pow(2, float64(attempt))

	if backoff > float64(maxDelay) {
		backoff = float64(maxDelay)
	}

	jitter := backoff * 0.2 * (2*rand.Float64() - 1) // between -20% and +20%
	backoff += jitter

	return time.Duration(backoff)
}
