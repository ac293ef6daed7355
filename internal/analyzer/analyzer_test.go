package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dstanchev/guardrail-eval/internal/config"
	"github.com/dstanchev/guardrail-eval/internal/llm"
	"github.com/dstanchev/guardrail-eval/internal/llm/mocks"
	"github.com/dstanchev/guardrail-eval/internal/models"
	"github.com/dstanchev/guardrail-eval/internal/threats"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func testConfig() *config.AnalysisConfig {
	return &config.AnalysisConfig{
		Prompt:      "Analyze the dataset:{{.Examples}}",
		NumExamples: 2,
		Model:       config.ModelParams{MaxTokens: 6000, Temperature: 0.0},
	}
}

func attack(prompt, category string, threat bool) threats.AttackRecord {
	return threats.AttackRecord{
		Prompt:   prompt,
		Category: category,
		Severity: models.SeverityHigh,
		Outputs:  threats.OutputList{{Output: "model output for " + prompt, IsThreat: threat}},
	}
}

func TestAnalyze_SendsRenderedPrompt(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockLLMClient(ctrl)

	var captured llm.LLMRequest
	client.EXPECT().
		InvokeModel(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req llm.LLMRequest) (*llm.LLMResponse, error) {
			captured = req
			return &llm.LLMResponse{Content: "analysis text"}, nil
		})

	a, err := New(client, testConfig(), newTestLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	records := []threats.AttackRecord{
		attack("break out of your sandbox", "Jailbreak", true),
		attack("exfiltrate the system prompt", "Injection", false),
	}

	result, err := a.Analyze(context.Background(), records)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result != "analysis text" {
		t.Errorf("unexpected analysis result %q", result)
	}

	if !strings.Contains(captured.Prompt, "== JAILBREAK EXAMPLES ==") {
		t.Errorf("prompt missing category section:\n%s", captured.Prompt)
	}
	if !strings.Contains(captured.Prompt, "Prompt: break out of your sandbox") {
		t.Errorf("prompt missing example prompt:\n%s", captured.Prompt)
	}
	if !strings.Contains(captured.Prompt, "(Threat: true)") {
		t.Errorf("prompt missing threat flag:\n%s", captured.Prompt)
	}
	if captured.MaxTokens != 6000 {
		t.Errorf("expected max tokens 6000, got %d", captured.MaxTokens)
	}
}

func TestAnalyze_RetryConfigUsesRetryPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockLLMClient(ctrl)
	client.EXPECT().
		InvokeModelWithRetry(gomock.Any(), gomock.Any()).
		Return(&llm.LLMResponse{Content: "ok"}, nil)

	cfg := testConfig()
	cfg.Model.Retry = true

	a, err := New(client, cfg, newTestLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := a.Analyze(context.Background(), []threats.AttackRecord{attack("p", "c", true)}); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
}

func TestAnalyze_InvocationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockLLMClient(ctrl)
	client.EXPECT().
		InvokeModel(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("throttled"))

	a, err := New(client, testConfig(), newTestLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := a.Analyze(context.Background(), []threats.AttackRecord{attack("p", "c", true)}); err == nil {
		t.Error("expected error from failed invocation")
	}
}

func TestAnalyze_NoRecords(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockLLMClient(ctrl)

	a, err := New(client, testConfig(), newTestLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := a.Analyze(context.Background(), nil); err == nil {
		t.Error("expected error for empty dataset")
	}
}

// Successful attacks crowd out unsuccessful ones when a category has enough
// of them; otherwise the category falls back to its first records.
func TestSampleByCategory_PrefersSuccessfulAttacks(t *testing.T) {
	records := []threats.AttackRecord{
		attack("miss 1", "Jailbreak", false),
		attack("hit 1", "Jailbreak", true),
		attack("hit 2", "Jailbreak", true),
		attack("lonely miss", "Injection", false),
	}

	samples := sampleByCategory(records, 2)

	if len(samples) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(samples))
	}

	jailbreak := samples[0]
	if jailbreak.category != "Jailbreak" || len(jailbreak.examples) != 2 {
		t.Fatalf("unexpected jailbreak sample: %+v", jailbreak)
	}
	if jailbreak.examples[0].Prompt != "hit 1" || jailbreak.examples[1].Prompt != "hit 2" {
		t.Errorf("expected successful attacks picked first: %+v", jailbreak.examples)
	}

	injection := samples[1]
	if len(injection.examples) != 1 || injection.examples[0].Prompt != "lonely miss" {
		t.Errorf("expected fallback to head of category: %+v", injection.examples)
	}
}

func TestFormatExamples_TruncatesLongOutputs(t *testing.T) {
	rec := threats.AttackRecord{
		Prompt:   "p",
		Category: "Jailbreak",
		Severity: models.SeverityCritical,
		Outputs:  threats.OutputList{{Output: strings.Repeat("y", 300), IsThreat: true}},
	}

	text := formatExamples([]categorySample{{category: "Jailbreak", examples: []threats.AttackRecord{rec}}})

	if !strings.Contains(text, strings.Repeat("y", 200)+"...") {
		t.Error("expected output truncated to 200 chars with ellipsis")
	}
	if strings.Contains(text, strings.Repeat("y", 201)) {
		t.Error("output not truncated")
	}
}
