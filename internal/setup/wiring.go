package setup

import (
	"context"
	"fmt"
	"os"

	"github.com/dstanchev/guardrail-eval/internal/analyzer"
	"github.com/dstanchev/guardrail-eval/internal/bedrock"
	"github.com/dstanchev/guardrail-eval/internal/classifier"
	"github.com/dstanchev/guardrail-eval/internal/config"
	"github.com/dstanchev/guardrail-eval/internal/guardrail"
	"github.com/dstanchev/guardrail-eval/internal/llm"
	llmbedrock "github.com/dstanchev/guardrail-eval/internal/llm/bedrock"
	"github.com/dstanchev/guardrail-eval/internal/llm/gpt"
	"github.com/dstanchev/guardrail-eval/internal/reconapi"
	"github.com/dstanchev/guardrail-eval/internal/report"
	"github.com/rs/zerolog"
)

// Config is the explicit configuration object for all entrypoints. It is
// built from the environment once at startup and validated before any work
// begins; nothing reads the environment mid-run.
type Config struct {
	AWSRegion        string
	TargetModelID    string
	GuardrailID      string
	GuardrailVersion string

	ClaudeModelID   string
	OpenAIKey       string
	OpenAIModelID   string
	DefaultProvider string

	ReconBaseURL  string
	ReconAPIToken string

	LogLevel string
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		TargetModelID:    getEnv("TARGET_MODEL_ID", "amazon.nova-lite-v1:0"),
		GuardrailID:      getEnv("GUARDRAIL_ID", ""),
		GuardrailVersion: getEnv("GUARDRAIL_VERSION", "1"),
		ClaudeModelID:    getEnv("CLAUDE_MODEL_ID", ""),
		OpenAIKey:        getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID:    getEnv("OPEN_AI_MODEL_ID", ""),
		DefaultProvider:  getEnv("DEFAULT_LLM_PROVIDER", "bedrock"),
		ReconBaseURL:     getEnv("RECON_API_BASE_URL", ""),
		ReconAPIToken:    getEnv("RECON_API_TOKEN", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

// ValidateEvaluation checks the preconditions for a guardrail run.
func (c *Config) ValidateEvaluation() error {
	if c.GuardrailID == "" {
		return fmt.Errorf("GUARDRAIL_ID is required")
	}
	return nil
}

// ValidateAnalysis checks the preconditions for the pattern analysis.
func (c *Config) ValidateAnalysis() error {
	switch c.DefaultProvider {
	case "openai":
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPEN_AI_KEY is required for the openai provider")
		}
		if c.OpenAIModelID == "" {
			return fmt.Errorf("OPEN_AI_MODEL_ID is required for the openai provider")
		}
	default:
		if c.ClaudeModelID == "" {
			return fmt.Errorf("CLAUDE_MODEL_ID is required for the bedrock provider")
		}
	}
	return nil
}

// ValidateReconAPI checks the preconditions for talking to the scan-job API.
func (c *Config) ValidateReconAPI() error {
	if c.ReconBaseURL == "" {
		return fmt.Errorf("RECON_API_BASE_URL is required")
	}
	if c.ReconAPIToken == "" {
		return fmt.Errorf("RECON_API_TOKEN is required")
	}
	return nil
}

// Dependencies are the wired collaborators of the evaluation entrypoints.
type Dependencies struct {
	Invoker    *bedrock.Client
	Classifier *classifier.Classifier
	Evaluator  *guardrail.Evaluator
	Aggregator *report.Aggregator
	Logger     *zerolog.Logger
}

// Wire builds the guardrail evaluation pipeline.
func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	if err := cfg.ValidateEvaluation(); err != nil {
		return nil, err
	}

	invoker, err := bedrock.NewClient(ctx, cfg.AWSRegion, cfg.TargetModelID, cfg.GuardrailID, cfg.GuardrailVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bedrock client: %w", err)
	}

	cls := classifier.New()

	return &Dependencies{
		Invoker:    invoker,
		Classifier: cls,
		Evaluator:  guardrail.NewEvaluator(invoker, cls, logger),
		Aggregator: report.NewAggregator(logger),
		Logger:     logger,
	}, nil
}

// WireAnalyzer builds the attack-pattern analyzer on the configured LLM
// provider.
func WireAnalyzer(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*analyzer.Analyzer, error) {
	if err := cfg.ValidateAnalysis(); err != nil {
		return nil, err
	}

	llmClient, err := createLLMClient(ctx, cfg.DefaultProvider, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	analysisConfig, err := config.LoadAnalysisConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis config: %w", err)
	}

	return analyzer.New(llmClient, analysisConfig, logger)
}

// WireReconClient builds the scan-job API client.
func WireReconClient(cfg *Config, logger *zerolog.Logger) (*reconapi.Client, error) {
	if err := cfg.ValidateReconAPI(); err != nil {
		return nil, err
	}
	return reconapi.NewClient(cfg.ReconBaseURL, cfg.ReconAPIToken, logger)
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func createLLMClient(ctx context.Context, provider string, cfg *Config) (llm.LLMClient, error) {
	switch provider {
	case "bedrock":
		return llmbedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	case "openai":
		return gpt.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID)
	default:
		return llmbedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	}
}
