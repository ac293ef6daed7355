package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/dstanchev/guardrail-eval/internal/config"
	"github.com/dstanchev/guardrail-eval/internal/llm"
	"github.com/dstanchev/guardrail-eval/internal/threats"
	"github.com/rs/zerolog"
)

const outputExcerptLen = 200

// Analyzer asks an LLM to mine attack patterns out of a threat dataset and
// recommend guardrail configurations against them.
type Analyzer struct {
	client      llm.LLMClient
	tmpl        *template.Template
	numExamples int
	modelParams config.ModelParams
	logger      *zerolog.Logger
}

func New(client llm.LLMClient, cfg *config.AnalysisConfig, logger *zerolog.Logger) (*Analyzer, error) {
	tmpl, err := template.New("analysis").Parse(cfg.Prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse analysis prompt template: %w", err)
	}

	return &Analyzer{
		client:      client,
		tmpl:        tmpl,
		numExamples: cfg.NumExamples,
		modelParams: cfg.Model,
		logger:      logger,
	}, nil
}

// Analyze samples representative attacks per category, renders the analysis
// prompt and returns the model's text.
func (a *Analyzer) Analyze(ctx context.Context, records []threats.AttackRecord) (string, error) {
	if len(records) == 0 {
		return "", fmt.Errorf("no attack records to analyze")
	}

	prompt, err := a.buildPrompt(records)
	if err != nil {
		return "", err
	}

	a.logger.Info().
		Int("records", len(records)).
		Int("prompt_chars", len(prompt)).
		Msg("requesting attack pattern analysis")

	request := llm.LLMRequest{
		Prompt:      prompt,
		MaxTokens:   a.modelParams.MaxTokens,
		Temperature: a.modelParams.Temperature,
	}

	var response *llm.LLMResponse
	if a.modelParams.Retry {
		response, err = a.client.InvokeModelWithRetry(ctx, request)
	} else {
		response, err = a.client.InvokeModel(ctx, request)
	}
	if err != nil {
		return "", fmt.Errorf("analysis invocation failed: %w", err)
	}

	return response.Content, nil
}

func (a *Analyzer) buildPrompt(records []threats.AttackRecord) (string, error) {
	examples := formatExamples(sampleByCategory(records, a.numExamples))

	var buf bytes.Buffer
	if err := a.tmpl.Execute(&buf, struct{ Examples string }{Examples: examples}); err != nil {
		return "", fmt.Errorf("analysis template execution failed: %w", err)
	}
	return buf.String(), nil
}

type categorySample struct {
	category string
	examples []threats.AttackRecord
}

// sampleByCategory picks up to n examples per category, in first-seen
// category order, preferring records whose outputs contain a successful
// threat. Categories without n successful attacks fall back to their first n
// records.
func sampleByCategory(records []threats.AttackRecord, n int) []categorySample {
	index := make(map[string]int)
	var grouped [][]threats.AttackRecord
	var order []string

	for _, rec := range records {
		i, ok := index[rec.Category]
		if !ok {
			i = len(grouped)
			index[rec.Category] = i
			grouped = append(grouped, nil)
			order = append(order, rec.Category)
		}
		grouped[i] = append(grouped[i], rec)
	}

	var samples []categorySample
	for i, category := range order {
		var successful []threats.AttackRecord
		for _, rec := range grouped[i] {
			if hasThreatOutput(rec) {
				successful = append(successful, rec)
			}
		}

		picked := grouped[i]
		if len(successful) >= n {
			picked = successful
		}
		if len(picked) > n {
			picked = picked[:n]
		}

		samples = append(samples, categorySample{category: category, examples: picked})
	}
	return samples
}

func hasThreatOutput(rec threats.AttackRecord) bool {
	for _, out := range rec.Outputs {
		if out.IsThreat {
			return true
		}
	}
	return false
}

func formatExamples(samples []categorySample) string {
	var sb strings.Builder
	for _, sample := range samples {
		fmt.Fprintf(&sb, "\n\n== %s EXAMPLES ==\n", strings.ToUpper(sample.category))
		for i, rec := range sample.examples {
			fmt.Fprintf(&sb, "\nExample %d:\n", i+1)
			fmt.Fprintf(&sb, "Prompt: %s\n", rec.Prompt)
			fmt.Fprintf(&sb, "Category: %s\n", rec.Category)
			fmt.Fprintf(&sb, "Severity: %s\n", rec.Severity)
			sb.WriteString("Outputs:\n")
			for j, out := range rec.Outputs {
				fmt.Fprintf(&sb, "  Output %d (Threat: %t): %s\n", j+1, out.IsThreat, truncateOutput(out.Output))
			}
		}
	}
	return sb.String()
}

func truncateOutput(s string) string {
	runes := []rune(s)
	if len(runes) <= outputExcerptLen {
		return s
	}
	return string(runes[:outputExcerptLen]) + "..."
}
