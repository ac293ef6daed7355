package guardrail

import (
	"context"
	"encoding/json"

	"github.com/dstanchev/guardrail-eval/internal/models"
	"github.com/rs/zerolog"
)

// Invoker issues one guarded model invocation and returns the raw response
// body. Timeout and retry policy belong to the implementation; the evaluator
// calls it exactly once per record and imposes none of its own.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (json.RawMessage, error)
}

// Classifier turns a raw response body into a blocked/allowed outcome.
type Classifier interface {
	Classify(raw json.RawMessage) models.Outcome
}

// Evaluator drives a sequence of threat prompts through the guarded
// invocation, one blocking call at a time, and partitions the outcomes.
type Evaluator struct {
	invoker       Invoker
	classifier    Classifier
	progressEvery int
	logger        *zerolog.Logger
}

func NewEvaluator(invoker Invoker, classifier Classifier, logger *zerolog.Logger) *Evaluator {
	return &Evaluator{
		invoker:       invoker,
		classifier:    classifier,
		progressEvery: 10,
		logger:        logger,
	}
}

// Evaluate processes records strictly in order. A failed invocation is
// recorded against that record alone; the remaining records still run. The
// returned ResultSet holds exactly one entry per input record.
func (e *Evaluator) Evaluate(ctx context.Context, records []models.PromptRecord) models.ResultSet {
	total := len(records)
	e.logger.Info().Int("total", total).Msg("testing guardrail against threat prompts")

	var results models.ResultSet
	for i, rec := range records {
		// Cancellation is checked between records; a cancelled run still
		// yields one entry per input record.
		if err := ctx.Err(); err != nil {
			results.Append(rec, models.ErroredOutcome(err))
			continue
		}

		raw, err := e.invoker.Invoke(ctx, rec.Prompt)
		if err != nil {
			results.Append(rec, models.ErroredOutcome(err))
			e.logger.Error().
				Err(err).
				Str("category", rec.Category).
				Str("prompt", excerptPrompt(rec.Prompt)).
				Msg("prompt invocation failed")
		} else {
			results.Append(rec, e.classifier.Classify(raw))
		}

		processed := i + 1
		if processed%e.progressEvery == 0 || processed == total {
			e.logger.Info().
				Int("processed", processed).
				Int("total", total).
				Int("blocked", len(results.Blocked)).
				Int("allowed", len(results.Allowed)).
				Int("errors", len(results.Errored)).
				Msg("progress")
		}
	}

	return results
}

func excerptPrompt(prompt string) string {
	runes := []rune(prompt)
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return string(runes)
}
