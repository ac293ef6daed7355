package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dstanchev/guardrail-eval/internal/models"
)

// The dump mirrors the in-memory result set but carries raw gateway
// responses as plain strings, so a malformed body can never make the whole
// document unserializable.

type dumpBlocked struct {
	Prompt           string          `json:"prompt"`
	Category         string          `json:"category"`
	Severity         models.Severity `json:"severity"`
	GuardrailMessage string          `json:"guardrail_message"`
	RawResponse      string          `json:"raw_response"`
}

type dumpAllowed struct {
	Prompt      string          `json:"prompt"`
	Category    string          `json:"category"`
	Severity    models.Severity `json:"severity"`
	Response    string          `json:"response"`
	RawResponse string          `json:"raw_response"`
}

type dumpDocument struct {
	Blocked []dumpBlocked        `json:"blocked_prompts"`
	Allowed []dumpAllowed        `json:"allowed_prompts"`
	Errored []models.ErrorPrompt `json:"error_prompts"`
}

// WriteDump serializes the full result set, raw responses included, for
// offline analysis.
func WriteDump(path string, results models.ResultSet) error {
	doc := dumpDocument{
		Blocked: make([]dumpBlocked, 0, len(results.Blocked)),
		Allowed: make([]dumpAllowed, 0, len(results.Allowed)),
		Errored: results.Errored,
	}
	if doc.Errored == nil {
		doc.Errored = []models.ErrorPrompt{}
	}

	for _, entry := range results.Blocked {
		doc.Blocked = append(doc.Blocked, dumpBlocked{
			Prompt:           entry.Prompt,
			Category:         entry.Category,
			Severity:         entry.Severity,
			GuardrailMessage: entry.GuardrailMessage,
			RawResponse:      string(entry.RawResponse),
		})
	}
	for _, entry := range results.Allowed {
		doc.Allowed = append(doc.Allowed, dumpAllowed{
			Prompt:      entry.Prompt,
			Category:    entry.Category,
			Severity:    entry.Severity,
			Response:    entry.Response,
			RawResponse: string(entry.RawResponse),
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize results dump: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write results dump to %s: %w", path, err)
	}
	return nil
}
