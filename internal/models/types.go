package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityLow:
		return SeverityLow, nil
	case SeverityMedium:
		return SeverityMedium, nil
	case SeverityHigh:
		return SeverityHigh, nil
	case SeverityCritical:
		return SeverityCritical, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// PromptRecord is one adversarial prompt to run through the guardrail.
type PromptRecord struct {
	Prompt   string   `json:"prompt"`
	Category string   `json:"category"`
	Severity Severity `json:"severity"`
}

type OutcomeKind string

const (
	OutcomeBlocked OutcomeKind = "blocked"
	OutcomeAllowed OutcomeKind = "allowed"
	OutcomeErrored OutcomeKind = "errored"
)

// Outcome is the classification of a single guarded invocation. Exactly one
// outcome is produced per prompt record and it is never mutated afterwards.
type Outcome struct {
	Kind         OutcomeKind     `json:"kind"`
	Message      string          `json:"message,omitempty"`       // set for blocked
	ResponseText string          `json:"response_text,omitempty"` // set for allowed
	Error        string          `json:"error,omitempty"`         // set for errored
	Raw          json.RawMessage `json:"raw,omitempty"`
}

func BlockedOutcome(message string, raw json.RawMessage) Outcome {
	return Outcome{Kind: OutcomeBlocked, Message: message, Raw: raw}
}

func AllowedOutcome(responseText string, raw json.RawMessage) Outcome {
	return Outcome{Kind: OutcomeAllowed, ResponseText: responseText, Raw: raw}
}

func ErroredOutcome(err error) Outcome {
	return Outcome{Kind: OutcomeErrored, Error: err.Error()}
}

type BlockedPrompt struct {
	Prompt           string          `json:"prompt"`
	Category         string          `json:"category"`
	Severity         Severity        `json:"severity"`
	GuardrailMessage string          `json:"guardrail_message"`
	RawResponse      json.RawMessage `json:"raw_response,omitempty"`
}

type AllowedPrompt struct {
	Prompt      string          `json:"prompt"`
	Category    string          `json:"category"`
	Severity    Severity        `json:"severity"`
	Response    string          `json:"response"`
	RawResponse json.RawMessage `json:"raw_response,omitempty"`
}

type ErrorPrompt struct {
	Prompt   string   `json:"prompt"`
	Category string   `json:"category"`
	Severity Severity `json:"severity"`
	Error    string   `json:"error"`
}

// ResultSet partitions evaluated prompts by outcome. Entries are appended in
// input order and each input record contributes exactly one entry.
type ResultSet struct {
	Blocked []BlockedPrompt `json:"blocked_prompts"`
	Allowed []AllowedPrompt `json:"allowed_prompts"`
	Errored []ErrorPrompt   `json:"error_prompts"`
}

func (r *ResultSet) Append(rec PromptRecord, out Outcome) {
	switch out.Kind {
	case OutcomeBlocked:
		r.Blocked = append(r.Blocked, BlockedPrompt{
			Prompt:           rec.Prompt,
			Category:         rec.Category,
			Severity:         rec.Severity,
			GuardrailMessage: out.Message,
			RawResponse:      out.Raw,
		})
	case OutcomeAllowed:
		r.Allowed = append(r.Allowed, AllowedPrompt{
			Prompt:      rec.Prompt,
			Category:    rec.Category,
			Severity:    rec.Severity,
			Response:    out.ResponseText,
			RawResponse: out.Raw,
		})
	case OutcomeErrored:
		r.Errored = append(r.Errored, ErrorPrompt{
			Prompt:   rec.Prompt,
			Category: rec.Category,
			Severity: rec.Severity,
			Error:    out.Error,
		})
	}
}

func (r *ResultSet) Total() int {
	return len(r.Blocked) + len(r.Allowed) + len(r.Errored)
}

// Evaluated is the percentage denominator: errored entries are excluded.
func (r *ResultSet) Evaluated() int {
	return len(r.Blocked) + len(r.Allowed)
}
