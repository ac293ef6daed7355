package classifier

import "strings"

// Matcher inspects a response document for one known blocked-response shape.
// A true ok means the guardrail intervened; message is the human-readable
// block reason.
type Matcher interface {
	Name() string
	Match(doc Document) (message string, ok bool)
}

// DefaultMatchers returns the known blocked-response shapes in priority
// order. The ordering is a deliberate tie-break: a response carrying several
// indicators classifies by the first one. Keep new backend shapes at the
// position their specificity deserves rather than appending blindly.
func DefaultMatchers() []Matcher {
	return []Matcher{
		&GuardrailActionMatcher{},
		&BedrockInterventionMatcher{},
		&StoppedReasonMatcher{},
		&InterventionTypeMatcher{},
		&RefusalTextMatcher{},
	}
}

// GuardrailActionMatcher handles gateways that report the guardrail decision
// directly: guardrailAction == "BLOCKED", with optional guardrailMessages.
type GuardrailActionMatcher struct{}

func (m *GuardrailActionMatcher) Name() string { return "guardrail-action" }

func (m *GuardrailActionMatcher) Match(doc Document) (string, bool) {
	action, ok := stringField(doc, "guardrailAction")
	if !ok || action != "BLOCKED" {
		return "", false
	}

	if v, ok := lookup(doc, "guardrailMessages"); ok {
		if items, ok := v.([]any); ok && len(items) > 0 {
			if msg, ok := items[0].(string); ok {
				return msg, true
			}
		}
	}
	return "Blocked by guardrail", true
}

// BedrockInterventionMatcher handles the Bedrock response header surfaced as
// a body field: amazon-bedrock-guardrailAction == "INTERVENED".
type BedrockInterventionMatcher struct{}

func (m *BedrockInterventionMatcher) Name() string { return "bedrock-intervention" }

func (m *BedrockInterventionMatcher) Match(doc Document) (string, bool) {
	action, ok := stringField(doc, "amazon-bedrock-guardrailAction")
	if !ok || action != "INTERVENED" {
		return "", false
	}
	return "Guardrail intervened", true
}

// StoppedReasonMatcher handles models that stop generation with
// stopped_reason == "guardrail".
type StoppedReasonMatcher struct{}

func (m *StoppedReasonMatcher) Name() string { return "stopped-reason" }

func (m *StoppedReasonMatcher) Match(doc Document) (string, bool) {
	reason, ok := stringField(doc, "stopped_reason")
	if !ok || reason != "guardrail" {
		return "", false
	}
	return "Blocked by guardrail (stopped_reason)", true
}

// InterventionTypeMatcher handles event-styled responses with
// type == "guardrail_intervention".
type InterventionTypeMatcher struct{}

func (m *InterventionTypeMatcher) Name() string { return "intervention-type" }

func (m *InterventionTypeMatcher) Match(doc Document) (string, bool) {
	typ, ok := stringField(doc, "type")
	if !ok || typ != "guardrail_intervention" {
		return "", false
	}
	return "Blocked by guardrail (intervention type)", true
}

// RefusalTextMatcher scans output.message.content[*].text for a refusal that
// reads like a policy block. The substrings are a compatibility contract with
// the upstream report tooling; do not "improve" them.
type RefusalTextMatcher struct{}

func (m *RefusalTextMatcher) Name() string { return "refusal-text" }

func (m *RefusalTextMatcher) Match(doc Document) (string, bool) {
	v, ok := lookup(doc, "output", "message", "content")
	if !ok {
		return "", false
	}
	items, ok := v.([]any)
	if !ok {
		return "", false
	}

	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		text, ok := obj["text"].(string)
		if !ok {
			continue
		}
		if strings.Contains(text, "I cannot") &&
			(strings.Contains(text, "policy") ||
				strings.Contains(text, "guidelines") ||
				strings.Contains(text, "violate")) {
			return excerpt(text, 100), true
		}
	}
	return "", false
}
