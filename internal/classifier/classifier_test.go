package classifier

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dstanchev/guardrail-eval/internal/models"
)

func TestClassify_GuardrailActionBlocked(t *testing.T) {
	c := New()

	out := c.Classify(json.RawMessage(`{"guardrailAction":"BLOCKED","guardrailMessages":["nope"]}`))

	if out.Kind != models.OutcomeBlocked {
		t.Fatalf("expected blocked, got %s", out.Kind)
	}
	if out.Message != "nope" {
		t.Errorf("expected message 'nope', got %q", out.Message)
	}
}

func TestClassify_GuardrailActionBlocked_NoMessages(t *testing.T) {
	c := New()

	out := c.Classify(json.RawMessage(`{"guardrailAction":"BLOCKED"}`))

	if out.Kind != models.OutcomeBlocked {
		t.Fatalf("expected blocked, got %s", out.Kind)
	}
	if out.Message != "Blocked by guardrail" {
		t.Errorf("expected default message, got %q", out.Message)
	}
}

func TestClassify_BedrockIntervened(t *testing.T) {
	c := New()

	out := c.Classify(json.RawMessage(`{"amazon-bedrock-guardrailAction":"INTERVENED"}`))

	if out.Kind != models.OutcomeBlocked {
		t.Fatalf("expected blocked, got %s", out.Kind)
	}
	if out.Message != "Guardrail intervened" {
		t.Errorf("unexpected message %q", out.Message)
	}
}

func TestClassify_StoppedReason(t *testing.T) {
	c := New()

	out := c.Classify(json.RawMessage(`{"stopped_reason":"guardrail"}`))

	if out.Kind != models.OutcomeBlocked {
		t.Fatalf("expected blocked, got %s", out.Kind)
	}
	if out.Message != "Blocked by guardrail (stopped_reason)" {
		t.Errorf("unexpected message %q", out.Message)
	}
}

func TestClassify_InterventionType(t *testing.T) {
	c := New()

	out := c.Classify(json.RawMessage(`{"type":"guardrail_intervention"}`))

	if out.Kind != models.OutcomeBlocked {
		t.Fatalf("expected blocked, got %s", out.Kind)
	}
	if out.Message != "Blocked by guardrail (intervention type)" {
		t.Errorf("unexpected message %q", out.Message)
	}
}

// A response carrying both a guardrailAction and a contradicting
// stopped_reason must classify through the higher-priority rule.
func TestClassify_PriorityTieBreak(t *testing.T) {
	c := New()

	out := c.Classify(json.RawMessage(`{"guardrailAction":"BLOCKED","guardrailMessages":["first rule wins"],"stopped_reason":"end_turn"}`))

	if out.Kind != models.OutcomeBlocked {
		t.Fatalf("expected blocked, got %s", out.Kind)
	}
	if out.Message != "first rule wins" {
		t.Errorf("expected rule-1 message, got %q", out.Message)
	}
}

func TestClassify_RefusalText(t *testing.T) {
	c := New()

	body := `{"output":{"message":{"content":[{"text":"I cannot help with that because it would violate my usage policy."}]}}}`
	out := c.Classify(json.RawMessage(body))

	if out.Kind != models.OutcomeBlocked {
		t.Fatalf("expected blocked, got %s", out.Kind)
	}
	if !strings.HasSuffix(out.Message, "...") {
		t.Errorf("expected ellipsis marker, got %q", out.Message)
	}
}

func TestClassify_RefusalText_Truncation(t *testing.T) {
	c := New()

	long := "I cannot comply because this request would violate policy. " + strings.Repeat("x", 200)
	doc := map[string]any{
		"output": map[string]any{
			"message": map[string]any{
				"content": []any{map[string]any{"text": long}},
			},
		},
	}
	raw, _ := json.Marshal(doc)

	out := c.Classify(raw)

	if out.Kind != models.OutcomeBlocked {
		t.Fatalf("expected blocked, got %s", out.Kind)
	}
	if len(out.Message) != 103 {
		t.Errorf("expected 100 chars plus 3-char ellipsis, got %d: %q", len(out.Message), out.Message)
	}
	if out.Message != long[:100]+"..." {
		t.Errorf("unexpected truncation: %q", out.Message)
	}
}

// A refusal without the policy-flavored keywords is an ordinary completion.
func TestClassify_RefusalText_MissingKeyword(t *testing.T) {
	c := New()

	body := `{"output":{"message":{"content":[{"text":"I cannot say for sure what the answer is."}]}}}`
	out := c.Classify(json.RawMessage(body))

	if out.Kind != models.OutcomeAllowed {
		t.Fatalf("expected allowed, got %s", out.Kind)
	}
	if out.ResponseText != "I cannot say for sure what the answer is." {
		t.Errorf("unexpected response text %q", out.ResponseText)
	}
}

func TestClassify_AllowedTopLevelContent(t *testing.T) {
	c := New()

	out := c.Classify(json.RawMessage(`{"content":[{"text":"Sure, here is..."}]}`))

	if out.Kind != models.OutcomeAllowed {
		t.Fatalf("expected allowed, got %s", out.Kind)
	}
	if out.ResponseText != "Sure, here is..." {
		t.Errorf("unexpected response text %q", out.ResponseText)
	}
}

func TestClassify_AllowedContentConcatenated(t *testing.T) {
	c := New()

	out := c.Classify(json.RawMessage(`{"content":[{"text":"part one "},{"type":"tool_use"},{"text":"part two"}]}`))

	if out.ResponseText != "part one part two" {
		t.Errorf("expected concatenated text, got %q", out.ResponseText)
	}
}

func TestClassify_AllowedNestedOutput(t *testing.T) {
	c := New()

	body := `{"output":{"message":{"content":[{"text":"hello "},{"text":"world"}]}}}`
	out := c.Classify(json.RawMessage(body))

	if out.Kind != models.OutcomeAllowed {
		t.Fatalf("expected allowed, got %s", out.Kind)
	}
	if out.ResponseText != "hello world" {
		t.Errorf("unexpected response text %q", out.ResponseText)
	}
}

func TestClassify_AllowedCompletion(t *testing.T) {
	c := New()

	out := c.Classify(json.RawMessage(`{"completion":"plain completion text"}`))

	if out.ResponseText != "plain completion text" {
		t.Errorf("unexpected response text %q", out.ResponseText)
	}
}

func TestClassify_EmptyObject(t *testing.T) {
	c := New()

	out := c.Classify(json.RawMessage(`{}`))

	if out.Kind != models.OutcomeAllowed {
		t.Fatalf("expected allowed, got %s", out.Kind)
	}
	if out.ResponseText != "" {
		t.Errorf("expected empty response text, got %q", out.ResponseText)
	}
}

// Undecodable bodies silently classify as allowed with empty text; the
// classifier never raises for unrecognized shapes.
func TestClassify_InvalidJSON(t *testing.T) {
	c := New()

	out := c.Classify(json.RawMessage(`not json at all`))

	if out.Kind != models.OutcomeAllowed {
		t.Fatalf("expected allowed, got %s", out.Kind)
	}
	if out.ResponseText != "" {
		t.Errorf("expected empty response text, got %q", out.ResponseText)
	}
}

func TestClassify_CustomMatcherOrder(t *testing.T) {
	// Prepending a matcher overrides the built-in priority for a new shape.
	custom := append([]Matcher{&InterventionTypeMatcher{}}, DefaultMatchers()...)
	c := NewWithMatchers(custom)

	out := c.Classify(json.RawMessage(`{"type":"guardrail_intervention","guardrailAction":"BLOCKED"}`))

	if out.Message != "Blocked by guardrail (intervention type)" {
		t.Errorf("expected prepended matcher to win, got %q", out.Message)
	}
}
