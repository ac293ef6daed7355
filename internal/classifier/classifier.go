package classifier

import (
	"encoding/json"

	"github.com/dstanchev/guardrail-eval/internal/models"
)

// Document is a single decoded model-gateway response body. Its shape is not
// fixed in advance: every backend and model family answers differently, so
// matchers probe optional fields instead of unmarshalling into a struct.
type Document map[string]any

// Classifier decides whether a raw gateway response means the guardrail
// blocked the request. Matchers run in registration order and the first match
// wins; a response no matcher recognizes classifies as allowed, with the
// completion text extracted on a best-effort basis.
type Classifier struct {
	matchers []Matcher
}

func New() *Classifier {
	return &Classifier{matchers: DefaultMatchers()}
}

// NewWithMatchers builds a classifier with a custom matcher list, for
// backends whose response shapes the default set does not cover yet.
func NewWithMatchers(matchers []Matcher) *Classifier {
	return &Classifier{matchers: matchers}
}

// Classify never fails: an undecodable or unrecognized body yields an allowed
// outcome with empty response text.
func (c *Classifier) Classify(raw json.RawMessage) models.Outcome {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		return models.AllowedOutcome("", raw)
	}

	for _, m := range c.matchers {
		if message, ok := m.Match(doc); ok {
			return models.BlockedOutcome(message, raw)
		}
	}

	return models.AllowedOutcome(responseText(doc), raw)
}

// lookup walks nested objects key by key, returning false as soon as a level
// is missing or not an object.
func lookup(doc Document, keys ...string) (any, bool) {
	var curr any = map[string]any(doc)
	for _, key := range keys {
		obj, ok := curr.(map[string]any)
		if !ok {
			return nil, false
		}
		curr, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return curr, true
}

func stringField(doc Document, keys ...string) (string, bool) {
	v, ok := lookup(doc, keys...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
