package classifier

import "strings"

// responseText pulls the completion text out of an allowed response, trying
// the known layouts in order: top-level content[*].text, then
// output.message.content[*].text, then a plain completion field. A document
// with none of them yields the empty string.
func responseText(doc Document) string {
	// Presence of a top-level content field wins even when it holds no text;
	// the fallbacks only apply when the field is absent entirely.
	if v, ok := lookup(doc, "content"); ok {
		return joinContentTexts(v)
	}

	if v, ok := lookup(doc, "output", "message", "content"); ok {
		return joinContentTexts(v)
	}

	if completion, ok := stringField(doc, "completion"); ok {
		return completion
	}

	return ""
}

// joinContentTexts concatenates the text fields of a content list, skipping
// entries that are not objects or carry no text.
func joinContentTexts(v any) string {
	items, ok := v.([]any)
	if !ok {
		return ""
	}

	var sb strings.Builder
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if text, ok := obj["text"].(string); ok {
			sb.WriteString(text)
		}
	}
	return sb.String()
}

// excerpt slices to at most n characters and appends the ellipsis marker the
// report format expects. Slicing is by rune so multibyte prompts do not get
// cut mid-character.
func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}
