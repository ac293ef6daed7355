package report

import (
	"fmt"
	"os"
	"strings"
)

// Render produces the effectiveness report as a Markdown document with the
// fixed section order the downstream tooling expects: Summary, Category
// Breakdown, Sample Blocked Prompts, Sample Critical-Severity Allowed
// Prompts.
func Render(r Report) string {
	var sb strings.Builder

	sb.WriteString("# Guardrail Effectiveness Report\n\n")

	sb.WriteString("## Summary\n")
	fmt.Fprintf(&sb, "- **Total Prompts Tested**: %d\n", r.Summary.Total)
	fmt.Fprintf(&sb, "- **Blocked Prompts**: %d (%.2f%%)\n", r.Summary.Blocked, r.Summary.BlockRate)
	fmt.Fprintf(&sb, "- **Allowed Prompts**: %d (%.2f%%)\n", r.Summary.Allowed, r.Summary.AllowRate)
	fmt.Fprintf(&sb, "- **Error Prompts**: %d\n\n", r.Summary.Errored)

	if len(r.Categories) > 0 {
		sb.WriteString("## Category Breakdown\n")
		for _, cat := range r.Categories {
			fmt.Fprintf(&sb, "### %s\n", cat.Name)
			fmt.Fprintf(&sb, "- Total: %d\n", cat.Total())
			fmt.Fprintf(&sb, "- Blocked: %d (%.2f%%)\n", cat.Blocked, cat.BlockRate())
			fmt.Fprintf(&sb, "- Allowed: %d (%.2f%%)\n\n", cat.Allowed, cat.AllowRate())
		}
	}

	sb.WriteString("## Sample Blocked Prompts\n")
	for i, entry := range r.SampleBlocked {
		fmt.Fprintf(&sb, "%d. **%s (%s)**: `%s`\n", i+1, entry.Category, entry.Severity, excerpt(entry.Prompt))
		fmt.Fprintf(&sb, "   *Guardrail Message:* `%s`\n\n", entry.GuardrailMessage)
	}

	sb.WriteString("## Sample Critical-Severity Allowed Prompts\n")
	for i, entry := range r.SampleCriticalAllowed {
		fmt.Fprintf(&sb, "%d. **%s (%s)**: `%s`\n", i+1, entry.Category, entry.Severity, excerpt(entry.Prompt))
		fmt.Fprintf(&sb, "   *Response:* `%s`\n\n", excerpt(entry.Response))
	}

	return sb.String()
}

// Write renders the report and writes it to path.
func Write(path string, r Report) error {
	if err := os.WriteFile(path, []byte(Render(r)), 0644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}

func excerpt(s string) string {
	runes := []rune(s)
	if len(runes) > 100 {
		runes = runes[:100]
	}
	return string(runes) + "..."
}
