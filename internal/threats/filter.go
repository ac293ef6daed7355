package threats

import (
	"fmt"
	"strings"

	"github.com/dstanchev/guardrail-eval/internal/models"
)

// DefaultSeverities is the evaluation focus: low-severity noise is filtered
// out upstream of the guardrail run.
var DefaultSeverities = []models.Severity{
	models.SeverityMedium,
	models.SeverityHigh,
	models.SeverityCritical,
}

// ParseSeverities parses a comma-separated severity list, e.g.
// "HIGH,CRITICAL".
func ParseSeverities(s string) ([]models.Severity, error) {
	var severities []models.Severity
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		severity, err := models.ParseSeverity(part)
		if err != nil {
			return nil, err
		}
		severities = append(severities, severity)
	}
	if len(severities) == 0 {
		return nil, fmt.Errorf("no severities in %q", s)
	}
	return severities, nil
}

// FilterSeverity keeps records whose severity is in the given set.
func FilterSeverity(records []AttackRecord, severities []models.Severity) []AttackRecord {
	keep := make(map[models.Severity]bool, len(severities))
	for _, s := range severities {
		keep[s] = true
	}

	var filtered []AttackRecord
	for _, rec := range records {
		if keep[rec.Severity] {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// ExplodeOutputs flattens attack records to one row per output, dropping
// rows with missing prompt or output text and collapsing duplicates. This is
// the threat view of a report: every row is a prompt/response pair.
func ExplodeOutputs(records []AttackRecord) []ThreatRow {
	seen := make(map[string]bool)
	var rows []ThreatRow

	for _, rec := range records {
		if rec.Prompt == "" {
			continue
		}
		for _, out := range rec.Outputs {
			if out.Output == "" {
				continue
			}
			key := rec.Prompt + "\x00" + out.Output
			if seen[key] {
				continue
			}
			seen[key] = true
			rows = append(rows, ThreatRow{
				Prompt:   rec.Prompt,
				Category: rec.Category,
				Severity: rec.Severity,
				Output:   out.Output,
			})
		}
	}
	return rows
}

// ExtractGoals explodes each record's configured attack goals into per-goal
// rows.
func ExtractGoals(records []AttackRecord) []GoalRow {
	var rows []GoalRow
	for _, rec := range records {
		for _, goal := range rec.JobMetadata.AttackGoals {
			rows = append(rows, GoalRow{
				UUID:      rec.UUID,
				Name:      rec.Name,
				ModelName: rec.ModelName,
				Goal:      goal,
				Score:     rec.Score,
				Status:    rec.Status,
			})
		}
	}
	return rows
}

// PromptRecords projects attack records onto the evaluation input,
// deduplicating by prompt text.
func PromptRecords(records []AttackRecord) []models.PromptRecord {
	seen := make(map[string]bool)
	var prompts []models.PromptRecord

	for _, rec := range records {
		if rec.Prompt == "" || seen[rec.Prompt] {
			continue
		}
		seen[rec.Prompt] = true
		prompts = append(prompts, models.PromptRecord{
			Prompt:   rec.Prompt,
			Category: rec.Category,
			Severity: rec.Severity,
		})
	}
	return prompts
}
