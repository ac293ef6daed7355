package threats

import (
	"testing"

	"github.com/dstanchev/guardrail-eval/internal/models"
)

func record(prompt, category string, severity models.Severity, outputs ...AttackOutput) AttackRecord {
	return AttackRecord{
		Prompt:   prompt,
		Category: category,
		Severity: severity,
		Outputs:  outputs,
	}
}

func TestFilterSeverity(t *testing.T) {
	records := []AttackRecord{
		record("a", "c", models.SeverityLow),
		record("b", "c", models.SeverityMedium),
		record("c", "c", models.SeverityHigh),
		record("d", "c", models.SeverityCritical),
	}

	filtered := FilterSeverity(records, DefaultSeverities)

	if len(filtered) != 3 {
		t.Fatalf("expected 3 records, got %d", len(filtered))
	}
	for _, rec := range filtered {
		if rec.Severity == models.SeverityLow {
			t.Errorf("LOW record survived the filter: %+v", rec)
		}
	}
}

func TestParseSeverities(t *testing.T) {
	severities, err := ParseSeverities("high, CRITICAL")
	if err != nil {
		t.Fatalf("ParseSeverities failed: %v", err)
	}
	if len(severities) != 2 || severities[0] != models.SeverityHigh || severities[1] != models.SeverityCritical {
		t.Errorf("unexpected severities: %v", severities)
	}

	if _, err := ParseSeverities("HIGH,BOGUS"); err == nil {
		t.Error("expected error for unknown severity")
	}
	if _, err := ParseSeverities(""); err == nil {
		t.Error("expected error for empty list")
	}
}

func TestExplodeOutputs(t *testing.T) {
	records := []AttackRecord{
		record("p1", "Jailbreak", models.SeverityHigh,
			AttackOutput{Output: "o1", IsThreat: true},
			AttackOutput{Output: "o2", IsThreat: false},
		),
		// Duplicate prompt/output pair collapses.
		record("p1", "Jailbreak", models.SeverityHigh, AttackOutput{Output: "o1", IsThreat: true}),
		// Empty output text drops.
		record("p2", "Injection", models.SeverityMedium, AttackOutput{Output: ""}),
		// Empty prompt drops.
		record("", "Injection", models.SeverityMedium, AttackOutput{Output: "o3"}),
	}

	rows := ExplodeOutputs(records)

	if len(rows) != 2 {
		t.Fatalf("expected 2 threat rows, got %d: %+v", len(rows), rows)
	}
	if rows[0].Output != "o1" || rows[1].Output != "o2" {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestPromptRecords_Dedupes(t *testing.T) {
	records := []AttackRecord{
		record("p1", "Jailbreak", models.SeverityHigh),
		record("p1", "Jailbreak", models.SeverityHigh),
		record("p2", "Injection", models.SeverityCritical),
		record("", "Injection", models.SeverityCritical),
	}

	prompts := PromptRecords(records)

	if len(prompts) != 2 {
		t.Fatalf("expected 2 prompt records, got %d", len(prompts))
	}
	if prompts[0].Prompt != "p1" || prompts[1].Prompt != "p2" {
		t.Errorf("unexpected prompts: %+v", prompts)
	}
}

func TestSuccessful(t *testing.T) {
	one := 1
	zero := 0

	if !Successful(ReportData{TotalGoalsAchieved: &one}) {
		t.Error("goals achieved should mean success")
	}
	if !Successful(ReportData{TotalThreats: &one}) {
		t.Error("threats found should mean success")
	}
	if Successful(ReportData{TotalGoalsAchieved: &zero, TotalThreats: &zero}) {
		t.Error("zero counts should not mean success")
	}
	if Successful(ReportData{}) {
		t.Error("missing counts should not mean success")
	}
}
