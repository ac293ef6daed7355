package threats

import (
	"bytes"
	"encoding/json"

	"github.com/dstanchev/guardrail-eval/internal/models"
)

// AttackRecord is one row of an attack report: a prompt that was fired at a
// model, with the categorized outcome attempts attached.
type AttackRecord struct {
	UUID        string          `json:"uuid"`
	Name        string          `json:"name"`
	ModelName   string          `json:"model_name"`
	Prompt      string          `json:"prompt"`
	Category    string          `json:"category_name"`
	Severity    models.Severity `json:"severity"`
	Outputs     OutputList      `json:"outputs"`
	JobMetadata JobMetadata     `json:"job_metadata"`
	Score       float64         `json:"score"`
	Status      string          `json:"status"`
}

// AttackOutput is one model response to an attack prompt, flagged when the
// response represents a successful threat.
type AttackOutput struct {
	Output   string `json:"output"`
	IsThreat bool   `json:"is_threat"`
}

// OutputList tolerates the two encodings attack reports use for outputs: a
// JSON array, or a string containing one. Anything else decodes to an empty
// list rather than failing the whole record, and non-object array entries
// are dropped.
type OutputList []AttackOutput

func (o *OutputList) UnmarshalJSON(data []byte) error {
	*o = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil
		}
		data = bytes.TrimSpace([]byte(inner))
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}

	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue
		}
		var out AttackOutput
		if err := json.Unmarshal(item, &out); err != nil {
			continue
		}
		*o = append(*o, out)
	}
	return nil
}

// JobMetadata carries the attack goals a scan job was configured with.
// Reports encode it either as an object or as a JSON string.
type JobMetadata struct {
	AttackGoals []string `json:"attack_goals"`
}

func (m *JobMetadata) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil
		}
		data = bytes.TrimSpace([]byte(inner))
	}

	type plain JobMetadata
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return nil
	}
	*m = JobMetadata(p)
	return nil
}

// GoalRow is one attack goal of a scan job, exploded to its own row.
type GoalRow struct {
	UUID      string  `json:"uuid"`
	Name      string  `json:"name"`
	ModelName string  `json:"model_name"`
	Goal      string  `json:"goal"`
	Score     float64 `json:"score"`
	Status    string  `json:"status"`
}

// ThreatRow is one attack prompt paired with one of its outputs, the unit
// the threat filter produces.
type ThreatRow struct {
	Prompt   string          `json:"prompt"`
	Category string          `json:"category_name"`
	Severity models.Severity `json:"severity"`
	Output   string          `json:"output"`
}

// ReportData is the summary block of a job report used to derive attack
// success. Fields are pointers: reports omit them or carry nulls.
type ReportData struct {
	TotalGoalsAchieved *int `json:"total_goals_achieved"`
	TotalThreats       *int `json:"total_threats"`
}

// Successful reports whether a job achieved any attack goal or produced any
// threat output.
func Successful(d ReportData) bool {
	if d.TotalGoalsAchieved != nil && *d.TotalGoalsAchieved > 0 {
		return true
	}
	if d.TotalThreats != nil && *d.TotalThreats > 0 {
		return true
	}
	return false
}
