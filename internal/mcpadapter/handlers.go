package mcpadapter

import (
	"context"

	"github.com/dstanchev/guardrail-eval/internal/classifier"
	"github.com/dstanchev/guardrail-eval/internal/guardrail"
	"github.com/dstanchev/guardrail-eval/internal/models"
	"github.com/dstanchev/guardrail-eval/internal/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// EvaluatePromptInput is the MCP tool input schema for running one threat
// prompt through the guarded model.
type EvaluatePromptInput struct {
	Prompt   string `json:"prompt" jsonschema:"adversarial prompt to send through the guarded model"`
	Category string `json:"category,omitempty" jsonschema:"attack category label"`
	Severity string `json:"severity,omitempty" jsonschema:"severity: LOW, MEDIUM, HIGH or CRITICAL"`
}

// EvaluatePromptOutput is the per-prompt result plus the run summary.
type EvaluatePromptOutput struct {
	Outcome models.ResultSet `json:"outcome"`
	Summary report.Summary   `json:"summary"`
}

// ClassifyInput is the MCP tool input schema for offline classification of a
// raw model response.
type ClassifyInput struct {
	Response string `json:"response" jsonschema:"raw model response body as a JSON string"`
}

// NewEvaluatePromptHandler returns a tool handler that runs one prompt
// through the evaluator. Pass the returned function to mcp.AddTool.
func NewEvaluatePromptHandler(evaluator *guardrail.Evaluator, aggregator *report.Aggregator) func(context.Context, *mcp.CallToolRequest, EvaluatePromptInput) (*mcp.CallToolResult, EvaluatePromptOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input EvaluatePromptInput) (*mcp.CallToolResult, EvaluatePromptOutput, error) {
		return EvaluatePrompt(ctx, evaluator, aggregator, req, input)
	}
}

// EvaluatePrompt sends the prompt through the guarded invocation and returns
// the partitioned outcome with its summary.
func EvaluatePrompt(
	ctx context.Context,
	evaluator *guardrail.Evaluator,
	aggregator *report.Aggregator,
	req *mcp.CallToolRequest,
	input EvaluatePromptInput,
) (*mcp.CallToolResult, EvaluatePromptOutput, error) {
	severity := models.SeverityMedium
	if input.Severity != "" {
		if parsed, err := models.ParseSeverity(input.Severity); err == nil {
			severity = parsed
		}
	}

	record := models.PromptRecord{
		Prompt:   input.Prompt,
		Category: input.Category,
		Severity: severity,
	}

	results := evaluator.Evaluate(ctx, []models.PromptRecord{record})
	rep := aggregator.Aggregate(results)

	return nil, EvaluatePromptOutput{Outcome: results, Summary: rep.Summary}, nil
}

// NewClassifyHandler returns a tool handler that classifies a raw response
// body without invoking the model. Pass the returned function to mcp.AddTool.
func NewClassifyHandler(cls *classifier.Classifier) func(context.Context, *mcp.CallToolRequest, ClassifyInput) (*mcp.CallToolResult, models.Outcome, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ClassifyInput) (*mcp.CallToolResult, models.Outcome, error) {
		return ClassifyResponse(ctx, cls, req, input)
	}
}

// ClassifyResponse classifies the raw response body as blocked or allowed.
func ClassifyResponse(
	ctx context.Context,
	cls *classifier.Classifier,
	req *mcp.CallToolRequest,
	input ClassifyInput,
) (*mcp.CallToolResult, models.Outcome, error) {
	outcome := cls.Classify([]byte(input.Response))
	return nil, outcome, nil
}
