package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dstanchev/guardrail-eval/internal/api/middleware"
	"github.com/dstanchev/guardrail-eval/internal/classifier"
	"github.com/dstanchev/guardrail-eval/internal/guardrail"
	"github.com/dstanchev/guardrail-eval/internal/models"
	"github.com/dstanchev/guardrail-eval/internal/report"
	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog"
)

const maxPromptsPerRequest = 200

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// EvaluateRequest carries the threat prompts for one synchronous run.
type EvaluateRequest struct {
	Prompts []models.PromptRecord `json:"prompts"`
}

// EvaluateResponse is the aggregated report plus the full partitioned
// result set.
type EvaluateResponse struct {
	Report  report.Report    `json:"report"`
	Results models.ResultSet `json:"results"`
}

// ClassifyRequest carries a raw model response body to classify offline,
// without invoking the model.
type ClassifyRequest struct {
	Response json.RawMessage `json:"response"`
}

type Handler struct {
	evaluator  *guardrail.Evaluator
	classifier *classifier.Classifier
	aggregator *report.Aggregator
	logger     *zerolog.Logger
}

func NewHandler(evaluator *guardrail.Evaluator, cls *classifier.Classifier, aggregator *report.Aggregator, logger *zerolog.Logger) *Handler {
	return &Handler{
		evaluator:  evaluator,
		classifier: cls,
		aggregator: aggregator,
		logger:     logger,
	}
}

// POST /api/v1/evaluate
// Body: EvaluateRequest
// Returns: EvaluateResponse
//
// Prompts run strictly one at a time, so large batches belong in the CLI,
// not here. The request cap keeps a single call from holding the connection
// for minutes.
func (h *Handler) Evaluate(req *restful.Request, resp *restful.Response) {
	var evalRequest EvaluateRequest
	if err := req.ReadEntity(&evalRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if len(evalRequest.Prompts) == 0 {
		middleware.HandleError(resp, fmt.Errorf("at least one prompt is required"), http.StatusBadRequest)
		return
	}
	if len(evalRequest.Prompts) > maxPromptsPerRequest {
		middleware.HandleError(resp,
			fmt.Errorf("too many prompts: %d (max %d)", len(evalRequest.Prompts), maxPromptsPerRequest),
			http.StatusBadRequest)
		return
	}

	h.logger.Info().
		Int("prompts", len(evalRequest.Prompts)).
		Msg("Start guardrail evaluation")

	ctx := req.Request.Context()
	results := h.evaluator.Evaluate(ctx, evalRequest.Prompts)
	rep := h.aggregator.Aggregate(results)

	h.logger.Info().
		Int("blocked", rep.Summary.Blocked).
		Int("allowed", rep.Summary.Allowed).
		Int("errors", rep.Summary.Errored).
		Float64("block_rate", rep.Summary.BlockRate).
		Msg("Evaluation complete")

	resp.WriteHeaderAndEntity(http.StatusOK, EvaluateResponse{Report: rep, Results: results})
}

// POST /api/v1/classify
// Body: ClassifyRequest
// Returns: models.Outcome
func (h *Handler) Classify(req *restful.Request, resp *restful.Response) {
	var classifyRequest ClassifyRequest
	if err := req.ReadEntity(&classifyRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if len(classifyRequest.Response) == 0 {
		middleware.HandleError(resp, fmt.Errorf("response body is required"), http.StatusBadRequest)
		return
	}

	outcome := h.classifier.Classify(classifyRequest.Response)

	h.logger.Info().
		Str("kind", string(outcome.Kind)).
		Msg("Response classified")

	resp.WriteHeaderAndEntity(http.StatusOK, outcome)
}

// Health handler GET /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	healthResponse := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}

	resp.WriteHeaderAndEntity(http.StatusOK, healthResponse)
}
