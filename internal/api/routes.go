package api

import (
	"github.com/dstanchev/guardrail-eval/internal/api/middleware"
	"github.com/dstanchev/guardrail-eval/internal/models"
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	// Health endpoint
	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/evaluate").
			To(handler.Evaluate).
			Doc("Run threat prompts through the guarded model and report block/allow outcomes").
			Metadata(restfulspec.KeyOpenAPITags, []string{"evaluate"}).
			Reads(EvaluateRequest{}).
			Writes(EvaluateResponse{}).
			Returns(200, "OK", EvaluateResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/classify").
			To(handler.Classify).
			Doc("Classify a raw model response as blocked or allowed without invoking the model").
			Metadata(restfulspec.KeyOpenAPITags, []string{"classify"}).
			Reads(ClassifyRequest{}).
			Writes(models.Outcome{}).
			Returns(200, "OK", models.Outcome{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	container.Add(ws)
}
