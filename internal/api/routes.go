// Package api defines the Huma API routes and handlers.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-choropleth/internal/choropleth"
	"github.com/joeblew999/plat-choropleth/internal/service"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Dataset  *service.DatasetService
	Sessions *service.SessionService
}

// Types

type IDInput struct {
	ID string `path:"id" doc:"Feature ID" example:"06"`
}

type FeatureOutput struct {
	Body service.FeatureSummary
}

type FeaturesOutput struct {
	Body Page[service.FeatureSummary]
}

type ScaleInput struct {
	Density float64 `query:"density" doc:"Population density to classify" example:"241.7"`
}

type ScaleBody struct {
	Density float64          `json:"density" doc:"Density that was classified"`
	Color   choropleth.Color `json:"color" doc:"Fill color (CSS)" example:"#E31A1C"`
	Bucket  float64          `json:"bucket" doc:"Lower bound of the matched bucket" example:"200"`
}

type LegendBody struct {
	Entries []choropleth.LegendEntry `json:"entries" doc:"Legend entries, lowest range first"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterRoutes registers every Register* method of the API handler.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterFeatures registers feature lookup routes.
func (h *APIHandler) RegisterFeatures(api huma.API) {
	huma.Get(api, "/api/v1/features", h.GetFeatures, huma.OperationTags("features"))
	huma.Get(api, "/api/v1/features/{id}", h.GetFeature, huma.OperationTags("features"))
}

// RegisterScale registers color scale and legend routes.
func (h *APIHandler) RegisterScale(api huma.API) {
	huma.Get(api, "/api/v1/scale", h.GetScale, huma.OperationTags("scale"))
	huma.Get(api, "/api/v1/legend", h.GetLegend, huma.OperationTags("scale"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetFeatures(ctx context.Context, input *PageInput) (*FeaturesOutput, error) {
	var all []service.FeatureSummary
	if h.svc != nil && h.svc.Dataset != nil {
		all = h.svc.Dataset.Summaries()
	}
	return &FeaturesOutput{Body: Paginate(all, *input)}, nil
}

func (h *APIHandler) GetFeature(ctx context.Context, input *IDInput) (*FeatureOutput, error) {
	if h.svc == nil || h.svc.Dataset == nil {
		return nil, huma.Error404NotFound("service not available")
	}
	f, ok := h.svc.Dataset.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("feature not found")
	}
	return &FeatureOutput{Body: service.Summarize(f)}, nil
}

func (h *APIHandler) GetScale(ctx context.Context, input *ScaleInput) (*struct{ Body ScaleBody }, error) {
	b := choropleth.BucketFor(input.Density)
	return &struct{ Body ScaleBody }{Body: ScaleBody{
		Density: input.Density, Color: b.Color, Bucket: b.Threshold,
	}}, nil
}

func (h *APIHandler) GetLegend(ctx context.Context, input *struct{}) (*struct{ Body LegendBody }, error) {
	return &struct{ Body LegendBody }{Body: LegendBody{Entries: choropleth.LegendEntries()}}, nil
}
