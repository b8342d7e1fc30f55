package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

// InfoHandler serves the service summary.
type InfoHandler struct {
	svc  *Services
	dbOK bool
}

// NewInfoHandler creates an info handler. dbOK reports whether the SQL routes work.
func NewInfoHandler(svc *Services, dbOK bool) *InfoHandler {
	return &InfoHandler{svc: svc, dbOK: dbOK}
}

// RegisterRoutes registers the info route with Huma.
func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

// InfoBody describes the running service.
type InfoBody struct {
	Name     string   `json:"name" doc:"Service name"`
	Version  string   `json:"version" doc:"Service version"`
	Dataset  string   `json:"dataset" doc:"Where the features were loaded from"`
	Features int      `json:"features" doc:"Number of loaded features"`
	Sessions int      `json:"sessions" doc:"Open map sessions"`
	DB       bool     `json:"db" doc:"Whether the SQL database is available"`
	Surfaces []string `json:"surfaces" doc:"Available surfaces"`
}

// GetInfo reports the dataset, session count and database availability.
func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	body := InfoBody{
		Name:     "plat-choropleth",
		Version:  "0.1.0",
		DB:       h.dbOK,
		Surfaces: []string{"map", "features", "scale", "legend", "sql"},
	}
	if h.svc != nil && h.svc.Dataset != nil {
		body.Dataset = h.svc.Dataset.Source()
		body.Features = len(h.svc.Dataset.Features())
	}
	if h.svc != nil && h.svc.Sessions != nil {
		body.Sessions = h.svc.Sessions.Len()
	}
	return &struct{ Body InfoBody }{Body: body}, nil
}
