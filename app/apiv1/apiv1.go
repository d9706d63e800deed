// Package apiv1 is the sample JSON API mounted at /api.
package apiv1

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/mwm"
	"github.com/dmitrymomot/mwm/middlewares"
	"github.com/dmitrymomot/mwm/pkg/api"
)

// Mount points.
const (
	Prefix       = "/api"
	DocumentPath = "/openapi.json"
)

// Handler serves the API and its OpenAPI document.
type Handler struct {
	api  *api.API
	cors []middlewares.CORSOption
}

// New builds the API with every endpoint registered. cors configures the
// CORS middleware in front of /api.
func New(log *slog.Logger, cors ...middlewares.CORSOption) *Handler {
	a := api.New(
		api.WithInfo("mwm API", "1.0.0", "Sample REST API"),
		api.WithServer(Prefix),
		api.WithLogger(log),
	)
	registerSystem(a)
	registerUsers(a)
	registerPosts(a)
	return &Handler{api: a, cors: cors}
}

// API exposes the typed router, mostly for tests.
func (h *Handler) API() *api.API { return h.api }

func (h *Handler) Routes(r mwm.Router) {
	r.Group(func(r mwm.Router) {
		r.Use(middlewares.CORS(append([]middlewares.CORSOption{
			middlewares.WithExposeHeaders(api.RequestIDHeader),
		}, h.cors...)...))
		r.Mount(Prefix, h.api)
	})
	r.GET(DocumentPath, func(c mwm.Context) error {
		return c.JSON(http.StatusOK, h.api.Document())
	})
}
