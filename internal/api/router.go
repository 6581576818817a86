package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/tscanvas/internal/canvasservice"
)

// NewRouter mounts the API routes. When authEnabled is set every route,
// the event stream included, requires the bearer token. sseHandler may be nil.
func NewRouter(svc *canvasservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Canvas files.
	r.Get("/canvases", h.ListCanvases)
	r.Post("/canvases", h.CreateCanvas)

	// Open views.
	r.Post("/views", h.OpenView)
	r.Get("/views/*", h.GetView)
	r.Delete("/views/*", h.CloseView)
	r.Post("/views/nodes", h.CreateNode)
	r.Delete("/views/nodes", h.RemoveNode)
	r.Post("/views/edges", h.CreateEdge)
	r.Get("/views/menu", h.Menu)
	r.Post("/views/menu", h.ClickMenu)
	r.Post("/views/toggle", h.ToggleTimestamps)

	// Plugin settings.
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.PutSettings)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}
	return r
}
