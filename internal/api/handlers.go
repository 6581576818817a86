package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/tscanvas/internal/canvas"
	"github.com/starford/tscanvas/internal/canvasservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *canvasservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *canvasservice.Service) *Handler {
	return &Handler{svc: svc}
}

// viewPath extracts the canvas path after /views/. Encoded slashes
// (boards%2Fplan.canvas) are accepted.
func viewPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// ListCanvases handles GET /api/canvases.
//
//	@Summary	List canvas files in the vault
//	@Tags		canvases
//	@Produce	json
//	@Success	200	{object}	CanvasListResponse
//	@Security	BearerAuth
//	@Router		/canvases [get]
func (h *Handler) ListCanvases(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, "list canvases", err)
		return
	}
	if items == nil {
		items = []canvasservice.CanvasItem{}
	}
	writeJSON(w, http.StatusOK, CanvasListResponse{Canvases: items})
}

// CreateCanvas handles POST /api/canvases.
//
//	@Summary	Create an empty canvas file and open it
//	@Tags		canvases
//	@Accept		json
//	@Produce	json
//	@Param		body	body		PathRequest	true	"Canvas path"
//	@Success	201		{object}	canvasservice.Detail
//	@Failure	409		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/canvases [post]
func (h *Handler) CreateCanvas(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := h.svc.Create(r.Context(), req.Path)
	if err != nil {
		writeError(w, "create canvas", err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// OpenView handles POST /api/views.
//
//	@Summary	Open a canvas file in a view
//	@Tags		views
//	@Accept		json
//	@Produce	json
//	@Param		body	body		PathRequest	true	"Canvas path"
//	@Success	200		{object}	canvasservice.Detail
//	@Failure	404		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/views [post]
func (h *Handler) OpenView(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := h.svc.Open(r.Context(), req.Path)
	if err != nil {
		writeError(w, "open view", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// GetView handles GET /api/views/*. With ?format=html the rendered view is
// returned instead of its content.
//
//	@Summary	Get an open canvas
//	@Tags		views
//	@Produce	json,html
//	@Param		path	path		string	true	"Canvas path"
//	@Param		format	query		string	false	"Response format"	Enums(json, html)
//	@Success	200		{object}	canvasservice.Detail
//	@Failure	404		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/views/{path} [get]
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	path := viewPath(r)
	if r.URL.Query().Get("format") == "html" {
		out, err := h.svc.Render(r.Context(), path)
		if err != nil {
			writeError(w, "render view", err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(out))
		return
	}
	d, err := h.svc.Get(r.Context(), path)
	if err != nil {
		writeError(w, "get view", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// CloseView handles DELETE /api/views/*.
//
//	@Summary	Close an open canvas
//	@Tags		views
//	@Param		path	path	string	true	"Canvas path"
//	@Success	204		"View closed"
//	@Failure	404		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/views/{path} [delete]
func (h *Handler) CloseView(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Close(r.Context(), viewPath(r)); err != nil {
		writeError(w, "close view", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateNode handles POST /api/views/nodes.
//
//	@Summary	Add a text node; it is stamped with the current time
//	@Tags		views
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreateNodeRequest	true	"Node"
//	@Success	201		{object}	models.NodeData
//	@Security	BearerAuth
//	@Router		/views/nodes [post]
func (h *Handler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if !decode(w, r, &req) {
		return
	}
	nd, err := h.svc.CreateNode(r.Context(), req.Path, canvas.NodeOptions{
		Text: req.Text, X: req.X, Y: req.Y, Width: req.Width, Height: req.Height,
	})
	if err != nil {
		writeError(w, "create node", err)
		return
	}
	writeJSON(w, http.StatusCreated, nd)
}

// RemoveNode handles DELETE /api/views/nodes?path=&id=.
func (h *Handler) RemoveNode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("path") == "" || q.Get("id") == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and id are required"))
		return
	}
	if err := h.svc.RemoveNode(r.Context(), q.Get("path"), q.Get("id")); err != nil {
		writeError(w, "remove node", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateEdge handles POST /api/views/edges.
//
//	@Summary	Connect two nodes; the edge is stamped with the current time
//	@Tags		views
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreateEdgeRequest	true	"Edge"
//	@Success	201		{object}	models.EdgeData
//	@Security	BearerAuth
//	@Router		/views/edges [post]
func (h *Handler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req CreateEdgeRequest
	if !decode(w, r, &req) {
		return
	}
	ed, err := h.svc.CreateEdge(r.Context(), req.Path, req.From, req.To)
	if err != nil {
		writeError(w, "create edge", err)
		return
	}
	writeJSON(w, http.StatusCreated, ed)
}

// Menu handles GET /api/views/menu?path=&kind=&id=.
func (h *Handler) Menu(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("path") == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	items, err := h.svc.Menu(r.Context(), q.Get("path"), canvasservice.Target{Kind: q.Get("kind"), ID: q.Get("id")})
	if err != nil {
		writeError(w, "menu", err)
		return
	}
	if items == nil {
		items = []canvasservice.MenuItem{}
	}
	writeJSON(w, http.StatusOK, MenuResponse{Items: items})
}

// ClickMenu handles POST /api/views/menu.
//
//	@Summary	Run a context or quick-settings menu item
//	@Tags		views
//	@Accept		json
//	@Param		body	body	MenuClickRequest	true	"Menu item"
//	@Success	204		"Item ran"
//	@Failure	404		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/views/menu [post]
func (h *Handler) ClickMenu(w http.ResponseWriter, r *http.Request) {
	var req MenuClickRequest
	if !decode(w, r, &req) {
		return
	}
	err := h.svc.Click(r.Context(), req.Path, canvasservice.Target{Kind: req.Kind, ID: req.ID}, req.Title)
	if err != nil {
		writeError(w, "click menu", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleTimestamps handles POST /api/views/toggle.
func (h *Handler) ToggleTimestamps(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if !decode(w, r, &req) {
		return
	}
	hidden, err := h.svc.ToggleTimestamps(r.Context(), req.Path)
	if err != nil {
		writeError(w, "toggle timestamps", err)
		return
	}
	writeJSON(w, http.StatusOK, ToggleResponse{Hidden: hidden})
}

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"fields": h.svc.Settings()})
}

// PutSettings handles PUT /api/settings.
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.SetSetting(req.Key, req.Value); err != nil {
		writeError(w, "set setting", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": h.svc.Settings()})
}
