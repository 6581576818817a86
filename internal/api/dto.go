package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/tscanvas/internal/canvasservice"
	"github.com/starford/tscanvas/internal/host"
)

// PathRequest names a canvas file.
type PathRequest struct {
	Path string `json:"path" example:"boards/plan.canvas"`
}

// Validate implements validation.Validatable.
func (r PathRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path, validation.Required),
	)
}

// CreateNodeRequest adds a text node to an open canvas.
type CreateNodeRequest struct {
	Path   string  `json:"path"`
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Validate implements validation.Validatable.
func (r CreateNodeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path, validation.Required),
		validation.Field(&r.Width, validation.Min(0.0)),
		validation.Field(&r.Height, validation.Min(0.0)),
	)
}

// CreateEdgeRequest connects two nodes of an open canvas.
type CreateEdgeRequest struct {
	Path string `json:"path"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Validate implements validation.Validatable.
func (r CreateEdgeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path, validation.Required),
		validation.Field(&r.From, validation.Required),
		validation.Field(&r.To, validation.Required),
	)
}

// MenuClickRequest runs a menu item.
type MenuClickRequest struct {
	Path  string `json:"path"`
	Kind  string `json:"kind" example:"node"`
	ID    string `json:"id,omitempty"`
	Title string `json:"title" example:"Update timestamp"`
}

// Validate implements validation.Validatable.
func (r MenuClickRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path, validation.Required),
		validation.Field(&r.Kind, validation.Required, validation.In(host.KindCanvas, host.KindNode, host.KindEdge)),
		validation.Field(&r.ID, validation.When(r.Kind != host.KindCanvas, validation.Required)),
		validation.Field(&r.Title, validation.Required),
	)
}

// SettingRequest edits one settings panel field.
type SettingRequest struct {
	Key   string `json:"key" example:"dateFormat"`
	Value string `json:"value" example:"YYYY-MM-DD HH:mm"`
}

// Validate implements validation.Validatable. The value itself is free text.
func (r SettingRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Key, validation.Required),
	)
}

// CanvasListResponse wraps the vault listing.
type CanvasListResponse struct {
	Canvases []canvasservice.CanvasItem `json:"canvases"`
}

// MenuResponse wraps menu items.
type MenuResponse struct {
	Items []canvasservice.MenuItem `json:"items"`
}

// ToggleResponse reports the overlay visibility after a toggle.
type ToggleResponse struct {
	Hidden bool `json:"hidden"`
}
