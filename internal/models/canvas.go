// Package models defines the on-disk types of the canvas vault.
package models

import "time"

// Canvas is the content of a .canvas file (JSON Canvas).
type Canvas struct {
	Nodes []NodeData `json:"nodes"`
	Edges []EdgeData `json:"edges"`
}

// NodeData is one node of a canvas file.
//
// Extra holds every key the host does not interpret itself; it is the node's
// extension-data slot and round-trips unchanged.
type NodeData struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Text   string         `json:"text,omitempty"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	Extra  map[string]any `json:"-"`
}

// EdgeData is one edge of a canvas file.
type EdgeData struct {
	ID       string         `json:"id"`
	FromNode string         `json:"fromNode"`
	ToNode   string         `json:"toNode"`
	FromSide string         `json:"fromSide,omitempty"`
	ToSide   string         `json:"toSide,omitempty"`
	Label    string         `json:"label,omitempty"`
	Extra    map[string]any `json:"-"`
}

// CanvasMetadata is a lightweight representation returned by list operations.
type CanvasMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
