// Package parser decodes and encodes .canvas files, keeping unknown keys of
// nodes and edges as extension data.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/starford/tscanvas/internal/models"
)

// Parse decodes a .canvas file. Empty input yields an empty canvas.
func Parse(data []byte) (*models.Canvas, error) {
	out := &models.Canvas{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, fmt.Errorf("parser: decode canvas: %w", err)
		}
	}
	normalize(out)
	return out, nil
}

// Encode renders c as a tab-indented .canvas document.
func Encode(c *models.Canvas) ([]byte, error) {
	doc := *c
	normalize(&doc)
	out, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("parser: encode canvas: %w", err)
	}
	return out, nil
}

// normalize replaces nil lists so an empty canvas encodes as [] not null.
func normalize(c *models.Canvas) {
	if c.Nodes == nil {
		c.Nodes = []models.NodeData{}
	}
	if c.Edges == nil {
		c.Edges = []models.EdgeData{}
	}
}
