package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/tscanvas/internal/models"
)

const sample = `{
	"nodes": [
		{"id": "a1", "type": "text", "text": "hello", "x": 10, "y": 20, "width": 250, "height": 60,
		 "timestamp": "2024-03-01 10:05", "color": "4"}
	],
	"edges": [
		{"id": "e1", "fromNode": "a1", "toNode": "a1", "label": "self", "timestamp": ""}
	]
}`

func TestParse_KeepsExtensionData(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, c.Nodes, 1)
	require.Len(t, c.Edges, 1)

	n := c.Nodes[0]
	assert.Equal(t, "a1", n.ID)
	assert.Equal(t, "hello", n.Text)
	assert.Equal(t, 10.0, n.X)
	assert.Equal(t, 250.0, n.Width)
	assert.Equal(t, map[string]any{"timestamp": "2024-03-01 10:05", "color": "4"}, n.Extra)

	e := c.Edges[0]
	assert.Equal(t, "a1", e.FromNode)
	assert.Equal(t, "self", e.Label)
	assert.Equal(t, map[string]any{"timestamp": ""}, e.Extra, "empty stamp is kept")
}

func TestParse_Empty(t *testing.T) {
	c, err := Parse([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, c.Nodes)
	assert.Empty(t, c.Edges)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("{nodes"))
	assert.Error(t, err)
}

func TestEncode_RoundTrip(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)
	out, err := Encode(c)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"timestamp": "2024-03-01 10:05"`)

	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01 10:05", again.Nodes[0].Extra["timestamp"])
	assert.Equal(t, "self", again.Edges[0].Label)
}

func TestEncode_KnownFieldsWin(t *testing.T) {
	c := &models.Canvas{Nodes: []models.NodeData{{
		ID: "n", Type: "text", Text: "real",
		Extra: map[string]any{"text": "shadow", "timestamp": "t"},
	}}}
	out, err := Encode(c)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "shadow", "extension data overrode known field")
}
