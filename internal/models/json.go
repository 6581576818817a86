package models

import (
	"encoding/json"
	"slices"
)

var (
	nodeKeys = []string{"id", "type", "text", "x", "y", "width", "height"}
	edgeKeys = []string{"id", "fromNode", "toNode", "fromSide", "toSide", "label"}
)

// The field-only twins carry the struct tags without the JSON methods.
type (
	nodeFields NodeData
	edgeFields EdgeData
)

// MarshalJSON writes Extra flat beside the known fields. Known fields win
// over extension data with the same key.
func (n NodeData) MarshalJSON() ([]byte, error) {
	return flatten(nodeFields(n), n.Extra)
}

// UnmarshalJSON splits the object into known fields and Extra.
func (n *NodeData) UnmarshalJSON(data []byte) error {
	var f nodeFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	extra, err := unknown(data, nodeKeys)
	if err != nil {
		return err
	}
	*n = NodeData(f)
	n.Extra = extra
	return nil
}

// MarshalJSON writes Extra flat beside the known fields.
func (e EdgeData) MarshalJSON() ([]byte, error) {
	return flatten(edgeFields(e), e.Extra)
}

// UnmarshalJSON splits the object into known fields and Extra.
func (e *EdgeData) UnmarshalJSON(data []byte) error {
	var f edgeFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	extra, err := unknown(data, edgeKeys)
	if err != nil {
		return err
	}
	*e = EdgeData(f)
	e.Extra = extra
	return nil
}

func flatten(known any, extra map[string]any) ([]byte, error) {
	data, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return data, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(extra)+len(fields))
	for k, v := range extra {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return json.Marshal(out)
}

func unknown(data []byte, known []string) (map[string]any, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	extra := make(map[string]any)
	for k, raw := range fields {
		if slices.Contains(known, k) {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		extra[k] = v
	}
	return extra, nil
}
