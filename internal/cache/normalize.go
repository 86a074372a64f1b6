package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UnwrapList extracts the item array from an upstream list payload. The API
// is inconsistent about envelopes: a collection may arrive as a bare array,
// or nested under "data", "data.content", or "content". All four shapes
// normalize to the same flat array.
func UnwrapList(raw []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []byte("[]"), nil
	}
	if trimmed[0] == '[' {
		return trimmed, nil
	}

	var envelope struct {
		Data    json.RawMessage `json:"data"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("unrecognized list payload: %w", err)
	}

	if inner := bytes.TrimSpace(envelope.Data); len(inner) > 0 && !bytes.Equal(inner, []byte("null")) {
		if inner[0] == '[' {
			return inner, nil
		}
		// data may itself be a paginated wrapper holding content
		var nested struct {
			Content json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal(inner, &nested); err == nil {
			if list := bytes.TrimSpace(nested.Content); len(list) > 0 && list[0] == '[' {
				return list, nil
			}
		}
	}

	if list := bytes.TrimSpace(envelope.Content); len(list) > 0 && list[0] == '[' {
		return list, nil
	}

	return nil, fmt.Errorf("unrecognized list payload shape")
}

// DecodeItems normalizes a raw list payload into typed items.
func DecodeItems[T any](raw []byte) ([]T, error) {
	list, err := UnwrapList(raw)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(list, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return items, nil
}
