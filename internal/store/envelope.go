package store

import (
	"encoding/json"
	"fmt"
)

// The API wraps responses inconsistently: some endpoints return
// {"data": [...]}, some {"companies": [...]}, some a doubly nested
// {"data": {"data": [...]}}, and a few a bare array or object. The unwrap
// helpers try each configured key in order, recurse one level through
// nested envelopes, and fall back to decoding the payload as-is.

// UnwrapList decodes a list response, trying keys in order before falling
// back to a bare array. A missing body yields an empty list.
func UnwrapList[T any](raw json.RawMessage, keys []string) ([]T, error) {
	if len(raw) == 0 {
		return []T{}, nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err == nil {
		for _, key := range keys {
			inner, ok := envelope[key]
			if !ok {
				continue
			}
			var items []T
			if err := json.Unmarshal(inner, &items); err == nil {
				return items, nil
			}
			// One level of nesting: {"data": {"data": [...]}}.
			if items, err := UnwrapList[T](inner, keys); err == nil {
				return items, nil
			}
		}
		return nil, fmt.Errorf("list envelope missing keys %v", keys)
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return items, nil
}

// UnwrapItem decodes a single-record response, trying keys in order before
// falling back to treating the payload as the record itself.
func UnwrapItem[T any](raw json.RawMessage, keys []string) (T, error) {
	var zero T
	if len(raw) == 0 {
		return zero, fmt.Errorf("empty record response")
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err == nil {
		for _, key := range keys {
			inner, ok := envelope[key]
			if !ok {
				continue
			}
			var rec T
			if err := json.Unmarshal(inner, &rec); err != nil {
				return zero, fmt.Errorf("decode record under %q: %w", key, err)
			}
			return rec, nil
		}
	}
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return zero, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}
