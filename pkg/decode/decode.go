// Package decode converts loosely typed JSON values, as produced by decoding
// into map[string]any, into typed structs.
package decode

import (
	"encoding/json"
	"fmt"
)

// FromMap converts data into T through a JSON round trip.
func FromMap[T any](data map[string]any) (T, error) {
	return FromValue[T](data)
}

// FromValue converts an arbitrary decoded JSON value into T. A nil value
// yields the zero T.
func FromValue[T any](v any) (T, error) {
	var result T
	if v == nil {
		return result, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return result, fmt.Errorf("decode: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("decode: %w", err)
	}
	return result, nil
}
