// Package query parses list ordering parameters and applies them to
// in-memory collections.
package query

import (
	"cmp"
	"slices"
	"strings"
)

// SortField is one ordering key. A "-" prefix in the query string selects
// descending order.
type SortField struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending"`
}

// ParseSortFields parses a comma-separated sort parameter such as
// "name,-opened". Blank entries are skipped.
func ParseSortFields(s string) []SortField {
	if s == "" {
		return nil
	}

	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		part = strings.TrimPrefix(part, "-")
		if part == "" {
			continue
		}
		fields = append(fields, SortField{Field: part, Descending: desc})
	}
	return fields
}

// Comparators maps sortable field names to comparison functions.
type Comparators[T any] map[string]func(a, b T) int

// Sort orders items in place by fields, falling back to defaultField when
// no field is known. Unknown fields are ignored.
func Sort[T any](items []T, fields []SortField, by Comparators[T], defaultField string) {
	keys := make([]SortField, 0, len(fields))
	for _, f := range fields {
		if _, ok := by[f.Field]; ok {
			keys = append(keys, f)
		}
	}
	if len(keys) == 0 {
		if _, ok := by[defaultField]; !ok {
			return
		}
		keys = append(keys, SortField{Field: defaultField})
	}

	slices.SortStableFunc(items, func(a, b T) int {
		for _, k := range keys {
			c := by[k.Field](a, b)
			if k.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}

// Compare adapts a key function into a comparator.
func Compare[T any, K cmp.Ordered](key func(T) K) func(a, b T) int {
	return func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	}
}
