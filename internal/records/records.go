// Package records implements the list helpers behind every table view:
// substring search, stable single-key sort, status colours and item labels.
package records

import (
	"cmp"
	"slices"
	"strings"
)

// Field extracts a searchable value from an item. ok=false means the value is
// absent and never matches.
type Field[T any] func(item T) (value string, ok bool)

// SortKey extracts an ordered value from an item. ok=false sorts last.
type SortKey[T any, V cmp.Ordered] func(item T) (value V, ok bool)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection defaults to ascending for anything other than "desc".
func ParseDirection(raw string) Direction {
	if strings.EqualFold(strings.TrimSpace(raw), string(Desc)) {
		return Desc
	}
	return Asc
}

// Search keeps items where any field contains query, case-insensitively.
// A blank query returns items unchanged.
func Search[T any](items []T, query string, fields ...Field[T]) []T {
	if strings.TrimSpace(query) == "" {
		return items
	}

	needle := strings.ToLower(query)
	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, field := range fields {
			value, ok := field(item)
			if ok && value != "" && strings.Contains(strings.ToLower(value), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// Sort returns a stably sorted copy of items. Missing keys go last in both directions.
func Sort[T any, V cmp.Ordered](items []T, key SortKey[T, V], dir Direction) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		av, aok := key(a)
		bv, bok := key(b)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		c := cmp.Compare(av, bv)
		if dir == Desc {
			return -c
		}
		return c
	})
	return out
}

// Filter keeps items matching keep.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Count returns how many items match.
func Count[T any](items []T, match func(T) bool) int {
	n := 0
	for _, item := range items {
		if match(item) {
			n++
		}
	}
	return n
}

// Text is a Field over a plain string.
func Text[T any](get func(T) string) Field[T] {
	return func(item T) (string, bool) {
		v := get(item)
		return v, v != ""
	}
}

// OptionalText is a Field over a nullable string.
func OptionalText[T any](get func(T) *string) Field[T] {
	return func(item T) (string, bool) {
		v := get(item)
		if v == nil {
			return "", false
		}
		return *v, true
	}
}

// ItemDescription joins brand, model and the optional capacity and colour.
func ItemDescription(brand, model string, capacity, color *string) string {
	parts := []string{brand, model}
	if capacity != nil && *capacity != "" {
		parts = append(parts, *capacity)
	}
	if color != nil && *color != "" {
		parts = append(parts, *color)
	}
	return strings.Join(parts, " ")
}
