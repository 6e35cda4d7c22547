// Package walker flattens one parsed JSON document into (path, type) pairs.
//
// Paths join object keys with '.' and mark array traversal with a '[]'
// suffix, e.g. "items[].name". Array elements all share the one '[]' path, so
// array structure collapses instead of exploding per index. The top-level
// value's path is "$".
package walker

import (
	"sort"

	"github.com/jsonprof/jsonprof/internal/models"
)

// DefaultArraySample bounds how many leading array elements are walked. The
// cap is configurable; elements past it contribute nothing.
const DefaultArraySample = 5

// TypeOf derives the type tag for a single value. The boolean case is
// ordered before the numeric one: a bool must never classify as a number.
// Integers and floats both tag as "number".
func TypeOf(v models.Value) models.TypeTag {
	switch v.(type) {
	case nil:
		return models.TypeNull
	case bool:
		return models.TypeBoolean
	case float64, float32, int, int32, int64:
		return models.TypeNumber
	case string:
		return models.TypeString
	case models.Array, []any:
		return models.TypeArray
	case models.Document, map[string]any:
		return models.TypeObject
	default:
		// Unreachable for values produced by the parser.
		return models.TypeNull
	}
}

// Walk returns the depth-first (path, type) pairs for every reachable value
// in v, parent before children, using the default array sample cap.
func Walk(v models.Value) []models.PathType {
	return WalkFrom(v, "", DefaultArraySample)
}

// WalkFrom walks v starting at the given base path ("" for a document root,
// reported as "$") sampling at most sample elements per array. A negative
// sample walks every element.
func WalkFrom(v models.Value, base string, sample int) []models.PathType {
	var pairs []models.PathType
	walk(v, base, sample, &pairs)
	return pairs
}

func walk(v models.Value, base string, sample int, out *[]models.PathType) {
	path := base
	if path == "" {
		path = models.RootPath
	}
	*out = append(*out, models.PathType{Path: path, Type: TypeOf(v)})

	switch val := v.(type) {
	case models.Document:
		for _, m := range val {
			walk(m.Value, childKey(base, m.Key), sample, out)
		}
	case map[string]any:
		// Hand-built values in tests; sorted keys keep the walk deterministic.
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walk(val[k], childKey(base, k), sample, out)
		}
	case models.Array:
		walkElements(val, base, sample, out)
	case []any:
		walkElements(val, base, sample, out)
	}
}

// walkElements walks the leading elements of an array under the shared
// base+"[]" path. An empty array contributes no child entries.
func walkElements(elems []models.Value, base string, sample int, out *[]models.PathType) {
	limit := len(elems)
	if sample >= 0 && sample < limit {
		limit = sample
	}
	child := base + "[]"
	for _, el := range elems[:limit] {
		walk(el, child, sample, out)
	}
}

func childKey(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

// PathTypes collapses the walk of v into the per-file set form the merger
// consumes: each path mapped to every type observed there.
func PathTypes(v models.Value, sample int) map[string]models.TypeSet {
	m := make(map[string]models.TypeSet)
	for _, pt := range WalkFrom(v, "", sample) {
		set, ok := m[pt.Path]
		if !ok {
			set = make(models.TypeSet)
			m[pt.Path] = set
		}
		set.Add(pt.Type)
	}
	return m
}
