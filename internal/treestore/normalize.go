package treestore

import (
	"encoding/json"
	"sort"
)

// The backend may hand a collection-valued subtree back as either an ordered
// list or a map keyed by backend-assigned push ids. SliceOf and Decode are
// the single normalization boundary: every repository read path goes through
// them instead of duck-typing at the call site.

// SliceOf normalizes a list-or-map subtree into an ordered slice of T.
// Map keys are ordered lexically (push ids are time-prefixed, so lexical
// order is insertion order). Absent values yield nil.
func SliceOf[T any](v any) []T {
	switch vv := v.(type) {
	case nil:
		return nil
	case []T:
		return vv
	case map[string]any:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ordered := make([]any, 0, len(keys))
		for _, k := range keys {
			ordered = append(ordered, vv[k])
		}
		out, err := decodeVia[[]T](ordered)
		if err != nil {
			return nil
		}
		return out
	default:
		out, err := decodeVia[[]T](v)
		if err != nil {
			return nil
		}
		return out
	}
}

// Decode maps any JSON shape onto a typed value.
func Decode[T any](v any) (T, error) {
	return decodeVia[T](v)
}

func decodeVia[T any](v any) (T, error) {
	var out T
	b, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, err
	}
	return out, nil
}
