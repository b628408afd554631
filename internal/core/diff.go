package core

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// DiffResult holds the minimal change set between two record snapshots.
// Before and After are sparse maps keyed by dotted field path and contain
// only the fields that actually changed.
type DiffResult struct {
	ChangedPaths []string
	Before       map[string]any
	After        map[string]any
}

// Diff recursively compares two snapshots and reports the changed fields.
// Nested map values are descended into with dotted path notation
// ("address.city"); arrays and everything else compare as whole values.
// Nil and missing are both treated as the empty value, and scalar values are
// compared loosely so that 15, 15.0 and "15" count as equal. ignoredKeys
// lists top-level or dotted paths to skip (volatile fields like timestamps).
func Diff(before, after map[string]any, ignoredKeys []string) DiffResult {
	ignored := make(map[string]bool, len(ignoredKeys))
	for _, k := range ignoredKeys {
		ignored[k] = true
	}

	res := DiffResult{
		Before: map[string]any{},
		After:  map[string]any{},
	}
	diffInto(&res, "", before, after, ignored)
	sort.Strings(res.ChangedPaths)
	return res
}

func diffInto(res *DiffResult, prefix string, before, after map[string]any, ignored map[string]bool) {
	for key := range union(before, after) {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if ignored[key] || ignored[path] {
			continue
		}

		b, a := before[key], after[key]
		bm, bIsMap := b.(map[string]any)
		am, aIsMap := a.(map[string]any)
		if bIsMap || aIsMap {
			if bm == nil {
				bm = map[string]any{}
			}
			if am == nil {
				am = map[string]any{}
			}
			diffInto(res, path, bm, am, ignored)
			continue
		}

		if looselyEqual(b, a) {
			continue
		}
		res.ChangedPaths = append(res.ChangedPaths, path)
		if b != nil {
			res.Before[path] = b
		}
		if a != nil {
			res.After[path] = a
		}
	}
}

func union(a, b map[string]any) map[string]struct{} {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	return keys
}

// looselyEqual compares two scalar-ish values. Nil only equals nil; scalars
// of different underlying types are compared by their canonical string form.
func looselyEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.DeepEqual(a, b) {
		return true
	}
	if isScalar(a) && isScalar(b) {
		return canonical(a) == canonical(b)
	}
	return false
}

func isScalar(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	if _, ok := v.(fmt.Stringer); ok {
		return true
	}
	return false
}

func canonical(v any) string {
	s := fmt.Sprintf("%v", v)
	// Strip an insignificant fractional tail so 15.0 equals 15.
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
