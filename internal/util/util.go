// Package util collects small generic helpers shared across recdb's
// packages, adapted from the teacher's own util package
// (util/util.go).
package util

import (
	"iter"
	"sort"
)

// TransformSlice applies converter to each element of in, returning a
// new slice of the converted results.
func TransformSlice[T any, R any](in []T, converter func(T) R) []R {
	out := make([]R, len(in))
	for i, v := range in {
		out[i] = converter(v)
	}
	return out
}

// CanonicalMapIter returns an iterator over m's entries in sorted key
// order, used wherever a map's natural iteration order would make
// output (a registry dump, a serialized field list) non-deterministic
// across runs.
func CanonicalMapIter[T any](m map[string]T) iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			if !yield(k, m[k]) {
				return
			}
		}
	}
}
