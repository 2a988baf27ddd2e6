// Package collection holds the generic slice helpers used across the app.
//
//	meat := collection.Filter(models.Catalog(), func(p models.Product) bool { return p.Category == models.CategoryMeat })
//	owners := collection.Unique(collection.Map(entries, func(e models.IndexEntry) string { return e.UserID }))
package collection

// Map transforms each element of s using fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter returns the elements of s for which fn returns true. The result is
// never nil so it encodes as [] rather than null.
func Filter[T any](s []T, fn func(T) bool) []T {
	out := []T{}
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// First returns the first element matching fn, or (zero, false).
func First[T any](s []T, fn func(T) bool) (T, bool) {
	for _, v := range s {
		if fn(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Unique drops repeated values, keeping first occurrences in order.
func Unique[T comparable](s []T) []T {
	seen := make(map[T]struct{}, len(s))
	out := make([]T, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// GroupSet indexes s as key -> set of members.
func GroupSet[T any, K, M comparable](s []T, key func(T) K, member func(T) M) map[K]map[M]bool {
	out := map[K]map[M]bool{}
	for _, v := range s {
		k := key(v)
		if out[k] == nil {
			out[k] = map[M]bool{}
		}
		out[k][member(v)] = true
	}
	return out
}
