// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pending selects the work that has not been done yet: the anti-join
// between everything known and everything already persisted. Callers pass
// freshly queried completed sets so that results committed earlier in the
// same run are taken into account.
package pending

// Select returns every element of universe that is absent from completed.
// The result keeps universe order; repeated elements of universe appear once,
// at their first position. The result is never nil.
func Select[T comparable](universe, completed []T) []T {
	done := make(map[T]struct{}, len(completed))
	for _, c := range completed {
		done[c] = struct{}{}
	}

	out := make([]T, 0, len(universe))
	for _, u := range universe {
		if _, ok := done[u]; ok {
			continue
		}
		// Mark as seen so duplicates in universe collapse.
		done[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// SelectBy is Select for records identified by a key. It returns the records
// of universe whose key is not in completed, first occurrence per key.
func SelectBy[T any, K comparable](universe []T, completed []K, key func(T) K) []T {
	done := make(map[K]struct{}, len(completed))
	for _, c := range completed {
		done[c] = struct{}{}
	}

	var out []T
	for _, u := range universe {
		k := key(u)
		if _, ok := done[k]; ok {
			continue
		}
		done[k] = struct{}{}
		out = append(out, u)
	}
	return out
}
