// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package audit

// Resolve computes the ordered handler names that apply to the given call
// site.
//
// Precedence rules:
//   - If the method carries a non-empty Config, its list is used verbatim.
//   - Otherwise, if the declaring type carries a non-empty Config, that
//     list is used.
//   - Otherwise the result is empty and no dispatch occurs.
//
// A non-empty method-level list fully replaces the type-level one; the two
// are never merged. Duplicate names within the chosen list keep their
// first occurrence. Resolve is a pure function of the site and safe to
// call concurrently.
func Resolve(site Site) []string {
	var names []string
	switch {
	case !site.MethodConfig.empty():
		names = site.MethodConfig.Handlers
	case !site.TypeConfig.empty():
		names = site.TypeConfig.Handlers
	default:
		return nil
	}
	return dedupFirst(names)
}

// dedupFirst drops exact-string repeats, keeping declaration order.
func dedupFirst(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
