// Package strings holds small string-slice helpers shared across services.
package strings

import "strings"

// DedupeAndTrim trims every element, drops blanks, and keeps the first
// occurrence of each distinct value. First-seen order is preserved, which is
// what keeps persisted risk-reason strings stable across recomputation.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := values[:0:0]
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
