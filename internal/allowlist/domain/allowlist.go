// Package domain defines the allow-list entities for capability filtering.
package domain

import (
	"sort"
	"strings"
)

// Allowlist is the set of resource-type names permitted to appear in the
// filtered capability document. Membership is case-sensitive and entries
// are expected to match the server's canonical type names (e.g. "Patient").
//
// An Allowlist is a snapshot: it is built fresh for every filtering pass
// and never mutated afterwards.
type Allowlist map[string]struct{}

// NewAllowlist builds an Allowlist from raw stored values. Values are
// trimmed and whitespace-only entries are discarded; duplicates collapse
// into a single membership.
func NewAllowlist(values []string) Allowlist {
	allowlist := make(Allowlist, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		allowlist[trimmed] = struct{}{}
	}
	return allowlist
}

// Contains reports whether resourceType is a member of the allow-list.
func (a Allowlist) Contains(resourceType string) bool {
	_, ok := a[resourceType]
	return ok
}

// IsEmpty reports whether the allow-list has no entries. An empty
// allow-list means "apply no filtering" (fail-open).
func (a Allowlist) IsEmpty() bool {
	return len(a) == 0
}

// Values returns the entries in sorted order, for logging and inspection.
func (a Allowlist) Values() []string {
	values := make([]string, 0, len(a))
	for value := range a {
		values = append(values, value)
	}
	sort.Strings(values)
	return values
}
