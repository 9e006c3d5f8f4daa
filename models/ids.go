package models

import "strings"

// NormalizeID maps an identifier to the canonical form used for
// comparisons. Account ids are ObjectID hex, which is case-insensitive
// on the wire. Stored values keep the caller's representation; only
// comparisons go through here.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// SameID compares two identifiers after normalization.
func SameID(a, b string) bool {
	return NormalizeID(a) == NormalizeID(b)
}

// FindMember returns the stored representation of id in the toggle set.
func FindMember(set []string, id string) (string, bool) {
	for _, m := range set {
		if SameID(m, id) {
			return m, true
		}
	}
	return "", false
}

// HasMember reports whether id is in the toggle set.
func HasMember(set []string, id string) bool {
	_, ok := FindMember(set, id)
	return ok
}

// ToggleMember adds id when absent and removes it when present, returning
// the new set and whether the id ended up a member. The added entry keeps
// the caller's representation.
func ToggleMember(set []string, id string) ([]string, bool) {
	if !HasMember(set, id) {
		return append(set, strings.TrimSpace(id)), true
	}
	out := make([]string, 0, len(set)-1)
	for _, m := range set {
		if !SameID(m, id) {
			out = append(out, m)
		}
	}
	return out, false
}
