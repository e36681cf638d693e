// Package normalize canonicalizes scanned and uploaded identifiers so that
// equality comparisons survive upstream formatting noise (spreadsheet
// exports render numeric cells as "251205.0", operators type stray spaces,
// lot labels mix hyphenation). All identifier cleanup lives here; no other
// package may do ad hoc string surgery.
package normalize

import "strings"

// Kanban canonicalizes a kanban card identifier: trims surrounding
// whitespace, uppercases, and strips a trailing ".0" float artifact.
// Internal structure (hyphens, slashes) is kept, since kanban identifiers
// are structured codes. Empty input stays empty, which callers treat as
// "no scan". Idempotent.
func Kanban(raw string) string {
	s := strings.TrimSpace(raw)
	s = stripFloatArtifact(s)
	return strings.ToUpper(s)
}

// Lot canonicalizes a lot number. Lots are looser than kanban identifiers:
// beyond the Kanban rules, internal spaces and hyphens are removed, so
// "2512-05" and "2512 05" and "251205.0" all key the same lot.
func Lot(raw string) string {
	s := Kanban(raw)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

// JoinKey canonicalizes a joint-linkage field. Joint keys behave like
// kanban identifiers; a value that is empty after normalization means the
// card carries no joint linkage at all.
func JoinKey(raw string) string {
	return Kanban(raw)
}

// stripFloatArtifact removes the ".0" suffix left behind when an integer
// identifier round-trips through a spreadsheet float cell. Only an
// all-digit prefix qualifies; "REV1.0" is a real identifier and is kept.
func stripFloatArtifact(s string) string {
	if !strings.HasSuffix(s, ".0") {
		return s
	}
	head := s[:len(s)-2]
	if head == "" {
		return s
	}
	for _, r := range head {
		if r < '0' || r > '9' {
			return s
		}
	}
	return head
}
