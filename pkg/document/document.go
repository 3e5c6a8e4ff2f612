// Package document canonicalizes the identifiers used to join records across
// the source and target platforms: tax ids (CPF/CNPJ) and equipment serial
// numbers.
package document

import "strings"

// Normalize canonicalizes a raw tax id for comparison. Source snapshots
// sometimes carry an escaped-slash artifact (e.g. "25.994.179\/0001-70"),
// which is removed before stripping every non-digit character. The result is
// stable and idempotent; an input without digits yields the empty string.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	clean := strings.ReplaceAll(raw, `\/`, "/")

	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeSerial canonicalizes an equipment serial number: whitespace is
// stripped and letters are uppercased, so serials recorded with different
// spacing or casing on the two platforms still collide.
func NormalizeSerial(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// NormalizeDepartment canonicalizes a department name for matching:
// trimmed and uppercased. A missing department is a valid (empty) key,
// matched literally, never as a wildcard.
func NormalizeDepartment(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
