package stringsx

import (
	"unicode"
	"unicode/utf8"
)

// LowerFirstChar returns s with its first character converted to lowercase.
func LowerFirstChar(s string) string {
	return mapFirstChar(s, unicode.ToLower)
}

// UpperFirstChar returns s with its first character converted to uppercase.
// Go exports members by capitalising them, so "sum" names the method Sum.
func UpperFirstChar(s string) string {
	return mapFirstChar(s, unicode.ToUpper)
}

// EqualFoldFirst reports whether a and b are equal once the case of their first
// characters is ignored. The rest of both strings must match exactly.
func EqualFoldFirst(a, b string) bool {
	return a == b || (a != "" && LowerFirstChar(a) == LowerFirstChar(b))
}

func mapFirstChar(s string, mapping func(rune) rune) string {
	if s == "" {
		return ""
	}

	first, size := utf8.DecodeRuneInString(s)
	mapped := mapping(first)
	if mapped == first {
		return s
	}

	return string(mapped) + s[size:]
}
