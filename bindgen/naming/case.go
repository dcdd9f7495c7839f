// Package naming derives every generated identifier from declaration names.
// All backends go through this package so one interface carries the same
// exported name in every artifact.
package naming

import (
	"strings"
	"unicode"
)

// Words splits s into words at separators, lower-to-upper transitions,
// the end of an acronym ("HTMLElement" -> HTML, Element) and letter/digit
// boundaries.
func Words(s string) []string {
	runes := []rune(s)
	var words []string
	start := -1
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(runes[start:end]))
		}
		start = -1
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		prev := runes[i-1]
		switch {
		case unicode.IsDigit(r) != unicode.IsDigit(prev):
			flush(i)
			start = i
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			flush(i)
			start = i
		case unicode.IsUpper(r) && unicode.IsUpper(prev) &&
			i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			flush(i)
			start = i
		}
	}
	flush(len(runes))
	return words
}

// CamelCase converts s to lower camel case: the first word lowercased and
// every following word capitalized.
func CamelCase(s string) string {
	var b strings.Builder
	for i, w := range Words(s) {
		w = strings.ToLower(w)
		if i > 0 {
			w = UpperFirst(w)
		}
		b.WriteString(w)
	}
	return b.String()
}

// SnakeCase converts s to lower snake case.
func SnakeCase(s string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// UpperSnakeCase converts s to upper snake case.
func UpperSnakeCase(s string) string {
	return strings.ToUpper(SnakeCase(s))
}

// UpperFirst upper-cases the first rune of s.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// LowerFirst lower-cases the first rune of s.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
