package naming

import (
	"strings"
	"unicode"
)

// C++ keywords that cannot name a generated local or parameter.
var cppReservedWords = map[string]bool{
	"auto":      true,
	"bool":      true,
	"break":     true,
	"case":      true,
	"catch":     true,
	"char":      true,
	"class":     true,
	"const":     true,
	"continue":  true,
	"default":   true,
	"delete":    true,
	"do":        true,
	"double":    true,
	"else":      true,
	"enum":      true,
	"explicit":  true,
	"export":    true,
	"extern":    true,
	"false":     true,
	"float":     true,
	"for":       true,
	"friend":    true,
	"goto":      true,
	"if":        true,
	"inline":    true,
	"int":       true,
	"long":      true,
	"namespace": true,
	"new":       true,
	"operator":  true,
	"private":   true,
	"protected": true,
	"public":    true,
	"register":  true,
	"return":    true,
	"short":     true,
	"signed":    true,
	"sizeof":    true,
	"static":    true,
	"struct":    true,
	"switch":    true,
	"template":  true,
	"this":      true,
	"throw":     true,
	"true":      true,
	"try":       true,
	"typedef":   true,
	"typename":  true,
	"union":     true,
	"unsigned":  true,
	"using":     true,
	"virtual":   true,
	"void":      true,
	"volatile":  true,
	"while":     true,
}

// Rust keywords, strict and reserved.
var rustReservedWords = map[string]bool{
	"as":       true,
	"async":    true,
	"await":    true,
	"break":    true,
	"const":    true,
	"continue": true,
	"crate":    true,
	"dyn":      true,
	"else":     true,
	"enum":     true,
	"extern":   true,
	"false":    true,
	"fn":       true,
	"for":      true,
	"if":       true,
	"impl":     true,
	"in":       true,
	"let":      true,
	"loop":     true,
	"match":    true,
	"mod":      true,
	"move":     true,
	"mut":      true,
	"pub":      true,
	"ref":      true,
	"return":   true,
	"self":     true,
	"Self":     true,
	"static":   true,
	"struct":   true,
	"super":    true,
	"trait":    true,
	"true":     true,
	"type":     true,
	"unsafe":   true,
	"use":      true,
	"where":    true,
	"while":    true,
	"abstract": true,
	"box":      true,
	"final":    true,
	"macro":    true,
	"override": true,
	"priv":     true,
	"typeof":   true,
	"unsized":  true,
	"virtual":  true,
	"yield":    true,
	"try":      true,
}

// CppIdentifier makes name usable as a C++ identifier.
func CppIdentifier(name string) string {
	name = sanitizeIdentifier(name)
	if cppReservedWords[name] {
		return name + "_"
	}
	return name
}

// RustIdentifier converts name to a snake_case Rust identifier, escaping
// keywords with a trailing underscore.
func RustIdentifier(name string) string {
	id := sanitizeIdentifier(SnakeCase(name))
	if rustReservedWords[id] {
		return id + "_"
	}
	return id
}

// sanitizeIdentifier replaces characters that cannot appear in a C-family
// identifier and prefixes a leading digit.
func sanitizeIdentifier(name string) string {
	if name == "" {
		return "_"
	}

	var result strings.Builder
	if unicode.IsDigit(rune(name[0])) {
		result.WriteRune('_')
	}
	for _, r := range name {
		if (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) || r == '_' {
			result.WriteRune(r)
		} else {
			result.WriteRune('_')
		}
	}
	return result.String()
}
