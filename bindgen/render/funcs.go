package render

import (
	"strings"
	"text/template"
)

var funcs = template.FuncMap{
	"join":      func(sep string, elems []string) string { return strings.Join(elems, sep) },
	"indent":    indent,
	"hasSuffix": strings.HasSuffix,
}

// indent prefixes every non-empty line of s with n spaces.
func indent(n int, s string) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}
