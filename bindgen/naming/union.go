package naming

import (
	"strings"

	"github.com/broady/idlbind/bindgen/decl"
)

// UnionMembers returns the members of u without the null tag.
func UnionMembers(u *decl.Union) []decl.Type {
	var out []decl.Type
	for _, m := range u.Members {
		if !decl.IsTag(m, decl.ArgNull) {
			out = append(out, m)
		}
	}
	return out
}

// typeToken names one union member: "String", "Double", "Node",
// "NodeSequence".
func typeToken(t decl.Type) string {
	switch t := t.(type) {
	case *decl.Primitive:
		return UpperFirst(CamelCase(t.Tag.String()))
	case *decl.Reference:
		return t.Name
	case *decl.Array:
		return typeToken(t.Element) + "Sequence"
	case *decl.Union:
		var b strings.Builder
		for _, m := range UnionMembers(t) {
			b.WriteString(typeToken(m))
		}
		return b.String()
	}
	return "Unknown"
}

// UnionMemberName returns the name of one union member as used in
// wrapper accessors: "String" for string, "NodeSequence" for Node[].
func UnionMemberName(t decl.Type) string { return typeToken(t) }

// UnionTypeName returns the member-derived name of a union, identical for
// structurally identical unions: "StringDouble" for string | number.
func UnionTypeName(u *decl.Union) string {
	var b strings.Builder
	for _, m := range UnionMembers(u) {
		b.WriteString(typeToken(m))
	}
	return b.String()
}

// UnionClassName returns the wrapper class name, "QJSUnion<Members>".
func UnionClassName(u *decl.Union) string {
	return "QJSUnion" + UnionTypeName(u)
}

// UnionFileName returns the wrapper unit name, "qjs_union_<members>".
func UnionFileName(u *decl.Union) string {
	members := UnionMembers(u)
	parts := make([]string, len(members))
	for i, m := range members {
		parts[i] = SnakeCase(typeToken(m))
	}
	return "qjs_union_" + strings.Join(parts, "_")
}
