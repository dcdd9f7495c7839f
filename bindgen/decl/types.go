package decl

import "strings"

// TypeKind identifies the category of a parameter type.
type TypeKind int

const (
	KindPrimitive TypeKind = iota // Fixed argument tag (string, int32, ...)
	KindReference                 // Named reference to another class ("pointer" type)
	KindArray                     // Sequence of an element type
	KindUnion                     // Union of member types
)

// String returns the string representation of the type kind.
func (k TypeKind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindReference:
		return "Reference"
	case KindArray:
		return "Array"
	case KindUnion:
		return "Union"
	default:
		return "Unknown"
	}
}

// Type is a parameter, property or return type expression.
//
// Type is a closed sum: the only implementations are *Primitive,
// *Reference, *Array and *Union. Consumers switch over all four and treat
// anything else as an error.
type Type interface {
	// Kind returns the type kind for switching.
	Kind() TypeKind

	// String returns the structural spelling of the type. Two types are
	// structurally identical iff their spellings are equal.
	String() string

	// Ensure only types in this package can implement Type.
	sealed()
}

type typeBase struct{}

func (typeBase) sealed() {}

// ArgumentKind enumerates the fixed primitive tags.
type ArgumentKind int

const (
	ArgString ArgumentKind = iota
	ArgLegacyString
	ArgObject
	ArgPromise
	ArgInt32
	ArgInt64
	ArgDouble
	ArgBoolean
	ArgFunction
	ArgVoid
	ArgAny
	ArgNull
	ArgUndefined
	ArgArrayProtoMethods
)

var argumentKindNames = [...]string{
	ArgString:            "string",
	ArgLegacyString:      "legacy_dom_string",
	ArgObject:            "object",
	ArgPromise:           "promise",
	ArgInt32:             "int32",
	ArgInt64:             "int64",
	ArgDouble:            "double",
	ArgBoolean:           "boolean",
	ArgFunction:          "function",
	ArgVoid:              "void",
	ArgAny:               "any",
	ArgNull:              "null",
	ArgUndefined:         "undefined",
	ArgArrayProtoMethods: "js_array_proto_methods",
}

// String returns the tag's canonical spelling.
func (k ArgumentKind) String() string {
	if k < 0 || int(k) >= len(argumentKindNames) {
		return "unknown"
	}
	return argumentKindNames[k]
}

// Primitive is a fixed argument tag.
type Primitive struct {
	typeBase

	Tag ArgumentKind
}

// Kind returns KindPrimitive.
func (t *Primitive) Kind() TypeKind { return KindPrimitive }

func (t *Primitive) String() string { return t.Tag.String() }

// Prim returns a Primitive for the given tag.
func Prim(tag ArgumentKind) *Primitive {
	return &Primitive{Tag: tag}
}

// Reference names another declared class.
type Reference struct {
	typeBase

	Name string
}

// Kind returns KindReference.
func (t *Reference) Kind() TypeKind { return KindReference }

func (t *Reference) String() string { return t.Name }

// Ref returns a Reference to the named class.
func Ref(name string) *Reference {
	return &Reference{Name: name}
}

// Array is a sequence of Element.
type Array struct {
	typeBase

	Element Type
}

// Kind returns KindArray.
func (t *Array) Kind() TypeKind { return KindArray }

func (t *Array) String() string {
	if t.Element == nil {
		return "?[]"
	}
	if t.Element.Kind() == KindUnion {
		return "(" + t.Element.String() + ")[]"
	}
	return t.Element.String() + "[]"
}

// ArrayOf returns an Array of element.
func ArrayOf(element Type) *Array {
	return &Array{Element: element}
}

// Union is an ordered list of member types. Member order is significant
// for structural identity.
type Union struct {
	typeBase

	Members []Type
}

// Kind returns KindUnion.
func (t *Union) Kind() TypeKind { return KindUnion }

func (t *Union) String() string {
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		if m == nil {
			parts[i] = "?"
			continue
		}
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}

// UnionOf returns a Union of members.
func UnionOf(members ...Type) *Union {
	return &Union{Members: members}
}

// Flatten splices nested unions into t and drops repeated members,
// keeping the first occurrence of each.
func (t *Union) Flatten() *Union {
	out := &Union{}
	seen := make(map[string]bool)
	var add func(members []Type)
	add = func(members []Type) {
		for _, m := range members {
			if nested, ok := m.(*Union); ok {
				add(nested.Members)
				continue
			}
			if key := m.String(); !seen[key] {
				seen[key] = true
				out.Members = append(out.Members, m)
			}
		}
	}
	add(t.Members)
	return out
}

// Shape returns the flattened, null-free form of t. Unions with the same
// shape share one registry entry.
func (t *Union) Shape() *Union {
	flat := t.Flatten()
	shape := &Union{}
	for _, m := range flat.Members {
		if !IsTag(m, ArgNull) {
			shape.Members = append(shape.Members, m)
		}
	}
	return shape
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}

// IsTag reports whether t is the primitive tag k.
func IsTag(t Type, k ArgumentKind) bool {
	p, ok := t.(*Primitive)
	return ok && p.Tag == k
}

// TypeMode carries the wrapper annotations seen on one type occurrence.
type TypeMode struct {
	NewObject       bool   `json:"newObject,omitempty" yaml:"newObject,omitempty"`
	NativeImpl      bool   `json:"nativeImpl,omitempty" yaml:"nativeImpl,omitempty"`
	Static          bool   `json:"static,omitempty" yaml:"static,omitempty"`
	LayoutDependent bool   `json:"layoutDependent,omitempty" yaml:"layoutDependent,omitempty"`
	SecondaryName   string `json:"secondaryName,omitempty" yaml:"secondaryName,omitempty"`
}

// IsZero reports whether no annotation is set.
func (m TypeMode) IsZero() bool {
	return m == TypeMode{}
}
