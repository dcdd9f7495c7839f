// Package decl defines the declaration model built from IDL sources and the
// analysis session that owns the cross-unit registries.
package decl

import "fmt"

// ClassKind identifies what a declared interface represents.
type ClassKind int

const (
	ClassInterface  ClassKind = iota // Installable interface with a constructor
	ClassDictionary                  // Plain data record passed by value
	ClassMixin                       // Member source merged into other classes
)

// String returns the string representation of the class kind.
func (k ClassKind) String() string {
	switch k {
	case ClassInterface:
		return "interface"
	case ClassDictionary:
		return "dictionary"
	case ClassMixin:
		return "mixin"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ClassKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IndexKeyType is the key type of an index signature.
type IndexKeyType int

const (
	IndexString IndexKeyType = iota
	IndexNumber
)

// String returns "string" or "number".
func (k IndexKeyType) String() string {
	if k == IndexNumber {
		return "number"
	}
	return "string"
}

// MarshalText implements encoding.TextMarshaler.
func (k IndexKeyType) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Position is a location in an IDL source unit.
type Position struct {
	File string
	Line int
	Col  int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// PropsDeclaration is one property (attribute).
type PropsDeclaration struct {
	Name     string   `json:"name" yaml:"name"`
	Type     Type     `json:"type" yaml:"type"`
	Mode     TypeMode `json:"mode,omitzero" yaml:"mode,omitempty"`
	Readonly bool     `json:"readonly,omitempty" yaml:"readonly,omitempty"`
	Optional bool     `json:"optional,omitempty" yaml:"optional,omitempty"`

	// IsSymbol marks computed names such as [Symbol.iterator]; Name then
	// holds the flattened form "Symbol_iterator".
	IsSymbol bool `json:"symbol,omitempty" yaml:"symbol,omitempty"`

	Pos Position `json:"-" yaml:"-"`
}

// FunctionDeclaration is a method, constructor or global function.
// The embedded Type and Mode describe the return value.
type FunctionDeclaration struct {
	PropsDeclaration `yaml:",inline"`

	Args []*FunctionArgument `json:"args" yaml:"args"`
}

// ReturnType returns the declared return type.
func (f *FunctionDeclaration) ReturnType() Type { return f.Type }

// RequiredCount returns the number of leading required, non-variadic arguments.
func (f *FunctionDeclaration) RequiredCount() int {
	n := 0
	for _, a := range f.Args {
		if !a.Required || a.Variadic {
			break
		}
		n++
	}
	return n
}

// FunctionArgument is one formal parameter.
type FunctionArgument struct {
	Name     string   `json:"name" yaml:"name"`
	Type     Type     `json:"type" yaml:"type"`
	Mode     TypeMode `json:"mode,omitzero" yaml:"mode,omitempty"`
	Required bool     `json:"required" yaml:"required"`
	Variadic bool     `json:"variadic,omitempty" yaml:"variadic,omitempty"`
}

// IndexedProperty is a class's index signature.
type IndexedProperty struct {
	Type     Type         `json:"type" yaml:"type"`
	Mode     TypeMode     `json:"mode,omitzero" yaml:"mode,omitempty"`
	Readonly bool         `json:"readonly,omitempty" yaml:"readonly,omitempty"`
	Key      IndexKeyType `json:"key" yaml:"key"`
}

// Object is a top-level declaration of an input unit: *ClassObject or *FunctionObject.
type Object interface {
	ObjectName() string
	object()
}

// ClassObject is an interface, dictionary or mixin.
type ClassObject struct {
	Name        string                 `json:"name" yaml:"name"`
	Kind        ClassKind              `json:"kind" yaml:"kind"`
	Parent      string                 `json:"parent,omitempty" yaml:"parent,omitempty"`
	Mixins      []string               `json:"mixins,omitempty" yaml:"mixins,omitempty"`
	Props       []*PropsDeclaration    `json:"props,omitempty" yaml:"props,omitempty"`
	Methods     []*FunctionDeclaration `json:"methods,omitempty" yaml:"methods,omitempty"`
	Indexed     *IndexedProperty       `json:"indexed,omitempty" yaml:"indexed,omitempty"`
	Constructor *FunctionDeclaration   `json:"constructor,omitempty" yaml:"constructor,omitempty"`

	Pos Position `json:"-" yaml:"-"`
}

func (c *ClassObject) ObjectName() string { return c.Name }
func (*ClassObject) object()              {}

// FunctionObject is a top-level function-typed variable.
type FunctionObject struct {
	Declare *FunctionDeclaration `json:"declare" yaml:"declare"`
}

func (f *FunctionObject) ObjectName() string {
	if f.Declare == nil {
		return ""
	}
	return f.Declare.Name
}
func (*FunctionObject) object() {}

// Blob is one IDL input unit.
type Blob struct {
	// Source is the path the unit was read from.
	Source string `json:"source" yaml:"source"`

	// Filename is the unit identifier: the basename without ".d.ts".
	Filename string `json:"filename" yaml:"filename"`

	// Prefix is the platform prefix tag stripped during class name derivation.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	Raw string `json:"-" yaml:"-"`

	// Objects is filled in by analysis, in declaration order.
	Objects []Object `json:"objects" yaml:"objects"`
}

// NewBlob returns a Blob for the given source text.
func NewBlob(source, filename, prefix, raw string) *Blob {
	return &Blob{Source: source, Filename: filename, Prefix: prefix, Raw: raw}
}
