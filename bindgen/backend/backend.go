// Package backend defines the contract shared by the code generators: how
// declarations are routed to templates, how class members are aggregated
// across mixins and how arguments are bound.
package backend

import (
	"context"
	"path"
	"strings"

	"github.com/broady/idlbind/bindgen/decl"
	"github.com/broady/idlbind/bindgen/naming"
)

// TemplateKind selects the template family for a declaration.
type TemplateKind int

const (
	TemplateNone TemplateKind = iota
	TemplateInterface
	TemplateDictionary
	TemplateGlobalFunction
)

// String returns the template family name.
func (k TemplateKind) String() string {
	switch k {
	case TemplateInterface:
		return "interface"
	case TemplateDictionary:
		return "dictionary"
	case TemplateGlobalFunction:
		return "global_function"
	default:
		return "none"
	}
}

// KindOf routes obj to its template family. Mixins route to TemplateNone
// and are never emitted.
func KindOf(obj decl.Object) TemplateKind {
	switch o := obj.(type) {
	case *decl.FunctionObject:
		return TemplateGlobalFunction
	case *decl.ClassObject:
		switch o.Kind {
		case decl.ClassDictionary:
			return TemplateDictionary
		case decl.ClassInterface:
			return TemplateInterface
		}
	}
	return TemplateNone
}

// Renderer turns a data context into text using a named template.
type Renderer interface {
	Render(name string, data any) (string, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(name string, data any) (string, error)

// Render calls f.
func (f RendererFunc) Render(name string, data any) (string, error) { return f(name, data) }

// Options configures a backend.
type Options struct {
	// Is32Bit selects pointer-width spellings for 32-bit targets.
	Is32Bit bool

	// SkipMembers lists "Class.member" pairs omitted from the plugin API
	// and Rust surfaces.
	SkipMembers []string
}

// Skipped reports whether className.member is in the skip list.
func (o Options) Skipped(className, member string) bool {
	key := className + "." + member
	for _, s := range o.SkipMembers {
		if s == key {
			return true
		}
	}
	return false
}

// Artifact is one generated file.
type Artifact struct {
	// Path is relative to the backend's output directory and uses '/'.
	Path    string
	Content []byte
}

// Output is a backend's result for one unit.
type Output struct {
	HeaderPath string
	Header     string
	SourcePath string
	Source     string
}

// Artifacts returns the non-empty files of o.
func (o *Output) Artifacts() []Artifact {
	var out []Artifact
	if o.HeaderPath != "" && o.Header != "" {
		out = append(out, Artifact{Path: o.HeaderPath, Content: []byte(o.Header)})
	}
	if o.SourcePath != "" && o.Source != "" {
		out = append(out, Artifact{Path: o.SourcePath, Content: []byte(o.Source)})
	}
	return out
}

// Generator is one code-generation backend. Implementations read the
// frozen session only and are safe for concurrent use.
type Generator interface {
	// Name returns the backend identifier used in configuration.
	Name() string

	// Generate renders one unit.
	Generate(ctx context.Context, unit *decl.Blob) (*Output, error)

	// GenerateShared renders the run-wide artifacts that belong to no single
	// unit, such as union wrappers.
	GenerateShared(ctx context.Context) ([]Artifact, error)
}

// Join joins slash-separated path elements.
func Join(elem ...string) string {
	return path.Join(elem...)
}

// UnitOf returns the identifier of the input unit that declared c, derived
// from its source position: "html_element" for "dom/html_element.d.ts".
// Classes without a position fall back to the snake-cased class name.
func UnitOf(c *decl.ClassObject) string {
	if c.Pos.File == "" {
		return naming.SnakeCase(c.Name)
	}
	return strings.TrimSuffix(path.Base(strings.ReplaceAll(c.Pos.File, "\\", "/")), ".d.ts")
}
