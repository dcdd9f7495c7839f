// Package rustffi generates the Rust side of the plugin ABI: a #[repr(C)]
// <Name>RustMethods struct mirroring the C method table, a safe wrapper
// type with Result-returning methods, a <Name>Methods trait that
// delegates to ancestors, and #[repr(C)] structs for dictionaries.
package rustffi

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/broady/idlbind/bindgen/backend"
	"github.com/broady/idlbind/bindgen/decl"
	"github.com/broady/idlbind/bindgen/naming"
	"github.com/broady/idlbind/bindgen/typeinfo"
)

// Name is the backend identifier.
const Name = "rust"

// Generator renders Rust FFI modules from a frozen session.
type Generator struct {
	res    *typeinfo.Resolver
	render backend.Renderer
	opts   backend.Options
}

var _ backend.Generator = (*Generator)(nil)

// New returns a Generator reading sess.
func New(sess *decl.Session, r backend.Renderer, opts backend.Options) *Generator {
	return &Generator{res: typeinfo.NewResolver(sess), render: r, opts: opts}
}

// Name returns "rust".
func (g *Generator) Name() string { return Name }

type unitView struct {
	Filename   string
	Interface  *interfaceView
	Dictionary *dictionaryView
}

type interfaceView struct {
	ClassName   string
	MethodsName string
	Snake       string
	Parent      string
	Types       []string
	Entries     []*methodView
	Descendants []relativeView
	Ancestors   []relativeView
}

// relativeView is an ancestor or descendant class. Entries is filled for
// ancestors only.
type relativeView struct {
	Name    string
	Snake   string
	Entries []*methodView
}

type dictionaryView struct {
	ClassName string
	Fields    []fieldView
}

type fieldView struct {
	Name string
	Type string
}

// Generate renders <unit>.rs. Units without an interface or dictionary
// produce nothing.
func (g *Generator) Generate(ctx context.Context, unit *decl.Blob) (*backend.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	view, err := g.unitView(unit)
	if err != nil {
		return nil, errors.Wrapf(err, "rust: %s", unit.Filename)
	}
	out := &backend.Output{SourcePath: unit.Filename + ".rs"}
	if view.Interface == nil && view.Dictionary == nil {
		return out, nil
	}
	if out.Source, err = g.render.Render("rustffi/source.rs", view); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateShared returns nothing; Rust modules are per unit.
func (g *Generator) GenerateShared(ctx context.Context) ([]backend.Artifact, error) {
	return nil, ctx.Err()
}

func (g *Generator) unitView(unit *decl.Blob) (*unitView, error) {
	className := naming.ClassName(unit.Filename, unit.Prefix)
	v := &unitView{Filename: unit.Filename}
	for _, obj := range unit.Objects {
		kind := backend.KindOf(obj)
		if kind != backend.TemplateInterface && kind != backend.TemplateDictionary {
			continue
		}
		c := obj.(*decl.ClassObject)
		if v.Interface != nil || v.Dictionary != nil {
			return nil, errors.Newf("unit declares more than one class (%s)", c.Name)
		}
		var err error
		if kind == backend.TemplateDictionary {
			v.Dictionary, err = g.dictionaryView(className, c)
		} else {
			v.Interface, err = g.interfaceView(className, c)
		}
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (g *Generator) interfaceView(className string, c *decl.ClassObject) (*interfaceView, error) {
	sess := g.res.Session()
	table, err := backend.NewTable(sess, c, g.opts)
	if err != nil {
		return nil, err
	}
	v := &interfaceView{
		ClassName:   className,
		MethodsName: className + "RustMethods",
		Snake:       naming.RustIdentifier(className),
		Parent:      c.Parent,
		Types:       append([]string{className}, table.Descendants...),
	}
	if v.Entries, err = g.methods(table); err != nil {
		return nil, err
	}
	for _, d := range table.Descendants {
		v.Descendants = append(v.Descendants, relativeView{Name: d, Snake: naming.RustIdentifier(d)})
	}

	ancestors, err := backend.Ancestors(sess, c)
	if err != nil {
		return nil, err
	}
	for _, a := range ancestors {
		at, err := backend.NewTable(sess, a, g.opts)
		if err != nil {
			return nil, err
		}
		entries, err := g.methods(at)
		if err != nil {
			return nil, err
		}
		v.Ancestors = append(v.Ancestors, relativeView{Name: a.Name, Snake: naming.RustIdentifier(a.Name), Entries: entries})
	}
	return v, nil
}

func (g *Generator) methods(table *backend.Table) ([]*methodView, error) {
	var out []*methodView
	for _, e := range table.Entries {
		m, err := g.method(e)
		if err != nil {
			return nil, errors.Wrapf(err, "%s.%s", table.Class.Name, e.Name)
		}
		out = append(out, m)
	}
	return out, nil
}

// dictionaryView lays out a dictionary's fields in the same order as the
// plugin API struct: farthest ancestor first, own fields last.
func (g *Generator) dictionaryView(className string, c *decl.ClassObject) (*dictionaryView, error) {
	ancestors, err := backend.Ancestors(g.res.Session(), c)
	if err != nil {
		return nil, err
	}
	var props []*decl.PropsDeclaration
	for i := len(ancestors) - 1; i >= 0; i-- {
		props = append(props, ancestors[i].Props...)
	}
	props = append(props, c.Props...)

	v := &dictionaryView{ClassName: className}
	for _, p := range props {
		spelling, err := g.ffiReturn(p.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "%s.%s", c.Name, p.Name)
		}
		v.Fields = append(v.Fields, fieldView{Name: naming.RustIdentifier(p.Name), Type: spelling})
	}
	return v, nil
}
