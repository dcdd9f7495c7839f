// Package pluginapi generates the C-ABI surface that native plugins link
// against: for every interface a <Name>PublicMethods table of function
// pointers, and for every dictionary a plain WebF<Name> struct. Output
// lands under plugin_api/.
package pluginapi

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/broady/idlbind/bindgen/backend"
	"github.com/broady/idlbind/bindgen/decl"
	"github.com/broady/idlbind/bindgen/naming"
	"github.com/broady/idlbind/bindgen/typeinfo"
)

// Name is the backend identifier.
const Name = "plugin"

// Dir is the directory the generated files are placed in.
const Dir = "plugin_api"

// Generator renders the plugin API from a frozen session.
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

// Name returns "plugin".
func (g *Generator) Name() string { return Name }

type unitView struct {
	Filename       string
	Guard          string
	Includes       []string
	SourceIncludes []string
	Forward        []forwardDecl

	Interface  *interfaceView
	Dictionary *dictionaryView
}

type forwardDecl struct {
	Name       string
	Dictionary bool
}

// Generate renders one unit. Units without an interface or dictionary
// produce no files; dictionaries produce a header only.
func (g *Generator) Generate(ctx context.Context, unit *decl.Blob) (*backend.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	view, err := g.unitView(unit)
	if err != nil {
		return nil, errors.Wrapf(err, "plugin: %s", unit.Filename)
	}

	out := &backend.Output{
		HeaderPath: backend.Join(Dir, unit.Filename+".h"),
		SourcePath: backend.Join(Dir, unit.Filename+".cc"),
	}
	if view.Interface == nil && view.Dictionary == nil {
		return out, nil
	}
	if out.Header, err = g.render.Render("pluginapi/header.h", view); err != nil {
		return nil, err
	}
	if view.Interface != nil {
		if out.Source, err = g.render.Render("pluginapi/source.cc", view); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GenerateShared returns nothing; the plugin API has no run-wide files.
func (g *Generator) GenerateShared(ctx context.Context) ([]backend.Artifact, error) {
	return nil, ctx.Err()
}

func (g *Generator) unitView(unit *decl.Blob) (*unitView, error) {
	className := naming.ClassName(unit.Filename, unit.Prefix)
	v := &unitView{
		Filename: unit.Filename,
		Guard:    "WEBF_CORE_WEBF_API_PLUGIN_API_" + naming.UpperSnakeCase(unit.Filename) + "_H_",
	}

	var (
		types []decl.Type
		extra []string
		self  *decl.ClassObject
	)
	for _, obj := range unit.Objects {
		kind := backend.KindOf(obj)
		if kind != backend.TemplateInterface && kind != backend.TemplateDictionary {
			continue
		}
		c := obj.(*decl.ClassObject)
		if self != nil {
			return nil, errors.Newf("unit declares more than one class (%s)", c.Name)
		}
		self = c

		if kind == backend.TemplateDictionary {
			dv, err := g.dictionaryView(className, c)
			if err != nil {
				return nil, err
			}
			v.Dictionary = dv
			for _, f := range dv.props {
				types = append(types, f.Type)
			}
			continue
		}

		table, err := backend.NewTable(g.res.Session(), c, g.opts)
		if err != nil {
			return nil, err
		}
		iv, err := g.interfaceView(className, table)
		if err != nil {
			return nil, err
		}
		v.Interface = iv
		for _, e := range table.Entries {
			if e.Func != nil {
				types = append(types, backend.FunctionTypes(e.Func)...)
			} else {
				types = append(types, e.Prop.Type)
			}
		}
		extra = table.Descendants

		if c.Parent != "" {
			parent, ok := g.res.Session().Class(c.Parent)
			if !ok {
				return nil, errors.Newf("parent %q of %s is not declared", c.Parent, c.Name)
			}
			v.Includes = append(v.Includes, backend.Join(Dir, backend.UnitOf(parent)+".h"))
		}
		v.SourceIncludes = append(v.SourceIncludes, backend.UnitOf(c)+".h")
		for _, d := range iv.Descendants {
			v.SourceIncludes = append(v.SourceIncludes, d.Include)
		}
	}
	if self == nil {
		return v, nil
	}

	forward, err := g.forward(self.Name, append(backend.References(types), extra...))
	if err != nil {
		return nil, err
	}
	v.Forward = forward
	return v, nil
}

// forward lists the forward declarations for names, skipping self and
// duplicates.
func (g *Generator) forward(self string, names []string) ([]forwardDecl, error) {
	var out []forwardDecl
	seen := map[string]bool{self: true}
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		c, ok := g.res.Session().Class(n)
		if !ok {
			return nil, errors.Newf("undeclared class %q", n)
		}
		out = append(out, forwardDecl{Name: n, Dictionary: c.Kind == decl.ClassDictionary})
	}
	return out, nil
}
