// Package quickjs generates the QuickJS engine bindings: one
// qjs_<unit>.h/.cc pair per input unit, one qjs_union_<members>.h/.cc pair
// per union shape and the qjs_defined_properties.h name tables.
package quickjs

import (
	"context"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/broady/idlbind/bindgen/backend"
	"github.com/broady/idlbind/bindgen/decl"
	"github.com/broady/idlbind/bindgen/naming"
	"github.com/broady/idlbind/bindgen/typeinfo"
)

// Name is the backend identifier.
const Name = "quickjs"

// DefinedPropertiesFile is the shared name-table header.
const DefinedPropertiesFile = "qjs_defined_properties.h"

// Generator renders QuickJS bindings from a frozen session.
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

// Name returns "quickjs".
func (g *Generator) Name() string { return Name }

type unitView struct {
	Filename  string
	ClassName string
	QJSName   string
	Guard     string
	Includes  []string

	Interface  *interfaceView
	Dictionary *dictionaryView
	Functions  []*functionView
}

type functionView struct {
	Name   string
	Symbol string
	Argc   int
	Body   *bodyView
}

// Generate renders the header and source of one unit.
func (g *Generator) Generate(ctx context.Context, unit *decl.Blob) (*backend.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	view, err := g.unitView(unit)
	if err != nil {
		return nil, errors.Wrapf(err, "quickjs: %s", unit.Filename)
	}

	out := &backend.Output{
		HeaderPath: "qjs_" + unit.Filename + ".h",
		SourcePath: "qjs_" + unit.Filename + ".cc",
	}
	if view.Interface == nil && view.Dictionary == nil && len(view.Functions) == 0 {
		return out, nil
	}
	if out.Header, err = g.render.Render("quickjs/header.h", view); err != nil {
		return nil, err
	}
	if out.Source, err = g.render.Render("quickjs/source.cc", view); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Generator) unitView(unit *decl.Blob) (*unitView, error) {
	className := naming.ClassName(unit.Filename, unit.Prefix)
	v := &unitView{
		Filename:  unit.Filename,
		ClassName: className,
		QJSName:   naming.QJSClassName(className),
		Guard:     "BRIDGE_QJS_" + naming.UpperSnakeCase(unit.Filename) + "_H",
	}

	var types []decl.Type
	self := ""
	for _, obj := range unit.Objects {
		switch backend.KindOf(obj) {
		case backend.TemplateInterface:
			c := obj.(*decl.ClassObject)
			if v.Interface != nil || v.Dictionary != nil {
				return nil, errors.Newf("unit declares more than one class (%s)", c.Name)
			}
			iv, err := g.interfaceView(className, c)
			if err != nil {
				return nil, err
			}
			v.Interface = iv
			self = c.Name
			types = append(types, classTypes(g.res.Session(), c)...)

		case backend.TemplateDictionary:
			c := obj.(*decl.ClassObject)
			if v.Interface != nil || v.Dictionary != nil {
				return nil, errors.Newf("unit declares more than one class (%s)", c.Name)
			}
			dv, err := g.dictionaryView(className, c)
			if err != nil {
				return nil, err
			}
			v.Dictionary = dv
			self = c.Name
			for _, p := range c.Props {
				types = append(types, p.Type)
			}

		case backend.TemplateGlobalFunction:
			fn := obj.(*decl.FunctionObject).Declare
			b, err := g.body(className, fn, callGlobal)
			if err != nil {
				return nil, errors.Wrapf(err, "global %s", fn.Name)
			}
			v.Functions = append(v.Functions, &functionView{
				Name:   fn.Name,
				Symbol: naming.CppIdentifier(fn.Name),
				Argc:   len(fn.Args),
				Body:   b,
			})
			types = append(types, backend.FunctionTypes(fn)...)
		}
	}
	includes, err := g.includes(types, self)
	if err != nil {
		return nil, err
	}
	v.Includes = includes
	return v, nil
}

// classTypes lists the types an interface's bindings mention. Aggregation
// errors are reported by interfaceView.
func classTypes(sess *decl.Session, c *decl.ClassObject) []decl.Type {
	var types []decl.Type
	if members, err := backend.Aggregate(sess, c); err == nil {
		types = members.Types()
	}
	if c.Constructor != nil {
		types = append(types, backend.FunctionTypes(c.Constructor)...)
	}
	if c.Indexed != nil {
		types = append(types, c.Indexed.Type)
	}
	return types
}

type definedView struct {
	Properties     []string
	Interfaces     []string
	Files          []string
	BindingMethods []string
}

// GenerateShared renders one wrapper per registered union shape and the
// name tables.
func (g *Generator) GenerateShared(ctx context.Context) ([]backend.Artifact, error) {
	sess := g.res.Session()
	var out []backend.Artifact
	for _, u := range sess.Unions() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		view, err := g.unionView(u)
		if err != nil {
			return nil, err
		}
		header, err := g.render.Render("quickjs/union.h", view)
		if err != nil {
			return nil, err
		}
		source, err := g.render.Render("quickjs/union.cc", view)
		if err != nil {
			return nil, err
		}
		out = append(out,
			backend.Artifact{Path: view.FileName + ".h", Content: []byte(header)},
			backend.Artifact{Path: view.FileName + ".cc", Content: []byte(source)})
	}

	defined := sess.Defined()
	view := &definedView{
		Properties:     identifiers(defined.Properties),
		Interfaces:     defined.Interfaces,
		Files:          defined.Files,
		BindingMethods: bindingMethods(sess),
	}
	table, err := g.render.Render("quickjs/defined_properties.h", view)
	if err != nil {
		return nil, err
	}
	return append(out, backend.Artifact{Path: DefinedPropertiesFile, Content: []byte(table)}), nil
}

func identifiers(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		id := naming.CppIdentifier(n)
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// bindingMethods returns the names of every native-implemented member.
func bindingMethods(sess *decl.Session) []string {
	var names []string
	for _, c := range sess.Classes() {
		for _, p := range c.Props {
			if p.Mode.NativeImpl {
				names = append(names, p.Name)
			}
		}
		for _, m := range c.Methods {
			if m.Mode.NativeImpl {
				names = append(names, m.Name)
			}
		}
	}
	return identifiers(names)
}
