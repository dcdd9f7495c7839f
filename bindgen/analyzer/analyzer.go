// Package analyzer builds the declaration model from parsed IDL units.
//
// Analysis of one unit never reads shared state: Analyze returns a Result
// that the caller merges into the session in a stable order. This lets
// units be analyzed concurrently while keeping registration order
// deterministic.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/idlbind/bindgen/decl"
	"github.com/broady/idlbind/bindgen/syntax"
)

// Error is a fatal analysis error at a source position.
type Error struct {
	Pos decl.Position
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Result holds everything one unit contributes to the session.
type Result struct {
	Blob       *decl.Blob
	Classes    []*decl.ClassObject
	Unions     []*decl.Union
	Properties []string
	Interfaces []string
}

// Merge registers the result's declarations in sess.
func (r *Result) Merge(sess *decl.Session) error {
	for _, c := range r.Classes {
		if err := sess.AddClass(c); err != nil {
			return errors.Wrapf(err, "%s", c.Pos)
		}
	}
	for _, u := range r.Unions {
		if _, err := sess.AddUnion(u); err != nil {
			return err
		}
	}
	for _, name := range r.Properties {
		if err := sess.DefineProperty(name); err != nil {
			return err
		}
	}
	for _, name := range r.Interfaces {
		if err := sess.DefineInterface(name); err != nil {
			return err
		}
	}
	if len(r.Interfaces) == 0 {
		return nil
	}
	return sess.DefineFile(r.Blob.Filename)
}

// AnalyzeSource parses blob.Raw and analyzes it.
func AnalyzeSource(blob *decl.Blob) (*Result, error) {
	file, err := syntax.Parse(sourceName(blob), blob.Raw)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return Analyze(blob, file)
}

// Analyze walks file and fills blob.Objects.
func Analyze(blob *decl.Blob, file *syntax.File) (*Result, error) {
	a := &analyzer{
		file:   sourceName(blob),
		result: &Result{Blob: blob},
		unions: make(map[string]bool),
		props:  make(map[string]bool),
	}
	for _, stmt := range file.Stmts {
		obj, err := a.statement(stmt)
		if err != nil {
			return nil, err
		}
		if obj != nil {
			blob.Objects = append(blob.Objects, obj)
		}
	}
	return a.result, nil
}

func sourceName(blob *decl.Blob) string {
	if blob.Source != "" {
		return blob.Source
	}
	return blob.Filename + ".d.ts"
}

type analyzer struct {
	file   string
	result *Result
	unions map[string]bool
	props  map[string]bool
}

func (a *analyzer) pos(p syntax.Pos) decl.Position {
	return decl.Position{File: a.file, Line: p.Line, Col: p.Col}
}

func (a *analyzer) errorf(p syntax.Pos, format string, args ...any) error {
	return errors.WithStack(&Error{Pos: a.pos(p), Msg: fmt.Sprintf(format, args...)})
}

func (a *analyzer) defineProperty(name string) {
	if !a.props[name] {
		a.props[name] = true
		a.result.Properties = append(a.result.Properties, name)
	}
}

func (a *analyzer) statement(stmt syntax.Stmt) (decl.Object, error) {
	switch s := stmt.(type) {
	case *syntax.InterfaceDecl:
		return a.interfaceDecl(s)
	case *syntax.VarDecl:
		return a.varDecl(s)
	case *syntax.TypeAlias, *syntax.ImportDecl:
		return nil, nil
	default:
		return nil, a.errorf(stmt.Position(), "unsupported statement %T", stmt)
	}
}

func (a *analyzer) interfaceDecl(s *syntax.InterfaceDecl) (*decl.ClassObject, error) {
	c := &decl.ClassObject{
		Name: s.Name,
		Kind: classKind(s.Decorators),
		Pos:  a.pos(s.Pos),
	}
	c.Parent, c.Mixins = splitHeritage(s.Extends)

	for _, m := range s.Members {
		if err := a.member(c, m); err != nil {
			return nil, err
		}
	}

	if c.Kind == decl.ClassInterface {
		if c.Constructor == nil {
			return nil, errors.WithHint(
				a.errorf(s.Pos, "Interface: %s didn't have constructor defined.", c.Name),
				"declare a construct signature such as `new(): void;`")
		}
		a.result.Interfaces = append(a.result.Interfaces, "QJS"+c.Name)
		a.defineProperty(c.Name)
	}

	a.result.Classes = append(a.result.Classes, c)
	return c, nil
}

// classKind selects the class kind from the first marker decorator.
func classKind(decorators []*syntax.Decorator) decl.ClassKind {
	for _, d := range decorators {
		switch d.Name {
		case "Dictionary":
			return decl.ClassDictionary
		case "Mixin":
			return decl.ClassMixin
		}
	}
	return decl.ClassInterface
}

// splitHeritage returns the parent and the mixin references. The first
// entry is the parent unless its name contains "mixin".
func splitHeritage(extends []string) (string, []string) {
	if len(extends) == 0 {
		return "", nil
	}
	if strings.Contains(strings.ToLower(extends[0]), "mixin") {
		return "", append([]string(nil), extends...)
	}
	if len(extends) == 1 {
		return extends[0], nil
	}
	return extends[0], append([]string(nil), extends[1:]...)
}

func (a *analyzer) member(c *decl.ClassObject, m syntax.Member) error {
	switch m := m.(type) {
	case *syntax.PropertySig:
		name, symbol, err := a.propName(m.Name, m.Pos)
		if err != nil {
			return err
		}
		if fn, ok := unparen(m.Type).(*syntax.FuncType); ok {
			method, err := a.function(name, fn.Params, fn.Result, m.Pos)
			if err != nil {
				return err
			}
			method.IsSymbol = symbol
			c.Methods = append(c.Methods, method)
			a.defineProperty(method.Name)
			return nil
		}
		prop := &decl.PropsDeclaration{
			Name:     name,
			Readonly: m.Readonly,
			Optional: m.Optional,
			IsSymbol: symbol,
			Pos:      a.pos(m.Pos),
		}
		if prop.Type, err = a.typeOf(m.Type, &prop.Mode); err != nil {
			return err
		}
		c.Props = append(c.Props, prop)
		a.defineProperty(prop.Name)
		return nil

	case *syntax.MethodSig:
		name, symbol, err := a.propName(m.Name, m.Pos)
		if err != nil {
			return err
		}
		method, err := a.function(name, m.Params, m.Result, m.Pos)
		if err != nil {
			return err
		}
		method.IsSymbol = symbol
		c.Methods = append(c.Methods, method)
		a.defineProperty(method.Name)
		return nil

	case *syntax.IndexSig:
		if c.Indexed != nil {
			return a.errorf(m.Pos, "interface %s declares more than one index signature", c.Name)
		}
		key, err := a.indexKey(m.KeyType)
		if err != nil {
			return err
		}
		idx := &decl.IndexedProperty{Readonly: m.Readonly, Key: key}
		if idx.Type, err = a.typeOf(m.Type, &idx.Mode); err != nil {
			return err
		}
		c.Indexed = idx
		return nil

	case *syntax.ConstructSig:
		if c.Constructor != nil {
			return a.errorf(m.Pos, "interface %s declares more than one constructor", c.Name)
		}
		ctor, err := a.function("constructor", m.Params, m.Result, m.Pos)
		if err != nil {
			return err
		}
		c.Constructor = ctor
		return nil
	}
	return a.errorf(m.Position(), "unsupported member %T in interface %s", m, c.Name)
}

// propName returns the member name and whether it is a computed symbol name.
func (a *analyzer) propName(n syntax.PropName, p syntax.Pos) (string, bool, error) {
	switch n.Kind {
	case syntax.NameIdent, syntax.NameString, syntax.NameNumber:
		return n.Text, false, nil
	case syntax.NameComputed:
		if len(n.Path) == 2 {
			return n.Path[0] + "_" + n.Path[1], true, nil
		}
	}
	return "", false, a.errorf(p, "unsupported property name [%s]", n.Text)
}

func (a *analyzer) indexKey(t syntax.TypeExpr) (decl.IndexKeyType, error) {
	if kw, ok := t.(*syntax.KeywordType); ok {
		switch kw.Name {
		case "number":
			return decl.IndexNumber, nil
		case "string":
			return decl.IndexString, nil
		}
	}
	return 0, a.errorf(t.Position(), "index signature key must be string or number")
}

func (a *analyzer) function(name string, params []*syntax.Param, result syntax.TypeExpr, p syntax.Pos) (*decl.FunctionDeclaration, error) {
	fn := &decl.FunctionDeclaration{
		PropsDeclaration: decl.PropsDeclaration{Name: name, Pos: a.pos(p)},
	}
	for _, param := range params {
		arg := &decl.FunctionArgument{
			Name:     param.Name,
			Required: !param.Optional,
			Variadic: param.Rest,
		}
		var err error
		if arg.Type, err = a.typeOf(param.Type, &arg.Mode); err != nil {
			return nil, err
		}
		fn.Args = append(fn.Args, arg)
	}

	if result == nil {
		fn.Type = decl.Prim(decl.ArgVoid)
	} else {
		var err error
		if fn.Type, err = a.typeOf(result, &fn.Mode); err != nil {
			return nil, err
		}
	}
	if fn.Mode.SecondaryName != "" {
		fn.Name = fn.Mode.SecondaryName
	}
	return fn, nil
}

func (a *analyzer) varDecl(s *syntax.VarDecl) (*decl.FunctionObject, error) {
	fn, ok := unparen(s.Type).(*syntax.FuncType)
	if !ok {
		return nil, errors.WithHint(
			a.errorf(s.Pos, "global %s must have a function type", s.Name),
			"only function-typed variables can be declared at the top level")
	}
	declare, err := a.function(s.Name, fn.Params, fn.Result, s.Pos)
	if err != nil {
		return nil, err
	}
	return &decl.FunctionObject{Declare: declare}, nil
}

func unparen(t syntax.TypeExpr) syntax.TypeExpr {
	for {
		p, ok := t.(*syntax.ParenType)
		if !ok {
			return t
		}
		t = p.Inner
	}
}
