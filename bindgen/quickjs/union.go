package quickjs

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/broady/idlbind/bindgen/backend"
	"github.com/broady/idlbind/bindgen/decl"
	"github.com/broady/idlbind/bindgen/naming"
	"github.com/broady/idlbind/bindgen/typeinfo"
)

type unionView struct {
	ClassName string
	FileName  string
	Guard     string
	Includes  []string
	Members   []*unionMember
}

type unionMember struct {
	Token     string
	Field     string
	Enum      string
	CoreType  string
	ParamType string
	Converter string
	Check     string
}

func (g *Generator) unionView(u *decl.Union) (*unionView, error) {
	file := naming.UnionFileName(u)
	v := &unionView{
		ClassName: naming.UnionClassName(u),
		FileName:  file,
		Guard:     "BRIDGE_" + naming.UpperSnakeCase(file) + "_H",
	}

	var catchAll []*unionMember
	for _, t := range naming.UnionMembers(u) {
		token := naming.UnionMemberName(t)
		m := &unionMember{
			Token: token,
			Field: "member_" + naming.SnakeCase(token) + "_",
			Enum:  "k" + token,
		}
		var err error
		if m.CoreType, err = g.res.Core(t); err != nil {
			return nil, errors.Wrapf(err, "union %s", u)
		}
		if m.Converter, err = g.converter(t); err != nil {
			return nil, errors.Wrapf(err, "union %s", u)
		}
		m.ParamType = m.CoreType
		if typeinfo.IsString(t) {
			m.ParamType = "const AtomicString&"
		}
		m.Check, err = g.typeCheck(t)
		if err != nil {
			return nil, errors.Wrapf(err, "union %s", u)
		}
		if m.Check == "true" {
			catchAll = append(catchAll, m)
			continue
		}
		v.Members = append(v.Members, m)
	}
	v.Members = append(v.Members, catchAll...)
	includes, err := g.includes(naming.UnionMembers(u), "")
	if err != nil {
		return nil, errors.Wrapf(err, "union %s", u)
	}
	v.Includes = includes
	return v, nil
}

// typeCheck returns a C++ expression testing whether the JSValue `value`
// holds a t.
func (g *Generator) typeCheck(t decl.Type) (string, error) {
	class, err := typeinfo.Classify(t)
	if err != nil {
		return "", err
	}
	switch class {
	case typeinfo.ClassString:
		return "JS_IsString(value)", nil
	case typeinfo.ClassScalar:
		if typeinfo.IsTag(t, decl.ArgBoolean) {
			return "JS_IsBool(value)", nil
		}
		return "JS_IsNumber(value)", nil
	case typeinfo.ClassSequence:
		return "JS_IsArray(ctx, value)", nil
	case typeinfo.ClassHandle:
		c, err := g.res.Lookup(t)
		if err != nil {
			return "", err
		}
		if c.Kind == decl.ClassDictionary {
			return "JS_IsObject(value)", nil
		}
		return "JS_IsObject(value) && " + naming.QJSClassName(c.Name) + "::HasInstance(ExecutingContext::From(ctx), value)", nil
	}
	switch {
	case typeinfo.IsTag(t, decl.ArgFunction):
		return "JS_IsFunction(ctx, value)", nil
	case typeinfo.IsTag(t, decl.ArgObject):
		return "JS_IsObject(value)", nil
	case typeinfo.IsTag(t, decl.ArgNull):
		return "JS_IsNull(value)", nil
	case typeinfo.IsTag(t, decl.ArgUndefined):
		return "JS_IsUndefined(value)", nil
	}
	return "true", nil
}

// includes returns the binding headers needed by code mentioning types:
// one per referenced class other than self and one per union shape. A
// reference to an undeclared class is an error.
func (g *Generator) includes(types []decl.Type, self string) ([]string, error) {
	var out []string
	var missing error
	seen := make(map[string]bool)
	add := func(h string) {
		if !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	for _, t := range types {
		backend.Walk(t, func(t decl.Type) {
			switch t := t.(type) {
			case *decl.Reference:
				if t.Name == self {
					return
				}
				c, err := g.res.Lookup(t)
				if err != nil {
					if missing == nil {
						missing = err
					}
					return
				}
				add("qjs_" + backend.UnitOf(c) + ".h")
			case *decl.Union:
				if typeinfo.IsUnionType(t) {
					add(naming.UnionFileName(typeinfo.TrimNull(t).(*decl.Union)) + ".h")
				}
			}
		})
	}
	if missing != nil {
		return nil, missing
	}
	slices.Sort(out)
	return out, nil
}
