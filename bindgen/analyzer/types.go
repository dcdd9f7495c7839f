package analyzer

import (
	"github.com/broady/idlbind/bindgen/decl"
	"github.com/broady/idlbind/bindgen/syntax"
)

var keywordTags = map[string]decl.ArgumentKind{
	"string":    decl.ArgString,
	"number":    decl.ArgDouble,
	"boolean":   decl.ArgBoolean,
	"any":       decl.ArgAny,
	"object":    decl.ArgObject,
	"void":      decl.ArgVoid,
	"null":      decl.ArgNull,
	"undefined": decl.ArgUndefined,
}

var referenceTags = map[string]decl.ArgumentKind{
	"Function":                decl.ArgFunction,
	"Promise":                 decl.ArgPromise,
	"int32":                   decl.ArgInt32,
	"int64":                   decl.ArgInt64,
	"double":                  decl.ArgDouble,
	"JSArrayProtoMethod":      decl.ArgArrayProtoMethods,
	"LegacyNullToEmptyString": decl.ArgLegacyString,
}

// typeOf classifies a type expression. Wrapper generics record their
// annotation in mode and classify the wrapped type.
func (a *analyzer) typeOf(t syntax.TypeExpr, mode *decl.TypeMode) (decl.Type, error) {
	switch t := t.(type) {
	case nil:
		return decl.Prim(decl.ArgAny), nil

	case *syntax.KeywordType:
		if tag, ok := keywordTags[t.Name]; ok {
			return decl.Prim(tag), nil
		}
		return decl.Prim(decl.ArgAny), nil

	case *syntax.LiteralType:
		return decl.Prim(decl.ArgAny), nil

	case *syntax.ParenType:
		return a.typeOf(t.Inner, mode)

	case *syntax.FuncType:
		return decl.Prim(decl.ArgFunction), nil

	case *syntax.ArrayType:
		elem, err := a.typeOf(t.Elem, mode)
		if err != nil {
			return nil, err
		}
		return decl.ArrayOf(elem), nil

	case *syntax.UnionType:
		u, err := a.unionOf(t, mode)
		if err != nil {
			return nil, err
		}
		a.collectUnion(u)
		return u, nil

	case *syntax.TypeRef:
		return a.typeRef(t, mode)
	}
	return nil, a.errorf(t.Position(), "unsupported type expression %T", t)
}

func (a *analyzer) typeRef(t *syntax.TypeRef, mode *decl.TypeMode) (decl.Type, error) {
	switch t.Name {
	case "NewObject":
		mode.NewObject = true
		return a.wrapped(t, mode)
	case "DartImpl":
		mode.NativeImpl = true
		return a.wrapped(t, mode)
	case "DependentsOnLayout":
		mode.LayoutDependent = true
		return a.wrapped(t, mode)
	case "StaticMember":
		mode.Static = true
		return a.wrapped(t, mode)
	case "ImplementedAs":
		if len(t.Args) != 2 {
			return nil, a.errorf(t.Pos, "ImplementedAs requires a type and an alternate name")
		}
		name, ok := t.Args[1].(*syntax.LiteralType)
		if !ok || name.Kind != syntax.String {
			return nil, a.errorf(t.Args[1].Position(), "ImplementedAs name must be a string literal")
		}
		mode.SecondaryName = name.Value
		return a.typeOf(t.Args[0], mode)
	case "Array":
		elem, err := a.wrapped(t, mode)
		if err != nil {
			return nil, err
		}
		return decl.ArrayOf(elem), nil
	}

	if tag, ok := referenceTags[t.Name]; ok {
		return decl.Prim(tag), nil
	}
	if len(t.Args) > 0 {
		return nil, a.errorf(t.Pos, "unsupported generic type %s", t.Name)
	}
	return decl.Ref(t.Name), nil
}

func (a *analyzer) wrapped(t *syntax.TypeRef, mode *decl.TypeMode) (decl.Type, error) {
	if len(t.Args) != 1 {
		return nil, a.errorf(t.Pos, "%s requires exactly one type argument", t.Name)
	}
	return a.typeOf(t.Args[0], mode)
}

// unionOf classifies the members of t. Directly nested unions, with or
// without parentheses, are spliced in place and are not collected on
// their own.
func (a *analyzer) unionOf(t *syntax.UnionType, mode *decl.TypeMode) (*decl.Union, error) {
	u := &decl.Union{}
	for _, m := range t.Members {
		inner := m
		for {
			p, ok := inner.(*syntax.ParenType)
			if !ok {
				break
			}
			inner = p.Inner
		}
		if nested, ok := inner.(*syntax.UnionType); ok {
			nu, err := a.unionOf(nested, mode)
			if err != nil {
				return nil, err
			}
			u.Members = append(u.Members, nu.Members...)
			continue
		}
		member, err := a.typeOf(m, mode)
		if err != nil {
			return nil, err
		}
		u.Members = append(u.Members, member)
	}
	return u.Flatten(), nil
}

// collectUnion records u's shape when more than one member remains after
// dropping null.
func (a *analyzer) collectUnion(u *decl.Union) {
	shape := u.Shape()
	if len(shape.Members) < 2 {
		return
	}
	key := shape.String()
	if a.unions[key] {
		return
	}
	a.unions[key] = true
	a.result.Unions = append(a.result.Unions, shape)
}
