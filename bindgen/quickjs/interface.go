package quickjs

import (
	"github.com/cockroachdb/errors"

	"github.com/broady/idlbind/bindgen/backend"
	"github.com/broady/idlbind/bindgen/decl"
	"github.com/broady/idlbind/bindgen/naming"
	"github.com/broady/idlbind/bindgen/typeinfo"
)

type interfaceView struct {
	ClassName string
	QJSName   string

	Attributes []*attributeView
	Methods    []*methodView
	Statics    []*methodView

	Constructor *bodyView
	Indexed     *indexedView

	WrapperTypeInfo []string
}

// attributeView is one accessor property. Kind selects the getter/setter
// shape: "plain", "static", "native" or "array_proto".
type attributeView struct {
	Name     string
	Ident    string
	Key      string
	Kind     string
	Readonly bool

	Converter  string
	CoreType   string
	Setter     string
	FromNative string
	ToNative   string
	Flush      string
}

// AllMethods returns the prototype methods followed by the static ones.
func (v *interfaceView) AllMethods() []*methodView {
	return append(append([]*methodView(nil), v.Methods...), v.Statics...)
}

func (a *attributeView) GetterName() string { return a.Ident + "AttributeGetCallback" }
func (a *attributeView) SetterName() string { return a.Ident + "AttributeSetCallback" }

// methodView is one installed function. Overloaded methods carry one body
// per overload and dispatch on argc.
type methodView struct {
	Name      string
	Symbol    string
	Argc      int
	Body      *bodyView
	Overloads []*bodyView
}

type indexedView struct {
	Numeric   bool
	Readonly  bool
	Converter string
	CoreType  string
}

func (g *Generator) interfaceView(className string, c *decl.ClassObject) (*interfaceView, error) {
	members, err := backend.Aggregate(g.res.Session(), c)
	if err != nil {
		return nil, err
	}

	v := &interfaceView{
		ClassName: className,
		QJSName:   naming.QJSClassName(className),
	}

	for _, p := range members.Props {
		a, err := g.attribute(className, p)
		if err != nil {
			return nil, errors.Wrapf(err, "%s.%s", c.Name, p.Name)
		}
		v.Attributes = append(v.Attributes, a)
	}

	for _, set := range members.Methods {
		m, err := g.method(className, set)
		if err != nil {
			return nil, errors.Wrapf(err, "%s.%s", c.Name, set.Name)
		}
		if set.First().Mode.Static {
			v.Statics = append(v.Statics, m)
		} else {
			v.Methods = append(v.Methods, m)
		}
	}

	if c.Constructor != nil {
		if v.Constructor, err = g.body(className, c.Constructor, callConstructor); err != nil {
			return nil, errors.Wrapf(err, "%s constructor", c.Name)
		}
	}

	if c.Indexed != nil {
		if v.Indexed, err = g.indexed(c.Indexed); err != nil {
			return nil, errors.Wrapf(err, "%s index signature", c.Name)
		}
	}

	v.WrapperTypeInfo = wrapperTypeInfo(className, c)
	return v, nil
}

func (g *Generator) attribute(className string, p *decl.PropsDeclaration) (*attributeView, error) {
	ident := naming.CppIdentifier(p.Name)
	a := &attributeView{
		Name:     p.Name,
		Ident:    ident,
		Readonly: p.Readonly,
		Key:      "defined_properties::k" + ident + ".Impl()",
		Kind:     "plain",
		Setter:   "set" + naming.UpperFirst(ident),
	}
	if p.IsSymbol {
		a.Key = "JS_ATOM_" + ident
	}

	if typeinfo.IsTag(p.Type, decl.ArgArrayProtoMethods) {
		a.Kind = "array_proto"
		a.Readonly = true
		return a, nil
	}

	var err error
	if a.Converter, err = g.converter(p.Type); err != nil {
		return nil, err
	}
	if a.CoreType, err = g.res.Core(p.Type); err != nil {
		return nil, err
	}

	switch {
	case p.Mode.NativeImpl:
		a.Kind = "native"
		a.Flush = flushReason(p.Mode)
		if a.FromNative, err = fromNativeValue(p.Type, "result"); err != nil {
			return nil, err
		}
		if a.ToNative, err = nativeValue(p.Type, "v"); err != nil {
			return nil, err
		}
	case p.Mode.Static:
		a.Kind = "static"
	}
	return a, nil
}

func (g *Generator) method(className string, set *backend.OverloadSet) (*methodView, error) {
	first := set.First()
	m := &methodView{
		Name:   set.Name,
		Symbol: "qjs_" + naming.CppIdentifier(set.Name),
		Argc:   len(first.Args),
	}
	kind := callInstance
	if first.Mode.Static {
		kind = callStatic
	}

	if !set.IsOverloaded() {
		b, err := g.body(className, first, kind)
		if err != nil {
			return nil, err
		}
		m.Body = b
		return m, nil
	}

	for i, fn := range set.Overloads {
		b, err := g.body(className, fn, kind)
		if err != nil {
			return nil, errors.Wrapf(err, "overload %d", i)
		}
		b.Index = i
		m.Overloads = append(m.Overloads, b)
	}
	return m, nil
}

func (g *Generator) indexed(idx *decl.IndexedProperty) (*indexedView, error) {
	v := &indexedView{
		Numeric:  idx.Key == decl.IndexNumber,
		Readonly: idx.Readonly,
	}
	var err error
	if v.Converter, err = g.converter(idx.Type); err != nil {
		return nil, err
	}
	if v.CoreType, err = g.res.Core(idx.Type); err != nil {
		return nil, err
	}
	return v, nil
}

// wrapperTypeInfo lists the WrapperTypeInfo initializer entries: class id,
// name, parent, constructor and the indexed callbacks.
func wrapperTypeInfo(className string, c *decl.ClassObject) []string {
	qjs := naming.QJSClassName(className)
	parent := "nullptr"
	if c.Parent != "" {
		parent = c.Parent + "::GetStaticWrapperTypeInfo()"
	}
	ctor := "nullptr"
	if c.Constructor != nil {
		ctor = qjs + "::ConstructorCallback"
	}
	entries := []string{naming.ClassID(className), `"` + className + `"`, parent, ctor}

	idx := c.Indexed
	if idx == nil {
		return entries
	}
	orNull := func(readonly bool, name string) string {
		if readonly {
			return "nullptr"
		}
		return qjs + "::" + name
	}
	if idx.Key == decl.IndexNumber {
		entries = append(entries,
			qjs+"::IndexedPropertyGetterCallback",
			orNull(idx.Readonly, "IndexedPropertySetterCallback"),
			"nullptr",
			"nullptr")
	} else {
		entries = append(entries,
			"nullptr",
			"nullptr",
			qjs+"::StringPropertyGetterCallback",
			orNull(idx.Readonly, "StringPropertySetterCallback"))
	}
	return append(entries,
		qjs+"::PropertyCheckerCallback",
		qjs+"::PropertyEnumerateCallback",
		orNull(idx.Readonly, "StringPropertyDeleterCallback"))
}
