package quickjs

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/idlbind/bindgen/decl"
	"github.com/broady/idlbind/bindgen/naming"
	"github.com/broady/idlbind/bindgen/typeinfo"
)

type dictionaryView struct {
	ClassName string
	Base      string
	HasParent bool
	Members   []*dictionaryMember
	Init      string
}

type dictionaryMember struct {
	Name      string
	Ident     string
	CoreType  string
	Converter string
	Setter    string
	Has       string
}

func (g *Generator) dictionaryView(className string, c *decl.ClassObject) (*dictionaryView, error) {
	v := &dictionaryView{
		ClassName: className,
		Base:      "DictionaryBase",
	}
	if c.Parent != "" {
		if _, ok := g.res.Session().Class(c.Parent); !ok {
			return nil, errors.Newf("parent %q of dictionary %s is not declared", c.Parent, c.Name)
		}
		v.Base = c.Parent
		v.HasParent = true
	}

	var inits []string
	for _, p := range c.Props {
		ident := naming.CppIdentifier(p.Name)
		m := &dictionaryMember{
			Name:   p.Name,
			Ident:  ident,
			Setter: "set" + naming.UpperFirst(ident),
			Has:    "has" + naming.UpperFirst(ident),
		}
		var err error
		if m.CoreType, err = g.res.Core(p.Type); err != nil {
			return nil, errors.Wrapf(err, "%s.%s", c.Name, p.Name)
		}
		if m.Converter, err = g.converter(p.Type); err != nil {
			return nil, errors.Wrapf(err, "%s.%s", c.Name, p.Name)
		}
		if p.Optional && !typeinfo.IsNullable(p.Type) {
			m.Converter = "IDLOptional<" + m.Converter + ">"
		}
		if typeinfo.IsTag(p.Type, decl.ArgBoolean) {
			inits = append(inits, ident+"_(false)")
		}
		v.Members = append(v.Members, m)
	}
	if len(inits) > 0 {
		v.Init = ": " + strings.Join(inits, ", ")
	}
	return v, nil
}
