package backend

import (
	"github.com/cockroachdb/errors"

	"github.com/broady/idlbind/bindgen/decl"
)

// OverloadSet groups the methods sharing a name.
type OverloadSet struct {
	Name      string
	Overloads []*decl.FunctionDeclaration
}

// IsOverloaded reports whether the set has more than one candidate.
func (s *OverloadSet) IsOverloaded() bool { return len(s.Overloads) > 1 }

// First returns the first declared overload, the dispatch fallback.
func (s *OverloadSet) First() *decl.FunctionDeclaration { return s.Overloads[0] }

// Members is a class's own members merged with its mixins' members.
type Members struct {
	Props   []*decl.PropsDeclaration
	Methods []*OverloadSet
}

// Method returns the overload set for name, or nil.
func (m *Members) Method(name string) *OverloadSet {
	for _, s := range m.Methods {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Aggregate merges c's members with those of its mixins, in order: own
// members first, then each mixin's in heritage order. Properties are
// de-duplicated by name, first wins. Methods sharing a name form one
// overload set; two overloads of the same arity are an error.
func Aggregate(sess *decl.Session, c *decl.ClassObject) (*Members, error) {
	a := &aggregator{
		sess:    sess,
		members: &Members{},
		props:   make(map[string]bool),
		methods: make(map[string]*OverloadSet),
		visited: make(map[string]bool),
	}
	if err := a.add(c); err != nil {
		return nil, err
	}
	for _, set := range a.members.Methods {
		if err := checkArities(c.Name, set); err != nil {
			return nil, err
		}
	}
	return a.members, nil
}

type aggregator struct {
	sess    *decl.Session
	members *Members
	props   map[string]bool
	methods map[string]*OverloadSet
	visited map[string]bool
}

func (a *aggregator) add(c *decl.ClassObject) error {
	if a.visited[c.Name] {
		return nil
	}
	a.visited[c.Name] = true

	for _, p := range c.Props {
		if a.props[p.Name] {
			continue
		}
		a.props[p.Name] = true
		a.members.Props = append(a.members.Props, p)
	}
	for _, m := range c.Methods {
		set, ok := a.methods[m.Name]
		if !ok {
			set = &OverloadSet{Name: m.Name}
			a.methods[m.Name] = set
			a.members.Methods = append(a.members.Methods, set)
		}
		set.Overloads = append(set.Overloads, m)
	}

	for _, name := range c.Mixins {
		mixin, ok := a.sess.Class(name)
		if !ok {
			return errors.WithDetailf(
				errors.Newf("mixin %q of %s is not declared", name, c.Name),
				"declared at %s", c.Pos)
		}
		if err := a.add(mixin); err != nil {
			return err
		}
	}
	return nil
}

func checkArities(className string, set *OverloadSet) error {
	seen := make(map[int]bool, len(set.Overloads))
	for _, fn := range set.Overloads {
		n := len(fn.Args)
		if seen[n] {
			return errors.WithDetailf(
				errors.Newf("%s.%s has more than one overload taking %d arguments", className, set.Name, n),
				"declared at %s", fn.Pos)
		}
		seen[n] = true
	}
	return nil
}

// Ancestors returns c's parent chain, nearest first.
func Ancestors(sess *decl.Session, c *decl.ClassObject) ([]*decl.ClassObject, error) {
	var out []*decl.ClassObject
	seen := map[string]bool{c.Name: true}
	for cur := c; cur.Parent != ""; {
		parent, ok := sess.Class(cur.Parent)
		if !ok {
			return nil, errors.Newf("parent %q of %s is not declared", cur.Parent, cur.Name)
		}
		if seen[parent.Name] {
			return nil, errors.Newf("inheritance cycle through %s", parent.Name)
		}
		seen[parent.Name] = true
		out = append(out, parent)
		cur = parent
	}
	return out, nil
}

// Descendants returns every transitive subclass of name in pre-order,
// each listed once.
func Descendants(sess *decl.Session, name string) []string {
	var out []string
	seen := map[string]bool{name: true}
	var walk func(string)
	walk = func(n string) {
		for _, child := range sess.Subclasses(n) {
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, child)
			walk(child)
		}
	}
	walk(name)
	return out
}

// Types returns every type mentioned by m's properties and methods, in
// first-appearance order: property types, then each overload's arguments
// and return type.
func (m *Members) Types() []decl.Type {
	var out []decl.Type
	for _, p := range m.Props {
		out = append(out, p.Type)
	}
	for _, set := range m.Methods {
		for _, fn := range set.Overloads {
			out = append(out, FunctionTypes(fn)...)
		}
	}
	return out
}

// FunctionTypes returns fn's argument types followed by its return type.
func FunctionTypes(fn *decl.FunctionDeclaration) []decl.Type {
	out := make([]decl.Type, 0, len(fn.Args)+1)
	for _, a := range fn.Args {
		out = append(out, a.Type)
	}
	return append(out, fn.Type)
}

// Walk calls visit for t and every type nested in it, parents first.
func Walk(t decl.Type, visit func(decl.Type)) {
	visit(t)
	switch t := t.(type) {
	case *decl.Array:
		Walk(t.Element, visit)
	case *decl.Union:
		for _, m := range t.Members {
			Walk(m, visit)
		}
	}
}

// References returns the distinct class names referenced anywhere in types,
// in first-appearance order.
func References(types []decl.Type) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range types {
		Walk(t, func(t decl.Type) {
			if ref, ok := t.(*decl.Reference); ok && !seen[ref.Name] {
				seen[ref.Name] = true
				out = append(out, ref.Name)
			}
		})
	}
	return out
}
