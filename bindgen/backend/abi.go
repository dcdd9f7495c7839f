package backend

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/idlbind/bindgen/decl"
	"github.com/broady/idlbind/bindgen/naming"
)

// EntryKind is the kind of one function-pointer slot of a class's public
// method table.
type EntryKind int

const (
	EntryGetter EntryKind = iota
	EntrySetter
	EntryMethod
)

// Entry is one slot of a public method table.
type Entry struct {
	Kind EntryKind

	// Name is the slot's member name. Overloads after the first are
	// renamed <name>With<ArgA>And<ArgB>.
	Name string

	// Prop is set for getters and setters, Func for methods.
	Prop *decl.PropsDeclaration
	Func *decl.FunctionDeclaration
}

// Table is the layout shared by the plugin C-ABI and Rust FFI surfaces of
// one interface. Both render the slots in this order, followed by release
// and dynamic_to, so the two method structs stay layout-compatible.
type Table struct {
	Class       *decl.ClassObject
	Entries     []Entry
	Descendants []string
}

// Methods returns the method slots.
func (t *Table) Methods() []Entry {
	var out []Entry
	for _, e := range t.Entries {
		if e.Kind == EntryMethod {
			out = append(out, e)
		}
	}
	return out
}

// NewTable computes c's public method table: a getter per aggregated
// property, a setter per writable one, then one slot per overload. Static
// members and members in opts.SkipMembers are left out.
func NewTable(sess *decl.Session, c *decl.ClassObject, opts Options) (*Table, error) {
	if c.Kind != decl.ClassInterface {
		return nil, errors.Newf("%s is a %s, not an interface", c.Name, c.Kind)
	}
	members, err := Aggregate(sess, c)
	if err != nil {
		return nil, err
	}

	t := &Table{Class: c, Descendants: Descendants(sess, c.Name)}
	for _, p := range members.Props {
		if p.Mode.Static || opts.Skipped(c.Name, p.Name) {
			continue
		}
		t.Entries = append(t.Entries, Entry{Kind: EntryGetter, Name: p.Name, Prop: p})
		if !p.Readonly {
			t.Entries = append(t.Entries, Entry{Kind: EntrySetter, Name: p.Name, Prop: p})
		}
	}
	for _, set := range members.Methods {
		if set.First().Mode.Static || opts.Skipped(c.Name, set.Name) {
			continue
		}
		for i, fn := range set.Overloads {
			name := set.Name
			if i > 0 {
				name = OverloadName(fn)
			}
			t.Entries = append(t.Entries, Entry{Kind: EntryMethod, Name: name, Func: fn})
		}
	}
	return t, nil
}

// OverloadName returns the disambiguated name of a non-first overload:
// "fillWithXAndY" for fill(x, y).
func OverloadName(fn *decl.FunctionDeclaration) string {
	parts := make([]string, len(fn.Args))
	for i, a := range fn.Args {
		parts[i] = naming.UpperFirst(a.Name)
	}
	return fn.Name + "With" + strings.Join(parts, "And")
}
