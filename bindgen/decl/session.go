package decl

import (
	"slices"

	"github.com/cockroachdb/errors"
)

// ErrFrozen is returned by writes to a frozen Session.
var ErrFrozen = errors.New("session is frozen")

// Defined holds the names collected for the defined_properties tables.
type Defined struct {
	Properties []string `json:"properties" yaml:"properties"`
	Interfaces []string `json:"interfaces" yaml:"interfaces"`
	Files      []string `json:"files" yaml:"files"`
}

// Session owns the registries for one compilation run.
//
// A Session is filled sequentially during analysis and then frozen. Writes
// are not safe for concurrent use; once frozen, all reads are.
type Session struct {
	classes    map[string]*ClassObject
	order      []string
	subclasses map[string][]string

	unions    []*Union
	unionKeys map[string]int

	properties map[string]struct{}
	interfaces map[string]struct{}
	files      map[string]struct{}

	frozen bool
}

// NewSession creates an empty Session.
func NewSession() *Session {
	return &Session{
		classes:    make(map[string]*ClassObject),
		subclasses: make(map[string][]string),
		unionKeys:  make(map[string]int),
		properties: make(map[string]struct{}),
		interfaces: make(map[string]struct{}),
		files:      make(map[string]struct{}),
	}
}

// AddClass registers c and records it as a subclass of its parent.
func (s *Session) AddClass(c *ClassObject) error {
	if s.frozen {
		return ErrFrozen
	}
	if c == nil || c.Name == "" {
		return errors.New("class has no name")
	}
	if prev, ok := s.classes[c.Name]; ok {
		return errors.WithDetailf(
			errors.Newf("duplicate declaration of %q", c.Name),
			"first declared at %s", prev.Pos)
	}
	s.classes[c.Name] = c
	s.order = append(s.order, c.Name)
	if c.Parent != "" {
		s.subclasses[c.Parent] = append(s.subclasses[c.Parent], c.Name)
	}
	return nil
}

// AddUnion registers the shape of u unless an identical shape is already
// present. Shapes with fewer than two members are not unions and are
// ignored. It reports whether a new shape was added.
func (s *Session) AddUnion(u *Union) (bool, error) {
	if s.frozen {
		return false, ErrFrozen
	}
	shape := u.Shape()
	if len(shape.Members) < 2 {
		return false, nil
	}
	key := shape.String()
	if _, ok := s.unionKeys[key]; ok {
		return false, nil
	}
	s.unionKeys[key] = len(s.unions)
	s.unions = append(s.unions, shape)
	return true, nil
}

// DefineProperty records a member name for the defined_properties table.
func (s *Session) DefineProperty(name string) error {
	return s.define(s.properties, name)
}

// DefineInterface records an installed interface name.
func (s *Session) DefineInterface(name string) error {
	return s.define(s.interfaces, name)
}

// DefineFile records a unit identifier.
func (s *Session) DefineFile(name string) error {
	return s.define(s.files, name)
}

func (s *Session) define(set map[string]struct{}, name string) error {
	if s.frozen {
		return ErrFrozen
	}
	set[name] = struct{}{}
	return nil
}

// Freeze makes the session read-only.
func (s *Session) Freeze() { s.frozen = true }

// Frozen reports whether Freeze has been called.
func (s *Session) Frozen() bool { return s.frozen }

// Class looks up a registered class by name.
func (s *Session) Class(name string) (*ClassObject, bool) {
	c, ok := s.classes[name]
	return c, ok
}

// Classes returns all registered classes in registration order.
func (s *Session) Classes() []*ClassObject {
	out := make([]*ClassObject, len(s.order))
	for i, name := range s.order {
		out[i] = s.classes[name]
	}
	return out
}

// Subclasses returns the direct children of name in registration order.
func (s *Session) Subclasses(name string) []string {
	return slices.Clone(s.subclasses[name])
}

// Unions returns the distinct union shapes in registration order.
func (s *Session) Unions() []*Union {
	return slices.Clone(s.unions)
}

// Defined returns the sorted defined-name sets.
func (s *Session) Defined() Defined {
	return Defined{
		Properties: sortedKeys(s.properties),
		Interfaces: sortedKeys(s.interfaces),
		Files:      sortedKeys(s.files),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
