package syntax

// File is a parsed IDL unit.
type File struct {
	Name  string
	Stmts []Stmt
}

// Stmt is a top-level statement.
type Stmt interface {
	Position() Pos
	stmtNode()
}

// Decorator is a marker such as @Dictionary().
type Decorator struct {
	Pos  Pos
	Name string
	Args []string
}

// InterfaceDecl is `interface Name extends A, B { ... }`.
type InterfaceDecl struct {
	Pos        Pos
	Decorators []*Decorator
	Name       string
	Extends    []string
	Members    []Member
}

// VarDecl is `const name: Type`.
type VarDecl struct {
	Pos        Pos
	Decorators []*Decorator
	Keyword    string
	Name       string
	Type       TypeExpr
}

// TypeAlias is `type Name = Type`.
type TypeAlias struct {
	Pos  Pos
	Name string
	Type TypeExpr
}

// ImportDecl is any import statement.
type ImportDecl struct {
	Pos  Pos
	From string
}

func (s *InterfaceDecl) Position() Pos { return s.Pos }
func (s *VarDecl) Position() Pos       { return s.Pos }
func (s *TypeAlias) Position() Pos     { return s.Pos }
func (s *ImportDecl) Position() Pos    { return s.Pos }

func (*InterfaceDecl) stmtNode() {}
func (*VarDecl) stmtNode()       {}
func (*TypeAlias) stmtNode()     {}
func (*ImportDecl) stmtNode()    {}

// Member is an interface member signature.
type Member interface {
	Position() Pos
	memberNode()
}

// PropNameKind identifies the syntactic form of a member name.
type PropNameKind int

const (
	NameIdent PropNameKind = iota
	NameString
	NameNumber
	NameComputed
)

// PropName is a member name. Computed names keep their dotted path in Path.
type PropName struct {
	Kind PropNameKind
	Text string
	Path []string
}

// PropertySig is `[readonly] name[?]: Type`. Type is nil when omitted.
type PropertySig struct {
	Pos      Pos
	Name     PropName
	Readonly bool
	Optional bool
	Type     TypeExpr
}

// MethodSig is `name[?](params): Result`. Result is nil when omitted.
type MethodSig struct {
	Pos      Pos
	Name     PropName
	Optional bool
	Params   []*Param
	Result   TypeExpr
}

// IndexSig is `[readonly] [key: KeyType]: Type`.
type IndexSig struct {
	Pos      Pos
	Readonly bool
	KeyName  string
	KeyType  TypeExpr
	Type     TypeExpr
}

// ConstructSig is `new(params): Result`.
type ConstructSig struct {
	Pos    Pos
	Params []*Param
	Result TypeExpr
}

func (m *PropertySig) Position() Pos  { return m.Pos }
func (m *MethodSig) Position() Pos    { return m.Pos }
func (m *IndexSig) Position() Pos     { return m.Pos }
func (m *ConstructSig) Position() Pos { return m.Pos }

func (*PropertySig) memberNode()  {}
func (*MethodSig) memberNode()    {}
func (*IndexSig) memberNode()     {}
func (*ConstructSig) memberNode() {}

// Param is a formal parameter.
type Param struct {
	Pos      Pos
	Name     string
	Optional bool
	Rest     bool
	Type     TypeExpr
}

// TypeExpr is a type expression.
type TypeExpr interface {
	Position() Pos
	typeNode()
}

// KeywordType is a built-in keyword type such as string or void.
type KeywordType struct {
	Pos  Pos
	Name string
}

// TypeRef is a named type with optional type arguments.
type TypeRef struct {
	Pos  Pos
	Name string
	Args []TypeExpr
}

// ArrayType is `Elem[]`.
type ArrayType struct {
	Pos  Pos
	Elem TypeExpr
}

// UnionType is `A | B | ...`.
type UnionType struct {
	Pos     Pos
	Members []TypeExpr
}

// ParenType is `(Inner)`.
type ParenType struct {
	Pos   Pos
	Inner TypeExpr
}

// FuncType is `(params) => Result`.
type FuncType struct {
	Pos    Pos
	Params []*Param
	Result TypeExpr
}

// LiteralType is a string, number or boolean literal used as a type.
type LiteralType struct {
	Pos   Pos
	Kind  TokenKind
	Value string
}

func (t *KeywordType) Position() Pos { return t.Pos }
func (t *TypeRef) Position() Pos     { return t.Pos }
func (t *ArrayType) Position() Pos   { return t.Pos }
func (t *UnionType) Position() Pos   { return t.Pos }
func (t *ParenType) Position() Pos   { return t.Pos }
func (t *FuncType) Position() Pos    { return t.Pos }
func (t *LiteralType) Position() Pos { return t.Pos }

func (*KeywordType) typeNode() {}
func (*TypeRef) typeNode()     {}
func (*ArrayType) typeNode()   {}
func (*UnionType) typeNode()   {}
func (*ParenType) typeNode()   {}
func (*FuncType) typeNode()    {}
func (*LiteralType) typeNode() {}

// keywordTypes are the names parsed as KeywordType.
var keywordTypes = map[string]bool{
	"string":    true,
	"number":    true,
	"boolean":   true,
	"any":       true,
	"object":    true,
	"void":      true,
	"null":      true,
	"undefined": true,
	"unknown":   true,
	"never":     true,
	"symbol":    true,
	"bigint":    true,
}
