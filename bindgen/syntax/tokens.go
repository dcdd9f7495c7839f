package syntax

import "fmt"

// TokenKind identifies a lexical token.
type TokenKind int

const (
	EOF TokenKind = iota

	// Punctuators
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	LAngle
	RAngle
	Semi
	Comma
	Dot
	Colon
	Question
	Pipe
	Amp
	At
	Equals
	Arrow    // =>
	Ellipsis // ...

	// Names and literals. Keywords are lexed as Name; the parser decides
	// from context whether a name acts as a keyword.
	Name
	String
	Number
)

var tokenKindNames = [...]string{
	EOF:      "end of file",
	LParen:   "'('",
	RParen:   "')'",
	LBracket: "'['",
	RBracket: "']'",
	LBrace:   "'{'",
	RBrace:   "'}'",
	LAngle:   "'<'",
	RAngle:   "'>'",
	Semi:     "';'",
	Comma:    "','",
	Dot:      "'.'",
	Colon:    "':'",
	Question: "'?'",
	Pipe:     "'|'",
	Amp:      "'&'",
	At:       "'@'",
	Equals:   "'='",
	Arrow:    "'=>'",
	Ellipsis: "'...'",
	Name:     "identifier",
	String:   "string literal",
	Number:   "number literal",
}

// String returns a user-facing description used in diagnostics.
func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return fmt.Sprintf("token(%d)", int(k))
	}
	return tokenKindNames[k]
}

// Pos is a 1-based line and column.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// Token is one lexical token.
type Token struct {
	Kind TokenKind

	// Text is the source text of the token. For String tokens it is the
	// unquoted value.
	Text string

	Pos Pos
}

// Is reports whether t is a Name with the given text.
func (t Token) Is(keyword string) bool {
	return t.Kind == Name && t.Text == keyword
}

// Describe returns the token as it should appear in an error message.
func (t Token) Describe() string {
	switch t.Kind {
	case EOF:
		return t.Kind.String()
	case String:
		return fmt.Sprintf("%q", t.Text)
	default:
		return fmt.Sprintf("'%s'", t.Text)
	}
}
