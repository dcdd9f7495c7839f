// Package syntax implements the lexer and recursive-descent parser for the
// IDL declaration dialect.
//
// The dialect is a subset of TypeScript declaration files: decorated
// interface declarations, function-typed variable declarations, type
// aliases and imports. Any other construct is a syntax error.
package syntax

import (
	"fmt"
	"strings"
)

// Error is a lexical or syntax error.
type Error struct {
	File string
	Pos  Pos
	Msg  string
}

func (e *Error) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("%s:%s: %s", e.File, e.Pos, e.Msg)
}

func newError(file string, p Pos, format string, args ...any) error {
	return &Error{File: file, Pos: p, Msg: fmt.Sprintf(format, args...)}
}

// Parse parses one IDL unit.
func Parse(file, src string) (*File, error) {
	tokens, err := Tokenize(file, src)
	if err != nil {
		return nil, err
	}
	p := &parser{file: file, tokens: tokens}
	return p.parseFile()
}

type parser struct {
	file   string
	tokens []Token
	pos    int
}

func (p *parser) peek() Token { return p.peekAt(0) }

func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

// accept consumes the next token if it has the given kind.
func (p *parser) accept(kind TokenKind) bool {
	if p.peek().Kind == kind {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(kind TokenKind) (Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return tok, p.unexpected(tok, kind.String())
	}
	return p.next(), nil
}

func (p *parser) expectName() (Token, error) {
	return p.expect(Name)
}

func (p *parser) unexpected(tok Token, want string) error {
	return newError(p.file, tok.Pos, "unexpected %s, expecting %s", tok.Describe(), want)
}

// File := { Statement }
func (p *parser) parseFile() (*File, error) {
	f := &File{Name: p.file}
	for p.peek().Kind != EOF {
		if p.accept(Semi) {
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			f.Stmts = append(f.Stmts, stmt)
		}
	}
	return f, nil
}

// Statement := { Decorator } { Modifier } ( InterfaceDecl | VarDecl | TypeAlias | Import )
func (p *parser) parseStatement() (Stmt, error) {
	start := p.peek()

	decorators, err := p.parseDecorators()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.Is("export") || tok.Is("declare") {
			p.next()
			continue
		}
		break
	}

	tok := p.peek()
	switch {
	case tok.Is("interface"):
		decl, err := p.parseInterface(decorators)
		if err != nil {
			return nil, err
		}
		decl.Pos = start.Pos
		return decl, nil
	case tok.Is("const") || tok.Is("let") || tok.Is("var"):
		decl, err := p.parseVar()
		if err != nil {
			return nil, err
		}
		decl.Decorators = decorators
		return decl, nil
	case tok.Is("type") && p.peekAt(1).Kind == Name:
		if len(decorators) > 0 {
			return nil, newError(p.file, decorators[0].Pos, "decorators are not allowed on type aliases")
		}
		return p.parseTypeAlias()
	case tok.Is("import"):
		return p.parseImport()
	}
	return nil, p.unexpected(tok, "'interface', variable declaration, 'type' or 'import'")
}

// Decorator := '@' Name [ '(' [ Arg { ',' Arg } ] ')' ]
func (p *parser) parseDecorators() ([]*Decorator, error) {
	var out []*Decorator
	for p.peek().Kind == At {
		at := p.next()
		name, err := p.expectName()
		if err != nil {
			return nil, err
		}
		d := &Decorator{Pos: at.Pos, Name: name.Text}
		if p.accept(LParen) {
			for p.peek().Kind != RParen {
				arg := p.next()
				switch arg.Kind {
				case Name, String, Number:
					d.Args = append(d.Args, arg.Text)
				default:
					return nil, p.unexpected(arg, "decorator argument")
				}
				if !p.accept(Comma) {
					break
				}
			}
			if _, err := p.expect(RParen); err != nil {
				return nil, err
			}
		}
		out = append(out, d)
	}
	return out, nil
}

// InterfaceDecl := 'interface' Name [ TypeParams ] [ 'extends' Heritage { ',' Heritage } ] '{' { Member } '}'
func (p *parser) parseInterface(decorators []*Decorator) (*InterfaceDecl, error) {
	p.next() // interface
	name, err := p.expectName()
	if err != nil {
		return nil, err
	}
	decl := &InterfaceDecl{Decorators: decorators, Name: name.Text}
	if p.peek().Kind == LAngle {
		if err := p.skipTypeParams(); err != nil {
			return nil, err
		}
	}

	if p.peek().Is("extends") {
		p.next()
		for {
			heritage, err := p.parseType()
			if err != nil {
				return nil, err
			}
			ref, ok := heritage.(*TypeRef)
			if !ok {
				return nil, newError(p.file, heritage.Position(), "interface %s can only extend named types", decl.Name)
			}
			decl.Extends = append(decl.Extends, ref.Name)
			if !p.accept(Comma) {
				break
			}
		}
	}

	if _, err := p.expect(LBrace); err != nil {
		return nil, err
	}
	for !p.accept(RBrace) {
		if p.peek().Kind == EOF {
			return nil, p.unexpected(p.peek(), "'}'")
		}
		member, err := p.parseMember()
		if err != nil {
			return nil, err
		}
		decl.Members = append(decl.Members, member)
		if !p.accept(Semi) {
			p.accept(Comma)
		}
	}
	return decl, nil
}

// skipTypeParams consumes `<T, U extends X>` after a declaration name.
func (p *parser) skipTypeParams() error {
	open := p.next()
	depth := 1
	for depth > 0 {
		tok := p.next()
		switch tok.Kind {
		case LAngle:
			depth++
		case RAngle:
			depth--
		case EOF:
			return newError(p.file, open.Pos, "unterminated type parameter list")
		}
	}
	return nil
}

// Member := ConstructSig | IndexSig | PropertySig | MethodSig
func (p *parser) parseMember() (Member, error) {
	start := p.peek()

	if start.Is("new") && p.peekAt(1).Kind == LParen {
		return p.parseConstruct()
	}

	readonly := false
	if start.Is("readonly") && startsPropName(p.peekAt(1)) {
		p.next()
		readonly = true
	}

	if p.peek().Kind == LBracket && p.peekAt(1).Kind == Name && p.peekAt(2).Kind == Colon {
		sig, err := p.parseIndex()
		if err != nil {
			return nil, err
		}
		sig.Pos = start.Pos
		sig.Readonly = readonly
		return sig, nil
	}

	name, err := p.parsePropName()
	if err != nil {
		return nil, err
	}
	optional := p.accept(Question)

	switch p.peek().Kind {
	case LParen, LAngle:
		if readonly {
			return nil, newError(p.file, start.Pos, "readonly modifier is not allowed on methods")
		}
		if p.peek().Kind == LAngle {
			return nil, newError(p.file, p.peek().Pos, "generic methods are not supported")
		}
		params, err := p.parseParams()
		if err != nil {
			return nil, err
		}
		m := &MethodSig{Pos: start.Pos, Name: name, Optional: optional, Params: params}
		if p.accept(Colon) {
			if m.Result, err = p.parseType(); err != nil {
				return nil, err
			}
		}
		return m, nil
	default:
		prop := &PropertySig{Pos: start.Pos, Name: name, Readonly: readonly, Optional: optional}
		if p.accept(Colon) {
			if prop.Type, err = p.parseType(); err != nil {
				return nil, err
			}
		}
		return prop, nil
	}
}

func startsPropName(tok Token) bool {
	switch tok.Kind {
	case Name, String, Number, LBracket:
		return true
	}
	return false
}

// PropName := Name | String | Number | '[' Name { '.' Name } ']'
func (p *parser) parsePropName() (PropName, error) {
	tok := p.next()
	switch tok.Kind {
	case Name:
		return PropName{Kind: NameIdent, Text: tok.Text}, nil
	case String:
		return PropName{Kind: NameString, Text: tok.Text}, nil
	case Number:
		return PropName{Kind: NameNumber, Text: tok.Text}, nil
	case LBracket:
		var path []string
		for {
			part := p.next()
			if part.Kind != Name && part.Kind != String && part.Kind != Number {
				return PropName{}, p.unexpected(part, "computed property name")
			}
			path = append(path, part.Text)
			if !p.accept(Dot) {
				break
			}
		}
		if _, err := p.expect(RBracket); err != nil {
			return PropName{}, err
		}
		return PropName{Kind: NameComputed, Text: strings.Join(path, "."), Path: path}, nil
	}
	return PropName{}, p.unexpected(tok, "property name")
}

// ConstructSig := 'new' Params [ ':' Type ]
func (p *parser) parseConstruct() (*ConstructSig, error) {
	start := p.next() // new
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	sig := &ConstructSig{Pos: start.Pos, Params: params}
	if p.accept(Colon) {
		if sig.Result, err = p.parseType(); err != nil {
			return nil, err
		}
	}
	return sig, nil
}

// IndexSig := '[' Name ':' Type ']' ':' Type
func (p *parser) parseIndex() (*IndexSig, error) {
	p.next() // [
	key := p.next()
	p.next() // :
	keyType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RBracket); err != nil {
		return nil, err
	}
	if _, err := p.expect(Colon); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &IndexSig{KeyName: key.Text, KeyType: keyType, Type: typ}, nil
}

// Params := '(' [ Param { ',' Param } [ ',' ] ] ')'
// Param  := [ '...' ] Name [ '?' ] [ ':' Type ]
func (p *parser) parseParams() ([]*Param, error) {
	if _, err := p.expect(LParen); err != nil {
		return nil, err
	}
	var params []*Param
	for p.peek().Kind != RParen {
		start := p.peek()
		param := &Param{Pos: start.Pos, Rest: p.accept(Ellipsis)}
		name, err := p.expectName()
		if err != nil {
			return nil, err
		}
		param.Name = name.Text
		param.Optional = p.accept(Question)
		if p.accept(Colon) {
			if param.Type, err = p.parseType(); err != nil {
				return nil, err
			}
		}
		params = append(params, param)
		if !p.accept(Comma) {
			break
		}
	}
	if _, err := p.expect(RParen); err != nil {
		return nil, err
	}
	return params, nil
}

// VarDecl := ( 'const' | 'let' | 'var' ) Name ':' Type
func (p *parser) parseVar() (*VarDecl, error) {
	kw := p.next()
	name, err := p.expectName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(Colon); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.accept(Semi)
	return &VarDecl{Pos: kw.Pos, Keyword: kw.Text, Name: name.Text, Type: typ}, nil
}

// TypeAlias := 'type' Name [ TypeParams ] '=' Type
func (p *parser) parseTypeAlias() (*TypeAlias, error) {
	kw := p.next()
	name, err := p.expectName()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind == LAngle {
		if err := p.skipTypeParams(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(Equals); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.accept(Semi)
	return &TypeAlias{Pos: kw.Pos, Name: name.Text, Type: typ}, nil
}

// Import := 'import' ... String
func (p *parser) parseImport() (*ImportDecl, error) {
	kw := p.next()
	for {
		tok := p.next()
		switch tok.Kind {
		case String:
			p.accept(Semi)
			return &ImportDecl{Pos: kw.Pos, From: tok.Text}, nil
		case EOF, Semi:
			return nil, p.unexpected(tok, "module specifier")
		}
	}
}

// Type := [ '|' ] Postfix { '|' Postfix }
func (p *parser) parseType() (TypeExpr, error) {
	start := p.peek()
	p.accept(Pipe)
	first, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind != Pipe {
		return first, nil
	}
	u := &UnionType{Pos: start.Pos, Members: []TypeExpr{first}}
	for p.accept(Pipe) {
		member, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		u.Members = append(u.Members, member)
	}
	return u, nil
}

// Postfix := Primary { '[' ']' }
func (p *parser) parsePostfix() (TypeExpr, error) {
	typ, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == LBracket && p.peekAt(1).Kind == RBracket {
		p.next()
		p.next()
		typ = &ArrayType{Pos: typ.Position(), Elem: typ}
	}
	return typ, nil
}

// Primary := FuncType | '(' Type ')' | Keyword | TypeRef | Literal
func (p *parser) parsePrimary() (TypeExpr, error) {
	tok := p.peek()
	switch tok.Kind {
	case LParen:
		if p.isFuncTypeStart() {
			return p.parseFuncType()
		}
		p.next()
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RParen); err != nil {
			return nil, err
		}
		return &ParenType{Pos: tok.Pos, Inner: inner}, nil
	case String, Number:
		p.next()
		return &LiteralType{Pos: tok.Pos, Kind: tok.Kind, Value: tok.Text}, nil
	case Name:
		if tok.Text == "true" || tok.Text == "false" {
			p.next()
			return &LiteralType{Pos: tok.Pos, Kind: Name, Value: tok.Text}, nil
		}
		if keywordTypes[tok.Text] {
			p.next()
			return &KeywordType{Pos: tok.Pos, Name: tok.Text}, nil
		}
		return p.parseTypeRef()
	}
	return nil, p.unexpected(tok, "type")
}

// TypeRef := Name { '.' Name } [ '<' Type { ',' Type } '>' ]
func (p *parser) parseTypeRef() (*TypeRef, error) {
	name := p.next()
	ref := &TypeRef{Pos: name.Pos, Name: name.Text}
	for p.peek().Kind == Dot {
		p.next()
		part, err := p.expectName()
		if err != nil {
			return nil, err
		}
		ref.Name += "." + part.Text
	}
	if p.accept(LAngle) {
		for {
			arg, err := p.parseType()
			if err != nil {
				return nil, err
			}
			ref.Args = append(ref.Args, arg)
			if !p.accept(Comma) {
				break
			}
		}
		if _, err := p.expect(RAngle); err != nil {
			return nil, err
		}
	}
	return ref, nil
}

// isFuncTypeStart reports whether the '(' at the cursor opens a function
// type rather than a parenthesized type.
func (p *parser) isFuncTypeStart() bool {
	first := p.peekAt(1)
	switch first.Kind {
	case RParen, Ellipsis:
		return true
	case Name:
		switch p.peekAt(2).Kind {
		case Colon, Question, Comma:
			return true
		case RParen:
			return p.peekAt(3).Kind == Arrow
		}
	}
	return false
}

// FuncType := Params '=>' Type
func (p *parser) parseFuncType() (*FuncType, error) {
	start := p.peek()
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(Arrow); err != nil {
		return nil, err
	}
	result, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &FuncType{Pos: start.Pos, Params: params, Result: result}, nil
}
