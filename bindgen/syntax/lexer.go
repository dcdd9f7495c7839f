package syntax

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize splits src into tokens. The returned slice always ends with an
// EOF token.
func Tokenize(file, src string) ([]Token, error) {
	l := &lexer{file: file, src: src, line: 1, col: 1}
	var tokens []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}

type lexer struct {
	file string
	src  string
	off  int
	line int
	col  int
}

func (l *lexer) pos() Pos { return Pos{Line: l.line, Col: l.col} }

func (l *lexer) peek(n int) byte {
	if l.off+n >= len(l.src) {
		return 0
	}
	return l.src[l.off+n]
}

func (l *lexer) advance(n int) {
	for i := 0; i < n && l.off < len(l.src); i++ {
		if l.src[l.off] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.off++
	}
}

func (l *lexer) errorf(p Pos, format string, args ...any) error {
	return newError(l.file, p, format, args...)
}

// skipTrivia consumes whitespace and comments.
func (l *lexer) skipTrivia() error {
	for l.off < len(l.src) {
		c := l.src[l.off]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f':
			l.advance(1)
		case c == '/' && l.peek(1) == '/':
			for l.off < len(l.src) && l.src[l.off] != '\n' {
				l.advance(1)
			}
		case c == '/' && l.peek(1) == '*':
			start := l.pos()
			end := strings.Index(l.src[l.off+2:], "*/")
			if end < 0 {
				return l.errorf(start, "unterminated block comment")
			}
			l.advance(end + 4)
		default:
			// UTF-8 byte order mark
			if strings.HasPrefix(l.src[l.off:], "\uFEFF") {
				l.off += len("\uFEFF")
				continue
			}
			return nil
		}
	}
	return nil
}

var punctuators = []struct {
	text string
	kind TokenKind
}{
	{"...", Ellipsis},
	{"=>", Arrow},
	{"(", LParen},
	{")", RParen},
	{"[", LBracket},
	{"]", RBracket},
	{"{", LBrace},
	{"}", RBrace},
	{"<", LAngle},
	{">", RAngle},
	{";", Semi},
	{",", Comma},
	{".", Dot},
	{":", Colon},
	{"?", Question},
	{"|", Pipe},
	{"&", Amp},
	{"@", At},
	{"=", Equals},
}

func (l *lexer) next() (Token, error) {
	if err := l.skipTrivia(); err != nil {
		return Token{}, err
	}
	p := l.pos()
	if l.off >= len(l.src) {
		return Token{Kind: EOF, Pos: p}, nil
	}

	c := l.src[l.off]
	switch {
	case c == '"' || c == '\'' || c == '`':
		return l.lexString(c)
	case isDigit(c) || (c == '-' && isDigit(l.peek(1))) || (c == '.' && isDigit(l.peek(1))):
		return l.lexNumber(), nil
	case isIdentStart(l.src[l.off:]):
		return l.lexName(), nil
	}

	for _, punct := range punctuators {
		if strings.HasPrefix(l.src[l.off:], punct.text) {
			l.advance(len(punct.text))
			return Token{Kind: punct.kind, Text: punct.text, Pos: p}, nil
		}
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.off:])
	return Token{}, l.errorf(p, "unexpected character %q", r)
}

func (l *lexer) lexString(quote byte) (Token, error) {
	p := l.pos()
	l.advance(1)
	var b strings.Builder
	for {
		if l.off >= len(l.src) || (l.src[l.off] == '\n' && quote != '`') {
			return Token{}, l.errorf(p, "unterminated string literal")
		}
		c := l.src[l.off]
		if c == quote {
			l.advance(1)
			return Token{Kind: String, Text: b.String(), Pos: p}, nil
		}
		if c == '\\' && l.off+1 < len(l.src) {
			b.WriteByte(unescape(l.src[l.off+1]))
			l.advance(2)
			continue
		}
		b.WriteByte(c)
		l.advance(1)
	}
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return c
	}
}

func (l *lexer) lexNumber() Token {
	p := l.pos()
	start := l.off
	if l.src[l.off] == '-' {
		l.advance(1)
	}
	for l.off < len(l.src) {
		c := l.src[l.off]
		if isDigit(c) || c == '_' || c == 'x' || c == 'X' || c == 'e' || c == 'E' ||
			(c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
			l.advance(1)
			continue
		}
		if c == '.' && isDigit(l.peek(1)) {
			l.advance(1)
			continue
		}
		break
	}
	return Token{Kind: Number, Text: l.src[start:l.off], Pos: p}
}

func (l *lexer) lexName() Token {
	p := l.pos()
	start := l.off
	for l.off < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.off:])
		if r != '_' && r != '$' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		l.off += size
		l.col++
	}
	return Token{Kind: Name, Text: l.src[start:l.off], Pos: p}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r == '_' || r == '$' || unicode.IsLetter(r)
}
