// Package lexer provides expression source tokenization.
package lexer

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/kolkov/uexpr/internal/token"
)

// Lexer tokenizes expression source.
type Lexer struct {
	src     []byte         // Source code
	ch      byte           // Current character
	eof     bool           // No current character
	offset  int            // Offset of the next character
	pos     token.Position // Position of ch
	nextPos token.Position // Position of next character
}

// New creates a new Lexer for the given source.
func New(src []byte) *Lexer {
	l := &Lexer{
		src: src,
		nextPos: token.Position{
			Line:   1,
			Column: 1,
		},
	}
	l.next() // Initialize first character
	return l
}

// NewFromString creates a new Lexer from a string.
func NewFromString(src string) *Lexer {
	return New([]byte(src))
}

// Token represents a scanned token with its position and lexeme.
// For STRING tokens Value holds the unescaped contents; for ILLEGAL tokens it
// holds the error message.
type Token struct {
	Type  token.Token
	Pos   token.Position // Position of the first character
	End   token.Position // Position after the last character
	Value string
}

func (t Token) String() string {
	switch t.Type {
	case token.EOF:
		return "end of expression"
	case token.STRING:
		return strconv.Quote(t.Value)
	case token.ILLEGAL:
		return t.Value
	}
	if t.Value != "" {
		return fmt.Sprintf("%q", t.Value)
	}
	return fmt.Sprintf("%q", t.Type.String())
}

// LexError is returned by Tokenize for input that is not a valid token.
type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Tokenize scans the whole text. The returned slice ends with an EOF token.
func Tokenize(text string) ([]Token, error) {
	l := NewFromString(text)
	var toks []Token
	for {
		tok := l.Scan()
		if tok.Type == token.ILLEGAL {
			return nil, &LexError{Pos: tok.Pos, Message: tok.Value}
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks, nil
		}
	}
}

// Scan scans and returns the next token. After the end of input it keeps
// returning EOF.
func (l *Lexer) Scan() Token {
	tok := l.scan()
	tok.End = l.pos
	return tok
}

func (l *Lexer) scan() Token {
	l.skipWhitespace()

	pos := l.pos
	if l.eof {
		return Token{Type: token.EOF, Pos: pos}
	}

	switch l.ch {
	case '+':
		l.next()
		return Token{Type: token.ADD, Pos: pos, Value: "+"}
	case '-':
		l.next()
		return Token{Type: token.SUB, Pos: pos, Value: "-"}
	case '*':
		l.next()
		return Token{Type: token.MUL, Pos: pos, Value: "*"}
	case '/':
		l.next()
		return Token{Type: token.DIV, Pos: pos, Value: "/"}
	case '%':
		l.next()
		return Token{Type: token.MOD, Pos: pos, Value: "%"}

	case '=':
		l.next()
		if l.ch == '=' && !l.eof {
			l.next()
			return Token{Type: token.EQUALS, Pos: pos, Value: "=="}
		}
		return Token{Type: token.ILLEGAL, Pos: pos, Value: "unexpected '=' (did you mean '=='?)"}

	case '!':
		l.next()
		if l.ch == '=' && !l.eof {
			l.next()
			return Token{Type: token.NOT_EQUALS, Pos: pos, Value: "!="}
		}
		return Token{Type: token.NOT, Pos: pos, Value: "!"}

	case '<':
		l.next()
		if l.ch == '=' && !l.eof {
			l.next()
			return Token{Type: token.LTE, Pos: pos, Value: "<="}
		}
		return Token{Type: token.LESS, Pos: pos, Value: "<"}

	case '>':
		l.next()
		if l.ch == '=' && !l.eof {
			l.next()
			return Token{Type: token.GTE, Pos: pos, Value: ">="}
		}
		return Token{Type: token.GREATER, Pos: pos, Value: ">"}

	case '&':
		l.next()
		if l.ch == '&' && !l.eof {
			l.next()
			return Token{Type: token.AND, Pos: pos, Value: "&&"}
		}
		return Token{Type: token.ILLEGAL, Pos: pos, Value: "unexpected '&' (did you mean '&&'?)"}

	case '|':
		l.next()
		if l.ch == '|' && !l.eof {
			l.next()
			return Token{Type: token.OR, Pos: pos, Value: "||"}
		}
		return Token{Type: token.ILLEGAL, Pos: pos, Value: "unexpected '|' (did you mean '||'?)"}

	case '?':
		l.next()
		return Token{Type: token.QUESTION, Pos: pos, Value: "?"}
	case ':':
		l.next()
		return Token{Type: token.COLON, Pos: pos, Value: ":"}
	case '(':
		l.next()
		return Token{Type: token.LPAREN, Pos: pos, Value: "("}
	case ')':
		l.next()
		return Token{Type: token.RPAREN, Pos: pos, Value: ")"}
	case ',':
		l.next()
		return Token{Type: token.COMMA, Pos: pos, Value: ","}

	case '.':
		if isDigit(l.peek()) {
			return l.scanNumber(pos)
		}
		l.next()
		return Token{Type: token.DOT, Pos: pos, Value: "."}

	case '"', '\'':
		return l.scanString(pos)

	default:
		if isDigit(l.ch) {
			return l.scanNumber(pos)
		}
		if isIdentStart(l.ch) {
			return l.scanIdent(pos)
		}
		r, _ := utf8.DecodeRune(l.src[pos.Offset:])
		l.next()
		return Token{Type: token.ILLEGAL, Pos: pos, Value: fmt.Sprintf("unexpected character %q", r)}
	}
}

func (l *Lexer) scanString(pos token.Position) Token {
	quote := l.ch
	l.next() // consume opening quote

	var sb []byte
	for !l.eof && l.ch != quote && l.ch != '\n' {
		if l.ch != '\\' {
			sb = append(sb, l.ch)
			l.next()
			continue
		}
		escPos := l.pos
		l.next()
		if l.eof {
			break
		}
		switch l.ch {
		case 'n':
			sb = append(sb, '\n')
		case 't':
			sb = append(sb, '\t')
		case 'r':
			sb = append(sb, '\r')
		case 'b':
			sb = append(sb, '\b')
		case 'f':
			sb = append(sb, '\f')
		case '\\', '"', '\'':
			sb = append(sb, l.ch)
		case 'u':
			// \uXXXX
			l.next()
			r := rune(0)
			for i := 0; i < 4; i++ {
				if l.eof || !isHexDigit(l.ch) {
					return Token{Type: token.ILLEGAL, Pos: escPos, Value: "invalid unicode escape"}
				}
				r = r*16 + rune(hexValue(l.ch))
				l.next()
			}
			sb = utf8.AppendRune(sb, r)
			continue
		default:
			return Token{Type: token.ILLEGAL, Pos: escPos, Value: fmt.Sprintf("invalid escape sequence '\\%c'", l.ch)}
		}
		l.next()
	}

	if l.eof || l.ch != quote {
		return Token{Type: token.ILLEGAL, Pos: pos, Value: "unterminated string"}
	}
	l.next() // consume closing quote

	return Token{Type: token.STRING, Pos: pos, Value: string(sb)}
}

func (l *Lexer) scanNumber(pos token.Position) Token {
	start := pos.Offset

	// Hex integer
	if l.ch == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		l.next() // 0
		l.next() // x
		if l.eof || !isHexDigit(l.ch) {
			return Token{Type: token.ILLEGAL, Pos: pos, Value: "malformed hex literal"}
		}
		for !l.eof && isHexDigit(l.ch) {
			l.next()
		}
		typ := token.INT
		if !l.eof && (l.ch == 'L' || l.ch == 'l') {
			typ = token.LONG
			l.next()
		}
		return l.finishNumber(pos, typ, start)
	}

	float := false
	for !l.eof && isDigit(l.ch) {
		l.next()
	}
	if !l.eof && l.ch == '.' && isDigit(l.peek()) {
		float = true
		l.next()
		for !l.eof && isDigit(l.ch) {
			l.next()
		}
	}
	// Only consume e/E if followed by digit or +/- then digit
	if !l.eof && (l.ch == 'e' || l.ch == 'E') && l.hasValidExponent() {
		float = true
		l.next() // consume e/E
		if l.ch == '+' || l.ch == '-' {
			l.next()
		}
		for !l.eof && isDigit(l.ch) {
			l.next()
		}
	}

	typ := token.INT
	if float {
		typ = token.DOUBLE
	}
	if !l.eof {
		switch l.ch {
		case 'L', 'l':
			if float {
				return Token{Type: token.ILLEGAL, Pos: pos, Value: "long suffix on floating-point literal"}
			}
			typ = token.LONG
			l.next()
		case 'F', 'f':
			typ = token.FLOAT
			l.next()
		case 'D', 'd':
			typ = token.DOUBLE
			l.next()
		}
	}
	return l.finishNumber(pos, typ, start)
}

func (l *Lexer) finishNumber(pos token.Position, typ token.Token, start int) Token {
	if !l.eof && isIdentContinue(l.ch) {
		for !l.eof && isIdentContinue(l.ch) {
			l.next()
		}
		return Token{Type: token.ILLEGAL, Pos: pos, Value: fmt.Sprintf("malformed number %q", l.src[start:l.pos.Offset])}
	}
	return Token{Type: typ, Pos: pos, Value: string(l.src[start:l.pos.Offset])}
}

func (l *Lexer) scanIdent(pos token.Position) Token {
	start := pos.Offset
	for !l.eof && isIdentContinue(l.ch) {
		l.next()
	}
	name := string(l.src[start:l.pos.Offset])
	return Token{Type: token.LookupIdent(name), Pos: pos, Value: name}
}

// hasValidExponent checks if current e/E is followed by a valid exponent.
func (l *Lexer) hasValidExponent() bool {
	idx := l.offset
	if idx >= len(l.src) {
		return false
	}
	ch := l.src[idx]
	if isDigit(ch) {
		return true
	}
	if ch == '+' || ch == '-' {
		idx++
		return idx < len(l.src) && isDigit(l.src[idx])
	}
	return false
}

// peek returns the character after the current one, or 0.
func (l *Lexer) peek() byte {
	if l.offset < len(l.src) {
		return l.src[l.offset]
	}
	return 0
}

func (l *Lexer) skipWhitespace() {
	for !l.eof && (l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n') {
		l.next()
	}
}

// next advances one byte. Multi-byte UTF-8 sequences are only legal inside
// string literals, where they are copied through byte by byte.
func (l *Lexer) next() {
	l.pos = l.nextPos
	if l.offset >= len(l.src) {
		l.ch = 0
		l.eof = true
		return
	}

	l.ch = l.src[l.offset]
	l.offset++
	l.nextPos.Column++
	l.nextPos.Offset = l.offset

	if l.ch == '\n' {
		l.nextPos.Line++
		l.nextPos.Column = 1
	}
}

// Helper functions

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func hexValue(ch byte) int {
	if ch >= '0' && ch <= '9' {
		return int(ch - '0')
	}
	if ch >= 'a' && ch <= 'f' {
		return int(ch - 'a' + 10)
	}
	return int(ch - 'A' + 10)
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '$'
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
