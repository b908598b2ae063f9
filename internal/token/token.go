// Package token defines lexical tokens for expressions.
package token

import "strconv"

// Token represents a lexical token type.
type Token uint8

const (
	// Special tokens
	ILLEGAL Token = iota // <illegal>
	EOF                  // EOF

	// Literals
	literalStart
	INT    // int
	LONG   // long
	FLOAT  // float
	DOUBLE // double
	STRING // string
	TRUE   // true
	FALSE  // false
	NULL   // null
	literalEnd

	IDENT // identifier

	// Operators
	operatorStart
	ADD        // +
	SUB        // -
	MUL        // *
	DIV        // /
	MOD        // %
	NOT        // !
	EQUALS     // ==
	NOT_EQUALS // !=
	LESS       // <
	LTE        // <=
	GREATER    // >
	GTE        // >=
	AND        // &&
	OR         // ||
	QUESTION   // ?
	COLON      // :
	operatorEnd

	// Punctuation
	punctStart
	DOT    // .
	LPAREN // (
	RPAREN // )
	COMMA  // ,
	punctEnd
)

var tokens = [...]string{
	ILLEGAL: "<illegal>",
	EOF:     "EOF",

	INT:    "int",
	LONG:   "long",
	FLOAT:  "float",
	DOUBLE: "double",
	STRING: "string",
	TRUE:   "true",
	FALSE:  "false",
	NULL:   "null",

	IDENT: "identifier",

	ADD:        "+",
	SUB:        "-",
	MUL:        "*",
	DIV:        "/",
	MOD:        "%",
	NOT:        "!",
	EQUALS:     "==",
	NOT_EQUALS: "!=",
	LESS:       "<",
	LTE:        "<=",
	GREATER:    ">",
	GTE:        ">=",
	AND:        "&&",
	OR:         "||",
	QUESTION:   "?",
	COLON:      ":",

	DOT:    ".",
	LPAREN: "(",
	RPAREN: ")",
	COMMA:  ",",
}

// String returns the source form of operators and a name for other tokens.
func (t Token) String() string {
	if int(t) < len(tokens) && tokens[t] != "" {
		return tokens[t]
	}
	return "token(" + strconv.Itoa(int(t)) + ")"
}

// Kind is the coarse category of a token.
type Kind uint8

const (
	KindSpecial     Kind = iota // special
	KindLiteral                 // literal
	KindIdentifier              // identifier
	KindOperator                // operator
	KindPunctuation             // punctuation
)

var kindNames = [...]string{"special", "literal", "identifier", "operator", "punctuation"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Kind returns the category of the token.
func (t Token) Kind() Kind {
	switch {
	case t.IsLiteral():
		return KindLiteral
	case t == IDENT:
		return KindIdentifier
	case t.IsOperator():
		return KindOperator
	case t > punctStart && t < punctEnd:
		return KindPunctuation
	}
	return KindSpecial
}

// IsLiteral returns true for numeric, string, boolean and null literals.
func (t Token) IsLiteral() bool {
	return t > literalStart && t < literalEnd
}

// IsOperator returns true if the token is an operator.
func (t Token) IsOperator() bool {
	return t > operatorStart && t < operatorEnd
}

// IsNumber returns true for the numeric literal tokens.
func (t Token) IsNumber() bool {
	return t >= INT && t <= DOUBLE
}

// keywords maps keyword strings to their token types.
var keywords = map[string]Token{
	"true":  TRUE,
	"false": FALSE,
	"null":  NULL,
}

// LookupIdent returns the token type for a given identifier.
// Returns a keyword token if found, otherwise IDENT.
func LookupIdent(ident string) Token {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Precedence returns the binding power of a binary operator, or 0 for tokens
// that are not binary operators. Higher binds tighter.
func (t Token) Precedence() int {
	switch t {
	case OR:
		return 1
	case AND:
		return 2
	case EQUALS, NOT_EQUALS:
		return 3
	case LESS, LTE, GREATER, GTE:
		return 4
	case ADD, SUB:
		return 5
	case MUL, DIV, MOD:
		return 6
	}
	return 0
}
