package parser

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/kolkov/uexpr/internal/ast"
	"github.com/kolkov/uexpr/internal/lexer"
	"github.com/kolkov/uexpr/internal/token"
	"github.com/kolkov/uexpr/types"
)

// Parser is a recursive descent parser over a token slice.
//
// Grammar, lowest precedence first:
//
//	ternary        = or [ "?" ternary ":" ternary ]
//	or             = and { "||" and }
//	and            = equality { "&&" equality }
//	equality       = relational { ("==" | "!=") relational }
//	relational     = additive { ("<" | "<=" | ">" | ">=") additive }
//	additive       = multiplicative { ("+" | "-") multiplicative }
//	multiplicative = unary { ("*" | "/" | "%") unary }
//	unary          = ("!" | "-" | "+") unary | cast | postfix
//	cast           = "(" type ")" unary
//	postfix        = primary { "." name [ arguments ] }
//	primary        = literal | name [ arguments ] | "(" ternary ")"
type Parser struct {
	toks []lexer.Token
	pos  int         // Index of the current token
	tok  lexer.Token // Current token
	err  *ParseError // First error; parsing stops there
}

// bailout unwinds the parser after the first error.
type bailout struct{}

// Parse parses a complete expression from source text.
// Lexical errors are returned as a *ParseError wrapping the *lexer.LexError.
func Parse(src string) (ast.Expr, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		var lexErr *lexer.LexError
		if errors.As(err, &lexErr) {
			return nil, &ParseError{Pos: lexErr.Pos, Message: lexErr.Message, Err: lexErr}
		}
		return nil, err
	}
	return ParseTokens(toks)
}

// ParseTokens parses a token slice as produced by lexer.Tokenize.
// All tokens must be consumed: trailing tokens are an error.
func ParseTokens(toks []lexer.Token) (expr ast.Expr, err error) {
	if len(toks) == 0 || toks[len(toks)-1].Type != token.EOF {
		return nil, errorf(token.NoPos, "token stream must end with EOF")
	}
	p := &Parser{toks: toks, tok: toks[0]}

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			expr, err = nil, p.err
		}
	}()

	if p.tok.Type == token.EOF {
		p.error(errorf(p.tok.Pos, "empty expression"))
	}
	expr = p.parseTernary()
	switch p.tok.Type {
	case token.EOF:
	case token.RPAREN:
		p.error(errorf(p.tok.Pos, "unbalanced parentheses: unexpected ')'"))
	default:
		p.error(expectedError(p.tok.Pos, "end of expression", p.tok.String()))
	}
	return expr, nil
}

// -----------------------------------------------------------------------------
// Token handling
// -----------------------------------------------------------------------------

// next advances to the next token. EOF is sticky.
func (p *Parser) next() {
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	p.tok = p.toks[p.pos]
}

// peek returns the token n positions ahead of the current one.
func (p *Parser) peek(n int) lexer.Token {
	if i := p.pos + n; i < len(p.toks) {
		return p.toks[i]
	}
	return p.toks[len(p.toks)-1]
}

// expect checks that the current token is tok and advances.
func (p *Parser) expect(tok token.Token, context string) lexer.Token {
	cur := p.tok
	if cur.Type != tok {
		err := expectedError(cur.Pos, strconv.Quote(tok.String()), cur.String())
		if context != "" {
			err.Message = context + ": " + err.Message
		}
		p.error(err)
	}
	p.next()
	return cur
}

// match returns true if current token matches any of the given types.
func (p *Parser) match(kinds ...token.Token) bool {
	for _, t := range kinds {
		if p.tok.Type == t {
			return true
		}
	}
	return false
}

// error records the first parse error and stops parsing.
func (p *Parser) error(err *ParseError) {
	if p.err == nil {
		p.err = err
	}
	panic(bailout{})
}

// -----------------------------------------------------------------------------
// Expressions
// -----------------------------------------------------------------------------

// parseTernary parses the right-associative conditional operator.
func (p *Parser) parseTernary() ast.Expr {
	cond := p.parseOr()
	if p.tok.Type != token.QUESTION {
		return cond
	}
	p.next()
	whenTrue := p.parseTernary()
	if p.tok.Type != token.COLON {
		p.error(&ParseError{
			Pos:     p.tok.Pos,
			Message: "malformed ternary: expected ':', got " + p.tok.String(),
			Want:    `":"`,
			Got:     p.tok.String(),
		})
	}
	p.next()
	whenFalse := p.parseTernary()
	return &ast.Ternary{
		BaseExpr:  ast.MakeBaseExpr(cond.Pos(), whenFalse.End()),
		Cond:      cond,
		WhenTrue:  whenTrue,
		WhenFalse: whenFalse,
	}
}

// parseOr parses || expressions.
func (p *Parser) parseOr() ast.Expr {
	return p.parseBinaryLeft(p.parseAnd, token.OR)
}

// parseAnd parses && expressions.
func (p *Parser) parseAnd() ast.Expr {
	return p.parseBinaryLeft(p.parseEquality, token.AND)
}

func (p *Parser) parseEquality() ast.Expr {
	return p.parseBinaryLeft(p.parseRelational, token.EQUALS, token.NOT_EQUALS)
}

func (p *Parser) parseRelational() ast.Expr {
	return p.parseBinaryLeft(p.parseAdditive, token.LESS, token.LTE, token.GREATER, token.GTE)
}

func (p *Parser) parseAdditive() ast.Expr {
	return p.parseBinaryLeft(p.parseMultiplicative, token.ADD, token.SUB)
}

func (p *Parser) parseMultiplicative() ast.Expr {
	return p.parseBinaryLeft(p.parseUnary, token.MUL, token.DIV, token.MOD)
}

func (p *Parser) parseUnary() ast.Expr {
	startPos := p.tok.Pos

	switch p.tok.Type {
	case token.SUB:
		// -2147483648 and -9223372036854775808L only exist as negative literals.
		// "-5.abs()" negates the call, so a literal followed by '.' is not folded.
		if next := p.peek(1); (next.Type == token.INT || next.Type == token.LONG) && p.peek(2).Type != token.DOT {
			p.next()
			return p.parseNumber(startPos, true)
		}
		fallthrough
	case token.NOT, token.ADD:
		op := p.tok.Type
		p.next()
		operand := p.parseUnary()
		return &ast.UnaryOp{
			BaseExpr: ast.MakeBaseExpr(startPos, operand.End()),
			Op:       op,
			Operand:  operand,
		}

	case token.LPAREN:
		if name, n, ok := p.castType(); ok {
			for i := 0; i < n; i++ {
				p.next()
			}
			target, _ := types.Parse(name)
			operand := p.parseUnary()
			return &ast.Cast{
				BaseExpr:   ast.MakeBaseExpr(startPos, operand.End()),
				Target:     target,
				TargetName: name,
				Operand:    operand,
			}
		}
	}
	return p.parsePostfix()
}

// castType reports whether the parenthesis at the current token opens a
// cast, returning the type name and the number of tokens up to and including
// the closing parenthesis.
//
// "(int) x" is always a cast. "(Name) x" and "(a.b.Name) x" are casts only
// when the token after ")" can start an operand but not continue a binary
// expression, so "(a) - b" stays a subtraction.
func (p *Parser) castType() (string, int, bool) {
	var parts []string
	i := 1
	for {
		tok := p.peek(i)
		if tok.Type != token.IDENT {
			return "", 0, false
		}
		parts = append(parts, tok.Value)
		i++
		if p.peek(i).Type != token.DOT {
			break
		}
		i++
	}
	if p.peek(i).Type != token.RPAREN {
		return "", 0, false
	}
	name := strings.Join(parts, ".")
	i++

	if len(parts) == 1 && types.IsPrimitiveName(name) {
		return name, i, true
	}
	switch after := p.peek(i).Type; {
	case after == token.IDENT, after == token.LPAREN, after == token.NOT, after.IsLiteral():
		return name, i, true
	}
	return "", 0, false
}

// parsePostfix parses property and method chains.
func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for p.tok.Type == token.DOT {
		p.next()
		name := p.expect(token.IDENT, "after '.'")
		if p.tok.Type == token.LPAREN {
			args, end := p.parseArgs()
			expr = &ast.MethodCall{
				BaseExpr: ast.MakeBaseExpr(expr.Pos(), end),
				Receiver: expr,
				Name:     name.Value,
				Args:     args,
			}
			continue
		}
		expr = &ast.PropertyAccess{
			BaseExpr: ast.MakeBaseExpr(expr.Pos(), name.End),
			Receiver: expr,
			Name:     name.Value,
		}
	}
	return expr
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.tok

	switch tok.Type {
	case token.INT, token.LONG, token.FLOAT, token.DOUBLE:
		return p.parseNumber(tok.Pos, false)

	case token.STRING:
		p.next()
		return &ast.Literal{
			BaseExpr: ast.MakeBaseExpr(tok.Pos, tok.End),
			Value:    tok.Value,
			Type:     types.StringType,
		}

	case token.TRUE, token.FALSE:
		p.next()
		return &ast.Literal{
			BaseExpr: ast.MakeBaseExpr(tok.Pos, tok.End),
			Value:    tok.Type == token.TRUE,
			Type:     types.BooleanType,
			Raw:      tok.Value,
		}

	case token.NULL:
		p.next()
		return &ast.Literal{
			BaseExpr: ast.MakeBaseExpr(tok.Pos, tok.End),
			Type:     types.NullType,
			Raw:      tok.Value,
		}

	case token.IDENT:
		p.next()
		if p.tok.Type == token.LPAREN {
			args, end := p.parseArgs()
			return &ast.MethodCall{
				BaseExpr: ast.MakeBaseExpr(tok.Pos, end),
				Name:     tok.Value,
				Args:     args,
			}
		}
		return &ast.VariableRef{
			BaseExpr: ast.MakeBaseExpr(tok.Pos, tok.End),
			Name:     tok.Value,
		}

	case token.LPAREN:
		p.next()
		expr := p.parseTernary()
		if p.tok.Type != token.RPAREN {
			p.error(&ParseError{
				Pos:     p.tok.Pos,
				Message: "unbalanced parentheses: expected ')', got " + p.tok.String(),
				Want:    `")"`,
				Got:     p.tok.String(),
			})
		}
		p.next()
		return expr

	case token.EOF:
		p.error(errorf(tok.Pos, "unterminated expression: unexpected end of expression"))

	default:
		p.error(expectedError(tok.Pos, "operand", tok.String()))
	}
	return nil
}

// parseArgs parses a parenthesised argument list and returns the position
// after the closing parenthesis.
func (p *Parser) parseArgs() ([]ast.Expr, token.Position) {
	p.expect(token.LPAREN, "")
	var args []ast.Expr
	for p.tok.Type != token.RPAREN {
		if p.tok.Type == token.EOF {
			p.error(errorf(p.tok.Pos, "unbalanced parentheses: unterminated argument list"))
		}
		if len(args) > 0 {
			p.expect(token.COMMA, "in argument list")
		}
		args = append(args, p.parseTernary())
	}
	end := p.tok.End
	p.next()
	return args, end
}

// parseNumber converts the current numeric literal token.
func (p *Parser) parseNumber(startPos token.Position, negative bool) ast.Expr {
	tok := p.tok
	p.next()

	raw := tok.Value
	if negative {
		raw = "-" + raw
	}
	lit := &ast.Literal{
		BaseExpr: ast.MakeBaseExpr(startPos, tok.End),
		Raw:      raw,
	}

	switch tok.Type {
	case token.INT:
		n, ok := parseInteger(tok.Value, negative, 32)
		if !ok {
			p.error(errorf(tok.Pos, "integer literal %s out of range for int", raw))
		}
		lit.Value, lit.Type = int32(n), types.IntType

	case token.LONG:
		n, ok := parseInteger(strings.TrimRight(tok.Value, "lL"), negative, 64)
		if !ok {
			p.error(errorf(tok.Pos, "integer literal %s out of range for long", raw))
		}
		lit.Value, lit.Type = n, types.LongType

	case token.FLOAT:
		f, err := strconv.ParseFloat(strings.TrimRight(tok.Value, "fF"), 32)
		if err != nil {
			p.error(errorf(tok.Pos, "floating-point literal %s out of range for float", raw))
		}
		lit.Value, lit.Type = float32(f), types.FloatType

	case token.DOUBLE:
		f, err := strconv.ParseFloat(strings.TrimRight(tok.Value, "dD"), 64)
		if err != nil {
			p.error(errorf(tok.Pos, "floating-point literal %s out of range for double", raw))
		}
		lit.Value, lit.Type = f, types.DoubleType
	}
	return lit
}

// parseInteger parses a decimal or 0x-prefixed literal of the given width.
// Hex literals may use the full unsigned range, as in 0xFFFFFFFF == -1.
func parseInteger(s string, negative bool, bits int) (int64, bool) {
	if len(s) > 2 && (s[1] == 'x' || s[1] == 'X') {
		u, err := strconv.ParseUint(s[2:], 16, bits)
		if err != nil {
			return 0, false
		}
		n := int64(u)
		if bits == 32 {
			n = int64(int32(uint32(u)))
		}
		if negative {
			n = -n
		}
		return n, true
	}

	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	limit := uint64(math.MaxInt64)
	if bits == 32 {
		limit = math.MaxInt32
	}
	if negative {
		limit++
	}
	if u > limit {
		return 0, false
	}
	if negative {
		return int64(-u), true
	}
	return int64(u), true
}

// -----------------------------------------------------------------------------
// Helper functions
// -----------------------------------------------------------------------------

// parseBinaryLeft parses left-associative binary operators.
func (p *Parser) parseBinaryLeft(higher func() ast.Expr, ops ...token.Token) ast.Expr {
	expr := higher()
	for p.match(ops...) {
		op, opPos := p.tok.Type, p.tok.Pos
		p.next()
		right := higher()
		expr = &ast.BinaryOp{
			BaseExpr: ast.MakeBaseExpr(expr.Pos(), right.End()),
			Left:     expr,
			Op:       op,
			OpPos:    opPos,
			Right:    right,
		}
	}
	return expr
}
