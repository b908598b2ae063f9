package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/kolkov/uexpr/internal/token"
	"github.com/kolkov/uexpr/types"
)

// Printer writes expressions back as source text. Parentheses are emitted
// only where operator precedence requires them, so printing a parsed
// expression and parsing the result yields an equivalent tree.
type Printer struct {
	w   io.Writer
	err error
}

// NewPrinter creates a new Printer that writes to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Print writes the source form of the node to the writer.
func (p *Printer) Print(node Node) error {
	if e, ok := node.(Expr); ok {
		p.printExpr(e, precTernary)
	} else {
		p.printf("<%T>", node)
	}
	return p.err
}

// String returns the source form of a node.
func String(node Node) string {
	var sb strings.Builder
	_ = NewPrinter(&sb).Print(node)
	return sb.String()
}

const (
	precTernary = iota
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precPrimary
)

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// printExpr prints e, parenthesised if it binds looser than floor.
func (p *Printer) printExpr(e Expr, floor int) {
	if e == nil {
		p.printf("<nil>")
		return
	}
	prec := precedence(e)
	if prec < floor {
		p.printf("(")
		defer p.printf(")")
	}

	switch n := e.(type) {
	case *Literal:
		p.printLiteral(n)

	case *VariableRef:
		p.printf("%s", n.Name)

	case *PropertyAccess:
		p.printExpr(n.Receiver, precPrimary)
		p.printf(".%s", n.Name)

	case *MethodCall:
		if n.Receiver != nil {
			p.printExpr(n.Receiver, precPrimary)
			p.printf(".")
		}
		p.printf("%s(", n.Name)
		for i, arg := range n.Args {
			if i > 0 {
				p.printf(", ")
			}
			p.printExpr(arg, precTernary)
		}
		p.printf(")")

	case *UnaryOp:
		p.printf("%s", n.Op)
		inner := precUnary
		if n.Op != token.NOT && signed(n.Operand) {
			p.printf(" ")
		}
		if lit, ok := n.Operand.(*Literal); ok && n.Op == token.SUB && !signed(lit) &&
			(lit.Type.Kind == types.Int || lit.Type.Kind == types.Long) {
			// "-1" would read back as a single negative literal
			inner = precPrimary + 1
		}
		p.printExpr(n.Operand, inner)

	case *BinaryOp:
		// left-associative: the right operand needs parens at equal precedence
		p.printExpr(n.Left, prec)
		p.printf(" %s ", n.Op)
		p.printExpr(n.Right, prec+1)

	case *Ternary:
		// right-associative: the condition needs parens at equal precedence
		p.printExpr(n.Cond, precOr)
		p.printf(" ? ")
		p.printExpr(n.WhenTrue, precTernary)
		p.printf(" : ")
		p.printExpr(n.WhenFalse, precTernary)

	case *Cast:
		p.printf("(%s) ", n.TargetName)
		inner := precUnary
		if signed(n.Operand) && !types.IsPrimitiveName(n.TargetName) {
			// "(Name) -x" reads as a subtraction
			inner = precPrimary
		}
		p.printExpr(n.Operand, inner)

	default:
		p.printf("<%T>", e)
	}
}

func (p *Printer) printLiteral(n *Literal) {
	p.printf("%s", literalText(n))
}

func literalText(n *Literal) string {
	if n.Raw != "" {
		return n.Raw
	}
	switch v := n.Value.(type) {
	case nil:
		return "null"
	case string:
		return quote(v)
	}
	return fmt.Sprint(n.Value)
}

func precedence(e Expr) int {
	switch n := e.(type) {
	case *Ternary:
		return precTernary
	case *BinaryOp:
		switch n.Op.Precedence() {
		case 1:
			return precOr
		case 2:
			return precAnd
		case 3:
			return precEquality
		case 4:
			return precRelational
		case 5:
			return precAdditive
		default:
			return precMultiplicative
		}
	case *UnaryOp, *Cast:
		return precUnary
	case *Literal:
		if signed(n) {
			return precUnary
		}
	}
	return precPrimary
}

// signed reports whether e prints with a leading sign.
func signed(e Expr) bool {
	switch n := e.(type) {
	case *UnaryOp:
		return n.Op != token.NOT
	case *Literal:
		return strings.HasPrefix(literalText(n), "-")
	}
	return false
}

// quote returns s as a double-quoted literal using only escapes the lexer
// understands. Bytes outside ASCII are written through unchanged.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&sb, `\u%04x`, c)
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
