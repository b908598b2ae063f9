package compiler

import (
	"fmt"
	"strings"

	"github.com/kolkov/uexpr/internal/token"
	"github.com/kolkov/uexpr/types"
)

// Program represents a compiled expression ready for VM execution.
// A Program is immutable once built and may be run concurrently.
type Program struct {
	// Code is the instruction stream.
	Code []Opcode

	// Positions holds the source position of each instruction, indexed like
	// Code (operand slots repeat their instruction's position).
	Positions []token.Position

	// Constant pools
	Consts []any        // Literal and folded values
	Names  []string     // Variable, property and method names
	Types  []types.Type // Conversion and cast targets

	// Result is the static type of the expression.
	Result types.Type
}

// PosAt returns the source position of the instruction at ip.
func (p *Program) PosAt(ip int) token.Position {
	if ip >= 0 && ip < len(p.Positions) {
		return p.Positions[ip]
	}
	return token.NoPos
}

// Disassemble returns a human-readable disassembly of the program.
func (p *Program) Disassemble() string {
	var sb strings.Builder

	if len(p.Consts) > 0 {
		sb.WriteString("=== Constants ===\n")
		for i, c := range p.Consts {
			fmt.Fprintf(&sb, "  [%d] %s\n", i, constText(c))
		}
		sb.WriteString("\n")
	}

	if len(p.Names) > 0 {
		sb.WriteString("=== Names ===\n")
		for i, n := range p.Names {
			fmt.Fprintf(&sb, "  [%d] %s\n", i, n)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "=== Code (%s) ===\n", p.Result)
	p.disassembleCode(&sb, "  ")
	return sb.String()
}

// disassembleCode outputs bytecode with operands decoded.
func (p *Program) disassembleCode(sb *strings.Builder, indent string) {
	code := p.Code
	for i := 0; i < len(code); i++ {
		op := code[i]
		fmt.Fprintf(sb, "%s%04d: %s", indent, i, op)

		switch {
		case op == Const:
			if i+1 < len(code) {
				i++
				idx := int(code[i])
				if idx < len(p.Consts) {
					fmt.Fprintf(sb, " [%d] = %s", idx, constText(p.Consts[idx]))
				} else {
					fmt.Fprintf(sb, " [%d]", idx)
				}
			}
		case op == Load || op == Property:
			if i+1 < len(code) {
				i++
				fmt.Fprintf(sb, " %s", p.name(code[i]))
			}
		case op == Invoke || op == Call:
			if i+2 < len(code) {
				i++
				name := p.name(code[i])
				i++
				fmt.Fprintf(sb, " %s args=%d", name, code[i])
			}
		case op == Convert || op == CheckCast:
			if i+1 < len(code) {
				i++
				idx := int(code[i])
				if idx < len(p.Types) {
					fmt.Fprintf(sb, " %s", p.Types[idx])
				} else {
					fmt.Fprintf(sb, " type[%d]", idx)
				}
			}
		case op.IsKinded():
			if i+1 < len(code) {
				i++
				fmt.Fprintf(sb, " %s", types.Kind(code[i]))
			}
		case op.IsJump():
			if i+1 < len(code) {
				i++
				offset := int(code[i])
				fmt.Fprintf(sb, " %+d -> %04d", offset, i+1+offset)
			}
		}

		sb.WriteString("\n")
	}
}

func (p *Program) name(idx Opcode) string {
	if int(idx) < len(p.Names) {
		return p.Names[idx]
	}
	return fmt.Sprintf("name[%d]", idx)
}

// constText renders a constant with its runtime type.
func constText(v any) string {
	switch c := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q (String)", c)
	}
	return fmt.Sprintf("%v (%s)", v, types.Of(v))
}
