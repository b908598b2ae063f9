package compiler

// This file implements constant folding as a peephole pass over the
// generated code: instruction sequences that only operate on constants are
// evaluated once and replaced by a single Const.
//
// Folding never changes behavior. A sequence whose evaluation fails (integer
// division by zero, a failed unboxing) is left in place so that it fails at
// run time, and no sequence spanning a jump target is touched.

import (
	"reflect"

	"github.com/kolkov/uexpr/internal/runtime"
	"github.com/kolkov/uexpr/internal/token"
	"github.com/kolkov/uexpr/types"
)

// Optimize folds constant subexpressions of p until nothing changes, then
// drops constants the code no longer refers to.
func Optimize(p *Program) {
	for foldPass(p) {
	}
	compactConsts(p)
}

// foldPass runs one folding pass and reports whether anything was folded.
func foldPass(p *Program) bool {
	code := p.Code
	targets := jumpTargets(code)

	result := make([]Opcode, 0, len(code))
	positions := make([]token.Position, 0, len(code))
	posMap := make(map[int]int) // oldPos -> newPos

	// Track jumps that need offset fixup
	type jump struct {
		newOffsetPos int // Position of offset in NEW code
		oldOffsetPos int // Position of offset in OLD code
	}
	var jumps []jump
	changed := false

	for oldPos := 0; oldPos < len(code); {
		posMap[oldPos] = len(result)

		if consumed, v, ok := tryFold(p, oldPos, targets); ok {
			pos := p.PosAt(oldPos)
			result = append(result, Const, Opcode(addConst(p, v)))
			positions = append(positions, pos, pos)
			oldPos += consumed
			changed = true
			continue
		}

		n := 1 + code[oldPos].Operands()
		if code[oldPos].IsJump() {
			jumps = append(jumps, jump{newOffsetPos: len(result) + 1, oldOffsetPos: oldPos + 1})
		}
		result = append(result, code[oldPos:oldPos+n]...)
		positions = append(positions, p.Positions[oldPos:oldPos+n]...)
		oldPos += n
	}
	posMap[len(code)] = len(result)

	if !changed {
		return false
	}

	// Fix jump offsets: targets are instruction starts outside every
	// folded sequence, so each one has a mapping.
	for _, j := range jumps {
		oldTarget := j.oldOffsetPos + 1 + int(code[j.oldOffsetPos])
		result[j.newOffsetPos] = Opcode(posMap[oldTarget] - (j.newOffsetPos + 1))
	}

	p.Code = result
	p.Positions = positions
	return true
}

// tryFold attempts to fold the sequence starting at i.
// Returns (consumed, value, ok).
func tryFold(p *Program, i int, targets map[int]bool) (int, any, bool) {
	code := p.Code
	remaining := len(code) - i
	if remaining < 3 || code[i] != Const || targets[i+2] {
		return 0, nil, false
	}
	a := p.Consts[code[i+1]]

	// Pattern: Const + Const + binary operator
	if remaining >= 5 && code[i+2] == Const && !targets[i+4] {
		b := p.Consts[code[i+3]]
		op := code[i+4]
		n := 5 + op.Operands()
		if remaining >= n {
			var arg Opcode
			if op.Operands() == 1 {
				arg = code[i+5]
			}
			if v, ok := foldBinary(op, arg, a, b); ok {
				return n, v, true
			}
		}
	}

	// Pattern: Const + unary operator
	op := code[i+2]
	n := 3 + op.Operands()
	if remaining < n {
		return 0, nil, false
	}
	var arg Opcode
	if op.Operands() == 1 {
		arg = code[i+3]
	}
	if v, ok := foldUnary(p, op, arg, a); ok {
		return n, v, true
	}
	return 0, nil, false
}

func foldBinary(op, arg Opcode, a, b any) (any, bool) {
	switch op {
	case Add, Subtract, Multiply, Divide, Modulo:
		v, err := runtime.Arith(op.Token(), types.Kind(arg), a, b)
		return v, err == nil
	case Less, LessEqual, Greater, GreaterEqual:
		v, err := runtime.Compare(op.Token(), types.Kind(arg), a, b)
		return v, err == nil
	case Equal:
		return runtime.Equal(a, b), true
	case NotEqual:
		return !runtime.Equal(a, b), true
	case Concat:
		return runtime.Concat(a, b), true
	}
	return nil, false
}

func foldUnary(p *Program, op, arg Opcode, a any) (any, bool) {
	switch op {
	case Convert:
		v, err := types.Convert(a, p.Types[arg])
		return v, err == nil
	case Negate:
		v, err := runtime.Negate(types.Kind(arg), a)
		return v, err == nil
	case Not:
		b, ok := a.(bool)
		return !b, ok
	case Truthy:
		return runtime.Truthy(a), true
	}
	return nil, false
}

// jumpTargets returns the set of code positions some jump lands on.
func jumpTargets(code []Opcode) map[int]bool {
	targets := make(map[int]bool)
	for i := 0; i < len(code); i += 1 + code[i].Operands() {
		if code[i].IsJump() && i+1 < len(code) {
			targets[i+2+int(code[i+1])] = true
		}
	}
	return targets
}

// addConst adds a folded value to the constant pool, reusing an equal
// constant of the same Go type.
func addConst(p *Program, v any) int {
	for i, c := range p.Consts {
		if reflect.TypeOf(c) == reflect.TypeOf(v) && c == v {
			return i
		}
	}
	p.Consts = append(p.Consts, v)
	return len(p.Consts) - 1
}

// compactConsts removes unreferenced constants and renumbers the rest.
func compactConsts(p *Program) {
	remap := make(map[Opcode]Opcode)
	var consts []any
	for i := 0; i < len(p.Code); i += 1 + p.Code[i].Operands() {
		if p.Code[i] != Const {
			continue
		}
		old := p.Code[i+1]
		idx, ok := remap[old]
		if !ok {
			idx = Opcode(len(consts))
			consts = append(consts, p.Consts[old])
			remap[old] = idx
		}
		p.Code[i+1] = idx
	}
	p.Consts = consts
}
