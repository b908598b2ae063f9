package compiler

import (
	"fmt"
	"math"

	"github.com/kolkov/uexpr/internal/ast"
	"github.com/kolkov/uexpr/internal/semantic"
	"github.com/kolkov/uexpr/internal/token"
	"github.com/kolkov/uexpr/types"
)

// CodeGenerationError reports an operator and type combination the code
// generator has no lowering for. Resolved expressions never produce one
// unless the resolver and the generator disagree.
type CodeGenerationError struct {
	Pos     token.Position
	Message string
}

func (e *CodeGenerationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Generate lowers a resolved expression to bytecode.
func Generate(expr ast.Expr, info *semantic.Info) (prog *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*CodeGenerationError); ok {
				prog, err = nil, ce
			} else {
				panic(r) // Re-panic for non-codegen errors
			}
		}
	}()

	if expr == nil || info == nil {
		return nil, &CodeGenerationError{Message: "nothing to generate"}
	}

	c := &compiler{
		info:    info,
		program: &Program{Result: info.TypeOf(expr)},
		consts:  make(map[any]int),
		names:   make(map[string]int),
		types:   make(map[types.Type]int),
	}
	c.compileExpr(expr)
	return c.program, nil
}

// compiler holds the state for lowering one expression.
type compiler struct {
	info    *semantic.Info
	program *Program

	// Pool indexes for deduplication
	consts map[any]int
	names  map[string]int
	types  map[types.Type]int

	pos token.Position // position of the node being lowered
}

func (c *compiler) errorf(pos token.Position, format string, args ...any) {
	panic(&CodeGenerationError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// add appends opcodes, recording the current position for each slot.
func (c *compiler) add(ops ...Opcode) {
	c.program.Code = append(c.program.Code, ops...)
	for range ops {
		c.program.Positions = append(c.program.Positions, c.pos)
	}
}

// addAt appends an instruction attributed to pos, such as an operator
// inside the expression being compiled.
func (c *compiler) addAt(pos token.Position, ops ...Opcode) {
	if pos.Line == 0 {
		c.add(ops...)
		return
	}
	saved := c.pos
	c.pos = pos
	c.add(ops...)
	c.pos = saved
}

// opcodeInt converts an int to Opcode, checking for overflow.
func (c *compiler) opcodeInt(n int) Opcode {
	if n > math.MaxInt32 || n < math.MinInt32 {
		c.errorf(c.pos, "value %d overflows int32", n)
	}
	return Opcode(n)
}

// constIndex adds or reuses a constant.
func (c *compiler) constIndex(v any) Opcode {
	if idx, ok := c.consts[v]; ok {
		return c.opcodeInt(idx)
	}
	idx := len(c.program.Consts)
	c.program.Consts = append(c.program.Consts, v)
	c.consts[v] = idx
	return c.opcodeInt(idx)
}

// nameIndex adds or reuses a name.
func (c *compiler) nameIndex(name string) Opcode {
	if idx, ok := c.names[name]; ok {
		return c.opcodeInt(idx)
	}
	idx := len(c.program.Names)
	c.program.Names = append(c.program.Names, name)
	c.names[name] = idx
	return c.opcodeInt(idx)
}

// typeIndex adds or reuses a type.
func (c *compiler) typeIndex(t types.Type) Opcode {
	if idx, ok := c.types[t]; ok {
		return c.opcodeInt(idx)
	}
	idx := len(c.program.Types)
	c.program.Types = append(c.program.Types, t)
	c.types[t] = idx
	return c.opcodeInt(idx)
}

// jumpForward emits a forward jump and returns its patch location.
func (c *compiler) jumpForward(op Opcode) int {
	c.add(op, 0) // Placeholder for offset
	return len(c.program.Code)
}

// patchForward patches a forward jump to the current position.
func (c *compiler) patchForward(mark int) {
	offset := len(c.program.Code) - mark
	c.program.Code[mark-1] = c.opcodeInt(offset)
}

func (c *compiler) typeOf(e ast.Expr) types.Type {
	t := c.info.TypeOf(e)
	if !t.IsValid() {
		c.errorf(e.Pos(), "expression %s has no resolved type", ast.String(e))
	}
	return t
}

// compileExpr compiles an expression, leaving its value on the stack.
func (c *compiler) compileExpr(expr ast.Expr) {
	saved := c.pos
	c.pos = expr.Pos()
	defer func() { c.pos = saved }()

	switch e := expr.(type) {
	case *ast.Literal:
		c.add(Const, c.constIndex(e.Value))

	case *ast.VariableRef:
		c.add(Load, c.nameIndex(e.Name))

	case *ast.PropertyAccess:
		c.compileExpr(e.Receiver)
		c.add(Property, c.nameIndex(e.Name))

	case *ast.MethodCall:
		c.compileCall(e)

	case *ast.UnaryOp:
		c.compileUnaryExpr(e)

	case *ast.BinaryOp:
		c.compileBinaryExpr(e)

	case *ast.Ternary:
		c.compileTernary(e)

	case *ast.Cast:
		c.compileCast(e)

	default:
		c.errorf(expr.Pos(), "unexpected expression type: %T", expr)
	}
}

// compileCall compiles a method call or a root function call.
func (c *compiler) compileCall(e *ast.MethodCall) {
	if e.Receiver != nil {
		c.compileExpr(e.Receiver)
	}
	for _, arg := range e.Args {
		c.compileExpr(arg)
	}
	op := Invoke
	if e.Receiver == nil {
		op = Call
	}
	c.add(op, c.nameIndex(e.Name), c.opcodeInt(len(e.Args)))
}

// compileOperand compiles e and converts its value to type to.
func (c *compiler) compileOperand(e ast.Expr, to types.Type) {
	c.compileExpr(e)
	c.coerce(c.typeOf(e), to)
}

// coerce emits the conversion that turns a value of static type from into
// one of type to. Reference upcasts need no instruction.
func (c *compiler) coerce(from, to types.Type) {
	switch {
	case from == to:
		return
	case to.Kind.IsPrimitive():
		// promotion, boxing or unboxing
		c.add(Convert, c.typeIndex(to))
	case from.Kind.IsPrimitive() && !from.Boxed:
		// boxing for a reference join
		c.add(Convert, c.typeIndex(from.Box()))
	}
}

// compileCondition compiles e as a boolean operand.
func (c *compiler) compileCondition(e ast.Expr) {
	c.compileExpr(e)
	t := c.typeOf(e)
	switch {
	case t == types.BooleanType:
	case t.IsBoolean():
		c.add(Convert, c.typeIndex(types.BooleanType))
	case c.info.Options.CoerceTruthiness:
		c.add(Truthy)
	default:
		c.errorf(e.Pos(), "%s is not a condition", t)
	}
}

// compileUnaryExpr compiles a unary expression.
func (c *compiler) compileUnaryExpr(e *ast.UnaryOp) {
	switch e.Op {
	case token.NOT:
		c.compileCondition(e.Operand)
		c.add(Not)

	case token.SUB, token.ADD:
		t := c.typeOf(e.Operand).Unboxed()
		if !t.IsNumeric() {
			c.errorf(e.Pos(), "operator %s on %s", e.Op, t)
		}
		c.compileOperand(e.Operand, t)
		if e.Op == token.SUB {
			c.add(Negate, Opcode(t.Kind))
		}

	default:
		c.errorf(e.Pos(), "unknown unary operator: %v", e.Op)
	}
}

var arithOps = map[token.Token]Opcode{
	token.ADD: Add,
	token.SUB: Subtract,
	token.MUL: Multiply,
	token.DIV: Divide,
	token.MOD: Modulo,
}

var compareOps = map[token.Token]Opcode{
	token.LESS:    Less,
	token.LTE:     LessEqual,
	token.GREATER: Greater,
	token.GTE:     GreaterEqual,
}

// compileBinaryExpr compiles a binary expression.
func (c *compiler) compileBinaryExpr(e *ast.BinaryOp) {
	// Short-circuit operators
	switch e.Op {
	case token.AND, token.OR:
		jump := JumpFalse
		if e.Op == token.OR {
			jump = JumpTrue
		}
		c.compileCondition(e.Left)
		c.add(Dupe)
		mark := c.jumpForward(jump)
		c.add(Drop)
		c.compileCondition(e.Right)
		c.patchForward(mark)
		return
	}

	left := c.typeOf(e.Left)
	right := c.typeOf(e.Right)
	result := c.typeOf(e)

	switch e.Op {
	case token.ADD, token.SUB, token.MUL, token.DIV, token.MOD:
		if result == types.StringType {
			c.compileExpr(e.Left)
			c.compileExpr(e.Right)
			c.addAt(e.OpPos, Concat)
			return
		}
		if !result.IsNumeric() {
			c.errorf(e.Pos(), "operator %s on %s and %s", e.Op, left, right)
		}
		c.compileOperand(e.Left, result)
		c.compileOperand(e.Right, result)
		c.addAt(e.OpPos, arithOps[e.Op], Opcode(result.Kind))

	case token.LESS, token.LTE, token.GREATER, token.GTE:
		t := types.Promote(left, right)
		if !t.IsValid() {
			c.errorf(e.Pos(), "operator %s on %s and %s", e.Op, left, right)
		}
		c.compileOperand(e.Left, t)
		c.compileOperand(e.Right, t)
		c.addAt(e.OpPos, compareOps[e.Op], Opcode(t.Kind))

	case token.EQUALS, token.NOT_EQUALS:
		// two boxed operands compare by value without unboxing
		if t := types.Promote(left, right); t.IsValid() && (left.IsPrimitive() || right.IsPrimitive()) {
			c.compileOperand(e.Left, t)
			c.compileOperand(e.Right, t)
		} else {
			c.compileExpr(e.Left)
			c.compileExpr(e.Right)
		}
		if e.Op == token.EQUALS {
			c.addAt(e.OpPos, Equal)
		} else {
			c.addAt(e.OpPos, NotEqual)
		}

	default:
		c.errorf(e.Pos(), "unknown binary operator: %v", e.Op)
	}
}

// compileTernary compiles a conditional; only the taken branch runs.
func (c *compiler) compileTernary(e *ast.Ternary) {
	join := c.typeOf(e)

	c.compileCondition(e.Cond)
	elseMark := c.jumpForward(JumpFalse)
	c.compileOperand(e.WhenTrue, join)
	endMark := c.jumpForward(Jump)
	c.patchForward(elseMark)
	c.compileOperand(e.WhenFalse, join)
	c.patchForward(endMark)
}

// compileCast compiles a cast: conversions for primitive targets and boxing,
// checked casts for reference targets the static types do not prove.
func (c *compiler) compileCast(e *ast.Cast) {
	from := c.typeOf(e.Operand)
	to := e.Target
	c.compileExpr(e.Operand)

	switch {
	case from == to:
	case to.IsPrimitive():
		c.add(Convert, c.typeIndex(to))
	case to.Boxed && from.Kind.IsPrimitive() && !from.Boxed:
		c.add(Convert, c.typeIndex(to))
	case !c.info.IsAssignable(from, to):
		c.add(CheckCast, c.typeIndex(to))
	}
}
