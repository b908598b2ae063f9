// Package vm executes compiled expression programs.
package vm

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kolkov/uexpr/binding"
	"github.com/kolkov/uexpr/internal/compiler"
	"github.com/kolkov/uexpr/internal/runtime"
	"github.com/kolkov/uexpr/internal/token"
	"github.com/kolkov/uexpr/types"
)

// Error types
var (
	// ErrNullReceiver is returned when a property or method is used on null.
	ErrNullReceiver = errors.New("null receiver")

	// ErrClassCast is returned when a checked cast fails.
	ErrClassCast = errors.New("class cast failed")

	// ErrCondition is returned when a condition does not hold a boolean.
	ErrCondition = errors.New("condition is not boolean")
)

// DefaultStackSize is the initial stack capacity.
const DefaultStackSize = 16

// RuntimeError reports a failure while evaluating a compiled program.
type RuntimeError struct {
	Pos     token.Position
	Message string
	Err     error
}

func (e *RuntimeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Pos, e.Message, e.Err)
}

// Unwrap returns the underlying error.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// VM is the expression virtual machine. A VM runs one program at a time;
// use a Pool to evaluate a program from several goroutines.
type VM struct {
	program *compiler.Program

	// Value stack (inline for performance - no pointer indirection)
	stackData []any
	sp        int // Stack pointer (index of next free slot)
}

// New creates a VM for prog.
func New(prog *compiler.Program) *VM {
	return &VM{
		program:   prog,
		stackData: make([]any, DefaultStackSize),
	}
}

// Pool hands out VMs for one program and takes them back after use.
type Pool struct {
	pool sync.Pool
}

// NewPool creates a pool of VMs running prog.
func NewPool(prog *compiler.Program) *Pool {
	return &Pool{pool: sync.Pool{New: func() any { return New(prog) }}}
}

// Run evaluates the pool's program with a pooled VM.
func (p *Pool) Run(ctx binding.Context) (any, error) {
	vm := p.pool.Get().(*VM)
	defer p.pool.Put(vm)
	return vm.Run(ctx)
}

// -----------------------------------------------------------------------------
// Inline Stack Operations
// -----------------------------------------------------------------------------

// push pushes a value onto the stack.
func (vm *VM) push(v any) {
	if vm.sp >= len(vm.stackData) {
		vm.growStack()
	}
	vm.stackData[vm.sp] = v
	vm.sp++
}

// pop removes and returns the top value from the stack.
func (vm *VM) pop() any {
	vm.sp--
	v := vm.stackData[vm.sp]
	vm.stackData[vm.sp] = nil
	return v
}

// peek returns the top value without removing it.
func (vm *VM) peek() any {
	return vm.stackData[vm.sp-1]
}

// replaceTop replaces the top value.
func (vm *VM) replaceTop(v any) {
	vm.stackData[vm.sp-1] = v
}

// popN pops the top n values into a new slice, bottom first.
func (vm *VM) popN(n int) []any {
	vals := make([]any, n)
	copy(vals, vm.stackData[vm.sp-n:vm.sp])
	clear(vm.stackData[vm.sp-n : vm.sp])
	vm.sp -= n
	return vals
}

// growStack doubles the stack capacity.
func (vm *VM) growStack() {
	newData := make([]any, len(vm.stackData)*2)
	copy(newData, vm.stackData)
	vm.stackData = newData
}

// reset empties the stack, dropping references to evaluated values.
func (vm *VM) reset() {
	clear(vm.stackData[:vm.sp])
	vm.sp = 0
}

// Run evaluates the program against ctx and returns its value. Numeric and
// boolean results are normalized to the Go representation of the program's
// static type.
func (vm *VM) Run(ctx binding.Context) (any, error) {
	defer vm.reset()

	if err := vm.execute(ctx); err != nil {
		return nil, err
	}
	if vm.sp != 1 {
		return nil, &RuntimeError{Message: fmt.Sprintf("stack holds %d values after evaluation", vm.sp)}
	}

	v := vm.pop()
	if result := vm.program.Result; v != nil && result.Kind.IsPrimitive() {
		converted, err := types.Convert(v, result)
		if err != nil {
			return nil, &RuntimeError{Message: "result has the wrong type", Err: err}
		}
		v = converted
	}
	return v, nil
}

// fail builds the error for the instruction at ip.
func (vm *VM) fail(ip int, err error, format string, args ...any) error {
	return &RuntimeError{
		Pos:     vm.program.PosAt(ip),
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// popBool pops a condition value.
func (vm *VM) popBool(ip int) (bool, error) {
	v := vm.pop()
	b, ok := v.(bool)
	if !ok {
		return false, vm.fail(ip, ErrCondition, "got %T", v)
	}
	return b, nil
}

func (vm *VM) execute(ctx binding.Context) error {
	prog := vm.program
	code := prog.Code

	ip := 0
	for ip < len(code) {
		start := ip
		op := code[ip]
		ip++

		switch op {
		case compiler.Nop:
			// Do nothing

		case compiler.Const:
			vm.push(prog.Consts[code[ip]])
			ip++

		case compiler.Dupe:
			vm.push(vm.peek())

		case compiler.Drop:
			vm.pop()

		case compiler.Load:
			name := prog.Names[code[ip]]
			ip++
			v, err := ctx.Lookup(name)
			if err != nil {
				return vm.fail(start, err, "cannot resolve %s", name)
			}
			vm.push(v)

		case compiler.Property:
			name := prog.Names[code[ip]]
			ip++
			recv := vm.pop()
			if recv == nil {
				return vm.fail(start, ErrNullReceiver, "cannot read property %q of null", name)
			}
			v, err := ctx.Property(recv, name)
			if err != nil {
				return vm.fail(start, err, "cannot read property %q", name)
			}
			vm.push(v)

		case compiler.Invoke:
			name := prog.Names[code[ip]]
			argc := int(code[ip+1])
			ip += 2
			args := vm.popN(argc)
			recv := vm.pop()
			if recv == nil {
				return vm.fail(start, ErrNullReceiver, "cannot call method %q on null", name)
			}
			v, err := ctx.Invoke(recv, name, args)
			if err != nil {
				return vm.fail(start, err, "call of method %q failed", name)
			}
			vm.push(v)

		case compiler.Call:
			name := prog.Names[code[ip]]
			argc := int(code[ip+1])
			ip += 2
			v, err := ctx.Invoke(nil, name, vm.popN(argc))
			if err != nil {
				return vm.fail(start, err, "call of function %q failed", name)
			}
			vm.push(v)

		case compiler.Convert:
			t := prog.Types[code[ip]]
			ip++
			v, err := types.Convert(vm.peek(), t)
			if err != nil {
				return vm.fail(start, err, "conversion to %s failed", t)
			}
			vm.replaceTop(v)

		case compiler.CheckCast:
			t := prog.Types[code[ip]]
			ip++
			if err := checkCast(ctx, vm.peek(), t); err != nil {
				return vm.fail(start, err, "cannot cast to %s", t)
			}

		case compiler.Truthy:
			vm.replaceTop(runtime.Truthy(vm.peek()))

		case compiler.Add, compiler.Subtract, compiler.Multiply, compiler.Divide, compiler.Modulo:
			kind := types.Kind(code[ip])
			ip++
			b := vm.pop()
			v, err := runtime.Arith(op.Token(), kind, vm.peek(), b)
			if err != nil {
				return vm.fail(start, err, "operator %s failed", op.Token())
			}
			vm.replaceTop(v)

		case compiler.Negate:
			kind := types.Kind(code[ip])
			ip++
			v, err := runtime.Negate(kind, vm.peek())
			if err != nil {
				return vm.fail(start, err, "negation failed")
			}
			vm.replaceTop(v)

		case compiler.Concat:
			b := vm.pop()
			vm.replaceTop(runtime.Concat(vm.peek(), b))

		case compiler.Equal:
			b := vm.pop()
			vm.replaceTop(runtime.Equal(vm.peek(), b))

		case compiler.NotEqual:
			b := vm.pop()
			vm.replaceTop(!runtime.Equal(vm.peek(), b))

		case compiler.Less, compiler.LessEqual, compiler.Greater, compiler.GreaterEqual:
			kind := types.Kind(code[ip])
			ip++
			b := vm.pop()
			v, err := runtime.Compare(op.Token(), kind, vm.peek(), b)
			if err != nil {
				return vm.fail(start, err, "operator %s failed", op.Token())
			}
			vm.replaceTop(v)

		case compiler.Not:
			b, err := vm.popBool(start)
			if err != nil {
				return err
			}
			vm.push(!b)

		case compiler.Jump:
			offset := int(code[ip])
			ip++
			ip += offset

		case compiler.JumpTrue, compiler.JumpFalse:
			offset := int(code[ip])
			ip++
			b, err := vm.popBool(start)
			if err != nil {
				return err
			}
			if b == (op == compiler.JumpTrue) {
				ip += offset
			}

		default:
			return vm.fail(start, nil, "unknown opcode: %d", op)
		}
	}
	return nil
}

// checkCast verifies that a non-null value's runtime type is assignable to t.
func checkCast(ctx binding.Context, v any, t types.Type) error {
	if v == nil {
		return nil
	}
	rt := ctx.TypeOf(v)
	ok, decided := types.BuiltinAssignable(rt, t)
	if !decided {
		ok = ctx.IsAssignable(rt, t)
	}
	if !ok {
		return fmt.Errorf("%w: %s is not %s", ErrClassCast, rt, t)
	}
	return nil
}
