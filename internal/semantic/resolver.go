package semantic

import (
	"fmt"
	"strings"

	"github.com/kolkov/uexpr/binding"
	"github.com/kolkov/uexpr/internal/ast"
	"github.com/kolkov/uexpr/internal/token"
	"github.com/kolkov/uexpr/types"
)

// Options configures type resolution.
type Options struct {
	// CoerceTruthiness accepts any operand where a boolean is required
	// (conditions, !, && and ||). Values are then tested for truthiness at
	// run time.
	CoerceTruthiness bool
}

// Info holds the resolved type of every node of one expression.
type Info struct {
	// Types maps expression nodes to their resolved types.
	// Key is the node's address (pointer identity).
	Types map[ast.Expr]types.Type

	// Scope is the scope the expression was resolved against. Code
	// generation uses it for assignability decisions.
	Scope binding.TypeScope

	// Options are the options resolution ran with.
	Options Options
}

// TypeOf returns the resolved type of a node, or the zero Type if the node
// was not part of the resolved expression.
func (i *Info) TypeOf(e ast.Expr) types.Type {
	return i.Types[e]
}

// IsAssignable reports whether a value of type from may be used where to is
// expected, trying the built-in rules before asking the scope.
func (i *Info) IsAssignable(from, to types.Type) bool {
	if ok, decided := types.BuiltinAssignable(from, to); decided {
		return ok
	}
	return i.Scope != nil && i.Scope.IsAssignable(from, to)
}

// resolver computes node types on demand and memoizes them in info.
type resolver struct {
	info *Info
}

// Resolve computes the type of expr and every node below it.
// Each node's type is computed exactly once.
func Resolve(expr ast.Expr, scope binding.TypeScope, opts Options) (info *Info, err error) {
	r := &resolver{
		info: &Info{
			Types:   make(map[ast.Expr]types.Type),
			Scope:   scope,
			Options: opts,
		},
	}

	defer func() {
		if rec := recover(); rec != nil {
			terr, ok := rec.(*TypeResolutionError)
			if !ok {
				panic(rec)
			}
			info, err = nil, terr
		}
	}()

	r.typeOf(expr)
	return r.info, nil
}

func (r *resolver) errorf(pos token.Position, format string, args ...any) {
	panic(&TypeResolutionError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// typeOf returns the memoized type of e, resolving it on first use.
func (r *resolver) typeOf(e ast.Expr) types.Type {
	if t, ok := r.info.Types[e]; ok {
		return t
	}
	t := r.resolve(e)
	r.info.Types[e] = t
	return t
}

func (r *resolver) resolve(e ast.Expr) types.Type {
	switch n := e.(type) {
	case *ast.Literal:
		return n.Type
	case *ast.VariableRef:
		return r.variable(n)
	case *ast.PropertyAccess:
		return r.property(n)
	case *ast.MethodCall:
		return r.call(n)
	case *ast.UnaryOp:
		return r.unary(n)
	case *ast.BinaryOp:
		return r.binary(n)
	case *ast.Ternary:
		return r.ternary(n)
	case *ast.Cast:
		return r.cast(n)
	}
	r.errorf(e.Pos(), "unsupported expression %T", e)
	return types.Type{}
}

func (r *resolver) scope() binding.TypeScope {
	if r.info.Scope == nil {
		return emptyScope{}
	}
	return r.info.Scope
}

func (r *resolver) variable(n *ast.VariableRef) types.Type {
	t, ok := r.scope().ResolveType(n.Name)
	if !ok || !t.IsValid() {
		r.errorf(n.Pos(), "unknown name %q", n.Name)
	}
	return t
}

func (r *resolver) property(n *ast.PropertyAccess) types.Type {
	recv := r.typeOf(n.Receiver)
	if recv.Kind == types.Null {
		r.errorf(n.Pos(), "cannot read property %q of null", n.Name)
	}
	t, ok := r.scope().PropertyType(recv, n.Name)
	if !ok || !t.IsValid() {
		r.errorf(n.Pos(), "unknown property %q on %s", n.Name, recv)
	}
	return t
}

func (r *resolver) call(n *ast.MethodCall) types.Type {
	var recv types.Type
	if n.Receiver != nil {
		recv = r.typeOf(n.Receiver)
		if recv.Kind == types.Null {
			r.errorf(n.Pos(), "cannot call method %q on null", n.Name)
		}
	}
	args := make([]types.Type, len(n.Args))
	for i, arg := range n.Args {
		args[i] = r.typeOf(arg)
	}

	t, ok := r.scope().MethodType(recv, n.Name, args)
	if !ok || !t.IsValid() {
		if n.Receiver == nil {
			r.errorf(n.Pos(), "unknown function %s(%s)", n.Name, typeList(args))
		}
		r.errorf(n.Pos(), "unknown method %s.%s(%s)", recv, n.Name, typeList(args))
	}
	return t
}

func (r *resolver) unary(n *ast.UnaryOp) types.Type {
	t := r.typeOf(n.Operand)
	switch n.Op {
	case token.SUB, token.ADD:
		if !t.IsNumeric() {
			r.errorf(n.Pos(), "operator %s requires a numeric operand, got %s", n.Op, t)
		}
		return t.Unboxed()
	case token.NOT:
		r.requireBoolean(n.Operand, t, "operator ! requires a boolean operand, got %s")
		return types.BooleanType
	}
	r.errorf(n.Pos(), "unknown unary operator %s", n.Op)
	return types.Type{}
}

func (r *resolver) binary(n *ast.BinaryOp) types.Type {
	left := r.typeOf(n.Left)
	right := r.typeOf(n.Right)

	switch n.Op {
	case token.ADD:
		if left.Kind == types.String || right.Kind == types.String {
			return types.StringType
		}
		fallthrough
	case token.SUB, token.MUL, token.DIV, token.MOD:
		t := types.Promote(left, right)
		if !t.IsValid() {
			r.errorf(n.Pos(), "operator %s is not defined on %s and %s", n.Op, left, right)
		}
		return t

	case token.LESS, token.LTE, token.GREATER, token.GTE:
		if !left.IsNumeric() || !right.IsNumeric() {
			r.errorf(n.Pos(), "operator %s is not defined on %s and %s", n.Op, left, right)
		}
		return types.BooleanType

	case token.EQUALS, token.NOT_EQUALS:
		return types.BooleanType

	case token.AND, token.OR:
		msg := "operator " + n.Op.String() + " requires boolean operands, got %s"
		r.requireBoolean(n.Left, left, msg)
		r.requireBoolean(n.Right, right, msg)
		return types.BooleanType
	}
	r.errorf(n.Pos(), "unknown binary operator %s", n.Op)
	return types.Type{}
}

// ternary applies the conditional typing policy:
//
//  1. the condition must be boolean (or coercible when enabled)
//  2. identical branch types give that type
//  3. two numeric branches give their promotion
//  4. exactly one numeric branch gives Object
//  5. otherwise the branch the other is assignable to wins,
//     whenFalse's type being tried first
//  6. otherwise Object
func (r *resolver) ternary(n *ast.Ternary) types.Type {
	cond := r.typeOf(n.Cond)
	r.requireBoolean(n.Cond, cond, "condition must be boolean, got %s")

	t := r.typeOf(n.WhenTrue)
	f := r.typeOf(n.WhenFalse)
	switch {
	case t == f:
		return t
	case t.IsNumeric() && f.IsNumeric():
		return types.Promote(t, f)
	case t.IsNumeric() != f.IsNumeric():
		return types.ObjectType
	case r.info.IsAssignable(t, f):
		return f
	case r.info.IsAssignable(f, t):
		return t
	}
	return types.ObjectType
}

func (r *resolver) cast(n *ast.Cast) types.Type {
	from := r.typeOf(n.Operand)
	to := n.Target
	if !to.IsValid() {
		r.errorf(n.Pos(), "invalid cast target %q", n.TargetName)
	}
	if !Convertible(from, to, r.info.IsAssignable) {
		r.errorf(n.Pos(), "cannot cast %s to %s", from, to)
	}
	return to
}

// Convertible reports whether a cast from one type to another is legal.
// Numeric types convert to any primitive numeric type, boxing and unboxing
// of the same primitive is allowed, and reference casts are checked at run
// time unless both sides are built-in types with no relationship.
func Convertible(from, to types.Type, assignable func(from, to types.Type) bool) bool {
	switch {
	case from == to:
		return true

	case to.IsPrimitive():
		switch {
		case to.IsNumeric():
			// widening, narrowing or unboxing first
			return from.IsNumeric() || from.Kind == types.Object
		case to.IsBoolean():
			return from.IsBoolean() || from.Kind == types.Object
		}
		return false

	case from.IsPrimitive():
		// boxing, then an upcast
		return to.Kind == types.Object || to == from.Box()

	case from.Kind == types.Null, from.Kind == types.Object, to.Kind == types.Object:
		return true

	case from.Kind == types.Class || to.Kind == types.Class:
		// downcasts are checked at run time
		return true
	}
	return assignable(from, to)
}

func (r *resolver) requireBoolean(e ast.Expr, t types.Type, format string) {
	if t.IsBoolean() || r.info.Options.CoerceTruthiness {
		return
	}
	r.errorf(e.Pos(), format, t)
}

func typeList(ts []types.Type) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}

// emptyScope resolves nothing. Expressions made of literals need no scope.
type emptyScope struct{}

func (emptyScope) ResolveType(string) (types.Type, bool)                          { return types.Type{}, false }
func (emptyScope) PropertyType(types.Type, string) (types.Type, bool)             { return types.Type{}, false }
func (emptyScope) MethodType(types.Type, string, []types.Type) (types.Type, bool) { return types.Type{}, false }
func (emptyScope) IsAssignable(types.Type, types.Type) bool                       { return false }
