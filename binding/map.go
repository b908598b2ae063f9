package binding

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kolkov/uexpr/internal/runtime"
	"github.com/kolkov/uexpr/types"
)

// patterns caches the regular expressions used by String.matches.
var patterns = runtime.NewRegexCache(true)

// Sentinel errors returned by Map.
var (
	// ErrUnknownName is returned when a variable or function is not bound.
	ErrUnknownName = errors.New("unknown name")

	// ErrUnknownMember is returned when a receiver has no such property or method.
	ErrUnknownMember = errors.New("unknown member")
)

// Func is a function or method callable from expressions.
type Func struct {
	// Result is the static result type.
	Result types.Type

	// Params, when non-nil, fixes the number of arguments.
	Params []types.Type

	// Call performs the invocation. receiver is nil for root functions.
	Call func(receiver any, args []any) (any, error)
}

// Object is a host value of a declared class with named fields.
type Object struct {
	Class  string
	Fields map[string]any
}

type variable struct {
	typ   types.Type
	value any
}

type class struct {
	super   string
	props   map[string]types.Type
	methods map[string]Func
}

// Map is a self-contained TypeScope and Context backed by in-memory tables.
// It is meant for tests, tools and simple hosts. Build it completely before
// sharing it between goroutines; after that it is read-only.
type Map struct {
	vars    map[string]variable
	funcs   map[string]Func
	classes map[string]*class
}

var (
	_ TypeScope = (*Map)(nil)
	_ Context   = (*Map)(nil)
)

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{
		vars:    make(map[string]variable),
		funcs:   make(map[string]Func),
		classes: make(map[string]*class),
	}
}

// Set binds a named value of a declared type.
func (m *Map) Set(name string, t types.Type, value any) *Map {
	m.vars[name] = variable{typ: t, value: value}
	return m
}

// Define registers a root function.
func (m *Map) Define(name string, fn Func) *Map {
	m.funcs[name] = fn
	return m
}

// Class declares a class with an optional superclass and property types.
func (m *Map) Class(name, super string, props map[string]types.Type) *Map {
	c := m.class(name)
	c.super = super
	for k, v := range props {
		c.props[k] = v
	}
	return m
}

// Method registers a method on a declared class.
func (m *Map) Method(className, name string, fn Func) *Map {
	m.class(className).methods[name] = fn
	return m
}

func (m *Map) class(name string) *class {
	c, ok := m.classes[name]
	if !ok {
		c = &class{props: make(map[string]types.Type), methods: make(map[string]Func)}
		m.classes[name] = c
	}
	return c
}

// ancestors calls fn for the class and each superclass until fn returns true.
func (m *Map) ancestors(name string, fn func(*class) bool) bool {
	seen := make(map[string]bool)
	for name != "" && !seen[name] {
		seen[name] = true
		c, ok := m.classes[name]
		if !ok {
			return false
		}
		if fn(c) {
			return true
		}
		name = c.super
	}
	return false
}

// ResolveType implements TypeScope.
func (m *Map) ResolveType(name string) (types.Type, bool) {
	v, ok := m.vars[name]
	return v.typ, ok
}

// PropertyType implements TypeScope.
func (m *Map) PropertyType(receiver types.Type, name string) (types.Type, bool) {
	if receiver.Kind != types.Class {
		return types.Type{}, false
	}
	var t types.Type
	found := m.ancestors(receiver.Name, func(c *class) bool {
		var ok bool
		t, ok = c.props[name]
		return ok
	})
	return t, found
}

// MethodType implements TypeScope.
func (m *Map) MethodType(receiver types.Type, name string, args []types.Type) (types.Type, bool) {
	fn, ok := m.method(receiver, name)
	if !ok {
		return types.Type{}, false
	}
	if fn.Params != nil && len(fn.Params) != len(args) {
		return types.Type{}, false
	}
	return fn.Result, true
}

func (m *Map) method(receiver types.Type, name string) (Func, bool) {
	switch receiver.Kind {
	case types.Invalid:
		fn, ok := m.funcs[name]
		return fn, ok
	case types.String:
		fn, ok := stringMethods[name]
		return fn, ok
	case types.Class:
		var fn Func
		found := m.ancestors(receiver.Name, func(c *class) bool {
			var ok bool
			fn, ok = c.methods[name]
			return ok
		})
		return fn, found
	}
	return Func{}, false
}

// IsAssignable implements TypeScope and Context. Classes are assignable to
// themselves and their declared superclasses.
func (m *Map) IsAssignable(from, to types.Type) bool {
	if ok, decided := types.BuiltinAssignable(from, to); decided {
		return ok
	}
	if from.Kind != types.Class || to.Kind != types.Class {
		return false
	}
	return m.ancestors(from.Name, func(c *class) bool {
		return m.classes[to.Name] == c
	})
}

// Lookup implements Context.
func (m *Map) Lookup(name string) (any, error) {
	v, ok := m.vars[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownName, name)
	}
	return v.value, nil
}

// Property implements Context.
func (m *Map) Property(receiver any, name string) (any, error) {
	switch r := receiver.(type) {
	case *Object:
		if v, ok := r.Fields[name]; ok {
			return v, nil
		}
	case map[string]any:
		if v, ok := r[name]; ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: property %s on %T", ErrUnknownMember, name, receiver)
}

// Invoke implements Context.
func (m *Map) Invoke(receiver any, method string, args []any) (any, error) {
	var (
		fn Func
		ok bool
	)
	if receiver == nil {
		fn, ok = m.funcs[method]
	} else {
		fn, ok = m.method(m.TypeOf(receiver), method)
	}
	if !ok || fn.Call == nil {
		if receiver == nil {
			return nil, fmt.Errorf("%w: function %s", ErrUnknownName, method)
		}
		return nil, fmt.Errorf("%w: method %s on %T", ErrUnknownMember, method, receiver)
	}
	return fn.Call(receiver, args)
}

// TypeOf implements Context.
func (m *Map) TypeOf(value any) types.Type {
	if o, ok := value.(*Object); ok {
		return types.ClassOf(o.Class)
	}
	return types.Of(value)
}

var stringMethods = map[string]Func{
	"length": {
		Result: types.IntType,
		Params: []types.Type{},
		Call: func(r any, _ []any) (any, error) {
			return int32(len([]rune(r.(string)))), nil
		},
	},
	"isEmpty": {
		Result: types.BooleanType,
		Params: []types.Type{},
		Call: func(r any, _ []any) (any, error) {
			return r.(string) == "", nil
		},
	},
	"toUpperCase": {
		Result: types.StringType,
		Params: []types.Type{},
		Call: func(r any, _ []any) (any, error) {
			return strings.ToUpper(r.(string)), nil
		},
	},
	"toLowerCase": {
		Result: types.StringType,
		Params: []types.Type{},
		Call: func(r any, _ []any) (any, error) {
			return strings.ToLower(r.(string)), nil
		},
	},
	"trim": {
		Result: types.StringType,
		Params: []types.Type{},
		Call: func(r any, _ []any) (any, error) {
			return strings.TrimSpace(r.(string)), nil
		},
	},
	"contains": {
		Result: types.BooleanType,
		Params: []types.Type{types.StringType},
		Call: func(r any, args []any) (any, error) {
			sub, ok := args[0].(string)
			if !ok {
				return nil, fmt.Errorf("contains: argument must be a non-null String, got %T", args[0])
			}
			return strings.Contains(r.(string), sub), nil
		},
	},
	"matches": {
		Result: types.BooleanType,
		Params: []types.Type{types.StringType},
		Call: func(r any, args []any) (any, error) {
			pattern, ok := args[0].(string)
			if !ok {
				return nil, fmt.Errorf("matches: pattern must be a non-null String, got %T", args[0])
			}
			re, err := patterns.Get(pattern)
			if err != nil {
				return nil, fmt.Errorf("matches: %w", err)
			}
			return re.MatchString(r.(string)), nil
		},
	},
}
