// Package semantic resolves the static type of every expression node.
//
// Resolution uses a nominal type system: primitive numeric kinds ranked for
// promotion, boxed forms of every primitive, String, null, Object as the top
// type, and host classes whose relationships are answered by a
// binding.TypeScope. Resolved types are recorded in an Info side table keyed
// by node identity, so the AST itself stays immutable.
package semantic

import (
	"fmt"

	"github.com/kolkov/uexpr/internal/token"
)

// TypeResolutionError reports an expression that has no valid static type.
type TypeResolutionError struct {
	Pos     token.Position
	Message string
}

// Error implements the error interface.
func (e *TypeResolutionError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	return e.Message
}
