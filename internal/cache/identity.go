package cache

import (
	"strings"

	"github.com/opencontainers/go-digest"
)

// discriminatorLen is the number of digest hex characters kept in an identity.
const discriminatorLen = 16

// Identity derives the artifact name for an expression found in a
// declaration. The result is a valid identifier made of the sanitized
// declaration, the "$Expr" marker and a content digest of both inputs, so
// equal pairs always map to the same name.
func Identity(declaration, text string) string {
	d := digest.FromString(declaration + "\x00" + text)
	return sanitize(declaration) + "$Expr" + d.Encoded()[:discriminatorLen]
}

func sanitize(declaration string) string {
	if declaration == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, declaration)
}
