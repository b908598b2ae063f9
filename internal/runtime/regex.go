package runtime

import (
	"sync"

	"github.com/coregx/coregex"
)

// Regex wraps a compiled coregex pattern.
type Regex struct {
	pattern string
	re      *coregex.Regexp
}

// Compile compiles a pattern with leftmost-first semantics.
func Compile(pattern string) (*Regex, error) {
	re, err := coregex.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Regex{pattern: pattern, re: re}, nil
}

// MustCompile creates a Regex, panicking on error.
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

// Pattern returns the original pattern string.
func (r *Regex) Pattern() string {
	return r.pattern
}

// MatchString reports whether s contains any match.
func (r *Regex) MatchString(s string) bool {
	return r.re.MatchString(s)
}

// FindStringIndex returns the start and end of the first match, or nil.
func (r *Regex) FindStringIndex(s string) []int {
	return r.re.FindStringIndex(s)
}

// FindAllStringIndex returns all non-overlapping matches.
func (r *Regex) FindAllStringIndex(s string, n int) [][]int {
	return r.re.FindAllStringIndex(s, n)
}

// RegexCache is a thread-safe cache of compiled patterns. An anchored cache
// wraps every pattern in ^(?:...)$ so that it must match the whole input.
type RegexCache struct {
	cache    sync.Map // map[string]*Regex
	anchored bool
}

// NewRegexCache creates an empty cache.
func NewRegexCache(anchored bool) *RegexCache {
	return &RegexCache{anchored: anchored}
}

// Get returns the compiled pattern, compiling it on first use.
// When two goroutines compile the same pattern the first stored wins.
func (c *RegexCache) Get(pattern string) (*Regex, error) {
	if re, ok := c.cache.Load(pattern); ok {
		return re.(*Regex), nil
	}
	source := pattern
	if c.anchored {
		source = "^(?:" + pattern + ")$"
	}
	re, err := Compile(source)
	if err != nil {
		return nil, err
	}
	actual, _ := c.cache.LoadOrStore(pattern, re)
	return actual.(*Regex), nil
}
