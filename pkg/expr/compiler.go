package expr

import (
	"github.com/cespare/xxhash/v2"
)

type entry[T any] struct {
	src string
	v   T
}

type cache[T any] map[uint64][]entry[T]

func (c cache[T]) get(key uint64, src string) (T, bool) {
	for _, e := range c[key] {
		if e.src == src {
			return e.v, true
		}
	}
	var zero T
	return zero, false
}

func (c cache[T]) put(key uint64, src string, v T) {
	c[key] = append(c[key], entry[T]{src: src, v: v})
}

// Compiler memoizes compilation by source text, so every distinct option
// string is parsed once no matter how many nodes use it.
type Compiler struct {
	exprs   cache[*Expression]
	options cache[*Options]
	decls   cache[[]Declaration]
}

func NewCompiler() *Compiler {
	return &Compiler{
		exprs:   cache[*Expression]{},
		options: cache[*Options]{},
		decls:   cache[[]Declaration]{},
	}
}

func (c *Compiler) Compile(src string) (*Expression, error) {
	return memo(c.exprs, src, Compile)
}

func (c *Compiler) CompileOptions(src string) (*Options, error) {
	return memo(c.options, src, CompileOptions)
}

// ParseDeclarations returns the cached declarations of src. Callers must not
// modify the returned slice.
func (c *Compiler) ParseDeclarations(src string) ([]Declaration, error) {
	return memo(c.decls, src, ParseDeclarations)
}

// Len is the number of cached entries.
func (c *Compiler) Len() int {
	n := 0
	for _, es := range c.exprs {
		n += len(es)
	}
	for _, es := range c.options {
		n += len(es)
	}
	for _, es := range c.decls {
		n += len(es)
	}
	return n
}

func memo[T any](c cache[T], src string, compile func(string) (T, error)) (T, error) {
	key := xxhash.Sum64String(src)
	if v, ok := c.get(key, src); ok {
		return v, nil
	}
	v, err := compile(src)
	if err != nil {
		return v, err
	}
	c.put(key, src, v)
	return v, nil
}
