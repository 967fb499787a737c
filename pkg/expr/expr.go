// Package expr compiles binding option strings into expressions evaluated
// against a scope of model values.
//
// The language is a small subset of JavaScript expressions: literals, member
// access, indexing, calls, unary and binary operators, the conditional
// operator and object and array literals.
package expr

import (
	"github.com/delaneyj/domwire/pkg/errors"
	"github.com/delaneyj/domwire/pkg/property"
)

// Scope resolves root identifiers.
type Scope interface {
	Resolve(name string) (any, bool)
}

// MapScope is a Scope backed by a map.
type MapScope map[string]any

func (m MapScope) Resolve(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// Env is what an expression is evaluated against.
type Env struct {
	Scope Scope
	// Track, when set, is called with every property read during
	// evaluation.
	Track func(p property.Untyped)
}

func (env Env) unwrap(v any) any {
	for {
		p, ok := v.(property.Untyped)
		if !ok {
			return v
		}
		if env.Track != nil {
			env.Track(p)
		}
		v = p.Get()
	}
}

// Expression is a compiled, stateless expression.
type Expression struct {
	src  string
	root node
}

// Compile parses src as a single expression.
func Compile(src string) (*Expression, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, parseError(src, err)
	}
	root, err := p.parseExpr(0)
	if err == nil {
		err = p.done()
	}
	if err != nil {
		return nil, parseError(src, err)
	}
	return &Expression{src: src, root: root}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string) *Expression {
	x, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return x
}

func parseError(src string, err error) error {
	e := errors.Wrap("expr.Compile", errors.KindParse, err).(*errors.Error)
	e.Path = src
	return e
}

func (x *Expression) Source() string {
	return x.src
}

// IsPath reports whether the expression is a plain field access path such as
// `a.b[0].c`.
func (x *Expression) IsPath() bool {
	return isPath(x.root)
}

// Eval evaluates the expression, unwrapping every property it meets.
func (x *Expression) Eval(env Env) (any, error) {
	return x.root.eval(env, false)
}

// Ref evaluates the expression like Eval, except that when it is a path the
// value of its last segment is returned as is. A path ending on a property
// yields the property itself.
func (x *Expression) Ref(env Env) (any, error) {
	return x.root.eval(env, isPath(x.root))
}

func (x *Expression) String() string {
	return x.root.String()
}

// Options are compiled binding options: either one expression or an ordered
// set of keyed expressions written as an object literal.
type Options struct {
	src    string
	Single *Expression
	Keys   []string
	fields map[string]*Expression
}

// CompileOptions compiles src either as an object literal of keyed
// expressions or as a single expression.
func CompileOptions(src string) (*Options, error) {
	x, err := Compile(src)
	if err != nil {
		return nil, err
	}
	obj, ok := x.root.(*objectNode)
	if !ok {
		return &Options{src: src, Single: x}, nil
	}
	o := &Options{src: src, fields: make(map[string]*Expression, len(obj.fields))}
	for _, f := range obj.fields {
		o.Keys = append(o.Keys, f.key)
		o.fields[f.key] = &Expression{src: f.src, root: f.x}
	}
	return o, nil
}

func (o *Options) Source() string {
	return o.src
}

// IsObject reports whether the options were written as an object literal.
func (o *Options) IsObject() bool {
	return o.Single == nil
}

// Field returns the expression for key, or nil.
func (o *Options) Field(key string) *Expression {
	return o.fields[key]
}

// Declaration is one `name: options` entry of a binding attribute.
type Declaration struct {
	Name string
	// Options is the raw source of the options expression.
	Options string
}

// ParseDeclarations splits a binding attribute such as
// `text: name, css: {active: on}` into its declarations, in order.
func ParseDeclarations(src string) ([]Declaration, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, parseError(src, err)
	}
	fields, err := p.parseFields("")
	if err != nil {
		return nil, parseError(src, err)
	}
	decls := make([]Declaration, len(fields))
	for i, f := range fields {
		decls[i] = Declaration{Name: f.key, Options: f.src}
	}
	return decls, nil
}
