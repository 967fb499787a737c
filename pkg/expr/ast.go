package expr

import (
	"fmt"
	"strings"

	"github.com/delaneyj/domwire/pkg/errors"
)

// node is an expression syntax tree node. With ref set, path nodes return the
// raw value of their last segment instead of unwrapping a property.
type node interface {
	eval(env Env, ref bool) (any, error)
	String() string
}

type literalNode struct {
	value any
	text  string
}

func (n *literalNode) eval(Env, bool) (any, error) { return n.value, nil }
func (n *literalNode) String() string             { return n.text }

type identNode struct {
	name string
}

func (n *identNode) eval(env Env, ref bool) (any, error) {
	if env.Scope == nil {
		return nil, errors.Binding("expr.eval", n.name, "no scope to resolve identifier")
	}
	v, ok := env.Scope.Resolve(n.name)
	if !ok {
		return nil, errors.Binding("expr.eval", n.name, "unknown identifier %q", n.name)
	}
	if ref {
		return v, nil
	}
	return env.unwrap(v), nil
}

func (n *identNode) String() string { return n.name }

type memberNode struct {
	x    node
	name string
}

func (n *memberNode) eval(env Env, ref bool) (any, error) {
	obj, err := n.x.eval(env, false)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	v, ok := Member(obj, n.name)
	if !ok {
		return nil, errors.Binding("expr.eval", n.String(), "%T has no member %q", obj, n.name)
	}
	if ref {
		return v, nil
	}
	return env.unwrap(v), nil
}

func (n *memberNode) String() string { return n.x.String() + "." + n.name }

type indexNode struct {
	x     node
	index node
}

func (n *indexNode) eval(env Env, ref bool) (any, error) {
	obj, err := n.x.eval(env, false)
	if err != nil {
		return nil, err
	}
	idx, err := n.index.eval(env, false)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	v, err := Index(obj, idx)
	if err != nil {
		return nil, errors.Binding("expr.eval", n.String(), "%v", err)
	}
	if ref {
		return v, nil
	}
	return env.unwrap(v), nil
}

func (n *indexNode) String() string { return n.x.String() + "[" + n.index.String() + "]" }

type callNode struct {
	fn   node
	args []node
}

func (n *callNode) eval(env Env, _ bool) (any, error) {
	fn, err := n.fn.eval(env, false)
	if err != nil {
		return nil, err
	}
	args := make([]any, len(n.args))
	for i, a := range n.args {
		if args[i], err = a.eval(env, false); err != nil {
			return nil, err
		}
	}
	v, err := Call(fn, args...)
	if err != nil {
		return nil, errors.Wrap("expr.call", errors.KindBinding, fmt.Errorf("%s: %w", n.fn, err))
	}
	return env.unwrap(v), nil
}

func (n *callNode) String() string {
	args := make([]string, len(n.args))
	for i, a := range n.args {
		args[i] = a.String()
	}
	return n.fn.String() + "(" + strings.Join(args, ", ") + ")"
}

type parenNode struct {
	x node
}

func (n *parenNode) eval(env Env, _ bool) (any, error) { return n.x.eval(env, false) }
func (n *parenNode) String() string                   { return "(" + n.x.String() + ")" }

type unaryNode struct {
	op string
	x  node
}

func (n *unaryNode) eval(env Env, _ bool) (any, error) {
	v, err := n.x.eval(env, false)
	if err != nil {
		return nil, err
	}
	switch n.op {
	case "!":
		return !Truthy(v), nil
	case "-":
		return negate(v)
	default:
		if f, ok := toNumber(v); ok {
			return f, nil
		}
		return nil, fmt.Errorf("cannot apply unary + to %T", v)
	}
}

func (n *unaryNode) String() string { return n.op + n.x.String() }

type binaryNode struct {
	op          string
	left, right node
}

func (n *binaryNode) eval(env Env, _ bool) (any, error) {
	l, err := n.left.eval(env, false)
	if err != nil {
		return nil, err
	}
	// short circuit, returning the deciding operand
	switch n.op {
	case "&&":
		if !Truthy(l) {
			return l, nil
		}
		return n.right.eval(env, false)
	case "||":
		if Truthy(l) {
			return l, nil
		}
		return n.right.eval(env, false)
	}
	r, err := n.right.eval(env, false)
	if err != nil {
		return nil, err
	}
	return binary(n.op, l, r)
}

func (n *binaryNode) String() string {
	return n.left.String() + " " + n.op + " " + n.right.String()
}

type condNode struct {
	cond, then, otherwise node
}

func (n *condNode) eval(env Env, _ bool) (any, error) {
	c, err := n.cond.eval(env, false)
	if err != nil {
		return nil, err
	}
	if Truthy(c) {
		return n.then.eval(env, false)
	}
	return n.otherwise.eval(env, false)
}

func (n *condNode) String() string {
	return n.cond.String() + " ? " + n.then.String() + " : " + n.otherwise.String()
}

type objectNode struct {
	fields []field
}

func (n *objectNode) eval(env Env, _ bool) (any, error) {
	out := make(map[string]any, len(n.fields))
	for _, f := range n.fields {
		v, err := f.x.eval(env, false)
		if err != nil {
			return nil, err
		}
		out[f.key] = v
	}
	return out, nil
}

func (n *objectNode) String() string {
	parts := make([]string, len(n.fields))
	for i, f := range n.fields {
		parts[i] = f.key + ": " + f.x.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

type arrayNode struct {
	items []node
}

func (n *arrayNode) eval(env Env, _ bool) (any, error) {
	out := make([]any, len(n.items))
	for i, item := range n.items {
		v, err := item.eval(env, false)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (n *arrayNode) String() string {
	parts := make([]string, len(n.items))
	for i, item := range n.items {
		parts[i] = item.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func isPath(n node) bool {
	switch x := n.(type) {
	case *identNode:
		return true
	case *memberNode:
		return isPath(x.x)
	case *indexNode:
		return isPath(x.x)
	}
	return false
}
