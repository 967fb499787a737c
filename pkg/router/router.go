// Package router defines the router the view and state bindings talk to and
// an in-memory implementation of it.
package router

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/delaneyj/domwire/pkg/property"
)

// Router is the narrow surface the binding handlers use.
type Router interface {
	// Go transitions to the named state.
	Go(name string, params map[string]any, opts GoOptions) error
	// Uri builds the URL of the named state.
	Uri(name string, params map[string]any) string
	CurrentState() *property.Property[State]
}

type GoOptions struct {
	// Replace marks the transition as replacing the current entry.
	Replace bool
}

// State is an active router state.
type State struct {
	Name   string
	Params map[string]any
	// Views maps view slots to template names.
	Views   map[string]string
	URL     string
	Replace bool
}

// Param returns the named parameter, or nil.
func (s State) Param(name string) any {
	return s.Params[name]
}

// StateConfig declares a state.
//
// URL patterns support static segments ("/users") and parameters
// ("/users/:id"). Parameters not named in the pattern end up in the query
// string.
type StateConfig struct {
	Name  string
	URL   string
	Views map[string]string
}

// Memory is a Router that keeps its state in memory. It has no history.
type Memory struct {
	states  map[string]StateConfig
	current *property.Property[State]
}

var _ Router = (*Memory)(nil)

func NewMemory(configs ...StateConfig) *Memory {
	r := &Memory{
		states:  map[string]StateConfig{},
		current: property.New[State](),
	}
	for _, c := range configs {
		r.Register(c)
	}
	return r
}

// Register adds or replaces a state.
func (r *Memory) Register(c StateConfig) *Memory {
	r.states[c.Name] = c
	return r
}

func (r *Memory) CurrentState() *property.Property[State] {
	return r.current
}

// StateNames lists the registered states, sorted.
func (r *Memory) StateNames() []string {
	names := make([]string, 0, len(r.states))
	for n := range r.states {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Memory) Go(name string, params map[string]any, opts GoOptions) error {
	c, ok := r.states[name]
	if !ok {
		return fmt.Errorf("unknown state %q", name)
	}
	return r.current.SetValue(State{
		Name:    name,
		Params:  params,
		Views:   c.Views,
		URL:     build(c.URL, params),
		Replace: opts.Replace,
	})
}

// GoURL transitions to the first state whose pattern matches u.
func (r *Memory) GoURL(u string, opts GoOptions) error {
	path, query, _ := strings.Cut(u, "?")
	for _, name := range r.StateNames() {
		c := r.states[name]
		params, ok := match(c.URL, path)
		if !ok {
			continue
		}
		if q, err := url.ParseQuery(query); err == nil {
			for k, v := range q {
				if _, taken := params[k]; !taken && len(v) > 0 {
					params[k] = v[0]
				}
			}
		}
		return r.Go(name, params, opts)
	}
	return fmt.Errorf("no state matches %q", u)
}

func (r *Memory) Uri(name string, params map[string]any) string {
	c, ok := r.states[name]
	if !ok {
		return ""
	}
	return build(c.URL, params)
}

func build(pattern string, params map[string]any) string {
	used := map[string]bool{}
	segs := strings.Split(pattern, "/")
	for i, s := range segs {
		if !strings.HasPrefix(s, ":") {
			continue
		}
		name := s[1:]
		used[name] = true
		segs[i] = url.PathEscape(str(params[name]))
	}
	out := strings.Join(segs, "/")

	q := url.Values{}
	for k, v := range params {
		if !used[k] && v != nil {
			q.Set(k, str(v))
		}
	}
	if len(q) > 0 {
		out += "?" + q.Encode()
	}
	return out
}

func str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func match(pattern, path string) (map[string]any, bool) {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return nil, false
	}
	params := map[string]any{}
	for i, p := range ps {
		if strings.HasPrefix(p, ":") {
			v, err := url.PathUnescape(xs[i])
			if err != nil {
				return nil, false
			}
			params[p[1:]] = v
			continue
		}
		if p != xs[i] {
			return nil, false
		}
	}
	return params, true
}
