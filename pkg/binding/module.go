package binding

import (
	"sort"
)

// Module is a named scope of binding handlers and values such as view
// templates. Lookups fall back to the parent module.
type Module struct {
	Name     string
	parent   *Module
	handlers map[string]Handler
	values   map[string]any
}

func NewModule(name string, parent *Module) *Module {
	return &Module{
		Name:     name,
		parent:   parent,
		handlers: map[string]Handler{},
		values:   map[string]any{},
	}
}

func (m *Module) Parent() *Module {
	return m.parent
}

// Register adds a handler under name, replacing any previous one.
func (m *Module) Register(name string, h Handler) *Module {
	m.handlers[name] = h
	return m
}

// Handler resolves name in m or its ancestors.
func (m *Module) Handler(name string) (Handler, bool) {
	for s := m; s != nil; s = s.parent {
		if h, ok := s.handlers[name]; ok {
			return h, true
		}
	}
	return nil, false
}

// HandlerNames lists every handler visible from m, sorted.
func (m *Module) HandlerNames() []string {
	seen := map[string]bool{}
	var names []string
	for s := m; s != nil; s = s.parent {
		for n := range s.handlers {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Provide stores a named value in m.
func (m *Module) Provide(key string, v any) *Module {
	m.values[key] = v
	return m
}

// Resolve looks up a value in m or its ancestors.
func (m *Module) Resolve(key string) (any, bool) {
	for s := m; s != nil; s = s.parent {
		if v, ok := s.values[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// Registry owns the modules of an application. The root module holds the
// built-in handlers and every other module descends from it.
type Registry struct {
	root    *Module
	modules map[string]*Module
}

// RootModule is the name of the registry's root module.
const RootModule = "app"

func NewRegistry() *Registry {
	root := NewModule(RootModule, nil)
	return &Registry{
		root:    root,
		modules: map[string]*Module{RootModule: root},
	}
}

func (r *Registry) Root() *Module {
	return r.root
}

// Define returns the module called name, creating it under parent (or the
// root when parent is nil) if it does not exist.
func (r *Registry) Define(name string, parent *Module) *Module {
	if m, ok := r.modules[name]; ok {
		return m
	}
	if parent == nil {
		parent = r.root
	}
	m := NewModule(name, parent)
	r.modules[name] = m
	return m
}

func (r *Registry) Lookup(name string) (*Module, bool) {
	m, ok := r.modules[name]
	return m, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.modules))
	for n := range r.modules {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
