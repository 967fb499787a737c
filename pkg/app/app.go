// Package app wires the binding engine together: registry, manager, the
// built-in handlers, configuration and an optional router.
package app

import (
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/delaneyj/domwire/pkg/binding"
	"github.com/delaneyj/domwire/pkg/binding/handlers"
	"github.com/delaneyj/domwire/pkg/config"
	"github.com/delaneyj/domwire/pkg/dom"
	"github.com/delaneyj/domwire/pkg/errors"
	"github.com/delaneyj/domwire/pkg/router"
)

type App struct {
	Config   *config.Resolved
	Registry *binding.Registry
	Manager  *binding.Manager
	Router   router.Router
	Logger   *log.Logger

	sink errors.Sink
}

type Option func(*App)

func WithRouter(r router.Router) Option {
	return func(a *App) { a.Router = r }
}

func WithLogger(l *log.Logger) Option {
	return func(a *App) { a.Logger = l }
}

// WithSink routes errors raised after setup to sink. By default they are
// logged.
func WithSink(s errors.Sink) Option {
	return func(a *App) { a.sink = s }
}

// New builds an application from cfg, which may be nil for defaults.
func New(cfg *config.Resolved, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	a := &App{Config: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = log.New(os.Stderr, cfg.LogPrefix, log.LstdFlags)
	}
	if a.sink == nil {
		a.sink = &errors.LogSink{Logger: a.Logger, Verbose: cfg.Verbose}
	}

	a.Registry = binding.NewRegistry()
	a.Manager = binding.NewManager(a.Registry,
		binding.WithAttribute(cfg.Attribute),
		binding.WithSink(a.sink),
	)
	handlers.Register(a.Registry.Root(), a.Manager, a.Router)

	names := make([]string, 0, len(cfg.Handlers))
	for name := range cfg.Handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		h, ok := a.Registry.Root().Handler(name)
		if !ok {
			return nil, fmt.Errorf("configuring unknown handler %q", name)
		}
		if err := h.Configure(cfg.Handlers[name]); err != nil {
			return nil, fmt.Errorf("configuring handler %q: %w", name, err)
		}
	}
	if cfg.Verbose {
		a.Logger.Printf("%s: %d handlers, binding attribute %q", cfg.AppName, len(a.Registry.Root().HandlerNames()), cfg.Attribute)
	}
	return a, nil
}

// Module returns the named module, creating it under the root module.
func (a *App) Module(name string) *binding.Module {
	return a.Registry.Define(name, nil)
}

// ApplyBindings binds node and its subtree to model.
func (a *App) ApplyBindings(model any, node *dom.Node) error {
	return a.Manager.ApplyBindings(model, node)
}

// Clean releases every binding in node's subtree.
func (a *App) Clean(node *dom.Node) {
	a.Manager.CleanNode(node)
}

func (a *App) Stats() binding.Stats {
	return a.Manager.Stats()
}
