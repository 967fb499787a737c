// Package config loads the optional domwire.yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in a project directory.
const FileName = "domwire.yaml"

// Config represents the optional domwire.yaml configuration.
type Config struct {
	App     AppConfig     `yaml:"app"`
	Binding BindingConfig `yaml:"binding"`
	Log     LogConfig     `yaml:"log"`
	// Handlers holds per-handler options keyed by binding name, e.g.
	// `textInput: {events: [input], priority: 5}`.
	Handlers map[string]map[string]any `yaml:"handlers,omitempty"`
}

type AppConfig struct {
	Name string `yaml:"name,omitempty"`
}

type BindingConfig struct {
	// Attribute bindings are declared in. Defaults to data-bind.
	Attribute string `yaml:"attribute,omitempty"`
}

type LogConfig struct {
	Prefix  string `yaml:"prefix,omitempty"`
	Verbose bool   `yaml:"verbose,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root      string
	AppName   string
	Attribute string
	LogPrefix string
	Verbose   bool
	Handlers  map[string]map[string]any
}

// Defaults returns the values used when no file is present.
func Defaults() *Resolved {
	return &Resolved{
		AppName:   "domwire",
		Attribute: "data-bind",
		LogPrefix: "domwire: ",
		Handlers:  map[string]map[string]any{},
	}
}

// Parse decodes a configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return &cfg, nil
}

// LoadOptional reads domwire.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	return Parse(data)
}

// Resolve loads domwire.yaml (if present) from dir and resolves defaults.
// Without an app name the last element of the go.mod module path is used,
// or the directory name.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	r := cfg.Resolve()
	r.Root = dir
	if strings.TrimSpace(cfg.App.Name) == "" {
		r.AppName = defaultAppName(dir)
	}
	return r, nil
}

// Resolve applies defaults to cfg.
func (cfg *Config) Resolve() *Resolved {
	r := Defaults()
	if name := strings.TrimSpace(cfg.App.Name); name != "" {
		r.AppName = name
	}
	if attr := strings.TrimSpace(cfg.Binding.Attribute); attr != "" {
		r.Attribute = attr
	}
	if cfg.Log.Prefix != "" {
		r.LogPrefix = cfg.Log.Prefix
	}
	r.Verbose = cfg.Log.Verbose
	for name, opts := range cfg.Handlers {
		r.Handlers[name] = opts
	}
	return r
}

func defaultAppName(dir string) string {
	if data, err := os.ReadFile(filepath.Join(dir, "go.mod")); err == nil {
		if path := modfile.ModulePath(data); path != "" {
			parts := strings.Split(path, "/")
			return parts[len(parts)-1]
		}
	}
	if base := filepath.Base(dir); base != "." && base != string(filepath.Separator) {
		return base
	}
	return "domwire"
}
