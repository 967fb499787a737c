package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/delaneyj/domwire/pkg/app"
	"github.com/delaneyj/domwire/pkg/config"
	"github.com/delaneyj/domwire/pkg/dom"
	"github.com/delaneyj/domwire/pkg/property"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func newApp(cmd *cli.Command) (*app.App, error) {
	cfg, err := config.Resolve(cmd.String(dirKey))
	if err != nil {
		return nil, err
	}
	if cmd.Bool(verboseKey) {
		cfg.Verbose = true
	}
	return app.New(cfg)
}

func readPage(cmd *cli.Command) (*dom.Node, error) {
	path := cmd.Args().First()
	if path == "" {
		return nil, fmt.Errorf("missing page argument")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dom.Parse(f)
}

// readModel decodes a YAML model. Top-level entries become properties so
// that bindings see them the way they see a live view model.
func readModel(path string) (map[string]any, error) {
	model := map[string]any{}
	if path == "" {
		return model, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse model %s: %w", path, err)
	}
	for k, v := range raw {
		model[k] = property.New(v)
	}
	return model, nil
}

func render(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	page, err := readPage(cmd)
	if err != nil {
		return err
	}
	model, err := readModel(cmd.String(modelKey))
	if err != nil {
		return err
	}
	if err := a.ApplyBindings(model, page); err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if out := cmd.String(outKey); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := page.Render(w); err != nil {
		return err
	}
	if a.Config.Verbose {
		st := a.Stats()
		log.Printf("rendered %d bound nodes in %v", st.Bound, time.Since(start))
	}
	return nil
}
