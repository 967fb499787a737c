package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/delaneyj/domwire/pkg/binding"
	"github.com/delaneyj/domwire/pkg/dom"
	"github.com/delaneyj/domwire/pkg/expr"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

func inspect(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	page, err := readPage(cmd)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"element", "binding", "priority", "options", "handler"})
	attr := a.Manager.Attribute()
	declarations := 0
	page.Walk(func(n *dom.Node) bool {
		src, ok := n.Attr(attr)
		if !ok || n.Type != dom.ElementNode {
			return true
		}
		decls, err := expr.ParseDeclarations(src)
		if err != nil {
			table.Append([]string{describe(n), "", "", src, err.Error()})
			return true
		}
		for _, d := range decls {
			declarations++
			row := []string{describe(n), d.Name, "", d.Options, "missing"}
			if h, ok := a.Registry.Root().Handler(d.Name); ok {
				row[2] = fmt.Sprint(h.Info().Priority)
				row[4] = fmt.Sprintf("%T", h)
			}
			table.Append(row)
		}
		return true
	})
	table.Render()
	fmt.Printf("%s declarations\n", humanize.Comma(int64(declarations)))

	if path := cmd.String(modelKey); path != "" {
		model, err := readModel(path)
		if err != nil {
			return err
		}
		if err := a.ApplyBindings(model, page); err != nil {
			return err
		}
		printStats(a.Stats())
	}
	return nil
}

func printStats(st binding.Stats) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"nodes", "bound", "disposables", "compiled"})
	table.Append([]string{
		humanize.Comma(int64(st.Nodes)),
		humanize.Comma(int64(st.Bound)),
		humanize.Comma(int64(st.Disposables)),
		humanize.Comma(int64(st.Compiled)),
	})
	table.Render()
}

func describe(n *dom.Node) string {
	var sb strings.Builder
	sb.WriteString("<" + n.Tag)
	if id, ok := n.Attr("id"); ok {
		sb.WriteString("#" + id)
	}
	sb.WriteString(">")
	return sb.String()
}

func listHandlers(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"binding", "priority", "controls descendants", "rebind"})
	root := a.Registry.Root()
	for _, name := range root.HandlerNames() {
		h, _ := root.Handler(name)
		info := h.Info()
		table.Append([]string{
			name,
			fmt.Sprint(info.Priority),
			fmt.Sprint(info.Caps.Has(binding.CapControlsDescendants)),
			fmt.Sprint(info.Caps.Has(binding.CapAllowRebind)),
		})
	}
	table.Render()
	return nil
}
