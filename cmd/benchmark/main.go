package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/delaneyj/domwire/pkg/app"
	"github.com/delaneyj/domwire/pkg/dom"
	"github.com/delaneyj/domwire/pkg/errors"
	"github.com/delaneyj/domwire/pkg/expr"
	"github.com/delaneyj/domwire/pkg/property"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
)

var (
	profile = flag.String("cpuprofile", "", "write a CPU profile to this file")
	iters   = flag.Int("iters", 100, "iterations per benchmark")

	sizes = []int{1, 10, 100, 1_000}
)

func main() {
	flag.Parse()

	if *profile != "" {
		f, err := os.Create(*profile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	tbl := table.NewWriter()
	tbl.SetTitle("domwire bindings")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})
	if isatty.IsTerminal(os.Stdout.Fd()) {
		tbl.SetStyle(table.StyleColoredBright)
	} else {
		tbl.SetStyle(table.StyleLight)
	}

	log.Printf("warming up")
	for _, n := range sizes {
		run(tbl, fmt.Sprintf("propagate: %d text nodes", n), benchPropagate(n))
		run(tbl, fmt.Sprintf("apply: foreach %d items", n), benchForeach(n))
		run(tbl, fmt.Sprintf("toggle: if with %d children", n), benchIf(n))
		run(tbl, fmt.Sprintf("eval: %d member chain", n), benchEval(n))
	}
	tbl.Render()
}

// run times fn *iters times and appends a row to tbl.
func run(tbl table.Writer, name string, fn func()) {
	tach := tachymeter.New(&tachymeter.Config{Size: *iters})
	for i := 0; i < *iters; i++ {
		start := time.Now()
		fn()
		tach.AddTime(time.Since(start))
	}
	calc := tach.Calc()
	tbl.AppendRow(table.Row{
		name,
		calc.Time.Avg,
		calc.Time.Min,
		calc.Time.P75,
		calc.Time.P99,
		calc.Time.Max,
	})
}

func newApp() *app.App {
	a, err := app.New(nil, app.WithSink(errors.SinkFunc(func(err error) { log.Panic(err) })))
	if err != nil {
		log.Fatal(err)
	}
	return a
}

func mustBind(a *app.App, markup string, model any) *dom.Node {
	body, err := dom.ParseBody(markup)
	if err != nil {
		log.Fatal(err)
	}
	if err := a.ApplyBindings(model, body); err != nil {
		log.Fatal(err)
	}
	return body
}

// benchPropagate measures one property write fanning out to n text bindings.
func benchPropagate(n int) func() {
	a := newApp()
	count := property.New(0)
	mustBind(a, strings.Repeat(`<span data-bind="text: count + 1"></span>`, n), map[string]any{"count": count})
	return func() {
		count.SetValue(count.Value() + 1)
	}
}

// benchForeach measures binding a fresh list of n items.
func benchForeach(n int) func() {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	model := map[string]any{"items": items}
	return func() {
		a := newApp()
		body := mustBind(a, `<ul data-bind="foreach: items"><li data-bind="text: $index + ':' + $data, css: {odd: $index % 2}"></li></ul>`, model)
		a.Clean(body)
	}
}

// benchIf measures hiding and re-rendering a block of n bound children.
func benchIf(n int) func() {
	a := newApp()
	show, label := property.New(true), property.New("x")
	mustBind(a,
		`<div data-bind="if: show">`+strings.Repeat(`<b data-bind="text: label"></b>`, n)+`</div>`,
		map[string]any{"show": show, "label": label},
	)
	return func() {
		show.SetValue(false)
		show.SetValue(true)
	}
}

// benchEval measures evaluating a compiled path n members deep.
func benchEval(n int) func() {
	var root any = "leaf"
	path := make([]string, 0, n+1)
	path = append(path, "root")
	for i := 0; i < n; i++ {
		root = map[string]any{"next": root}
		path = append(path, "next")
	}
	x := expr.MustCompile(strings.Join(path, "."))
	env := expr.Env{Scope: expr.MapScope{"root": root}}
	return func() {
		if _, err := x.Eval(env); err != nil {
			log.Panic(err)
		}
	}
}
