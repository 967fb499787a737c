package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

const (
	dirKey     = "dir"
	modelKey   = "model"
	outKey     = "out"
	verboseKey = "verbose"
)

func main() {
	dirFlag := &cli.StringFlag{
		Name:  dirKey,
		Usage: "Project directory holding domwire.yaml",
		Value: ".",
	}
	cmd := &cli.Command{
		Name:  "domwire",
		Usage: "Apply and inspect declarative data bindings in HTML",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  verboseKey,
				Usage: "Log configuration and stack traces",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "render",
				Usage:     "Bind an HTML page to a YAML model and print the result",
				ArgsUsage: "<page.html>",
				Flags: []cli.Flag{
					dirFlag,
					&cli.StringFlag{
						Name:  modelKey,
						Usage: "YAML file with the model the page is bound to",
					},
					&cli.StringFlag{
						Name:  outKey,
						Usage: "Write the rendered page here instead of stdout",
					},
				},
				Action: render,
			},
			{
				Name:      "inspect",
				Usage:     "List the binding declarations of an HTML page",
				ArgsUsage: "<page.html>",
				Flags: []cli.Flag{
					dirFlag,
					&cli.StringFlag{
						Name:  modelKey,
						Usage: "Also apply the bindings against this YAML model and report stats",
					},
				},
				Action: inspect,
			},
			{
				Name:   "handlers",
				Usage:  "List the registered binding handlers",
				Flags:  []cli.Flag{dirFlag},
				Action: listHandlers,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
