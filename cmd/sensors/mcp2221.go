package main

import (
	"context"
	"os"

	"github.com/gophertribe/sensors/adapter"
	"github.com/gophertribe/sensors/cmd/sensors/console"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var mcp2221Cmd = cli.Command{
	Name:  "mcp2221",
	Usage: "usb to i2c adapter maintenance",
	Subcommands: cli.Commands{
		&mcp2221StatusCmd,
		&mcp2221ReleaseCmd,
	},
}

var mcp2221StatusCmd = cli.Command{
	Name: "status",
	Action: func(c *cli.Context) error {
		a := adapter.NewMCP2221()
		if err := a.Init(); err != nil {
			return console.Exit(1, "adapter initialization error: %s", console.Red(err))
		}
		defer func() { _ = a.Close() }()
		status, err := a.Status(context.Background())
		if err != nil {
			return console.Exit(1, "adapter communication error: %s", console.Red(err))
		}
		enc := yaml.NewEncoder(os.Stdout)
		err = enc.Encode(status)
		if err != nil {
			return console.Exit(1, "encoding error: %s", console.Red(err))
		}
		return nil
	},
}

var mcp2221ReleaseCmd = cli.Command{
	Name: "release",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "do not ask for confirmation",
		},
	},
	Action: func(c *cli.Context) error {
		if !c.Bool("yes") {
			answer, err := console.YesOrNo("release the i2c engine, cancelling any pending transfer?")
			if err != nil {
				return console.Exit(1, "prompt error: %s", console.Red(err))
			}
			if answer != console.Yes {
				return nil
			}
		}
		a := adapter.NewMCP2221()
		if err := a.Init(); err != nil {
			return console.Exit(1, "adapter initialization error: %s", console.Red(err))
		}
		defer func() { _ = a.Close() }()
		status, err := a.ReleaseBus(context.Background())
		if err != nil {
			return console.Exit(1, "adapter communication error: %s", console.Red(err))
		}
		enc := yaml.NewEncoder(os.Stdout)
		err = enc.Encode(status)
		if err != nil {
			return console.Exit(1, "encoding error: %s", console.Red(err))
		}
		return nil
	},
}
