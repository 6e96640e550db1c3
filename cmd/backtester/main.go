package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

var configPath string

func main() {
	app := cli.NewApp()
	app.Name = "backtester"
	app.Usage = "simulate portfolio strategies over historical prices"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Value:       "backtester.yaml",
			Usage:       "path to the YAML configuration file",
			Destination: &configPath,
		},
	}
	app.Commands = []*cli.Command{
		runCommand,
		serveCommand,
		cacheCommand,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
