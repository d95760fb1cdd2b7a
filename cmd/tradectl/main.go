// Command tradectl is the operator CLI wiring internal/config,
// internal/log, exchanges/nova, exchanges/account and trader together: the
// one process in the module that holds venue.Credentials and passes them
// into the core by parameter, per §9's "global mutable state: none".
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/lumenfx/tradecore/internal/log"
)

func main() {
	app := &cli.App{
		Name:  "tradectl",
		Usage: "operate a tradecore venue connection",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to the YAML config file"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug-level logging"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				log.SetLevel(zerolog.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			runCommand,
			rebalanceCommand,
			statusCommand,
			cancelCommand,
			authCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM, the shutdown
// trigger for the long-running `run` command.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
