package main

import (
	"context"

	"github.com/urfave/cli/v2"
)

var cancelCommand = &cli.Command{
	Name:  "cancel",
	Usage: "cancel one open order by id",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "id", Required: true, Usage: "order id to cancel"},
	},
	Action: func(c *cli.Context) error {
		ctx, cancel := signalContext()
		defer cancel()

		sess, err := connectSession(ctx, c.String("config"))
		if err != nil {
			return err
		}
		defer sess.adapter.Close(context.Background())

		bound := venueBinding{adapter: sess.adapter, creds: sess.creds}
		return sess.account.CancelOrder(ctx, bound, bound, c.String("id"))
	},
}
