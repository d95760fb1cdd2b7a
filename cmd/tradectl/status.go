package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
)

var statusCommand = &cli.Command{
	Name:  "status",
	Usage: "connect, print account balances/open orders/positions, and exit",
	Action: func(c *cli.Context) error {
		ctx, cancel := signalContext()
		defer cancel()

		sess, err := connectSession(ctx, c.String("config"))
		if err != nil {
			return err
		}
		defer sess.adapter.Close(context.Background())

		fmt.Println("balances:")
		for code, bal := range sess.account.Balances() {
			fmt.Printf("  %s: %s\n", code.String(), bal.String())
		}

		fmt.Println("open orders:")
		for _, o := range sess.account.OpenOrders() {
			fmt.Printf("  %s %s %s %s remaining=%s\n", o.ID, o.Pair.String(), o.Side.String(), o.Status.String(), o.RemainingVolume.String())
		}

		fmt.Println("positions:")
		for _, p := range sess.account.Positions() {
			fmt.Printf("  %s %s volume=%s entry=%s\n", p.Pair.String(), p.Side.String(), p.Volume.String(), p.EntryPrice.String())
		}
		return nil
	},
}
