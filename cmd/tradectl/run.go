package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchanges/account"
	"github.com/lumenfx/tradecore/exchanges/nova"
	"github.com/lumenfx/tradecore/exchanges/order"
	"github.com/lumenfx/tradecore/exchanges/orderbook"
	"github.com/lumenfx/tradecore/exchanges/venue"
	"github.com/lumenfx/tradecore/internal/config"
	"github.com/lumenfx/tradecore/internal/httpapi"
	"github.com/lumenfx/tradecore/internal/log"
	"github.com/lumenfx/tradecore/internal/persistence"
)

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "connect to the configured venue, ingest account state and rebalance on an interval",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "http-addr", Usage: "address to serve the debug httpapi on, e.g. :8090"},
		&cli.StringFlag{Name: "sqlite", Usage: "path to a sqlite database for fill history, empty disables"},
	},
	Action: runAction,
}

// session bundles what the run loop and the rebalance one-shot command both
// need after connecting: the adapter, its bound credentials, the Account
// ingesting its stream, and the live books the rebalancer prices against.
type session struct {
	adapter *nova.Adapter
	creds   venue.Credentials
	account *account.Account
	books   map[currency.Pair]*orderbook.Book
	cfg     *config.Config
	quote   currency.Code
	pairs   []currency.Pair
}

func connectSession(ctx context.Context, cfgPath string) (*session, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if len(cfg.Venues) == 0 {
		return nil, fmt.Errorf("config has no venues configured")
	}
	venueCfg := cfg.Venues[0]
	if venueCfg.Name != "nova" {
		return nil, fmt.Errorf("unsupported venue %q, only \"nova\" is wired", venueCfg.Name)
	}

	adapter := nova.New(nova.Config{ReconnectBackoff: cfg.ReconnectBackoff})
	if err := adapter.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", venueCfg.Name, err)
	}

	creds := venue.Credentials{
		Key: venueCfg.Credentials.Key, Secret: venueCfg.Credentials.Secret,
		Subaccount: venueCfg.Credentials.Subaccount,
	}
	quote := currency.NewCode(cfg.Rebalancer.QuoteAsset)

	pairs := make([]currency.Pair, 0, len(cfg.Rebalancer.TargetWeights))
	for symbol := range cfg.Rebalancer.TargetWeights {
		pairs = append(pairs, currency.NewPair(currency.NewCode(symbol), quote))
	}

	books, err := adapter.SubscribeOrderBooks(ctx, pairs...)
	if err != nil {
		return nil, fmt.Errorf("subscribing order books: %w", err)
	}

	acct := account.New(venueCfg.Name, quote, decimal.NewFromFloat(venueCfg.Leverage))
	adapter.OnOrderUpdate(acct.IngestOrderUpdate)
	adapter.OnFillUpdate(acct.IngestFillUpdate)

	if err := adapter.SubscribeUserData(ctx, creds); err != nil {
		return nil, fmt.Errorf("subscribing user data: %w", err)
	}

	return &session{
		adapter: adapter, creds: creds, account: acct, books: books,
		cfg: cfg, quote: quote, pairs: pairs,
	}, nil
}

func runAction(c *cli.Context) error {
	logger := log.New("tradectl")
	ctx, cancel := signalContext()
	defer cancel()

	sess, err := connectSession(ctx, c.String("config"))
	if err != nil {
		return err
	}
	defer sess.adapter.Close(context.Background())

	if path := c.String("sqlite"); path != "" {
		sink, err := persistence.Open(path)
		if err != nil {
			return fmt.Errorf("opening fill sink: %w", err)
		}
		defer sink.Close()
		sess.adapter.OnFillUpdate(func(f *order.Fill) {
			sess.account.IngestFillUpdate(f)
			if err := sink.Record(context.Background(), f); err != nil {
				logger.Warn().Err(err).Msg("recording fill to sqlite")
			}
		})
	}

	if addr := c.String("http-addr"); addr != "" {
		srv := httpapi.New(addr, sess.account, func(symbol string) (*orderbook.Book, bool) {
			for pair, book := range sess.books {
				if pair.String() == symbol {
					return book, true
				}
			}
			return nil, false
		})
		srv.Start()
		defer srv.Shutdown(context.Background())
		logger.Info().Str("addr", addr).Msg("httpapi listening")
	}

	ticker := time.NewTicker(sess.cfg.Rebalancer.Every)
	defer ticker.Stop()

	logger.Info().Strs("pairs", pairStrings(sess.pairs)).Msg("run loop started")
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down")
			return nil
		case <-ticker.C:
			if err := rebalanceOnce(ctx, sess); err != nil {
				logger.Error().Err(err).Msg("rebalance pass failed")
			}
		}
	}
}

func pairStrings(pairs []currency.Pair) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.String()
	}
	return out
}
