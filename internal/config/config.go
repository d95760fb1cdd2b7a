// Package config loads operator configuration — venue credentials,
// rebalancer targets, and operational knobs — via viper, producing a plain
// struct the core accepts by parameter. No package in the core reaches back
// into this package or into the environment directly; see §9 "global
// mutable state: none".
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// VenueCredentials is the (key, secret, optional subaccount) tuple §6 says
// the core accepts by parameter.
type VenueCredentials struct {
	Key        string
	Secret     string
	Subaccount string
}

// Venue is one configured venue connection.
type Venue struct {
	Name        string
	Credentials VenueCredentials
	Leverage    float64
}

// Rebalancer carries the operator's target portfolio weights and
// repricing knobs for the limit-order variant of trade_to_portfolio.
type Rebalancer struct {
	TargetWeights    map[string]float64
	QuoteAsset       string
	MaxSlippage      float64
	RepriceEvery     time.Duration
	Timeout          time.Duration
	Every            time.Duration // how often cmd/tradectl re-evaluates the plan
	DefaultBaseAsset string        // §4.6 pricing tie-break, tried before BackupBaseAsset
	BackupBaseAsset  string
}

// Config is the fully resolved, validated operator configuration.
type Config struct {
	Venues     []Venue
	Rebalancer Rebalancer

	ReconnectBackoff  time.Duration
	BookResubscribe   time.Duration
	AccountRefresh    time.Duration
}

// defaults seeds knobs spec.md leaves to the operator but doesn't make
// mandatory on every config file.
func defaults(v *viper.Viper) {
	v.SetDefault("reconnect_backoff", "2s")
	v.SetDefault("book_resubscribe", "30s")
	v.SetDefault("account_refresh", "5m")
	v.SetDefault("rebalancer.reprice_every", "1s")
	v.SetDefault("rebalancer.timeout", "60s")
	v.SetDefault("rebalancer.every", "5m")
	v.SetDefault("rebalancer.default_base_asset", "BNB")
	v.SetDefault("rebalancer.backup_base_asset", "BTC")
}

// Load reads configuration from path (if non-empty) and environment
// variables prefixed TRADECORE_; where both set a key, the environment
// variable takes precedence over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TRADECORE")
	v.AutomaticEnv()
	defaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %q: %w", path, err)
		}
	}

	var raw struct {
		Venues []struct {
			Name       string  `mapstructure:"name"`
			Key        string  `mapstructure:"key"`
			Secret     string  `mapstructure:"secret"`
			Subaccount string  `mapstructure:"subaccount"`
			Leverage   float64 `mapstructure:"leverage"`
		} `mapstructure:"venues"`
		Rebalancer struct {
			TargetWeights    map[string]float64 `mapstructure:"target_weights"`
			QuoteAsset       string              `mapstructure:"quote_asset"`
			MaxSlippage      float64             `mapstructure:"max_slippage"`
			RepriceEvery     time.Duration       `mapstructure:"reprice_every"`
			Timeout          time.Duration       `mapstructure:"timeout"`
			Every            time.Duration       `mapstructure:"every"`
			DefaultBaseAsset string              `mapstructure:"default_base_asset"`
			BackupBaseAsset  string              `mapstructure:"backup_base_asset"`
		} `mapstructure:"rebalancer"`
		ReconnectBackoff time.Duration `mapstructure:"reconnect_backoff"`
		BookResubscribe  time.Duration `mapstructure:"book_resubscribe"`
		AccountRefresh   time.Duration `mapstructure:"account_refresh"`
	}
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg := &Config{
		ReconnectBackoff: raw.ReconnectBackoff,
		BookResubscribe:  raw.BookResubscribe,
		AccountRefresh:   raw.AccountRefresh,
		Rebalancer: Rebalancer{
			TargetWeights:    raw.Rebalancer.TargetWeights,
			QuoteAsset:       raw.Rebalancer.QuoteAsset,
			MaxSlippage:      raw.Rebalancer.MaxSlippage,
			RepriceEvery:     raw.Rebalancer.RepriceEvery,
			Timeout:          raw.Rebalancer.Timeout,
			Every:            raw.Rebalancer.Every,
			DefaultBaseAsset: raw.Rebalancer.DefaultBaseAsset,
			BackupBaseAsset:  raw.Rebalancer.BackupBaseAsset,
		},
	}
	for _, venue := range raw.Venues {
		if venue.Name == "" {
			return nil, fmt.Errorf("venue entry missing name")
		}
		cfg.Venues = append(cfg.Venues, Venue{
			Name: venue.Name,
			Credentials: VenueCredentials{
				Key: venue.Key, Secret: venue.Secret, Subaccount: venue.Subaccount,
			},
			Leverage: venue.Leverage,
		})
	}
	return cfg, nil
}
