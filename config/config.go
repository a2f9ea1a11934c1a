// Copyright (c) 2025 - for information on the respective copyright owner
// see the NOTICE file and/or the repository at
// https://github.com/push-protocol/push-chain-sdk
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config parses the configuration of a Push Chain client from a yaml
// file and validates it.
package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/chain"
	"github.com/push-protocol/push-chain-sdk/orchestrator"
	"github.com/push-protocol/push-chain-sdk/price"
)

// Keys of the configuration parameters. The CLI binds its flags to the
// same keys, so that flags override the values in the file.
const (
	NetworkKey         = "network"
	PrintTracesKey     = "printTraces"
	LogLevelKey        = "logLevel"
	LogFileKey         = "logFile"
	GasEstimationKey   = "gasEstimation"
	DefaultGasLimitKey = "defaultGasLimit"
	ConnTimeoutKey     = "connTimeout"
	RPCRetryDelayKey   = "rpcRetryDelay"
	PriceCacheTTLKey   = "priceCacheTTL"
	MaxPriceAgeKey     = "maxPriceAge"
	RPCEndpointsKey    = "rpcEndpoints"
)

// Default values of the configuration parameters.
const (
	DefaultNetwork       = pushchain.TestnetDonut
	DefaultLogLevel      = "info"
	DefaultConnTimeout   = 10 * time.Second
	DefaultRPCRetryDelay = 200 * time.Millisecond
)

type (
	// File is the layout of the configuration file.
	//
	// RPC overrides are given as a list because chain identifiers are case
	// sensitive and viper lower cases the keys of maps.
	File struct {
		Network         string
		PrintTraces     bool
		LogLevel        string
		LogFile         string
		GasEstimation   string
		DefaultGasLimit uint64
		ConnTimeout     time.Duration
		RPCRetryDelay   time.Duration
		PriceCacheTTL   time.Duration
		MaxPriceAge     time.Duration
		RPCEndpoints    []Endpoints
	}

	// Endpoints overrides the default RPC endpoints of a chain.
	Endpoints struct {
		Chain string
		URLs  []string
	}
)

// Default returns the configuration used when no file is given.
func Default() pushchain.Config {
	return pushchain.Config{
		Network:         DefaultNetwork,
		LogLevel:        DefaultLogLevel,
		GasEstimation:   orchestrator.GasEstimationFixed,
		DefaultGasLimit: orchestrator.DefaultGasLimit,
		ConnTimeout:     DefaultConnTimeout,
		RPCRetryDelay:   DefaultRPCRetryDelay,
		PriceCacheTTL:   price.DefaultCacheTTL,
		MaxPriceAge:     price.DefaultMaxPriceAge,
	}
}

// SetDefaults registers the values of Default on the viper instance.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(NetworkKey, string(d.Network))
	v.SetDefault(LogLevelKey, d.LogLevel)
	v.SetDefault(GasEstimationKey, d.GasEstimation)
	v.SetDefault(DefaultGasLimitKey, d.DefaultGasLimit)
	v.SetDefault(ConnTimeoutKey, d.ConnTimeout)
	v.SetDefault(RPCRetryDelayKey, d.RPCRetryDelay)
	v.SetDefault(PriceCacheTTLKey, d.PriceCacheTTL)
	v.SetDefault(MaxPriceAgeKey, d.MaxPriceAge)
}

// Parse parses the configuration from a file. Parameters missing in the
// file take their default values.
func Parse(configFile string) (pushchain.Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(filepath.Clean(configFile))
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return pushchain.Config{}, errors.Wrap(err, "reading from source")
	}
	return FromViper(v)
}

// FromViper copies the configuration from the viper instance and validates
// it.
func FromViper(v *viper.Viper) (pushchain.Config, error) {
	var f File
	if err := v.Unmarshal(&f); err != nil {
		return pushchain.Config{}, errors.Wrap(err, "unmarshalling")
	}
	cfg := f.Config()
	return cfg, Validate(cfg)
}

// Config converts the file layout to a client configuration.
func (f File) Config() pushchain.Config {
	cfg := pushchain.Config{
		Network:         pushchain.Network(f.Network),
		PrintTraces:     f.PrintTraces,
		LogLevel:        f.LogLevel,
		LogFile:         f.LogFile,
		GasEstimation:   f.GasEstimation,
		DefaultGasLimit: f.DefaultGasLimit,
		ConnTimeout:     f.ConnTimeout,
		RPCRetryDelay:   f.RPCRetryDelay,
		PriceCacheTTL:   f.PriceCacheTTL,
		MaxPriceAge:     f.MaxPriceAge,
	}
	if len(f.RPCEndpoints) > 0 {
		cfg.RPCURLs = make(map[pushchain.Chain][]string, len(f.RPCEndpoints))
		for _, e := range f.RPCEndpoints {
			c := pushchain.Chain(e.Chain)
			cfg.RPCURLs[c] = append(cfg.RPCURLs[c], e.URLs...)
		}
	}
	return cfg
}

// Validate checks the configuration and returns an ErrInvalidConfig API
// error for the first invalid parameter.
func Validate(cfg pushchain.Config) error {
	if _, err := chain.PushChainFor(cfg.Network); err != nil {
		return err
	}
	if _, err := orchestrator.NewGasEstimator(cfg.GasEstimation, cfg.DefaultGasLimit); err != nil {
		return err
	}
	if cfg.LogLevel != "" {
		if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
			return pushchain.NewAPIErrInvalidConfig(err, LogLevelKey, cfg.LogLevel)
		}
	}

	durations := []struct {
		key string
		d   time.Duration
	}{
		{ConnTimeoutKey, cfg.ConnTimeout},
		{RPCRetryDelayKey, cfg.RPCRetryDelay},
		{PriceCacheTTLKey, cfg.PriceCacheTTL},
		{MaxPriceAgeKey, cfg.MaxPriceAge},
	}
	for _, p := range durations {
		if p.d < 0 {
			return pushchain.NewAPIErrInvalidConfig(errors.New("negative duration"), p.key, p.d.String())
		}
	}

	for c, urls := range cfg.RPCURLs {
		if _, err := chain.Describe(c); err != nil {
			return pushchain.NewAPIErrInvalidConfig(err, RPCEndpointsKey, string(c))
		}
		if len(urls) == 0 {
			return pushchain.NewAPIErrInvalidConfig(errors.New("no urls"), RPCEndpointsKey, string(c))
		}
		for _, u := range urls {
			if err := validateURL(u); err != nil {
				return pushchain.NewAPIErrInvalidConfig(err, RPCEndpointsKey, u)
			}
		}
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Wrap(err, "parsing url")
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return errors.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("no host")
	}
	return nil
}
