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

// Command pushchain inspects the chains supported by Push Chain, derives
// executor accounts and executes transactions on Push Chain.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/fatih/color"
	"github.com/kylelemons/godebug/pretty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/config"
)

const (
	// flag names for the configuration, shared by all commands.
	configfileF    = "config" // can only be specified in flag, not via config file.
	networkF       = "network"
	loglevelF      = "loglevel"
	logfileF       = "logfile"
	printtracesF   = "printtraces"
	gasestimationF = "gasestimation"
	conntimeoutF   = "conntimeout"
)

// Flags bound to the keys of the config file. Values in flags, when
// specified, override the values in the file.
var cfgFlags = map[string]string{
	networkF:       config.NetworkKey,
	loglevelF:      config.LogLevelKey,
	logfileF:       config.LogFileKey,
	printtracesF:   config.PrintTracesKey,
	gasestimationF: config.GasEstimationKey,
	conntimeoutF:   config.ConnTimeoutKey,
}

var (
	// SPrintf style functions that produce colored text.
	redf   = color.New(color.FgRed).SprintfFunc()
	greenf = color.New(color.FgGreen).SprintfFunc()
	boldf  = color.New(color.Bold).SprintfFunc()

	prettyFormatterConfig = &pretty.Config{
		Formatter: map[reflect.Type]interface{}{
			reflect.TypeOf(time.Duration(0)): fmt.Sprint,
		},
	}
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, redf("Error: %s", apiErrorString(err)))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	rootCmd := &cobra.Command{
		Use:   "pushchain",
		Short: "Execute transactions on Push Chain from any supported chain.",
		Long: `
Execute transactions on Push Chain from any supported chain. A user on another
chain acts through an executor account on Push Chain, which is derived from
the address of the user and paid for by locking fees on the chain of the user.

Configuration can be specified in a config file or via flags. Values in the
flags override that in the config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:    "no-help",
		Hidden: true,
	})
	defineConfigFlags(rootCmd.PersistentFlags())
	for flag, key := range cfgFlags {
		if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	load := func(cmd *cobra.Command) (pushchain.Config, error) {
		return loadConfig(cmd.Flags(), v)
	}
	rootCmd.AddCommand(
		newChainsCmd(),
		newAccountCmd(load),
		newHashCmd(load),
		newExecuteCmd(load),
		newVersionCmd(),
	)
	return rootCmd
}

func defineConfigFlags(fs *pflag.FlagSet) {
	fs.String(configfileF, "", "Config file. Defaults are used when not specified")

	// All these flags should have zero values for defaults, as their only purpose is to allow the user to
	// explicitly specify the configuration.
	fs.String(networkF, "", "Push Chain network. Supported: mainnet, testnet_donut, testnet, localnet")
	fs.String(loglevelF, "", "Log level. Supported levels: debug, info, error")
	fs.String(logfileF, "", "Log file path. Use empty string for stdout")
	fs.Bool(printtracesF, false, "Log each step of an execution at info level")
	fs.String(gasestimationF, "", "Gas estimation strategy. Supported: fixed, simulate")
	fs.Duration(conntimeoutF, time.Duration(0), "Timeout for connecting to an rpc endpoint")
}

// loadConfig reads the config file, if one is specified, and applies the
// flags over it.
func loadConfig(fs *pflag.FlagSet, v *viper.Viper) (pushchain.Config, error) {
	config.SetDefaults(v)
	cfgFile, err := fs.GetString(configfileF)
	if err != nil {
		return pushchain.Config{}, errors.Wrap(err, "unknown flag configfile")
	}
	if cfgFile != "" {
		v.SetConfigFile(filepath.Clean(cfgFile))
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return pushchain.Config{}, errors.Wrap(err, "reading config file")
		}
	}
	return config.FromViper(v)
}

// prettify returns a prettified string version of the input data.
func prettify(vals ...interface{}) string {
	return prettyFormatterConfig.Sprint(vals...)
}

// apiErrorString formats an API error with its category, code and
// additional info.
func apiErrorString(err error) string {
	apiErr, ok := pushchain.AsAPIError(err)
	if !ok {
		return err.Error()
	}
	return fmt.Sprintf("category: %s, code: %d, message: %s, additional info: %s",
		apiErr.Category(), apiErr.Code(), apiErr.Message(), prettify(apiErr.AddInfo()))
}
