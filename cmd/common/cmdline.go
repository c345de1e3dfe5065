// Copyright 2026 Blink Labs Software
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

package common

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	hiero "github.com/blinklabs-io/gohiero"
	"github.com/blinklabs-io/gohiero/ids"
	"github.com/blinklabs-io/gohiero/keys"
	"github.com/spf13/pflag"
)

const (
	ConfigKey   = "config"
	NetworkKey  = "network"
	LogLevelKey = "log-level"

	EnvOperatorID  = "OPERATOR_ID"
	EnvOperatorKey = "OPERATOR_KEY"
	EnvLogLevel    = "SDK_LOG_LEVEL"
)

var ErrMissingOperator = errors.New(
	"an operator is required: set " + EnvOperatorID + " and " + EnvOperatorKey + " or use a config file",
)

type GlobalFlags struct {
	Config   string
	Network  string
	LogLevel string
}

func AddGlobalFlags(flags *pflag.FlagSet, f *GlobalFlags) {
	flags.StringVar(&f.Config, ConfigKey, "", "path to a JSON client config file")
	flags.StringVar(&f.Network, NetworkKey, "testnet", "named network to use when no config file is given")
	defaultLevel := os.Getenv(EnvLogLevel)
	if defaultLevel == "" {
		defaultLevel = "info"
	}
	flags.StringVar(&f.LogLevel, LogLevelKey, defaultLevel, "log level (debug, info, warn, error)")
}

// NewLogger returns a text logger on stderr at the configured level
func (f *GlobalFlags) NewLogger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(f.LogLevel))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", f.LogLevel)
	}
	return slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	), nil
}

// CreateClient builds a client from the config file, or from the named network and
// the operator environment variables
func (f *GlobalFlags) CreateClient(logger *slog.Logger) (*hiero.Client, error) {
	var opts []hiero.ClientOptionFunc
	if f.Config != "" {
		config, err := hiero.NewClientConfigFromFile(f.Config)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		configOpts, err := config.Options()
		if err != nil {
			return nil, err
		}
		opts = append(opts, configOpts...)
	} else {
		network := hiero.NetworkByName(f.Network)
		if network.Name == hiero.NetworkInvalid.Name {
			return nil, fmt.Errorf("invalid network specified: %s", f.Network)
		}
		opts = append(opts, hiero.WithNetwork(network))
	}
	if operatorID, operatorKey := os.Getenv(EnvOperatorID), os.Getenv(EnvOperatorKey); operatorID != "" || operatorKey != "" {
		accountID, err := ids.AccountIDFromString(operatorID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvOperatorID, err)
		}
		key, err := keys.PrivateKeyFromString(operatorKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvOperatorKey, err)
		}
		opts = append(opts, hiero.WithOperator(accountID, key))
	}
	opts = append(opts, hiero.WithLogger(logger))
	c, err := hiero.NewClient(opts...)
	if err != nil {
		return nil, err
	}
	if _, ok := c.Operator(); !ok {
		c.Close()
		return nil, ErrMissingOperator
	}
	return c, nil
}
