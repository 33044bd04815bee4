package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds the settings of a command run, from flags,
// SQLMD_* environment variables, a config file, or the defaults.
type Config struct {
	DB         string
	IterOffset int
	Force      bool
	Element    string
	Bins       int
	Out        string
	Title      string
	Width      float64 // inches
	Height     float64 // inches
	JSON       bool
	Verbose    bool
}

// loadConfig reads the configuration for cmd. Flags that were set on the
// command line take precedence over the environment, which takes
// precedence over the config file.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetDefault("element", "C")
	v.SetDefault("bins", 100)
	v.SetDefault("out", "density.png")
	v.SetDefault("width", 6.0)
	v.SetDefault("height", 5.0)

	v.SetEnvPrefix("SQLMD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("sqlmd")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	c := &Config{
		DB:         v.GetString("db"),
		IterOffset: v.GetInt("iter-offset"),
		Force:      v.GetBool("force"),
		Element:    v.GetString("element"),
		Bins:       v.GetInt("bins"),
		Out:        v.GetString("out"),
		Title:      v.GetString("title"),
		Width:      v.GetFloat64("width"),
		Height:     v.GetFloat64("height"),
		JSON:       v.GetBool("json"),
		Verbose:    v.GetBool("verbose"),
	}
	return c, nil
}
