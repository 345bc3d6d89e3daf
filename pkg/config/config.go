// Package config holds the options shared by the command line tools and
// layers them from flags, BLOCKADE_* environment variables and a config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	stdnet "blockade/std/net"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// EnvPrefix prefixes environment overrides, e.g. BLOCKADE_LOG_LEVEL.
const EnvPrefix = "BLOCKADE"

// Options are the tunables of a run.
type Options struct {
	LogLevel string
	// History is the number of stack transitions kept for reports.
	History int
	Timeout time.Duration
	// Width of rendered PNG snapshots in pixels.
	Width int
}

func Default() Options {
	return Options{
		LogLevel: "info",
		History:  16,
		Timeout:  stdnet.DefaultTimeout,
		Width:    800,
	}
}

// BindFlags registers the options on fs, with the current values as defaults.
func (o *Options) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level: debug, info, warn or error")
	fs.IntVar(&o.History, "history", o.History, "Stack transitions kept for reports")
	fs.DurationVar(&o.Timeout, "timeout", o.Timeout, "Timeout for fetching pages and scripts")
	fs.IntVar(&o.Width, "width", o.Width, "Width of rendered snapshots in pixels")
}

// NewViper returns a viper instance reading BLOCKADE_* variables and the
// config file at explicitPath, or config.{yaml,json,toml} in the search dirs.
func NewViper(explicitPath string) *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		return v
	}
	v.SetConfigName("config")
	for _, dir := range SearchDirs() {
		v.AddConfigPath(dir)
	}
	return v
}

// Apply reads the config file and copies every value viper knows into the
// flags the user did not set. A missing config file is only an error when
// strict is set.
func Apply(v *viper.Viper, strict bool, sets ...*pflag.FlagSet) error {
	for _, fs := range sets {
		if err := v.BindPFlags(fs); err != nil {
			return err
		}
	}
	if err := readConfigFile(v, strict); err != nil {
		return err
	}
	var errs error
	for _, fs := range sets {
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Changed || !v.IsSet(f.Name) {
				return
			}
			val := fmt.Sprintf("%v", v.Get(f.Name))
			if val == "" {
				return
			}
			if err := f.Value.Set(val); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", f.Name, err))
			}
		})
	}
	return errs
}

func readConfigFile(v *viper.Viper, strict bool) error {
	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if errors.As(err, &cfgErr) && !strict {
			return nil
		}
		return err
	}
	return nil
}

// SearchDirs lists where config.yaml is looked up, most specific first.
func SearchDirs() []string {
	added := make(map[string]struct{})
	var dirs []string
	add := func(path string) {
		if path == "" {
			return
		}
		if _, ok := added[path]; ok {
			return
		}
		added[path] = struct{}{}
		dirs = append(dirs, path)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		add(filepath.Join(xdg, "blockade"))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		add(filepath.Join(home, ".config", "blockade"))
		add(filepath.Join(home, ".blockade"))
	}
	return dirs
}
