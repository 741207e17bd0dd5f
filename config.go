// Copyright © 2025 The Gomon Project.

package main

import (
	"flag"
	"os"

	"github.com/zosmac/gocore"
	"gopkg.in/yaml.v3"
)

type (
	// config supplies defaults for flags not set on the command line.
	config struct {
		Interval string `yaml:"interval"`
		Output   string `yaml:"output"`
		Verbose  *bool  `yaml:"verbose"`
	}
)

// loadConfig applies values from the YAML file at path to flags the command
// line left unset.
func loadConfig(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return gocore.Error("config", err, map[string]string{
			"path": path,
		})
	}

	var cfg config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return gocore.Error("config", err, map[string]string{
			"path": path,
		})
	}

	set := map[string]bool{}
	gocore.Flags.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	return cfg.apply(set)
}

// apply overlays config values onto unset flags.
func (cfg *config) apply(set map[string]bool) error {
	if cfg.Interval != "" && !set["interval"] {
		if err := flags.interval.Set(cfg.Interval); err != nil {
			return gocore.Error("config interval", err)
		}
	}
	if cfg.Output != "" && !set["output"] {
		flags.output = cfg.Output
	}
	if cfg.Verbose != nil && !set["verbose"] {
		flags.verbose = *cfg.Verbose
	}
	return nil
}
