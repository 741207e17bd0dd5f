// Copyright © 2025 The Gomon Project.

package main

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/zosmac/gocore"
)

var (
	// command is the target executable and its arguments, separated from the
	// flag arguments before the flag parser runs.
	command []string

	// flags defines the command line flags.
	flags = struct {
		interval
		output  string
		config  string
		verbose bool
	}{
		interval: interval(time.Second),
		output:   "run_log.csv",
	}
)

type (
	// interval is a command line flag type.
	interval time.Duration
)

// Set is a flag.Value interface method to enable interval as a command line
// flag. It accepts a Go duration string or a bare count of seconds.
func (i *interval) Set(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return err
		}
		d = time.Duration(f * float64(time.Second))
	}
	if d <= 0 {
		return errors.New("sampling interval must be positive")
	}
	*i = interval(d)
	return nil
}

// String is a flag.Value interface method to enable interval as a command line flag.
func (i *interval) String() string {
	return time.Duration(*i).String()
}

// splitCommand separates the flag arguments from the target executable and
// its arguments, which the flag parser would otherwise reject. The command
// begins at the first token that is neither a registered flag nor the value
// of one, or immediately after a "--".
func splitCommand(args []string) ([]string, []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return args[:i], args[i+1:]
		}
		if len(arg) < 2 || arg[0] != '-' {
			return args[:i], args[i:]
		}
		name := strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
		if strings.Contains(name, "=") {
			continue
		}
		f := gocore.Flags.Lookup(name)
		if f == nil {
			continue // leave unrecognized flags for the parser to report
		}
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			continue
		}
		i++ // the flag's value
	}
	return args, nil
}

// init initializes the command line flags.
func init() {
	gocore.Flags.Var(
		&flags.interval,
		"interval",
		"[-interval <interval>]",
		"Collect a sample every `interval`, specified as a Go time.Duration or a count of seconds",
	)
	gocore.Flags.Var(
		&flags.output,
		"output",
		"[-output <path>]",
		"Append samples to `path`; \"-\" selects standard output, a .db, .sqlite, or .sqlite3 extension selects the SQLite recorder",
	)
	gocore.Flags.Var(
		&flags.config,
		"config",
		"[-config <path>]",
		"Read defaults for unset flags from the YAML file at `path`",
	)
	gocore.Flags.Var(
		&flags.verbose,
		"verbose",
		"[-verbose]",
		"Echo each sample to the console",
	)

	gocore.Flags.CommandDescription = `Launches an executable and, for the life of that process,
	periodically samples its resource usage:
		• cpu utilization
		• memory footprint (working set/rss and private bytes/vms)
		• open handle or file descriptor count
	appending each sample to an output log for automated parsing and charting.`

	gocore.Flags.ArgumentDescriptions = [][2]string{
		{"executable", "Path to the target executable"},
		{"arguments", "Arguments passed through to the target"},
	}
}
