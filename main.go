// Copyright © 2025 The Gomon Project.

package main

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/zosmac/gocore"
	"github.com/zosmac/procmon/metric"
	"github.com/zosmac/procmon/monitor"
	"github.com/zosmac/procmon/process"
	"github.com/zosmac/procmon/record"
	"golang.org/x/term"
)

// main
func main() {
	os.Exit(run(os.Args))
}

// run separates the target command from the flag arguments, hands the flags
// to gocore, and derives the process exit status: non zero when flag parsing
// fails or Main reports an error.
func run(args []string) int {
	var flagArgs []string
	flagArgs, command = splitCommand(args[1:])
	os.Args = append(args[:1:1], flagArgs...)

	var parsed bool
	var err error
	gocore.Main(func(ctx context.Context) error {
		parsed = true
		err = Main(ctx)
		return err
	})
	return status(parsed, err)
}

// status maps the run outcome to the process exit code. gocore.Main logs a
// returned error but exits normally, and skips the command entirely when the
// flag arguments do not parse.
func status(parsed bool, err error) int {
	if !parsed || err != nil {
		return 1
	}
	return 0
}

// Main called from gocore.Main. The deferred supervisor Stop is the
// guaranteed cleanup action: gocore.Main cancels ctx on interrupt, the
// sampler returns, and the child is terminated on every exit path.
func Main(ctx context.Context) error {
	if flags.config != "" {
		if err := loadConfig(flags.config); err != nil {
			return err
		}
	}

	if len(command) == 0 {
		return gocore.Error("command line", errors.New("no executable specified"))
	}

	sup, err := process.Launch(ctx, command[0], command[1:]...)
	if err != nil {
		return err
	}
	defer sup.Stop()

	provider, err := metric.New(int(sup.Pid()), time.Duration(flags.interval))
	if err != nil {
		if errors.Is(err, metric.ErrProcessGone) {
			// target exited before the first poll; nothing to record
			gocore.Error("stopping data collection", nil, map[string]string{
				"reason": "process exited",
			}).Info()
			return nil
		}
		return gocore.Error("metrics", err, map[string]string{
			"pid": sup.Pid().String(),
		})
	}

	rec, err := record.Open(flags.output)
	if err != nil {
		return err
	}
	defer func() {
		if err := rec.Close(); err != nil {
			gocore.Error("close", err).Err()
		}
	}()

	var echo io.Writer
	if flags.verbose {
		echo = os.Stdout
		if flags.output == "-" {
			echo = os.Stderr
		}
	}
	if flags.output == "-" && term.IsTerminal(int(os.Stdout.Fd())) {
		gocore.Error("output", nil, map[string]string{
			"hint": "samples are csv text; redirect standard output to a file for charting",
		}).Info()
	}

	gocore.Error("start", nil, map[string]string{
		"executable": command[0],
		"pid":        sup.Pid().String(),
		"strategy":   provider.Name(),
		"interval":   time.Duration(flags.interval).String(),
		"output":     flags.output,
	}).Info()

	sampler := monitor.New(provider, rec, provider.Schema(), echo)
	if err := sampler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
