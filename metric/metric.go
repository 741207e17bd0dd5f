// Copyright © 2025 The Gomon Project.

package metric

import (
	"context"
	"errors"
	"time"
)

type (
	// Sample is one atomically read set of the four metrics. Values are
	// immutable once produced.
	Sample struct {
		Time            time.Time
		CPUPercent      float64 // may exceed 100 on multicore hosts
		MemoryPrimary   uint64  // working set (windows) or resident set (posix) bytes
		MemorySecondary uint64  // private bytes (windows) or virtual size (posix) bytes
		Handles         int     // open handles (windows) or file descriptors (posix)
	}

	// Schema names the strategy dependent columns. Column positions are
	// fixed across strategies: timestamp, cpu, memory primary, memory
	// secondary, handles.
	Schema struct {
		MemoryPrimary   string
		MemorySecondary string
		Handles         string
	}

	// Provider reads metrics for one process with the strategy fixed at
	// construction. It holds only a querying reference to the process;
	// ownership of the process stays with its supervisor.
	Provider struct {
		pid      int
		interval time.Duration
		strategy strategy
	}

	// strategy is the per platform metric reader.
	strategy interface {
		name() string
		schema() Schema
		cpuTime() (time.Duration, error)
		snapshot() (Sample, time.Duration, error)
	}
)

// ErrProcessGone reports that the measured process has exited. It ends a
// sampling run cleanly rather than as a failure.
var ErrProcessGone = errors.New("process gone")

// New builds a provider bound to pid that measures cpu utilization across
// interval. ErrProcessGone reports a pid that has already exited.
func New(pid int, interval time.Duration) (*Provider, error) {
	s, err := newStrategy(pid)
	if err != nil {
		return nil, err
	}
	return &Provider{
		pid:      pid,
		interval: interval,
		strategy: s,
	}, nil
}

// Name reports the selected strategy.
func (p *Provider) Name() string {
	return p.strategy.name()
}

// Schema reports the column names of the selected strategy.
func (p *Provider) Schema() Schema {
	return p.strategy.schema()
}

// Sample takes one snapshot of the process. The call blocks for the
// provider's interval: cpu time is read before and after the wait and the
// utilization computed from the delta, so the measurement itself paces the
// sampling cadence. Memory and handle counts are read in the same poll pass
// as the closing cpu time.
func (p *Provider) Sample(ctx context.Context) (Sample, error) {
	before, err := p.strategy.cpuTime()
	if err != nil {
		return Sample{}, err
	}

	start := time.Now()
	t := time.NewTimer(p.interval)
	select {
	case <-ctx.Done():
		t.Stop()
		return Sample{}, ctx.Err()
	case <-t.C:
	}

	s, after, err := p.strategy.snapshot()
	if err != nil {
		return Sample{}, err
	}

	if elapsed := time.Since(start); elapsed > 0 && after > before {
		s.CPUPercent = 100 * float64(after-before) / float64(elapsed)
	}
	s.Time = time.Now()

	return s, nil
}
