// Copyright © 2025 The Gomon Project.

package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/zosmac/gocore"
	"github.com/zosmac/procmon/metric"
	"github.com/zosmac/procmon/record"
)

type (
	// State of the sampler.
	State int

	// Provider yields one sample per call, blocking for the sampling
	// interval while it measures.
	Provider interface {
		Sample(ctx context.Context) (metric.Sample, error)
	}

	// Sampler owns the poll loop from provider to recorder.
	Sampler struct {
		provider Provider
		recorder record.Recorder
		schema   metric.Schema
		echo     io.Writer // verbose console sink, nil when quiet
		state    State
	}
)

const (
	Starting State = iota
	Running
	Stopped
)

// timeFormat used for the verbose console echo.
const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// New builds a sampler. A nil echo suppresses the per sample console line.
func New(provider Provider, recorder record.Recorder, schema metric.Schema, echo io.Writer) *Sampler {
	return &Sampler{
		provider: provider,
		recorder: recorder,
		schema:   schema,
		echo:     echo,
	}
}

// State reports the sampler's current state.
func (s *Sampler) State() State {
	return s.state
}

// Run writes the header and then loops until the target exits, the context
// is cancelled, or a failure surfaces. A clean target exit returns nil; any
// provider failure other than process exit, and any recorder failure, is
// fatal to the loop. A failed poll appends nothing to the sink.
func (s *Sampler) Run(ctx context.Context) error {
	defer func() { s.state = Stopped }()

	if err := s.recorder.WriteHeader(s.schema); err != nil {
		return gocore.Error("header", err)
	}

	s.state = Running
	gocore.Error("collecting data", nil, map[string]string{
		"columns": "timestamp,cpu," + s.schema.MemoryPrimary + "," + s.schema.MemorySecondary + "," + s.schema.Handles,
	}).Info()

	for {
		m, err := s.provider.Sample(ctx)
		switch {
		case errors.Is(err, metric.ErrProcessGone):
			gocore.Error("stopping data collection", nil, map[string]string{
				"reason": "process exited",
			}).Info()
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case err != nil:
			return gocore.Error("sample", err)
		}

		if err := s.recorder.WriteSample(m); err != nil {
			return gocore.Error("record", err)
		}

		if s.echo != nil {
			fmt.Fprintf(s.echo, "%s: cpu=%.1f%% %s=%d %s=%d %s=%d\n",
				m.Time.Format(timeFormat),
				m.CPUPercent,
				s.schema.MemoryPrimary, m.MemoryPrimary,
				s.schema.MemorySecondary, m.MemorySecondary,
				s.schema.Handles, m.Handles,
			)
		}
	}
}
