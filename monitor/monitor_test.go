// Copyright © 2025 The Gomon Project.

package monitor

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/zosmac/procmon/metric"
)

var posixSchema = metric.Schema{
	MemoryPrimary:   "rss",
	MemorySecondary: "vms",
	Handles:         "file_descriptors",
}

// fakeProvider yields its canned samples in order and then its terminal
// error.
type fakeProvider struct {
	samples []metric.Sample
	final   error
	calls   int
}

func (p *fakeProvider) Sample(ctx context.Context) (metric.Sample, error) {
	if err := ctx.Err(); err != nil {
		return metric.Sample{}, err
	}
	p.calls++
	if p.calls <= len(p.samples) {
		return p.samples[p.calls-1], nil
	}
	return metric.Sample{}, p.final
}

// fakeRecorder captures what the sampler hands over, optionally rejecting
// sample n.
type fakeRecorder struct {
	headers int
	schema  metric.Schema
	samples []metric.Sample
	failAt  int // reject the nth sample write, 0 for never
}

func (r *fakeRecorder) WriteHeader(s metric.Schema) error {
	r.headers++
	r.schema = s
	return nil
}

func (r *fakeRecorder) WriteSample(m metric.Sample) error {
	if r.failAt > 0 && len(r.samples)+1 == r.failAt {
		return errors.New("disk full")
	}
	r.samples = append(r.samples, m)
	return nil
}

func (r *fakeRecorder) Close() error { return nil }

func cannedSamples(n int) []metric.Sample {
	base := time.Now()
	ms := make([]metric.Sample, n)
	for i := range ms {
		ms[i] = metric.Sample{
			Time:            base.Add(time.Duration(i+1) * time.Second),
			CPUPercent:      float64(i),
			MemoryPrimary:   1 << 20,
			MemorySecondary: 2 << 20,
			Handles:         4,
		}
	}
	return ms
}

func TestRunCleanExit(t *testing.T) {
	provider := &fakeProvider{samples: cannedSamples(3), final: metric.ErrProcessGone}
	recorder := &fakeRecorder{}
	s := New(provider, recorder, posixSchema, nil)
	test.That(t, s.State(), test.ShouldEqual, Starting)

	test.That(t, s.Run(context.Background()), test.ShouldBeNil)
	test.That(t, s.State(), test.ShouldEqual, Stopped)

	test.That(t, recorder.headers, test.ShouldEqual, 1)
	test.That(t, recorder.schema, test.ShouldResemble, posixSchema)
	test.That(t, recorder.samples, test.ShouldHaveLength, 3)
	for i := 1; i < len(recorder.samples); i++ {
		test.That(t, recorder.samples[i].Time.After(recorder.samples[i-1].Time), test.ShouldBeTrue)
	}
}

func TestRunImmediateExit(t *testing.T) {
	// the target may exit before the first poll; header only, no samples
	provider := &fakeProvider{final: metric.ErrProcessGone}
	recorder := &fakeRecorder{}
	s := New(provider, recorder, posixSchema, nil)

	test.That(t, s.Run(context.Background()), test.ShouldBeNil)
	test.That(t, recorder.headers, test.ShouldEqual, 1)
	test.That(t, recorder.samples, test.ShouldHaveLength, 0)
}

func TestRunFatalProviderError(t *testing.T) {
	provider := &fakeProvider{samples: cannedSamples(2), final: errors.New("permission revoked")}
	recorder := &fakeRecorder{}
	s := New(provider, recorder, posixSchema, nil)

	err := s.Run(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "permission revoked")
	test.That(t, s.State(), test.ShouldEqual, Stopped)

	// the failed poll appended nothing
	test.That(t, recorder.samples, test.ShouldHaveLength, 2)
}

func TestRunSinkFailure(t *testing.T) {
	provider := &fakeProvider{samples: cannedSamples(5), final: metric.ErrProcessGone}
	recorder := &fakeRecorder{failAt: 3}
	s := New(provider, recorder, posixSchema, nil)

	err := s.Run(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "disk full")

	// exactly two samples persisted, and no further polls after the failure
	test.That(t, recorder.samples, test.ShouldHaveLength, 2)
	test.That(t, provider.calls, test.ShouldEqual, 3)
}

func TestRunVerboseEcho(t *testing.T) {
	provider := &fakeProvider{samples: cannedSamples(2), final: metric.ErrProcessGone}
	recorder := &fakeRecorder{}
	var echo bytes.Buffer
	s := New(provider, recorder, posixSchema, &echo)

	test.That(t, s.Run(context.Background()), test.ShouldBeNil)

	lines := bytes.Split(bytes.TrimSpace(echo.Bytes()), []byte("\n"))
	test.That(t, lines, test.ShouldHaveLength, 2)
	test.That(t, echo.String(), test.ShouldContainSubstring, "cpu=")
	test.That(t, echo.String(), test.ShouldContainSubstring, "rss=")
	test.That(t, echo.String(), test.ShouldContainSubstring, "file_descriptors=4")
}

func TestRunCancelled(t *testing.T) {
	provider := &fakeProvider{samples: cannedSamples(10), final: metric.ErrProcessGone}
	recorder := &fakeRecorder{}
	s := New(provider, recorder, posixSchema, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Run(ctx)
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
	test.That(t, s.State(), test.ShouldEqual, Stopped)
	test.That(t, recorder.samples, test.ShouldHaveLength, 0)
}
