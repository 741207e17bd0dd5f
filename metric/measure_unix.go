// Copyright © 2025 The Gomon Project.

//go:build !windows

package metric

import (
	"errors"
	"runtime"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/zosmac/gocore"
)

type (
	// posix reads metrics through the process pseudo filesystem and the
	// host's bsd style process info calls.
	posix struct {
		proc *process.Process
	}
)

// newStrategy selects the posix strategy compiled into this build. Hosts
// other than linux and darwin keep the posix strategy with a warning, since
// its process model may not match theirs.
func newStrategy(pid int) (strategy, error) {
	switch runtime.GOOS {
	case "linux", "darwin":
	default:
		gocore.Error("falling back to posix metrics", gocore.Unsupported()).Warn()
	}

	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, gone(nil, err)
	}
	return &posix{proc: proc}, nil
}

// name reports the strategy.
func (s *posix) name() string {
	return "posix"
}

// schema reports the posix column names.
func (s *posix) schema() Schema {
	return Schema{
		MemoryPrimary:   "rss",
		MemorySecondary: "vms",
		Handles:         "file_descriptors",
	}
}

// cpuTime reads the process' total consumed cpu time.
func (s *posix) cpuTime() (time.Duration, error) {
	t, err := s.proc.Times()
	if err != nil {
		return 0, gone(s.proc, err)
	}
	return time.Duration((t.User + t.System) * float64(time.Second)), nil
}

// snapshot reads the closing cpu time, memory, and descriptor count in one
// poll pass.
func (s *posix) snapshot() (Sample, time.Duration, error) {
	cpu, err := s.cpuTime()
	if err != nil {
		return Sample{}, 0, err
	}
	mem, err := s.proc.MemoryInfo()
	if err != nil {
		return Sample{}, 0, gone(s.proc, err)
	}
	fds, err := s.proc.NumFDs()
	if err != nil {
		return Sample{}, 0, gone(s.proc, err)
	}

	return Sample{
		MemoryPrimary:   mem.RSS,
		MemorySecondary: mem.VMS,
		Handles:         int(fds),
	}, cpu, nil
}

// gone normalizes read failures against a vanished process to
// ErrProcessGone. The proc entry disappears once the child is reaped, so any
// failure against a pid that no longer exists means the process exited.
func gone(proc *process.Process, err error) error {
	if errors.Is(err, process.ErrorProcessNotRunning) || errors.Is(err, syscall.ESRCH) {
		return ErrProcessGone
	}
	if proc != nil {
		if running, e := proc.IsRunning(); e == nil && !running {
			return ErrProcessGone
		}
	}
	return err
}
