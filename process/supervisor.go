// Copyright © 2025 The Gomon Project.

package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/zosmac/gocore"
)

type (
	// Supervisor owns the launched target process. Done is closed once the
	// child has been reaped.
	Supervisor struct {
		cmd  *exec.Cmd
		done chan struct{}
		stop sync.Once
	}
)

// Launch starts the target executable as a child process. The path must
// resolve to an existing regular file. The child inherits the monitor's
// standard output and error streams, and dies with ctx if the monitor is
// interrupted before its own cleanup can run.
func Launch(ctx context.Context, path string, args ...string) (*Supervisor, error) {
	path, err := resolve(path)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, gocore.Error("start", err, map[string]string{
			"executable": path,
		})
	}

	s := &Supervisor{
		cmd:  cmd,
		done: make(chan struct{}),
	}
	go s.wait()

	return s, nil
}

// resolve reports the canonical path of an existing regular file.
func resolve(path string) (string, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return "", gocore.Error("Abs", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", gocore.Error("executable", err, map[string]string{
			"path": path,
		})
	}
	if !info.Mode().IsRegular() {
		return "", gocore.Error("executable", errors.New("not a regular file"), map[string]string{
			"path": path,
		})
	}
	return path, nil
}

// wait reaps the child and reports its exit status.
func (s *Supervisor) wait() {
	err := s.cmd.Wait()
	state := s.cmd.ProcessState
	gocore.Error("exited", nil, map[string]string{
		"executable": s.cmd.Path,
		"pid":        s.Pid().String(),
		"rc":         strconv.Itoa(state.ExitCode()),
		"systime":    state.SystemTime().String(),
		"usrtime":    state.UserTime().String(),
		"err":        fmt.Sprint(err),
	}).Info()
	close(s.done)
}

// Pid reports the child's process identifier.
func (s *Supervisor) Pid() Pid {
	return Pid(s.cmd.Process.Pid)
}

// Done reports reaping of the child.
func (s *Supervisor) Done() <-chan struct{} {
	return s.done
}

// Exited reports whether the child has been reaped.
func (s *Supervisor) Exited() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// ExitCode reports the child's exit code, or -1 while it is running.
func (s *Supervisor) ExitCode() int {
	if !s.Exited() {
		return -1
	}
	return s.cmd.ProcessState.ExitCode()
}

// Stop forcibly terminates the child if it is still running and waits for it
// to be reaped. Stop is idempotent and safe to call after the child exited.
func (s *Supervisor) Stop() {
	s.stop.Do(func() {
		if !s.Exited() {
			gocore.Error("stopping executable", nil, map[string]string{
				"pid": s.Pid().String(),
			}).Info()
			if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
				gocore.Error("kill", err).Err()
			}
		}
		<-s.done
	})
}
