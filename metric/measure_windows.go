// Copyright © 2025 The Gomon Project.

package metric

import (
	"errors"
	"strconv"
	"time"
	"unsafe"

	"github.com/StackExchange/wmi"

	"golang.org/x/sys/windows"
)

type (
	// win reads metrics through the process handle apis and WMI.
	win struct {
		pid int
	}

	// processMemoryCountersEx mirrors PROCESS_MEMORY_COUNTERS_EX.
	processMemoryCountersEx struct {
		cb                         uint32
		PageFaultCount             uint32
		PeakWorkingSetSize         uintptr
		WorkingSetSize             uintptr
		QuotaPeakPagedPoolUsage    uintptr
		QuotaPagedPoolUsage        uintptr
		QuotaPeakNonPagedPoolUsage uintptr
		QuotaNonPagedPoolUsage     uintptr
		PagefileUsage              uintptr
		PeakPagefileUsage          uintptr
		PrivateUsage               uintptr
	}

	// Win32_Process is a WMI class for process information. The type and
	// field names must match the WMI class for the reflective query
	// generation of the wmi package.
	// See https://docs.microsoft.com/en-us/windows/win32/cimwin32prov/win32-process
	Win32_Process struct {
		ProcessId   uint32
		HandleCount uint32
	}
)

var (
	psapi                = windows.NewLazySystemDLL("psapi.dll")
	getProcessMemoryInfo = psapi.NewProc("GetProcessMemoryInfo").Call
)

// stillActive is the exit code a live process reports.
const stillActive = 259

// newStrategy selects the windows strategy compiled into this build.
func newStrategy(pid int) (strategy, error) {
	s := &win{pid: pid}
	h, err := s.open()
	if err != nil {
		return nil, err
	}
	windows.CloseHandle(h)
	return s, nil
}

// name reports the strategy.
func (s *win) name() string {
	return "windows"
}

// schema reports the windows column names.
func (s *win) schema() Schema {
	return Schema{
		MemoryPrimary:   "working_set",
		MemorySecondary: "private_bytes",
		Handles:         "open_handles",
	}
}

// open acquires a query handle for the process, reporting ErrProcessGone
// once the process has exited.
func (s *win) open() (windows.Handle, error) {
	h, err := windows.OpenProcess(
		windows.PROCESS_QUERY_INFORMATION|windows.PROCESS_VM_READ,
		false,
		uint32(s.pid),
	)
	if err != nil {
		if errors.Is(err, windows.ERROR_INVALID_PARAMETER) {
			return 0, ErrProcessGone
		}
		return 0, err
	}

	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err == nil && code != stillActive {
		windows.CloseHandle(h)
		return 0, ErrProcessGone
	}

	return h, nil
}

// cpuTime reads the process' total consumed cpu time.
func (s *win) cpuTime() (time.Duration, error) {
	h, err := s.open()
	if err != nil {
		return 0, err
	}
	defer windows.CloseHandle(h)

	cpu, err := times(h)
	if err != nil {
		return 0, err
	}
	return cpu, nil
}

// snapshot reads the closing cpu time, memory counters, and handle count in
// one poll pass against a single process handle.
func (s *win) snapshot() (Sample, time.Duration, error) {
	h, err := s.open()
	if err != nil {
		return Sample{}, 0, err
	}
	defer windows.CloseHandle(h)

	cpu, err := times(h)
	if err != nil {
		return Sample{}, 0, err
	}

	counters := processMemoryCountersEx{
		cb: uint32(unsafe.Sizeof(processMemoryCountersEx{})),
	}
	ret, _, err := getProcessMemoryInfo(
		uintptr(h),
		uintptr(unsafe.Pointer(&counters)),
		uintptr(unsafe.Sizeof(counters)),
	)
	if ret == 0 {
		return Sample{}, 0, err
	}

	var wp []Win32_Process
	if err := wmi.Query(
		wmi.CreateQuery(&wp, "WHERE ProcessId = "+strconv.Itoa(s.pid)),
		&wp,
	); err != nil {
		return Sample{}, 0, err
	}
	if len(wp) == 0 {
		return Sample{}, 0, ErrProcessGone
	}

	return Sample{
		MemoryPrimary:   uint64(counters.WorkingSetSize),
		MemorySecondary: uint64(counters.PrivateUsage),
		Handles:         int(wp[0].HandleCount),
	}, cpu, nil
}

// times reads the kernel and user cpu time for an open process handle.
func times(h windows.Handle) (time.Duration, error) {
	var creation, exit, kernel, user windows.Filetime
	if err := windows.GetProcessTimes(h, &creation, &exit, &kernel, &user); err != nil {
		return 0, err
	}
	return time.Duration(kernel.Nanoseconds() + user.Nanoseconds()), nil
}
