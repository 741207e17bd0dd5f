// Copyright © 2025 The Gomon Project.

package process

import (
	"strconv"
)

type (
	// Pid is the identifier for a process.
	Pid int
)

// String formats a pid as a string to comply with fmt.Stringer interface.
func (pid Pid) String() string {
	return strconv.Itoa(int(pid))
}
