// Copyright © 2025 The Gomon Project.

/*
Package process owns the lifecycle of the launched target: start it, reap it,
and guarantee its termination on every exit path of the monitor. Other
packages hold only the pid for querying; the supervisor is the single owner
of the process handle.
*/
package process
