// Copyright © 2025 The Gomon Project.

/*
Package main implements the "procmon" command. Procmon launches a target
executable and, for the lifetime of that process, periodically samples its
cpu utilization, memory footprint, and open handle or file descriptor count,
appending each sample to an output log suitable for automated parsing and
charting.

The main package defines the following command line flags:
  - -interval: to set the time between samples (default 1s)
  - -output:   to set the sample log destination (default run_log.csv)
  - -config:   to read flag defaults from a YAML file
  - -verbose:  to echo each sample to the console

The remaining arguments name the target executable and its arguments.
*/
package main
