// Copyright © 2025 The Gomon Project.

/*
Package metric reads the resource usage of a single process: cpu utilization,
memory footprint, and the count of open handles or file descriptors. The
platform strategy is selected once when the provider is built and fixed for
the life of the run.
*/
package metric
