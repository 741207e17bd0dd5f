// Copyright © 2025 The Gomon Project.

/*
Package monitor drives the sampling loop: poll the metric provider, hand each
sample to the recorder, and stop when the target exits. The loop is single
threaded; the provider's interval blocking cpu measurement paces it.
*/
package monitor
