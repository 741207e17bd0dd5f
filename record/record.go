// Copyright © 2025 The Gomon Project.

package record

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zosmac/gocore"
	"github.com/zosmac/procmon/metric"
)

type (
	// Recorder serializes each sample into the output format and flushes it
	// durably. WriteHeader emits the column schema exactly once, before the
	// first sample.
	Recorder interface {
		WriteHeader(metric.Schema) error
		WriteSample(metric.Sample) error
		Close() error
	}

	// csvRecorder writes one comma separated line per sample. Each record is
	// formatted in full and handed to the sink in a single write, so a
	// failed write never leaves a partial line from this writer.
	csvRecorder struct {
		w    io.Writer
		sync *os.File // non nil for regular files, synced after each write
	}
)

// Open builds the recorder for path, creating the sink. "-" selects
// standard output.
func Open(path string) (Recorder, error) {
	if path == "-" {
		return NewCSV(os.Stdout), nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return openSqlite(path)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, gocore.Error("create", err, map[string]string{
			"path": path,
		})
	}
	return NewCSV(f), nil
}

// NewCSV wraps a pre opened writable sink with the csv recorder.
func NewCSV(w io.Writer) Recorder {
	r := &csvRecorder{w: w}
	if f, ok := w.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode().IsRegular() {
			r.sync = f
		}
	}
	return r
}

// WriteHeader emits the column schema line.
func (r *csvRecorder) WriteHeader(s metric.Schema) error {
	return r.write("timestamp,cpu," + s.MemoryPrimary + "," + s.MemorySecondary + "," + s.Handles + "\n")
}

// WriteSample emits one sample line. The timestamp is fractional epoch
// seconds; fields cannot contain commas, so no quoting is needed.
func (r *csvRecorder) WriteSample(m metric.Sample) error {
	return r.write(fmt.Sprintf(
		"%.6f,%.1f,%d,%d,%d\n",
		float64(m.Time.UnixNano())/1e9,
		m.CPUPercent,
		m.MemoryPrimary,
		m.MemorySecondary,
		m.Handles,
	))
}

// write appends one full line and flushes it to the sink.
func (r *csvRecorder) write(line string) error {
	if _, err := io.WriteString(r.w, line); err != nil {
		return gocore.Error("write", err)
	}
	if r.sync != nil {
		if err := r.sync.Sync(); err != nil {
			return gocore.Error("sync", err)
		}
	}
	return nil
}

// Close releases the sink. Standard output is left open for the process.
func (r *csvRecorder) Close() error {
	if c, ok := r.w.(io.Closer); ok && r.w != io.Writer(os.Stdout) {
		return c.Close()
	}
	return nil
}
