// Package launcher implements the Service Launcher: a single-pass scan of
// the service directory that hands each non-init entry to a freshly created
// Supervisor running on its own goroutine.
package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"rkinit/internal/config"
	"rkinit/internal/console"
)

// Entry is an immutable record naming one service: its filename and the
// absolute path to its executable. Created once per directory scan, never
// mutated.
type Entry struct {
	Name string
	Path string
}

// Scan reads dir once and returns one Entry per file other than the init
// binary itself. A non-UTF-8 filename is logged as an error and skipped;
// it contributes no Entry and does not abort the scan.
func Scan(sink *console.Sink, dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("can't read service directory %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		name := f.Name()
		if !isValidUTF8(name) {
			sink.Error("invalid unicode in file name")
			continue
		}
		if name == config.InitBinaryName {
			continue
		}
		entries = append(entries, Entry{
			Name: name,
			Path: filepath.Join(dir, name),
		})
	}
	return entries, nil
}

// Launch scans dir once and starts one goroutine per discovered Entry,
// invoking run with that Entry. It does not wait for the goroutines; the
// caller (the Main Orchestrator) keeps its own process alive by parking.
func Launch(sink *console.Sink, dir string, run func(Entry)) ([]Entry, error) {
	entries, err := Scan(sink, dir)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		go run(e)
	}

	return entries, nil
}

// isValidUTF8 mirrors the original Rust implementation's
// File::file_name().into_string() check. Unix directory entry names are raw
// byte sequences; Go's os.DirEntry.Name() passes those bytes through
// unmodified, so utf8.ValidString reproduces the same rejection.
func isValidUTF8(name string) bool {
	return utf8.ValidString(name)
}
