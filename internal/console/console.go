// Package console implements the process-wide, write-only, coloured,
// line-oriented log channel to the kernel console described by the
// supervision engine's Console Sink. Every operator- and test-harness-facing
// line the init process ever prints goes through here; internal diagnostics
// use pkg/rklog instead.
package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Color names the foreground colour used for one line.
type Color int

const (
	White Color = iota
	Yellow
	Green
	Red
)

// Sink is the single process-wide console writer. It is safe to invoke from
// multiple goroutines; concurrent writers interleave only at the granularity
// of a whole Log call, never mid-line.
type Sink struct {
	mu  sync.Mutex
	out io.Writer
}

// New returns a Sink writing to the given stream (os.Stdout in production).
func New(out io.Writer) *Sink {
	return &Sink{out: out}
}

// Default is the process-wide sink used by main and every supervised
// component. It is created once at package initialisation; main hands it to
// the orchestrator, which passes it on to each component it starts.
var Default = New(os.Stdout)

// Log writes one coloured, newline-terminated message. Per the sink's
// contract it always attempts to set the colour, write the message, reset
// the colour, and emit a newline as independent steps; if colour setup or
// reset fails the sink falls back to a plain uncoloured write so a line is
// never lost because of a broken terminal.
func (s *Sink) Log(c Color, format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := fmt.Sprintf(format, args...)

	attr := colorAttr(c)
	if attr == nil {
		fmt.Fprintln(s.out, msg)
		return
	}

	if _, err := fmt.Fprint(s.out, attr.Sprint(msg)); err != nil {
		fmt.Fprintln(s.out, msg)
		return
	}
	fmt.Fprintln(s.out)
}

func colorAttr(c Color) *color.Color {
	switch c {
	case Yellow:
		return color.New(color.FgYellow)
	case Green:
		return color.New(color.FgGreen)
	case Red:
		return color.New(color.FgRed)
	case White:
		return color.New(color.FgWhite)
	default:
		return nil
	}
}

// OK logs the spec's "starting <name>" success line in green.
func (s *Sink) OK(format string, args ...any) {
	s.Log(Green, "[  OK   ] "+format, args...)
}

// Info logs a yellow informational/transition line.
func (s *Sink) Info(format string, args ...any) {
	s.Log(Yellow, "[ INFO  ] "+format, args...)
}

// Error logs a red error line.
func (s *Sink) Error(format string, args ...any) {
	s.Log(Red, "[ ERROR ] "+format, args...)
}

// Line logs a pre-formatted child-log passthrough line in white, with no
// added prefix — the caller (the Log Writer) has already formatted the
// "[<ts> <service>] <text>" form.
func (s *Sink) Line(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attr := color.New(color.FgWhite)
	if _, err := fmt.Fprint(s.out, attr.Sprint(text)); err != nil {
		fmt.Fprint(s.out, text)
	}
}
