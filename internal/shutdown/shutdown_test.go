package shutdown

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"

	"rkinit/internal/config"
	"rkinit/internal/console"
	"rkinit/pkg/metrics"
)

type fakeEnumerator struct{}

func (fakeEnumerator) PIDs() ([]int32, error) { return nil, nil }

type fakeRebooter struct {
	calledWith []int
	err        error
}

func (f *fakeRebooter) Reboot(cmd int) error {
	f.calledWith = append(f.calledWith, cmd)
	return f.err
}

func TestRunRebootIssuesRestartCommand(t *testing.T) {
	var buf bytes.Buffer
	sink := console.New(&buf)
	reb := &fakeRebooter{}

	c := &Controller{Sink: sink, Rebooter: reb, Enum: fakeEnumerator{}}

	start := time.Now()
	c.run(Reboot)
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 2*config.ShutdownGrace)
	assert.Equal(t, []int{unix.LINUX_REBOOT_CMD_RESTART}, reb.calledWith)
}

func TestRunPowerOffIssuesPowerOffCommand(t *testing.T) {
	var buf bytes.Buffer
	sink := console.New(&buf)
	reb := &fakeRebooter{}

	c := &Controller{Sink: sink, Rebooter: reb, Enum: fakeEnumerator{}}

	c.run(PowerOff)

	assert.Equal(t, []int{unix.LINUX_REBOOT_CMD_POWER_OFF}, reb.calledWith)
}

func TestRunLogsEnumerationFailuresButContinues(t *testing.T) {
	var buf bytes.Buffer
	sink := console.New(&buf)
	reb := &fakeRebooter{}
	enum := failingEnumerator{err: errors.New("no /proc")}

	c := &Controller{Sink: sink, Rebooter: reb, Enum: enum}

	c.run(Reboot)

	out := buf.String()
	assert.Contains(t, out, "can't enumerate processes for SIGTERM: no /proc")
	assert.Contains(t, out, "can't enumerate processes for SIGKILL: no /proc")
	assert.Len(t, reb.calledWith, 1)
}

type failingEnumerator struct{ err error }

func (f failingEnumerator) PIDs() ([]int32, error) { return nil, f.err }

func TestRunFallsBackToHaltWhenRebootSyscallFails(t *testing.T) {
	var buf bytes.Buffer
	sink := console.New(&buf)
	reb := &fakeRebooter{err: errors.New("not permitted")}

	c := &Controller{Sink: sink, Rebooter: reb, Enum: fakeEnumerator{}}

	done := make(chan struct{})
	go func() {
		c.run(Reboot)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("run returned after a failed reboot syscall; it must halt instead")
	case <-time.After(2*config.ShutdownGrace + 200*time.Millisecond):
	}

	assert.Contains(t, buf.String(), "reboot syscall failed: not permitted")
}

func TestModeStringMapsToLabelNames(t *testing.T) {
	assert.Equal(t, "reboot", Reboot.String())
	assert.Equal(t, "poweroff", PowerOff.String())
}

func TestRunObservesShutdownDurationHistogram(t *testing.T) {
	var buf bytes.Buffer
	sink := console.New(&buf)
	reb := &fakeRebooter{}
	c := &Controller{Sink: sink, Rebooter: reb, Enum: fakeEnumerator{}}

	before := metrics.Snapshot()["rkinit_shutdown_duration_seconds_count"]

	c.run(PowerOff)

	after := metrics.Snapshot()["rkinit_shutdown_duration_seconds_count"]
	assert.Greater(t, after, before)
}
