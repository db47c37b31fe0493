// Package shutdown implements the Signal Controller: two reserved
// administrative signals mapped to "reboot" and "power off", each running
// the same graceful-termination sequence before invoking the kernel reboot
// primitive.
package shutdown

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"rkinit/internal/config"
	"rkinit/internal/console"
	"rkinit/internal/mount"
	"rkinit/internal/procs"
	"rkinit/pkg/metrics"
	"rkinit/pkg/rklog"
)

// Mode selects the kernel reboot primitive invoked at the end of the
// shutdown sequence.
type Mode int

const (
	Reboot Mode = iota
	PowerOff
)

func (m Mode) String() string {
	if m == PowerOff {
		return "poweroff"
	}
	return "reboot"
}

// Rebooter abstracts the reboot(2) syscall so the sequence is testable.
type Rebooter interface {
	Reboot(cmd int) error
}

type sysRebooter struct{}

func (sysRebooter) Reboot(cmd int) error {
	return unix.Reboot(cmd)
}

// System is the production Rebooter, backed by golang.org/x/sys/unix.
var System Rebooter = sysRebooter{}

// Controller owns the reserved SIG_REBOOT/SIG_POWEROFF handlers. The
// mapping of the OS's two user-defined signals to Reboot/PowerOff is fixed:
// SIGUSR1 requests a reboot, SIGUSR2 requests a power off.
type Controller struct {
	Sink     *console.Sink
	Rebooter Rebooter
	Enum     procs.Enumerator
}

// New builds a Controller using the production Rebooter and process
// enumerator.
func New(sink *console.Sink) *Controller {
	return &Controller{Sink: sink, Rebooter: System, Enum: procs.System}
}

// Install registers the two signal handlers. Per the design note on
// async-signal safety, Go's signal.Notify already delivers to an ordinary
// goroutine rather than an async-signal-unsafe handler context, so the full
// sequence below runs directly on the receiving goroutine instead of
// needing a separate flag-and-condvar handoff.
func (c *Controller) Install() {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGUSR1, syscall.SIGUSR2)

	go func() {
		for sig := range ch {
			switch sig {
			case syscall.SIGUSR1:
				c.run(Reboot)
			case syscall.SIGUSR2:
				c.run(PowerOff)
			}
		}
	}()
}

// run executes the shutdown sequence: SIGTERM broadcast, grace sleep,
// sync, SIGKILL broadcast, grace sleep, reboot syscall. At least
// ShutdownGrace elapses between the SIGTERM broadcast and the reboot
// syscall (I6 depends on sync having completed before that call).
func (c *Controller) run(mode Mode) {
	timer := metrics.NewTimer()

	c.Sink.Info("send SIGTERM to all processes")
	if _, err := procs.BroadcastSignal(c.Enum, syscall.SIGTERM); err != nil {
		c.Sink.Error("can't enumerate processes for SIGTERM: %v", err)
	}

	time.Sleep(config.ShutdownGrace)

	mount.Sync()

	if _, err := procs.BroadcastSignal(c.Enum, syscall.SIGKILL); err != nil {
		c.Sink.Error("can't enumerate processes for SIGKILL: %v", err)
	}
	c.Sink.Info("send final SIGKILL")

	time.Sleep(config.ShutdownGrace)

	timer.ObserveDurationVec(metrics.ShutdownDurationSeconds, mode.String())
	rklog.WithComponent("shutdown").Info().
		Interface("metrics", metrics.Snapshot()).
		Str("mode", mode.String()).
		Msg("final metrics snapshot before reboot")

	cmd := unix.LINUX_REBOOT_CMD_RESTART
	if mode == PowerOff {
		cmd = unix.LINUX_REBOOT_CMD_POWER_OFF
	}

	if err := c.Rebooter.Reboot(cmd); err != nil {
		c.Sink.Error("reboot syscall failed: %v", err)
		mount.Halt()
	}
}
