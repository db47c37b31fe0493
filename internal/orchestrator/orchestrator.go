// Package orchestrator implements the Main Orchestrator (§4.6): the fixed
// boot sequence that enforces PID 1, prepares mounts, launches services,
// installs the signal controller, and parks forever.
package orchestrator

import (
	"os"

	"github.com/google/uuid"

	"rkinit/internal/config"
	"rkinit/internal/console"
	"rkinit/internal/launcher"
	"rkinit/internal/mount"
	"rkinit/internal/shutdown"
	"rkinit/internal/state"
	"rkinit/internal/supervisor"
	"rkinit/pkg/metrics"
	"rkinit/pkg/rklog"
)

// PIDFunc returns the calling process's PID; overridable in tests so the
// PID-1 check can be exercised without actually running as PID 1.
var PIDFunc = os.Getpid

// Run drives the boot sequence described in §4.6. It never returns under
// normal operation — every exit path is a park (Halt) or a kernel reboot.
func Run(sink *console.Sink) {
	if PIDFunc() != 1 {
		sink.Error("must be run as PID 1")
		mount.Halt()
		return
	}

	bootID := uuid.NewString()
	log := rklog.WithBootID(bootID)
	log.Info().Msg("booting")

	mountTimer := metrics.NewTimer()
	boot, data, proc, tmp, run := mount.Boot(mount.System, sink)
	mountTimer.ObserveDuration(metrics.BootMountDurationSeconds)
	// Held as distinct named bindings per the design note on LIFO drop;
	// Close is never actually reached in normal operation because the
	// process only leaves main via reboot(2) or Halt, but keeping the
	// bindings documents the intended reverse-of-mount-order teardown.
	defer run.Close()
	defer tmp.Close()
	defer proc.Close()
	defer data.Close()
	defer boot.Close()

	st, err := state.Open(config.DataMountPoint)
	if err != nil {
		log.Warn().Err(err).Msg("can't open state store, continuing without bookkeeping")
		st = nil
	}

	entries, err := launcher.Launch(sink, config.ServiceDir, func(e launcher.Entry) {
		supervisor.New(e, sink, st, config.LogDir).Run()
	})
	if err != nil {
		sink.Error("%s", err)
	} else {
		metrics.ServicesSupervised.Set(float64(len(entries)))
		log.Info().Int("count", len(entries)).Msg("services launched")
	}

	shutdown.New(sink).Install()

	mount.Halt()
}
