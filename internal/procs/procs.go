// Package procs enumerates and signals every process on the system, the
// primitive the Signal Controller's shutdown sequence uses to broadcast
// SIGTERM and, after the grace period, SIGKILL.
package procs

import (
	"syscall"

	psutil "github.com/shirou/gopsutil/v3/process"
)

// Enumerator lists every PID currently known to the kernel. It is an
// interface so the shutdown sequence is testable without sending real
// signals to the test process's neighbours.
type Enumerator interface {
	PIDs() ([]int32, error)
}

type gopsutilEnumerator struct{}

func (gopsutilEnumerator) PIDs() ([]int32, error) {
	return psutil.Pids()
}

// System is the production Enumerator, backed by shirou/gopsutil's /proc
// scan.
var System Enumerator = gopsutilEnumerator{}

// BroadcastSignal sends sig to every process the Enumerator reports except
// pid 1 (the init process itself), returning the number of processes
// successfully signalled. Errors signalling an individual process (it may
// have exited between enumeration and signalling) are not fatal to the
// broadcast.
func BroadcastSignal(e Enumerator, sig syscall.Signal) (int, error) {
	pids, err := e.PIDs()
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, pid := range pids {
		if pid <= 1 {
			continue
		}
		if err := syscall.Kill(int(pid), sig); err != nil {
			continue
		}
		sent++
	}
	return sent, nil
}
