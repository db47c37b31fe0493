// Package mount implements the Mount Manager: fixed-order filesystem
// preparation at boot, device fallback for the two partition-backed mounts,
// and scoped unmount handles whose destruction issues a detached unmount.
package mount

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"rkinit/internal/config"
	"rkinit/internal/console"
)

// Handle is a scoped representation of a successful mount. Its lifetime is
// meant to span the lifetime of the init process; Close issues a lazy
// (MNT_DETACH) unmount that the kernel completes asynchronously once
// references drop, matching the design note on mount handle lifetime and
// LIFO drop order.
type Handle struct {
	target string
}

// Close requests a detached unmount of the handle's target. It never blocks
// on the unmount completing.
func (h *Handle) Close() error {
	if h == nil {
		return nil
	}
	return unix.Unmount(h.target, unix.MNT_DETACH)
}

// Mounter abstracts the raw mount(2)/unmount(2) syscalls so the fallback
// and boot sequences are unit-testable without root privileges.
type Mounter interface {
	Mount(source, target, fstype string, flags uintptr, data string) error
}

type sysMounter struct{}

func (sysMounter) Mount(source, target, fstype string, flags uintptr, data string) error {
	return unix.Mount(source, target, fstype, flags, data)
}

// System is the production Mounter backed by golang.org/x/sys/unix.
var System Mounter = sysMounter{}

// devicesFor returns the fallback device-node candidates for a 1-based
// partition index, tried in the fixed order mmcblk0 -> sda -> vda.
func devicesFor(partition int) []string {
	return []string{
		fmt.Sprintf("/dev/mmcblk0p%d", partition),
		fmt.Sprintf("/dev/sda%d", partition),
		fmt.Sprintf("/dev/vda%d", partition),
	}
}

// Halt parks the current goroutine indefinitely without returning. It never
// exits the process — the kernel panics if PID 1 exits.
func Halt() {
	for {
		time.Sleep(time.Hour)
	}
}

// MountOrHalt tries each fallback device node for partition, in order,
// mounting it at mountPoint with fstype, stopping at the first success. If
// every device fails, the last error is reported to the console and the
// calling goroutine halts forever.
func MountOrHalt(m Mounter, sink *console.Sink, partition int, mountPoint, fstype string) *Handle {
	var lastErr error

	for _, dev := range devicesFor(partition) {
		if err := m.Mount(dev, mountPoint, fstype, 0, ""); err != nil {
			lastErr = err
			continue
		}
		return &Handle{target: mountPoint}
	}

	sink.Error("can't mount %s: %v", mountPoint, lastErr)
	Halt()
	return nil // unreachable; Halt never returns
}

// MountPseudo mounts a pseudo-filesystem (procfs, tmpfs) from a literal
// device name. Failure here is always fatal to boot.
func MountPseudo(m Mounter, device, mountPoint, fstype string) (*Handle, error) {
	if err := m.Mount(device, mountPoint, fstype, 0, ""); err != nil {
		return nil, fmt.Errorf("can't mount %s: %w", mountPoint, err)
	}
	return &Handle{target: mountPoint}, nil
}

// Sync flushes all filesystems, used by the shutdown sequence before the
// reboot syscall.
func Sync() {
	unix.Sync()
}

// Boot runs the fixed mount sequence from §4.1/§4.6: /boot, /data, /proc,
// /tmp, /run, in that order. It returns the five handles (so the caller can
// hold them as distinct named bindings for LIFO drop on shutdown) or halts
// the calling goroutine if any step fails fatally.
func Boot(m Mounter, sink *console.Sink) (boot, data, proc, tmp, run *Handle) {
	boot = MountOrHalt(m, sink, config.BootPartition, config.BootMountPoint, config.BootFSType)
	data = MountOrHalt(m, sink, config.DataPartition, config.DataMountPoint, config.DataFSType)

	var err error
	proc, err = MountPseudo(m, "proc", config.ProcMountPoint, "proc")
	if err != nil {
		sink.Error("%s", err)
		Halt()
	}

	tmp, err = MountPseudo(m, "tmpfs", config.TmpMountPoint, "tmpfs")
	if err != nil {
		sink.Error("%s", err)
		Halt()
	}

	run, err = MountPseudo(m, "tmpfs", config.RunMountPoint, "tmpfs")
	if err != nil {
		sink.Error("%s", err)
		Halt()
	}

	return boot, data, proc, tmp, run
}
