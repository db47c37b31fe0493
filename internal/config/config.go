// Package config holds the compile-time constants that govern the init
// process. There is no file, flag, or environment-variable layer: the
// appliance boots the same way every time, and the only "configuration" a
// single-purpose image needs is baked in here.
package config

import "time"

const (
	// ServiceDir is scanned once at boot for executables to supervise.
	ServiceDir = "/bin"

	// InitBinaryName is excluded from the service scan.
	InitBinaryName = "init"

	// BootMountPoint and DataMountPoint are the two device-backed mounts
	// that fall back across mmcblk0p<N>, sda<N>, vda<N>.
	BootMountPoint = "/boot"
	DataMountPoint = "/data"

	// BootPartition and DataPartition are the 1-based partition indices
	// used to build the fallback device node names.
	BootPartition = 1
	DataPartition = 4

	BootFSType = "vfat"
	DataFSType = "ext4"

	// ProcMountPoint, TmpMountPoint, RunMountPoint are mounted from a
	// literal pseudo-device name; failure to mount any of these is fatal.
	ProcMountPoint = "/proc"
	TmpMountPoint  = "/tmp"
	RunMountPoint  = "/run"

	// LogDir is where per-service stdout/stderr logs are written.
	LogDir = "/data"

	// StdoutLogExt and StderrLogExt name the two log files per service.
	StdoutLogExt = "log"
	StderrLogExt = "err"

	// LogSizeCap is the log file length, in bytes, above which the Log
	// Writer truncates the file to zero before its next line write. The
	// check runs before each write, so a file can exceed the cap by at
	// most one line.
	LogSizeCap = 30_000_000

	// RestartInterval is the fixed sleep between a service's exit and
	// its next spawn attempt.
	RestartInterval = 30 * time.Second

	// ShutdownGrace is the time the Signal Controller waits after
	// broadcasting SIGTERM before broadcasting SIGKILL, and again before
	// invoking the kernel reboot primitive.
	ShutdownGrace = 3 * time.Second

	// StateDBName is the bbolt database of per-service restart
	// bookkeeping, opened under DataMountPoint once it is mounted.
	StateDBName = "rkinit-state.db"
)
