package procs

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnumerator struct {
	pids []int32
	err  error
}

func (f fakeEnumerator) PIDs() ([]int32, error) { return f.pids, f.err }

func TestBroadcastSignalSkipsPidOneAndBelow(t *testing.T) {
	// pid 1 and 0 are skipped outright; the remaining pid is a very unlikely
	// real PID, so syscall.Kill should fail with ESRCH and not count as sent.
	e := fakeEnumerator{pids: []int32{0, 1, 999999999}}

	sent, err := BroadcastSignal(e, syscall.Signal(0))

	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}

func TestBroadcastSignalPropagatesEnumeratorError(t *testing.T) {
	e := fakeEnumerator{err: assertError("enumeration failed")}

	_, err := BroadcastSignal(e, syscall.Signal(0))

	assert.Error(t, err)
}

type assertError string

func (e assertError) Error() string { return string(e) }
