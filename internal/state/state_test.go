package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSpawnAndExitRoundTrip(t *testing.T) {
	st, err := Open(t.TempDir())
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.RecordSpawn("hello"))
	require.NoError(t, st.RecordSpawn("hello"))
	require.NoError(t, st.RecordExit("hello", "exit status 0"))

	rec, err := st.Get("hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", rec.Name)
	assert.Equal(t, 2, rec.RestartCount)
	assert.Equal(t, "exit status 0", rec.LastExit)
	assert.False(t, rec.LastSpawnedAt.IsZero())
	assert.False(t, rec.LastExitAt.IsZero())
}

func TestGetUnknownServiceReturnsZeroValue(t *testing.T) {
	st, err := Open(t.TempDir())
	require.NoError(t, err)
	defer st.Close()

	rec, err := st.Get("never-seen")
	require.NoError(t, err)
	assert.Equal(t, "never-seen", rec.Name)
	assert.Equal(t, 0, rec.RestartCount)
}

func TestListReturnsAllSeenServices(t *testing.T) {
	st, err := Open(t.TempDir())
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.RecordSpawn("a"))
	require.NoError(t, st.RecordSpawn("b"))

	recs, err := st.List()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, r := range recs {
		names[r.Name] = true
	}
	assert.True(t, names["a"])
	assert.True(t, names["b"])
}

func TestOpenReopensExistingDatabase(t *testing.T) {
	dir := t.TempDir()

	st1, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, st1.RecordSpawn("svc"))
	require.NoError(t, st1.Close())

	st2, err := Open(dir)
	require.NoError(t, err)
	defer st2.Close()

	rec, err := st2.Get("svc")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.RestartCount)
}
