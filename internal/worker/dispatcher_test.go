package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitRejectsSecondInFlight(t *testing.T) {
	d, err := NewDispatcher(4)
	require.NoError(t, err)
	defer d.Release()

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, d.Submit("checkout:till-1", func() {
		close(started)
		<-release
	}))
	<-started

	err = d.Submit("checkout:till-1", func() {})
	require.ErrorIs(t, err, ErrBusy)
	assert.True(t, d.Busy("checkout:till-1"))

	// a different resource is not blocked
	done := make(chan struct{})
	require.NoError(t, d.Submit("checkout:till-2", func() { close(done) }))
	<-done

	close(release)
	waitNotBusy(t, d, "checkout:till-1")
	require.NoError(t, d.Submit("checkout:till-1", func() {}))
}

func TestSubmitClearsBusyAfterPanic(t *testing.T) {
	d, err := NewDispatcher(1)
	require.NoError(t, err)
	defer d.Release()

	require.NoError(t, d.Submit("checkout:till-1", func() {
		panic("boom")
	}))

	waitNotBusy(t, d, "checkout:till-1")
	require.NoError(t, d.Submit("checkout:till-1", func() {}))
}

func waitNotBusy(t *testing.T, d *Dispatcher, resource string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !d.Busy(resource) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("resource %s still busy", resource)
}
