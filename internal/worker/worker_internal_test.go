package worker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinish_RejectsLateCommands(t *testing.T) {
	t.Parallel()

	w := &NatsWorker{}

	require.True(t, w.begin())

	finished := make(chan struct{})

	go func() {
		w.finish()
		close(finished)
	}()

	// finish must block on the registered command.
	select {
	case <-finished:
		t.Fatal("finish returned while a command was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if w.begin() {
				w.inflight.Done()
			}
		}()
	}

	wg.Wait()
	w.inflight.Done()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("finish did not return after the last command completed")
	}

	assert.False(t, w.begin(), "commands arriving after finish must be rejected")
}
