package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesTasks(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	done := make(chan struct{}, 2)

	q := New("test", func(ctx context.Context, task Task) error {
		mu.Lock()
		seen = append(seen, task.ID)
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, Config{Workers: 2})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Task{ID: "a", Kind: "test"}))
	require.NoError(t, q.Enqueue(Task{ID: "b", Kind: "test"}))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for tasks")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a", "b"}, seen)
}

func TestQueueRetriesThenSucceeds(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})

	q := New("test", func(ctx context.Context, task Task) error {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n < 2 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}, Config{Workers: 1, MaxRetries: 3, RetryDelay: 10 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Task{ID: "flaky", Kind: "test"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task was never retried to success")
	}
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := New("test", func(ctx context.Context, task Task) error { return nil }, Config{})
	err := q.Enqueue(Task{ID: "early"})
	require.Error(t, err)
}

func TestQueueStopIsIdempotent(t *testing.T) {
	q := New("test", func(ctx context.Context, task Task) error { return nil }, Config{Workers: 1})
	q.Start(context.Background())
	q.Stop()
	q.Stop()
}
