package fifo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/budgetbridge/internal/fifo"
)

func TestQueue_MutualExclusion(t *testing.T) {
	q := fifo.New()

	var mu sync.Mutex
	inside := 0
	maxInside := 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			release, err := q.Acquire(context.Background())
			require.NoError(t, err)

			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()

			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside)
}

func TestQueue_FIFOOrder(t *testing.T) {
	q := fifo.New()

	// Hold the queue so later acquires stack up in a known order.
	release, err := q.Acquire(context.Background())
	require.NoError(t, err)

	var mu sync.Mutex
	var order []int

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			// Registration order is queue order; stagger joins so the
			// expected order is deterministic.
			time.Sleep(time.Duration(n) * 20 * time.Millisecond)
			r, err := q.Acquire(context.Background())
			require.NoError(t, err)
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			r()
		}(i)
	}

	time.Sleep(200 * time.Millisecond)
	release()
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestQueue_TimeoutDoesNotPoison(t *testing.T) {
	q := fifo.New()

	holder, err := q.Acquire(context.Background())
	require.NoError(t, err)

	// Second caller gives up while waiting.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = q.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// Third caller queued behind the abandoned slot must still get in once
	// the holder releases.
	acquired := make(chan struct{})
	go func() {
		r, err := q.Acquire(context.Background())
		assert.NoError(t, err)
		if err == nil {
			r()
		}
		close(acquired)
	}()

	time.Sleep(10 * time.Millisecond)
	holder()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("queue poisoned by timed-out waiter")
	}
}

func TestQueue_ReleaseAfterDrain(t *testing.T) {
	q := fifo.New()

	for i := 0; i < 3; i++ {
		release, err := q.Acquire(context.Background())
		require.NoError(t, err)
		release()
	}
}
