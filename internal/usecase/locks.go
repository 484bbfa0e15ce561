package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/iho/budgetbridge/internal/domain"
	"github.com/iho/budgetbridge/internal/fifo"
	"github.com/iho/budgetbridge/internal/infrastructure/metrics"
)

// LockManager provides per-budget mutual exclusion with FIFO admission.
// A budget's queue entry exists only while requests are queued or executing,
// so idle budgets cost no memory.
type LockManager struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
	metrics *metrics.Metrics
}

type lockEntry struct {
	queue   *fifo.Queue
	waiters int
}

// NewLockManager creates a new LockManager. m may be nil.
func NewLockManager(m *metrics.Metrics) *LockManager {
	return &LockManager{
		entries: make(map[string]*lockEntry),
		metrics: m,
	}
}

// WithBudgetLock runs fn while holding the exclusive write lock for the
// budget. A wait exceeding timeout fails with a conflict condition; the
// timed-out waiter's queue slot still resolves for the waiter behind it.
func (lm *LockManager) WithBudgetLock(ctx context.Context, budgetID string, timeout time.Duration, fn func(ctx context.Context) error) error {
	lm.mu.Lock()
	entry := lm.entries[budgetID]
	if entry == nil {
		entry = &lockEntry{queue: fifo.New()}
		lm.entries[budgetID] = entry
	}
	entry.waiters++
	lm.mu.Unlock()

	defer func() {
		lm.mu.Lock()
		entry.waiters--
		if entry.waiters == 0 {
			delete(lm.entries, budgetID)
		}
		lm.mu.Unlock()
	}()

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	release, err := entry.queue.Acquire(waitCtx)
	if lm.metrics != nil {
		lm.metrics.LockWaitDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if lm.metrics != nil {
			lm.metrics.LockTimeouts.Inc()
		}
		return domain.NewConflict("timed out waiting for budget write lock")
	}
	defer release()

	return fn(ctx)
}

// queuedBudgets reports how many budgets currently hold a queue entry.
func (lm *LockManager) queuedBudgets() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return len(lm.entries)
}
