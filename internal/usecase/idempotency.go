package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iho/budgetbridge/internal/domain"
	"github.com/iho/budgetbridge/internal/infrastructure/metrics"
)

// IdempotencyConfig holds cache tunables.
type IdempotencyConfig struct {
	TTL        time.Duration
	MaxRecords int
}

// IdempotencyCache is a bounded, TTL'd map from (budgetID, key) to a
// previously computed write result. A key binds to exactly one payload
// fingerprint for its lifetime.
type IdempotencyCache struct {
	mu      sync.Mutex
	records map[idemKey]*idemRecord
	cfg     IdempotencyConfig
	metrics *metrics.Metrics
}

type idemKey struct {
	budgetID string
	key      string
}

type idemRecord struct {
	fingerprint string
	response    domain.LedgerEntry
	createdAt   time.Time
}

// NewIdempotencyCache creates a new IdempotencyCache. m may be nil.
func NewIdempotencyCache(cfg IdempotencyConfig, m *metrics.Metrics) *IdempotencyCache {
	return &IdempotencyCache{
		records: make(map[idemKey]*idemRecord),
		cfg:     cfg,
		metrics: m,
	}
}

// Fingerprint digests the business fields of a write, excluding the
// idempotency key itself and any generated id. Absent notes normalize to the
// empty string.
func Fingerprint(amountMinor int64, date, payee, category, account, notes string) string {
	payload := strings.Join([]string{
		strconv.FormatInt(amountMinor, 10),
		date,
		payee,
		category,
		account,
		notes,
	}, "\n")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Get prunes expired records, then looks up (budgetID, key). A nil response
// with nil error is a miss. A present record with a different fingerprint is
// a conflict.
func (c *IdempotencyCache) Get(budgetID, key, fingerprint string, now time.Time) (*domain.LedgerEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneLocked(now)

	rec, ok := c.records[idemKey{budgetID, key}]
	if !ok {
		return nil, nil
	}
	if rec.fingerprint != fingerprint {
		if c.metrics != nil {
			c.metrics.IdempotencyConflicts.Inc()
		}
		return nil, domain.NewConflict("idempotency key was already used with a different payload")
	}
	if c.metrics != nil {
		c.metrics.IdempotencyHits.Inc()
	}
	response := rec.response
	return &response, nil
}

// Put stores the response for (budgetID, key). First insertion of a new key
// prunes expired records and evicts the globally oldest records until the
// total count stays under the cap; overwriting an existing key never triggers
// eviction.
func (c *IdempotencyCache) Put(budgetID, key, fingerprint string, response domain.LedgerEntry, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := idemKey{budgetID, key}
	if _, exists := c.records[k]; exists {
		c.records[k] = &idemRecord{fingerprint: fingerprint, response: response, createdAt: now}
		return
	}

	c.pruneLocked(now)
	for c.cfg.MaxRecords > 0 && len(c.records) >= c.cfg.MaxRecords {
		c.evictOldestLocked()
	}

	c.records[k] = &idemRecord{fingerprint: fingerprint, response: response, createdAt: now}
}

// Len reports the current record count.
func (c *IdempotencyCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

func (c *IdempotencyCache) pruneLocked(now time.Time) {
	if c.cfg.TTL <= 0 {
		return
	}
	for k, rec := range c.records {
		if now.Sub(rec.createdAt) > c.cfg.TTL {
			delete(c.records, k)
		}
	}
}

func (c *IdempotencyCache) evictOldestLocked() {
	var oldestKey idemKey
	var oldest *idemRecord
	for k, rec := range c.records {
		if oldest == nil || rec.createdAt.Before(oldest.createdAt) {
			oldestKey = k
			oldest = rec
		}
	}
	if oldest == nil {
		return
	}
	delete(c.records, oldestKey)
	if c.metrics != nil {
		c.metrics.IdempotencyEvictions.Inc()
	}
}
