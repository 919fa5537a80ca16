package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/expense-tracker/backend/internal/application/adapter"
)

// AlertRetention keeps a ledger entry past the end of its month.
const AlertRetention = 40 * 24 * time.Hour

// redisAlertLedger implements adapter.AlertLedger with SETNX keys.
type redisAlertLedger struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisAlertLedger creates an alert ledger on redis.
func NewRedisAlertLedger(client *redis.Client, prefix string) adapter.AlertLedger {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &redisAlertLedger{
		client: client,
		prefix: prefix,
		ttl:    AlertRetention,
	}
}

func (l *redisAlertLedger) key(ownerID, period string) string {
	return fmt.Sprintf("%s:alert:%s:%s", l.prefix, ownerID, period)
}

// MarkSent records the alert unless it already exists.
func (l *redisAlertLedger) MarkSent(ctx context.Context, ownerID, period string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(ownerID, period), time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark alert as sent: %w", err)
	}
	return ok, nil
}

// Forget removes the alert record.
func (l *redisAlertLedger) Forget(ctx context.Context, ownerID, period string) error {
	if err := l.client.Del(ctx, l.key(ownerID, period)).Err(); err != nil {
		return fmt.Errorf("failed to forget alert: %w", err)
	}
	return nil
}

// memoryAlertLedger implements adapter.AlertLedger in process memory.
type memoryAlertLedger struct {
	mu      sync.Mutex
	entries map[string]struct{}
}

// NewMemoryAlertLedger creates an alert ledger that lives as long as the process.
func NewMemoryAlertLedger() adapter.AlertLedger {
	return &memoryAlertLedger{entries: make(map[string]struct{})}
}

// MarkSent records the alert unless it already exists.
func (l *memoryAlertLedger) MarkSent(_ context.Context, ownerID, period string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := ownerID + ":" + period
	if _, ok := l.entries[key]; ok {
		return false, nil
	}
	l.entries[key] = struct{}{}
	return true, nil
}

// Forget removes the alert record.
func (l *memoryAlertLedger) Forget(_ context.Context, ownerID, period string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, ownerID+":"+period)
	return nil
}
