package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	dom "github.com/faham03/Gestion-de-budget/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ledger:"

// LedgerCache caches filtered expense lists in Redis, one key per
// (user, month) pair. Category sums are recomputed from the cached list, so
// only the list itself is stored.
type LedgerCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewLedgerCache returns a new LedgerCache.
func NewLedgerCache(rdb *redis.Client, ttl time.Duration) *LedgerCache {
	return &LedgerCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached list for the month filter ("" = all), or nil on miss.
func (c *LedgerCache) GetList(ctx context.Context, userID int64, month string) ([]dom.Expense, error) {
	b, err := c.rdb.Get(ctx, listKey(userID, month)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Expense
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the list for the month filter.
func (c *LedgerCache) SetList(ctx context.Context, userID int64, month string, list []dom.Expense) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(userID, month), b, c.ttl).Err()
}

// InvalidateUser removes every cached list of the user (cache invalidation on write).
func (c *LedgerCache) InvalidateUser(ctx context.Context, userID int64) error {
	pattern := keyPrefix + strconv.FormatInt(userID, 10) + ":*"
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func listKey(userID int64, month string) string {
	if month == "" {
		month = "all"
	}
	return keyPrefix + strconv.FormatInt(userID, 10) + ":" + month
}
