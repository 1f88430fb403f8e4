package cache

import (
	"context"
	"fmt"

	"github.com/tbourn/go-qa-backend/internal/config"
)

// Open builds the response cache selected by cfg.Backend. The "none" backend
// yields a cache that always misses.
func Open(ctx context.Context, cfg config.CacheConfig) (*ResponseCache, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Backend {
	case "redis":
		store, err = NewRedisStore(ctx, cfg.RedisURL)
	case "badger":
		store, err = NewBadgerStore(cfg.BadgerDir)
	case "none", "":
		return NewResponseCache(nil, cfg.QuestionsTTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return NewResponseCache(store, cfg.QuestionsTTL), nil
}
