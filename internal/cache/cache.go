// Package cache implements the response cache that sits in front of the
// answer provider. Answers are keyed by a digest of the normalized question
// and the prior-turn transcript, stored with a fixed TTL, and never
// invalidated explicitly.
//
// The cache is an optimization only: every backend failure is logged and
// absorbed, so a lookup against an unavailable backend is a miss and a store
// is a no-op.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/observability"
)

// KeyPrefix namespaces answer entries in a shared key-value store.
const KeyPrefix = "question:"

// keyDigestLen is the number of hex characters of the digest kept in a key.
const keyDigestLen = 16

// Store is a TTL key-value backend. Get reports a missing key as
// ("", false, nil); any non-nil error means the backend failed.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}

// Key derives the cache key for a question and its optional transcript.
//
// The question is trimmed and lowercased; the transcript is serialized as a
// JSON list of {"content","role"} objects in order, with a missing or empty
// transcript serialized as "[]". Identical inputs always yield identical keys.
func Key(question string, transcript []domain.Turn) string {
	norm := strings.ToLower(strings.TrimSpace(question))
	hist := "[]"
	if len(transcript) > 0 {
		if b, err := json.Marshal(transcript); err == nil {
			hist = string(b)
		}
	}
	sum := sha256.Sum256([]byte(norm + ":" + hist))
	return KeyPrefix + hex.EncodeToString(sum[:])[:keyDigestLen]
}

// ResponseCache adapts a Store to question/answer lookups. A nil
// *ResponseCache, or one without a store, always misses.
type ResponseCache struct {
	store Store
	ttl   time.Duration
}

// NewResponseCache returns a cache over store whose entries expire after ttl.
func NewResponseCache(store Store, ttl time.Duration) *ResponseCache {
	return &ResponseCache{store: store, ttl: ttl}
}

// Enabled reports whether lookups can ever hit.
func (c *ResponseCache) Enabled() bool { return c != nil && c.store != nil }

// Lookup returns the cached answer for (question, transcript), if any.
func (c *ResponseCache) Lookup(ctx context.Context, question string, transcript []domain.Turn) (string, bool) {
	if !c.Enabled() {
		return "", false
	}
	key := Key(question, transcript)
	val, ok, err := c.store.Get(ctx, key)
	if err != nil {
		observability.ObserveCacheLookup("error")
		log.Warn().Err(err).Str("cache_key", key).Msg("cache lookup failed; treating as miss")
		return "", false
	}
	if !ok {
		observability.ObserveCacheLookup("miss")
		return "", false
	}
	observability.ObserveCacheLookup("hit")
	return val, true
}

// Store writes answer under the key of (question, transcript). Callers decide
// whether an answer is cacheable; Store writes unconditionally.
func (c *ResponseCache) Store(ctx context.Context, question, answer string, transcript []domain.Turn) {
	if !c.Enabled() {
		return
	}
	key := Key(question, transcript)
	err := c.store.Set(ctx, key, answer, c.ttl)
	observability.ObserveCacheWrite(err)
	if err != nil {
		log.Warn().Err(err).Str("cache_key", key).Msg("cache store failed; continuing")
	}
}

// Close releases the underlying store.
func (c *ResponseCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.store.Close()
}
