// Package services – IdempotencyService
//
// This file records completed blocking asks under a client-supplied
// Idempotency-Key so that retries replay the stored exchange instead of
// calling the provider again. Records are scoped by (user, route, key) and
// expire after a TTL.
package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-qa-backend/internal/repo"
)

// DefaultIdempotencyTTL applies when no TTL is configured.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyService stores and replays ask outcomes.
type IdempotencyService struct {
	DB    *gorm.DB
	Store *repo.ConversationStore
	TTL   time.Duration
}

// NewIdempotencyService returns a service over db.
func NewIdempotencyService(db *gorm.DB, ttl time.Duration) *IdempotencyService {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyService{DB: db, Store: repo.NewConversationStore(db), TTL: ttl}
}

// Exists reports whether a live record exists for the tuple. It matches
// the middleware's lookup signature.
func (s *IdempotencyService) Exists(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
	_, err := repo.GetIdempotency(ctx, s.DB, userID, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Replay returns the stored outcome for the tuple, if any.
func (s *IdempotencyService) Replay(ctx context.Context, userID, scope, key string) (*AskResult, bool) {
	rec, err := repo.GetIdempotency(ctx, s.DB, userID, scope, key, time.Now().UTC())
	if err != nil {
		return nil, false
	}
	ex, err := s.Store.GetExchange(ctx, rec.QuestionID)
	if err != nil {
		return nil, false
	}
	return &AskResult{Answer: ex.Answer, QuestionID: rec.QuestionID, IsInDomain: rec.IsInDomain}, true
}

// Remember records res under the tuple. Failures are logged and ignored;
// a concurrent request that recorded first wins.
func (s *IdempotencyService) Remember(ctx context.Context, userID, scope, key string, res *AskResult) {
	if res == nil || key == "" {
		return
	}
	_, err := repo.CreateIdempotency(ctx, s.DB, userID, scope, key, res.QuestionID, res.IsInDomain, http.StatusOK, s.TTL)
	if err != nil && !errors.Is(err, repo.ErrDuplicate) {
		log.Warn().Err(err).Str("user_id", userID).Str("scope", scope).Msg("idempotency record not stored")
	}
}
