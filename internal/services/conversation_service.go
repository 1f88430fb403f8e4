// Package services – ConversationService
//
// This file implements read access to persisted exchanges: a user's history,
// single exchanges, and whole conversation threads resolved from any
// question inside them.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// History limits.
const (
	DefaultHistoryLimit = 10
	DefaultHistoryMax   = 100
)

// ConversationService reads history and threads.
type ConversationService struct {
	Store *repo.ConversationStore

	// HistoryMaxLimit caps History's limit argument.
	HistoryMaxLimit int
}

// NewConversationService returns a service over store.
func NewConversationService(store *repo.ConversationStore, maxLimit int) *ConversationService {
	return &ConversationService{Store: store, HistoryMaxLimit: maxLimit}
}

// History returns the user's exchanges, newest first. limit <= 0 uses
// DefaultHistoryLimit; larger values are capped at HistoryMaxLimit.
func (s *ConversationService) History(ctx context.Context, userID string, limit int) ([]domain.HistoryItem, error) {
	tr := otel.Tracer("services/ConversationService")
	ctx, span := tr.Start(ctx, "History",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	return s.Store.HistoryFor(ctx, userID, s.clampLimit(limit))
}

// HistoryStats returns the number of questions the user asked and the time
// of the latest one, for cache validators.
func (s *ConversationService) HistoryStats(ctx context.Context, userID string) (int64, *time.Time, error) {
	return repo.HistoryStats(ctx, s.Store.DB, userID)
}

// Exchange returns one of the user's exchanges by question id.
func (s *ConversationService) Exchange(ctx context.Context, userID string, questionID int64) (*domain.HistoryItem, error) {
	q, err := s.Store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, notFoundAs(err, ErrQuestionNotFound)
	}
	if q.UserID != userID {
		return nil, ErrQuestionNotFound
	}
	item, err := s.Store.GetExchange(ctx, questionID)
	if err != nil {
		return nil, notFoundAs(err, ErrQuestionNotFound)
	}
	return item, nil
}

// Thread resolves the root of questionID and returns the whole conversation
// under it. Only the owner of the conversation may read it.
func (s *ConversationService) Thread(ctx context.Context, userID string, questionID int64) (*domain.ConversationThread, error) {
	tr := otel.Tracer("services/ConversationService")
	ctx, span := tr.Start(ctx, "Thread",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int64("question.id", questionID),
		),
	)
	defer span.End()

	rootID, err := s.Store.RootOf(ctx, questionID)
	if err != nil {
		return nil, notFoundAs(err, ErrQuestionNotFound)
	}
	root, err := s.Store.GetQuestion(ctx, rootID)
	if err != nil {
		return nil, notFoundAs(err, ErrQuestionNotFound)
	}
	if root.UserID != userID {
		return nil, ErrQuestionNotFound
	}

	entries, err := s.Store.ThreadOf(ctx, rootID)
	if err != nil {
		return nil, notFoundAs(err, ErrQuestionNotFound)
	}
	span.SetAttributes(attribute.Int("thread.size", len(entries)))
	return &domain.ConversationThread{RootQuestionID: rootID, Entries: entries}, nil
}

func (s *ConversationService) clampLimit(limit int) int {
	ceiling := s.HistoryMaxLimit
	if ceiling <= 0 {
		ceiling = DefaultHistoryMax
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > ceiling {
		limit = ceiling
	}
	return limit
}

// notFoundAs maps repository not-found errors to target.
func notFoundAs(err, target error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return target
	}
	return err
}
