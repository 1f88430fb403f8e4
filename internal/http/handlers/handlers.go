// Package handlers provides HTTP handler implementations for the public API.
//
// This file declares the service contracts consumed by the handlers and the
// Handlers type that binds them to Gin routes. Handlers are transport-thin:
// they validate input, call application services, and translate results into
// HTTP responses (including conditional and streaming responses).
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/http/middleware"
	"github.com/tbourn/go-qa-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// QuestionService runs the ask pipeline.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type QuestionService interface {
	// Do answers req and persists the exchange.
	Do(ctx context.Context, req services.AskRequest) (*services.AskResult, error)
	// Stream answers req incrementally, delivering events to emit.
	Stream(ctx context.Context, req services.AskRequest, emit services.EmitFunc) error
}

// ConversationService reads history and threads.
type ConversationService interface {
	// History returns the user's exchanges, newest first.
	History(ctx context.Context, userID string, limit int) ([]domain.HistoryItem, error)
	// HistoryStats returns the question count and the latest asked_at.
	HistoryStats(ctx context.Context, userID string) (int64, *time.Time, error)
	// Thread returns the whole conversation containing questionID.
	Thread(ctx context.Context, userID string, questionID int64) (*domain.ConversationThread, error)
}

// RecentService manages the bounded recent-questions list.
type RecentService interface {
	List(ctx context.Context, userID string, limit int) ([]domain.RecentQuestion, error)
	Add(ctx context.Context, userID, question string) ([]domain.RecentQuestion, error)
	Delete(ctx context.Context, userID string, id int64) error
	Clear(ctx context.Context, userID string) (int64, error)
}

// SavedAnswerService manages saved answers.
type SavedAnswerService interface {
	Save(ctx context.Context, userID string, questionID int64, tags []string) (*domain.SavedAnswerDetail, error)
	Search(ctx context.Context, userID, query, tag string, limit int) ([]domain.SavedAnswerDetail, error)
	Tags(ctx context.Context, userID string) ([]string, error)
	Delete(ctx context.Context, userID string, id int64) error
	Stats(ctx context.Context, userID string) (int64, *time.Time, error)
}

// IdempotencyService replays blocking asks retried with the same key.
type IdempotencyService interface {
	Replay(ctx context.Context, userID, scope, key string) (*services.AskResult, bool)
	Remember(ctx context.Context, userID, scope, key string, res *services.AskResult)
}

//
// Handler wiring
//

// Services bundles the dependencies of Handlers. Idempotency may be nil.
type Services struct {
	Questions     QuestionService
	Conversations ConversationService
	Recent        RecentService
	Saved         SavedAnswerService
	Idempotency   IdempotencyService

	// MaxQuestionRunes is reported in length errors. Zero uses
	// services.DefaultMaxQuestionRunes.
	MaxQuestionRunes int
}

// Handlers groups HTTP endpoints for asking, history, recent questions and
// saved answers.
type Handlers struct {
	questions     QuestionService
	conversations ConversationService
	recent        RecentService
	saved         SavedAnswerService
	idem          IdempotencyService
	maxRunes      int
}

// New constructs and returns a Handlers instance bound to the given services.
func New(s Services) *Handlers {
	h := &Handlers{
		questions:     s.Questions,
		conversations: s.Conversations,
		recent:        s.Recent,
		saved:         s.Saved,
		idem:          s.Idempotency,
		maxRunes:      s.MaxQuestionRunes,
	}
	if h.maxRunes <= 0 {
		h.maxRunes = services.DefaultMaxQuestionRunes
	}
	return h
}

// userID resolves the caller the same way the idempotency middleware does,
// so replays are scoped to the user that made the original request.
func userID(c *gin.Context) string { return middleware.UserID(c) }
