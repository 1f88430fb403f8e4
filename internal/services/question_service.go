// Package services – QuestionService
//
// This file implements QuestionService, the orchestrator behind every ask
// operation. For each call it checks the response cache, falls back to the
// answer provider on a miss, classifies the resulting text, and persists the
// exchange. In-domain answers are then cached and, when requested, recorded
// in the user's recent questions.
//
// Streaming variants deliver the same pipeline as an ordered event sequence:
// one cached event on a hit, otherwise content fragments followed by one done
// event, or an error event when the provider fails.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// carry the user id, follow-up flag, cache outcome and resulting question id.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/go-qa-backend/internal/cache"
	"github.com/tbourn/go-qa-backend/internal/classifier"
	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/observability"
	"github.com/tbourn/go-qa-backend/internal/provider"
	"github.com/tbourn/go-qa-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxQuestionRunes caps question length when none is configured.
const DefaultMaxQuestionRunes = 1000

// Stream event types, in the order they may appear.
const (
	EventCached  = "cached"
	EventContent = "content"
	EventDone    = "done"
	EventError   = "error"
)

// Generic failure messages carried by error events.
const (
	msgProviderFailed = "failed to generate an answer"
	msgPersistFailed  = "failed to save the answer"
)

// AskResult is the outcome of a blocking ask.
type AskResult struct {
	Answer     string `json:"answer"`
	QuestionID int64  `json:"question_id"`
	IsInDomain bool   `json:"is_in_domain"`
	// Cached reports whether the answer came from the response cache.
	Cached bool `json:"-"`
}

// StreamEvent is one element of a streaming ask. Which fields are set
// depends on Type:
//   - cached:  Answer, QuestionID, IsInDomain
//   - content: Text
//   - done:    QuestionID, IsInDomain
//   - error:   Message
type StreamEvent struct {
	Type       string
	Text       string
	Answer     string
	QuestionID int64
	IsInDomain bool
	Message    string
}

// EmitFunc receives stream events in order. A non-nil error means the
// consumer is gone; the stream stops and nothing further is persisted.
type EmitFunc func(StreamEvent) error

// AskRequest is the inbound shape shared by every ask operation.
type AskRequest struct {
	UserID       string
	Question     string
	ParentID     *int64
	Transcript   []domain.Turn
	RecordRecent bool
}

// QuestionService coordinates cache, provider, classifier and stores.
type QuestionService struct {
	Store      *repo.ConversationStore
	Recent     *repo.RecentTracker
	Cache      *cache.ResponseCache
	Provider   provider.Provider
	Classifier classifier.Classifier

	// MaxQuestionRunes caps the normalized question length.
	MaxQuestionRunes int
}

// NewQuestionService wires the orchestrator. c may be nil to run uncached.
func NewQuestionService(store *repo.ConversationStore, recent *repo.RecentTracker, c *cache.ResponseCache, p provider.Provider, cls classifier.Classifier) *QuestionService {
	return &QuestionService{
		Store:            store,
		Recent:           recent,
		Cache:            c,
		Provider:         p,
		Classifier:       cls,
		MaxQuestionRunes: DefaultMaxQuestionRunes,
	}
}

// Ask answers a standalone question.
func (s *QuestionService) Ask(ctx context.Context, userID, question string, recordRecent bool) (*AskResult, error) {
	return s.Do(ctx, AskRequest{UserID: userID, Question: question, RecordRecent: recordRecent})
}

// AskFollowup answers a question that continues the conversation rooted at
// parentID. transcript is the prior-turn context sent to the provider and
// folded into the cache key.
func (s *QuestionService) AskFollowup(ctx context.Context, userID, question string, parentID int64, transcript []domain.Turn, recordRecent bool) (*AskResult, error) {
	return s.Do(ctx, AskRequest{
		UserID:       userID,
		Question:     question,
		ParentID:     &parentID,
		Transcript:   transcript,
		RecordRecent: recordRecent,
	})
}

// Do runs the blocking pipeline for req.
func (s *QuestionService) Do(ctx context.Context, req AskRequest) (*AskResult, error) {
	tr := otel.Tracer("services/QuestionService")
	ctx, span := tr.Start(ctx, "Ask",
		trace.WithAttributes(
			attribute.String("user.id", req.UserID),
			attribute.Bool("question.followup", req.ParentID != nil),
		),
	)
	defer span.End()

	if err := s.prepare(ctx, &req); err != nil {
		return nil, err
	}

	if text, ok := s.Cache.Lookup(ctx, req.Question, req.Transcript); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		res, err := s.settle(ctx, req, text, true)
		if err != nil {
			span.SetStatus(codes.Error, "persist")
			return nil, err
		}
		span.SetAttributes(attribute.Int64("question.id", res.QuestionID))
		return res, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	start := time.Now()
	text, err := s.Provider.Answer(ctx, req.Question, req.Transcript)
	observability.ObserveProviderCall("blocking", time.Since(start).Seconds(), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider")
		log.Error().Err(err).Str("user_id", req.UserID).Msg("answer provider failed")
		return nil, fmt.Errorf("%w: %w", ErrProviderFailed, err)
	}

	res, err := s.settle(ctx, req, text, false)
	if err != nil {
		span.SetStatus(codes.Error, "persist")
		return nil, err
	}
	span.SetAttributes(attribute.Int64("question.id", res.QuestionID))
	return res, nil
}

// StreamAsk is the streaming counterpart of Ask.
func (s *QuestionService) StreamAsk(ctx context.Context, userID, question string, recordRecent bool, emit EmitFunc) error {
	return s.Stream(ctx, AskRequest{UserID: userID, Question: question, RecordRecent: recordRecent}, emit)
}

// StreamFollowup is the streaming counterpart of AskFollowup.
func (s *QuestionService) StreamFollowup(ctx context.Context, userID, question string, parentID int64, transcript []domain.Turn, recordRecent bool, emit EmitFunc) error {
	return s.Stream(ctx, AskRequest{
		UserID:       userID,
		Question:     question,
		ParentID:     &parentID,
		Transcript:   transcript,
		RecordRecent: recordRecent,
	}, emit)
}

// Stream runs the streaming pipeline for req, delivering events to emit.
//
// Validation errors are returned before any event is emitted. Provider and
// persistence failures emit one error event and are then returned. If ctx is
// cancelled or emit fails mid-stream, forwarding stops and the accumulated
// text is discarded without persisting anything.
func (s *QuestionService) Stream(ctx context.Context, req AskRequest, emit EmitFunc) error {
	tr := otel.Tracer("services/QuestionService")
	ctx, span := tr.Start(ctx, "Stream",
		trace.WithAttributes(
			attribute.String("user.id", req.UserID),
			attribute.Bool("question.followup", req.ParentID != nil),
		),
	)
	defer span.End()

	send := func(ev StreamEvent) error {
		observability.ObserveStreamEvent(ev.Type)
		return emit(ev)
	}

	if err := s.prepare(ctx, &req); err != nil {
		return err
	}

	if text, ok := s.Cache.Lookup(ctx, req.Question, req.Transcript); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		res, err := s.settle(ctx, req, text, true)
		if err != nil {
			span.SetStatus(codes.Error, "persist")
			_ = send(StreamEvent{Type: EventError, Message: msgPersistFailed})
			return err
		}
		return send(StreamEvent{
			Type:       EventCached,
			Answer:     res.Answer,
			QuestionID: res.QuestionID,
			IsInDomain: res.IsInDomain,
		})
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	start := time.Now()
	text, err := s.forward(ctx, req, send)
	if errors.Is(err, errAbandoned) {
		span.SetAttributes(attribute.Bool("stream.abandoned", true))
		observability.ObserveProviderAbandoned("stream", time.Since(start).Seconds())
		log.Info().Str("user_id", req.UserID).Msg("stream abandoned by consumer")
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		return err
	}
	observability.ObserveProviderCall("stream", time.Since(start).Seconds(), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider")
		log.Error().Err(err).Str("user_id", req.UserID).Msg("answer provider stream failed")
		_ = send(StreamEvent{Type: EventError, Message: msgProviderFailed})
		return fmt.Errorf("%w: %w", ErrProviderFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := s.settle(ctx, req, text, false)
	if err != nil {
		span.SetStatus(codes.Error, "persist")
		_ = send(StreamEvent{Type: EventError, Message: msgPersistFailed})
		return err
	}
	span.SetAttributes(attribute.Int64("question.id", res.QuestionID))
	return send(StreamEvent{Type: EventDone, QuestionID: res.QuestionID, IsInDomain: res.IsInDomain})
}

// errAbandoned marks a stream whose consumer went away.
var errAbandoned = errors.New("stream abandoned")

// forward relays content fragments from the provider to send while
// accumulating them. It returns errAbandoned when send fails or ctx ends.
func (s *QuestionService) forward(ctx context.Context, req AskRequest, send func(StreamEvent) error) (string, error) {
	st, err := s.Provider.Stream(ctx, req.Question, req.Transcript)
	if err != nil {
		return "", err
	}
	defer st.Close()

	var b strings.Builder
	for {
		ch, err := st.Recv()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return "", errAbandoned
			}
			return "", err
		}
		if ch.Type != provider.ChunkContent || ch.Text == "" {
			continue
		}
		b.WriteString(ch.Text)
		if err := send(StreamEvent{Type: EventContent, Text: ch.Text}); err != nil {
			return "", errAbandoned
		}
	}
}

// prepare normalizes and validates req in place and checks the parent.
func (s *QuestionService) prepare(ctx context.Context, req *AskRequest) error {
	req.Question = NormalizeQuestion(req.Question)
	if req.Question == "" {
		return ErrEmptyQuestion
	}
	limit := s.MaxQuestionRunes
	if limit <= 0 {
		limit = DefaultMaxQuestionRunes
	}
	if utf8.RuneCountInString(req.Question) > limit {
		return ErrQuestionTooLong
	}
	if req.ParentID == nil {
		return nil
	}
	parent, err := s.Store.GetQuestion(ctx, *req.ParentID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrParentNotFound
		}
		return err
	}
	if parent.UserID != req.UserID {
		return ErrParentNotFound
	}
	return nil
}

// settle classifies text, persists the exchange, and for in-domain answers
// refreshes the cache (on a miss) and the recent list (when requested).
func (s *QuestionService) settle(ctx context.Context, req AskRequest, text string, fromCache bool) (*AskResult, error) {
	verdict := s.Classifier.Classify(text)
	inDomain := verdict == classifier.InDomain

	q, err := s.Store.CreateExchange(ctx, req.UserID, req.Question, req.ParentID, text)
	if err != nil {
		log.Error().Err(err).Str("user_id", req.UserID).Msg("persist exchange failed")
		return nil, err
	}
	observability.ObserveAnswer(verdict.String())

	if inDomain {
		if !fromCache {
			s.Cache.Store(ctx, req.Question, text, req.Transcript)
		}
		if req.RecordRecent && s.Recent != nil {
			if err := s.Recent.Record(ctx, req.UserID, req.Question); err != nil {
				log.Warn().Err(err).Str("user_id", req.UserID).Int64("question_id", q.ID).Msg("recent question not recorded")
			}
		}
	}

	return &AskResult{
		Answer:     text,
		QuestionID: q.ID,
		IsInDomain: inDomain,
		Cached:     fromCache,
	}, nil
}

// blankLinesRE matches runs of three or more newlines.
var blankLinesRE = regexp.MustCompile(`\n{3,}`)

// NormalizeQuestion applies NFC, unifies line endings, collapses runs of
// blank lines to one, and trims surrounding whitespace.
func NormalizeQuestion(raw string) string {
	s := norm.NFC.String(raw)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = blankLinesRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
