// Package services – SavedAnswerService
//
// This file implements saved answers. Saving any question bookmarks the root
// of its conversation, so a saved answer always brings its whole thread
// along. Tags are normalized (trimmed, single-spaced, lower-cased, de-duplicated)
// before they are stored, which makes tag filters case-insensitive.
package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Saved answer limits.
const (
	DefaultSavedLimit = 100
	MaxSavedLimit     = 500
	MaxTags           = 20
	MaxTagRunes       = 50
)

// SavedRepo defines the repository contract required by SavedAnswerService.
type SavedRepo interface {
	// UpsertSavedAnswer inserts or refreshes the (user, question) bookmark.
	UpsertSavedAnswer(ctx context.Context, db *gorm.DB, userID string, questionID int64, tags []string, now time.Time) (*domain.SavedAnswer, error)

	// ListSavedAnswers returns the user's bookmarks newest first; limit <= 0 lists all.
	ListSavedAnswers(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.SavedAnswer, error)

	// DeleteSavedAnswer removes a bookmark owned by the user.
	DeleteSavedAnswer(ctx context.Context, db *gorm.DB, userID string, id int64) error

	// SavedStats returns the bookmark count and the latest saved_at.
	SavedStats(ctx context.Context, db *gorm.DB, userID string) (int64, *time.Time, error)
}

// SavedAnswerService manages a user's saved answers.
type SavedAnswerService struct {
	DB    *gorm.DB
	Repo  SavedRepo
	Store *repo.ConversationStore

	// Now defaults to time.Now().UTC().
	Now func() time.Time
}

// NewSavedAnswerService constructs the service. Conversation lookups go
// through a ConversationStore over the same db.
func NewSavedAnswerService(db *gorm.DB, r SavedRepo) *SavedAnswerService {
	return &SavedAnswerService{DB: db, Repo: r, Store: repo.NewConversationStore(db)}
}

// Save bookmarks the conversation containing questionID for userID. Saving
// the same conversation again replaces its tags.
func (s *SavedAnswerService) Save(ctx context.Context, userID string, questionID int64, tags []string) (*domain.SavedAnswerDetail, error) {
	tr := otel.Tracer("services/SavedAnswerService")
	ctx, span := tr.Start(ctx, "Save",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int64("question.id", questionID),
		),
	)
	defer span.End()

	tags, err := NormalizeTags(tags)
	if err != nil {
		return nil, err
	}

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
	span.SetAttributes(attribute.Int64("question.root_id", rootID))

	rec, err := s.Repo.UpsertSavedAnswer(ctx, s.DB, userID, rootID, tags, s.now())
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, *rec)
}

// List returns saved answers newest first, each with its full thread.
func (s *SavedAnswerService) List(ctx context.Context, userID string, limit int) ([]domain.SavedAnswerDetail, error) {
	tr := otel.Tracer("services/SavedAnswerService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	recs, err := s.Repo.ListSavedAnswers(ctx, s.DB, userID, clampSavedLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.details(ctx, recs)
}

// Search filters saved answers. A non-empty tag selects bookmarks carrying
// that tag; otherwise a non-empty query selects bookmarks whose root
// question or answer contains it, ignoring case. With neither, Search is List.
func (s *SavedAnswerService) Search(ctx context.Context, userID, query, tag string, limit int) ([]domain.SavedAnswerDetail, error) {
	query = strings.TrimSpace(query)
	tag = normalizeTag(tag)
	if query == "" && tag == "" {
		return s.List(ctx, userID, limit)
	}

	tr := otel.Tracer("services/SavedAnswerService")
	ctx, span := tr.Start(ctx, "Search",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Bool("filter.tag", tag != ""),
		),
	)
	defer span.End()

	recs, err := s.Repo.ListSavedAnswers(ctx, s.DB, userID, 0)
	if err != nil {
		return nil, err
	}
	limit = clampSavedLimit(limit)
	fold := cases.Fold()
	needle := fold.String(query)

	out := make([]domain.SavedAnswerDetail, 0)
	for _, rec := range recs {
		if len(out) >= limit {
			break
		}
		if tag != "" {
			if !hasTag(rec.Tags, tag) {
				continue
			}
		} else {
			ex, err := s.Store.GetExchange(ctx, rec.QuestionID)
			if err != nil {
				return nil, err
			}
			if !strings.Contains(fold.String(ex.Question), needle) && !strings.Contains(fold.String(ex.Answer), needle) {
				continue
			}
		}
		d, err := s.detail(ctx, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

// Tags returns the user's distinct tags in lexical order.
func (s *SavedAnswerService) Tags(ctx context.Context, userID string) ([]string, error) {
	recs, err := s.Repo.ListSavedAnswers(ctx, s.DB, userID, 0)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, rec := range recs {
		for _, t := range rec.Tags {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Delete removes a saved answer owned by userID.
func (s *SavedAnswerService) Delete(ctx context.Context, userID string, id int64) error {
	if err := s.Repo.DeleteSavedAnswer(ctx, s.DB, userID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrSavedAnswerNotFound
		}
		return err
	}
	return nil
}

// Stats returns the bookmark count and latest saved_at, for cache validators.
func (s *SavedAnswerService) Stats(ctx context.Context, userID string) (int64, *time.Time, error) {
	return s.Repo.SavedStats(ctx, s.DB, userID)
}

func (s *SavedAnswerService) details(ctx context.Context, recs []domain.SavedAnswer) ([]domain.SavedAnswerDetail, error) {
	out := make([]domain.SavedAnswerDetail, 0, len(recs))
	for _, rec := range recs {
		d, err := s.detail(ctx, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

func (s *SavedAnswerService) detail(ctx context.Context, rec domain.SavedAnswer) (*domain.SavedAnswerDetail, error) {
	ex, err := s.Store.GetExchange(ctx, rec.QuestionID)
	if err != nil {
		return nil, err
	}
	thread, err := s.Store.ThreadOf(ctx, rec.QuestionID)
	if err != nil {
		return nil, err
	}
	tags := []string(rec.Tags)
	if tags == nil {
		tags = []string{}
	}
	return &domain.SavedAnswerDetail{
		ID:                 rec.ID,
		QuestionID:         rec.QuestionID,
		Question:           ex.Question,
		Answer:             ex.Answer,
		Tags:               tags,
		SavedAt:            rec.SavedAt,
		ConversationThread: thread,
	}, nil
}

func (s *SavedAnswerService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// NormalizeTags trims, lower-cases, clips and de-duplicates tags, dropping
// blanks. Order of first appearance is kept.
func NormalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, t := range tags {
		t = normalizeTag(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) > MaxTags {
		return nil, ErrTooManyTags
	}
	return out, nil
}

func normalizeTag(t string) string {
	t = strings.Join(strings.Fields(t), " ")
	t = cases.Lower(language.Und).String(t)
	if utf8.RuneCountInString(t) > MaxTagRunes {
		t = strings.TrimSpace(string([]rune(t)[:MaxTagRunes]))
	}
	return t
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func clampSavedLimit(limit int) int {
	if limit <= 0 {
		return DefaultSavedLimit
	}
	if limit > MaxSavedLimit {
		return MaxSavedLimit
	}
	return limit
}
