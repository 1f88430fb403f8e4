// Package services – RecentService
//
// This file implements explicit management of a user's recent questions. The
// orchestrator records questions implicitly; RecentService lets clients list,
// add, delete, and clear entries directly.
package services

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/repo"
)

// RecentService wraps a RecentTracker with input validation.
type RecentService struct {
	Tracker *repo.RecentTracker

	// MaxQuestionRunes caps added questions. Zero uses DefaultMaxQuestionRunes.
	MaxQuestionRunes int
}

// List returns up to limit recent questions, newest first.
func (s *RecentService) List(ctx context.Context, userID string, limit int) ([]domain.RecentQuestion, error) {
	return s.Tracker.List(ctx, userID, limit)
}

// Add records question and returns the updated list.
func (s *RecentService) Add(ctx context.Context, userID, question string) ([]domain.RecentQuestion, error) {
	question = NormalizeQuestion(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	limit := s.MaxQuestionRunes
	if limit <= 0 {
		limit = DefaultMaxQuestionRunes
	}
	if utf8.RuneCountInString(question) > limit {
		return nil, ErrQuestionTooLong
	}
	if err := s.Tracker.Record(ctx, userID, question); err != nil {
		return nil, err
	}
	return s.Tracker.List(ctx, userID, 0)
}

// Delete removes one entry owned by userID.
func (s *RecentService) Delete(ctx context.Context, userID string, id int64) error {
	if err := s.Tracker.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrRecentNotFound
		}
		return err
	}
	return nil
}

// Clear removes every entry of userID and reports how many were removed.
func (s *RecentService) Clear(ctx context.Context, userID string) (int64, error) {
	return s.Tracker.Clear(ctx, userID)
}
