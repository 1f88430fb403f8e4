// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// SavedAnswer model.
//
// Functions follow the thin-repository approach: they accept a *gorm.DB
// (possibly a transaction), compose the query and return raw gorm errors.
// Business rules such as resolving a conversation root before saving live in
// services.SavedAnswerService.
package repo

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-qa-backend/internal/domain"
)

// UpsertSavedAnswer saves questionID for userID, or refreshes tags and
// saved_at if the user already saved it.
func UpsertSavedAnswer(ctx context.Context, db *gorm.DB, userID string, questionID int64, tags []string, now time.Time) (*domain.SavedAnswer, error) {
	if tags == nil {
		tags = []string{}
	}
	rec := &domain.SavedAnswer{
		UserID:     userID,
		QuestionID: questionID,
		Tags:       datatypes.JSONSlice[string](tags),
		SavedAt:    now,
	}
	db = db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"tags", "saved_at"}),
	}).Create(rec).Error
	if err != nil {
		return nil, err
	}
	// The conflict path does not reliably return the existing id; reload.
	var out domain.SavedAnswer
	if err := db.Where("user_id = ? AND question_id = ?", userID, questionID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSavedAnswers returns the user's saved answers, newest first.
func ListSavedAnswers(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.SavedAnswer, error) {
	var out []domain.SavedAnswer
	q := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("saved_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// DeleteSavedAnswer removes a saved answer owned by userID, returning
// ErrNotFound when nothing matched.
func DeleteSavedAnswer(ctx context.Context, db *gorm.DB, userID string, id int64) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.SavedAnswer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
