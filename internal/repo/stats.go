// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-qa-backend/internal/domain"
)

// HistoryStats returns how many questions userID has asked and when the
// latest one was asked. maxAskedAt is nil when the user has no questions.
func HistoryStats(ctx context.Context, db *gorm.DB, userID string) (count int64, maxAskedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Question{}).Where("user_id = ?", userID)
	return countAndLatest(q, "asked_at")
}

// SavedStats returns the number of saved answers of userID and the latest
// saved_at. maxSavedAt is nil when nothing is saved.
func SavedStats(ctx context.Context, db *gorm.DB, userID string) (count int64, maxSavedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.SavedAnswer{}).Where("user_id = ?", userID)
	return countAndLatest(q, "saved_at")
}

func countAndLatest(q *gorm.DB, col string) (int64, *time.Time, error) {
	var count int64
	if err := q.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Order+limit instead of MAX(): SQLite returns MAX() of a datetime as TEXT.
	var latest []time.Time
	if err := q.Session(&gorm.Session{}).Order(col+" DESC").Limit(1).Pluck(col, &latest).Error; err != nil {
		return 0, nil, err
	}
	if len(latest) == 0 {
		return count, nil, nil
	}
	return count, &latest[0], nil
}
