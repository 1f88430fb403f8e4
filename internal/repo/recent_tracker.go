package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-qa-backend/internal/domain"
)

// DefaultRecentMax bounds a user's recent-question list when Max is unset.
const DefaultRecentMax = 6

// RecentTracker keeps a bounded most-recently-asked list per user.
type RecentTracker struct {
	DB  *gorm.DB
	Max int
	Now func() time.Time // defaults to time.Now().UTC()
}

// NewRecentTracker returns a tracker keeping at most max entries per user.
func NewRecentTracker(db *gorm.DB, max int) *RecentTracker {
	return &RecentTracker{DB: db, Max: max}
}

func (t *RecentTracker) max() int {
	if t.Max > 0 {
		return t.Max
	}
	return DefaultRecentMax
}

func (t *RecentTracker) now() time.Time {
	if t.Now != nil {
		return t.Now().UTC()
	}
	return time.Now().UTC()
}

// Record upserts (userID, question) on its case-insensitive key, refreshing
// the timestamp and the displayed text, then evicts everything beyond the
// newest Max entries. Both steps share a transaction.
func (t *RecentTracker) Record(ctx context.Context, userID, question string) error {
	now := t.now()
	return t.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := domain.RecentQuestion{
			UserID:      userID,
			Question:    question,
			QuestionKey: RecentKey(question),
			AskedAt:     now,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "question_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"question", "asked_at"}),
		}).Create(&rec).Error
		if err != nil {
			return err
		}
		return trimRecent(tx, userID, t.max())
	})
}

// RecentKey is the dedup key of a recent question: the same lowercase/trim
// normalization the response cache keys on.
func RecentKey(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}

// List returns the user's recent questions, newest first. limit <= 0 or
// above Max returns the whole list.
func (t *RecentTracker) List(ctx context.Context, userID string, limit int) ([]domain.RecentQuestion, error) {
	if limit <= 0 || limit > t.max() {
		limit = t.max()
	}
	var out []domain.RecentQuestion
	err := t.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("asked_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// Delete removes one entry owned by userID. Missing entries yield ErrNotFound.
func (t *RecentTracker) Delete(ctx context.Context, userID string, id int64) error {
	res := t.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.RecentQuestion{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes all entries of userID and reports how many were deleted.
func (t *RecentTracker) Clear(ctx context.Context, userID string) (int64, error) {
	res := t.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.RecentQuestion{})
	return res.RowsAffected, res.Error
}

func trimRecent(tx *gorm.DB, userID string, keep int) error {
	newest := tx.Model(&domain.RecentQuestion{}).
		Select("id").
		Where("user_id = ?", userID).
		Order("asked_at DESC, id DESC").
		Limit(keep)
	return tx.Where("user_id = ? AND id NOT IN (?)", userID, newest).
		Delete(&domain.RecentQuestion{}).Error
}
