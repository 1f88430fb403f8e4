// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the ConversationStore: questions and
// answers organized as a forest of conversation trees.
//
// Error semantics:
//   - Missing rows surface as ErrNotFound (gorm.ErrRecordNotFound).
//   - A parent chain that loops back on itself surfaces as ErrCycle.
//   - Other DB errors are propagated unchanged.
//
// Ancestor and descendant walks are iterative, one query per level, so they
// behave the same on every supported database.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-qa-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound so callers can use either.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrCycle reports a corrupt parent chain.
var ErrCycle = errors.New("conversation parent chain contains a cycle")

// ConversationStore persists questions and their answers.
type ConversationStore struct {
	DB  *gorm.DB
	Now func() time.Time // defaults to time.Now().UTC()
}

// NewConversationStore returns a store over db.
func NewConversationStore(db *gorm.DB) *ConversationStore {
	return &ConversationStore{DB: db}
}

func (s *ConversationStore) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// CreateQuestion inserts a question. parentID may be nil for a new root.
func (s *ConversationStore) CreateQuestion(ctx context.Context, userID, text string, parentID *int64) (*domain.Question, error) {
	return createQuestion(s.DB.WithContext(ctx), userID, text, parentID, s.now())
}

// CreateAnswer inserts the answer of questionID.
func (s *ConversationStore) CreateAnswer(ctx context.Context, questionID int64, text string) (*domain.Answer, error) {
	return createAnswer(s.DB.WithContext(ctx), questionID, text, s.now())
}

// CreateExchange inserts a question and its answer in one transaction, so a
// question is never left without its answer.
func (s *ConversationStore) CreateExchange(ctx context.Context, userID, question string, parentID *int64, answer string) (*domain.Question, error) {
	now := s.now()
	var q *domain.Question
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if q, err = createQuestion(tx, userID, question, parentID, now); err != nil {
			return err
		}
		_, err = createAnswer(tx, q.ID, answer, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetQuestion fetches a question by id.
func (s *ConversationStore) GetQuestion(ctx context.Context, id int64) (*domain.Question, error) {
	var q domain.Question
	if err := s.DB.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// GetExchange fetches a question joined with its answer.
func (s *ConversationStore) GetExchange(ctx context.Context, id int64) (*domain.HistoryItem, error) {
	var rows []exchangeRow
	if err := exchanges(s.DB.WithContext(ctx)).Where("q.id = ?", id).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	item := rows[0].historyItem()
	return &item, nil
}

// RootOf follows parent links from id to the root of its conversation. A
// question without a parent is its own root.
func (s *ConversationStore) RootOf(ctx context.Context, id int64) (int64, error) {
	db := s.DB.WithContext(ctx)
	seen := map[int64]struct{}{}
	cur := id
	for {
		if _, dup := seen[cur]; dup {
			return 0, ErrCycle
		}
		seen[cur] = struct{}{}

		var row struct{ ParentQuestionID *int64 }
		res := db.Model(&domain.Question{}).Select("parent_question_id").Where("id = ?", cur).Limit(1).Scan(&row)
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 0 {
			if cur == id {
				return 0, ErrNotFound
			}
			// Dangling parent link: the last existing question is the root.
			return cur, nil
		}
		if row.ParentQuestionID == nil {
			return cur, nil
		}
		cur = *row.ParentQuestionID
	}
}

// ThreadOf returns rootID and every follow-up below it, ordered by
// (depth, asked_at). The root has depth 0.
func (s *ConversationStore) ThreadOf(ctx context.Context, rootID int64) ([]domain.ThreadEntry, error) {
	db := s.DB.WithContext(ctx)

	var level []exchangeRow
	if err := exchanges(db).Where("q.id = ?", rootID).Scan(&level).Error; err != nil {
		return nil, err
	}
	if len(level) == 0 {
		return nil, ErrNotFound
	}

	seen := map[int64]struct{}{rootID: {}}
	var out []domain.ThreadEntry
	for depth := 0; len(level) > 0; depth++ {
		frontier := make([]int64, 0, len(level))
		for _, r := range level {
			out = append(out, r.threadEntry(depth))
			frontier = append(frontier, r.ID)
		}

		var next []exchangeRow
		err := exchanges(db).
			Where("q.parent_question_id IN ?", frontier).
			Order("q.asked_at ASC, q.id ASC").
			Scan(&next).Error
		if err != nil {
			return nil, err
		}
		level = level[:0]
		for _, r := range next {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
			level = append(level, r)
		}
	}
	return out, nil
}

// HistoryFor returns the user's most recent exchanges, newest first.
func (s *ConversationStore) HistoryFor(ctx context.Context, userID string, limit int) ([]domain.HistoryItem, error) {
	var rows []exchangeRow
	err := exchanges(s.DB.WithContext(ctx)).
		Where("q.user_id = ?", userID).
		Order("q.asked_at DESC, q.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.HistoryItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.historyItem())
	}
	return out, nil
}

// ---- helpers ----

func createQuestion(db *gorm.DB, userID, text string, parentID *int64, now time.Time) (*domain.Question, error) {
	q := &domain.Question{
		UserID:           userID,
		Question:         text,
		ParentQuestionID: parentID,
		AskedAt:          now,
	}
	if err := db.Create(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

func createAnswer(db *gorm.DB, questionID int64, text string, now time.Time) (*domain.Answer, error) {
	a := &domain.Answer{QuestionID: questionID, Answer: text, CreatedAt: now}
	if err := db.Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

type exchangeRow struct {
	ID               int64
	UserID           string
	Question         string
	ParentQuestionID *int64
	AskedAt          time.Time
	Answer           *string
}

func (r exchangeRow) answer() string {
	if r.Answer == nil {
		return ""
	}
	return *r.Answer
}

func (r exchangeRow) threadEntry(depth int) domain.ThreadEntry {
	return domain.ThreadEntry{
		QuestionID:       r.ID,
		Question:         r.Question,
		Answer:           r.answer(),
		ParentQuestionID: r.ParentQuestionID,
		Depth:            depth,
		AskedAt:          r.AskedAt,
	}
}

func (r exchangeRow) historyItem() domain.HistoryItem {
	return domain.HistoryItem{
		ID:               r.ID,
		Question:         r.Question,
		Answer:           r.answer(),
		ParentQuestionID: r.ParentQuestionID,
		AskedAt:          r.AskedAt,
	}
}

func exchanges(db *gorm.DB) *gorm.DB {
	return db.Table("questions AS q").
		Select("q.id, q.user_id, q.question, q.parent_question_id, q.asked_at, a.answer").
		Joins("LEFT JOIN answers AS a ON a.question_id = q.id")
}
