// Package domain defines the persistence models for questions, answers,
// recent questions and saved answers. These types are mapped with GORM and
// form the core data layer of the question-answering backend.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Question is a single question asked by a user. Follow-up questions point
// at the question they continue through ParentQuestionID, so the questions of
// one conversation form a tree rooted at a question without a parent.
//
// Fields:
//   - ID: autoincrement primary key.
//   - UserID: identifier of the asker; indexed for history retrieval.
//   - Question: the sanitized question text (1..1000 characters).
//   - ParentQuestionID: optional parent; nil marks a conversation root.
//   - AskedAt: creation timestamp, used for ordering history and threads.
//
// Questions are immutable once created. Deleting a question cascades to its
// answer and to every follow-up below it.
type Question struct {
	ID               int64     `json:"id"                           gorm:"primaryKey;autoIncrement"`
	UserID           string    `json:"user_id"                      gorm:"type:varchar(64);not null;index:idx_user_questions,priority:1"`
	Question         string    `json:"question"                     gorm:"type:text;not null"`
	ParentQuestionID *int64    `json:"parent_question_id,omitempty" gorm:"index"`
	AskedAt          time.Time `json:"asked_at"                     gorm:"not null;autoCreateTime;index:idx_user_questions,priority:2"`

	Parent *Question `json:"-" gorm:"foreignKey:ParentQuestionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Question.
func (Question) TableName() string { return "questions" }

// Answer is the single stored answer of a question.
type Answer struct {
	ID         int64     `json:"id"          gorm:"primaryKey;autoIncrement"`
	QuestionID int64     `json:"question_id" gorm:"not null;uniqueIndex:ux_answers_question"`
	Answer     string    `json:"answer"      gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at"`

	// Question is the answered question. Answers are cascade-deleted with it.
	Question Question `json:"-" gorm:"foreignKey:QuestionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Answer.
func (Answer) TableName() string { return "answers" }

// RecentQuestion is an entry of a user's bounded most-recently-asked list.
// (UserID, QuestionKey) is unique; asking again refreshes AskedAt and the
// displayed Question.
type RecentQuestion struct {
	ID       int64  `json:"id"       gorm:"primaryKey;autoIncrement"`
	UserID   string `json:"-"        gorm:"type:varchar(64);not null;uniqueIndex:ux_recent_user_question,priority:1;index:idx_recent_user_asked,priority:1"`
	Question string `json:"question" gorm:"type:text;not null"`
	// QuestionKey is the lowercased, trimmed Question; re-asks differing only
	// in case or surrounding space share it.
	QuestionKey string    `json:"-"        gorm:"type:text;not null;uniqueIndex:ux_recent_user_question,priority:2"`
	AskedAt     time.Time `json:"asked_at" gorm:"not null;index:idx_recent_user_asked,priority:2"`
}

// TableName returns the database table name for RecentQuestion.
func (RecentQuestion) TableName() string { return "recent_questions" }

// SavedAnswer bookmarks a conversation for a user. QuestionID always refers
// to the conversation root, so saving any follow-up saves the whole thread.
type SavedAnswer struct {
	ID         int64                       `json:"id"          gorm:"primaryKey;autoIncrement"`
	UserID     string                      `json:"-"           gorm:"type:varchar(64);not null;uniqueIndex:ux_saved_user_question,priority:1"`
	QuestionID int64                       `json:"question_id" gorm:"not null;uniqueIndex:ux_saved_user_question,priority:2"`
	Tags       datatypes.JSONSlice[string] `json:"tags"`
	SavedAt    time.Time                   `json:"saved_at"    gorm:"not null;index"`

	Question Question `json:"-" gorm:"foreignKey:QuestionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for SavedAnswer.
func (SavedAnswer) TableName() string { return "saved_answers" }
