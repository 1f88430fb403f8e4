package domain

import "time"

// Idempotency records the outcome of a completed ask, keyed by
// (user_id, scope, key). A retry carrying the same Idempotency-Key replays the
// stored exchange instead of asking again.
//
// Scope names the endpoint the key was used on ("ask" or "ask/followup:<parent>")
// so the same key cannot be reused across different operations.
type Idempotency struct {
	ID         string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID     string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_scope_key,priority:1"`
	Scope      string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_scope_key,priority:2"`
	Key        string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_scope_key,priority:3"`
	QuestionID int64     `gorm:"not null"`
	IsInDomain bool      `gorm:"not null"`
	Status     int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt  time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
