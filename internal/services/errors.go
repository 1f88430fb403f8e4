// Package services defines the business logic for asking questions, browsing
// conversation threads, and managing recent and saved answers.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// Question-related errors.
var (
	// ErrEmptyQuestion is returned when the question text is blank after
	// normalization.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrQuestionTooLong is returned when the question exceeds the configured
	// maximum rune count.
	ErrQuestionTooLong = errors.New("question too long")

	// ErrParentNotFound is returned by follow-up operations whose parent
	// question does not exist.
	ErrParentNotFound = errors.New("parent question not found")

	// ErrQuestionNotFound indicates that the requested question does not exist.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrProviderFailed wraps every failure of the answer provider. Nothing is
	// persisted for a call that fails this way.
	ErrProviderFailed = errors.New("answer provider failed")
)

// Recent and saved answer errors.
var (
	// ErrRecentNotFound indicates that a recent-question entry does not exist
	// or belongs to another user.
	ErrRecentNotFound = errors.New("recent question not found")

	// ErrSavedAnswerNotFound indicates that a saved answer does not exist or
	// belongs to another user.
	ErrSavedAnswerNotFound = errors.New("saved answer not found")

	// ErrTooManyTags is returned when a save request carries more tags than
	// allowed.
	ErrTooManyTags = errors.New("too many tags")
)
