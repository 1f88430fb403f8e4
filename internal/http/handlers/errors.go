// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable: clients branch on them, while the
// accompanying message is for humans. Generic codes mirror HTTP status
// semantics; domain codes name failures that status alone cannot convey.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "answer_failed",
//	  "message": "failed to generate an answer"
//	}
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/services"
)

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeAnswerFailed     = "answer_failed"
	ErrCodeSaveFailed       = "save_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeDeleteFailed     = "delete_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// statusClientClosed is logged (never sent) when the client went away.
const statusClientClosed = 499

// askFailed maps ask pipeline errors to responses.
func askFailed(c *gin.Context, err error, maxRunes int) {
	switch {
	case errors.Is(err, services.ErrEmptyQuestion):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "question required")
	case errors.Is(err, services.ErrQuestionTooLong):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("question too long: max %d characters", maxRunes))
	case errors.Is(err, services.ErrParentNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "parent question not found")
	case errors.Is(err, services.ErrProviderFailed):
		fail(c, http.StatusBadGateway, ErrCodeAnswerFailed, "failed to generate an answer")
	case errors.Is(err, context.Canceled):
		c.Abort()
		c.Status(statusClientClosed)
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to process question")
	}
}
