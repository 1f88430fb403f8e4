// Conversation HTTP handlers.
//
// This file exposes read endpoints over persisted exchanges:
//   - GET /history                  (most recent exchanges, ETag support)
//   - GET /questions/{id}/thread    (whole conversation containing a question)
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/services"
	"github.com/tbourn/go-qa-backend/internal/utils"
)

// HistoryResponse lists a user's exchanges, newest first.
type HistoryResponse struct {
	Questions []domain.HistoryItem `json:"questions"`
	Total     int                  `json:"total"`
}

// History godoc
// @ID          history
// @Summary     List question history
// @Description Returns the user's exchanges, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Conversations
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (demo header)"       example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       limit          query   int     false "Maximum items"               minimum(1) maximum(100) default(10)
//
// @Success     200  {object} handlers.HistoryResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /history [get]
func (h *Handlers) History(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	limit := utils.AtoiDefault(c.Query("limit"), services.DefaultHistoryLimit)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.conversations.HistoryStats(ctx, uid); err == nil {
		if notModified(c, weakETag("history", uid, count, maxTS, limit)) {
			return
		}
	}

	items, err := h.conversations.History(ctx, uid, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "failed to load history")
		return
	}
	if items == nil {
		items = []domain.HistoryItem{}
	}
	ok(c, http.StatusOK, HistoryResponse{Questions: items, Total: len(items)})
}

// Thread godoc
// @ID          questionThread
// @Summary     Get a conversation thread
// @Description Resolves the root of the given question and returns the root with every follow-up, ordered by depth then time.
// @Tags        Conversations
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    int     true  "Question ID"            minimum(1)
//
// @Success     200  {object} domain.ConversationThread
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Question not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /questions/{id}/thread [get]
func (h *Handlers) Thread(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "question id must be a positive integer")
		return
	}
	th, err := h.conversations.Thread(c.Request.Context(), userID(c), id)
	if err != nil {
		if errors.Is(err, services.ErrQuestionNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "question not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to load thread")
		return
	}
	ok(c, http.StatusOK, th)
}

// weakETag builds a weak validator from a collection's size and newest
// timestamp, qualified by the request variant.
func weakETag(kind, uid string, count int64, latest *time.Time, variant any) string {
	var ts int64
	if latest != nil {
		ts = latest.UnixNano()
	}
	return fmt.Sprintf(`W/"%s:%s:%d:%d:%v"`, kind, uid, count, ts, variant)
}
