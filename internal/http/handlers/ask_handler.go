// Ask HTTP handlers.
//
// This file exposes the blocking ask endpoints:
//   - POST /ask            (standalone question)
//   - POST /ask/followup   (question continuing an existing conversation)
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// result exists for (user, route, key), the handler returns the recorded
// exchange and sets `Idempotency-Replayed: true` without calling the provider.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/http/middleware"
	"github.com/tbourn/go-qa-backend/internal/services"
)

// maxTranscriptTurns bounds the prior-turn transcript accepted per request.
const maxTranscriptTurns = 100

//
// DTOs
//

// AskRequest is the JSON payload for a standalone question.
type AskRequest struct {
	// Question is the user's question (1–1000 characters after trimming).
	Question string `json:"question" binding:"required" example:"What does the Bible say about love?"`
	// RecordRecent adds the question to the recent list when answered in-domain. Defaults to true.
	RecordRecent *bool `json:"record_recent,omitempty" example:"true"`
}

// FollowupRequest is the JSON payload for a follow-up question.
type FollowupRequest struct {
	// Question is the follow-up question.
	Question string `json:"question" binding:"required" example:"Where is that written?"`
	// ParentQuestionID is the question this one follows.
	ParentQuestionID int64 `json:"parent_question_id" binding:"required,min=1" example:"42"`
	// ConversationHistory is the prior-turn transcript, oldest first.
	ConversationHistory []domain.Turn `json:"conversation_history"`
	// RecordRecent adds the question to the recent list when answered in-domain. Defaults to false.
	RecordRecent *bool `json:"record_recent,omitempty" example:"false"`
}

// AskResponse is the result of a blocking ask.
type AskResponse struct {
	Answer     string `json:"answer" example:"God is love (1 John 4:8)."`
	QuestionID int64  `json:"question_id" example:"42"`
	IsInDomain bool   `json:"is_in_domain" example:"true"`
}

func toAskResponse(r *services.AskResult) AskResponse {
	return AskResponse{Answer: r.Answer, QuestionID: r.QuestionID, IsInDomain: r.IsInDomain}
}

//
// Helpers
//

// boolOr dereferences p, falling back to def when nil.
func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// idempotencyKey returns the key validated by middleware, or the raw header
// when the middleware is not mounted.
func idempotencyKey(c *gin.Context) string {
	if k, ok := middleware.GetIdempotencyKey(c); ok {
		return k
	}
	return strings.TrimSpace(c.GetHeader(middleware.HeaderIdempotencyKey))
}

// bindFollowup parses and validates a follow-up payload, writing a 400 on
// failure.
func bindFollowup(c *gin.Context) (FollowupRequest, bool) {
	var req FollowupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "question and parent_question_id required")
		return req, false
	}
	if len(req.ConversationHistory) > maxTranscriptTurns {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "conversation_history too long")
		return req, false
	}
	return req, true
}

//
// Handlers
//

// Ask godoc
// @ID          ask
// @Summary     Ask a question
// @Description Answers a question from the cache or the answer provider, classifies it, and stores the exchange.
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Ask
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.AskRequest  true  "Question payload"
//
// @Success     200  {object}  handlers.AskResponse    "Answer"
// @Header      200  {string}  Idempotency-Replayed    "true when the response was replayed"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     502  {object}  handlers.ErrorResponse  "Answer provider failed"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /ask [post]
func (h *Handlers) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "question required")
		return
	}
	h.answer(c, services.AskRequest{
		UserID:       userID(c),
		Question:     req.Question,
		RecordRecent: boolOr(req.RecordRecent, true),
	})
}

// AskFollowup godoc
// @ID          askFollowup
// @Summary     Ask a follow-up question
// @Description Answers a question in the context of a prior-turn transcript and links it to its parent question.
// @Tags        Ask
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"
// @Param       body             body    handlers.FollowupRequest  true  "Follow-up payload"
//
// @Success     200  {object}  handlers.AskResponse    "Answer"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Parent question not found"
// @Failure     502  {object}  handlers.ErrorResponse  "Answer provider failed"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /ask/followup [post]
func (h *Handlers) AskFollowup(c *gin.Context) {
	req, valid := bindFollowup(c)
	if !valid {
		return
	}
	parent := req.ParentQuestionID
	h.answer(c, services.AskRequest{
		UserID:       userID(c),
		Question:     req.Question,
		ParentID:     &parent,
		Transcript:   req.ConversationHistory,
		RecordRecent: boolOr(req.RecordRecent, false),
	})
}

// answer runs a blocking ask with idempotent replay.
func (h *Handlers) answer(c *gin.Context, req services.AskRequest) {
	ctx := c.Request.Context()
	scope := c.FullPath()
	key := idempotencyKey(c)

	// Idempotency (replay path).
	if key != "" && h.idem != nil {
		if prev, found := h.idem.Replay(ctx, req.UserID, scope, key); found {
			c.Header("Idempotency-Replayed", "true")
			ok(c, http.StatusOK, toAskResponse(prev))
			return
		}
	}

	res, err := h.questions.Do(ctx, req)
	if err != nil {
		askFailed(c, err, h.maxRunes)
		return
	}

	// Idempotency (store path) – best effort.
	if key != "" && h.idem != nil {
		h.idem.Remember(ctx, req.UserID, scope, key, res)
	}
	if res.Cached {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	ok(c, http.StatusOK, toAskResponse(res))
}
