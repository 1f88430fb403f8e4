// Streaming ask HTTP handlers.
//
// This file exposes the Server-Sent Events variants of the ask endpoints:
//   - POST /ask/stream
//   - POST /ask/followup/stream
//
// Wire format: each event is written as `event: <type>` followed by
// `data: <json>`. Types are cached, content, done and error. A stream is
// finite; clients that disconnect must re-issue the request.
//
// Validation failures are reported as ordinary JSON errors because no event
// has been written yet. Once the first event is flushed, failures can only be
// signalled in-band through an error event.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/http/middleware"
	"github.com/tbourn/go-qa-backend/internal/services"
)

//
// Event payloads
//

// CachedEvent is the data of a `cached` event.
type CachedEvent struct {
	Answer     string `json:"answer"`
	QuestionID int64  `json:"question_id"`
	IsInDomain bool   `json:"is_in_domain"`
}

// ContentEvent is the data of a `content` event.
type ContentEvent struct {
	Text string `json:"text"`
}

// DoneEvent is the data of a `done` event.
type DoneEvent struct {
	QuestionID int64 `json:"question_id"`
	IsInDomain bool  `json:"is_in_domain"`
}

// ErrorEvent is the data of an `error` event.
type ErrorEvent struct {
	Message string `json:"message"`
}

// eventData selects the wire payload for ev.
func eventData(ev services.StreamEvent) any {
	switch ev.Type {
	case services.EventCached:
		return CachedEvent{Answer: ev.Answer, QuestionID: ev.QuestionID, IsInDomain: ev.IsInDomain}
	case services.EventContent:
		return ContentEvent{Text: ev.Text}
	case services.EventDone:
		return DoneEvent{QuestionID: ev.QuestionID, IsInDomain: ev.IsInDomain}
	default:
		return ErrorEvent{Message: ev.Message}
	}
}

//
// Handlers
//

// AskStream godoc
// @ID          askStream
// @Summary     Ask a question (streaming)
// @Description Streams the answer as Server-Sent Events: one `cached` event on a cache hit, otherwise `content` fragments followed by `done`, or `error`.
// @Tags        Ask
// @Accept      json
// @Produce     text/event-stream
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.AskRequest  true  "Question payload"
//
// @Success     200  {string}  string                 "Event stream"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Router      /ask/stream [post]
func (h *Handlers) AskStream(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "question required")
		return
	}
	h.stream(c, services.AskRequest{
		UserID:       userID(c),
		Question:     req.Question,
		RecordRecent: boolOr(req.RecordRecent, true),
	})
}

// AskFollowupStream godoc
// @ID          askFollowupStream
// @Summary     Ask a follow-up question (streaming)
// @Description Streaming variant of the follow-up endpoint; see askStream for the event contract.
// @Tags        Ask
// @Accept      json
// @Produce     text/event-stream
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.FollowupRequest  true  "Follow-up payload"
//
// @Success     200  {string}  string                 "Event stream"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Parent question not found"
// @Router      /ask/followup/stream [post]
func (h *Handlers) AskFollowupStream(c *gin.Context) {
	req, valid := bindFollowup(c)
	if !valid {
		return
	}
	parent := req.ParentQuestionID
	h.stream(c, services.AskRequest{
		UserID:       userID(c),
		Question:     req.Question,
		ParentID:     &parent,
		Transcript:   req.ConversationHistory,
		RecordRecent: boolOr(req.RecordRecent, false),
	})
}

// stream runs a streaming ask, writing each event as soon as it is produced.
// Response headers are committed lazily on the first event.
func (h *Handlers) stream(c *gin.Context, req services.AskRequest) {
	ctx := c.Request.Context()
	started := false

	emit := func(ev services.StreamEvent) error {
		if !started {
			started = true
			hdr := c.Writer.Header()
			hdr.Set("Content-Type", "text/event-stream")
			hdr.Set("Cache-Control", "no-cache")
			hdr.Set("Connection", "keep-alive")
			hdr.Set("X-Accel-Buffering", "no")
			c.Status(http.StatusOK)
		}
		c.SSEvent(ev.Type, eventData(ev))
		c.Writer.Flush()
		return ctx.Err()
	}

	err := h.questions.Stream(ctx, req, emit)
	if err == nil {
		return
	}
	if !started {
		askFailed(c, err, h.maxRunes)
		return
	}
	middleware.LoggerFrom(c).Warn().Err(err).Str("user_id", req.UserID).Msg("stream ended with error")
}
