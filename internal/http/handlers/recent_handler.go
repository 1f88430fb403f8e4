// Recent-question HTTP handlers.
//
// Routes:
//   - GET    /users/me/recent-questions
//   - POST   /users/me/recent-questions
//   - DELETE /users/me/recent-questions
//   - DELETE /users/me/recent-questions/{id}
//
// The list is bounded per user; adding an existing question only moves it to
// the front.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/services"
	"github.com/tbourn/go-qa-backend/internal/utils"
)

// RecentQuestionsResponse wraps the recent list.
type RecentQuestionsResponse struct {
	Questions []domain.RecentQuestion `json:"questions"`
}

// AddRecentRequest is the payload for an explicit add.
type AddRecentRequest struct {
	Question string `json:"question" binding:"required" example:"Who wrote the Psalms?"`
}

// ClearRecentResponse reports how many entries were removed.
type ClearRecentResponse struct {
	Deleted int64 `json:"deleted" example:"4"`
}

func recentResponse(items []domain.RecentQuestion) RecentQuestionsResponse {
	if items == nil {
		items = []domain.RecentQuestion{}
	}
	return RecentQuestionsResponse{Questions: items}
}

// ListRecent godoc
// @ID          listRecentQuestions
// @Summary     List recent questions
// @Tags        Recent
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       limit      query   int     false "Maximum items"          minimum(1)
// @Success     200  {object} handlers.RecentQuestionsResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/me/recent-questions [get]
func (h *Handlers) ListRecent(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), 0)
	items, err := h.recent.List(c.Request.Context(), userID(c), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "failed to list recent questions")
		return
	}
	ok(c, http.StatusOK, recentResponse(items))
}

// AddRecent godoc
// @ID          addRecentQuestion
// @Summary     Add a recent question
// @Description Records a question in the recent list and returns the updated list.
// @Tags        Recent
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.AddRecentRequest  true  "Question"
// @Success     201  {object} handlers.RecentQuestionsResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/me/recent-questions [post]
func (h *Handlers) AddRecent(c *gin.Context) {
	var req AddRecentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "question required")
		return
	}
	items, err := h.recent.Add(c.Request.Context(), userID(c), req.Question)
	if err != nil {
		if errors.Is(err, services.ErrEmptyQuestion) || errors.Is(err, services.ErrQuestionTooLong) {
			askFailed(c, err, h.maxRunes)
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeSaveFailed, "failed to record question")
		return
	}
	ok(c, http.StatusCreated, recentResponse(items))
}

// DeleteRecent godoc
// @ID          deleteRecentQuestion
// @Summary     Delete a recent question
// @Tags        Recent
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    int     true  "Recent question ID"     minimum(1)
// @Success     204  "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/me/recent-questions/{id} [delete]
func (h *Handlers) DeleteRecent(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer")
		return
	}
	if err := h.recent.Delete(c.Request.Context(), userID(c), id); err != nil {
		if errors.Is(err, services.ErrRecentNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "recent question not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, "failed to delete recent question")
		return
	}
	noContent(c)
}

// ClearRecent godoc
// @ID          clearRecentQuestions
// @Summary     Clear recent questions
// @Tags        Recent
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Success     200  {object} handlers.ClearRecentResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/me/recent-questions [delete]
func (h *Handlers) ClearRecent(c *gin.Context) {
	n, err := h.recent.Clear(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, "failed to clear recent questions")
		return
	}
	ok(c, http.StatusOK, ClearRecentResponse{Deleted: n})
}
