// Saved-answer HTTP handlers.
//
// Routes:
//   - POST   /saved-answers            (save a conversation, upsert)
//   - GET    /saved-answers            (list or search; ?q=&tag=&limit=)
//   - GET    /saved-answers/tags       (distinct tags)
//   - DELETE /saved-answers/{id}
//
// ETag/304 applies to the unfiltered list only; filtered results depend on
// thread content that the count/timestamp validator does not cover.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/services"
	"github.com/tbourn/go-qa-backend/internal/utils"
)

// SaveAnswerRequest is the payload for saving an answer.
type SaveAnswerRequest struct {
	QuestionID int64    `json:"question_id" binding:"required,min=1" example:"42"`
	Tags       []string `json:"tags" example:"love,gospels"`
}

// SavedAnswersResponse wraps a list of saved answers.
type SavedAnswersResponse struct {
	SavedAnswers []domain.SavedAnswerDetail `json:"saved_answers"`
	Total        int                        `json:"total"`
}

// TagsResponse lists a user's tags.
type TagsResponse struct {
	Tags []string `json:"tags"`
}

// SaveAnswer godoc
// @ID          saveAnswer
// @Summary     Save an answer
// @Description Bookmarks the conversation containing question_id. Saving again replaces the tags.
// @Tags        Saved
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.SaveAnswerRequest  true  "Save payload"
// @Success     201  {object} domain.SavedAnswerDetail
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Question not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /saved-answers [post]
func (h *Handlers) SaveAnswer(c *gin.Context) {
	var req SaveAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "question_id required")
		return
	}
	d, err := h.saved.Save(c.Request.Context(), userID(c), req.QuestionID, req.Tags)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTooManyTags):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "too many tags")
		case errors.Is(err, services.ErrQuestionNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "question not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeSaveFailed, "failed to save answer")
		}
		return
	}
	ok(c, http.StatusCreated, d)
}

// ListSaved godoc
// @ID          listSavedAnswers
// @Summary     List or search saved answers
// @Description Without filters, lists saved answers newest first and supports weak ETag. `tag` takes precedence over `q`.
// @Tags        Saved
// @Produce     json
// @Param       X-User-ID      header  string  false "User ID (demo header)"  example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       q              query   string  false "Case-insensitive text filter"
// @Param       tag            query   string  false "Tag filter"
// @Param       limit          query   int     false "Maximum items"  minimum(1) maximum(500) default(100)
// @Success     200  {object} handlers.SavedAnswersResponse
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /saved-answers [get]
func (h *Handlers) ListSaved(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	query := strings.TrimSpace(c.Query("q"))
	tag := strings.TrimSpace(c.Query("tag"))
	limit := utils.AtoiDefault(c.Query("limit"), services.DefaultSavedLimit)

	if query == "" && tag == "" {
		if count, latest, err := h.saved.Stats(ctx, uid); err == nil {
			if notModified(c, weakETag("saved", uid, count, latest, limit)) {
				return
			}
		}
	}

	items, err := h.saved.Search(ctx, uid, query, tag, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "failed to list saved answers")
		return
	}
	if items == nil {
		items = []domain.SavedAnswerDetail{}
	}
	ok(c, http.StatusOK, SavedAnswersResponse{SavedAnswers: items, Total: len(items)})
}

// SavedTags godoc
// @ID          savedAnswerTags
// @Summary     List saved-answer tags
// @Tags        Saved
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Success     200  {object} handlers.TagsResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /saved-answers/tags [get]
func (h *Handlers) SavedTags(c *gin.Context) {
	tags, err := h.saved.Tags(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "failed to list tags")
		return
	}
	if tags == nil {
		tags = []string{}
	}
	ok(c, http.StatusOK, TagsResponse{Tags: tags})
}

// DeleteSaved godoc
// @ID          deleteSavedAnswer
// @Summary     Delete a saved answer
// @Tags        Saved
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    int     true  "Saved answer ID"        minimum(1)
// @Success     204  "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /saved-answers/{id} [delete]
func (h *Handlers) DeleteSaved(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer")
		return
	}
	if err := h.saved.Delete(c.Request.Context(), userID(c), id); err != nil {
		if errors.Is(err, services.ErrSavedAnswerNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "saved answer not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, "failed to delete saved answer")
		return
	}
	noContent(c)
}
