package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/services"
)

// ---------- service stubs ----------

type stubQuestions struct {
	do     func(context.Context, services.AskRequest) (*services.AskResult, error)
	stream func(context.Context, services.AskRequest, services.EmitFunc) error

	last services.AskRequest
	n    int
}

func (s *stubQuestions) Do(ctx context.Context, req services.AskRequest) (*services.AskResult, error) {
	s.last, s.n = req, s.n+1
	if s.do != nil {
		return s.do(ctx, req)
	}
	return &services.AskResult{Answer: "answer", QuestionID: 1, IsInDomain: true}, nil
}

func (s *stubQuestions) Stream(ctx context.Context, req services.AskRequest, emit services.EmitFunc) error {
	s.last, s.n = req, s.n+1
	if s.stream != nil {
		return s.stream(ctx, req, emit)
	}
	return emit(services.StreamEvent{Type: services.EventCached, Answer: "answer", QuestionID: 1, IsInDomain: true})
}

type stubConversations struct {
	history func(context.Context, string, int) ([]domain.HistoryItem, error)
	stats   func(context.Context, string) (int64, *time.Time, error)
	thread  func(context.Context, string, int64) (*domain.ConversationThread, error)
}

func (s stubConversations) History(ctx context.Context, u string, limit int) ([]domain.HistoryItem, error) {
	if s.history != nil {
		return s.history(ctx, u, limit)
	}
	return nil, nil
}

func (s stubConversations) HistoryStats(ctx context.Context, u string) (int64, *time.Time, error) {
	if s.stats != nil {
		return s.stats(ctx, u)
	}
	return 0, nil, nil
}

func (s stubConversations) Thread(ctx context.Context, u string, id int64) (*domain.ConversationThread, error) {
	if s.thread != nil {
		return s.thread(ctx, u, id)
	}
	return &domain.ConversationThread{RootQuestionID: id}, nil
}

type stubRecent struct {
	list  func(context.Context, string, int) ([]domain.RecentQuestion, error)
	add   func(context.Context, string, string) ([]domain.RecentQuestion, error)
	del   func(context.Context, string, int64) error
	clear func(context.Context, string) (int64, error)
}

func (s stubRecent) List(ctx context.Context, u string, limit int) ([]domain.RecentQuestion, error) {
	if s.list != nil {
		return s.list(ctx, u, limit)
	}
	return nil, nil
}

func (s stubRecent) Add(ctx context.Context, u, q string) ([]domain.RecentQuestion, error) {
	if s.add != nil {
		return s.add(ctx, u, q)
	}
	return []domain.RecentQuestion{{ID: 1, Question: q}}, nil
}

func (s stubRecent) Delete(ctx context.Context, u string, id int64) error {
	if s.del != nil {
		return s.del(ctx, u, id)
	}
	return nil
}

func (s stubRecent) Clear(ctx context.Context, u string) (int64, error) {
	if s.clear != nil {
		return s.clear(ctx, u)
	}
	return 0, nil
}

type stubSaved struct {
	save   func(context.Context, string, int64, []string) (*domain.SavedAnswerDetail, error)
	search func(context.Context, string, string, string, int) ([]domain.SavedAnswerDetail, error)
	tags   func(context.Context, string) ([]string, error)
	del    func(context.Context, string, int64) error
	stats  func(context.Context, string) (int64, *time.Time, error)
}

func (s stubSaved) Save(ctx context.Context, u string, qid int64, tags []string) (*domain.SavedAnswerDetail, error) {
	if s.save != nil {
		return s.save(ctx, u, qid, tags)
	}
	return &domain.SavedAnswerDetail{ID: 1, QuestionID: qid, Tags: tags}, nil
}

func (s stubSaved) Search(ctx context.Context, u, q, tag string, limit int) ([]domain.SavedAnswerDetail, error) {
	if s.search != nil {
		return s.search(ctx, u, q, tag, limit)
	}
	return nil, nil
}

func (s stubSaved) Tags(ctx context.Context, u string) ([]string, error) {
	if s.tags != nil {
		return s.tags(ctx, u)
	}
	return nil, nil
}

func (s stubSaved) Delete(ctx context.Context, u string, id int64) error {
	if s.del != nil {
		return s.del(ctx, u, id)
	}
	return nil
}

func (s stubSaved) Stats(ctx context.Context, u string) (int64, *time.Time, error) {
	if s.stats != nil {
		return s.stats(ctx, u)
	}
	return 0, nil, nil
}

// memIdem keeps replay records in memory.
type memIdem struct {
	recs map[string]services.AskResult
}

func (m *memIdem) Replay(_ context.Context, u, scope, key string) (*services.AskResult, bool) {
	r, ok := m.recs[u+"|"+scope+"|"+key]
	if !ok {
		return nil, false
	}
	return &r, true
}

func (m *memIdem) Remember(_ context.Context, u, scope, key string, res *services.AskResult) {
	if m.recs == nil {
		m.recs = map[string]services.AskResult{}
	}
	m.recs[u+"|"+scope+"|"+key] = *res
}

// ---------- router + request helpers ----------

// newTestRouter mounts every endpoint on a bare engine.
func newTestRouter(s Services) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if s.Questions == nil {
		s.Questions = &stubQuestions{}
	}
	if s.Conversations == nil {
		s.Conversations = stubConversations{}
	}
	if s.Recent == nil {
		s.Recent = stubRecent{}
	}
	if s.Saved == nil {
		s.Saved = stubSaved{}
	}
	h := New(s)

	r := gin.New()
	r.POST("/ask", h.Ask)
	r.POST("/ask/followup", h.AskFollowup)
	r.POST("/ask/stream", h.AskStream)
	r.POST("/ask/followup/stream", h.AskFollowupStream)
	r.GET("/history", h.History)
	r.GET("/questions/:id/thread", h.Thread)
	r.GET("/users/me/recent-questions", h.ListRecent)
	r.POST("/users/me/recent-questions", h.AddRecent)
	r.DELETE("/users/me/recent-questions", h.ClearRecent)
	r.DELETE("/users/me/recent-questions/:id", h.DeleteRecent)
	r.POST("/saved-answers", h.SaveAnswer)
	r.GET("/saved-answers", h.ListSaved)
	r.GET("/saved-answers/tags", h.SavedTags)
	r.DELETE("/saved-answers/:id", h.DeleteSaved)
	return r
}

// do performs a request; body may be nil, a string or a value to marshal.
func do(t *testing.T, r http.Handler, method, path string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("json: %v (body=%s)", err, w.Body.String())
	}
	return v
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[ErrorResponse](t, w).Code
}
