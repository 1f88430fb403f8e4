package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/services"
)

func TestHistory_OK_ETag304(t *testing.T) {
	latest := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var gotLimit int
	conv := stubConversations{
		stats: func(context.Context, string) (int64, *time.Time, error) { return 2, &latest, nil },
		history: func(_ context.Context, u string, limit int) ([]domain.HistoryItem, error) {
			gotLimit = limit
			return []domain.HistoryItem{
				{ID: 2, Question: "b", Answer: "B"},
				{ID: 1, Question: "a", Answer: "A"},
			}, nil
		},
	}
	r := newTestRouter(Services{Conversations: conv})
	hdr := map[string]string{"X-User-ID": "u1"}

	w := do(t, r, http.MethodGet, "/history?limit=5", nil, hdr)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if gotLimit != 5 {
		t.Fatalf("limit=%d", gotLimit)
	}
	body := decode[HistoryResponse](t, w)
	if body.Total != 2 || body.Questions[0].ID != 2 {
		t.Fatalf("body=%+v", body)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}

	hdr["If-None-Match"] = etag
	w = do(t, r, http.MethodGet, "/history?limit=5", nil, hdr)
	if w.Code != http.StatusNotModified {
		t.Fatalf("status=%d; want 304", w.Code)
	}

	// a different limit is a different representation
	w = do(t, r, http.MethodGet, "/history?limit=6", nil, hdr)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d; want 200", w.Code)
	}
}

func TestHistory_EmptyAndDefaults(t *testing.T) {
	var gotLimit int
	conv := stubConversations{history: func(_ context.Context, _ string, limit int) ([]domain.HistoryItem, error) {
		gotLimit = limit
		return nil, nil
	}}
	r := newTestRouter(Services{Conversations: conv})

	w := do(t, r, http.MethodGet, "/history", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if gotLimit != services.DefaultHistoryLimit {
		t.Fatalf("limit=%d", gotLimit)
	}
	if w.Body.String() != `{"questions":[],"total":0}` {
		t.Fatalf("body=%s", w.Body.String())
	}
}

func TestHistory_Error500(t *testing.T) {
	conv := stubConversations{history: func(context.Context, string, int) ([]domain.HistoryItem, error) {
		return nil, errors.New("db")
	}}
	r := newTestRouter(Services{Conversations: conv})
	w := do(t, r, http.MethodGet, "/history", nil, nil)
	if w.Code != http.StatusInternalServerError || errCode(t, w) != ErrCodeListFailed {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestThread(t *testing.T) {
	conv := stubConversations{thread: func(_ context.Context, u string, id int64) (*domain.ConversationThread, error) {
		if id == 404 {
			return nil, services.ErrQuestionNotFound
		}
		if id == 500 {
			return nil, errors.New("db")
		}
		return &domain.ConversationThread{RootQuestionID: 1, Entries: []domain.ThreadEntry{
			{QuestionID: 1, Question: "root", Depth: 0},
			{QuestionID: id, Question: "child", Depth: 1},
		}}, nil
	}}
	r := newTestRouter(Services{Conversations: conv})

	w := do(t, r, http.MethodGet, "/questions/3/thread", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	th := decode[domain.ConversationThread](t, w)
	if th.RootQuestionID != 1 || len(th.Entries) != 2 || th.Entries[1].QuestionID != 3 {
		t.Fatalf("thread=%+v", th)
	}

	for path, want := range map[string]int{
		"/questions/abc/thread": http.StatusBadRequest,
		"/questions/0/thread":   http.StatusBadRequest,
		"/questions/404/thread": http.StatusNotFound,
		"/questions/500/thread": http.StatusInternalServerError,
	} {
		if w := do(t, r, http.MethodGet, path, nil, nil); w.Code != want {
			t.Fatalf("%s: status=%d; want %d", path, w.Code, want)
		}
	}
}
