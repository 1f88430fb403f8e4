package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/services"
)

func TestRecent_ListAddDeleteClear(t *testing.T) {
	var added string
	rec := stubRecent{
		list: func(_ context.Context, u string, limit int) ([]domain.RecentQuestion, error) {
			return []domain.RecentQuestion{{ID: 2, Question: "b"}, {ID: 1, Question: "a"}}, nil
		},
		add: func(_ context.Context, u, q string) ([]domain.RecentQuestion, error) {
			added = q
			return []domain.RecentQuestion{{ID: 3, Question: q}}, nil
		},
		del: func(_ context.Context, u string, id int64) error {
			if id == 99 {
				return services.ErrRecentNotFound
			}
			return nil
		},
		clear: func(context.Context, string) (int64, error) { return 4, nil },
	}
	r := newTestRouter(Services{Recent: rec})

	w := do(t, r, http.MethodGet, "/users/me/recent-questions", nil, nil)
	if w.Code != http.StatusOK || len(decode[RecentQuestionsResponse](t, w).Questions) != 2 {
		t.Fatalf("list: status=%d body=%s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPost, "/users/me/recent-questions", AddRecentRequest{Question: "Who wrote Psalms?"}, nil)
	if w.Code != http.StatusCreated || added != "Who wrote Psalms?" {
		t.Fatalf("add: status=%d added=%q", w.Code, added)
	}

	if w = do(t, r, http.MethodDelete, "/users/me/recent-questions/1", nil, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete: status=%d", w.Code)
	}
	if w = do(t, r, http.MethodDelete, "/users/me/recent-questions/99", nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("delete missing: status=%d", w.Code)
	}
	if w = do(t, r, http.MethodDelete, "/users/me/recent-questions/x", nil, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("delete bad id: status=%d", w.Code)
	}

	w = do(t, r, http.MethodDelete, "/users/me/recent-questions", nil, nil)
	if w.Code != http.StatusOK || decode[ClearRecentResponse](t, w).Deleted != 4 {
		t.Fatalf("clear: status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestRecent_AddValidation(t *testing.T) {
	rec := stubRecent{add: func(_ context.Context, _ string, q string) ([]domain.RecentQuestion, error) {
		if q == "boom" {
			return nil, errors.New("db")
		}
		return nil, services.ErrEmptyQuestion
	}}
	r := newTestRouter(Services{Recent: rec})

	if w := do(t, r, http.MethodPost, "/users/me/recent-questions", `{}`, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("missing: status=%d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/users/me/recent-questions", AddRecentRequest{Question: "   "}, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("blank: status=%d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/users/me/recent-questions", AddRecentRequest{Question: "boom"}, nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("db: status=%d", w.Code)
	}
}

func TestRecent_EmptyListIsArray(t *testing.T) {
	r := newTestRouter(Services{})
	w := do(t, r, http.MethodGet, "/users/me/recent-questions", nil, nil)
	if w.Body.String() != `{"questions":[]}` {
		t.Fatalf("body=%s", w.Body.String())
	}
}
