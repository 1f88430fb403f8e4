package handlers

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/services"
)

func TestSaveAnswer(t *testing.T) {
	saved := stubSaved{save: func(_ context.Context, u string, qid int64, tags []string) (*domain.SavedAnswerDetail, error) {
		switch qid {
		case 404:
			return nil, services.ErrQuestionNotFound
		case 400:
			return nil, services.ErrTooManyTags
		case 500:
			return nil, errors.New("db")
		}
		return &domain.SavedAnswerDetail{ID: 5, QuestionID: 1, Tags: tags}, nil
	}}
	r := newTestRouter(Services{Saved: saved})

	w := do(t, r, http.MethodPost, "/saved-answers", SaveAnswerRequest{QuestionID: 3, Tags: []string{"love"}}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	d := decode[domain.SavedAnswerDetail](t, w)
	if d.ID != 5 || d.QuestionID != 1 || !reflect.DeepEqual(d.Tags, []string{"love"}) {
		t.Fatalf("detail=%+v", d)
	}

	for qid, want := range map[int64]int{404: http.StatusNotFound, 400: http.StatusBadRequest, 500: http.StatusInternalServerError} {
		if w := do(t, r, http.MethodPost, "/saved-answers", SaveAnswerRequest{QuestionID: qid}, nil); w.Code != want {
			t.Fatalf("qid %d: status=%d; want %d", qid, w.Code, want)
		}
	}
	if w := do(t, r, http.MethodPost, "/saved-answers", `{"tags":["x"]}`, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("missing question_id: status=%d", w.Code)
	}
}

func TestListSaved_FiltersAndETag(t *testing.T) {
	latest := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var gotQ, gotTag string
	var gotLimit int
	saved := stubSaved{
		stats: func(context.Context, string) (int64, *time.Time, error) { return 1, &latest, nil },
		search: func(_ context.Context, _ string, q, tag string, limit int) ([]domain.SavedAnswerDetail, error) {
			gotQ, gotTag, gotLimit = q, tag, limit
			return []domain.SavedAnswerDetail{{ID: 1}}, nil
		},
	}
	r := newTestRouter(Services{Saved: saved})

	w := do(t, r, http.MethodGet, "/saved-answers", nil, nil)
	if w.Code != http.StatusOK || gotLimit != services.DefaultSavedLimit {
		t.Fatalf("status=%d limit=%d", w.Code, gotLimit)
	}
	if decode[SavedAnswersResponse](t, w).Total != 1 {
		t.Fatalf("body=%s", w.Body.String())
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag on unfiltered list")
	}
	if w := do(t, r, http.MethodGet, "/saved-answers", nil, map[string]string{"If-None-Match": etag}); w.Code != http.StatusNotModified {
		t.Fatalf("status=%d; want 304", w.Code)
	}

	w = do(t, r, http.MethodGet, "/saved-answers?q=love&tag=Gospels&limit=3", nil, map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusOK {
		t.Fatalf("filtered: status=%d", w.Code)
	}
	if w.Header().Get("ETag") != "" {
		t.Fatalf("filtered list should not carry an ETag")
	}
	if gotQ != "love" || gotTag != "Gospels" || gotLimit != 3 {
		t.Fatalf("filters q=%q tag=%q limit=%d", gotQ, gotTag, gotLimit)
	}
}

func TestSavedTagsAndDelete(t *testing.T) {
	saved := stubSaved{
		tags: func(context.Context, string) ([]string, error) { return []string{"faith", "love"}, nil },
		del: func(_ context.Context, _ string, id int64) error {
			if id == 2 {
				return services.ErrSavedAnswerNotFound
			}
			return nil
		},
	}
	r := newTestRouter(Services{Saved: saved})

	w := do(t, r, http.MethodGet, "/saved-answers/tags", nil, nil)
	if w.Code != http.StatusOK || !reflect.DeepEqual(decode[TagsResponse](t, w).Tags, []string{"faith", "love"}) {
		t.Fatalf("tags: status=%d body=%s", w.Code, w.Body.String())
	}
	if w := do(t, r, http.MethodDelete, "/saved-answers/1", nil, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete: status=%d", w.Code)
	}
	if w := do(t, r, http.MethodDelete, "/saved-answers/2", nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("delete missing: status=%d", w.Code)
	}
	if w := do(t, r, http.MethodDelete, "/saved-answers/-1", nil, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("delete bad id: status=%d", w.Code)
	}
}

func TestSavedTags_EmptyIsArray(t *testing.T) {
	r := newTestRouter(Services{})
	w := do(t, r, http.MethodGet, "/saved-answers/tags", nil, nil)
	if w.Body.String() != `{"tags":[]}` {
		t.Fatalf("body=%s", w.Body.String())
	}
}
