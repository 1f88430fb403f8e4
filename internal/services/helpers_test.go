package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-qa-backend/internal/cache"
	"github.com/tbourn/go-qa-backend/internal/classifier"
	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/provider"
	"github.com/tbourn/go-qa-backend/internal/repo"
)

const testRefusal = "Please ask a Bible-related question."

// ---------- database ----------

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

// ---------- provider ----------

// stubProvider answers every question with answer. Streams split answer into
// chunks; failAt >= 0 makes the stream fail before chunk failAt.
type stubProvider struct {
	mu         sync.Mutex
	answer     string
	chunks     []string
	err        error
	failAt     int
	calls      int
	questions  []string
	transcript []domain.Turn
}

func newStub(answer string) *stubProvider {
	return &stubProvider{answer: answer, failAt: -1}
}

func (p *stubProvider) record(q string, tr []domain.Turn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.questions = append(p.questions, q)
	p.transcript = tr
}

func (p *stubProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *stubProvider) Answer(_ context.Context, q string, tr []domain.Turn) (string, error) {
	p.record(q, tr)
	if p.err != nil {
		return "", p.err
	}
	return p.answer, nil
}

func (p *stubProvider) Stream(_ context.Context, q string, tr []domain.Turn) (provider.Stream, error) {
	p.record(q, tr)
	if p.err != nil && p.failAt < 0 {
		return nil, p.err
	}
	chunks := p.chunks
	if chunks == nil {
		chunks = strings.SplitAfter(p.answer, " ")
	}
	return &stubStream{chunks: chunks, failAt: p.failAt, err: p.err}, nil
}

type stubStream struct {
	chunks []string
	pos    int
	failAt int
	err    error
	closed bool
}

func (s *stubStream) Recv() (provider.Chunk, error) {
	if s.failAt >= 0 && s.pos == s.failAt {
		return provider.Chunk{}, s.err
	}
	if s.pos >= len(s.chunks) {
		return provider.Chunk{}, io.EOF
	}
	c := s.chunks[s.pos]
	s.pos++
	return provider.Chunk{Type: provider.ChunkContent, Text: c}, nil
}

func (s *stubStream) Close() error { s.closed = true; return nil }

// ---------- cache ----------

type memStore struct {
	mu   sync.Mutex
	data map[string]string
	sets int
}

func newMemStore() *memStore { return &memStore{data: map[string]string{}} }

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.data[key] = value
	return nil
}

func (m *memStore) Close() error { return nil }

// brokenStore fails every operation.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}
func (brokenStore) Set(context.Context, string, string, time.Duration) error {
	return errors.New("connection refused")
}
func (brokenStore) Close() error { return nil }

// ---------- wiring ----------

type fixture struct {
	db     *gorm.DB
	svc    *QuestionService
	prov   *stubProvider
	store  *memStore
	recent *repo.RecentTracker
}

func newFixture(t *testing.T, answer string) *fixture {
	t.Helper()
	db := newSvcDB(t)
	prov := newStub(answer)
	store := newMemStore()
	recent := repo.NewRecentTracker(db, repo.DefaultRecentMax)
	svc := NewQuestionService(
		repo.NewConversationStore(db),
		recent,
		cache.NewResponseCache(store, time.Hour),
		prov,
		classifier.New(testRefusal),
	)
	return &fixture{db: db, svc: svc, prov: prov, store: store, recent: recent}
}

func (f *fixture) recentQuestions(t *testing.T, userID string) []string {
	t.Helper()
	list, err := f.recent.List(context.Background(), userID, 0)
	if err != nil {
		t.Fatalf("recent list: %v", err)
	}
	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, r.Question)
	}
	return out
}

func (f *fixture) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// collect gathers emitted events.
type collector struct {
	events []StreamEvent
	failOn int // fail when this many events were received; 0 = never
}

func (c *collector) emit(ev StreamEvent) error {
	c.events = append(c.events, ev)
	if c.failOn > 0 && len(c.events) >= c.failOn {
		return errors.New("client gone")
	}
	return nil
}

func (c *collector) types() []string {
	out := make([]string, 0, len(c.events))
	for _, ev := range c.events {
		out = append(out, ev.Type)
	}
	return out
}

func (c *collector) content() string {
	var b strings.Builder
	for _, ev := range c.events {
		if ev.Type == EventContent {
			b.WriteString(ev.Text)
		}
	}
	return b.String()
}
