// Package provider defines the external answer provider consulted on cache
// misses, together with its implementations: an OpenAI chat-completions
// adapter and an offline provider backed by a local knowledge file.
package provider

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/tbourn/go-qa-backend/internal/domain"
)

// Chunk types produced by a Stream.
const (
	ChunkContent = "content"
	ChunkStatus  = "status"
)

// ErrUnavailable wraps every failure of an upstream provider call.
var ErrUnavailable = errors.New("answer provider unavailable")

// Chunk is one incremental piece of a streamed answer. Only content chunks
// contribute to the answer text; status chunks are progress notes.
type Chunk struct {
	Type string
	Text string
}

// Stream is a finite, non-restartable sequence of chunks. Recv returns
// io.EOF after the last chunk. Any other error is terminal. Close must be
// called once the caller stops reading, even after an error.
type Stream interface {
	Recv() (Chunk, error)
	Close() error
}

// Provider answers a question, optionally continuing a prior-turn
// transcript. For the same inputs, concatenating the content chunks of
// Stream yields the text Answer would return.
type Provider interface {
	Answer(ctx context.Context, question string, transcript []domain.Turn) (string, error)
	Stream(ctx context.Context, question string, transcript []domain.Turn) (Stream, error)
}

// Collect drains s and returns the concatenated content. s is closed.
func Collect(s Stream) (string, error) {
	defer s.Close()
	var b strings.Builder
	for {
		ch, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return b.String(), err
		}
		if ch.Type == ChunkContent {
			b.WriteString(ch.Text)
		}
	}
}

// sliceStream replays precomputed chunks, stopping early if ctx is done.
type sliceStream struct {
	ctx    context.Context
	chunks []Chunk
	pos    int
}

func newSliceStream(ctx context.Context, chunks []Chunk) *sliceStream {
	return &sliceStream{ctx: ctx, chunks: chunks}
}

func (s *sliceStream) Recv() (Chunk, error) {
	if err := s.ctx.Err(); err != nil {
		return Chunk{}, err
	}
	if s.pos >= len(s.chunks) {
		return Chunk{}, io.EOF
	}
	ch := s.chunks[s.pos]
	s.pos++
	return ch, nil
}

func (s *sliceStream) Close() error { return nil }

// wordChunks splits text into content chunks of one word each, keeping the
// trailing whitespace on each word so the chunks concatenate back to text.
func wordChunks(text string) []Chunk {
	parts := strings.SplitAfter(text, " ")
	out := make([]Chunk, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, Chunk{Type: ChunkContent, Text: p})
	}
	return out
}
