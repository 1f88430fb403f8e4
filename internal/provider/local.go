package provider

import (
	"context"
	"strings"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/search"
)

// Local answers from a passage index without any network calls. A question
// whose best passage scores below the threshold gets the refusal sentence.
type Local struct {
	index     search.Index
	threshold float64
	refusal   string
}

// NewLocal returns a provider over ix.
func NewLocal(ix search.Index, threshold float64, refusal string) *Local {
	return &Local{index: ix, threshold: threshold, refusal: refusal}
}

// Answer implements Provider.
func (l *Local) Answer(ctx context.Context, question string, transcript []domain.Turn) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return l.lookup(question, transcript), nil
}

// Stream implements Provider by emitting the Answer text word by word.
func (l *Local) Stream(ctx context.Context, question string, transcript []domain.Turn) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return newSliceStream(ctx, wordChunks(l.lookup(question, transcript))), nil
}

// lookup searches the question alone first, then with the latest user turn
// so short follow-ups ("tell me more") inherit their topic.
func (l *Local) lookup(question string, transcript []domain.Turn) string {
	if p, ok := l.best(question); ok {
		return p
	}
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Role == domain.RoleUser {
			if p, ok := l.best(transcript[i].Content + " " + question); ok {
				return p
			}
			break
		}
	}
	return l.refusal
}

func (l *Local) best(query string) (string, bool) {
	if l.index == nil {
		return "", false
	}
	res := l.index.Search(query, 1)
	if len(res) == 0 || res[0].Score < l.threshold {
		return "", false
	}
	text := res[0].Text
	if h := strings.TrimSpace(res[0].Heading); h != "" {
		text = h + ": " + text
	}
	return text, true
}
