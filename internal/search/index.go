// Package search provides the in-memory passage index behind the local
// answer provider. A Markdown knowledge file is split into passages (one per
// paragraph, table row or list item) and each passage remembers the heading
// it appeared under.
//
// The index is immutable after construction and safe for concurrent use.
// Scoring is Jaccard similarity between the query token set and each
// passage's token set: score = |Q ∩ P| / |Q ∪ P|. Ties break toward shorter
// passages, then lexical order, so results are deterministic.
package search

import (
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Passage is a ranked piece of knowledge.
type Passage struct {
	Heading string
	Text    string
	Score   float64
}

// Index ranks passages against free-text questions.
type Index interface {
	Search(query string, k int) []Passage
	Len() int
}

// Option configures index construction.
type Option func(*options)

type options struct {
	minPassageRunes int
	stopwords       map[string]struct{}
	maxPassages     int
}

func defaultOptions() options {
	return options{
		minPassageRunes: 20,
		stopwords:       toSet(defaultStopwords),
	}
}

// WithMinPassageRunes drops passages shorter than n runes. Negative n is ignored.
func WithMinPassageRunes(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.minPassageRunes = n
		}
	}
}

// WithStopwords replaces the default stop-word list. An empty list disables
// stop-word removal.
func WithStopwords(words []string) Option {
	return func(o *options) { o.stopwords = toSet(words) }
}

// WithMaxPassages caps the number of indexed passages (0 = unlimited).
func WithMaxPassages(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPassages = n
		}
	}
}

type passage struct {
	heading string
	text    string
	tokens  map[string]struct{}
	runes   int
}

type index struct {
	opts     options
	passages []passage
}

// LoadMarkdown builds an Index from the Markdown file at path.
func LoadMarkdown(path string, opts ...Option) (Index, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromMarkdown(string(b), opts...), nil
}

// FromMarkdown builds an Index from Markdown source.
func FromMarkdown(src string, opts ...Option) Index {
	return build(splitMarkdown(src), opts)
}

// FromTexts builds an Index from plain passages without headings.
func FromTexts(texts []string, opts ...Option) Index {
	blocks := make([]block, 0, len(texts))
	for _, t := range texts {
		blocks = append(blocks, block{text: t})
	}
	return build(blocks, opts)
}

func build(blocks []block, opts []Option) *index {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	out := make([]passage, 0, len(blocks))
	for _, b := range blocks {
		text := collapseSpaces(strings.TrimSpace(b.text))
		if text == "" {
			continue
		}
		n := utf8.RuneCountInString(text)
		if n < o.minPassageRunes {
			continue
		}
		toks := tokenize(b.heading+" "+text, o.stopwords)
		if len(toks) == 0 {
			continue
		}
		out = append(out, passage{heading: b.heading, text: text, tokens: toks, runes: n})
		if o.maxPassages > 0 && len(out) >= o.maxPassages {
			break
		}
	}
	return &index{opts: o, passages: out}
}

func (ix *index) Len() int { return len(ix.passages) }

// Search returns up to k passages with a positive score, best first.
// k <= 0 defaults to 3.
func (ix *index) Search(query string, k int) []Passage {
	if len(ix.passages) == 0 || strings.TrimSpace(query) == "" {
		return nil
	}
	if k <= 0 {
		k = 3
	}
	q := tokenize(query, ix.opts.stopwords)
	if len(q) == 0 {
		return nil
	}

	type hit struct {
		p     *passage
		score float64
	}
	hits := make([]hit, 0, 8)
	for i := range ix.passages {
		p := &ix.passages[i]
		over := overlap(q, p.tokens)
		if over == 0 {
			continue
		}
		union := len(q) + len(p.tokens) - over
		hits = append(hits, hit{p: p, score: float64(over) / float64(union)})
	}
	if len(hits) == 0 {
		return nil
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].score != hits[b].score {
			return hits[a].score > hits[b].score
		}
		if hits[a].p.runes != hits[b].p.runes {
			return hits[a].p.runes < hits[b].p.runes
		}
		return hits[a].p.text < hits[b].p.text
	})
	if k > len(hits) {
		k = len(hits)
	}
	res := make([]Passage, k)
	for i := 0; i < k; i++ {
		res[i] = Passage{Heading: hits[i].p.heading, Text: hits[i].p.text, Score: hits[i].score}
	}
	return res
}

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*|\p{N}+`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(strings.ToLower(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, skip := stop[w]; skip {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prev := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			if !prev {
				b.WriteByte(' ')
				prev = true
			}
			continue
		}
		prev = false
		b.WriteRune(r)
	}
	return b.String()
}

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			m[w] = struct{}{}
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

var defaultStopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "did", "do", "does", "for",
	"from", "how", "in", "is", "it", "me", "of", "on", "or", "say", "tell",
	"that", "the", "to", "was", "were", "what", "when", "where", "which",
	"who", "why", "with", "about", "bible", "says",
}
