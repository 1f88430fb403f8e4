// Package classifier decides whether an answer produced by the answer
// provider is an in-domain answer or the provider's refusal. Only in-domain
// answers are cached and recorded as recent questions.
package classifier

import (
	"strings"

	"golang.org/x/text/cases"
)

// Verdict is the outcome of classifying an answer.
type Verdict int

const (
	// Refusal marks blank answers and answers carrying the refusal sentinel.
	Refusal Verdict = iota
	// InDomain marks every other answer.
	InDomain
)

// String implements fmt.Stringer. Values are used as metric labels.
func (v Verdict) String() string {
	if v == InDomain {
		return "in_domain"
	}
	return "refusal"
}

// Classifier matches answers against a refusal sentinel. The zero value
// classifies only blank answers as refusals.
type Classifier struct {
	sentinel string
}

// New returns a Classifier for the given refusal sentence.
func New(sentinel string) Classifier {
	return Classifier{sentinel: cases.Fold().String(strings.TrimSpace(sentinel))}
}

// Classify returns Refusal if text is blank or contains the sentinel
// (case-folded substring), otherwise InDomain.
func (c Classifier) Classify(text string) Verdict {
	t := strings.TrimSpace(text)
	if t == "" {
		return Refusal
	}
	if c.sentinel != "" && strings.Contains(cases.Fold().String(t), c.sentinel) {
		return Refusal
	}
	return InDomain
}

// IsInDomain is shorthand for Classify(text) == InDomain.
func (c Classifier) IsInDomain(text string) bool {
	return c.Classify(text) == InDomain
}
