// Package match implements template matching and personalization: the
// first stage of the response decision pipeline. Curated templates always
// win over generated output when one applies.
package match

import (
	"context"
	"strings"

	"engage_server/core/port/out"

	"github.com/google/uuid"
)

// fuzzyTokenMinLen is the minimum token length considered by the example
// fallback; shorter tokens ("a", "the", "is") match too freely.
const fuzzyTokenMinLen = 3

// Matcher finds the best enabled template binding for an inbound message.
type Matcher struct {
	bindings out.BindingRepository
}

// NewMatcher creates a Matcher over the binding repository.
func NewMatcher(bindings out.BindingRepository) *Matcher {
	return &Matcher{bindings: bindings}
}

// Match returns the first candidate whose template matches the message, in
// preferred-first, priority-descending order. A nil result with nil error
// means no template applies and the caller should fall back to generation.
func (m *Matcher) Match(ctx context.Context, tenantID uuid.UUID, message, language string, industry *string) (*out.MatchCandidate, error) {
	candidates, err := m.bindings.ListCandidates(ctx, tenantID, language, industry)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(message)
	for _, c := range candidates {
		if Matches(c.Template.MatchPatterns, c.Template.MessageExamples, lower) {
			return c, nil
		}
	}
	return nil, nil
}

// Matches reports whether a lowercased customer message hits any literal
// pattern, or failing that, any example token longer than fuzzyTokenMinLen.
func Matches(patterns, examples []string, lowerMessage string) bool {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if strings.Contains(lowerMessage, strings.ToLower(p)) {
			return true
		}
	}

	for _, ex := range examples {
		for _, token := range strings.Fields(strings.ToLower(ex)) {
			if len(token) > fuzzyTokenMinLen && strings.Contains(lowerMessage, token) {
				return true
			}
		}
	}
	return false
}
