package usecase

import (
	"regexp"
	"strings"

	"github.com/docmatch/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// NormalizeText canonicalizes free text for cross-document comparison:
// lowercase, strip everything that is not a letter, digit, or whitespace,
// then collapse whitespace runs and trim. Extraction output is lossy and
// formatting varies between documents, so this is the only equality basis
// used for vendor names and line-item descriptions.
func NormalizeText(text string) string {
	result := strings.ToLower(text)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// ItemMatcher pairs invoice line items with purchase-order line items
type ItemMatcher struct{}

// NewItemMatcher creates a new line-item matcher
func NewItemMatcher() *ItemMatcher {
	return &ItemMatcher{}
}

// FindBestMatch returns the index into pool of the first candidate whose
// normalized description contains, or is contained in, the invoice item's
// normalized description. Returns -1 when no candidate qualifies.
//
// The policy is deliberately greedy: first hit wins, ties break by pool
// order, and no scoring across candidates is attempted. Consuming matched
// candidates is the caller's responsibility.
func (m *ItemMatcher) FindBestMatch(item domain.LineItem, pool []domain.LineItem) int {
	invDesc := NormalizeText(item.Description)

	for i, candidate := range pool {
		poDesc := NormalizeText(candidate.Description)
		if strings.Contains(poDesc, invDesc) || strings.Contains(invDesc, poDesc) {
			return i
		}
	}

	return -1
}
