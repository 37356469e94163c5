package service

import (
	"context"
	"strings"
	"unicode"

	"netinventory/internal/domain"
)

// Strategy resolves the organizational placement of a discovery. A nil result
// means no match; the classifier then falls back to the sentinels.
type Strategy interface {
	Name() string
	Department(ctx context.Context, rec *domain.DiscoveryRecord) (*domain.Department, error)
	Unit(ctx context.Context, rec *domain.DiscoveryRecord, dept *domain.Department) (*domain.Unit, error)
}

// containsFold reports whether substr is within s, ignoring case
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// normalizeWords lowercases s and reduces it to space-separated words, padded
// with a space on each side so whole-word lookups are a substring check
func normalizeWords(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(fields) == 0 {
		return ""
	}
	return " " + strings.Join(fields, " ") + " "
}

// containsWords reports whether phrase occurs in text as whole words
func containsWords(text, phrase string) bool {
	p := normalizeWords(phrase)
	if p == "" {
		return false
	}
	return strings.Contains(normalizeWords(text), p)
}
