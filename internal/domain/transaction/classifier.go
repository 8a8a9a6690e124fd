package transaction

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Classifier maps a free-text reason to a category label. Implementations
// may fail; the poster falls back to FallbackCategory.
type Classifier interface {
	Classify(ctx context.Context, reason string) (string, error)
}

// ClassifierFunc adapts a plain function to Classifier.
type ClassifierFunc func(ctx context.Context, reason string) (string, error)

func (f ClassifierFunc) Classify(ctx context.Context, reason string) (string, error) {
	return f(ctx, reason)
}

// NormalizeCategory trims the label, drops periods and caps it at
// MaxCategoryLength characters.
func NormalizeCategory(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, ".", ""))
	return truncate(s, MaxCategoryLength)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n]))
}
