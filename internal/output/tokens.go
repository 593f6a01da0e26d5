package output

import (
	"fmt"
	"unicode/utf8"
)

// Budget reports how an encoded payload fits a model context window.
type Budget struct {
	Tokens    int     `json:"tokens"`
	Limit     int     `json:"limit"`
	Label     string  `json:"label"`
	Percent   float64 `json:"percent"`
	Remaining int     `json:"remaining"`
}

// Fits reports whether the payload is within the limit.
func (b Budget) Fits() bool { return b.Tokens <= b.Limit }

// DefaultTokenLimit is used when a caller gives no limit.
const DefaultTokenLimit = 128000

// CharsPerToken is the approximate character-to-token ratio for dense,
// identifier-heavy text such as metric tables.
const CharsPerToken = 4.0

// EstimateTokens returns an approximate token count for text.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	runes := utf8.RuneCountInString(text)
	return int(float64(runes)/CharsPerToken + 0.5)
}

// FormatTokenCount formats a token count for display. Counts >= 1000 are
// formatted as "X.Xk".
func FormatTokenCount(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("%d", tokens)
	}
	return fmt.Sprintf("%.1fk", float64(tokens)/1000)
}

// CheckBudget estimates text against limit, DefaultTokenLimit when limit <= 0.
func CheckBudget(text string, limit int) Budget {
	if limit <= 0 {
		limit = DefaultTokenLimit
	}
	tokens := EstimateTokens(text)
	remaining := limit - tokens
	if remaining < 0 {
		remaining = 0
	}
	return Budget{
		Tokens:    tokens,
		Limit:     limit,
		Label:     limitLabel(limit),
		Percent:   float64(tokens) / float64(limit) * 100,
		Remaining: remaining,
	}
}

func limitLabel(limit int) string {
	if limit >= 1000 && limit%1000 == 0 {
		return fmt.Sprintf("%dk", limit/1000)
	}
	return fmt.Sprintf("%d", limit)
}
