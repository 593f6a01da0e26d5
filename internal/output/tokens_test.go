package output

import (
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		min  int
		max  int
	}{
		{"empty", "", 0, 0},
		{"metric row", "com.acme.Cart#sum/1  CC  10  EXTREME", 7, 12},
		{"1000 characters", strings.Repeat("x", 1000), 240, 260},
		{"multibyte", strings.Repeat("é", 8), 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateTokens(tt.text)
			if got < tt.min || got > tt.max {
				t.Errorf("EstimateTokens() = %d, want between %d and %d", got, tt.min, tt.max)
			}
		})
	}
}

func TestFormatTokenCount(t *testing.T) {
	tests := []struct {
		tokens int
		want   string
	}{
		{100, "100"},
		{1000, "1.0k"},
		{1500, "1.5k"},
		{128000, "128.0k"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatTokenCount(tt.tokens); got != tt.want {
				t.Errorf("FormatTokenCount(%d) = %q, want %q", tt.tokens, got, tt.want)
			}
		})
	}
}

func TestCheckBudget(t *testing.T) {
	b := CheckBudget(strings.Repeat("x", 8000), 8000)
	if b.Tokens != 2000 {
		t.Errorf("Tokens = %d, want 2000", b.Tokens)
	}
	if b.Label != "8k" {
		t.Errorf("Label = %q, want 8k", b.Label)
	}
	if b.Percent != 25 {
		t.Errorf("Percent = %.1f, want 25", b.Percent)
	}
	if b.Remaining != 6000 || !b.Fits() {
		t.Errorf("Remaining = %d, Fits = %v", b.Remaining, b.Fits())
	}

	over := CheckBudget(strings.Repeat("x", 400), 50)
	if over.Fits() || over.Remaining != 0 {
		t.Errorf("over budget: %+v", over)
	}
	if over.Label != "50" {
		t.Errorf("Label = %q, want 50", over.Label)
	}

	if CheckBudget("", 0).Limit != DefaultTokenLimit {
		t.Error("non-positive limit uses the default")
	}
}
