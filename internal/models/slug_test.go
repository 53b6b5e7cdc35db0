package models

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"punctuation stripped", "Austin Honey Fest 2026!", "austin-honey-fest-2026"},
		{"mixed case", "HoNeY MaRkEt", "honey-market"},
		{"whitespace runs", "Bee   Keeping\t\nClass", "bee-keeping-class"},
		{"existing hyphens collapse", "Honey - Tasting -- Day", "honey-tasting-day"},
		{"apostrophes removed", "Farmer's Honey Fair", "farmers-honey-fair"},
		{"accents dropped not transliterated", "Café Apiary", "caf-apiary"},
		{"non-breaking space is whitespace", "Honey\u00a0Expo", "honey-expo"},
		{"edges keep hyphens", "  Honey Tour  ", "-honey-tour-"},
		{"all symbols", "!@#$%", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSlugifyTruncatesTo100(t *testing.T) {
	name := strings.Repeat("honey ", 40)
	slug := Slugify(name)

	if len(slug) != MaxSlugLength {
		t.Fatalf("expected slug length %d, got %d", MaxSlugLength, len(slug))
	}
	if !strings.HasPrefix(slug, "honey-honey-") {
		t.Errorf("unexpected slug prefix: %q", slug)
	}
}

func TestSlugifyIsDeterministic(t *testing.T) {
	names := []string{"Austin Honey Fest 2026!", "Texas Beekeepers Conference", "  Ünïcödé  Honey  "}

	for _, name := range names {
		first := Slugify(name)
		second := Slugify(name)
		if first != second {
			t.Errorf("Slugify(%q) not deterministic: %q vs %q", name, first, second)
		}
		if again := Slugify(first); again != first {
			t.Errorf("Slugify not idempotent for %q: %q -> %q", name, first, again)
		}
	}
}
