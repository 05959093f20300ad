package search

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"trim", "  Al-Baqarah  ", "Al-Baqarah"},
		{"collapse", "Al  \t Baqarah\n255", "Al Baqarah 255"},
		{"empty", "   ", ""},
		// U+0065 U+0301 (decomposed é) -> U+00E9 (composed)
		{"nfc", "é", "é"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestIsQuery(t *testing.T) {
	if IsQuery("a") {
		t.Fatalf("single rune should not count as a query")
	}
	if !IsQuery("ab") {
		t.Fatalf("two runes should count as a query")
	}
	if !IsQuery("яс") { // multibyte runes count as runes, not bytes
		t.Fatalf("two multibyte runes should count as a query")
	}
}
