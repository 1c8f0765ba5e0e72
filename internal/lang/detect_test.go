package lang

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", "en"},
		{"plain english", "generate a sunset over the ocean", "en"},
		{"arabic", "صورة غروب الشمس فوق البحر", "ar"},
		{"mixed script", "logo that says مرحبا", "ar"},
		{"presentation forms", "ﻻ", "ar"},
		{"arabic supplement", "ݐ", "ar"},
		{"numbers and punctuation", "1024x1024, hd!", "en"},
		{"latin with diacritics", "café naïve", "en"},
		{"cyrillic is not arabic", "привет", "en"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Detect(tc.text); got != tc.want {
				t.Fatalf("Detect(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestIsRTL(t *testing.T) {
	if IsRTL("hello") {
		t.Fatal("latin text must not be RTL")
	}
	if !IsRTL("مرحبا") {
		t.Fatal("arabic text must be RTL")
	}
}
