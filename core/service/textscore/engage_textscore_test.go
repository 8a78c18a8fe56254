package textscore

import (
	"strings"
	"testing"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "sure thing", "sure thing", 0},
		{"empty to text", "", "abc", 3},
		{"text to empty", "abc", "", 3},
		{"single substitution", "kitten", "bitten", 1},
		{"classic kitten sitting", "kitten", "sitting", 3},
		{"insertion", "helo", "hello", 1},
		{"unicode", "olá", "ola", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Levenshtein(tt.a, tt.b); got != tt.want {
				t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestLevenshteinSymmetricTotal(t *testing.T) {
	pairs := [][2]string{
		{"refund please", "refund"},
		{"", "hello"},
		{"can i get a discount", "could i get a discount?"},
	}
	for _, p := range pairs {
		if Levenshtein(p[0], p[1]) != Levenshtein(p[1], p[0]) {
			t.Errorf("distance not symmetric for %q / %q", p[0], p[1])
		}
	}
}

func TestLevenshteinTriangleInequality(t *testing.T) {
	a, b, c := "buy now", "buy it now", "maybe later"
	ab := Levenshtein(a, b)
	bc := Levenshtein(b, c)
	ac := Levenshtein(a, c)
	if ac > ab+bc {
		t.Errorf("triangle inequality violated: d(a,c)=%d > d(a,b)+d(b,c)=%d", ac, ab+bc)
	}
}

func TestDetectRoboticPhrases(t *testing.T) {
	found := DetectRoboticPhrases("I understand your concern. Let me help you with that.")
	if len(found) != 2 {
		t.Fatalf("expected 2 robotic phrases, got %v", found)
	}

	if got := DetectRoboticPhrases("Sure, sending the link now!"); len(got) != 0 {
		t.Errorf("expected no robotic phrases, got %v", got)
	}
}

func TestHumanLikenessClamped(t *testing.T) {
	inputs := []string{
		"",
		"Sure! Got it, no problem. I'm on it!",
		"I understand. I'd be happy to assist. Please inquire further. " + strings.Repeat("We utilize formal language. ", 10),
	}
	for _, in := range inputs {
		got := HumanLikeness(in)
		if got < 0 || got > 1 {
			t.Errorf("HumanLikeness(%q) = %v, out of [0,1]", in, got)
		}
	}
}

func TestHumanLikenessSignals(t *testing.T) {
	casual := HumanLikeness("Sure! I'm sending it now.")
	robotic := HumanLikeness("I understand. I'd be happy to assist you with your inquiry.")
	if casual <= robotic {
		t.Errorf("casual text should outscore robotic: casual=%v robotic=%v", casual, robotic)
	}
}

func TestNaturalLanguageClamped(t *testing.T) {
	inputs := []string{
		"",
		"Yeah, well, that works. We ship on Monday usually. Oh and the tracking number comes by mail!",
		"Ok. Ok. Ok. Ok.",
	}
	for _, in := range inputs {
		got := NaturalLanguage(in)
		if got < 0 || got > 1 {
			t.Errorf("NaturalLanguage(%q) = %v, out of [0,1]", in, got)
		}
	}
}

func TestNaturalLanguageVariedSentences(t *testing.T) {
	varied := "Well, that depends on the plan you pick. Shipping is free. Most orders arrive in two or three working days, sometimes faster."
	flat := "Ok sure. Ok sure. Ok sure."
	if NaturalLanguage(varied) <= NaturalLanguage(flat) {
		t.Errorf("varied rhythm should outscore flat repetition")
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  string
	}{
		{"empty defaults to english", nil, "en"},
		{"english", []string{"hello, how much is the premium plan?"}, "en"},
		{"spanish", []string{"hola, ¿cuánto cuesta? gracias"}, "es"},
		{"portuguese", []string{"olá, quanto custa? obrigado"}, "pt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLanguage(tt.texts); got != tt.want {
				t.Errorf("DetectLanguage(%v) = %q, want %q", tt.texts, got, tt.want)
			}
		})
	}
}
