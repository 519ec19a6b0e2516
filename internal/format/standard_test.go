package format

import (
	"strings"
	"testing"
)

func TestStandardGroupsSentences(t *testing.T) {
	input := "So today we. Talk about rust. It is safe. No gc needed."
	got := Standard(input, 2)

	want := "So today we. Talk about rust.\n\nIt is safe. No gc needed."
	if got != want {
		t.Errorf("Standard = %q, want %q", got, want)
	}
	paragraphs := strings.Split(got, "\n\n")
	if len(paragraphs) != 2 {
		t.Fatalf("paragraphs = %d, want 2", len(paragraphs))
	}
	for i, p := range paragraphs {
		if n := strings.Count(p, "."); n != 2 {
			t.Errorf("paragraph %d has %d sentences, want 2", i, n)
		}
	}
}

func TestStandardCapitalizes(t *testing.T) {
	got := Standard("hello there. it works", 4)
	if got != "Hello there. It works." {
		t.Errorf("Standard = %q", got)
	}
}

func TestCompactKeepsCasing(t *testing.T) {
	input := "so today we. talk about rust. it is safe. no gc needed."
	got := Compact(input, 2)

	want := "so today we. talk about rust.\n\nit is safe. no gc needed."
	if got != want {
		t.Errorf("Compact = %q, want %q", got, want)
	}
}

func TestCompactGroupsLikeStandard(t *testing.T) {
	input := "One. Two. Three. Four. Five."
	if a, b := strings.Count(Compact(input, 2), "\n\n"), strings.Count(Standard(input, 2), "\n\n"); a != b {
		t.Errorf("paragraph breaks differ: compact %d, standard %d", a, b)
	}
}

func TestStandardEmptyInput(t *testing.T) {
	if got := Standard("", 4); got != "" {
		t.Errorf("Standard(\"\") = %q, want empty", got)
	}
	if got := Standard("   \n  ", 4); got != "" {
		t.Errorf("Standard(whitespace) = %q, want empty", got)
	}
}

func TestStandardDefaultParagraphLength(t *testing.T) {
	input := "One. Two. Three. Four. Five."
	got := Standard(input, 0)
	if strings.Count(got, "\n\n") != 1 {
		t.Errorf("expected default grouping of %d sentences, got %q", DefaultParagraphLength, got)
	}
}

func TestStandardDeterministicAndIdempotent(t *testing.T) {
	input := "Alpha one. Beta two. Gamma three. Delta four. Epsilon five. Zeta six. Eta seven."

	first := Standard(input, 3)
	if second := Standard(input, 3); second != first {
		t.Error("Standard is not deterministic")
	}

	// Re-applying to its own output keeps the paragraph count within one.
	again := Standard(first, 3)
	firstCount := strings.Count(first, "\n\n") + 1
	againCount := strings.Count(again, "\n\n") + 1
	if diff := firstCount - againCount; diff < -1 || diff > 1 {
		t.Errorf("paragraph count drifted from %d to %d", firstCount, againCount)
	}
}

func TestStandardNormalizesWhitespace(t *testing.T) {
	got := Standard("first   sentence\nhere. second one.", 4)
	if got != "First sentence here. Second one." {
		t.Errorf("Standard = %q", got)
	}
}

func TestUnsuitable(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "music notation", text: "♪ la la la ♪ we sing along", want: true},
		{name: "bracketed cue", text: "[Music] and then the chorus", want: true},
		{
			name: "repeated short unpunctuated lines",
			text: "na na na\nhey hey\nna na na\nhey hey\nna na na",
			want: true,
		},
		{
			name: "regular speech",
			text: "So today we are going to talk about memory safety. It matters a lot.",
			want: false,
		},
		{
			name: "punctuated multi-line prose",
			text: "First point here.\nSecond point there.\nThird point follows.\nFourth wraps up.",
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unsuitable(tt.text); got != tt.want {
				t.Errorf("Unsuitable(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
