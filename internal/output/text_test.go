package output

import (
	"testing"
)

var highlight = Styling{Color: ColorBrightYellow, Style: StyleBold}

func TestText_String(t *testing.T) {
	text := Plain("hello ").Append(Styled("world", highlight))
	if got := text.String(); got != "hello world" {
		t.Errorf("Expected %q, got %q", "hello world", got)
	}
}

func TestText_Width(t *testing.T) {
	tests := []struct {
		name string
		text Text
		want int
	}{
		{"ascii", Plain("hello"), 5},
		{"empty", Text{}, 0},
		{"wide runes", Plain("キーボード"), 10},
		{"mixed spans", Plain("ab").Append(Styled("cd", highlight)), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.text.Width(); got != tt.want {
				t.Errorf("Expected width %d, got %d", tt.want, got)
			}
		})
	}
}

func TestText_Stylize(t *testing.T) {
	text := Plain("abcdef").Stylize(2, 4, highlight)

	spans := text.Spans()
	if len(spans) != 3 {
		t.Fatalf("Expected 3 spans, got %d: %+v", len(spans), spans)
	}
	if spans[0].Text != "ab" || spans[0].Styling != (Styling{}) {
		t.Errorf("Unexpected leading span: %+v", spans[0])
	}
	if spans[1].Text != "cd" || spans[1].Styling != highlight {
		t.Errorf("Unexpected styled span: %+v", spans[1])
	}
	if spans[2].Text != "ef" || spans[2].Styling != (Styling{}) {
		t.Errorf("Unexpected trailing span: %+v", spans[2])
	}
}

func TestText_Stylize_Clamped(t *testing.T) {
	text := Plain("abc").Stylize(-5, 99, highlight)

	spans := text.Spans()
	if len(spans) != 1 || spans[0].Styling != highlight {
		t.Errorf("Expected the whole text styled, got %+v", spans)
	}
}

func TestText_Restyle(t *testing.T) {
	dim := Styling{Style: StyleDim}
	text := Plain("ab").Append(Styled("cd", highlight)).Restyle(dim)

	spans := text.Spans()
	if len(spans) != 2 {
		t.Fatalf("Expected 2 spans, got %d", len(spans))
	}
	if spans[0].Styling != dim {
		t.Errorf("Expected unstyled runes to take the new styling, got %+v", spans[0])
	}
	if spans[1].Styling != highlight {
		t.Errorf("Expected styled runes to keep their styling, got %+v", spans[1])
	}
}

func TestText_Truncate(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"fits", "short", 10, "short"},
		{"exact", "exact", 5, "exact"},
		{"truncated", "a long item label", 8, "a long …"},
		{"tiny width", "abc", 1, "…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plain(tt.text).Truncate(tt.width)
			if got.String() != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got.String())
			}
			if got.Width() > tt.width {
				t.Errorf("Truncated width %d exceeds limit %d", got.Width(), tt.width)
			}
		})
	}
}

func TestText_Truncate_WideRunes(t *testing.T) {
	// A double-width rune that does not fit is dropped entirely.
	got := Plain("aキb").Truncate(3)
	if got.String() != "a…" {
		t.Errorf("Expected %q, got %q", "a…", got.String())
	}
}

func TestText_HighlightAll(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		query      string
		wantStyled []string
	}{
		{"single match", "nice_nano", "nano", []string{"nano"}},
		{"case insensitive", "Corne Keyboard", "corne", []string{"Corne"}},
		// Adjacent matches share one styling and coalesce into one span.
		{"multiple matches", "abab", "ab", []string{"abab"}},
		{"separated matches", "ab-ab", "ab", []string{"ab", "ab"}},
		{"no match", "sofle", "zzz", nil},
		{"empty query", "sofle", "", nil},
		{"whitespace query", "sofle", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plain(tt.text).HighlightAll(tt.query, highlight)

			if got.String() != tt.text {
				t.Errorf("Highlighting changed the text: %q", got.String())
			}

			var styled []string
			for _, span := range got.Spans() {
				if span.Styling == highlight {
					styled = append(styled, span.Text)
				}
			}

			if len(styled) != len(tt.wantStyled) {
				t.Fatalf("Expected styled spans %v, got %v", tt.wantStyled, styled)
			}
			for i := range styled {
				if styled[i] != tt.wantStyled[i] {
					t.Errorf("Expected styled span %q, got %q", tt.wantStyled[i], styled[i])
				}
			}
		})
	}
}

func TestText_HighlightAll_NonOverlapping(t *testing.T) {
	got := Plain("aaa").HighlightAll("aa", highlight)

	var styledRunes int
	for _, span := range got.Spans() {
		if span.Styling == highlight {
			styledRunes += len([]rune(span.Text))
		}
	}
	if styledRunes != 2 {
		t.Errorf("Expected one non-overlapping match of 2 runes, got %d styled runes", styledRunes)
	}
}
