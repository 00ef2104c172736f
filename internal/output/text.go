package output

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// Styling is a reusable color/attribute pair applied to a run of text.
type Styling struct {
	Color Color
	Style Style
}

// Span pairs literal text with the styling used to render it.
type Span struct {
	Text    string
	Styling Styling
}

// Text is styled terminal text built from spans. The zero value is empty.
//
// Offsets into a Text (for Stylize) are rune offsets into the concatenated
// plain text, so overlays computed on the plain string line up even when the
// text contains multi-byte runes.
type Text struct {
	spans []Span
}

// Plain creates unstyled text.
func Plain(s string) Text {
	if s == "" {
		return Text{}
	}
	return Text{spans: []Span{{Text: s}}}
}

// Styled creates text rendered with the given styling.
func Styled(s string, styling Styling) Text {
	if s == "" {
		return Text{}
	}
	return Text{spans: []Span{{Text: s, Styling: styling}}}
}

// Append concatenates other onto t and returns the result.
func (t Text) Append(other Text) Text {
	spans := make([]Span, 0, len(t.spans)+len(other.spans))
	spans = append(spans, t.spans...)
	spans = append(spans, other.spans...)
	return Text{spans: spans}
}

// AppendString concatenates a plain string onto t.
func (t Text) AppendString(s string) Text {
	return t.Append(Plain(s))
}

// Spans returns the styled spans that make up the text.
func (t Text) Spans() []Span {
	return t.spans
}

// String returns the text with all styling stripped.
func (t Text) String() string {
	var sb strings.Builder
	for _, s := range t.spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Width returns the display width of the text in terminal cells.
func (t Text) Width() int {
	width := 0
	for _, s := range t.spans {
		width += runewidth.StringWidth(s.Text)
	}
	return width
}

// styledRune is the exploded form used for span surgery.
type styledRune struct {
	r  rune
	st Styling
}

func (t Text) explode() []styledRune {
	var runes []styledRune
	for _, s := range t.spans {
		for _, r := range s.Text {
			runes = append(runes, styledRune{r: r, st: s.Styling})
		}
	}
	return runes
}

func implode(runes []styledRune) Text {
	var spans []Span
	var sb strings.Builder
	var current Styling

	for i, sr := range runes {
		if i > 0 && sr.st != current {
			spans = append(spans, Span{Text: sb.String(), Styling: current})
			sb.Reset()
		}
		current = sr.st
		sb.WriteRune(sr.r)
	}

	if sb.Len() > 0 {
		spans = append(spans, Span{Text: sb.String(), Styling: current})
	}

	return Text{spans: spans}
}

// Stylize overlays styling onto the rune range [start, end), replacing the
// styling of the affected runes. Out-of-range offsets are clamped.
func (t Text) Stylize(start, end int, styling Styling) Text {
	runes := t.explode()

	start = max(0, start)
	end = min(len(runes), end)
	for i := start; i < end; i++ {
		runes[i].st = styling
	}

	return implode(runes)
}

// Restyle replaces the styling of every unstyled rune, leaving runes that
// already carry styling untouched.
func (t Text) Restyle(styling Styling) Text {
	runes := t.explode()
	for i, sr := range runes {
		if sr.st == (Styling{}) {
			runes[i].st = styling
		}
	}
	return implode(runes)
}

// Truncate shortens the text to at most width terminal cells, replacing the
// overflow with a single ellipsis character.
func (t Text) Truncate(width int) Text {
	if t.Width() <= width {
		return t
	}

	runes := t.explode()
	kept := 0
	cells := 0
	for _, sr := range runes {
		w := runewidth.RuneWidth(sr.r)
		if cells+w > width-1 {
			break
		}
		cells += w
		kept++
	}

	out := runes[:kept]
	var st Styling
	if kept > 0 {
		st = runes[kept-1].st
	}
	out = append(out, styledRune{r: '…', st: st})
	return implode(out)
}

// HighlightAll overlays styling onto every non-overlapping, case-insensitive
// occurrence of query in the text. An empty or whitespace-only query is a
// no-op.
func (t Text) HighlightAll(query string, styling Styling) Text {
	query = strings.TrimSpace(query)
	if query == "" {
		return t
	}

	haystack := foldRunes([]rune(t.String()))
	needle := foldRunes([]rune(query))

	result := t
	for i := 0; i+len(needle) <= len(haystack); {
		if runesEqual(haystack[i:i+len(needle)], needle) {
			result = result.Stylize(i, i+len(needle), styling)
			i += len(needle)
		} else {
			i++
		}
	}
	return result
}

func foldRunes(runes []rune) []rune {
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
