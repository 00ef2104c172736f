package output

import (
	"bytes"
	"strings"
	"testing"
)

func newTestFormatter(color bool) (*Formatter, *bytes.Buffer) {
	var buf bytes.Buffer
	f := NewFormatter(&buf)
	f.SetColorOutput(color)
	return f, &buf
}

func TestFormatter_RenderPlain(t *testing.T) {
	f, _ := newTestFormatter(false)
	got := f.Render(Plain("hello ").Append(Styled("world", Styling{Color: ColorRed})))
	if got != "hello world" {
		t.Errorf("Expected unstyled render, got %q", got)
	}
}

func TestFormatter_RenderColor(t *testing.T) {
	f, _ := newTestFormatter(true)
	got := f.Render(Styled("x", Styling{Color: ColorRed, Style: StyleBold}))
	want := "\033[1;31mx\033[0m"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestFormatter_ReverseVideo(t *testing.T) {
	f, _ := newTestFormatter(true)
	got := f.Render(Styled("focused", Styling{Style: StyleReverse}))
	if !strings.Contains(got, "\033[7m") {
		t.Errorf("Expected reverse video escape, got %q", got)
	}
}

func TestFormatter_Messages(t *testing.T) {
	f, buf := newTestFormatter(false)

	f.Success("added %s", "corne")
	f.Error("failed")

	out := buf.String()
	if !strings.Contains(out, "added corne") {
		t.Errorf("Expected success message in output, got %q", out)
	}
	if !strings.Contains(out, "failed") {
		t.Errorf("Expected error message in output, got %q", out)
	}
}

func TestTable_Print(t *testing.T) {
	f, buf := newTestFormatter(false)

	f.Table().
		Headers("ID", "Name").
		Row("corne", "Corne").
		Row("nice_nano_v2", "nice!nano v2").
		Print()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 lines (header, separator, 2 rows), got %d:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[2], "corne ") {
		t.Errorf("Expected padded first column, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "nice_nano_v2  nice!nano v2") {
		t.Errorf("Expected aligned columns, got %q", lines[3])
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger().SetLevel(LogLevelWarn).SetOutputs(&buf)
	logger.formatter.SetColorOutput(false)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected info message to be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "[WARN]") {
		t.Errorf("Expected warn message with level tag, got %q", out)
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger().SetLevel(LogLevelDebug).SetOutputs(&buf)
	logger.formatter.SetColorOutput(false)

	logger.WithField("keyboard", "sofle").Debug("resolved", map[string]any{"board": "nice_nano_v2"})

	out := buf.String()
	if !strings.Contains(out, "keyboard=sofle") || !strings.Contains(out, "board=nice_nano_v2") {
		t.Errorf("Expected both fields in output, got %q", out)
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger().SetLevel(LogLevelDebug).SetFormat(LogFormatJSON).SetOutputs(&buf)

	logger.Info("structured")

	out := buf.String()
	if !strings.Contains(out, `"message":"structured"`) {
		t.Errorf("Expected JSON entry, got %q", out)
	}
}
