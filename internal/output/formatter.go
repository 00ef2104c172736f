package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Color represents ANSI color codes
type Color int

const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
)

// Style represents text formatting
type Style int

const (
	StyleNormal Style = iota
	StyleBold
	StyleDim
	StyleItalic
	StyleUnderline
	StyleReverse
)

// Theme defines the color scheme for different elements
type Theme struct {
	Primary   Color
	Secondary Color
	Success   Color
	Warning   Color
	Error     Color
	Info      Color
	Muted     Color
	Border    Color
}

// DefaultTheme provides a sensible default color scheme
var DefaultTheme = Theme{
	Primary:   ColorBrightMagenta,
	Secondary: ColorCyan,
	Success:   ColorGreen,
	Warning:   ColorYellow,
	Error:     ColorRed,
	Info:      ColorBlue,
	Muted:     ColorWhite,
	Border:    ColorBlue,
}

// Formatter handles styled output formatting
type Formatter struct {
	writer      io.Writer
	theme       Theme
	colorOutput bool
	width       int
}

// NewFormatter creates a new formatter with the given configuration
func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{
		writer:      w,
		theme:       DefaultTheme,
		colorOutput: isColorSupported(),
		width:       TerminalWidth(),
	}
}

// SetTheme changes the color theme
func (f *Formatter) SetTheme(theme Theme) {
	f.theme = theme
}

// SetColorOutput enables or disables color output
func (f *Formatter) SetColorOutput(enabled bool) {
	f.colorOutput = enabled
}

// Theme returns the current color theme
func (f *Formatter) Theme() Theme {
	return f.theme
}

// colorize applies color and style to text if color output is enabled
func (f *Formatter) colorize(text string, color Color, style Style) string {
	if !f.colorOutput {
		return text
	}

	codes := sgrCodes(color, style)
	if len(codes) == 0 {
		return text
	}

	return fmt.Sprintf("\033[%sm%s\033[0m", strings.Join(codes, ";"), text)
}

// sgrCodes returns the SGR parameter codes for a color/style pair.
func sgrCodes(color Color, style Style) []string {
	var codes []string

	switch style {
	case StyleBold:
		codes = append(codes, "1")
	case StyleDim:
		codes = append(codes, "2")
	case StyleItalic:
		codes = append(codes, "3")
	case StyleUnderline:
		codes = append(codes, "4")
	case StyleReverse:
		codes = append(codes, "7")
	}

	switch color {
	case ColorRed:
		codes = append(codes, "31")
	case ColorGreen:
		codes = append(codes, "32")
	case ColorYellow:
		codes = append(codes, "33")
	case ColorBlue:
		codes = append(codes, "34")
	case ColorMagenta:
		codes = append(codes, "35")
	case ColorCyan:
		codes = append(codes, "36")
	case ColorWhite:
		codes = append(codes, "37")
	case ColorBrightRed:
		codes = append(codes, "91")
	case ColorBrightGreen:
		codes = append(codes, "92")
	case ColorBrightYellow:
		codes = append(codes, "93")
	case ColorBrightBlue:
		codes = append(codes, "94")
	case ColorBrightMagenta:
		codes = append(codes, "95")
	case ColorBrightCyan:
		codes = append(codes, "96")
	case ColorBrightWhite:
		codes = append(codes, "97")
	}

	return codes
}

// Render returns the ANSI representation of styled text.
func (f *Formatter) Render(t Text) string {
	var sb strings.Builder
	for _, span := range t.Spans() {
		sb.WriteString(f.colorize(span.Text, span.Styling.Color, span.Styling.Style))
	}
	return sb.String()
}

// Print writes styled text without a trailing newline.
func (f *Formatter) Print(t Text) {
	fmt.Fprint(f.writer, f.Render(t))
}

// Println writes styled text followed by a newline.
func (f *Formatter) Println(t Text) {
	fmt.Fprintln(f.writer, f.Render(t))
}

// Header prints a prominent section header
func (f *Formatter) Header(text string) {
	fmt.Fprintln(f.writer, f.colorize(text, f.theme.Primary, StyleBold))
}

// Success prints a success message
func (f *Formatter) Success(format string, args ...any) {
	fmt.Fprintln(f.writer, f.colorize(fmt.Sprintf(format, args...), f.theme.Success, StyleNormal))
}

// Warning prints a warning message
func (f *Formatter) Warning(format string, args ...any) {
	fmt.Fprintln(f.writer, f.colorize(fmt.Sprintf(format, args...), f.theme.Warning, StyleNormal))
}

// Error prints an error message
func (f *Formatter) Error(format string, args ...any) {
	fmt.Fprintln(f.writer, f.colorize(fmt.Sprintf(format, args...), f.theme.Error, StyleBold))
}

// Info prints an informational message
func (f *Formatter) Info(format string, args ...any) {
	fmt.Fprintln(f.writer, f.colorize(fmt.Sprintf(format, args...), f.theme.Info, StyleNormal))
}

// Dim prints muted text
func (f *Formatter) Dim(format string, args ...any) {
	fmt.Fprintln(f.writer, f.colorize(fmt.Sprintf(format, args...), f.theme.Muted, StyleDim))
}

// isColorSupported reports whether the terminal should receive color output.
func isColorSupported() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// TerminalWidth returns the terminal width in columns, falling back to the
// COLUMNS environment variable and then to 80.
func TerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if w, err := strconv.Atoi(cols); err == nil && w > 0 {
			return w
		}
	}
	return 80
}
