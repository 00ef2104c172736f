// Package menu implements an interactive terminal menu with scrolling,
// live text filtering, and match highlighting.
package menu

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/kbforge/kbforge/internal/errors"
	"github.com/kbforge/kbforge/internal/output"
	"github.com/kbforge/kbforge/internal/terminal"
)

// Renderable is the capability items need to appear in a menu.
type Renderable interface {
	Render() output.Text
}

// String adapts a plain string for display in a menu.
type String string

func (s String) Render() output.Text {
	return output.Plain(string(s))
}

// Strings adapts a slice of plain strings for display in a menu.
func Strings(items []string) []String {
	out := make([]String, len(items))
	for i, s := range items {
		out[i] = String(s)
	}
	return out
}

// Theme names the style slots used to render a menu.
type Theme struct {
	Title     output.Styling
	Filter    output.Styling
	Focus     output.Styling
	Unfocus   output.Styling
	Highlight output.Styling
	Ellipsis  output.Styling
	Controls  output.Styling
}

// DefaultTheme is used when a Config does not supply one.
var DefaultTheme = Theme{
	Title:     output.Styling{Color: output.ColorBrightMagenta},
	Focus:     output.Styling{Color: output.ColorBrightCyan},
	Highlight: output.Styling{Style: output.StyleReverse},
	Ellipsis:  output.Styling{Style: output.StyleDim},
	Controls:  output.Styling{Style: output.StyleDim},
}

// Config controls optional menu behavior. The zero value shows a plain
// selection list.
type Config[T Renderable] struct {
	// DefaultIndex is the item focused initially, clamped into range.
	DefaultIndex int

	// Filter reports whether an item matches the query text. Setting it
	// enables the text filter field after the menu title.
	Filter func(item T, query string) bool

	// Theme overrides DefaultTheme.
	Theme *Theme

	// Console overrides the real terminal. Only tests should set this.
	Console terminal.Console
}

// ErrCancelled is returned when the user dismisses a menu with Escape.
var ErrCancelled = errors.New(errors.SelectionCancelled, "Selection cancelled")

// IsCancelled reports whether err is a menu cancellation.
func IsCancelled(err error) bool {
	return errors.IsType(err, errors.SelectionCancelled)
}

const (
	controlsText       = "[↑↓: select] [Enter: confirm] [Esc: cancel]"
	filterControlsText = " [Type to search]"

	// Lines of context kept above the menu when it fills the screen.
	topMargin = 1
	// Lines reserved for the controls hint below the items.
	controlLines = 1
	// Rows kept between the focused item and the viewport edge.
	scrollMargin = 1
)

// Show displays an interactive menu and returns the selected item. It blocks
// until the user confirms with Enter or cancels with Escape; cancellation is
// reported as ErrCancelled. The terminal state is restored on every exit
// path, including panics from a caller-supplied filter.
func Show[T Renderable](title string, items []T, cfg Config[T]) (T, error) {
	return newMenu(title, items, cfg).show()
}

type menu[T Renderable] struct {
	title     string
	items     []T
	filter    func(T, string) bool
	theme     Theme
	console   terminal.Console
	formatter *output.Formatter

	// filterIdx holds the indices into items that pass the current filter.
	// Tracking indices rather than values keeps focus attached to the same
	// item across filter edits.
	filterIdx   []int
	filterText  string
	cursorIndex int
	focusIndex  int
	scrollIndex int

	topRow           int
	numTitleLines    int
	lastTitleLineLen int
}

func newMenu[T Renderable](title string, items []T, cfg Config[T]) *menu[T] {
	console := cfg.Console
	if console == nil {
		console = terminal.Default()
	}

	theme := DefaultTheme
	if cfg.Theme != nil {
		theme = *cfg.Theme
	}

	m := &menu[T]{
		title:      title,
		items:      items,
		filter:     cfg.Filter,
		theme:      theme,
		console:    console,
		formatter:  output.NewFormatter(console.Writer()),
		focusIndex: cfg.DefaultIndex,
	}

	lines := strings.Split(title, "\n")
	m.numTitleLines = len(lines)
	m.lastTitleLineLen = 1 + runewidth.StringWidth(lines[len(lines)-1])

	if m.displayCount() == m.maxItemsPerPage() {
		m.topRow = topMargin
	} else {
		row, _, err := console.CursorPos()
		if err != nil {
			row = 0
		}
		_, height := console.Size()
		m.topRow = min(row, height-m.menuHeight())
	}

	m.applyFilter()
	m.clampFocus()
	return m
}

func (m *menu[T]) show() (T, error) {
	var zero T

	restoreVT, err := m.console.EnableVT()
	if err != nil {
		return zero, errors.Wrap(err, errors.NotInteractive, "Could not configure the terminal")
	}
	defer restoreVT()

	m.console.HideCursor()
	defer m.console.ShowCursor()
	defer m.eraseControls()

	m.console.SetCursorPos(m.topRow, 0)

	for {
		m.scrollIndex = m.scrollTarget()
		m.render()
		m.moveCursorToFilter()

		if m.hasFilter() {
			m.console.ShowCursor()
		}

		confirmed, err := m.handleKey()
		if err != nil {
			return zero, err
		}
		if confirmed && m.focusIndex >= 0 && m.focusIndex < len(m.filterIdx) {
			return m.items[m.filterIdx[m.focusIndex]], nil
		}

		if m.hasFilter() {
			m.console.HideCursor()
		}
		m.console.SetCursorPos(m.topRow, 0)
	}
}

func (m *menu[T]) hasFilter() bool {
	return m.filter != nil
}

// handleKey processes one key of input. It returns true when the user pressed
// Enter, and ErrCancelled when the user pressed Escape.
func (m *menu[T]) handleKey() (bool, error) {
	key, err := m.console.ReadKey()
	if err != nil {
		return false, errors.Wrap(err, errors.NotInteractive, "Could not read terminal input")
	}

	switch key {
	case terminal.KeyTab:
		// Reserved.

	case terminal.KeyReturn:
		return true, nil
	case terminal.KeyEscape:
		return false, ErrCancelled

	case terminal.KeyUp:
		m.focusIndex--
	case terminal.KeyDown:
		m.focusIndex++

	case terminal.KeyPageUp:
		m.focusIndex -= m.maxItemsPerPage()
	case terminal.KeyPageDown:
		m.focusIndex += m.maxItemsPerPage()

	case terminal.KeyHome:
		m.focusIndex = 0
	case terminal.KeyEnd:
		m.focusIndex = len(m.filterIdx) - 1

	case terminal.KeyLeft:
		m.cursorIndex--
	case terminal.KeyRight:
		m.cursorIndex++

	case terminal.KeyBackspace:
		m.handleBackspace()
	case terminal.KeyDelete:
		m.handleDelete()

	default:
		m.handleText(key)
	}

	m.clampCursor()
	m.clampFocus()
	return false, nil
}

func (m *menu[T]) handleBackspace() {
	if !m.hasFilter() || m.cursorIndex == 0 {
		return
	}

	m.filterText = splice(m.filterText, m.cursorIndex-1, 1, "")
	m.cursorIndex--
	m.applyFilter()
}

func (m *menu[T]) handleDelete() {
	if !m.hasFilter() || m.cursorIndex == len([]rune(m.filterText)) {
		return
	}

	m.filterText = splice(m.filterText, m.cursorIndex, 1, "")
	m.applyFilter()
}

func (m *menu[T]) handleText(key terminal.Key) {
	if !m.hasFilter() || !key.Printable() {
		return
	}

	text := string(key)
	m.filterText = splice(m.filterText, m.cursorIndex, 0, text)
	m.cursorIndex += len([]rune(text))
	m.applyFilter()
}

// applyFilter recomputes the visible item indices, keeping focus on the
// previously focused item when it survives the filter. An empty filter text
// shows every item.
func (m *menu[T]) applyFilter() {
	if !m.hasFilter() {
		m.filterIdx = allIndices(len(m.items))
		m.clampFocus()
		return
	}

	oldFocus := -1
	if m.focusIndex >= 0 && m.focusIndex < len(m.filterIdx) {
		oldFocus = m.filterIdx[m.focusIndex]
	}

	var idx []int
	for i, item := range m.items {
		if m.filterText == "" || m.filter(item, m.filterText) {
			idx = append(idx, i)
		}
	}
	m.filterIdx = idx

	for pos, i := range idx {
		if i == oldFocus {
			m.focusIndex = pos
			break
		}
	}
	m.clampFocus()
}

func (m *menu[T]) clampFocus() {
	m.focusIndex = min(max(0, m.focusIndex), len(m.filterIdx)-1)
}

func (m *menu[T]) clampCursor() {
	m.cursorIndex = min(max(0, m.cursorIndex), len([]rune(m.filterText)))
}

// maxItemsPerPage is the number of item rows that fit in the terminal.
func (m *menu[T]) maxItemsPerPage() int {
	_, height := m.console.Size()
	return height - topMargin - controlLines - m.numTitleLines
}

// displayCount is the number of item rows the menu occupies. It is derived
// from the unfiltered item count so the menu does not jump around as the
// filter changes.
func (m *menu[T]) displayCount() int {
	return min(len(m.items), m.maxItemsPerPage())
}

func (m *menu[T]) menuHeight() int {
	return m.displayCount() + controlLines + m.numTitleLines
}

// scrollTarget slides the viewport only when focus comes within scrollMargin
// rows of its edge, rather than recentering on every move.
func (m *menu[T]) scrollTarget() int {
	itemCount := len(m.filterIdx)
	displayCount := m.displayCount()

	if itemCount < displayCount {
		return 0
	}

	first := m.scrollIndex
	last := first + displayCount - 1

	if m.focusIndex <= first+scrollMargin {
		return max(0, m.focusIndex-1-scrollMargin)
	}
	if m.focusIndex >= last-scrollMargin {
		end := min(itemCount-1, m.focusIndex+1+scrollMargin)
		return end - (displayCount - 1)
	}

	return m.scrollIndex
}

func (m *menu[T]) render() {
	w := m.console.Writer()
	width, _ := m.console.Size()

	titleLine := output.Styled(m.title, m.theme.Title).
		AppendString(" ").
		Append(output.Styled(m.filterText, m.theme.Filter))
	fmt.Fprintf(w, "%s\x1b[K\n", m.formatter.Render(titleLine))

	displayCount := m.displayCount()
	for row := 0; row < displayCount; row++ {
		if row == 0 && len(m.filterIdx) == 0 {
			placeholder := output.Styled("No matching items", output.Styling{Style: output.StyleDim})
			fmt.Fprintf(w, "%s\x1b[K\n", m.formatter.Render(placeholder))
			continue
		}

		index := m.scrollIndex + row
		if index >= len(m.filterIdx) {
			fmt.Fprint(w, "\x1b[K\n")
			continue
		}

		atStart := m.scrollIndex == 0
		atEnd := m.scrollIndex+displayCount >= len(m.filterIdx)
		showMore := (!atStart && row == 0) || (!atEnd && row == displayCount-1)

		m.renderItem(m.items[m.filterIdx[index]], index == m.focusIndex, showMore, width)
	}

	controls := controlsText
	if m.hasFilter() {
		controls += filterControlsText
	}
	controlsLine := output.Styled(controls, m.theme.Controls).Truncate(width)
	fmt.Fprintf(w, "%s\x1b[K", m.formatter.Render(controlsLine))
}

func (m *menu[T]) renderItem(item T, focused, showMore bool, width int) {
	style := m.theme.Unfocus
	if focused {
		style = m.theme.Focus
	}
	if showMore {
		style = m.theme.Ellipsis
	}

	indent := "  "
	if focused {
		indent = "> "
	}

	var text output.Text
	if showMore {
		text = output.Plain("...")
	} else {
		text = item.Render().HighlightAll(m.filterText, m.theme.Highlight)
	}

	line := output.Plain(indent).Append(text).Restyle(style).Truncate(width)
	fmt.Fprintf(m.console.Writer(), "%s\x1b[K\n", m.formatter.Render(line))
}

// moveCursorToFilter places the cursor inside the filter text field at the
// end of the last title line.
func (m *menu[T]) moveCursorToFilter() {
	row := m.topRow + m.numTitleLines - 1
	col := m.lastTitleLineLen + m.cursorIndex
	m.console.SetCursorPos(row, col)
}

// eraseControls clears the controls hint and parks the cursor just past the
// menu area.
func (m *menu[T]) eraseControls() {
	_, height := m.console.Size()

	m.console.SetCursorPos(height-1, 0)
	fmt.Fprint(m.console.Writer(), "\x1b[K\n")

	m.console.SetCursorPos(m.topRow+len(m.filterIdx)+1, 0)
}

// splice removes count runes at index and inserts text in their place.
func splice(s string, index, count int, insert string) string {
	runes := []rune(s)

	var sb strings.Builder
	sb.WriteString(string(runes[:index]))
	sb.WriteString(insert)
	sb.WriteString(string(runes[index+count:]))
	return sb.String()
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
