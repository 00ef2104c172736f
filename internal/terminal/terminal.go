// Package terminal provides raw keyboard input and cursor control for
// VT100-compatible terminals, with POSIX termios and Windows console backends.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Key is a normalized key code. Special keys use the same byte sequences on
// every platform so dispatch logic never needs to care about the OS.
type Key string

const (
	KeyEscape    Key = "\x1b"
	KeyBackspace Key = "\b"
	KeyReturn    Key = "\n"
	KeyTab       Key = "\t"
	KeyUp        Key = "\x1b[A"
	KeyDown      Key = "\x1b[B"
	KeyRight     Key = "\x1b[C"
	KeyLeft      Key = "\x1b[D"
	KeyEnd       Key = "\x1b[F"
	KeyHome      Key = "\x1b[H"
	KeyDelete    Key = "\x1b[3~"
	KeyPageUp    Key = "\x1b[5~"
	KeyPageDown  Key = "\x1b[6~"
)

// Printable reports whether the key carries regular text input rather than a
// control or navigation code.
func (k Key) Printable() bool {
	if k == "" {
		return false
	}
	for _, r := range string(k) {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// Console is the terminal surface a menu draws on. Implementations other than
// Default exist only for tests.
type Console interface {
	// ReadKey blocks until a key is pressed and returns its normalized code.
	// It may return an empty Key for input that has no mapping.
	ReadKey() (Key, error)

	// CursorPos queries the terminal for the cursor position. Coordinates
	// are 0-based.
	CursorPos() (row, col int, err error)

	// SetCursorPos moves the cursor. Coordinates are 0-based.
	SetCursorPos(row, col int)

	HideCursor()
	ShowCursor()

	// Size returns the terminal dimensions in columns and rows.
	Size() (width, height int)

	// EnableVT turns on escape sequence processing for the duration of the
	// returned restore function. A no-op on POSIX.
	EnableVT() (restore func(), err error)

	Writer() io.Writer
}

type console struct {
	in  *os.File
	out *os.File
}

// Default returns a Console backed by stdin and stdout.
func Default() Console {
	return &console{in: os.Stdin, out: os.Stdout}
}

// IsInteractive reports whether stdin and stdout are attached to a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func (c *console) ReadKey() (Key, error) {
	return readKey(c.in)
}

func (c *console) CursorPos() (int, int, error) {
	restore, err := disableEcho(c.in)
	if err != nil {
		return 0, 0, err
	}
	defer restore()

	fmt.Fprint(c.out, "\x1b[6n")

	var reply []byte
	buf := make([]byte, 1)
	for {
		n, err := c.in.Read(buf)
		if err != nil {
			return 0, 0, err
		}
		if n == 0 {
			continue
		}
		reply = append(reply, buf[0])
		if buf[0] == 'R' {
			break
		}
	}

	return parseCursorReport(string(reply))
}

// parseCursorReport decodes a device status report reply of the form
// "ESC[row;colR" with 1-based coordinates into 0-based ones.
func parseCursorReport(reply string) (int, int, error) {
	reply = strings.TrimSuffix(reply, "R")
	if i := strings.LastIndex(reply, "\x1b["); i >= 0 {
		reply = reply[i+2:]
	}

	rowText, colText, ok := strings.Cut(reply, ";")
	if !ok {
		return 0, 0, fmt.Errorf("malformed cursor report: %q", reply)
	}

	row, err := strconv.Atoi(rowText)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed cursor report row: %q", rowText)
	}
	col, err := strconv.Atoi(colText)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed cursor report column: %q", colText)
	}

	return row - 1, col - 1, nil
}

func (c *console) SetCursorPos(row, col int) {
	fmt.Fprintf(c.out, "\x1b[%d;%dH", row+1, col+1)
}

func (c *console) HideCursor() {
	fmt.Fprint(c.out, "\x1b[?25l")
}

func (c *console) ShowCursor() {
	fmt.Fprint(c.out, "\x1b[?25h")
}

func (c *console) Size() (int, int) {
	if w, h, err := term.GetSize(int(c.out.Fd())); err == nil && w > 0 && h > 0 {
		return w, h
	}
	return 80, 24
}

func (c *console) EnableVT() (func(), error) {
	return enableVT(c.out)
}

func (c *console) Writer() io.Writer {
	return c.out
}

// normalizeKey maps raw input bytes to a Key. Carriage return and both
// backspace encodings are folded into their canonical constants.
func normalizeKey(buf []byte) Key {
	if len(buf) == 1 {
		switch buf[0] {
		case '\r':
			return KeyReturn
		case 0x7f, 0x08:
			return KeyBackspace
		}
	}
	return Key(buf)
}
