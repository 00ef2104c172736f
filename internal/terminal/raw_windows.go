package terminal

import (
	"os"

	"golang.org/x/sys/windows"
)

var (
	msvcrt    = windows.NewLazySystemDLL("msvcrt.dll")
	procGetch = msvcrt.NewProc("_getch")
)

const vtOutputFlags = windows.ENABLE_PROCESSED_OUTPUT |
	windows.ENABLE_WRAP_AT_EOL_OUTPUT |
	windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING

// specialKeys maps the second byte of an extended key read to the normalized
// escape sequence constants used on POSIX.
var specialKeys = map[byte]Key{
	71: KeyHome,
	72: KeyUp,
	73: KeyPageUp,
	75: KeyLeft,
	77: KeyRight,
	79: KeyEnd,
	80: KeyDown,
	81: KeyPageDown,
	83: KeyDelete,
}

// getch reads one raw byte from the console without echo or buffering.
func getch() byte {
	r, _, _ := procGetch.Call()
	return byte(r)
}

// readKey blocks until a key is pressed and returns its normalized code.
// Extended keys arrive as a 0x00 or 0xe0 lead byte followed by a key code.
func readKey(_ *os.File) (Key, error) {
	b := getch()

	switch b {
	case 0x03: // CTRL+C
		windows.GenerateConsoleCtrlEvent(windows.CTRL_C_EVENT, 0)
		return "", nil
	case '\r':
		return KeyReturn, nil
	case 0x00, 0xe0:
		return specialKeys[getch()], nil
	case 0x7f, 0x08:
		return KeyBackspace, nil
	}

	return Key([]byte{b}), nil
}

// disableEcho clears the console input mode, returning a function that
// restores the previous mode.
func disableEcho(f *os.File) (func(), error) {
	handle := windows.Handle(f.Fd())

	var old uint32
	if err := windows.GetConsoleMode(handle, &old); err != nil {
		return nil, err
	}
	if err := windows.SetConsoleMode(handle, 0); err != nil {
		return nil, err
	}

	return func() {
		windows.SetConsoleMode(handle, old)
	}, nil
}

// enableVT turns on virtual terminal processing for the console output
// handle, returning a function that restores the previous mode.
func enableVT(f *os.File) (func(), error) {
	handle := windows.Handle(f.Fd())

	var old uint32
	if err := windows.GetConsoleMode(handle, &old); err != nil {
		return nil, err
	}
	if err := windows.SetConsoleMode(handle, old|vtOutputFlags); err != nil {
		return nil, err
	}

	return func() {
		windows.SetConsoleMode(handle, old)
	}, nil
}
