//go:build !windows

package terminal

import (
	"os"

	"golang.org/x/sys/unix"
)

// disableEcho turns off local echo and canonical input processing, returning
// a function that restores the previous attributes. Signal generation stays
// enabled so the tty still delivers SIGINT for CTRL+C.
func disableEcho(f *os.File) (func(), error) {
	fd := int(f.Fd())

	old, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, err
	}

	attr := *old
	attr.Lflag &^= unix.ECHO | unix.ICANON
	attr.Cc[unix.VMIN] = 1
	attr.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &attr); err != nil {
		return nil, err
	}

	return func() {
		unix.IoctlSetTermios(fd, ioctlSetTermios, old)
	}, nil
}

// enableVT is a no-op restore pair. Unix terminals are assumed to support VT
// escape sequences.
func enableVT(_ *os.File) (func(), error) {
	return func() {}, nil
}

// readKey blocks until a key is pressed and returns its normalized code.
// Escape sequences for special keys arrive as a single read in raw mode.
func readKey(f *os.File) (Key, error) {
	restore, err := disableEcho(f)
	if err != nil {
		return "", err
	}
	defer restore()

	buf := make([]byte, 8)
	n, err := f.Read(buf)
	if err != nil {
		return "", err
	}

	if n == 1 && buf[0] == 0x03 {
		// Reachable only when the caller has ISIG disabled.
		unix.Kill(unix.Getpid(), unix.SIGINT)
		return "", nil
	}

	return normalizeKey(buf[:n]), nil
}
