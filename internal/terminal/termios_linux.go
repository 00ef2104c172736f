package terminal

import "golang.org/x/sys/unix"

// TCSETSF drains output and flushes pending input before applying, matching
// tcsetattr with TCSAFLUSH.
const (
	ioctlGetTermios = unix.TCGETS
	ioctlSetTermios = unix.TCSETSF
)
