//go:build windows

package main

import (
	"os"

	"golang.org/x/sys/windows"
)

// enableANSIConsole enables ANSI escape processing so the spinner and
// colored status lines render on conhost.
func enableANSIConsole() {
	for _, stream := range []*os.File{os.Stdout, os.Stderr} {
		handle := windows.Handle(stream.Fd())
		var mode uint32
		if err := windows.GetConsoleMode(handle, &mode); err == nil {
			mode |= windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING
			_ = windows.SetConsoleMode(handle, mode)
		}
	}
}
