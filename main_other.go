//go:build !linux

package main

import (
	"os"
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	// The GUI takes the main thread itself; everything else shares it with
	// the hotkey event loop.
	if wantsGUI(os.Args[1:]) {
		os.Exit(execute())
	}
	code := 0
	mainthread.Init(func() { code = execute() })
	os.Exit(code)
}
