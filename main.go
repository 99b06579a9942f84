package main

import (
	"os"
	"runtime"
)

func init() {
	// The tray needs the main thread on macOS
	runtime.LockOSThread()
}

func main() {
	if err := execute(newRootCmd()); err != nil {
		os.Exit(1)
	}
}
