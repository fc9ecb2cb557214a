//go:build windows

package main

import (
	"os"
)

// terminationSignals stop the REPL and the metrics listener. Windows only
// delivers os.Interrupt (Ctrl+C).
var terminationSignals = []os.Signal{os.Interrupt}
