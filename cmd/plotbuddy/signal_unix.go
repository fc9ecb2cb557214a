//go:build !windows

package main

import (
	"os"
	"syscall"
)

// terminationSignals stop the REPL and the metrics listener.
var terminationSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
