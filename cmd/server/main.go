// Package main implements the entry point for the TaskPulse API server,
// which serves the task API and pushes task events to connected clients
// over websockets.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Version information, set during build.
var (
	version = "dev"
	commit  = "none"
)

var errorPrinter = color.New(color.FgRed, color.Bold)

func main() {
	cmd := newRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s)", version, commit)

	if err := cmd.Execute(); err != nil {
		errorPrinter.Fprintf(os.Stderr, "Error: ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
