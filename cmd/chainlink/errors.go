package main

import (
	"fmt"
	"os"

	"github.com/chainlink-tracker/chainlink/internal/storage"
)

// FatalError writes an error message to stderr and exits with code 1.
func FatalError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// WarnError writes a warning message to stderr and returns.
// Use this for auxiliary steps that must not fail the command.
func WarnError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

// errorCode classifies err for --json error output.
func errorCode(err error) string {
	switch {
	case storage.IsNotFound(err):
		return "not_found"
	case storage.IsInvalidArgument(err):
		return "invalid_argument"
	case storage.IsConflict(err):
		return "conflict"
	case storage.IsBusy(err):
		return "busy"
	default:
		return ""
	}
}
