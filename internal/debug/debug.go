// Package debug carries the tracker's diagnostic output: a stderr trace
// enabled by CHAINLINK_DEBUG or --verbose, quiet-aware normal output, and an
// append-only events log in the project directory.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	enabled     = os.Getenv("CHAINLINK_DEBUG") != ""
	verboseMode = false
	quietMode   = false

	// stderr and stdout are swapped out by tests.
	stderr io.Writer = os.Stderr
	stdout io.Writer = os.Stdout

	logMutex sync.Mutex
)

func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose enables verbose/debug output
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet enables quiet mode (suppress non-essential output)
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quietMode
}

// Logf writes a trace line to stderr when debugging is on.
func Logf(format string, args ...interface{}) {
	if Enabled() {
		logMutex.Lock()
		defer logMutex.Unlock()
		fmt.Fprintf(stderr, "[debug] "+format, args...)
	}
}

// PrintNormal prints output unless quiet mode is enabled
func PrintNormal(format string, args ...interface{}) {
	if !quietMode {
		fmt.Fprintf(stdout, format, args...)
	}
}

// PrintlnNormal prints a line unless quiet mode is enabled
func PrintlnNormal(args ...interface{}) {
	if !quietMode {
		fmt.Fprintln(stdout, args...)
	}
}

// LogEvent appends one line to <dir>/events.log.
// Format: TIMESTAMP|EVENT_CODE|ISSUE_ID|DETAILS
//
// Failures are swallowed: the events log must never break a command.
func LogEvent(dir, eventCode string, issueID int64, details string) {
	if dir == "" {
		return
	}

	issue := "none"
	if issueID > 0 {
		issue = fmt.Sprintf("#%d", issueID)
	}
	entry := fmt.Sprintf("%s|%s|%s|%s\n",
		time.Now().UTC().Format(time.RFC3339), eventCode, issue, details)

	logMutex.Lock()
	defer logMutex.Unlock()

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return
	}
	f, err := os.OpenFile(filepath.Join(dir, "events.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()

	_, _ = f.WriteString(entry)
}
