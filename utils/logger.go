package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Logger provides structured, leveled logging throughout the application.
// Messages go to the log file; with verbose enabled they are mirrored to
// stdout (errors to stderr).
type Logger struct {
	file  *os.File
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
	debug *log.Logger
}

// NewLogger creates a Logger writing to the given log file. An empty path
// skips file logging (console only), which is also what tests use.
func NewLogger(path string, verbose bool) (*Logger, error) {
	var file *os.File
	var out io.Writer
	var errOut io.Writer

	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("logger: open log file %q: %w", path, err)
		}
		file = f
		out = f
		errOut = f
		if verbose {
			out = io.MultiWriter(f, os.Stdout)
			errOut = io.MultiWriter(f, os.Stderr)
		}
	} else {
		out = os.Stdout
		errOut = os.Stderr
	}

	return &Logger{
		file:  file,
		info:  log.New(out, "", 0),
		warn:  log.New(out, "", 0),
		err:   log.New(errOut, "", 0),
		debug: log.New(out, "", 0),
	}, nil
}

// Close closes the underlying log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) Info(format string, args ...any) {
	l.info.Printf(fmt.Sprintf("[%s] <INFO> %s", l.timestamp(), format), args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.warn.Printf(fmt.Sprintf("[%s] <WARN> %s", l.timestamp(), format), args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.err.Printf(fmt.Sprintf("[%s] <ERROR> %s", l.timestamp(), format), args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.debug.Printf(fmt.Sprintf("[%s] <DEBUG> %s", l.timestamp(), format), args...)
}
