// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides the application logger.
//
// The dashboard owns the terminal, so nothing may be written to stdout or
// stderr while it runs. Log lines go to the debug log file when debug
// logging is enabled and are discarded otherwise. Warnings and errors are
// additionally forwarded to Rollbar when a token is configured.
//
// # Usage
//
//	logger, closer, err := logging.Open(cfg)
//	defer closer.Close()
//	logging.SetDefault(logger)
//
//	logging.Default().Error("Failed to fetch tutors", err)
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Logger is implemented by every logger in this package.
//
// Args are printed after msg. An error argument is reported as the error
// of the event; a Person argument identifies the signed-in user and is not
// printed.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Person identifies the signed-in user in reported events.
type Person struct {
	ID    string
	Name  string
	Email string
}

// Options configures Open.
type Options struct {
	// Debug enables the debug log file at Path.
	Debug bool
	Path  string
	// Prefix is prepended to every line, e.g. "TUI : ".
	Prefix string

	RollbarToken string
	Environment  string
	CodeVersion  string
}

// =============================================================================
// STD LOGGER
// =============================================================================

// StdLogger writes level-tagged lines through a standard library logger.
type StdLogger struct {
	std   *log.Logger
	debug bool
}

var _ Logger = (*StdLogger)(nil)

// NewStdLogger wraps std. Debug lines are dropped unless debug is set.
func NewStdLogger(std *log.Logger, debug bool) *StdLogger {
	return &StdLogger{std: std, debug: debug}
}

// Discard returns a logger that writes nothing.
func Discard() *StdLogger {
	return NewStdLogger(log.New(io.Discard, "", 0), false)
}

func (l *StdLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("%s %s", level, msg)
	for _, arg := range args {
		if _, ok := arg.(Person); ok {
			continue
		}
		l.std.Printf("%s   %+v", level, arg)
	}
}

func (l *StdLogger) Debug(msg string, args ...interface{}) {
	if l.debug {
		l.print("DEBUG", msg, args)
	}
}

func (l *StdLogger) Info(msg string, args ...interface{})  { l.print("INFO ", msg, args) }
func (l *StdLogger) Warn(msg string, args ...interface{})  { l.print("WARN ", msg, args) }
func (l *StdLogger) Error(msg string, args ...interface{}) { l.print("ERROR", msg, args) }

// =============================================================================
// OPEN / DEFAULT
// =============================================================================

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the logger described by opts. The returned closer flushes
// pending Rollbar events and closes the log file.
func Open(opts Options) (Logger, io.Closer, error) {
	out := io.Discard
	var file *os.File
	if opts.Debug && opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0700); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("open debug log: %w", err)
		}
		file = f
		out = f
	}

	std := log.New(out, opts.Prefix, log.LstdFlags|log.Lmicroseconds)
	base := NewStdLogger(std, opts.Debug)

	if opts.RollbarToken == "" {
		if file == nil {
			return base, nopCloser{}, nil
		}
		return base, file, nil
	}

	rl := NewRollbarLogger(base, opts)
	rl.Enable(true)
	return rl, closerFunc(func() error {
		rl.Flush()
		if file != nil {
			return file.Close()
		}
		return nil
	}), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = Discard()
)

// Default returns the process-wide logger.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger. A nil logger discards.
func SetDefault(l Logger) {
	if l == nil {
		l = Discard()
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}
