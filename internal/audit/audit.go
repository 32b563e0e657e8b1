// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audit keeps an append-only record of account and data changes.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// DefaultMaxFileSize is the default max file size before rotation (5MB).
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

// =============================================================================
// EVENT
// =============================================================================

// Event is a single audit entry.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Type      string            `json:"type"`
	UserID    string            `json:"user_id,omitempty"`
	Target    string            `json:"target,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ToLogLine formats the event as one pipe-separated line.
func (e *Event) ToLogLine() string {
	status := "SUCCESS"
	if !e.Success {
		status = "FAILURE"
		if e.Error != "" {
			status = "ERROR: " + e.Error
		}
	}

	keys := make([]string, 0, len(e.Metadata))
	for k := range e.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+e.Metadata[k])
	}

	return fmt.Sprintf("%s | %s | %s | %s | %s | %s",
		e.Timestamp.Format("2006-01-02 15:04:05"),
		e.Type,
		e.UserID,
		e.Target,
		status,
		strings.Join(pairs, " "),
	)
}

// =============================================================================
// REDACTION
// =============================================================================

type redactor struct {
	pattern *regexp.Regexp
	replace string
}

var redactors = []redactor{
	{regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-_.]+`), "Bearer [TOKEN_REDACTED]"},
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`), "[JWT_REDACTED]"},
	{regexp.MustCompile(`AIza[0-9A-Za-z_\-]{35}`), "[FIREBASE_KEY_REDACTED]"},
	{regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`), "[OPENAI_KEY_REDACTED]"},
	{regexp.MustCompile(`(?i)(password|passwd|pwd|refresh_token)\s*[=:]\s*\S+`), "[SECRET_REDACTED]"},
}

// Redact replaces tokens, keys and passwords in s.
func Redact(s string) string {
	for _, r := range redactors {
		s = r.pattern.ReplaceAllString(s, r.replace)
	}
	return s
}

// =============================================================================
// LOGGER
// =============================================================================

// Logger appends events to a file, rotating it when it grows past the
// size limit. A nil *Logger discards everything.
type Logger struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	maxSize int64
	enabled bool
	now     func() time.Time
}

// New opens (creating if needed) the audit log at path.
func New(path string, maxSize int64) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.Wrap(err, "failed to create audit log directory")
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open audit log file")
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Logger{path: path, file: file, maxSize: maxSize, enabled: true, now: time.Now}, nil
}

// Log writes event, filling in the timestamp and redacting every field.
func (l *Logger) Log(event Event) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || l.file == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now()
	}
	event.Target = Redact(event.Target)
	event.Error = Redact(event.Error)
	if len(event.Metadata) > 0 {
		md := make(map[string]string, len(event.Metadata))
		for k, v := range event.Metadata {
			md[k] = Redact(v)
		}
		event.Metadata = md
	}

	if err := l.checkRotationLocked(); err != nil {
		return err
	}
	if _, err := l.file.WriteString(event.ToLogLine() + "\n"); err != nil {
		return errors.Wrap(err, "failed to write audit log")
	}
	return nil
}

// LogEvent records a successful event with metadata.
func (l *Logger) LogEvent(eventType, userID string, metadata map[string]string) error {
	return l.Log(Event{Type: eventType, UserID: userID, Success: true, Metadata: metadata})
}

// LogAction records the outcome of an operation on target.
func (l *Logger) LogAction(eventType, userID, target string, err error) error {
	ev := Event{Type: eventType, UserID: userID, Target: target, Success: err == nil}
	if err != nil {
		ev.Error = err.Error()
	}
	return l.Log(ev)
}

// SetEnabled turns logging on or off.
func (l *Logger) SetEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.enabled = enabled
	l.mu.Unlock()
}

// Path returns the log file path.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// =============================================================================
// FILE ROTATION
// =============================================================================

// Rotate moves the current file aside with a timestamp suffix.
func (l *Logger) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rotateLocked()
}

func (l *Logger) rotateLocked() error {
	if l.file == nil {
		return nil
	}
	if err := l.file.Close(); err != nil {
		return errors.Wrap(err, "failed to close audit log for rotation")
	}

	ext := filepath.Ext(l.path)
	rotated := fmt.Sprintf("%s_%s%s", strings.TrimSuffix(l.path, ext), l.now().Format("20060102_150405.000"), ext)
	if err := os.Rename(l.path, rotated); err != nil {
		l.file, _ = os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		return errors.Wrap(err, "failed to rotate audit log")
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return errors.Wrap(err, "failed to create new audit log after rotation")
	}
	l.file = file
	return nil
}

func (l *Logger) checkRotationLocked() error {
	info, err := l.file.Stat()
	if err != nil {
		return nil
	}
	if info.Size() >= l.maxSize {
		return l.rotateLocked()
	}
	return nil
}

// =============================================================================
// GLOBAL
// =============================================================================

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// Default returns the process-wide logger, which may be nil.
func Default() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(l *Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}
