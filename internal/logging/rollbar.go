// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"os"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
)

// RollbarLogger forwards warnings and errors to Rollbar and writes every
// level through a StdLogger. Debug and Info stay local.
type RollbarLogger struct {
	std *StdLogger
}

var _ Logger = (*RollbarLogger)(nil)

// NewRollbarLogger configures the rollbar client from opts.
func NewRollbarLogger(std *StdLogger, opts Options) *RollbarLogger {
	host, _ := os.Hostname()

	rollbar.SetToken(opts.RollbarToken)
	rollbar.SetEnvironment(opts.Environment)
	rollbar.SetServerHost(host)
	rollbar.SetCodeVersion(opts.CodeVersion)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

// Enable turns remote reporting on or off.
func (l *RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Flush blocks until queued events have been sent.
func (l *RollbarLogger) Flush() {
	rollbar.Wait()
}

// prepare sets the reported person from a Person argument and returns
// msg followed by the remaining args, the shape rollbar's level funcs take.
func (l *RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var personSet bool
	out := make([]interface{}, 0, len(args)+1)
	out = append(out, msg)
	for _, arg := range args {
		if p, ok := arg.(Person); ok {
			if !personSet {
				rollbar.SetPerson(p.ID, p.Name, p.Email)
				personSet = true
			}
			continue
		}
		out = append(out, arg)
	}
	if !personSet {
		rollbar.ClearPerson()
	}
	return out
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	l.std.Debug(msg, args...)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	l.std.Info(msg, args...)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.std.Warn(msg, args...)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.std.Error(msg, args...)
}
