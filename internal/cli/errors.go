// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jeranaias/ptutor-tui/internal/api"
	"github.com/jeranaias/ptutor-tui/internal/auth"
	"github.com/jeranaias/ptutor-tui/internal/config"
	"github.com/jeranaias/ptutor-tui/internal/validate"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	// ExitUsageError covers bad arguments and rejected form input.
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitAuthError    = 4
	ExitNetworkError = 5
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError is a failed command with context.
type CommandError struct {
	Command string
	Action  string
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError is an unknown command, a missing argument or a bad flag.
type UsageError struct {
	Command string
	Message string
}

func (e *UsageError) Error() string {
	if e.Command == "" {
		return e.Message
	}
	return e.Command + ": " + e.Message
}

func usageErrorf(command, format string, args ...interface{}) error {
	return &UsageError{Command: command, Message: fmt.Sprintf(format, args...)}
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *UsageError
	var fields validate.FieldErrors
	var authErr *auth.Error
	var cfgErrs config.ValidateErrors
	var apiErr *api.Error
	var netErr net.Error

	switch {
	case errors.As(err, &usage), errors.As(err, &fields):
		return ExitUsageError
	case errors.Is(err, auth.ErrNotSignedIn),
		errors.Is(err, auth.ErrSessionExpired),
		errors.Is(err, auth.ErrNoAPIKey),
		errors.Is(err, api.ErrUnauthorized),
		errors.As(err, &authErr):
		return ExitAuthError
	case errors.Is(err, config.ErrInvalid), errors.As(err, &cfgErrs):
		return ExitConfigError
	case errors.As(err, &apiErr), errors.As(err, &netErr), errors.Is(err, context.DeadlineExceeded):
		return ExitNetworkError
	default:
		return ExitGeneralError
	}
}

// FormatError renders err for stderr, adding a hint where one helps.
func FormatError(err error) string {
	msg := "Error: " + err.Error()
	switch ExitCode(err) {
	case ExitAuthError:
		if auth.RequiresSignIn(err) || errors.Is(err, api.ErrUnauthorized) {
			msg += "\nRun 'ptutor signin' to sign in."
		}
	case ExitUsageError:
		var usage *UsageError
		if errors.As(err, &usage) && usage.Command != "" {
			msg += fmt.Sprintf("\nRun 'ptutor help %s' for usage.", usage.Command)
		}
	case ExitNetworkError:
		if !strings.Contains(msg, "HTTP") {
			msg += "\nIs the backend running? Check api.base_url with 'ptutor config get api.base_url'."
		}
	}
	return msg
}
