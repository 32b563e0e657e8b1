// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNotSignedIn is returned when an operation needs a signed-in user.
	ErrNotSignedIn = errors.New("not signed in")

	// ErrSessionExpired is matched by errors meaning the refresh token no
	// longer works and the user must sign in again.
	ErrSessionExpired = errors.New("session expired, please sign in again")

	// ErrNoAPIKey is returned when no Firebase API key is configured.
	ErrNoAPIKey = errors.New("firebase api key is not configured (set FIREBASE_API_KEY)")
)

// Error is a failure reported by Firebase Authentication.
type Error struct {
	Status int
	// Code is Firebase's error code, e.g. "EMAIL_NOT_FOUND".
	Code string
	// Detail is any text Firebase appended after the code.
	Detail string
}

// friendly maps Firebase error codes to text shown to the user.
var friendly = map[string]string{
	"EMAIL_NOT_FOUND":             "Invalid email or password",
	"INVALID_PASSWORD":            "Invalid email or password",
	"INVALID_LOGIN_CREDENTIALS":   "Invalid email or password",
	"USER_DISABLED":               "This account has been disabled",
	"EMAIL_EXISTS":                "Email already in use",
	"WEAK_PASSWORD":               "Password must be at least 6 characters long",
	"INVALID_EMAIL":               "Invalid email address",
	"MISSING_PASSWORD":            "Password is required",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "Too many attempts, try again later",
	"OPERATION_NOT_ALLOWED":       "Email sign-in is not enabled for this project",
	"TOKEN_EXPIRED":               ErrSessionExpired.Error(),
	"INVALID_REFRESH_TOKEN":       ErrSessionExpired.Error(),
	"INVALID_ID_TOKEN":            ErrSessionExpired.Error(),
	"USER_NOT_FOUND":              ErrSessionExpired.Error(),
}

var expiredCodes = map[string]bool{
	"TOKEN_EXPIRED":         true,
	"INVALID_REFRESH_TOKEN": true,
	"INVALID_ID_TOKEN":      true,
	"USER_NOT_FOUND":        true,
	"USER_DISABLED":         true,
}

// Error implements the error interface with a message fit for a toast.
func (e *Error) Error() string {
	if msg, ok := friendly[e.Code]; ok {
		return msg
	}
	if strings.HasPrefix(e.Code, "API key not valid") {
		return "Firebase API key is not valid"
	}
	if e.Detail != "" {
		return e.Detail
	}
	if e.Code != "" {
		return strings.ToLower(strings.ReplaceAll(e.Code, "_", " "))
	}
	return "authentication failed"
}

// Is makes refresh failures match ErrSessionExpired.
func (e *Error) Is(target error) bool {
	return target == ErrSessionExpired && expiredCodes[e.Code]
}

// newError splits Firebase's "CODE : detail" message format.
func newError(status int, message string) *Error {
	code, detail := message, ""
	if i := strings.Index(message, " : "); i >= 0 {
		code, detail = message[:i], message[i+3:]
	}
	return &Error{Status: status, Code: strings.TrimSpace(code), Detail: strings.TrimSpace(detail)}
}

// RequiresSignIn reports whether err means the user has to sign in again.
func RequiresSignIn(err error) bool {
	return errors.Is(err, ErrNotSignedIn) || errors.Is(err, ErrSessionExpired)
}
