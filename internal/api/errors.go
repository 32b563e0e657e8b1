// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Error variables for common backend failures.
var (
	// ErrUnauthorized indicates the backend rejected the ID token.
	ErrUnauthorized = errors.New("not authorized")

	// ErrNoTokenSource indicates an authenticated call was made without a TokenSource.
	ErrNoTokenSource = errors.New("no token source configured")

	// ErrResponseTooLarge indicates the response exceeded MaxResponseSize.
	ErrResponseTooLarge = errors.New("response too large")
)

// Error is a non-2xx response from the backend.
type Error struct {
	Status int
	// Detail is the backend's human-readable explanation, if any.
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("API error (HTTP %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("API error (HTTP %d): %s", e.Status, http.StatusText(e.Status))
}

// Is makes a 401 match ErrUnauthorized.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Message returns the backend detail carried by err, or fallback when err
// carries none. Transport failures and decoding errors yield fallback.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// IsUnauthorized reports whether err means the user must sign in again.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// errorBody is the backend error envelope. detail is either a string or,
// for request validation failures, a list of {loc, msg, type} objects.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationIssue struct {
	Loc []interface{} `json:"loc"`
	Msg string        `json:"msg"`
}

// parseError converts an error response into an *Error.
func parseError(status int, body []byte) error {
	apiErr := &Error{Status: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return apiErr
	}

	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		apiErr.Detail = strings.TrimSpace(s)
		return apiErr
	}

	var issues []validationIssue
	if err := json.Unmarshal(eb.Detail, &issues); err == nil && len(issues) > 0 {
		apiErr.Detail = strings.TrimSpace(issues[0].Msg)
	}
	return apiErr
}
