// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/telemetry"
	"github.com/jeranaias/ptutor-tui/internal/ui/components"
)

// JSONResponse is the envelope every --json command prints.
type JSONResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	// Error is null on success.
	Error     *string `json:"error"`
	Timestamp string  `json:"timestamp"`
	Command   string  `json:"command,omitempty"`
}

// NewJSONResponse creates a successful response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a failed response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	msg := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write prints the response indented. Terminal output is syntax
// highlighted; anything else stays plain for piping.
func (r *JSONResponse) Write(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	out := string(data)
	if isTerminal(w) && ColorsEnabled() {
		out = components.HighlightJSON(out, true)
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// String returns the response as indented JSON.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// =============================================================================
// COMMAND DATA
// =============================================================================

// IdentityData is printed by signin, signup and whoami.
type IdentityData struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// UsageData is printed by usage.
type UsageData struct {
	Balance  float64                   `json:"balance"`
	Currency string                    `json:"currency"`
	Ledger   []model.CreditTransaction `json:"ledger"`
	Summary  model.CreditSummary       `json:"summary"`
}

// TracesData is printed by traces.
type TracesData struct {
	Spans []telemetry.Span `json:"spans"`
	Stats []telemetry.Stat `json:"stats"`
}

// ConfigData is printed by config show.
type ConfigData struct {
	Path   string          `json:"path"`
	Config json.RawMessage `json:"config"`
}

// VersionData is printed by version.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}
