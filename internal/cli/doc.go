// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the ptutor command line: argument parsing, the
// non-interactive commands, the line-mode chat, and the JSON output
// envelope used by --json.
//
// The dashboard itself lives in internal/ui; Run never starts it. main
// checks for CmdTUI before calling Run.
package cli
