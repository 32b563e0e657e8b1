// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry records how long backend calls take.
//
// Every API call runs inside Recorder.Trace under a name such as
// "fetch Tutors" or "create Message". The span (duration, outcome, error
// text) is stored in a local SQLite database and summarised per name by
// Stats, which backs `ptutor traces`.
//
// # Usage
//
//	rec, err := telemetry.Open(cfg.TracesPath())
//	client := api.NewFromConfig(cfg, session).WithTracer(rec)
//
// # Privacy
//
// Traces are local-only. Request and response bodies are never stored.
package telemetry
