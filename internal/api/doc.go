// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the client for the Personal Tutor backend REST API.
//
// Every endpoint lives under "<base>/v1/" and, except for registration,
// requires a Firebase ID token sent as a Bearer credential. The token is
// fetched from a TokenSource on every call so an expiring token is
// refreshed before use.
//
// Errors from the backend carry an optional "detail" message. Use Message
// to turn any error into text for a toast, falling back to an action's
// default message when the backend gave none:
//
//	if err := client.DeleteTutor(ctx, id); err != nil {
//	    toast(api.Message(err, "Failed to delete personal tutor"))
//	}
//
// A 401 response matches ErrUnauthorized with errors.Is.
//
// The client never retries. Each operation is recorded through the
// configured Tracer under a stable name ("fetch Tutors", "create Module").
package api
