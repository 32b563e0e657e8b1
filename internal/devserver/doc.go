// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package devserver is a local stand-in for the tutor backend and the
// Firebase auth endpoints, so the dashboard and CLI can run without either.
//
// # Routes
//
//	POST   /v1/register                         create an account (public)
//	GET    /v1/users                            profile and balance
//	GET    /v1/tutors, POST /v1/tutors          list, create
//	PUT    /v1/tutors/:assistant_id             update
//	DELETE /v1/tutors/:id                       delete
//	GET    /v1/modules, POST /v1/modules        list, create
//	PUT    /v1/modules/:id, DELETE ...          update, delete
//	GET    /v1/messages?thread_id=              thread, newest first
//	POST   /v1/messages                         send; a reply follows later
//	GET    /v1/credits, POST /v1/credits        ledger, top up
//	GET    /v1/credits-summary                  totals per type
//
// The auth emulator lives under /identitytoolkit/v1/accounts:<op> and
// /securetoken/v1/token. Point firebase.auth_url and firebase.token_url at
// them. Everything is kept in memory.
package devserver
