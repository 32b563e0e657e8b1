// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package screens holds the dashboard pages: tutors, modules, chats,
// usage, and the sign-in and sign-up forms.
//
// Each screen is a small bubbletea model owned by the app shell. A
// screen fetches through the Backend interface inside tea.Cmd
// goroutines, using a context that Close cancels. Results carry the
// screen's owner id and a generation number; anything addressed to a
// closed screen or an older generation is dropped.
//
// Screens never show toasts or switch pages themselves. They return
// components.ToastMsg and RedirectMsg commands and the shell acts on
// them.
package screens
