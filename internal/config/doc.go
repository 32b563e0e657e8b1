// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ptutor.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: Backend base URL, timeout and client-side rate limit
//   - FirebaseConfig: Firebase web app settings used for sign-in
//   - ChatConfig: Chat polling behaviour
//   - Watcher: Reloads the global config when the file changes
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (PTUTOR_*, FIREBASE_*, NEXT_PUBLIC_FIREBASE_*)
//   - A .env file in the working directory
//   - ~/.ptutor/config.toml
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	base := cfg.API.BaseURL
//	delay := cfg.Chat.PollDelay()
package config
