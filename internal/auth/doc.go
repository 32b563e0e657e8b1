// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth signs users in with Firebase Authentication and keeps the
// resulting session.
//
// # Key Types
//
//   - Firebase: Client for the Identity Toolkit and Secure Token REST APIs
//   - Session: The signed-in user and their tokens; hands out fresh ID tokens
//   - Store: Encrypted on-disk persistence of the session between runs
//   - Claims: Identity fields decoded from an ID token
//
// ID tokens are decoded without verifying their signature. The backend
// verifies every token it receives; the client only needs the user ID,
// email, name and expiry.
//
// # Usage
//
//	fb := auth.NewFirebase(cfg.Firebase)
//	sess := auth.NewSession(fb, auth.NewStore(path))
//	if err := sess.Restore(); err != nil { ... }
//	user, err := sess.SignIn(ctx, email, password)
//	token, err := sess.IDToken(ctx) // refreshed when close to expiry
package auth
