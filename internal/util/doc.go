// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the ptutor packages.
//
// # Key Functions
//
// File Operations:
//   - WriteFileAtomic: crash-safe file writing with fsync and rename
//
// Display Text:
//   - Truncate: width-aware truncation with an ellipsis
//   - PadRight: width-aware right padding for table cells
//   - FirstNonEmpty: picks the first non-blank string
//
// # Usage
//
//	// Persist the encrypted session without leaving partial files behind
//	err := util.WriteFileAtomic(path, data, 0600, 0700)
//
//	// Fit a tutor instruction into a 40 column cell
//	cell := util.Truncate(instructions, 40)
package util
