// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// UserInfo is the backend's view of the signed-in user.
type UserInfo struct {
	ID          string  `json:"id,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
	Email       string  `json:"email,omitempty"`
	Credits     float64 `json:"credits"`
	Currency    string  `json:"currency"`
}
