// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// DefaultTutorModel is the model every tutor is created with.
const DefaultTutorModel = "gpt-3.5-turbo-1106"

// Assistant is the backend's AI assistant profile.
type Assistant struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Model        string    `json:"model"`
	Instructions string    `json:"instructions"`
	Created      Timestamp `json:"created_at"`
}

// CreatedAt implements Dated.
func (a Assistant) CreatedAt() time.Time { return a.Created.Time }

// Tutor is a user's personal tutor: a thin record wrapping an Assistant.
// Updates are addressed by the assistant ID, deletes by the tutor ID.
type Tutor struct {
	ID        string    `json:"id"`
	Created   Timestamp `json:"created_at"`
	Assistant Assistant `json:"assistant"`
}

func (t Tutor) Name() string         { return t.Assistant.Name }
func (t Tutor) Model() string        { return t.Assistant.Model }
func (t Tutor) Instructions() string { return t.Assistant.Instructions }

// CreatedAt implements Dated. The wrapper's own timestamp is preferred;
// the backend does not always send it, so the assistant's is the fallback.
func (t Tutor) CreatedAt() time.Time {
	if !t.Created.IsZero() {
		return t.Created.Time
	}
	return t.Assistant.Created.Time
}

// Assistants returns the assistant of each tutor, in order. The module
// form's tutor picker works on assistants.
func Assistants(tutors []Tutor) []Assistant {
	out := make([]Assistant, len(tutors))
	for i, t := range tutors {
		out[i] = t.Assistant
	}
	return out
}
