// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// Module pairs a tutor with a topic. Each module owns one backend thread.
type Module struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AssistantID string    `json:"assistant_id"`
	ThreadID    string    `json:"thread_id"`
	Created     Timestamp `json:"created_at"`
	Assistant   Assistant `json:"assistant"`
}

// CreatedAt implements Dated.
func (m Module) CreatedAt() time.Time { return m.Created.Time }

// TutorName returns the name of the module's tutor.
func (m Module) TutorName() string { return m.Assistant.Name }

// TutorID returns the assistant the module talks to.
func (m Module) TutorID() string {
	if m.Assistant.ID != "" {
		return m.Assistant.ID
	}
	return m.AssistantID
}
