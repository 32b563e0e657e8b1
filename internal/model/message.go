// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Author returns the label shown above a message: "You" for the user's own
// messages, the module name for everything else.
func (r Role) Author(moduleName string) string {
	if r == RoleUser {
		return "You"
	}
	return moduleName
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// TextValue is the text payload of a content block.
type TextValue struct {
	Value string `json:"value"`
}

// ContentBlock is one block of message content. Only text blocks are shown.
type ContentBlock struct {
	Type string     `json:"type"`
	Text *TextValue `json:"text,omitempty"`
}

// Message is a single chat message within a module's thread.
type Message struct {
	ID       string         `json:"id"`
	Role     Role           `json:"role"`
	Content  []ContentBlock `json:"content"`
	Created  Timestamp      `json:"created_at"`
	ThreadID string         `json:"thread_id,omitempty"`
}

// CreatedAt implements Dated.
func (m Message) CreatedAt() time.Time { return m.Created.Time }

// Text returns the first content block's text, or "".
func (m Message) Text() string {
	if len(m.Content) == 0 || m.Content[0].Text == nil {
		return ""
	}
	return m.Content[0].Text.Value
}

// NewTextMessage builds a single-block text message.
func NewTextMessage(id string, role Role, text string, at time.Time) Message {
	return Message{
		ID:      id,
		Role:    role,
		Content: []ContentBlock{{Type: "text", Text: &TextValue{Value: text}}},
		Created: Timestamp{at},
	}
}

// MessagePage is the envelope returned when listing a thread.
type MessagePage struct {
	Data []Message `json:"data"`
}

// Chronological returns the page's messages oldest first. The backend
// lists newest first. The page itself is not modified.
func (p MessagePage) Chronological() []Message {
	out := make([]Message, len(p.Data))
	for i, m := range p.Data {
		out[len(p.Data)-1-i] = m
	}
	return out
}
