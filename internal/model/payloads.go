// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// REQUEST PAYLOADS
// =============================================================================

// The validate tags are the required-field rules forms enforce before a
// payload may be submitted.

// TutorPayload creates or updates a tutor.
type TutorPayload struct {
	Name         string   `json:"name" validate:"notblank"`
	Instructions string   `json:"instructions"`
	Tools        []string `json:"tools"`
}

// NewTutorPayload builds a payload with an empty, non-nil tools list so it
// encodes as [] rather than null.
func NewTutorPayload(name, instructions string) TutorPayload {
	return TutorPayload{Name: name, Instructions: instructions, Tools: []string{}}
}

// ModulePayload creates or updates a module.
type ModulePayload struct {
	Name        string `json:"name" validate:"notblank"`
	AssistantID string `json:"assistant_id" validate:"required"`
}

// MessagePayload posts a user message to a module's thread.
type MessagePayload struct {
	AssistantID  string `json:"assistant_id" validate:"required"`
	ThreadID     string `json:"thread_id" validate:"required"`
	Content      string `json:"content" validate:"notblank"`
	UserID       string `json:"user_id"`
	Instructions string `json:"instructions"`
}

// NewMessagePayload addresses content to module on behalf of userID.
func NewMessagePayload(module Module, userID, content string) MessagePayload {
	return MessagePayload{
		AssistantID:  module.TutorID(),
		ThreadID:     module.ThreadID,
		Content:      content,
		UserID:       userID,
		Instructions: module.Assistant.Instructions,
	}
}

// CreditPayload adds credit to the balance.
type CreditPayload struct {
	Amount float64 `json:"amount" validate:"gt=0"`
}

// RegisterPayload creates the backend user record after Firebase sign-up.
type RegisterPayload struct {
	FirstName string `json:"first_name" validate:"notblank"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"required,tutoremail"`
	Password  string `json:"password" validate:"min=6"`
}

// DisplayName joins first and last name the way the profile shows it.
func (r RegisterPayload) DisplayName() string {
	if r.LastName == "" {
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}

// SignInPayload is what the sign-in form collects.
type SignInPayload struct {
	Email    string `json:"email" validate:"required,tutoremail"`
	Password string `json:"password" validate:"required"`
}
