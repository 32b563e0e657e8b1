// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jeranaias/ptutor-tui/internal/model"
)

func orderBy(field string) url.Values {
	return url.Values{"order_by": {field}}
}

func item(collection, id string) string {
	return collection + "/" + url.PathEscape(id)
}

// =============================================================================
// TUTORS
// =============================================================================

// ListTutors returns the user's tutors.
func (c *Client) ListTutors(ctx context.Context) ([]model.Tutor, error) {
	var out []model.Tutor
	err := c.do(ctx, "fetch Tutors", request{
		method: http.MethodGet,
		path:   "tutors",
		query:  orderBy("assistant.created_at"),
		out:    &out,
	})
	return out, err
}

// CreateTutor creates a tutor.
func (c *Client) CreateTutor(ctx context.Context, p model.TutorPayload) error {
	return c.do(ctx, "create Tutor", request{method: http.MethodPost, path: "tutors", body: p})
}

// UpdateTutor updates the tutor whose assistant has assistantID.
func (c *Client) UpdateTutor(ctx context.Context, assistantID string, p model.TutorPayload) error {
	return c.do(ctx, "update Tutor", request{method: http.MethodPut, path: item("tutors", assistantID), body: p})
}

// DeleteTutor deletes the tutor with id.
func (c *Client) DeleteTutor(ctx context.Context, id string) error {
	return c.do(ctx, "delete Tutor", request{method: http.MethodDelete, path: item("tutors", id)})
}

// =============================================================================
// MODULES
// =============================================================================

// ListModules returns the user's modules.
func (c *Client) ListModules(ctx context.Context) ([]model.Module, error) {
	var out []model.Module
	err := c.do(ctx, "fetch Modules", request{
		method: http.MethodGet,
		path:   "modules",
		query:  orderBy("created_at"),
		out:    &out,
	})
	return out, err
}

// CreateModule creates a module.
func (c *Client) CreateModule(ctx context.Context, p model.ModulePayload) error {
	return c.do(ctx, "create Module", request{method: http.MethodPost, path: "modules", body: p})
}

// UpdateModule updates the module with id.
func (c *Client) UpdateModule(ctx context.Context, id string, p model.ModulePayload) error {
	return c.do(ctx, "update Module", request{method: http.MethodPut, path: item("modules", id), body: p})
}

// DeleteModule deletes the module with id.
func (c *Client) DeleteModule(ctx context.Context, id string) error {
	return c.do(ctx, "delete Module", request{method: http.MethodDelete, path: item("modules", id)})
}

// =============================================================================
// MESSAGES
// =============================================================================

// ListMessages returns a thread's messages, oldest first.
func (c *Client) ListMessages(ctx context.Context, threadID string) ([]model.Message, error) {
	var page model.MessagePage
	err := c.do(ctx, "fetch Messages", request{
		method: http.MethodGet,
		path:   "messages",
		query:  url.Values{"thread_id": {threadID}},
		out:    &page,
	})
	if err != nil {
		return nil, err
	}
	return page.Chronological(), nil
}

// SendMessage posts a user message. The assistant's reply is produced
// asynchronously and shows up in a later ListMessages.
func (c *Client) SendMessage(ctx context.Context, p model.MessagePayload) error {
	return c.do(ctx, "create Message", request{method: http.MethodPost, path: "messages", body: p})
}

// =============================================================================
// USERS & CREDITS
// =============================================================================

// GetUser returns the signed-in user's profile and balance.
func (c *Client) GetUser(ctx context.Context) (model.UserInfo, error) {
	var out model.UserInfo
	err := c.do(ctx, "fetch User", request{method: http.MethodGet, path: "users", out: &out})
	return out, err
}

// ListCredits returns the credit ledger.
func (c *Client) ListCredits(ctx context.Context) ([]model.CreditTransaction, error) {
	var out []model.CreditTransaction
	err := c.do(ctx, "fetch Credits", request{
		method: http.MethodGet,
		path:   "credits",
		query:  orderBy("created_at"),
		out:    &out,
	})
	return out, err
}

// AddCredit tops up the balance.
func (c *Client) AddCredit(ctx context.Context, p model.CreditPayload) error {
	return c.do(ctx, "add Credit", request{method: http.MethodPost, path: "credits", body: p})
}

// CreditsSummary returns total amounts per transaction type.
func (c *Client) CreditsSummary(ctx context.Context) (model.CreditSummary, error) {
	out := model.CreditSummary{}
	err := c.do(ctx, "fetch Credits Summary", request{method: http.MethodGet, path: "credits-summary", out: &out})
	return out, err
}

// Register creates the backend record for a newly signed-up user. It is
// the only unauthenticated endpoint.
func (c *Client) Register(ctx context.Context, p model.RegisterPayload) error {
	return c.do(ctx, "register User", request{method: http.MethodPost, path: "register", body: p, public: true})
}
