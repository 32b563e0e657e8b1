// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jeranaias/ptutor-tui/internal/model"
)

const (
	// Currency is the ledger currency.
	Currency = "$"
	// MessageCost is charged for every assistant reply.
	MessageCost = 0.01
	// SpendChat is the ledger type of a reply charge.
	SpendChat = "Chat"

	replyTimeout = time.Minute
	replyFailed  = "Sorry, I could not answer that right now. Please try again."
)

func registerAPI(v1 *echo.Group, auth echo.MiddlewareFunc, s *server) {
	v1.POST("/register", s.register)

	v1.GET("/users", s.getUser, auth)

	v1.GET("/tutors", s.listTutors, auth)
	v1.POST("/tutors", s.createTutor, auth)
	v1.PUT("/tutors/:id", s.updateTutor, auth)
	v1.DELETE("/tutors/:id", s.deleteTutor, auth)

	v1.GET("/modules", s.listModules, auth)
	v1.POST("/modules", s.createModule, auth)
	v1.PUT("/modules/:id", s.updateModule, auth)
	v1.DELETE("/modules/:id", s.deleteModule, auth)

	v1.GET("/messages", s.listMessages, auth)
	v1.POST("/messages", s.sendMessage, auth)

	v1.GET("/credits", s.listCredits, auth)
	v1.POST("/credits", s.addCredit, auth)
	v1.GET("/credits-summary", s.creditsSummary, auth)
}

// bind decodes the body into v and validates it.
func bind(ctx echo.Context, v interface{}) error {
	if err := ctx.Bind(v); err != nil {
		return err
	}
	return ctx.Validate(v)
}

// =============================================================================
// USERS
// =============================================================================

func (s *server) register(ctx echo.Context) error {
	var p model.RegisterPayload
	if err := bind(ctx, &p); err != nil {
		return err
	}
	a, err := s.newAccount(p.Email, p.Password, p.DisplayName())
	if err == errEmailExists {
		return errEmailTaken
	}
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, s.userInfo(a.UID))
}

func (s *server) userInfo(uid string) model.UserInfo {
	a, _ := s.store.account(uid)
	return model.UserInfo{
		ID:          a.UID,
		DisplayName: a.DisplayName,
		Email:       a.Email,
		Credits:     a.Credits,
		Currency:    Currency,
	}
}

func (s *server) getUser(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, s.userInfo(currentUser(ctx)))
}

// =============================================================================
// TUTORS
// =============================================================================

func (s *server) listTutors(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, s.store.listTutors(currentUser(ctx)))
}

func (s *server) createTutor(ctx echo.Context) error {
	var p model.TutorPayload
	if err := bind(ctx, &p); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, s.store.createTutor(currentUser(ctx), p))
}

// updateTutor is addressed by assistant id, deleteTutor by tutor id.
func (s *server) updateTutor(ctx echo.Context) error {
	var p model.TutorPayload
	if err := bind(ctx, &p); err != nil {
		return err
	}
	if !s.store.updateTutor(currentUser(ctx), ctx.Param("id"), p) {
		return errTutorNotFound
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *server) deleteTutor(ctx echo.Context) error {
	if !s.store.deleteTutor(currentUser(ctx), ctx.Param("id")) {
		return errTutorNotFound
	}
	return ctx.NoContent(http.StatusNoContent)
}

// =============================================================================
// MODULES
// =============================================================================

func (s *server) listModules(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, s.store.listModules(currentUser(ctx)))
}

func (s *server) createModule(ctx echo.Context) error {
	var p model.ModulePayload
	if err := bind(ctx, &p); err != nil {
		return err
	}
	uid := currentUser(ctx)
	a, ok := s.store.assistant(uid, p.AssistantID)
	if !ok {
		return errTutorNotFound
	}
	return ctx.JSON(http.StatusCreated, s.store.createModule(uid, p, a))
}

func (s *server) updateModule(ctx echo.Context) error {
	var p model.ModulePayload
	if err := bind(ctx, &p); err != nil {
		return err
	}
	uid := currentUser(ctx)
	a, ok := s.store.assistant(uid, p.AssistantID)
	if !ok {
		return errTutorNotFound
	}
	if !s.store.updateModule(uid, ctx.Param("id"), p, a) {
		return errModuleNotFound
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *server) deleteModule(ctx echo.Context) error {
	if !s.store.deleteModule(currentUser(ctx), ctx.Param("id")) {
		return errModuleNotFound
	}
	return ctx.NoContent(http.StatusNoContent)
}

// =============================================================================
// MESSAGES
// =============================================================================

// listMessages returns the thread newest first.
func (s *server) listMessages(ctx echo.Context) error {
	msgs, ok := s.store.messages(currentUser(ctx), ctx.QueryParam("thread_id"))
	if !ok {
		return errThreadNotFound
	}
	page := model.MessagePage{Data: make([]model.Message, len(msgs))}
	for i, m := range msgs {
		page.Data[len(msgs)-1-i] = m
	}
	return ctx.JSON(http.StatusOK, page)
}

// sendMessage stores the user's message and schedules the reply.
func (s *server) sendMessage(ctx echo.Context) error {
	var p model.MessagePayload
	if err := bind(ctx, &p); err != nil {
		return err
	}
	uid := currentUser(ctx)
	if _, ok := s.store.messages(uid, p.ThreadID); !ok {
		return errThreadNotFound
	}
	a, ok := s.store.assistant(uid, p.AssistantID)
	if !ok {
		return errTutorNotFound
	}
	if acct, _ := s.store.account(uid); acct.Credits < MessageCost {
		return errNoCredit
	}

	msg, _ := s.store.appendMessage(p.ThreadID, model.RoleUser, p.Content)
	instructions := p.Instructions
	if instructions == "" {
		instructions = a.Instructions
	}
	s.pending.Add(1)
	go s.answer(uid, p.ThreadID, instructions)
	return ctx.JSON(http.StatusCreated, msg)
}

// answer appends the assistant's reply after the configured delay. A reply
// is only charged when the replier succeeds.
func (s *server) answer(uid, threadID, instructions string) {
	defer s.pending.Done()

	if s.opts.ReplyDelay > 0 {
		select {
		case <-time.After(s.opts.ReplyDelay):
		case <-s.done:
			return
		}
	}
	history, ok := s.store.messages(uid, threadID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()
	go func() {
		select {
		case <-s.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	text, err := s.opts.Replier.Reply(ctx, instructions, history)
	if err != nil {
		s.opts.Logger.Error("reply failed", err, "thread", threadID)
		s.store.appendMessage(threadID, model.RoleAssistant, replyFailed)
		return
	}
	if _, ok := s.store.appendMessage(threadID, model.RoleAssistant, text); ok {
		s.store.record(uid, SpendChat, MessageCost)
	}
}

// =============================================================================
// CREDITS
// =============================================================================

func (s *server) listCredits(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, s.store.ledger(currentUser(ctx)))
}

func (s *server) addCredit(ctx echo.Context) error {
	var p model.CreditPayload
	if err := bind(ctx, &p); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, s.store.record(currentUser(ctx), model.TopUp, p.Amount))
}

func (s *server) creditsSummary(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, s.store.summary(currentUser(ctx)))
}
