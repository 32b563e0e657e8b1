// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jeranaias/ptutor-tui/internal/validate"
)

// =============================================================================
// IDENTITY TOOLKIT EMULATOR
// =============================================================================

type passwordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateRequest struct {
	IDToken     string `json:"idToken"`
	DisplayName string `json:"displayName"`
}

type accountResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName,omitempty"`
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	TokenType    string `json:"token_type"`
	UserID       string `json:"user_id"`
}

var expiresIn = strconv.Itoa(int(tokenTTL.Seconds()))

func (s *server) checkAPIKey(ctx echo.Context) error {
	key := ctx.QueryParam("key")
	if key == "" || (s.opts.APIKey != "" && key != s.opts.APIKey) {
		return errInvalidAPIKey
	}
	return nil
}

// accounts serves POST /identitytoolkit/v1/accounts:<op>.
func (s *server) accounts(ctx echo.Context) error {
	if err := s.checkAPIKey(ctx); err != nil {
		return err
	}
	switch ctx.Param("op") {
	case "accounts:signUp":
		return s.signUp(ctx)
	case "accounts:signInWithPassword":
		return s.signInWithPassword(ctx)
	case "accounts:update":
		return s.updateAccount(ctx)
	default:
		return errUnknownOp
	}
}

func (s *server) signUp(ctx echo.Context) error {
	var req passwordRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if !validate.Email(req.Email) {
		return errInvalidEmail
	}
	if len(req.Password) < 6 {
		return errWeakPassword
	}
	a, err := s.newAccount(req.Email, req.Password, "")
	if err != nil {
		return err
	}
	return s.signedIn(ctx, *a)
}

func (s *server) signInWithPassword(ctx echo.Context) error {
	var req passwordRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if !validate.Email(req.Email) {
		return errInvalidEmail
	}
	a, err := s.store.authenticate(req.Email, req.Password)
	if err != nil {
		return err
	}
	return s.signedIn(ctx, *a)
}

func (s *server) updateAccount(ctx echo.Context) error {
	var req updateRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	uid, err := s.verifyIDToken(req.IDToken)
	if err != nil {
		return errInvalidIDToken
	}
	a, ok := s.store.setDisplayName(uid, strings.TrimSpace(req.DisplayName))
	if !ok {
		return errInvalidIDToken
	}
	return s.signedIn(ctx, a)
}

func (s *server) signedIn(ctx echo.Context, a account) error {
	idToken, err := s.mintIDToken(a)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, accountResponse{
		IDToken:      idToken,
		RefreshToken: s.store.issueRefresh(a.UID),
		ExpiresIn:    expiresIn,
		LocalID:      a.UID,
		Email:        a.Email,
		DisplayName:  a.DisplayName,
	})
}

// =============================================================================
// SECURE TOKEN EMULATOR
// =============================================================================

// token serves POST /securetoken/v1/token.
func (s *server) token(ctx echo.Context) error {
	if err := s.checkAPIKey(ctx); err != nil {
		return err
	}
	if ctx.FormValue("grant_type") != "refresh_token" {
		return errGrantType
	}
	refresh := ctx.FormValue("refresh_token")
	if refresh == "" {
		return errMissingRefresh
	}
	uid, ok := s.store.redeemRefresh(refresh)
	if !ok {
		return errInvalidRefresh
	}
	a, ok := s.store.account(uid)
	if !ok {
		return errInvalidRefresh
	}
	idToken, err := s.mintIDToken(a)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, refreshResponse{
		IDToken:      idToken,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
		TokenType:    "Bearer",
		UserID:       uid,
	})
}
