// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	tokenIssuer = "ptutor-devserver"
	tokenTTL    = time.Hour
	uidKey      = "uid"
)

// mintIDToken signs an HS256 ID token carrying the claims the client reads.
func (s *server) mintIDToken(a account) (string, error) {
	now := s.store.now()
	claims := jwt.MapClaims{
		"iss":     tokenIssuer,
		"sub":     a.UID,
		"user_id": a.UID,
		"email":   a.Email,
		"iat":     now.Unix(),
		"exp":     now.Add(tokenTTL).Unix(),
	}
	if a.DisplayName != "" {
		claims["name"] = a.DisplayName
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	return signed, errors.Wrap(err, "sign ID token")
}

// verifyIDToken checks the signature and expiry and returns the uid.
func (s *server) verifyIDToken(raw string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return "", err
	}
	uid, _ := claims["user_id"].(string)
	if uid == "" {
		return "", errors.New("token has no user id")
	}
	return uid, nil
}

// requireUser authenticates "Authorization: Bearer <id token>" and stores
// the uid in the context.
func (s *server) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		header := ctx.Request().Header.Get(echo.HeaderAuthorization)
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		if raw == "" || raw == header {
			return errUnauthorized
		}
		uid, err := s.verifyIDToken(raw)
		if err != nil {
			return errUnauthorized
		}
		if _, ok := s.store.account(uid); !ok {
			return errUnauthorized
		}
		ctx.Set(uidKey, uid)
		return next(ctx)
	}
}

func currentUser(ctx echo.Context) string {
	uid, _ := ctx.Get(uidKey).(string)
	return uid
}
