// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

// Claims are the identity fields carried by a Firebase ID token.
type Claims struct {
	UserID    string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// ParseClaims decodes an ID token without verifying its signature.
func ParseClaims(idToken string) (Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(idToken, claims); err != nil {
		return Claims{}, errors.Wrap(err, "decode ID token")
	}

	c := Claims{
		UserID: stringClaim(claims, "user_id"),
		Email:  stringClaim(claims, "email"),
		Name:   stringClaim(claims, "name"),
	}
	if c.UserID == "" {
		c.UserID = stringClaim(claims, "sub")
	}
	if exp, ok := claims["exp"].(float64); ok {
		c.ExpiresAt = time.Unix(int64(exp), 0)
	}
	if c.UserID == "" {
		return Claims{}, errors.New("ID token has no user id")
	}
	return c, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
