// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/jeranaias/ptutor-tui/internal/config"
)

const (
	// DefaultAuthURL is the Identity Toolkit root.
	DefaultAuthURL = "https://identitytoolkit.googleapis.com"
	// DefaultTokenURL is the Secure Token root.
	DefaultTokenURL = "https://securetoken.googleapis.com"

	requestTimeout = 20 * time.Second
	maxBody        = 1 << 20
)

// User is the signed-in Firebase user.
type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Tokens are the credentials returned by a sign-in or refresh.
type Tokens struct {
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Firebase is a client for the Firebase Authentication REST API.
type Firebase struct {
	apiKey   string
	authURL  string
	tokenURL string
	http     *http.Client
	now      func() time.Time
}

// NewFirebase creates a client from the firebase config section.
func NewFirebase(cfg config.FirebaseConfig) *Firebase {
	f := &Firebase{
		apiKey:   cfg.APIKey,
		authURL:  strings.TrimSuffix(cfg.AuthURL, "/"),
		tokenURL: strings.TrimSuffix(cfg.TokenURL, "/"),
		http:     &http.Client{Timeout: requestTimeout},
		now:      time.Now,
	}
	if f.authURL == "" {
		f.authURL = DefaultAuthURL
	}
	if f.tokenURL == "" {
		f.tokenURL = DefaultTokenURL
	}
	return f
}

// WithHTTPClient replaces the underlying HTTP client.
func (f *Firebase) WithHTTPClient(hc *http.Client) *Firebase {
	f.http = hc
	return f
}

// =============================================================================
// ACCOUNT OPERATIONS
// =============================================================================

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type accountResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
}

// SignInWithPassword signs in an existing email/password account.
func (f *Firebase) SignInWithPassword(ctx context.Context, email, password string) (*User, *Tokens, error) {
	var resp accountResponse
	req := passwordRequest{Email: email, Password: password, ReturnSecureToken: true}
	if err := f.postAccounts(ctx, "signInWithPassword", req, &resp); err != nil {
		return nil, nil, err
	}
	return f.account(resp)
}

// SignUp creates an email/password account and signs it in.
func (f *Firebase) SignUp(ctx context.Context, email, password string) (*User, *Tokens, error) {
	var resp accountResponse
	req := passwordRequest{Email: email, Password: password, ReturnSecureToken: true}
	if err := f.postAccounts(ctx, "signUp", req, &resp); err != nil {
		return nil, nil, err
	}
	return f.account(resp)
}

type updateRequest struct {
	IDToken           string `json:"idToken"`
	DisplayName       string `json:"displayName"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// UpdateProfile sets the display name. When Firebase returns new tokens
// (carrying the updated name claim) they are returned; otherwise tokens is nil.
func (f *Firebase) UpdateProfile(ctx context.Context, idToken, displayName string) (*Tokens, error) {
	var resp accountResponse
	req := updateRequest{IDToken: idToken, DisplayName: displayName, ReturnSecureToken: true}
	if err := f.postAccounts(ctx, "update", req, &resp); err != nil {
		return nil, err
	}
	if resp.IDToken == "" {
		return nil, nil
	}
	return f.tokens(resp.IDToken, resp.RefreshToken, resp.ExpiresIn), nil
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

// Refresh exchanges a refresh token for a new ID token.
func (f *Firebase) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	if f.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	endpoint := f.tokenURL + "/v1/token?key=" + url.QueryEscape(f.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp refreshResponse
	if err := f.do(req, &resp); err != nil {
		return nil, err
	}
	return f.tokens(resp.IDToken, resp.RefreshToken, resp.ExpiresIn), nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (f *Firebase) postAccounts(ctx context.Context, op string, body, out interface{}) error {
	if f.apiKey == "" {
		return ErrNoAPIKey
	}
	data, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "failed to marshal request")
	}
	endpoint := f.authURL + "/v1/accounts:" + op + "?key=" + url.QueryEscape(f.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	return f.do(req, out)
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (f *Firebase) do(req *http.Request, out interface{}) error {
	resp, err := f.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "authentication request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		if json.Unmarshal(body, &er) == nil && er.Error.Message != "" {
			return newError(resp.StatusCode, er.Error.Message)
		}
		return &Error{Status: resp.StatusCode, Detail: http.StatusText(resp.StatusCode)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "failed to parse response")
	}
	return nil
}

// account turns a sign-in response into a user and tokens. Claims in the
// ID token fill any field the response left out.
func (f *Firebase) account(resp accountResponse) (*User, *Tokens, error) {
	tokens := f.tokens(resp.IDToken, resp.RefreshToken, resp.ExpiresIn)
	user := &User{UID: resp.LocalID, Email: resp.Email, DisplayName: resp.DisplayName}

	if claims, err := ParseClaims(resp.IDToken); err == nil {
		if user.UID == "" {
			user.UID = claims.UserID
		}
		if user.Email == "" {
			user.Email = claims.Email
		}
		if user.DisplayName == "" {
			user.DisplayName = claims.Name
		}
	}
	if user.UID == "" {
		return nil, nil, errors.New("sign-in response has no user id")
	}
	return user, tokens, nil
}

// tokens computes the expiry from expiresIn seconds, preferring the exp
// claim when the token carries one.
func (f *Firebase) tokens(idToken, refreshToken, expiresIn string) *Tokens {
	t := &Tokens{IDToken: idToken, RefreshToken: refreshToken}
	if claims, err := ParseClaims(idToken); err == nil && !claims.ExpiresAt.IsZero() {
		t.ExpiresAt = claims.ExpiresAt
		return t
	}
	secs, err := strconv.Atoi(expiresIn)
	if err != nil || secs <= 0 {
		secs = 3600
	}
	t.ExpiresAt = f.now().Add(time.Duration(secs) * time.Second)
	return t
}
