// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ptutor-tui/internal/api"
	"github.com/jeranaias/ptutor-tui/internal/auth"
	"github.com/jeranaias/ptutor-tui/internal/config"
	"github.com/jeranaias/ptutor-tui/internal/logging"
	"github.com/jeranaias/ptutor-tui/internal/model"
)

const testKey = "test-web-key"

type fixture struct {
	srv     *server
	ts      *httptest.Server
	fb      *auth.Firebase
	session *auth.Session
	client  *api.Client
}

func newFixture(t *testing.T, mutate func(o *Options)) *fixture {
	t.Helper()
	opts := &Options{
		DisableReqLogs: true,
		SigningKey:     "test-signing-key",
		APIKey:         testKey,
		StartingCredit: 5,
		Logger:         logging.Discard(),
	}
	if mutate != nil {
		mutate(opts)
	}
	srv := newServer(opts)
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	})

	fb := auth.NewFirebase(config.FirebaseConfig{
		APIKey:   testKey,
		AuthURL:  ts.URL + "/identitytoolkit",
		TokenURL: ts.URL + "/securetoken",
	})
	session := auth.NewSession(fb, auth.NewStore(filepath.Join(t.TempDir(), "session.json")))
	return &fixture{
		srv:     srv,
		ts:      ts,
		fb:      fb,
		session: session,
		client:  api.New(ts.URL, session),
	}
}

func (f *fixture) signUp(t *testing.T) *auth.User {
	t.Helper()
	user, err := f.session.SignUp(context.Background(), model.RegisterPayload{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "analytical",
	}, f.client)
	require.NoError(t, err)
	return user
}

// =============================================================================
// AUTH EMULATOR
// =============================================================================

func TestServer_Home(t *testing.T) {
	f := newFixture(t, nil)
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "devserver")
}

func TestIdentity_SignUpSignInRefresh(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	user, tokens, err := f.fb.SignUp(ctx, "grace@example.com", "compiler")
	require.NoError(t, err)
	assert.NotEmpty(t, user.UID)
	assert.Equal(t, "grace@example.com", user.Email)
	assert.True(t, tokens.ExpiresAt.After(time.Now()))

	updated, err := f.fb.UpdateProfile(ctx, tokens.IDToken, "Grace Hopper")
	require.NoError(t, err)
	require.NotNil(t, updated)
	claims, err := auth.ParseClaims(updated.IDToken)
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", claims.Name)
	assert.Equal(t, user.UID, claims.UserID)

	again, _, err := f.fb.SignInWithPassword(ctx, "GRACE@example.com", "compiler")
	require.NoError(t, err)
	assert.Equal(t, user.UID, again.UID)
	assert.Equal(t, "Grace Hopper", again.DisplayName)

	refreshed, err := f.fb.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	claims, err = auth.ParseClaims(refreshed.IDToken)
	require.NoError(t, err)
	assert.Equal(t, user.UID, claims.UserID)
}

func TestIdentity_Errors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	_, _, err := f.fb.SignUp(ctx, "grace@example.com", "compiler")
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		code string
	}{
		{"unknown email", func() error {
			_, _, err := f.fb.SignInWithPassword(ctx, "nobody@example.com", "whatever")
			return err
		}, "EMAIL_NOT_FOUND"},
		{"wrong password", func() error {
			_, _, err := f.fb.SignInWithPassword(ctx, "grace@example.com", "wrong-one")
			return err
		}, "INVALID_PASSWORD"},
		{"duplicate email", func() error {
			_, _, err := f.fb.SignUp(ctx, "grace@example.com", "compiler")
			return err
		}, "EMAIL_EXISTS"},
		{"weak password", func() error {
			_, _, err := f.fb.SignUp(ctx, "new@example.com", "abc")
			return err
		}, "WEAK_PASSWORD"},
		{"bad email", func() error {
			_, _, err := f.fb.SignUp(ctx, "not-an-email", "compiler")
			return err
		}, "INVALID_EMAIL"},
		{"forged token", func() error {
			_, err := f.fb.UpdateProfile(ctx, "abc.def.ghi", "Nobody")
			return err
		}, "INVALID_ID_TOKEN"},
		{"unknown refresh token", func() error {
			_, err := f.fb.Refresh(ctx, "rt_unknown")
			return err
		}, "INVALID_REFRESH_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var aerr *auth.Error
			require.True(t, errors.As(err, &aerr), "got %v", err)
			assert.Equal(t, tt.code, aerr.Code)
		})
	}
}

func TestIdentity_RejectsWrongAPIKey(t *testing.T) {
	f := newFixture(t, nil)
	other := auth.NewFirebase(config.FirebaseConfig{
		APIKey:   "someone-elses-key",
		AuthURL:  f.ts.URL + "/identitytoolkit",
		TokenURL: f.ts.URL + "/securetoken",
	})
	_, _, err := other.SignUp(context.Background(), "grace@example.com", "compiler")
	require.Error(t, err)
	assert.Equal(t, "Firebase API key is not valid", err.Error())
}

// =============================================================================
// BACKEND API
// =============================================================================

func TestSession_SignUpRegistersThenSignsIn(t *testing.T) {
	f := newFixture(t, nil)
	user := f.signUp(t)
	assert.Equal(t, "Ada Lovelace", user.DisplayName)

	info, err := f.client.GetUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, user.UID, info.ID)
	assert.Equal(t, "ada@example.com", info.Email)
	assert.Equal(t, 5.0, info.Credits)
	assert.Equal(t, "$", info.Currency)
}

func TestAPI_RegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t, nil)
	f.signUp(t)

	err := f.client.Register(context.Background(), model.RegisterPayload{
		FirstName: "Ada", Email: "ada@example.com", Password: "analytical",
	})
	require.Error(t, err)
	assert.Equal(t, "Email already registered", api.Message(err, ""))
}

func TestAPI_RequiresBearerToken(t *testing.T) {
	f := newFixture(t, nil)

	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tutors", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Not authenticated", body["detail"])

	anon := api.New(f.ts.URL, api.TokenFunc(func(context.Context) (string, error) { return "forged", nil }))
	_, err := anon.ListTutors(context.Background())
	assert.True(t, errors.Is(err, api.ErrUnauthorized))
}

func TestAPI_ValidationDetail(t *testing.T) {
	f := newFixture(t, nil)
	f.signUp(t)
	ctx := context.Background()

	err := f.client.CreateTutor(ctx, model.NewTutorPayload("   ", "anything"))
	require.Error(t, err)
	assert.Equal(t, "Name is required", api.Message(err, ""))

	err = f.client.AddCredit(ctx, model.CreditPayload{Amount: 0})
	require.Error(t, err)
	assert.Equal(t, "Amount must be greater than zero", api.Message(err, ""))
}

func TestAPI_TutorsModulesAndChat(t *testing.T) {
	f := newFixture(t, nil)
	f.signUp(t)
	ctx := context.Background()

	require.NoError(t, f.client.CreateTutor(ctx, model.NewTutorPayload("Biology", "Explain simply.")))
	tutors, err := f.client.ListTutors(ctx)
	require.NoError(t, err)
	require.Len(t, tutors, 1)
	tutor := tutors[0]
	assert.Equal(t, model.DefaultTutorModel, tutor.Model())

	require.NoError(t, f.client.UpdateTutor(ctx, tutor.Assistant.ID, model.NewTutorPayload("Botany", "Use plants.")))
	err = f.client.UpdateTutor(ctx, tutor.ID, model.NewTutorPayload("Botany", ""))
	assert.Equal(t, "Tutor not found", api.Message(err, ""), "updates address the assistant id")

	require.NoError(t, f.client.CreateModule(ctx, model.ModulePayload{Name: "Cells", AssistantID: tutor.Assistant.ID}))
	modules, err := f.client.ListModules(ctx)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	mod := modules[0]
	assert.Equal(t, "Botany", mod.TutorName())
	assert.NotEmpty(t, mod.ThreadID)

	require.NoError(t, f.client.SendMessage(ctx, model.NewMessagePayload(mod, "uid", "What is a cell?")))
	f.srv.pending.Wait()

	msgs, err := f.client.ListMessages(ctx, mod.ThreadID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, "What is a cell?", msgs[0].Text())
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.Contains(t, msgs[1].Text(), "What is a cell?")

	require.NoError(t, f.client.DeleteModule(ctx, mod.ID))
	_, err = f.client.ListMessages(ctx, mod.ThreadID)
	assert.Equal(t, "Thread not found", api.Message(err, ""))

	require.NoError(t, f.client.DeleteTutor(ctx, tutor.ID))
	tutors, err = f.client.ListTutors(ctx)
	require.NoError(t, err)
	assert.Empty(t, tutors)
}

func TestAPI_CreditsLedger(t *testing.T) {
	f := newFixture(t, nil)
	f.signUp(t)
	ctx := context.Background()

	require.NoError(t, f.client.CreateTutor(ctx, model.NewTutorPayload("Maths", "")))
	tutors, _ := f.client.ListTutors(ctx)
	require.NoError(t, f.client.CreateModule(ctx, model.ModulePayload{Name: "Algebra", AssistantID: tutors[0].Assistant.ID}))
	modules, _ := f.client.ListModules(ctx)
	require.NoError(t, f.client.SendMessage(ctx, model.NewMessagePayload(modules[0], "uid", "Solve x+1=2")))
	f.srv.pending.Wait()

	require.NoError(t, f.client.AddCredit(ctx, model.CreditPayload{Amount: 20}))

	ledger, err := f.client.ListCredits(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 3)
	assert.Equal(t, model.TopUp, ledger[0].Type)
	assert.Equal(t, SpendChat, ledger[1].Type)
	assert.Equal(t, -MessageCost, ledger[1].SignedAmount())

	summary, err := f.client.CreditsSummary(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, summary[model.TopUp], 1e-9)
	assert.InDelta(t, MessageCost, summary[SpendChat], 1e-9)

	info, err := f.client.GetUser(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 25-MessageCost, info.Credits, 1e-9)
}

func TestAPI_SendWithoutCredit(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.StartingCredit = 0 })
	f.signUp(t)
	ctx := context.Background()

	require.NoError(t, f.client.CreateTutor(ctx, model.NewTutorPayload("Maths", "")))
	tutors, _ := f.client.ListTutors(ctx)
	require.NoError(t, f.client.CreateModule(ctx, model.ModulePayload{Name: "Algebra", AssistantID: tutors[0].Assistant.ID}))
	modules, _ := f.client.ListModules(ctx)

	err := f.client.SendMessage(ctx, model.NewMessagePayload(modules[0], "uid", "Hello"))
	assert.Equal(t, "Insufficient credits", api.Message(err, ""))
}

func TestAPI_OtherUsersRecordsAreHidden(t *testing.T) {
	f := newFixture(t, nil)
	f.signUp(t)
	ctx := context.Background()
	require.NoError(t, f.client.CreateTutor(ctx, model.NewTutorPayload("Private", "")))

	other := auth.NewSession(f.fb, auth.NewStore(filepath.Join(t.TempDir(), "other.json")))
	otherClient := api.New(f.ts.URL, other)
	_, err := other.SignUp(ctx, model.RegisterPayload{
		FirstName: "Grace", Email: "grace@example.com", Password: "compiler",
	}, otherClient)
	require.NoError(t, err)

	tutors, err := otherClient.ListTutors(ctx)
	require.NoError(t, err)
	assert.Empty(t, tutors)
}

// =============================================================================
// REPLIES
// =============================================================================

type failingReplier struct{}

func (failingReplier) Reply(context.Context, string, []model.Message) (string, error) {
	return "", errors.New("model unavailable")
}

func TestAnswer_FailureIsNotCharged(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Replier = failingReplier{} })
	f.signUp(t)
	ctx := context.Background()

	require.NoError(t, f.client.CreateTutor(ctx, model.NewTutorPayload("Maths", "")))
	tutors, _ := f.client.ListTutors(ctx)
	require.NoError(t, f.client.CreateModule(ctx, model.ModulePayload{Name: "Algebra", AssistantID: tutors[0].Assistant.ID}))
	modules, _ := f.client.ListModules(ctx)
	require.NoError(t, f.client.SendMessage(ctx, model.NewMessagePayload(modules[0], "uid", "Hello")))
	f.srv.pending.Wait()

	msgs, err := f.client.ListMessages(ctx, modules[0].ThreadID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, replyFailed, msgs[1].Text())

	info, _ := f.client.GetUser(ctx)
	assert.Equal(t, 5.0, info.Credits)
}

func TestStop_CancelsPendingReplies(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.ReplyDelay = time.Hour })
	f.signUp(t)
	ctx := context.Background()

	require.NoError(t, f.client.CreateTutor(ctx, model.NewTutorPayload("Maths", "")))
	tutors, _ := f.client.ListTutors(ctx)
	require.NoError(t, f.client.CreateModule(ctx, model.ModulePayload{Name: "Algebra", AssistantID: tutors[0].Assistant.ID}))
	modules, _ := f.client.ListModules(ctx)
	require.NoError(t, f.client.SendMessage(ctx, model.NewMessagePayload(modules[0], "uid", "Hello")))

	stopped := make(chan error, 1)
	go func() {
		sctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		stopped <- f.srv.Stop(sctx)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop waited for a delayed reply")
	}

	msgs, ok := f.srv.store.messages(f.session.CurrentUser().UID, modules[0].ThreadID)
	require.True(t, ok)
	assert.Len(t, msgs, 1)
}

func TestOpenAIReplier(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	fake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Cells are the unit of life."},"finish_reason":"stop"}]}`))
	}))
	defer fake.Close()

	r := NewOpenAIReplier("sk-test", fake.URL+"/v1", "")
	history := []model.Message{
		model.NewTextMessage("m1", model.RoleUser, "What is a cell?", time.Now()),
	}
	text, err := r.Reply(context.Background(), "Explain simply.", history)
	require.NoError(t, err)
	assert.Equal(t, "Cells are the unit of life.", text)

	assert.Equal(t, model.DefaultTutorModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "Explain simply.", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
}

func TestCannedReplier(t *testing.T) {
	text, err := CannedReplier{}.Reply(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "What would you like to work on today?", text)

	history := []model.Message{
		model.NewTextMessage("m1", model.RoleUser, " Why is the sky blue? ", time.Now()),
		model.NewTextMessage("m2", model.RoleAssistant, "Let's see.", time.Now()),
	}
	text, _ = CannedReplier{}.Reply(context.Background(), "", history)
	assert.Contains(t, text, `"Why is the sky blue?"`)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default().DevServer
	opts := OptionsFromConfig(cfg, "web-key", logging.Discard())
	assert.IsType(t, CannedReplier{}, opts.Replier)
	assert.Equal(t, "web-key", opts.APIKey)
	assert.Equal(t, "127.0.0.1:8000", opts.Address)

	cfg.OpenAIKey = "sk-test"
	opts = OptionsFromConfig(cfg, "", logging.Discard())
	assert.IsType(t, &OpenAIReplier{}, opts.Replier)
}
