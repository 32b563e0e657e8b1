// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ptutor-tui/internal/api"
	"github.com/jeranaias/ptutor-tui/internal/auth"
	"github.com/jeranaias/ptutor-tui/internal/config"
	"github.com/jeranaias/ptutor-tui/internal/logging"
	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/telemetry"
	"github.com/jeranaias/ptutor-tui/internal/validate"
)

// =============================================================================
// FAKES
// =============================================================================

func at(day int) model.Timestamp {
	return model.Timestamp{Time: time.Date(2024, time.March, day, 10, 0, 0, 0, time.UTC)}
}

type fakeBackend struct {
	mu       sync.Mutex
	tutors   []model.Tutor
	modules  []model.Module
	messages map[string][]model.Message
	user     model.UserInfo
	credits  []model.CreditTransaction
	summary  model.CreditSummary
	listErr  error
	sent     []model.MessagePayload
	added    []model.CreditPayload
	reply    string
	silent   bool // the tutor never answers
	listed   int
}

func (f *fakeBackend) ListTutors(context.Context) ([]model.Tutor, error) {
	return f.tutors, f.listErr
}

func (f *fakeBackend) ListModules(context.Context) ([]model.Module, error) {
	return f.modules, f.listErr
}

func (f *fakeBackend) ListMessages(_ context.Context, threadID string) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed++
	return append([]model.Message(nil), f.messages[threadID]...), nil
}

func (f *fakeBackend) SendMessage(_ context.Context, p model.MessagePayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, p)
	n := len(f.messages[p.ThreadID])
	f.messages[p.ThreadID] = append(f.messages[p.ThreadID],
		model.NewTextMessage(fmt.Sprintf("m%d", n+1), model.RoleUser, p.Content, time.Now()))
	if !f.silent {
		f.messages[p.ThreadID] = append(f.messages[p.ThreadID],
			model.NewTextMessage(fmt.Sprintf("m%d", n+2), model.RoleAssistant, f.reply, time.Now()))
	}
	return nil
}

func (f *fakeBackend) GetUser(context.Context) (model.UserInfo, error) {
	return f.user, nil
}

func (f *fakeBackend) ListCredits(context.Context) ([]model.CreditTransaction, error) {
	return f.credits, nil
}

func (f *fakeBackend) AddCredit(_ context.Context, p model.CreditPayload) error {
	f.added = append(f.added, p)
	f.user.Credits += p.Amount
	return nil
}

func (f *fakeBackend) CreditsSummary(context.Context) (model.CreditSummary, error) {
	return f.summary, nil
}

func (f *fakeBackend) Register(context.Context, model.RegisterPayload) error { return nil }

func newBackend() *fakeBackend {
	biology := model.Assistant{ID: "asst_1", Name: "Biology", Model: "gpt-3.5-turbo-1106", Instructions: "Explain\nsimply", Created: at(1)}
	history := model.Assistant{ID: "asst_2", Name: "History", Model: "gpt-4", Created: at(5)}
	return &fakeBackend{
		tutors: []model.Tutor{
			{ID: "tutor_1", Assistant: biology, Created: at(1)},
			{ID: "tutor_2", Assistant: history, Created: at(5)},
		},
		modules: []model.Module{
			{ID: "mod_1", Name: "Cells", AssistantID: "asst_1", ThreadID: "thread_1", Assistant: biology, Created: at(2)},
			{ID: "mod_2", Name: "Rome", AssistantID: "asst_2", ThreadID: "thread_2", Assistant: history, Created: at(6)},
		},
		messages: map[string][]model.Message{},
		user:     model.UserInfo{ID: "uid-1", DisplayName: "Ada Lovelace", Email: "ada@example.com", Credits: 1234.5, Currency: "$"},
		credits: []model.CreditTransaction{
			{ID: "c1", Type: model.TopUp, Amount: 20, Currency: "$", Created: at(1)},
			{ID: "c2", Type: "Chat", Amount: 1.25, Currency: "$", Created: at(3)},
		},
		summary: model.CreditSummary{model.TopUp: 20, "Chat": 1.25},
		reply:   "Cells are the smallest unit of life.",
	}
}

type fakeIdentity struct {
	user      *auth.User
	signInErr error
	gotEmail  string
	gotPass   string
	signUp    *model.RegisterPayload
	registrar auth.Registrar
	signOuts  int
}

func (f *fakeIdentity) CurrentUser() *auth.User { return f.user }

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (*auth.User, error) {
	f.gotEmail, f.gotPass = email, password
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.user = &auth.User{UID: "uid-1", Email: email, DisplayName: "Ada Lovelace"}
	return f.user, nil
}

func (f *fakeIdentity) SignUp(_ context.Context, p model.RegisterPayload, reg auth.Registrar) (*auth.User, error) {
	f.signUp = &p
	f.registrar = reg
	f.user = &auth.User{UID: "uid-2", Email: p.Email, DisplayName: p.DisplayName()}
	return f.user, nil
}

func (f *fakeIdentity) SignOut(context.Context) error {
	f.signOuts++
	f.user = nil
	return nil
}

func signedIn() *fakeIdentity {
	return &fakeIdentity{user: &auth.User{UID: "uid-1", Email: "ada@example.com", DisplayName: "Ada Lovelace"}}
}

type fakeTraces struct {
	spans []telemetry.Span
	stats []telemetry.Stat
}

func (f fakeTraces) Recent(limit int) ([]telemetry.Span, error) {
	if limit < len(f.spans) {
		return f.spans[:limit], nil
	}
	return f.spans, nil
}

func (f fakeTraces) Stats() ([]telemetry.Stat, error) { return f.stats, nil }

type fakeServer struct {
	stopped chan struct{}
	stops   int
}

func (s *fakeServer) Start() error {
	<-s.stopped
	return nil
}

func (s *fakeServer) Stop(context.Context) error {
	s.stops++
	close(s.stopped)
	return nil
}

type harness struct {
	env     *Env
	out     *bytes.Buffer
	errOut  *bytes.Buffer
	backend *fakeBackend
	session *fakeIdentity
}

func newHarness(t *testing.T, input string) *harness {
	t.Helper()
	h := &harness{
		out:     &bytes.Buffer{},
		errOut:  &bytes.Buffer{},
		backend: newBackend(),
		session: signedIn(),
	}
	h.env = &Env{
		Config:    config.Default(),
		API:       h.backend,
		Session:   h.session,
		Log:       logging.Discard(),
		In:        strings.NewReader(input),
		Out:       h.out,
		Err:       h.errOut,
		PollDelay: time.Millisecond,
		ReadPassword: func(string) (string, error) {
			return "secret1", nil
		},
	}
	return h
}

func (h *harness) run(t *testing.T, argv ...string) error {
	t.Helper()
	args, err := Parse(argv)
	require.NoError(t, err)
	return Run(context.Background(), args, h.env)
}

func (h *harness) envelope(t *testing.T) JSONResponse {
	t.Helper()
	var resp JSONResponse
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &resp), h.out.String())
	return resp
}

// =============================================================================
// PARSING
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		argv  []string
		check func(t *testing.T, a Args)
	}{
		{"no args starts the dashboard", nil, func(t *testing.T, a Args) {
			assert.Equal(t, CmdTUI, a.Command)
		}},
		{"global flag before command", []string{"--json", "tutors"}, func(t *testing.T, a Args) {
			assert.Equal(t, CmdTutors, a.Command)
			assert.True(t, a.JSON)
		}},
		{"alias", []string{"login", "--email", "ada@example.com"}, func(t *testing.T, a Args) {
			assert.Equal(t, CmdSignIn, a.Command)
			assert.Equal(t, "ada@example.com", a.Email)
		}},
		{"help topic", []string{"help", "chat"}, func(t *testing.T, a Args) {
			assert.Equal(t, CmdHelp, a.Command)
			assert.Equal(t, "chat", a.Topic)
		}},
		{"--help on a command", []string{"usage", "--help"}, func(t *testing.T, a Args) {
			assert.Equal(t, CmdHelp, a.Command)
			assert.Equal(t, "usage", a.Topic)
		}},
		{"version flag", []string{"--version"}, func(t *testing.T, a Args) {
			assert.Equal(t, CmdVersion, a.Command)
		}},
		{"credits add", []string{"credits", "add", "20"}, func(t *testing.T, a Args) {
			assert.Equal(t, CmdCredits, a.Command)
			assert.Equal(t, []string{"20"}, a.Rest)
		}},
		{"config set", []string{"--config", "/tmp/p.toml", "config", "set", "ui.theme", "light"}, func(t *testing.T, a Args) {
			assert.Equal(t, "/tmp/p.toml", a.ConfigPath)
			assert.Equal(t, "set", a.Subcommand)
			assert.Equal(t, []string{"ui.theme", "light"}, a.Rest)
		}},
		{"limit", []string{"traces", "--limit", "5"}, func(t *testing.T, a Args) {
			assert.Equal(t, 5, a.Limit)
		}},
		{"chat module", []string{"chat", "--module", "Cells", "-v"}, func(t *testing.T, a Args) {
			assert.Equal(t, "Cells", a.Module)
			assert.True(t, a.Verbose)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := Parse(tt.argv)
			require.NoError(t, err)
			tt.check(t, args)
		})
	}
}

func TestParse_UsageErrors(t *testing.T) {
	for _, argv := range [][]string{
		{"bogus"},
		{"credits"},
		{"credits", "add"},
		{"tutors", "delete"},
		{"traces", "--limit", "0"},
		{"config", "get"},
		{"config", "frobnicate"},
	} {
		t.Run(strings.Join(argv, " "), func(t *testing.T) {
			_, err := Parse(argv)
			require.Error(t, err)
			assert.Equal(t, ExitUsageError, ExitCode(err))
		})
	}
}

func TestArgParser_BoolFlagsDoNotConsume(t *testing.T) {
	p := NewArgParser([]string{"--json", "tutors", "--limit", "3", "--force=true", "--", "--raw"}, "json", "force")
	assert.True(t, p.BoolFlag("json"))
	assert.True(t, p.BoolFlag("force"))
	assert.Equal(t, "tutors", p.Subcommand())
	assert.Equal(t, "3", p.Flag("limit"))
	assert.Equal(t, []string{"tutors", "--raw"}, p.PositionalFrom(0))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		err  bool
	}{
		{"20", 20, false},
		{"$1,250.50", 1250.5, false},
		{" 0.5 ", 0.5, false},
		{"", 0, true},
		{"twenty", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

// =============================================================================
// ERRORS
// =============================================================================

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", &UsageError{Message: "bad"}, ExitUsageError},
		{"form", validate.FieldErrors{"email": "Invalid email address"}, ExitUsageError},
		{"not signed in", auth.ErrNotSignedIn, ExitAuthError},
		{"wrapped not signed in", &CommandError{Command: "x", Action: "y", Reason: "z", Err: auth.ErrNotSignedIn}, ExitAuthError},
		{"firebase", &auth.Error{Status: 400, Code: "INVALID_PASSWORD"}, ExitAuthError},
		{"backend 401", &api.Error{Status: 401}, ExitAuthError},
		{"backend 500", &api.Error{Status: 500, Detail: "boom"}, ExitNetworkError},
		{"timeout", fmt.Errorf("fetch: %w", context.DeadlineExceeded), ExitNetworkError},
		{"config", fmt.Errorf("%w: bad url", config.ErrInvalid), ExitConfigError},
		{"other", errors.New("disk full"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestFormatError_Hints(t *testing.T) {
	assert.Contains(t, FormatError(auth.ErrNotSignedIn), "ptutor signin")
	assert.NotContains(t, FormatError(&auth.Error{Status: 400, Code: "INVALID_PASSWORD"}), "ptutor signin")
	assert.Contains(t, FormatError(&UsageError{Command: "credits", Message: "expected"}), "ptutor help credits")
}

// =============================================================================
// COMMANDS
// =============================================================================

func TestRun_TutorsJSON(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.run(t, "tutors", "--json"))

	resp := h.envelope(t)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "tutors", resp.Command)

	data, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "tutor_2", first["id"], "newest first")
}

func TestRun_TutorsTable(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.run(t, "tutors"))
	out := h.out.String()

	assert.Contains(t, out, "Instruction")
	assert.Contains(t, out, "Explain simply")
	assert.Less(t, strings.Index(out, "History"), strings.Index(out, "Biology"))
}

func TestRun_ModulesEmpty(t *testing.T) {
	h := newHarness(t, "")
	h.backend.modules = nil
	require.NoError(t, h.run(t, "modules"))
	assert.Contains(t, h.out.String(), "No modules yet")
}

func TestRun_RequiresSignIn(t *testing.T) {
	h := newHarness(t, "")
	h.session.user = nil

	err := h.run(t, "tutors", "--json")
	require.ErrorIs(t, err, auth.ErrNotSignedIn)
	assert.Equal(t, ExitAuthError, ExitCode(err))

	resp := h.envelope(t)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "not signed in", *resp.Error)
}

func TestRun_BackendFailure(t *testing.T) {
	h := newHarness(t, "")
	h.backend.listErr = &api.Error{Status: 500, Detail: "database unavailable"}
	err := h.run(t, "modules")
	assert.Equal(t, ExitNetworkError, ExitCode(err))
}

func TestRun_SignIn(t *testing.T) {
	h := newHarness(t, "ada@example.com\n")
	h.session.user = nil

	require.NoError(t, h.run(t, "signin"))
	assert.Equal(t, "ada@example.com", h.session.gotEmail)
	assert.Equal(t, "secret1", h.session.gotPass)
	assert.Contains(t, h.out.String(), "Signed in.")
	assert.Contains(t, h.out.String(), "Ada Lovelace")
	assert.Contains(t, h.errOut.String(), "Email address: ")
}

func TestRun_SignInValidation(t *testing.T) {
	h := newHarness(t, "")
	h.session.user = nil

	err := h.run(t, "signin", "--email", "not-an-email")
	require.Error(t, err)
	assert.Equal(t, "Invalid email address", validate.FieldError(err, "email"))
	assert.Equal(t, ExitUsageError, ExitCode(err))
	assert.Empty(t, h.session.gotEmail, "no request for invalid input")
}

func TestRun_SignInFailure(t *testing.T) {
	h := newHarness(t, "")
	h.session.user = nil
	h.session.signInErr = &auth.Error{Status: 400, Code: "INVALID_PASSWORD"}

	err := h.run(t, "signin", "--email", "ada@example.com")
	assert.Equal(t, ExitAuthError, ExitCode(err))
	assert.Equal(t, "Invalid email or password", err.Error())
}

func TestRun_SignUp(t *testing.T) {
	h := newHarness(t, "Ada\nLovelace\nada@example.com\n")
	h.session.user = nil

	require.NoError(t, h.run(t, "signup"))
	require.NotNil(t, h.session.signUp)
	assert.Equal(t, "Ada Lovelace", h.session.signUp.DisplayName())
	assert.Equal(t, "secret1", h.session.signUp.Password)
	assert.Same(t, h.backend, h.session.registrar)
	assert.Contains(t, h.out.String(), msgRegistered)
}

func TestRun_SignUpShortPassword(t *testing.T) {
	h := newHarness(t, "Ada\n\nada@example.com\n")
	h.env.ReadPassword = func(string) (string, error) { return "abc", nil }

	err := h.run(t, "signup")
	assert.Equal(t, "Password must be at least 6 characters long", validate.FieldError(err, "password"))
}

func TestRun_SignOut(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.run(t, "signout"))
	assert.Equal(t, 1, h.session.signOuts)
	assert.Contains(t, h.out.String(), msgSignedOut)

	h.out.Reset()
	require.NoError(t, h.run(t, "signout"))
	assert.Equal(t, 1, h.session.signOuts)
	assert.Contains(t, h.out.String(), "Not signed in.")
}

func TestRun_WhoAmI(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.run(t, "whoami", "--json"))
	data := h.envelope(t).Data.(map[string]interface{})
	assert.Equal(t, "uid-1", data["uid"])
	assert.Equal(t, "Ada Lovelace", data["display_name"])
}

func TestRun_Usage(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.run(t, "usage"))
	out := h.out.String()

	assert.Contains(t, out, "Credit balance: $1,234.50")
	assert.Contains(t, out, "+$20.00")
	assert.Contains(t, out, "-$1.25")
	assert.Contains(t, out, "Spend by type")
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "Top Up", "ledger types are title-cased")
	assert.Less(t, strings.Index(out, "-$1.25"), strings.Index(out, "+$20.00"), "ledger newest first")
}

func TestRun_CreditsAdd(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.run(t, "credits", "add", "$20"))
	require.Len(t, h.backend.added, 1)
	assert.Equal(t, 20.0, h.backend.added[0].Amount)
	assert.Contains(t, h.out.String(), "Credit added.")
	assert.Contains(t, h.out.String(), "$1,254.50")

	err := h.run(t, "credits", "add", "0")
	assert.Equal(t, "Amount must be greater than zero", validate.FieldError(err, "amount"))
	assert.Len(t, h.backend.added, 1)
}

func TestRun_Chat(t *testing.T) {
	h := newHarness(t, "Hello there\n/modules\n/quit\n")
	require.NoError(t, h.run(t, "chat"))
	out := h.out.String()

	require.Len(t, h.backend.sent, 1)
	sent := h.backend.sent[0]
	assert.Equal(t, "thread_1", sent.ThreadID)
	assert.Equal(t, "asst_1", sent.AssistantID)
	assert.Equal(t, "uid-1", sent.UserID)
	assert.Equal(t, "Hello there", sent.Content)

	assert.Contains(t, out, "No Chats")
	assert.Contains(t, out, "Thinking...")
	assert.Contains(t, out, "Cells are the smallest unit of life.")
	assert.Contains(t, out, "* Cells")
	assert.Equal(t, 1, strings.Count(out, "Hello there"), "messages are printed once")
}

func TestRun_ChatRefetchesOnce(t *testing.T) {
	h := newHarness(t, "Hello there\n/quit\n")
	h.backend.silent = true
	require.NoError(t, h.run(t, "chat"))

	assert.Equal(t, 2, h.backend.listed, "thread load plus a single delayed refetch")
	assert.Contains(t, h.out.String(), "No reply yet.")
}

func TestRun_ChatPicksModuleByName(t *testing.T) {
	h := newHarness(t, "Who was Caesar?\n")
	require.NoError(t, h.run(t, "chat", "--module", "rome"))
	require.Len(t, h.backend.sent, 1)
	assert.Equal(t, "thread_2", h.backend.sent[0].ThreadID)
}

func TestRun_ChatErrors(t *testing.T) {
	h := newHarness(t, "")
	err := h.run(t, "chat", "--module", "Chemistry")
	assert.Equal(t, ExitUsageError, ExitCode(err))

	h.backend.modules = nil
	err = h.run(t, "chat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "One more thing!")
}

func TestRun_Traces(t *testing.T) {
	h := newHarness(t, "")
	err := h.run(t, "traces")
	var cerr *CommandError
	require.ErrorAs(t, err, &cerr)

	h.env.Traces = fakeTraces{
		spans: []telemetry.Span{
			{ID: "1", Name: "fetch Tutors", StartedAt: time.Now().UnixMilli(), DurationMS: 42, OK: true},
			{ID: "2", Name: "create Message", StartedAt: time.Now().UnixMilli(), DurationMS: 120, OK: false, Error: "HTTP 500"},
		},
		stats: []telemetry.Stat{{Name: "fetch Tutors", Count: 1, Avg: 42 * time.Millisecond, P95: 42 * time.Millisecond}},
	}
	require.NoError(t, h.run(t, "traces", "--limit", "1"))
	out := h.out.String()
	assert.Contains(t, out, "Last 1 requests")
	assert.Contains(t, out, "fetch Tutors")
	assert.Contains(t, out, "42ms")
	assert.NotContains(t, out, "HTTP 500")
}

func TestRun_Config(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PTUTOR_HOME", dir)
	h := newHarness(t, "")
	path := filepath.Join(dir, "nested", "config.toml")
	h.env.ConfigPath = path
	h.env.Config.Firebase.APIKey = "AIzaSecret"

	require.NoError(t, h.run(t, "config", "path"))
	assert.Equal(t, path+"\n", h.out.String())

	require.NoError(t, h.run(t, "config", "init"))
	_, err := os.Stat(path)
	require.NoError(t, err)
	err = h.run(t, "config", "init")
	assert.Equal(t, ExitUsageError, ExitCode(err))

	require.NoError(t, h.run(t, "config", "set", "chat.poll_delay_secs", "8"))
	loaded := config.Default()
	require.NoError(t, config.LoadTOML(loaded, path))
	assert.Equal(t, 8, loaded.Chat.PollDelaySecs)
	assert.Empty(t, loaded.Firebase.APIKey, "env-provided secrets stay out of the file")
	assert.Equal(t, 8*time.Second, h.env.Config.Chat.PollDelay())

	err = h.run(t, "config", "set", "chat.poll_delay_secs", "500")
	assert.Equal(t, ExitConfigError, ExitCode(err))

	h.out.Reset()
	require.NoError(t, h.run(t, "config", "get", "firebase.api_key"))
	assert.Equal(t, "[REDACTED]\n", h.out.String())

	h.out.Reset()
	require.NoError(t, h.run(t, "config", "show"))
	assert.NotContains(t, h.out.String(), "AIzaSecret")
}

func TestRun_DevServer(t *testing.T) {
	h := newHarness(t, "")
	srv := &fakeServer{stopped: make(chan struct{})}
	var gotAddr string
	h.env.NewServer = func(addr string) Server {
		gotAddr = addr
		return srv
	}

	args, err := Parse([]string{"devserver", "--addr", "127.0.0.1:9999"})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, args, h.env) }()

	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("devserver did not stop")
	}
	assert.Equal(t, "127.0.0.1:9999", gotAddr)
	assert.Equal(t, 1, srv.stops)
}

func TestRun_VersionAndHelp(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.run(t, "version", "--json"))
	data := h.envelope(t).Data.(map[string]interface{})
	assert.Equal(t, Version, data["version"])

	h.out.Reset()
	require.NoError(t, h.run(t, "help"))
	assert.Contains(t, h.out.String(), "ptutor credits add <amount>")

	h.out.Reset()
	require.NoError(t, h.run(t, "help", "devserver"))
	assert.Contains(t, h.out.String(), "firebase.auth_url")

	err := h.run(t, "help", "nonsense")
	assert.Equal(t, ExitUsageError, ExitCode(err))
}
