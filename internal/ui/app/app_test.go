// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ptutor-tui/internal/auth"
	"github.com/jeranaias/ptutor-tui/internal/config"
	"github.com/jeranaias/ptutor-tui/internal/logging"
	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/ui/components"
	"github.com/jeranaias/ptutor-tui/internal/ui/screens"
	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

// =============================================================================
// FAKES
// =============================================================================

type stubScreen struct {
	route     screens.Route
	closed    bool
	capturing bool
	keys      []string
}

func (s *stubScreen) Init() tea.Cmd { return nil }

func (s *stubScreen) Update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		s.keys = append(s.keys, k.String())
	}
	return nil
}

func (s *stubScreen) View() string        { return "screen:" + s.route.String() }
func (s *stubScreen) SetSize(w, h int)    {}
func (s *stubScreen) Close()              { s.closed = true }
func (s *stubScreen) Capturing() bool     { return s.capturing }
func (s *stubScreen) Keys() []key.Binding { return nil }

type identity struct {
	user       *auth.User
	signOutErr error
	signOuts   int
}

func (i *identity) CurrentUser() *auth.User { return i.user }

func (i *identity) SignIn(ctx context.Context, email, password string) (*auth.User, error) {
	return nil, errors.New("not used")
}

func (i *identity) SignUp(ctx context.Context, p model.RegisterPayload, reg auth.Registrar) (*auth.User, error) {
	return nil, errors.New("not used")
}

func (i *identity) SignOut(ctx context.Context) error {
	i.signOuts++
	if i.signOutErr != nil {
		return i.signOutErr
	}
	i.user = nil
	return nil
}

type harness struct {
	m       *Model
	id      *identity
	created []*stubScreen
}

func newHarness(t *testing.T, user *auth.User) *harness {
	t.Helper()
	h := &harness{id: &identity{user: user}}
	h.m = New(Options{
		Deps: screens.Deps{
			Session: h.id,
			Theme:   styles.NewTheme("dark"),
			Log:     logging.Discard(),
		},
		Factory: func(r screens.Route, _ screens.Deps) screens.Screen {
			s := &stubScreen{route: r}
			h.created = append(h.created, s)
			return s
		},
	})
	h.m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

func (h *harness) current() *stubScreen { return h.created[len(h.created)-1] }

// send feeds msg and every resulting message back into the model until
// nothing is left, skipping timer-driven commands.
func (h *harness) send(msg tea.Msg) {
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		_, cmd := h.m.Update(next)
		queue = append(queue, collect(cmd)...)
	}
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(100 * time.Millisecond):
		return nil
	}
	switch msg := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	case tea.QuitMsg:
		return nil
	}
	return []tea.Msg{msg}
}

func press(s string) tea.KeyMsg {
	switch s {
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func toastTitles(m *Model) []string {
	var out []string
	for _, t := range m.Toasts() {
		out = append(out, t.Title)
	}
	return out
}

var ada = &auth.User{UID: "u1", Email: "ada@example.com", DisplayName: "Ada Lovelace"}

// =============================================================================
// TESTS
// =============================================================================

func TestApp_StartsOnSignInWhenSignedOut(t *testing.T) {
	h := newHarness(t, nil)
	assert.Equal(t, screens.RouteSignIn, h.m.Route())
	assert.NotContains(t, h.m.View(), "Chats", "no sidebar on the sign-in page")
}

func TestApp_StartsOnChatsWhenSignedIn(t *testing.T) {
	h := newHarness(t, ada)
	assert.Equal(t, screens.RouteChats, h.m.Route())
	view := h.m.View()
	assert.Contains(t, view, "Personal Tutor")
	assert.Contains(t, view, "Ada Lovelace")
	assert.Contains(t, view, "screen:Chats")
}

func TestApp_NumberKeysNavigate(t *testing.T) {
	h := newHarness(t, ada)
	first := h.current()

	h.send(press("2"))
	assert.Equal(t, screens.RouteTutors, h.m.Route())
	assert.Equal(t, 1, h.m.Nav().Active())
	assert.True(t, first.closed, "previous screen is torn down")

	h.send(press("4"))
	assert.Equal(t, screens.RouteUsage, h.m.Route())
	assert.Equal(t, 3, h.m.Nav().Active())

	count := len(h.created)
	h.send(press("4"))
	assert.Len(t, h.created, count, "same destination does not rebuild")
}

func TestApp_CapturingScreenGetsDigits(t *testing.T) {
	h := newHarness(t, ada)
	h.current().capturing = true

	h.send(press("2"))
	assert.Equal(t, screens.RouteChats, h.m.Route())
	assert.Equal(t, []string{"2"}, h.current().keys)
}

func TestApp_SignOutCancelled(t *testing.T) {
	h := newHarness(t, ada)
	h.send(press("3"))

	h.send(press("ctrl+o"))
	require.True(t, h.m.SignOutOpen())
	assert.Contains(t, h.m.View(), "Are you sure you want to sign out?")

	h.send(press("n"))
	assert.False(t, h.m.SignOutOpen())
	assert.Zero(t, h.id.signOuts)
	assert.Equal(t, screens.RouteModules, h.m.Route())
	assert.Equal(t, 2, h.m.Nav().Active())
}

func TestApp_SignOutConfirmed(t *testing.T) {
	h := newHarness(t, ada)
	h.send(press("4"))
	require.Equal(t, 3, h.m.Nav().Active())

	h.send(press("ctrl+o"))
	assert.Zero(t, h.id.signOuts, "nothing happens before confirmation")
	h.send(press("y"))

	assert.Equal(t, 1, h.id.signOuts)
	assert.Equal(t, 0, h.m.Nav().Active(), "nav index resets")
	assert.Equal(t, screens.RouteSignIn, h.m.Route())
	assert.Contains(t, toastTitles(h.m), msgSignedOut)
}

func TestApp_SignOutFailureStays(t *testing.T) {
	h := newHarness(t, ada)
	h.id.signOutErr = errors.New("network down")
	h.send(press("2"))

	h.send(press("ctrl+o"))
	h.send(press("y"))

	assert.Equal(t, screens.RouteTutors, h.m.Route())
	assert.Equal(t, 1, h.m.Nav().Active())
	assert.Contains(t, toastTitles(h.m), msgSignOutFailed)
}

func TestApp_RedirectAndSignIn(t *testing.T) {
	h := newHarness(t, ada)
	h.send(press("2"))

	h.send(screens.RedirectMsg{Route: screens.RouteSignIn})
	assert.Equal(t, screens.RouteSignIn, h.m.Route())

	h.send(screens.SignedInMsg{User: auth.User{UID: "u2", Email: "grace@example.com", DisplayName: "Grace"}})
	assert.Equal(t, screens.RouteChats, h.m.Route())
	assert.Equal(t, 0, h.m.Nav().Active())
	assert.Contains(t, h.m.View(), "Grace")
}

func TestApp_RedirectToDashboardRouteMovesNav(t *testing.T) {
	h := newHarness(t, ada)
	h.send(screens.RedirectMsg{Route: screens.RouteModules})
	assert.Equal(t, 2, h.m.Nav().Active())
	assert.Contains(t, h.m.View(), "screen:Modules")
}

func TestApp_ToastFromScreen(t *testing.T) {
	h := newHarness(t, ada)
	h.send(components.ToastMsg{Kind: components.ToastError, Title: "Failed to fetch modules"})
	assert.Contains(t, h.m.View(), "Failed to fetch modules")
}

func TestApp_HelpToggle(t *testing.T) {
	h := newHarness(t, ada)
	h.send(press("?"))
	assert.True(t, h.m.showHelp)
	assert.Contains(t, h.m.View(), "sign out")
}

func TestApp_ConfigReload(t *testing.T) {
	h := newHarness(t, ada)
	cfg := config.Default()
	cfg.Chat.PollDelaySecs = 9
	cfg.UI.Currency = "€"

	h.send(ConfigReloadedMsg{Config: cfg})
	assert.Equal(t, 9*time.Second, h.m.deps.PollDelay)
	assert.Equal(t, "€", h.m.deps.Currency)

	h.send(ConfigReloadedMsg{Err: errors.New("bad toml")})
	assert.Contains(t, toastTitles(h.m), "Config not reloaded")
}

func TestApp_QuitClosesScreen(t *testing.T) {
	h := newHarness(t, ada)
	_, cmd := h.m.Update(press("ctrl+c"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, h.current().closed)
}
