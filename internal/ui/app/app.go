// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the root bubbletea model: header, sidebar, toasts and
// the active screen.
package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ptutor-tui/internal/auth"
	"github.com/jeranaias/ptutor-tui/internal/config"
	"github.com/jeranaias/ptutor-tui/internal/logging"
	"github.com/jeranaias/ptutor-tui/internal/store"
	"github.com/jeranaias/ptutor-tui/internal/ui/components"
	"github.com/jeranaias/ptutor-tui/internal/ui/screens"
)

const (
	signOutDialog = "sign-out"

	msgSignedOut     = "Signed out successfully."
	msgSignOutFailed = "Oops! Could not sign you out."

	signOutTimeout = 15 * time.Second
)

// destinations are the sidebar entries in nav index order.
var destinations = []screens.Route{
	screens.RouteChats,
	screens.RouteTutors,
	screens.RouteModules,
	screens.RouteUsage,
}

// Factory builds the screen for a route.
type Factory func(r screens.Route, deps screens.Deps) screens.Screen

// DefaultFactory builds the real screens.
func DefaultFactory(r screens.Route, deps screens.Deps) screens.Screen {
	switch r {
	case screens.RouteTutors:
		return screens.NewTutors(deps)
	case screens.RouteModules:
		return screens.NewModules(deps)
	case screens.RouteUsage:
		return screens.NewUsage(deps)
	case screens.RouteSignIn:
		return screens.NewSignIn(deps)
	case screens.RouteSignUp:
		return screens.NewSignUp(deps)
	default:
		return screens.NewChats(deps)
	}
}

// =============================================================================
// MESSAGES
// =============================================================================

type signedOutMsg struct {
	err error
}

// ConfigReloadedMsg carries a config re-read after the file changed.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// Options configures the root model.
type Options struct {
	Deps    screens.Deps
	Factory Factory // nil uses DefaultFactory
	// Reloads delivers config changes, typically from WatchConfig.
	Reloads <-chan ConfigReloadedMsg
}

// Model is the root model.
type Model struct {
	deps    screens.Deps
	factory Factory
	reloads <-chan ConfigReloadedMsg

	nav         *store.NavStore
	active      int
	unsubscribe func()

	route  screens.Route
	screen screens.Screen

	header  *components.Header
	sidebar *components.Sidebar
	toasts  *components.ToastManager
	ticking bool
	confirm *components.ConfirmDialog

	keys     KeyMap
	help     help.Model
	showHelp bool

	width, height int
}

// New creates the root model. The first page is chats when a user is
// signed in, sign-in otherwise.
func New(opts Options) *Model {
	m := &Model{
		deps:    opts.Deps,
		factory: opts.Factory,
		reloads: opts.Reloads,
		nav:     store.NewNavStore(len(destinations)),
		header:  components.NewHeader(opts.Deps.Theme),
		sidebar: components.NewSidebar(opts.Deps.Theme, []components.NavItem{
			{Label: "Chats", Key: "1"},
			{Label: "Tutors", Key: "2"},
			{Label: "Modules", Key: "3"},
			{Label: "Usage", Key: "4"},
			{Label: "Sign out", Key: "^o", Danger: true},
		}),
		toasts:  components.NewToastManager(),
		confirm: components.NewConfirmDialog(opts.Deps.Theme),
		keys:    DefaultKeyMap(),
		help:    help.New(),
		width:   80,
		height:  24,
	}
	if m.factory == nil {
		m.factory = DefaultFactory
	}
	m.unsubscribe = m.nav.Subscribe(func(i int) { m.active = i })

	m.route = screens.RouteSignIn
	if u := m.currentUser(); u != nil {
		m.route = screens.RouteChats
		m.header.SetUser(u.DisplayName, u.Email)
	}
	m.screen = m.factory(m.route, m.deps)
	return m
}

// Nav returns the navigation store.
func (m *Model) Nav() *store.NavStore { return m.nav }

// Route returns the page shown.
func (m *Model) Route() screens.Route { return m.route }

// Screen returns the active screen.
func (m *Model) Screen() screens.Screen { return m.screen }

// Toasts returns the visible toasts.
func (m *Model) Toasts() []components.Toast { return m.toasts.Toasts() }

// SignOutOpen reports whether the sign-out confirmation is showing.
func (m *Model) SignOutOpen() bool { return m.confirm.IsVisible() }

func (m *Model) currentUser() *auth.User {
	if m.deps.Session == nil {
		return nil
	}
	return m.deps.Session.CurrentUser()
}

func (m *Model) log() logging.Logger {
	if m.deps.Log == nil {
		return logging.Default()
	}
	return m.deps.Log
}

// Init starts the first screen and the config listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.screen.Init(), m.waitReload())
}

func (m *Model) waitReload() tea.Cmd {
	if m.reloads == nil {
		return nil
	}
	ch := m.reloads
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.deps.Theme.SetSize(msg.Width, msg.Height)
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case screens.RedirectMsg:
		return m, m.navigate(msg.Route)

	case screens.SignedInMsg:
		m.header.SetUser(msg.User.DisplayName, msg.User.Email)
		return m, m.navigate(screens.RouteChats)

	case components.ToastMsg:
		m.toasts.Add(msg.Kind, msg.Title, msg.Detail)
		m.layout()
		return m, m.startTicking()

	case components.ToastTickMsg:
		m.toasts.Tick()
		m.layout()
		if !m.toasts.HasToasts() {
			m.ticking = false
			return m, nil
		}
		return m, components.ToastTickCmd()

	case components.ConfirmResultMsg:
		if msg.ID != signOutDialog {
			break
		}
		if !msg.Confirmed {
			return m, nil
		}
		return m, m.signOut()

	case signedOutMsg:
		return m, m.signedOut(msg.err)

	case ConfigReloadedMsg:
		return m, tea.Batch(m.applyConfig(msg), m.waitReload())
	}

	return m, m.screen.Update(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		m.screen.Close()
		m.unsubscribe()
		return tea.Quit
	}
	if cmd, ok := m.confirm.Update(msg); ok {
		return cmd
	}
	if !m.route.Dashboard() {
		return m.screen.Update(msg)
	}

	if key.Matches(msg, m.keys.SignOut) {
		m.openSignOut()
		return nil
	}
	if m.screen.Capturing() {
		return m.screen.Update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.layout()
		return nil
	case key.Matches(msg, m.keys.Chats):
		return m.navigate(screens.RouteChats)
	case key.Matches(msg, m.keys.Tutors):
		return m.navigate(screens.RouteTutors)
	case key.Matches(msg, m.keys.Modules):
		return m.navigate(screens.RouteModules)
	case key.Matches(msg, m.keys.Usage):
		return m.navigate(screens.RouteUsage)
	}
	return m.screen.Update(msg)
}

// navigate tears down the current screen and starts the one for r.
func (m *Model) navigate(r screens.Route) tea.Cmd {
	if r.Dashboard() {
		if err := m.nav.SetActive(int(r)); err != nil {
			m.log().Warn("navigate: %v", err)
			return nil
		}
		if r == m.route {
			return nil
		}
	}
	m.screen.Close()
	m.route = r
	m.screen = m.factory(r, m.deps)
	m.layout()
	return m.screen.Init()
}

func (m *Model) openSignOut() {
	m.confirm.SetWidth(m.width)
	m.confirm.Show(signOutDialog, "Sign Out", "Are you sure you want to sign out?", "Sign Out")
}

func (m *Model) signOut() tea.Cmd {
	session := m.deps.Session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), signOutTimeout)
		defer cancel()
		return signedOutMsg{err: session.SignOut(ctx)}
	}
}

func (m *Model) signedOut(err error) tea.Cmd {
	if m.deps.Audit != nil {
		if aerr := m.deps.Audit.LogAction("auth.signout", m.header.Email, "", err); aerr != nil {
			m.log().Warn("audit write failed: %v", aerr)
		}
	}
	if err != nil {
		m.log().Warn("sign out: %v", err)
		return components.ShowToast(components.ToastError, msgSignOutFailed, "")
	}

	_ = m.nav.SetActive(0)
	m.header.SetUser("", "")
	return tea.Batch(
		components.ShowToast(components.ToastSuccess, msgSignedOut, ""),
		m.navigate(screens.RouteSignIn),
	)
}

func (m *Model) startTicking() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return components.ToastTickCmd()
}

// applyConfig takes the settings that can change while running. Screens
// built afterwards see them; the open screen keeps its own.
func (m *Model) applyConfig(msg ConfigReloadedMsg) tea.Cmd {
	if msg.Err != nil {
		m.log().Warn("config reload: %v", msg.Err)
		return components.ShowToast(components.ToastWarning, "Config not reloaded", msg.Err.Error())
	}
	if msg.Config == nil {
		return nil
	}
	m.deps.PollDelay = msg.Config.Chat.PollDelay()
	if msg.Config.UI.Currency != "" {
		m.deps.Currency = msg.Config.UI.Currency
	}
	m.log().Info("config reloaded: poll delay %s", m.deps.PollDelay)
	return nil
}

// WatchConfig bridges a config watcher to a channel for Options.Reloads.
func WatchConfig(w *config.Watcher) <-chan ConfigReloadedMsg {
	ch := make(chan ConfigReloadedMsg, 1)
	w.OnChange(func(cfg *config.Config, err error) {
		msg := ConfigReloadedMsg{Config: cfg, Err: err}
		select {
		case ch <- msg:
		default:
			// replace the unread reload with the newer one
			select {
			case <-ch:
			default:
			}
			ch <- msg
		}
	})
	return ch
}
