// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ptutor-tui/internal/api"
	"github.com/jeranaias/ptutor-tui/internal/audit"
	"github.com/jeranaias/ptutor-tui/internal/auth"
	"github.com/jeranaias/ptutor-tui/internal/logging"
	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/poll"
	"github.com/jeranaias/ptutor-tui/internal/ui/components"
	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Backend is the part of the REST client the screens call. *api.Client
// implements it.
type Backend interface {
	ListTutors(ctx context.Context) ([]model.Tutor, error)
	CreateTutor(ctx context.Context, p model.TutorPayload) error
	UpdateTutor(ctx context.Context, assistantID string, p model.TutorPayload) error
	DeleteTutor(ctx context.Context, id string) error

	ListModules(ctx context.Context) ([]model.Module, error)
	CreateModule(ctx context.Context, p model.ModulePayload) error
	UpdateModule(ctx context.Context, id string, p model.ModulePayload) error
	DeleteModule(ctx context.Context, id string) error

	ListMessages(ctx context.Context, threadID string) ([]model.Message, error)
	SendMessage(ctx context.Context, p model.MessagePayload) error

	GetUser(ctx context.Context) (model.UserInfo, error)
	ListCredits(ctx context.Context) ([]model.CreditTransaction, error)
	AddCredit(ctx context.Context, p model.CreditPayload) error
	CreditsSummary(ctx context.Context) (model.CreditSummary, error)

	Register(ctx context.Context, p model.RegisterPayload) error
}

var _ Backend = (*api.Client)(nil)

// Identity is the signed-in user's session. *auth.Session implements it.
type Identity interface {
	CurrentUser() *auth.User
	SignIn(ctx context.Context, email, password string) (*auth.User, error)
	SignUp(ctx context.Context, p model.RegisterPayload, reg auth.Registrar) (*auth.User, error)
	SignOut(ctx context.Context) error
}

var _ Identity = (*auth.Session)(nil)

// Deps bundles what every screen needs.
type Deps struct {
	API      Backend
	Session  Identity
	Theme    *styles.Theme
	Markdown *components.Markdown // nil renders replies as plain text
	Log      logging.Logger
	Audit    *audit.Logger // nil disables auditing

	// Poller defers the thread refetch after sending. Nil uses a fresh
	// DelayedPoller per chats screen.
	Poller    poll.CmdPoller
	PollDelay time.Duration
	Currency  string
}

func (d Deps) log() logging.Logger {
	if d.Log == nil {
		return logging.Default()
	}
	return d.Log
}

// =============================================================================
// ROUTING
// =============================================================================

// Route names a page.
type Route int

const (
	RouteChats Route = iota
	RouteTutors
	RouteModules
	RouteUsage
	RouteSignIn
	RouteSignUp
)

// String returns the page title for r.
func (r Route) String() string {
	switch r {
	case RouteChats:
		return "Chats"
	case RouteTutors:
		return "Tutors"
	case RouteModules:
		return "Modules"
	case RouteUsage:
		return "Usage"
	case RouteSignIn:
		return "Sign in"
	case RouteSignUp:
		return "Sign up"
	default:
		return "Unknown"
	}
}

// Dashboard reports whether r is one of the sidebar destinations.
func (r Route) Dashboard() bool {
	return r >= RouteChats && r <= RouteUsage
}

// RedirectMsg asks the shell to show another page.
type RedirectMsg struct {
	Route Route
}

func redirect(r Route) tea.Cmd {
	return func() tea.Msg { return RedirectMsg{Route: r} }
}

// SignedInMsg tells the shell a user signed in or signed up.
type SignedInMsg struct {
	User auth.User
}

// =============================================================================
// SCREEN
// =============================================================================

// Screen is one page of the dashboard.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)
	// Close tears the screen down: in-flight requests are cancelled and
	// late results are ignored.
	Close()
	// Capturing reports whether the screen is taking text input or has a
	// dialog open, so the shell should leave single-key shortcuts alone.
	Capturing() bool
	// Keys returns the bindings shown in the help footer.
	Keys() []key.Binding
}

// Phase is a page's data lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseError
	PhaseEmpty
	PhaseReady
)

// Lifecycle tracks one fetch at a time. Each Begin starts a new
// generation; results from older generations are stale.
type Lifecycle struct {
	Phase Phase
	Err   string
	gen   uint64
}

// Begin enters the loading phase and returns the new generation.
func (l *Lifecycle) Begin() uint64 {
	l.gen++
	l.Phase = PhaseLoading
	l.Err = ""
	return l.gen
}

// Current reports whether gen is the latest generation.
func (l *Lifecycle) Current(gen uint64) bool { return gen == l.gen }

// Fail enters the error phase with message.
func (l *Lifecycle) Fail(message string) {
	l.Phase = PhaseError
	l.Err = message
}

// Done enters the empty or ready phase depending on n.
func (l *Lifecycle) Done(n int) {
	l.Err = ""
	if n == 0 {
		l.Phase = PhaseEmpty
		return
	}
	l.Phase = PhaseReady
}

var owners atomic.Uint64

// base is embedded by every screen: the teardown context and owner id.
type base struct {
	deps   Deps
	owner  uint64
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
	width  int
	height int
}

func newBase(deps Deps) base {
	ctx, cancel := context.WithCancel(context.Background())
	return base{
		deps:   deps,
		owner:  owners.Add(1),
		ctx:    ctx,
		cancel: cancel,
		width:  80,
		height: 24,
	}
}

// mine reports whether a result addressed to owner belongs to this live
// screen.
func (b *base) mine(owner uint64) bool {
	return !b.closed && owner == b.owner
}

func (b *base) close() {
	b.closed = true
	b.cancel()
}

func (b *base) userID() string {
	if b.deps.Session == nil {
		return ""
	}
	if u := b.deps.Session.CurrentUser(); u != nil {
		return u.UID
	}
	return ""
}

// guard returns a redirect to sign-in when nobody is signed in.
func (b *base) guard() tea.Cmd {
	if b.deps.Session == nil || b.deps.Session.CurrentUser() == nil {
		return redirect(RouteSignIn)
	}
	return nil
}

func (b *base) audit(event, target string, err error) {
	if b.deps.Audit == nil {
		return
	}
	if aerr := b.deps.Audit.LogAction(event, b.userID(), target, err); aerr != nil {
		b.deps.log().Warn("audit write failed: %v", aerr)
	}
}

// failure turns a request error into the command the screen returns:
// a redirect when the session is gone, otherwise an error toast.
func (b *base) failure(err error, fallback string) tea.Cmd {
	if isSessionError(err) {
		return redirect(RouteSignIn)
	}
	b.deps.log().Warn("%s: %v", fallback, err)
	detail := api.Message(err, "")
	return components.ShowToast(components.ToastError, fallback, detail)
}

// isSessionError reports whether err means the user has to sign in again.
func isSessionError(err error) bool {
	return api.IsUnauthorized(err) || auth.RequiresSignIn(err)
}

func success(title string) tea.Cmd {
	return components.ShowToast(components.ToastSuccess, title, "")
}

// fetchError is the message shown in a page's error scaffold.
func fetchError(err error, fallback string) string {
	return api.Message(err, fallback)
}
