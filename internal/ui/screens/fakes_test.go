// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ptutor-tui/internal/auth"
	"github.com/jeranaias/ptutor-tui/internal/logging"
	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/ui/components"
	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

// =============================================================================
// FAKE BACKEND
// =============================================================================

type fakeBackend struct {
	mu sync.Mutex

	tutors   []model.Tutor
	modules  []model.Module
	messages map[string][]model.Message
	user     model.UserInfo
	credits  []model.CreditTransaction
	summary  model.CreditSummary

	listErr   error
	mutateErr error
	sendErr   error
	threadErr error

	calls    map[string]int
	sent     []model.MessagePayload
	deleted  []string
	updated  []string
	created  []interface{}
	register []model.RegisterPayload
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{calls: map[string]int{}, messages: map[string][]model.Message{}}
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBackend) ListTutors(ctx context.Context) ([]model.Tutor, error) {
	f.hit("ListTutors")
	return f.tutors, f.listErr
}

func (f *fakeBackend) CreateTutor(ctx context.Context, p model.TutorPayload) error {
	f.hit("CreateTutor")
	f.created = append(f.created, p)
	return f.mutateErr
}

func (f *fakeBackend) UpdateTutor(ctx context.Context, id string, p model.TutorPayload) error {
	f.hit("UpdateTutor")
	f.updated = append(f.updated, id)
	return f.mutateErr
}

func (f *fakeBackend) DeleteTutor(ctx context.Context, id string) error {
	f.hit("DeleteTutor")
	f.deleted = append(f.deleted, id)
	return f.mutateErr
}

func (f *fakeBackend) ListModules(ctx context.Context) ([]model.Module, error) {
	f.hit("ListModules")
	return f.modules, f.listErr
}

func (f *fakeBackend) CreateModule(ctx context.Context, p model.ModulePayload) error {
	f.hit("CreateModule")
	f.created = append(f.created, p)
	return f.mutateErr
}

func (f *fakeBackend) UpdateModule(ctx context.Context, id string, p model.ModulePayload) error {
	f.hit("UpdateModule")
	f.updated = append(f.updated, id)
	return f.mutateErr
}

func (f *fakeBackend) DeleteModule(ctx context.Context, id string) error {
	f.hit("DeleteModule")
	f.deleted = append(f.deleted, id)
	return f.mutateErr
}

func (f *fakeBackend) ListMessages(ctx context.Context, threadID string) ([]model.Message, error) {
	f.hit("ListMessages")
	return f.messages[threadID], f.threadErr
}

func (f *fakeBackend) SendMessage(ctx context.Context, p model.MessagePayload) error {
	f.hit("SendMessage")
	f.sent = append(f.sent, p)
	return f.sendErr
}

func (f *fakeBackend) GetUser(ctx context.Context) (model.UserInfo, error) {
	f.hit("GetUser")
	return f.user, f.listErr
}

func (f *fakeBackend) ListCredits(ctx context.Context) ([]model.CreditTransaction, error) {
	f.hit("ListCredits")
	return f.credits, f.listErr
}

func (f *fakeBackend) AddCredit(ctx context.Context, p model.CreditPayload) error {
	f.hit("AddCredit")
	f.created = append(f.created, p)
	return f.mutateErr
}

func (f *fakeBackend) CreditsSummary(ctx context.Context) (model.CreditSummary, error) {
	f.hit("CreditsSummary")
	return f.summary, f.listErr
}

func (f *fakeBackend) Register(ctx context.Context, p model.RegisterPayload) error {
	f.hit("Register")
	f.register = append(f.register, p)
	return f.mutateErr
}

// =============================================================================
// FAKE IDENTITY
// =============================================================================

type fakeIdentity struct {
	user      *auth.User
	signInErr error
	signUpErr error
	password  string
}

func signedIn() *fakeIdentity {
	return &fakeIdentity{user: &auth.User{UID: "uid-1", Email: "ada@example.com", DisplayName: "Ada Lovelace"}}
}

func (f *fakeIdentity) CurrentUser() *auth.User { return f.user }

func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (*auth.User, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.password = password
	f.user = &auth.User{UID: "uid-1", Email: email}
	return f.user, nil
}

func (f *fakeIdentity) SignUp(ctx context.Context, p model.RegisterPayload, reg auth.Registrar) (*auth.User, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	if err := reg.Register(ctx, p); err != nil {
		return nil, err
	}
	f.user = &auth.User{UID: "uid-2", Email: p.Email, DisplayName: p.DisplayName()}
	return f.user, nil
}

func (f *fakeIdentity) SignOut(ctx context.Context) error {
	f.user = nil
	return nil
}

// =============================================================================
// FAKE POLLER
// =============================================================================

// fakePoller fires immediately: Cmd returns a command yielding msg.
type fakePoller struct {
	delays  []time.Duration
	cancels int
}

func (p *fakePoller) Schedule(ctx context.Context, delay time.Duration, fn func()) func() {
	p.delays = append(p.delays, delay)
	fn()
	return func() {}
}

func (p *fakePoller) Cancel()       { p.cancels++ }
func (p *fakePoller) Pending() bool { return false }

func (p *fakePoller) Cmd(ctx context.Context, delay time.Duration, msg tea.Msg) tea.Cmd {
	p.delays = append(p.delays, delay)
	return func() tea.Msg { return msg }
}

// =============================================================================
// HELPERS
// =============================================================================

func testDeps(b *fakeBackend, id *fakeIdentity) Deps {
	return Deps{
		API:      b,
		Session:  id,
		Theme:    styles.NewTheme("dark"),
		Log:      logging.Discard(),
		Poller:   &fakePoller{},
		Currency: "$",
	}
}

// run executes cmd and every command it batches, returning the messages
// that arrive promptly. Timer-driven commands such as cursor blinks are
// left behind.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(200 * time.Millisecond):
		return nil
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// internal reports whether msg is a screen's own result and should be
// fed back to it.
func internal(msg tea.Msg) bool {
	switch msg.(type) {
	case listedMsg[model.Tutor], listedMsg[model.Module], choicesMsg, mutatedMsg,
		modulesMsg, threadMsg, sentMsg,
		userInfoMsg, creditsMsg, summaryMsg, creditAddedMsg,
		authResultMsg, components.ConfirmResultMsg, components.FormCancelMsg:
		return true
	}
	return false
}

// pump runs cmd, feeds every internal result back into s until things
// settle, and returns the remaining messages (toasts, redirects, polls).
func pump(s Screen, cmd tea.Cmd) []tea.Msg {
	var out []tea.Msg
	queue := run(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		switch {
		case internal(msg):
			queue = append(queue, run(s.Update(msg))...)
		default:
			if _, tick := msg.(spinner.TickMsg); tick {
				continue
			}
			out = append(out, msg)
		}
	}
	return out
}

func toasts(msgs []tea.Msg) []components.ToastMsg {
	var out []components.ToastMsg
	for _, m := range msgs {
		if t, ok := m.(components.ToastMsg); ok {
			out = append(out, t)
		}
	}
	return out
}

func redirects(msgs []tea.Msg) []Route {
	var out []Route
	for _, m := range msgs {
		if r, ok := m.(RedirectMsg); ok {
			out = append(out, r.Route)
		}
	}
	return out
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyCtrlP}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func at(day int) model.Timestamp {
	return model.Timestamp{Time: time.Date(2024, time.March, day, 10, 0, 0, 0, time.UTC)}
}
