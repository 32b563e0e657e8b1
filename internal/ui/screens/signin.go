// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ptutor-tui/internal/api"
	"github.com/jeranaias/ptutor-tui/internal/auth"
	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/ui/components"
	"github.com/jeranaias/ptutor-tui/internal/validate"
)

const (
	msgSignInFailed = "Failed to sign in"
	msgRegistered   = "Registered in successfully."
	msgRegisterFail = "Failed to register"
)

var (
	keySubmit       = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit"))
	keyNextField    = key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field"))
	keyPrevField    = key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field"))
	keyShowPassword = key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "show password"))
	keySwitchAuth   = key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "register / sign in"))
)

// field is one labelled input of a credential form. name is the json
// name validation errors are reported under.
type field struct {
	label    string
	name     string
	input    textinput.Model
	password bool
}

type authResultMsg struct {
	owner uint64
	user  *auth.User
	err   error
}

// credentials is the shared sign-in and sign-up form.
type credentials struct {
	base
	title      string
	fields     []field
	focus      int
	errs       validate.FieldErrors
	submitting bool
	showPass   bool
	other      Route
	otherText  string
}

func newField(label, name, placeholder string, password bool) field {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = ""
	in.CharLimit = 256
	if password {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return field{label: label, name: name, input: in, password: password}
}

func (c *credentials) value(name string) string {
	for _, f := range c.fields {
		if f.name == name {
			return f.input.Value()
		}
	}
	return ""
}

func (c *credentials) setFocus(i int) tea.Cmd {
	n := len(c.fields)
	c.focus = (i + n) % n
	var cmd tea.Cmd
	for j := range c.fields {
		if j == c.focus {
			cmd = c.fields[j].input.Focus()
		} else {
			c.fields[j].input.Blur()
		}
	}
	return cmd
}

func (c *credentials) togglePassword() {
	c.showPass = !c.showPass
	for i := range c.fields {
		if !c.fields[i].password {
			continue
		}
		if c.showPass {
			c.fields[i].input.EchoMode = textinput.EchoNormal
		} else {
			c.fields[i].input.EchoMode = textinput.EchoPassword
		}
	}
}

// handle runs the keys both forms share. submit is called with the form
// already validated by the caller.
func (c *credentials) handle(msg tea.Msg, submit func() tea.Cmd) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if c.submitting {
			return nil
		}
		switch {
		case key.Matches(msg, keySwitchAuth):
			return redirect(c.other)
		case key.Matches(msg, keyShowPassword):
			c.togglePassword()
			return nil
		case key.Matches(msg, keyNextField):
			return c.setFocus(c.focus + 1)
		case key.Matches(msg, keyPrevField):
			return c.setFocus(c.focus - 1)
		case key.Matches(msg, keySubmit):
			if c.focus < len(c.fields)-1 {
				return c.setFocus(c.focus + 1)
			}
			return submit()
		}
	}
	var cmd tea.Cmd
	c.fields[c.focus].input, cmd = c.fields[c.focus].input.Update(msg)
	return cmd
}

func (c *credentials) view() string {
	theme := c.deps.Theme
	width := min(max(c.width-8, 30), 56)

	lines := []string{theme.PageTitle.Render(c.title), ""}
	for i, f := range c.fields {
		st := theme.Field
		if i == c.focus {
			st = theme.FieldFocused
		}
		f.input.Width = width - 6
		lines = append(lines, theme.Label.Render(f.label), st.Width(width-2).Render(f.input.View()))
		if msg := c.errs.Field(f.name); msg != "" {
			lines = append(lines, theme.Error.Render(msg))
		}
	}

	button := theme.ButtonFocused.Render(c.title)
	if c.submitting {
		button = theme.ButtonDisabled.Render("Submitting")
	}
	lines = append(lines, "", button, "", theme.Muted.Render(c.otherText))

	box := theme.Dialog.Width(width + 4).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(c.width, c.height, lipgloss.Center, lipgloss.Center, box)
}

func (c *credentials) finish(msg authResultMsg, event, failed, ok string) tea.Cmd {
	c.submitting = false
	target := c.value("email")
	if msg.err != nil {
		c.audit(event, target, msg.err)
		return components.ShowToast(components.ToastError, failed, authDetail(msg.err))
	}
	c.audit(event, target, nil)
	user := *msg.user
	done := func() tea.Msg { return SignedInMsg{User: user} }
	if ok == "" {
		return done
	}
	return tea.Batch(success(ok), done)
}

// authDetail is the text shown under a failed sign-in or sign-up toast.
func authDetail(err error) string {
	var aerr *auth.Error
	if errors.As(err, &aerr) {
		return aerr.Error()
	}
	if d := api.Message(err, ""); d != "" {
		return d
	}
	if errors.Is(err, auth.ErrNoAPIKey) {
		return err.Error()
	}
	return ""
}

// =============================================================================
// SIGN IN
// =============================================================================

// SignIn is the email and password form.
type SignIn struct {
	credentials
}

// NewSignIn creates the sign-in page.
func NewSignIn(deps Deps) *SignIn {
	s := &SignIn{credentials{
		base:  newBase(deps),
		title: "Sign in",
		fields: []field{
			newField("Email address", "email", "you@example.com", false),
			newField("Password", "password", "", true),
		},
		other:     RouteSignUp,
		otherText: "Don't have an account? ctrl+r Register",
	}}
	return s
}

// Init focuses the first field.
func (s *SignIn) Init() tea.Cmd { return tea.Batch(s.setFocus(0), textinput.Blink) }

// Payload returns the entered credentials.
func (s *SignIn) Payload() model.SignInPayload {
	return model.SignInPayload{
		Email:    strings.TrimSpace(s.value("email")),
		Password: s.value("password"),
	}
}

func (s *SignIn) submit() tea.Cmd {
	p := s.Payload()
	if err := validate.Struct(p); err != nil {
		s.errs, _ = err.(validate.FieldErrors)
		return nil
	}
	s.errs = nil
	s.submitting = true
	owner, ctx, session := s.owner, s.ctx, s.deps.Session
	return func() tea.Msg {
		u, err := session.SignIn(ctx, p.Email, p.Password)
		return authResultMsg{owner: owner, user: u, err: err}
	}
}

// Update handles keys and the sign-in result.
func (s *SignIn) Update(msg tea.Msg) tea.Cmd {
	if res, ok := msg.(authResultMsg); ok {
		if !s.mine(res.owner) {
			return nil
		}
		return s.finish(res, "auth.signin", msgSignInFailed, "")
	}
	return s.handle(msg, s.submit)
}

// View renders the form.
func (s *SignIn) View() string { return s.view() }

// SetSize sets the page size.
func (s *SignIn) SetSize(width, height int) { s.width, s.height = width, height }

// Close cancels a sign-in in flight.
func (s *SignIn) Close() { s.close() }

// Capturing is always true: every key goes to the form.
func (s *SignIn) Capturing() bool { return true }

// Keys returns the page's bindings.
func (s *SignIn) Keys() []key.Binding {
	return []key.Binding{keySubmit, keyNextField, keyShowPassword, keySwitchAuth}
}

// =============================================================================
// SIGN UP
// =============================================================================

// SignUp registers a new account and signs it in.
type SignUp struct {
	credentials
}

// NewSignUp creates the sign-up page.
func NewSignUp(deps Deps) *SignUp {
	return &SignUp{credentials{
		base:  newBase(deps),
		title: "Sign up",
		fields: []field{
			newField("First Name", "first_name", "", false),
			newField("Last Name", "last_name", "", false),
			newField("Email address", "email", "you@example.com", false),
			newField("Password", "password", "at least 6 characters", true),
		},
		other:     RouteSignIn,
		otherText: "Already a user? ctrl+r Login",
	}}
}

// Init focuses the first field.
func (s *SignUp) Init() tea.Cmd { return tea.Batch(s.setFocus(0), textinput.Blink) }

// Payload returns the registration body built from the fields.
func (s *SignUp) Payload() model.RegisterPayload {
	return model.RegisterPayload{
		FirstName: strings.TrimSpace(s.value("first_name")),
		LastName:  strings.TrimSpace(s.value("last_name")),
		Email:     strings.TrimSpace(s.value("email")),
		Password:  s.value("password"),
	}
}

func (s *SignUp) submit() tea.Cmd {
	p := s.Payload()
	if err := validate.Struct(p); err != nil {
		s.errs, _ = err.(validate.FieldErrors)
		return nil
	}
	s.errs = nil
	s.submitting = true
	owner, ctx, session, reg := s.owner, s.ctx, s.deps.Session, s.deps.API
	return func() tea.Msg {
		u, err := session.SignUp(ctx, p, reg)
		return authResultMsg{owner: owner, user: u, err: err}
	}
}

// Update handles keys and the sign-up result.
func (s *SignUp) Update(msg tea.Msg) tea.Cmd {
	if res, ok := msg.(authResultMsg); ok {
		if !s.mine(res.owner) {
			return nil
		}
		return s.finish(res, "auth.signup", msgRegisterFail, msgRegistered)
	}
	return s.handle(msg, s.submit)
}

// View renders the form.
func (s *SignUp) View() string { return s.view() }

// SetSize sets the page size.
func (s *SignUp) SetSize(width, height int) { s.width, s.height = width, height }

// Close cancels a sign-up in flight.
func (s *SignUp) Close() { s.close() }

// Capturing is always true: every key goes to the form.
func (s *SignUp) Capturing() bool { return true }

// Keys returns the page's bindings.
func (s *SignUp) Keys() []key.Binding {
	return []key.Binding{keySubmit, keyNextField, keyShowPassword, keySwitchAuth}
}
