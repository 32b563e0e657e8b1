// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/ui/components"
	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

// =============================================================================
// RESOURCE SPEC
// =============================================================================

// Form is an entity modal as the resource screen drives it.
type Form interface {
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetWidth(width int)
}

// FormHooks are handed to a new form; they close it and run the request.
type FormHooks[P any] struct {
	Create func(P) tea.Cmd
	Update func(id string, p P) tea.Cmd
}

// ResourceMessages are the toast texts for one resource. The *Failed
// texts are used when the server sends no detail.
type ResourceMessages struct {
	FetchFailed   string
	ChoicesFailed string
	Created       string
	CreateFailed  string
	Updated       string
	UpdateFailed  string
	Deleted       string
	DeleteFailed  string
}

// ResourceSpec configures a list page with create, edit and delete.
type ResourceSpec[T model.Dated, P any] struct {
	Route    Route
	Title    string
	Subtitle string
	Columns  []components.Column[T]

	List   func(ctx context.Context, b Backend) ([]T, error)
	Create func(ctx context.Context, b Backend, p P) error
	Update func(ctx context.Context, b Backend, id string, p P) error
	Delete func(ctx context.Context, b Backend, item T) error

	// Name labels an item in confirmations and the audit log.
	Name func(T) string

	// Choices, if set, is fetched alongside the list and handed to
	// NewForm, e.g. the tutors a module can be paired with.
	Choices func(ctx context.Context, b Backend) ([]model.Assistant, error)

	// NewForm builds the modal. item is nil in create mode.
	NewForm func(theme *styles.Theme, item *T, choices []model.Assistant, hooks FormHooks[P]) Form

	DeleteTitle string
	AuditNoun   string
	Messages    ResourceMessages
}

// =============================================================================
// MESSAGES
// =============================================================================

type listedMsg[T any] struct {
	owner, gen uint64
	rows       []T
	err        error
}

type choicesMsg struct {
	owner   uint64
	choices []model.Assistant
	err     error
}

type action int

const (
	actionCreate action = iota
	actionUpdate
	actionDelete
)

type mutatedMsg struct {
	owner  uint64
	action action
	target string
	err    error
}

// =============================================================================
// RESOURCE SCREEN
// =============================================================================

// Resource is a list page for one entity type, e.g. tutors or modules.
type Resource[T model.Dated, P any] struct {
	base
	spec ResourceSpec[T, P]

	life    Lifecycle
	table   *components.Table[T]
	choices []model.Assistant

	form    Form
	confirm *components.ConfirmDialog
	pending *T // item awaiting delete confirmation
}

var (
	keyNew     = key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new"))
	keyEdit    = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	keyDelete  = key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete"))
	keyRefresh = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	keyMove    = key.NewBinding(key.WithKeys("up", "down", "j", "k"), key.WithHelp("↑/↓", "select"))
)

// NewResource creates a list page from spec.
func NewResource[T model.Dated, P any](deps Deps, spec ResourceSpec[T, P]) *Resource[T, P] {
	r := &Resource[T, P]{
		base:    newBase(deps),
		spec:    spec,
		table:   components.NewTable(deps.Theme, spec.Columns),
		confirm: components.NewConfirmDialog(deps.Theme),
	}
	r.table.OnRetry = r.fetch
	return r
}

// Init starts the first fetch, or redirects when signed out.
func (r *Resource[T, P]) Init() tea.Cmd {
	if cmd := r.guard(); cmd != nil {
		return cmd
	}
	return tea.Batch(r.fetch(), r.fetchChoices())
}

// Phase reports the page's lifecycle phase.
func (r *Resource[T, P]) Phase() Phase { return r.life.Phase }

// Rows returns the rows shown, newest first.
func (r *Resource[T, P]) Rows() []T { return r.table.Rows() }

// FormOpen reports whether the modal is showing.
func (r *Resource[T, P]) FormOpen() bool { return r.form != nil }

func (r *Resource[T, P]) fetch() tea.Cmd {
	gen := r.life.Begin()
	owner, ctx, b := r.owner, r.ctx, r.deps.API
	list := r.spec.List
	return tea.Batch(r.table.SetLoading(), func() tea.Msg {
		rows, err := list(ctx, b)
		return listedMsg[T]{owner: owner, gen: gen, rows: rows, err: err}
	})
}

func (r *Resource[T, P]) fetchChoices() tea.Cmd {
	if r.spec.Choices == nil {
		return nil
	}
	owner, ctx, b := r.owner, r.ctx, r.deps.API
	choices := r.spec.Choices
	return func() tea.Msg {
		c, err := choices(ctx, b)
		return choicesMsg{owner: owner, choices: c, err: err}
	}
}

func (r *Resource[T, P]) mutate(a action, target string, fn func(ctx context.Context) error) tea.Cmd {
	owner, ctx := r.owner, r.ctx
	return func() tea.Msg {
		return mutatedMsg{owner: owner, action: a, target: target, err: fn(ctx)}
	}
}

func (r *Resource[T, P]) hooks() FormHooks[P] {
	return FormHooks[P]{
		Create: func(p P) tea.Cmd {
			r.form = nil
			return r.mutate(actionCreate, "", func(ctx context.Context) error {
				return r.spec.Create(ctx, r.deps.API, p)
			})
		},
		Update: func(id string, p P) tea.Cmd {
			r.form = nil
			return r.mutate(actionUpdate, id, func(ctx context.Context) error {
				return r.spec.Update(ctx, r.deps.API, id, p)
			})
		},
	}
}

func (r *Resource[T, P]) openForm(item *T) {
	r.form = r.spec.NewForm(r.deps.Theme, item, r.choices, r.hooks())
	r.form.SetWidth(r.width)
}

func (r *Resource[T, P]) confirmID() string {
	return "delete-" + strconv.FormatUint(r.owner, 10)
}

// Update handles results and keys.
func (r *Resource[T, P]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case listedMsg[T]:
		if !r.mine(msg.owner) || !r.life.Current(msg.gen) {
			return nil
		}
		if msg.err != nil {
			if isSessionError(msg.err) {
				return redirect(RouteSignIn)
			}
			r.deps.log().Warn("%s: %v", r.spec.Messages.FetchFailed, msg.err)
			r.life.Fail(fetchError(msg.err, r.spec.Messages.FetchFailed))
			r.table.SetError(r.life.Err)
			return nil
		}
		r.life.Done(len(msg.rows))
		r.table.SetRows(msg.rows)
		return nil

	case choicesMsg:
		if !r.mine(msg.owner) {
			return nil
		}
		if msg.err != nil {
			return r.failure(msg.err, r.spec.Messages.ChoicesFailed)
		}
		r.choices = msg.choices
		return nil

	case mutatedMsg:
		if !r.mine(msg.owner) {
			return nil
		}
		return r.mutated(msg)

	case components.FormCancelMsg:
		r.form = nil
		return nil

	case components.ConfirmResultMsg:
		if msg.ID != r.confirmID() || r.pending == nil {
			return nil
		}
		item := *r.pending
		r.pending = nil
		if !msg.Confirmed {
			return nil
		}
		return r.mutate(actionDelete, r.spec.Name(item), func(ctx context.Context) error {
			return r.spec.Delete(ctx, r.deps.API, item)
		})

	case tea.KeyMsg:
		if r.form != nil {
			return r.form.Update(msg)
		}
		if cmd, ok := r.confirm.Update(msg); ok {
			return cmd
		}
		return r.handleKey(msg)
	}

	var cmds []tea.Cmd
	if r.form != nil {
		cmds = append(cmds, r.form.Update(msg))
	}
	cmds = append(cmds, r.table.Update(msg))
	return tea.Batch(cmds...)
}

func (r *Resource[T, P]) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keyNew):
		r.openForm(nil)
		return nil
	case key.Matches(msg, keyEdit):
		if item, ok := r.table.Selected(); ok {
			r.openForm(&item)
		}
		return nil
	case key.Matches(msg, keyDelete):
		if item, ok := r.table.Selected(); ok {
			r.pending = &item
			r.confirm.SetWidth(r.width)
			r.confirm.Show(r.confirmID(), r.spec.DeleteTitle,
				"Are you sure you want to delete "+r.spec.Name(item)+"? This action cannot be undone.",
				"Delete")
		}
		return nil
	case key.Matches(msg, keyRefresh) && r.life.Phase != PhaseError:
		return tea.Batch(r.fetch(), r.fetchChoices())
	}
	return r.table.Update(msg)
}

func (r *Resource[T, P]) mutated(msg mutatedMsg) tea.Cmd {
	m := r.spec.Messages
	var ok, failed, event string
	switch msg.action {
	case actionCreate:
		ok, failed, event = m.Created, m.CreateFailed, r.spec.AuditNoun+".create"
	case actionUpdate:
		ok, failed, event = m.Updated, m.UpdateFailed, r.spec.AuditNoun+".update"
	default:
		ok, failed, event = m.Deleted, m.DeleteFailed, r.spec.AuditNoun+".delete"
	}
	r.audit(event, msg.target, msg.err)

	if msg.err != nil {
		return r.failure(msg.err, failed)
	}
	return tea.Batch(success(ok), r.fetch())
}

// View renders the page, or the open modal over it.
func (r *Resource[T, P]) View() string {
	theme := r.deps.Theme
	if r.form != nil {
		return lipgloss.Place(r.width, r.height, lipgloss.Center, lipgloss.Center, r.form.View())
	}
	if r.confirm.IsVisible() {
		return lipgloss.Place(r.width, r.height, lipgloss.Center, lipgloss.Center, r.confirm.View())
	}

	head := lipgloss.JoinVertical(lipgloss.Left,
		theme.PageTitle.Render(r.spec.Title),
		theme.PageSubtitle.Render(r.spec.Subtitle),
	)
	return lipgloss.JoinVertical(lipgloss.Left, head, r.table.View())
}

// SetSize fits the page into width x height.
func (r *Resource[T, P]) SetSize(width, height int) {
	r.width, r.height = width, height
	r.table.SetSize(width, max(height-3, 3))
	r.confirm.SetWidth(width)
	if r.form != nil {
		r.form.SetWidth(width)
	}
}

// Close cancels in-flight requests.
func (r *Resource[T, P]) Close() { r.close() }

// Capturing reports whether a modal is open.
func (r *Resource[T, P]) Capturing() bool {
	return r.form != nil || r.confirm.IsVisible()
}

// Keys returns the page's bindings.
func (r *Resource[T, P]) Keys() []key.Binding {
	return []key.Binding{keyMove, keyNew, keyEdit, keyDelete, keyRefresh}
}
