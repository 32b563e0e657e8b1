// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
	"github.com/jeranaias/ptutor-tui/internal/validate"
)

// =============================================================================
// SHARED FORM PLUMBING
// =============================================================================

// FormCancelMsg is emitted when the user dismisses a form with esc or
// the Cancel button. Forms never close themselves; the owner does.
type FormCancelMsg struct{}

func cancelForm() tea.Msg { return FormCancelMsg{} }

// form holds what every entity modal shares: a title, a focus ring that
// ends in Save and Cancel, and the layout.
type form struct {
	theme    *styles.Theme
	title    string
	subtitle string
	focus    int
	fields   int // focusable fields before the buttons
	width    int
}

func (f *form) saveIndex() int   { return f.fields }
func (f *form) cancelIndex() int { return f.fields + 1 }

func (f *form) next() { f.focus = (f.focus + 1) % (f.fields + 2) }
func (f *form) prev() { f.focus = (f.focus + f.fields + 1) % (f.fields + 2) }

// SetWidth sets the available width.
func (f *form) SetWidth(w int) { f.width = w }

func (f *form) boxWidth() int {
	w := 60
	if f.width > 0 && f.width-4 < w {
		w = max(f.width-4, 30)
	}
	return w
}

func (f *form) label(text string) string {
	return f.theme.Label.Bold(true).Render(text)
}

func (f *form) field(view string, focused bool) string {
	st := f.theme.Field
	if focused {
		st = f.theme.FieldFocused
	}
	return st.Width(f.boxWidth() - 8).Render(view)
}

func (f *form) buttons(canSave bool) string {
	cancel := f.theme.Button.Render("Cancel")
	if f.focus == f.cancelIndex() {
		cancel = f.theme.ButtonFocused.Render("Cancel")
	}
	var save string
	switch {
	case !canSave:
		save = f.theme.ButtonDisabled.Render("Save")
	case f.focus == f.saveIndex():
		save = f.theme.ButtonFocused.Render("Save")
	default:
		save = f.theme.Button.Render("Save")
	}
	return lipgloss.PlaceHorizontal(f.boxWidth()-6, lipgloss.Right,
		lipgloss.JoinHorizontal(lipgloss.Center, cancel, save))
}

func (f *form) frame(parts ...string) string {
	head := []string{f.theme.DialogTitle.MarginBottom(0).Render(f.title)}
	if f.subtitle != "" {
		head = append(head, f.theme.Muted.Render(f.subtitle))
	}
	head = append(head, "")
	return f.theme.Dialog.Width(f.boxWidth()).
		Render(lipgloss.JoinVertical(lipgloss.Left, append(head, parts...)...))
}

// navigate handles the keys every form shares. handled is false when the
// key should go to the focused field instead.
func (f *form) navigate(key tea.KeyMsg, canSave bool, save func() tea.Cmd) (cmd tea.Cmd, handled bool) {
	switch key.String() {
	case "esc":
		return cancelForm, true
	case "tab", "down":
		f.next()
		return nil, true
	case "shift+tab", "up":
		f.prev()
		return nil, true
	case "ctrl+s":
		if canSave {
			return save(), true
		}
		return nil, true
	case "enter":
		switch f.focus {
		case f.saveIndex():
			if canSave {
				return save(), true
			}
			return nil, true
		case f.cancelIndex():
			return cancelForm, true
		}
	}
	return nil, f.focus >= f.fields
}

func newInput(placeholder, value string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = ""
	in.SetValue(value)
	return in
}

// =============================================================================
// TUTOR FORM
// =============================================================================

// TutorForm edits a tutor's name and instructions. The model is fixed.
type TutorForm struct {
	form
	id           string
	model        string
	name         textinput.Model
	instructions textarea.Model

	// OnCreate is called on Save in create mode.
	OnCreate func(model.TutorPayload) tea.Cmd
	// OnUpdate is called on Save in edit mode with the assistant id.
	OnUpdate func(id string, p model.TutorPayload) tea.Cmd
}

// NewTutorForm creates a form. A nil assistant opens it in create mode.
func NewTutorForm(theme *styles.Theme, a *model.Assistant) *TutorForm {
	f := &TutorForm{
		form:  form{theme: theme, title: "Create Tutor", subtitle: "Tutor details", fields: 2},
		model: model.DefaultTutorModel,
	}
	var name, instructions string
	if a != nil {
		f.id = a.ID
		f.title, f.subtitle = "Edit Personal Tutor", "Personal tutor details"
		name, instructions = a.Name, a.Instructions
		if a.Model != "" {
			f.model = a.Model
		}
	}
	f.name = newInput("Enter name", name)
	f.instructions = textarea.New()
	f.instructions.Placeholder = "Enter instruction"
	f.instructions.ShowLineNumbers = false
	f.instructions.SetHeight(4)
	f.instructions.SetValue(instructions)
	f.name.Focus()
	return f
}

// Editing reports whether the form edits an existing tutor.
func (f *TutorForm) Editing() bool { return f.id != "" }

// Payload returns the request body built from the fields.
func (f *TutorForm) Payload() model.TutorPayload {
	return model.NewTutorPayload(strings.TrimSpace(f.name.Value()), f.instructions.Value())
}

// CanSave reports whether the required fields are filled in.
func (f *TutorForm) CanSave() bool {
	return validate.Valid(f.Payload())
}

func (f *TutorForm) save() tea.Cmd {
	p := f.Payload()
	if f.Editing() {
		if f.OnUpdate != nil {
			return f.OnUpdate(f.id, p)
		}
		return nil
	}
	if f.OnCreate != nil {
		return f.OnCreate(p)
	}
	return nil
}

func (f *TutorForm) syncFocus() {
	f.name.Blur()
	f.instructions.Blur()
	switch f.focus {
	case 0:
		f.name.Focus()
	case 1:
		f.instructions.Focus()
	}
}

// Update handles a key or cursor blink.
func (f *TutorForm) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		// enter belongs to the textarea while it has focus
		if !(f.focus == 1 && key.String() == "enter") {
			if cmd, handled := f.navigate(key, f.CanSave(), f.save); handled {
				f.syncFocus()
				return cmd
			}
		}
	}

	var cmd tea.Cmd
	switch f.focus {
	case 0:
		f.name, cmd = f.name.Update(msg)
	case 1:
		f.instructions, cmd = f.instructions.Update(msg)
	}
	return cmd
}

// View renders the form.
func (f *TutorForm) View() string {
	f.name.Width = f.boxWidth() - 10
	f.instructions.SetWidth(f.boxWidth() - 10)
	return f.frame(
		f.label("Name"),
		f.field(f.name.View(), f.focus == 0),
		f.label("Model"),
		f.theme.Field.Foreground(styles.TextMuted).Width(f.boxWidth()-8).Render(f.model),
		f.label("Instruction"),
		f.field(f.instructions.View(), f.focus == 1),
		"",
		f.buttons(f.CanSave()),
	)
}

// =============================================================================
// MODULE FORM
// =============================================================================

// ModuleForm edits a module's name and the tutor it pairs with.
type ModuleForm struct {
	form
	id      string
	name    textinput.Model
	tutors  []model.Assistant
	current int // index into tutors, -1 for none

	// OnCreate is called on Save in create mode.
	OnCreate func(model.ModulePayload) tea.Cmd
	// OnUpdate is called on Save in edit mode with the module id.
	OnUpdate func(id string, p model.ModulePayload) tea.Cmd
}

// NewModuleForm creates a form. tutors are the choices for the picker; a
// nil module opens it in create mode with no tutor selected.
func NewModuleForm(theme *styles.Theme, m *model.Module, tutors []model.Assistant) *ModuleForm {
	f := &ModuleForm{
		form:    form{theme: theme, title: "Create Module", subtitle: "Module details", fields: 2},
		tutors:  tutors,
		current: -1,
	}
	var name string
	if m != nil {
		f.id = m.ID
		f.title, f.subtitle = "Edit Module", "Module details"
		name = m.Name
		for i, t := range tutors {
			if t.ID == m.TutorID() {
				f.current = i
				break
			}
		}
	}
	f.name = newInput("Enter name", name)
	f.name.Focus()
	return f
}

// Editing reports whether the form edits an existing module.
func (f *ModuleForm) Editing() bool { return f.id != "" }

// SelectedTutor returns the picked tutor.
func (f *ModuleForm) SelectedTutor() (model.Assistant, bool) {
	if f.current < 0 || f.current >= len(f.tutors) {
		return model.Assistant{}, false
	}
	return f.tutors[f.current], true
}

// Payload returns the request body built from the fields.
func (f *ModuleForm) Payload() model.ModulePayload {
	p := model.ModulePayload{Name: strings.TrimSpace(f.name.Value())}
	if t, ok := f.SelectedTutor(); ok {
		p.AssistantID = t.ID
	}
	return p
}

// CanSave reports whether a name is entered and a tutor picked.
func (f *ModuleForm) CanSave() bool {
	return validate.Valid(f.Payload())
}

func (f *ModuleForm) save() tea.Cmd {
	p := f.Payload()
	if f.Editing() {
		if f.OnUpdate != nil {
			return f.OnUpdate(f.id, p)
		}
		return nil
	}
	if f.OnCreate != nil {
		return f.OnCreate(p)
	}
	return nil
}

func (f *ModuleForm) cycle(step int) {
	if len(f.tutors) == 0 {
		return
	}
	if f.current < 0 {
		if step > 0 {
			f.current = 0
		} else {
			f.current = len(f.tutors) - 1
		}
		return
	}
	f.current = (f.current + step + len(f.tutors)) % len(f.tutors)
}

// Update handles a key or cursor blink.
func (f *ModuleForm) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		if f.focus == 1 {
			switch key.String() {
			case "right", "l", " ", "enter":
				f.cycle(1)
				return nil
			case "left", "h":
				f.cycle(-1)
				return nil
			}
		}
		if cmd, handled := f.navigate(key, f.CanSave(), f.save); handled {
			if f.focus == 0 {
				f.name.Focus()
			} else {
				f.name.Blur()
			}
			return cmd
		}
	}

	if f.focus != 0 {
		return nil
	}
	var cmd tea.Cmd
	f.name, cmd = f.name.Update(msg)
	return cmd
}

// View renders the form.
func (f *ModuleForm) View() string {
	f.name.Width = f.boxWidth() - 10

	picker := "Select tutor"
	if t, ok := f.SelectedTutor(); ok {
		picker = t.Name
	}
	if len(f.tutors) == 0 {
		picker = "No tutors yet"
	}
	picker = "< " + picker + " >"

	return f.frame(
		f.label("Name"),
		f.field(f.name.View(), f.focus == 0),
		f.label("Tutor"),
		f.field(picker, f.focus == 1),
		"",
		f.buttons(f.CanSave()),
	)
}

// =============================================================================
// CREDIT FORM
// =============================================================================

// CreditForm collects a top-up amount. It only creates.
type CreditForm struct {
	form
	amount textinput.Model

	// OnCreate is called on Save.
	OnCreate func(model.CreditPayload) tea.Cmd
}

// NewCreditForm creates an empty form.
func NewCreditForm(theme *styles.Theme) *CreditForm {
	f := &CreditForm{form: form{theme: theme, title: "Add Credit", fields: 1}}
	f.amount = newInput("Enter amount", "")
	f.amount.CharLimit = 12
	f.amount.Validate = func(s string) error {
		if s == "" {
			return nil
		}
		_, err := strconv.ParseFloat(s, 64)
		return err
	}
	f.amount.Focus()
	return f
}

// Payload returns the request body. An unparsable amount is zero.
func (f *CreditForm) Payload() model.CreditPayload {
	v, _ := strconv.ParseFloat(strings.TrimSpace(f.amount.Value()), 64)
	return model.CreditPayload{Amount: v}
}

// CanSave reports whether a positive amount is entered.
func (f *CreditForm) CanSave() bool {
	return validate.Valid(f.Payload())
}

func (f *CreditForm) save() tea.Cmd {
	if f.OnCreate == nil {
		return nil
	}
	return f.OnCreate(f.Payload())
}

// Update handles a key or cursor blink.
func (f *CreditForm) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		if cmd, handled := f.navigate(key, f.CanSave(), f.save); handled {
			if f.focus == 0 {
				f.amount.Focus()
			} else {
				f.amount.Blur()
			}
			return cmd
		}
		if key.String() == "enter" {
			f.next()
			f.amount.Blur()
			return nil
		}
	}
	if f.focus != 0 {
		return nil
	}
	var cmd tea.Cmd
	f.amount, cmd = f.amount.Update(msg)
	return cmd
}

// View renders the form.
func (f *CreditForm) View() string {
	f.amount.Width = f.boxWidth() - 10
	return f.frame(
		f.label("Amount"),
		f.field(f.amount.View(), f.focus == 0),
		"",
		f.buttons(f.CanSave()),
	)
}
