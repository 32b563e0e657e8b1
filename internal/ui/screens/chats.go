// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/poll"
	"github.com/jeranaias/ptutor-tui/internal/ui/components"
	"github.com/jeranaias/ptutor-tui/internal/util"
)

// DefaultPollDelay is the wait between sending and re-reading the thread.
const DefaultPollDelay = 5 * time.Second

const (
	msgFetchModulesFailed  = "Failed to fetch modules"
	msgFetchMessagesFailed = "Failed to fetch messages"
	msgSendFailed          = "Failed to send message"
)

// =============================================================================
// MESSAGES
// =============================================================================

type modulesMsg struct {
	owner, gen uint64
	modules    []model.Module
	err        error
}

type threadMsg struct {
	owner, gen uint64
	messages   []model.Message
	err        error
}

type sentMsg struct {
	owner uint64
	seq   uint64
	err   error
}

// pollMsg fires when the post-send delay elapses.
type pollMsg struct {
	owner uint64
	seq   uint64
}

var (
	keySend       = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send"))
	keyNextModule = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next module"))
	keyPrevModule = key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev module"))
	keyBlur       = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "leave input"))
	keyFocus      = key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "type"))
	keyRetry      = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry"))
	keyGoTutors   = key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "create tutor"))
	keyGoModules  = key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "create module"))
	keyScroll     = key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "scroll"))
)

// =============================================================================
// CHATS SCREEN
// =============================================================================

// Chats is the conversation page: a module picker, the module's thread,
// and the composer.
type Chats struct {
	base

	modulesLife Lifecycle
	threadLife  Lifecycle
	modules     []model.Module
	current     int

	viewport *components.ChatViewport
	input    *components.InputArea
	loader   components.Loader

	poller poll.CmdPoller
	delay  time.Duration
	// sendSeq numbers sends; only the poll of the latest send counts.
	sendSeq uint64
}

// NewChats creates the chats page.
func NewChats(deps Deps) *Chats {
	p := deps.Poller
	if p == nil {
		p = poll.NewDelayedPoller()
	}
	delay := deps.PollDelay
	if delay <= 0 {
		delay = DefaultPollDelay
	}
	c := &Chats{
		base:     newBase(deps),
		viewport: components.NewChatViewport(deps.Theme, deps.Markdown),
		input:    components.NewInputArea(deps.Theme),
		loader:   components.NewLoader(40),
		poller:   p,
		delay:    delay,
	}
	return c
}

// Init fetches the modules, or redirects when signed out.
func (c *Chats) Init() tea.Cmd {
	if cmd := c.guard(); cmd != nil {
		return cmd
	}
	return c.fetchModules()
}

// Module returns the selected module.
func (c *Chats) Module() (model.Module, bool) {
	if c.current < 0 || c.current >= len(c.modules) {
		return model.Module{}, false
	}
	return c.modules[c.current], true
}

// Input returns the composer's current text.
func (c *Chats) Input() string { return c.input.Value() }

// Thinking reports whether the reply placeholder is shown.
func (c *Chats) Thinking() bool { return c.viewport.Thinking() }

// Messages returns the thread shown, oldest first.
func (c *Chats) Messages() []model.Message { return c.viewport.Messages() }

func (c *Chats) fetchModules() tea.Cmd {
	gen := c.modulesLife.Begin()
	owner, ctx, b := c.owner, c.ctx, c.deps.API
	return tea.Batch(c.loader.Tick, func() tea.Msg {
		mods, err := b.ListModules(ctx)
		return modulesMsg{owner: owner, gen: gen, modules: mods, err: err}
	})
}

func (c *Chats) fetchThread() tea.Cmd {
	m, ok := c.Module()
	if !ok {
		return nil
	}
	gen := c.threadLife.Begin()
	owner, ctx, b := c.owner, c.ctx, c.deps.API
	return tea.Batch(c.loader.Tick, func() tea.Msg {
		msgs, err := b.ListMessages(ctx, m.ThreadID)
		return threadMsg{owner: owner, gen: gen, messages: msgs, err: err}
	})
}

// selectModule switches to module i, dropping any pending poll.
func (c *Chats) selectModule(i int) tea.Cmd {
	if len(c.modules) == 0 {
		return nil
	}
	c.poller.Cancel()
	c.sendSeq++
	c.current = (i + len(c.modules)) % len(c.modules)
	m, _ := c.Module()
	c.viewport.SetMessages(nil, m.Name)
	c.input.SetPlaceholder("Message " + util.FirstNonEmpty(m.TutorName(), m.Name) + "...")
	c.viewport.SetThinking(false)
	c.viewport.ScrollToBottom()
	return c.fetchThread()
}

func (c *Chats) send() tea.Cmd {
	m, ok := c.Module()
	if !ok {
		return nil
	}
	text := c.input.Take()
	if text == "" {
		return nil
	}

	c.sendSeq++
	seq := c.sendSeq
	owner, ctx, b := c.owner, c.ctx, c.deps.API
	p := model.NewMessagePayload(m, c.userID(), text)
	return func() tea.Msg {
		return sentMsg{owner: owner, seq: seq, err: b.SendMessage(ctx, p)}
	}
}

// Update handles results, the poll tick and keys.
func (c *Chats) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case modulesMsg:
		if !c.mine(msg.owner) || !c.modulesLife.Current(msg.gen) {
			return nil
		}
		if msg.err != nil {
			if isSessionError(msg.err) {
				return redirect(RouteSignIn)
			}
			c.deps.log().Warn("%s: %v", msgFetchModulesFailed, msg.err)
			c.modulesLife.Fail(fetchError(msg.err, msgFetchModulesFailed))
			c.input.Blur()
			return nil
		}
		c.modules = msg.modules
		c.modulesLife.Done(len(msg.modules))
		if len(c.modules) == 0 {
			c.input.Blur()
			return nil
		}
		return tea.Batch(c.selectModule(0), c.input.Focus())

	case threadMsg:
		if !c.mine(msg.owner) || !c.threadLife.Current(msg.gen) {
			return nil
		}
		if msg.err != nil {
			if isSessionError(msg.err) {
				return redirect(RouteSignIn)
			}
			c.threadLife.Fail(fetchError(msg.err, msgFetchMessagesFailed))
			c.input.Blur()
			return c.failure(msg.err, msgFetchMessagesFailed)
		}
		m, _ := c.Module()
		c.threadLife.Done(len(msg.messages))
		c.viewport.SetMessages(msg.messages, m.Name)
		return nil

	case sentMsg:
		if !c.mine(msg.owner) {
			return nil
		}
		c.audit("message.send", c.moduleID(), msg.err)
		if msg.err != nil {
			return c.failure(msg.err, msgSendFailed)
		}
		if msg.seq != c.sendSeq {
			// the module changed while the send was in flight
			return nil
		}
		c.viewport.SetThinking(true)
		c.viewport.ScrollToBottom()
		return c.poller.Cmd(c.ctx, c.delay, pollMsg{owner: c.owner, seq: msg.seq})

	case pollMsg:
		if !c.mine(msg.owner) || msg.seq != c.sendSeq {
			return nil
		}
		c.viewport.SetThinking(false)
		return c.fetchThread()

	case tea.KeyMsg:
		return c.handleKey(msg)

	case tea.MouseMsg:
		return c.viewport.Update(msg)
	}

	var cmds []tea.Cmd
	if c.loading() {
		var cmd tea.Cmd
		c.loader, cmd = c.loader.Update(msg)
		cmds = append(cmds, cmd)
	}
	cmds = append(cmds, c.input.Update(msg))
	return tea.Batch(cmds...)
}

func (c *Chats) moduleID() string {
	m, _ := c.Module()
	return m.ID
}

func (c *Chats) loading() bool {
	return c.modulesLife.Phase == PhaseLoading || c.threadLife.Phase == PhaseLoading
}

func (c *Chats) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch c.modulesLife.Phase {
	case PhaseError:
		if key.Matches(msg, keyRetry) {
			return c.fetchModules()
		}
		return nil
	case PhaseEmpty:
		switch {
		case key.Matches(msg, keyGoTutors):
			return redirect(RouteTutors)
		case key.Matches(msg, keyGoModules):
			return redirect(RouteModules)
		}
		return nil
	case PhaseReady:
	default:
		return nil
	}

	switch {
	case key.Matches(msg, keyNextModule):
		return c.selectModule(c.current + 1)
	case key.Matches(msg, keyPrevModule):
		return c.selectModule(c.current - 1)
	case key.Matches(msg, keyScroll), msg.Type == tea.KeyUp, msg.Type == tea.KeyDown,
		msg.Type == tea.KeyHome, msg.Type == tea.KeyEnd:
		return c.viewport.Update(msg)
	}

	if !c.input.Focused() {
		switch {
		case key.Matches(msg, keyRetry) && c.threadLife.Phase == PhaseError:
			return c.fetchThread()
		case key.Matches(msg, keyFocus), key.Matches(msg, keySend):
			return c.input.Focus()
		}
		return nil
	}

	switch {
	case key.Matches(msg, keySend):
		return c.send()
	case key.Matches(msg, keyBlur):
		c.input.Blur()
		return nil
	}
	return c.input.Update(msg)
}

// View renders the page.
func (c *Chats) View() string {
	theme := c.deps.Theme
	switch c.modulesLife.Phase {
	case PhaseIdle, PhaseLoading:
		return c.loader.View()
	case PhaseError:
		return components.RenderErrorScaffold(theme, c.modulesLife.Err, c.width)
	case PhaseEmpty:
		return components.RenderEmptyState(theme, "One more thing!",
			"Create a module and tutor to start a conversation.", c.width,
			"[t] Create Tutor", "[m] Create Module")
	}

	picker := c.renderPicker()
	composer := c.input.View()
	bodyHeight := max(c.height-lipgloss.Height(picker)-lipgloss.Height(composer), 3)

	var body string
	switch c.threadLife.Phase {
	case PhaseLoading:
		body = c.loader.View()
	case PhaseError:
		body = components.RenderErrorScaffold(theme, c.threadLife.Err, c.width)
	case PhaseEmpty:
		if c.viewport.Thinking() {
			body = c.viewport.View()
			break
		}
		body = components.RenderEmptyState(theme, "No Chats",
			"Start a new conversation with your personal tutor.", c.width)
	default:
		body = c.viewport.View()
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, picker, body, composer)
}

func (c *Chats) renderPicker() string {
	theme := c.deps.Theme
	m, _ := c.Module()
	label := theme.Muted.Render("Module ") + theme.Key.Render("< "+m.Name+" >")
	if m.TutorName() != "" {
		label += theme.Muted.Render("  with " + m.TutorName())
	}
	return label
}

// SetSize fits the page into width x height.
func (c *Chats) SetSize(width, height int) {
	c.width, c.height = width, height
	c.loader.SetWidth(width)
	c.input.SetWidth(width)
	composer := lipgloss.Height(c.input.View())
	c.viewport.SetSize(width, max(height-composer-1, 3))
}

// Close cancels the pending poll and in-flight requests.
func (c *Chats) Close() {
	c.poller.Cancel()
	c.close()
}

// Capturing reports whether the composer has focus.
func (c *Chats) Capturing() bool { return c.input.Focused() }

// Keys returns the page's bindings for the current state.
func (c *Chats) Keys() []key.Binding {
	switch c.modulesLife.Phase {
	case PhaseError:
		return []key.Binding{keyRetry}
	case PhaseEmpty:
		return []key.Binding{keyGoTutors, keyGoModules}
	case PhaseReady:
		if c.input.Focused() {
			return []key.Binding{keySend, keyNextModule, keyPrevModule, keyScroll, keyBlur}
		}
		return []key.Binding{keyFocus, keyNextModule, keyPrevModule, keyScroll}
	}
	return nil
}
