// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/ui/components"
	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

const (
	msgFetchUserFailed    = "Failed to fetch user info"
	msgFetchCreditsFailed = "Failed to fetch credits"
	msgFetchSummaryFailed = "Failed to fetch credit summary"
	msgCreditAdded        = "Credit added successfully"
	msgAddCreditFailed    = "Failed to add credit"
)

type userInfoMsg struct {
	owner, gen uint64
	info       model.UserInfo
	err        error
}

type creditsMsg struct {
	owner, gen uint64
	credits    []model.CreditTransaction
	err        error
}

type summaryMsg struct {
	owner, gen uint64
	summary    model.CreditSummary
	err        error
}

type creditAddedMsg struct {
	owner uint64
	err   error
}

var keyAddCredit = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add credit"))

// Usage shows the credit balance, a breakdown of spend and the ledger.
type Usage struct {
	base

	userGen, creditsGen, summaryGen uint64

	info    *model.UserInfo
	infoErr string
	summary model.CreditSummary
	sumErr  string
	table   *components.Table[model.CreditTransaction]

	form *components.CreditForm
}

// NewUsage creates the usage page.
func NewUsage(deps Deps) *Usage {
	u := &Usage{base: newBase(deps)}
	u.table = components.NewTable(deps.Theme, creditColumns(deps.Theme))
	u.table.OnRetry = u.fetchCredits
	return u
}

func creditColumns(theme *styles.Theme) []components.Column[model.CreditTransaction] {
	return []components.Column[model.CreditTransaction]{
		{Header: "Type", Render: func(c model.CreditTransaction) string { return components.TitleCase(c.Type) }},
		{Header: "Amount", Width: 16, Render: func(c model.CreditTransaction) string {
			text := components.FormatSignedAmount(c.Currency, c.Amount, c.IsCredit())
			if c.IsCredit() {
				return theme.Success.Render(text)
			}
			return theme.Error.Render(text)
		}},
		{Header: "Date", Width: 18, Render: func(c model.CreditTransaction) string { return c.Created.Display() }},
	}
}

// Init fetches balance, ledger and summary together.
func (u *Usage) Init() tea.Cmd {
	if cmd := u.guard(); cmd != nil {
		return cmd
	}
	return u.fetchAll()
}

func (u *Usage) fetchAll() tea.Cmd {
	return tea.Batch(u.fetchUser(), u.fetchCredits(), u.fetchSummary())
}

func (u *Usage) fetchUser() tea.Cmd {
	u.userGen++
	gen, owner, ctx, b := u.userGen, u.owner, u.ctx, u.deps.API
	return func() tea.Msg {
		info, err := b.GetUser(ctx)
		return userInfoMsg{owner: owner, gen: gen, info: info, err: err}
	}
}

func (u *Usage) fetchCredits() tea.Cmd {
	u.creditsGen++
	gen, owner, ctx, b := u.creditsGen, u.owner, u.ctx, u.deps.API
	return tea.Batch(u.table.SetLoading(), func() tea.Msg {
		credits, err := b.ListCredits(ctx)
		return creditsMsg{owner: owner, gen: gen, credits: credits, err: err}
	})
}

func (u *Usage) fetchSummary() tea.Cmd {
	u.summaryGen++
	gen, owner, ctx, b := u.summaryGen, u.owner, u.ctx, u.deps.API
	return func() tea.Msg {
		s, err := b.CreditsSummary(ctx)
		return summaryMsg{owner: owner, gen: gen, summary: s, err: err}
	}
}

// Balance returns the fetched user info, if any.
func (u *Usage) Balance() (model.UserInfo, bool) {
	if u.info == nil {
		return model.UserInfo{}, false
	}
	return *u.info, true
}

// Credits returns the ledger rows, newest first.
func (u *Usage) Credits() []model.CreditTransaction { return u.table.Rows() }

// Update handles results and keys.
func (u *Usage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case userInfoMsg:
		if !u.mine(msg.owner) || msg.gen != u.userGen {
			return nil
		}
		if msg.err != nil {
			u.infoErr = fetchError(msg.err, msgFetchUserFailed)
			u.fitTable()
			return u.failure(msg.err, msgFetchUserFailed)
		}
		info := msg.info
		u.info, u.infoErr = &info, ""
		u.fitTable()
		return nil

	case creditsMsg:
		if !u.mine(msg.owner) || msg.gen != u.creditsGen {
			return nil
		}
		if msg.err != nil {
			if isSessionError(msg.err) {
				return redirect(RouteSignIn)
			}
			u.table.SetError(fetchError(msg.err, msgFetchCreditsFailed))
			return nil
		}
		u.table.SetRows(msg.credits)
		return nil

	case summaryMsg:
		if !u.mine(msg.owner) || msg.gen != u.summaryGen {
			return nil
		}
		if msg.err != nil {
			u.sumErr = fetchError(msg.err, msgFetchSummaryFailed)
			u.fitTable()
			return u.failure(msg.err, msgFetchSummaryFailed)
		}
		u.summary, u.sumErr = msg.summary, ""
		u.fitTable()
		return nil

	case creditAddedMsg:
		if !u.mine(msg.owner) {
			return nil
		}
		u.audit("credit.add", "", msg.err)
		if msg.err != nil {
			return u.failure(msg.err, msgAddCreditFailed)
		}
		return tea.Batch(success(msgCreditAdded), u.fetchAll())

	case components.FormCancelMsg:
		u.form = nil
		return nil

	case tea.KeyMsg:
		if u.form != nil {
			return u.form.Update(msg)
		}
		switch {
		case key.Matches(msg, keyAddCredit):
			u.openForm()
			return nil
		case key.Matches(msg, keyRefresh) && u.table.State() != components.TableError:
			return u.fetchAll()
		}
		return u.table.Update(msg)
	}

	var cmds []tea.Cmd
	if u.form != nil {
		cmds = append(cmds, u.form.Update(msg))
	}
	cmds = append(cmds, u.table.Update(msg))
	return tea.Batch(cmds...)
}

func (u *Usage) openForm() {
	u.form = components.NewCreditForm(u.deps.Theme)
	u.form.SetWidth(u.width)
	u.form.OnCreate = func(p model.CreditPayload) tea.Cmd {
		u.form = nil
		owner, ctx, b := u.owner, u.ctx, u.deps.API
		return func() tea.Msg {
			return creditAddedMsg{owner: owner, err: b.AddCredit(ctx, p)}
		}
	}
}

// FormOpen reports whether the add credit modal is showing.
func (u *Usage) FormOpen() bool { return u.form != nil }

func (u *Usage) currency() string {
	if u.info != nil && u.info.Currency != "" {
		return u.info.Currency
	}
	return u.deps.Currency
}

// View renders the page.
func (u *Usage) View() string {
	if u.form != nil {
		return lipgloss.Place(u.width, u.height, lipgloss.Center, lipgloss.Center, u.form.View())
	}
	head, balance, charts := u.sections()
	return lipgloss.JoinVertical(lipgloss.Left,
		head, balance, "", charts, "",
		u.deps.Theme.Muted.Render("Activity"),
		u.table.View(),
	)
}

// fitTable gives the ledger the rows left under the header, balance and
// charts. It runs whenever their height may change.
func (u *Usage) fitTable() {
	head, balance, charts := u.sections()
	used := lipgloss.Height(head) + lipgloss.Height(balance) + lipgloss.Height(charts) + 3
	u.table.SetSize(u.width, max(u.height-used, 5))
}

// sections renders everything above the ledger.
func (u *Usage) sections() (head, balance, charts string) {
	theme := u.deps.Theme
	head = lipgloss.JoinVertical(lipgloss.Left,
		theme.PageTitle.Render("Usage"),
		theme.PageSubtitle.Render("Your credit usage"),
	)

	switch {
	case u.info != nil:
		balance = theme.PageTitle.Render(components.FormatAmount(u.currency(), u.info.Credits))
	case u.infoErr != "":
		balance = theme.Error.Render(u.infoErr)
	default:
		balance = theme.Muted.Render("…")
	}
	balance = lipgloss.PlaceHorizontal(u.width, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, theme.Muted.Render("Credit balance:"), balance))

	points := u.summary.Series()
	switch {
	case u.sumErr != "":
		charts = theme.Error.Render(u.sumErr)
	case u.width >= 100:
		half := u.width/2 - 2
		charts = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(half).MarginRight(4).Render(components.BarChart(theme, points, u.currency(), half)),
			lipgloss.NewStyle().Width(half).Render(components.PieChart(theme, points, half)),
		)
	default:
		charts = lipgloss.JoinVertical(lipgloss.Left,
			components.BarChart(theme, points, u.currency(), u.width),
			"",
			components.PieChart(theme, points, u.width),
		)
	}

	return head, balance, charts
}

// SetSize fits the page into width x height.
func (u *Usage) SetSize(width, height int) {
	u.width, u.height = width, height
	u.fitTable()
	if u.form != nil {
		u.form.SetWidth(width)
	}
}

// Close cancels in-flight requests.
func (u *Usage) Close() { u.close() }

// Capturing reports whether the modal is open.
func (u *Usage) Capturing() bool { return u.form != nil }

// Keys returns the page's bindings.
func (u *Usage) Keys() []key.Binding {
	return []key.Binding{keyMove, keyAddCredit, keyRefresh}
}
