// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/ui/components"
	"github.com/jeranaias/ptutor-tui/internal/util"
	"github.com/jeranaias/ptutor-tui/internal/validate"
)

// =============================================================================
// TABLES
// =============================================================================

type column struct {
	title string
	width int
}

// cell is a table value with an optional style applied after padding.
type cell struct {
	text  string
	style *lipgloss.Style
}

func plain(s string) cell { return cell{text: s} }

func styled(s string, st lipgloss.Style) cell { return cell{text: s, style: &st} }

func renderTable(w io.Writer, cols []column, rows [][]cell) {
	var head []string
	total := 0
	for _, c := range cols {
		head = append(head, HeaderStyle.Render(util.PadRight(c.title, c.width)))
		total += c.width + 2
	}
	fmt.Fprintln(w, strings.Join(head, "  "))
	fmt.Fprintln(w, RenderSeparator(total-2))
	for _, row := range rows {
		parts := make([]string, len(cols))
		for i, c := range cols {
			v := util.PadRight(util.Truncate(row[i].text, c.width), c.width)
			if row[i].style != nil {
				v = row[i].style.Render(v)
			}
			parts[i] = v
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}
}

// =============================================================================
// TUTORS & MODULES
// =============================================================================

func runTutors(ctx context.Context, args Args, env *Env) error {
	if _, err := env.requireUser(); err != nil {
		return err
	}
	tutors, err := env.API.ListTutors(ctx)
	if err != nil {
		return err
	}
	tutors = components.SortNewestFirst(tutors)
	return env.emit(args, tutors, func(w io.Writer) {
		if len(tutors) == 0 {
			fmt.Fprintln(w, DimStyle.Render("No tutors yet. Create one from the dashboard (ptutor, then 2)."))
			return
		}
		rows := make([][]cell, len(tutors))
		for i, t := range tutors {
			rows[i] = []cell{plain(t.Name()), plain(t.Model()), plain(t.Instructions()), plain(t.Assistant.Created.Display())}
		}
		renderTable(w, []column{{"Name", 20}, {"Model", 20}, {"Instruction", 36}, {"Created", 18}}, rows)
	})
}

func runModules(ctx context.Context, args Args, env *Env) error {
	if _, err := env.requireUser(); err != nil {
		return err
	}
	modules, err := env.API.ListModules(ctx)
	if err != nil {
		return err
	}
	modules = components.SortNewestFirst(modules)
	return env.emit(args, modules, func(w io.Writer) {
		if len(modules) == 0 {
			fmt.Fprintln(w, DimStyle.Render("No modules yet. Create one from the dashboard (ptutor, then 3)."))
			return
		}
		rows := make([][]cell, len(modules))
		for i, m := range modules {
			rows[i] = []cell{plain(m.Name), plain(m.TutorName()), plain(m.Created.Display())}
		}
		renderTable(w, []column{{"Name", 24}, {"Tutor", 24}, {"Created", 18}}, rows)
	})
}

// =============================================================================
// USAGE & CREDITS
// =============================================================================

func runUsage(ctx context.Context, args Args, env *Env) error {
	if _, err := env.requireUser(); err != nil {
		return err
	}
	user, err := env.API.GetUser(ctx)
	if err != nil {
		return err
	}
	ledger, err := env.API.ListCredits(ctx)
	if err != nil {
		return err
	}
	summary, err := env.API.CreditsSummary(ctx)
	if err != nil {
		return err
	}
	ledger = components.SortNewestFirst(ledger)

	currency := user.Currency
	if currency == "" && env.Config != nil {
		currency = env.Config.UI.Currency
	}
	data := UsageData{Balance: user.Credits, Currency: currency, Ledger: ledger, Summary: summary}
	return env.emit(args, data, func(w io.Writer) {
		fmt.Fprintln(w, TitleStyle.Render("Credit balance: "+components.FormatAmount(currency, user.Credits)))

		fmt.Fprintln(w, SectionStyle.Render("Activity"))
		if len(ledger) == 0 {
			fmt.Fprintln(w, DimStyle.Render("No activity yet."))
		} else {
			rows := make([][]cell, len(ledger))
			for i, tx := range ledger {
				amount := components.FormatSignedAmount(currency, tx.Amount, tx.IsCredit())
				st := DebitStyle
				if tx.IsCredit() {
					st = CreditStyle
				}
				rows[i] = []cell{plain(components.TitleCase(tx.Type)), styled(amount, st), plain(components.FormatDate(tx.CreatedAt()))}
			}
			renderTable(w, []column{{"Type", 18}, {"Amount", 14}, {"Date", 12}}, rows)
		}

		series := summary.Series()
		if len(series) == 0 {
			return
		}
		fmt.Fprintln(w, SectionStyle.Render("Spend by type"))
		total := summary.TotalSpend()
		for _, p := range series {
			share := 0.0
			if total > 0 {
				share = p.Amount / total * 100
			}
			fmt.Fprintln(w, RenderField(components.TitleCase(p.Name), fmt.Sprintf("%s  %s", components.FormatAmount(currency, p.Amount), DimStyle.Render(fmt.Sprintf("%.1f%%", share)))))
		}
	})
}

func runCreditsAdd(ctx context.Context, args Args, env *Env) error {
	if _, err := env.requireUser(); err != nil {
		return err
	}
	amount, err := ParseAmount(args.Rest[0])
	if err != nil {
		return &UsageError{Command: "credits", Message: err.Error()}
	}
	p := model.CreditPayload{Amount: amount}
	if err := validate.Struct(p); err != nil {
		return err
	}

	err = env.API.AddCredit(ctx, p)
	env.audit("credits.add", fmt.Sprintf("%.2f", amount), err)
	if err != nil {
		return err
	}
	user, err := env.API.GetUser(ctx)
	if err != nil {
		return err
	}
	return env.emit(args, user, func(w io.Writer) {
		fmt.Fprintln(w, SuccessStyle.Render("Credit added."))
		fmt.Fprintln(w, RenderField("Balance", components.FormatAmount(user.Currency, user.Credits)))
	})
}
