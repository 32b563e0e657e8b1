// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/ptutor-tui/internal/api"
	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/poll"
)

const chatHelp = `Commands:
  /modules        list modules
  /switch NAME    chat in another module
  /history        print the whole thread again
  /help           show this help
  /quit           leave (ctrl+d works too)`

// =============================================================================
// LINE INPUT
// =============================================================================

type lineReader interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// linerInput edits lines with history when stdin is a terminal.
type linerInput struct {
	state       *liner.State
	historyPath string
}

func newLinerInput(historyPath string) *linerInput {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	in := &linerInput{state: state, historyPath: historyPath}
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = state.ReadHistory(f)
			f.Close()
		}
	}
	return in
}

func (l *linerInput) Prompt(prompt string) (string, error) {
	line, err := l.state.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		l.state.AppendHistory(line)
	}
	return line, nil
}

func (l *linerInput) Close() error {
	if l.historyPath != "" {
		if f, err := os.OpenFile(l.historyPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			_, _ = l.state.WriteHistory(f)
			f.Close()
		}
	}
	return l.state.Close()
}

// pipedInput reads lines from a non-terminal reader.
type pipedInput struct {
	env *Env
}

func (p pipedInput) Prompt(prompt string) (string, error) {
	fmt.Fprint(p.env.out(), prompt)
	line, err := p.env.lines().ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", io.EOF
	}
	fmt.Fprintln(p.env.out())
	return strings.TrimRight(line, "\r\n"), nil
}

func (pipedInput) Close() error { return nil }

// =============================================================================
// SESSION
// =============================================================================

type chatSession struct {
	env     *Env
	userID  string
	modules []model.Module
	module  model.Module
	seen    map[string]bool
	width   int
	poller  poll.Poller
}

func findModule(modules []model.Module, name string) (model.Module, bool) {
	for _, m := range modules {
		if strings.EqualFold(strings.TrimSpace(m.Name), strings.TrimSpace(name)) {
			return m, true
		}
	}
	return model.Module{}, false
}

func runChat(ctx context.Context, args Args, env *Env) error {
	user, err := env.requireUser()
	if err != nil {
		return err
	}
	modules, err := env.API.ListModules(ctx)
	if err != nil {
		return err
	}
	if len(modules) == 0 {
		return &CommandError{
			Command: "chat",
			Action:  "start",
			Reason:  "One more thing! Create a tutor and a module in the dashboard first",
		}
	}

	s := &chatSession{
		env:     env,
		userID:  user.UID,
		modules: modules,
		module:  modules[0],
		seen:    map[string]bool{},
		width:   min(terminalWidth(env.out()), 100),
		poller:  poll.NewDelayedPoller(),
	}
	if args.Module != "" {
		m, ok := findModule(modules, args.Module)
		if !ok {
			return usageErrorf("chat", "no module named %q", args.Module)
		}
		s.module = m
	}

	var input lineReader = pipedInput{env: env}
	if env.In == nil && isTerminal(os.Stdin) {
		input = newLinerInput(env.HistoryPath)
	}
	defer input.Close()

	if err := s.open(ctx); err != nil {
		return err
	}

	for {
		line, err := input.Prompt("you> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(env.out())
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "/"):
			if quit := s.command(ctx, line); quit {
				return nil
			}
		default:
			s.send(ctx, line)
		}
	}
}

// open prints the header and the existing thread.
func (s *chatSession) open(ctx context.Context) error {
	w := s.env.out()
	fmt.Fprintln(w, TitleStyle.Render(s.module.Name)+DimStyle.Render("  with "+s.module.TutorName()))
	fmt.Fprintln(w, DimStyle.Render("Type /help for commands."))
	s.seen = map[string]bool{}

	msgs, err := s.env.API.ListMessages(ctx, s.module.ThreadID)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No Chats. Say hello to start."))
	}
	s.print(msgs)
	return nil
}

// print writes messages not shown yet and reports whether any came from
// the assistant.
func (s *chatSession) print(msgs []model.Message) bool {
	w := s.env.out()
	replied := false
	for _, m := range msgs {
		if s.seen[m.ID] {
			continue
		}
		s.seen[m.ID] = true
		author := m.Role.Author(s.module.Name)
		if m.Role == model.RoleUser {
			fmt.Fprintln(w, SectionStyle.Render(author)+"\n"+m.Text())
			continue
		}
		replied = true
		text := m.Text()
		if s.env.Markdown != nil {
			text = s.env.Markdown.Render(text, s.width)
		}
		fmt.Fprintln(w, TutorStyle.Render(author)+"\n"+text)
	}
	return replied
}

func (s *chatSession) send(ctx context.Context, text string) {
	w := s.env.out()
	p := model.NewMessagePayload(s.module, s.userID, text)
	if err := s.env.API.SendMessage(ctx, p); err != nil {
		fmt.Fprintln(w, ErrorStyle.Render(api.Message(err, "Failed to send message")))
		return
	}

	fmt.Fprintln(w, DimStyle.Render("Thinking..."))
	fired := make(chan struct{})
	cancel := s.poller.Schedule(ctx, s.env.pollDelay(), func() { close(fired) })
	select {
	case <-ctx.Done():
		cancel()
		return
	case <-fired:
	}

	msgs, err := s.env.API.ListMessages(ctx, s.module.ThreadID)
	if err != nil {
		fmt.Fprintln(w, ErrorStyle.Render(api.Message(err, "Failed to fetch messages")))
		return
	}
	if !s.print(msgs) {
		fmt.Fprintln(w, DimStyle.Render("No reply yet. Type /history to check again."))
	}
}

// command runs a slash command and reports whether to quit.
func (s *chatSession) command(ctx context.Context, line string) bool {
	w := s.env.out()
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	switch strings.ToLower(name) {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(w, chatHelp)
	case "modules":
		for _, m := range s.modules {
			marker := "  "
			if m.ID == s.module.ID {
				marker = "* "
			}
			fmt.Fprintln(w, marker+m.Name+DimStyle.Render("  "+m.TutorName()))
		}
	case "switch":
		m, ok := findModule(s.modules, arg)
		if !ok {
			fmt.Fprintln(w, ErrorStyle.Render(fmt.Sprintf("No module named %q.", strings.TrimSpace(arg))))
			return false
		}
		s.module = m
		if err := s.open(ctx); err != nil {
			fmt.Fprintln(w, ErrorStyle.Render(api.Message(err, "Failed to fetch messages")))
		}
	case "history":
		if err := s.open(ctx); err != nil {
			fmt.Fprintln(w, ErrorStyle.Render(api.Message(err, "Failed to fetch messages")))
		}
	default:
		fmt.Fprintln(w, WarningStyle.Render("Unknown command. Type /help."))
	}
	return false
}
