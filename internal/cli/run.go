// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/ptutor-tui/internal/audit"
	"github.com/jeranaias/ptutor-tui/internal/auth"
	"github.com/jeranaias/ptutor-tui/internal/config"
	"github.com/jeranaias/ptutor-tui/internal/logging"
	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/telemetry"
	"github.com/jeranaias/ptutor-tui/internal/ui/components"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Backend is the part of the REST client the commands call.
type Backend interface {
	ListTutors(ctx context.Context) ([]model.Tutor, error)
	ListModules(ctx context.Context) ([]model.Module, error)
	ListMessages(ctx context.Context, threadID string) ([]model.Message, error)
	SendMessage(ctx context.Context, p model.MessagePayload) error
	GetUser(ctx context.Context) (model.UserInfo, error)
	ListCredits(ctx context.Context) ([]model.CreditTransaction, error)
	AddCredit(ctx context.Context, p model.CreditPayload) error
	CreditsSummary(ctx context.Context) (model.CreditSummary, error)
	Register(ctx context.Context, p model.RegisterPayload) error
}

// Identity is the signed-in session.
type Identity interface {
	CurrentUser() *auth.User
	SignIn(ctx context.Context, email, password string) (*auth.User, error)
	SignUp(ctx context.Context, p model.RegisterPayload, reg auth.Registrar) (*auth.User, error)
	SignOut(ctx context.Context) error
}

// TraceStore reads recorded request traces. *telemetry.Recorder
// implements it.
type TraceStore interface {
	Recent(limit int) ([]telemetry.Span, error)
	Stats() ([]telemetry.Stat, error)
}

// Server is a runnable devserver.
type Server interface {
	Start() error
	Stop(ctx context.Context) error
}

// Env carries everything a command needs. main builds it once.
type Env struct {
	Config     *config.Config
	ConfigPath string

	API      Backend
	Session  Identity
	Traces   TraceStore // nil when tracing is off
	Audit    *audit.Logger
	Log      logging.Logger
	Markdown *components.Markdown

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// NewServer builds the devserver for addr.
	NewServer func(addr string) Server
	// ReadPassword overrides the no-echo password prompt.
	ReadPassword func(prompt string) (string, error)
	// PollDelay overrides the chat refetch delay.
	PollDelay time.Duration
	// HistoryPath is the chat line history file; empty disables it.
	HistoryPath string

	reader *bufio.Reader
}

func (e *Env) out() io.Writer {
	if e.Out == nil {
		return os.Stdout
	}
	return e.Out
}

func (e *Env) errOut() io.Writer {
	if e.Err == nil {
		return os.Stderr
	}
	return e.Err
}

func (e *Env) log() logging.Logger {
	if e.Log == nil {
		return logging.Default()
	}
	return e.Log
}

func (e *Env) pollDelay() time.Duration {
	if e.PollDelay > 0 {
		return e.PollDelay
	}
	if e.Config != nil {
		return e.Config.Chat.PollDelay()
	}
	return 5 * time.Second
}

// =============================================================================
// DISPATCH
// =============================================================================

// Run executes args. In JSON mode a failure is also written to Out as an
// error envelope; the caller only needs to set the exit code.
func Run(ctx context.Context, args Args, env *Env) error {
	err := dispatch(ctx, args, env)
	if err != nil && args.JSON {
		_ = NewJSONErrorResponse(args.Command.String(), err).Write(env.out())
	}
	return err
}

func dispatch(ctx context.Context, args Args, env *Env) error {
	switch args.Command {
	case CmdHelp:
		return printHelp(env.out(), args.Topic)
	case CmdVersion:
		return env.emit(args, versionData(), func(w io.Writer) {
			v := versionData()
			fmt.Fprintf(w, "ptutor %s (commit %s, built %s, %s)\n", v.Version, v.GitCommit, v.BuildDate, v.GoVersion)
		})
	case CmdConfig:
		return runConfig(args, env)
	case CmdDevServer:
		return runDevServer(ctx, args, env)
	case CmdTraces:
		return runTraces(args, env)
	case CmdSignIn:
		return runSignIn(ctx, args, env)
	case CmdSignUp:
		return runSignUp(ctx, args, env)
	case CmdSignOut:
		return runSignOut(ctx, args, env)
	case CmdWhoAmI:
		return runWhoAmI(args, env)
	case CmdTutors:
		return runTutors(ctx, args, env)
	case CmdModules:
		return runModules(ctx, args, env)
	case CmdUsage:
		return runUsage(ctx, args, env)
	case CmdCredits:
		return runCreditsAdd(ctx, args, env)
	case CmdChat:
		return runChat(ctx, args, env)
	default:
		return usageErrorf("", "%s is not a command line command", args.Command)
	}
}

// emit prints data as a JSON envelope or calls human.
func (e *Env) emit(args Args, data interface{}, human func(w io.Writer)) error {
	if args.JSON {
		return NewJSONResponse(args.Command.String(), data).Write(e.out())
	}
	human(e.out())
	return nil
}

// requireUser returns the signed-in user or auth.ErrNotSignedIn.
func (e *Env) requireUser() (*auth.User, error) {
	if e.Session == nil {
		return nil, auth.ErrNotSignedIn
	}
	u := e.Session.CurrentUser()
	if u == nil {
		return nil, auth.ErrNotSignedIn
	}
	return u, nil
}

func (e *Env) audit(event, target string, err error) {
	if e.Audit == nil {
		return
	}
	uid := ""
	if e.Session != nil {
		if u := e.Session.CurrentUser(); u != nil {
			uid = u.UID
		}
	}
	if aerr := e.Audit.LogAction(event, uid, target, err); aerr != nil {
		e.log().Warn("audit write failed", aerr)
	}
}

// =============================================================================
// PROMPTS
// =============================================================================

func (e *Env) lines() *bufio.Reader {
	if e.reader == nil {
		in := e.In
		if in == nil {
			in = os.Stdin
		}
		e.reader = bufio.NewReader(in)
	}
	return e.reader
}

// prompt reads one trimmed line. EOF before any input is an error.
func (e *Env) prompt(label string) (string, error) {
	fmt.Fprint(e.errOut(), label)
	line, err := e.lines().ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// password reads a secret without echo on a terminal, or a plain line
// from a pipe.
func (e *Env) password(label string) (string, error) {
	if e.ReadPassword != nil {
		return e.ReadPassword(label)
	}
	in := e.In
	if in == nil {
		in = os.Stdin
	}
	if isTerminal(in) {
		return readPasswordTerminal(in, label, e.errOut())
	}
	return e.prompt(label)
}
