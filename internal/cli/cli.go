// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information, set at build time.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdSignIn
	CmdSignUp
	CmdSignOut
	CmdWhoAmI
	CmdTutors
	CmdModules
	CmdUsage
	CmdCredits
	CmdChat
	CmdTraces
	CmdConfig
	CmdDevServer
	CmdVersion
	CmdHelp
)

var commandNames = map[string]Command{
	"tui":       CmdTUI,
	"signin":    CmdSignIn,
	"login":     CmdSignIn,
	"signup":    CmdSignUp,
	"register":  CmdSignUp,
	"signout":   CmdSignOut,
	"logout":    CmdSignOut,
	"whoami":    CmdWhoAmI,
	"tutors":    CmdTutors,
	"modules":   CmdModules,
	"usage":     CmdUsage,
	"credits":   CmdCredits,
	"chat":      CmdChat,
	"traces":    CmdTraces,
	"config":    CmdConfig,
	"devserver": CmdDevServer,
	"version":   CmdVersion,
	"help":      CmdHelp,
}

// String returns the canonical command word.
func (c Command) String() string {
	for _, name := range []string{
		"tui", "signin", "signup", "signout", "whoami", "tutors", "modules", "usage",
		"credits", "chat", "traces", "config", "devserver", "version", "help",
	} {
		if commandNames[name] == c {
			return name
		}
	}
	return "unknown"
}

// Args holds parsed command line arguments.
type Args struct {
	Command Command

	// global flags
	JSON       bool
	Debug      bool
	Verbose    bool
	ConfigPath string

	// command specific
	Subcommand string
	Rest       []string
	Email      string
	Module     string
	Addr       string
	Limit      int
	Force      bool
	// Topic is the command help was asked about.
	Topic string
}

var boolFlags = []string{"json", "debug", "verbose", "v", "help", "h", "version", "force"}

// Parse parses argv (without the program name).
func Parse(argv []string) (Args, error) {
	p := NewArgParser(argv, boolFlags...)
	args := Args{
		JSON:       p.BoolFlag("json"),
		Debug:      p.BoolFlag("debug"),
		Verbose:    p.BoolFlag("verbose") || p.BoolFlag("v"),
		ConfigPath: p.Flag("config"),
		Email:      p.Flag("email"),
		Module:     p.Flag("module"),
		Addr:       p.Flag("addr"),
		Force:      p.BoolFlag("force"),
		Limit:      20,
	}

	word := strings.ToLower(p.Subcommand())
	help := p.BoolFlag("help") || p.BoolFlag("h")

	switch {
	case word == "" && p.BoolFlag("version"):
		args.Command = CmdVersion
		return args, nil
	case word == "" && help:
		args.Command = CmdHelp
		return args, nil
	case word == "":
		args.Command = CmdTUI
		return args, nil
	}

	cmd, ok := commandNames[word]
	if !ok {
		return args, usageErrorf("", "unknown command %q (run 'ptutor help')", word)
	}
	args.Command = cmd
	args.Subcommand = strings.ToLower(p.Positional(1))
	args.Rest = p.PositionalFrom(2)

	if help {
		args.Topic = cmd.String()
		args.Command = CmdHelp
		return args, nil
	}
	if cmd == CmdHelp {
		args.Topic = args.Subcommand
	}

	if p.HasFlag("limit") {
		n, err := ParsePositiveInt(p.Flag("limit"), "--limit")
		if err != nil {
			return args, &UsageError{Command: cmd.String(), Message: err.Error()}
		}
		args.Limit = n
	}
	return args, validateSubcommand(args)
}

func validateSubcommand(args Args) error {
	name := args.Command.String()
	switch args.Command {
	case CmdTutors, CmdModules:
		if args.Subcommand != "" && args.Subcommand != "list" {
			return usageErrorf(name, "unknown subcommand %q", args.Subcommand)
		}
	case CmdCredits:
		if args.Subcommand != "add" {
			return usageErrorf(name, "expected 'credits add <amount>'")
		}
		if len(args.Rest) != 1 {
			return usageErrorf(name, "expected exactly one amount")
		}
	case CmdConfig:
		switch args.Subcommand {
		case "", "show", "path", "init":
		case "get":
			if len(args.Rest) != 1 {
				return usageErrorf(name, "expected 'config get <key>'")
			}
		case "set":
			if len(args.Rest) != 2 {
				return usageErrorf(name, "expected 'config set <key> <value>'")
			}
		default:
			return usageErrorf(name, "unknown subcommand %q", args.Subcommand)
		}
	}
	return nil
}

// =============================================================================
// HELP
// =============================================================================

const usageText = `ptutor - Personal Tutor in your terminal

Usage:
  ptutor                        Start the dashboard (default)
  ptutor signin [--email E]     Sign in
  ptutor signup                 Create an account and sign in
  ptutor signout                Sign out
  ptutor whoami                 Show the signed-in user
  ptutor tutors [list]          List tutors
  ptutor modules [list]         List modules
  ptutor usage                  Credit balance, activity and spend summary
  ptutor credits add <amount>   Add credit
  ptutor chat [--module NAME]   Chat with a module's tutor
  ptutor traces [--limit N]     Recent request timings
  ptutor config [show|path|init|get|set]
  ptutor devserver [--addr A]   Run the local backend and auth emulator
  ptutor version
  ptutor help [command]

Global flags:
  --json          Print machine-readable output
  --debug         Write a debug log to ~/.ptutor/debug.log
  -v, --verbose   Print more detail
  --config PATH   Use another config file
`

var commandHelp = map[Command]string{
	CmdSignIn: `Usage: ptutor signin [--email EMAIL]

Signs in with email and password. The password is read without echo.`,
	CmdSignUp: `Usage: ptutor signup

Prompts for first name, last name, email and password, registers the
account and signs in. Passwords need at least 6 characters.`,
	CmdSignOut: `Usage: ptutor signout`,
	CmdWhoAmI:  `Usage: ptutor whoami [--json]`,
	CmdTutors: `Usage: ptutor tutors [list] [--json]

Lists your tutors, newest first.`,
	CmdModules: `Usage: ptutor modules [list] [--json]

Lists your modules, newest first.`,
	CmdUsage: `Usage: ptutor usage [--json]

Shows the credit balance, the activity ledger and spend per type.`,
	CmdCredits: `Usage: ptutor credits add <amount>

Example:
  ptutor credits add 20`,
	CmdChat: `Usage: ptutor chat [--module NAME]

Opens a line-mode chat with the module's tutor (the first module by
default). Type /help inside the chat for commands.`,
	CmdTraces: `Usage: ptutor traces [--limit N] [--json]

Shows the most recent backend calls and per-operation timings.`,
	CmdConfig: `Usage: ptutor config [show|path|init|get KEY|set KEY VALUE]

  show        Print the effective configuration (secrets redacted)
  path        Print the config file path
  init        Write a default config file (--force to overwrite)
  get KEY     Print one value, e.g. chat.poll_delay_secs
  set KEY V   Change one value and save`,
	CmdDevServer: `Usage: ptutor devserver [--addr HOST:PORT]

Runs an in-memory backend and Firebase auth emulator. Point the client
at it with:
  api.base_url       = http://127.0.0.1:8000/
  firebase.auth_url  = http://127.0.0.1:8000/identitytoolkit
  firebase.token_url = http://127.0.0.1:8000/securetoken`,
	CmdVersion: `Usage: ptutor version [--json]`,
}

// PrintUsage writes the top-level usage.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

func printHelp(w io.Writer, topic string) error {
	if topic == "" {
		PrintUsage(w)
		return nil
	}
	cmd, ok := commandNames[topic]
	text, has := commandHelp[cmd]
	if !ok || !has {
		return usageErrorf("help", "no help for %q", topic)
	}
	fmt.Fprintln(w, text)
	return nil
}

func versionData() VersionData {
	return VersionData{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}
