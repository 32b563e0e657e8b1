// ptutor - Personal Tutor dashboard for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ptutor-tui/internal/api"
	"github.com/jeranaias/ptutor-tui/internal/audit"
	"github.com/jeranaias/ptutor-tui/internal/auth"
	"github.com/jeranaias/ptutor-tui/internal/cli"
	"github.com/jeranaias/ptutor-tui/internal/config"
	"github.com/jeranaias/ptutor-tui/internal/devserver"
	"github.com/jeranaias/ptutor-tui/internal/logging"
	"github.com/jeranaias/ptutor-tui/internal/telemetry"
	"github.com/jeranaias/ptutor-tui/internal/ui/app"
	"github.com/jeranaias/ptutor-tui/internal/ui/components"
	"github.com/jeranaias/ptutor-tui/internal/ui/screens"
	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	args, err := cli.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
		os.Exit(cli.ExitCode(err))
	}

	// help and version work without a config
	if args.Command == cli.CmdHelp || args.Command == cli.CmdVersion {
		os.Exit(cli.ExitCode(cli.Run(context.Background(), args, &cli.Env{})))
	}

	cfg, err := loadConfig(args)
	if cfg == nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
		os.Exit(cli.ExitCode(err))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	if args.Debug {
		cfg.Logging.Debug = true
	}
	config.SetGlobal(cfg)

	rt, err := setup(cfg, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
		os.Exit(cli.ExitCode(err))
	}

	if args.Command == cli.CmdTUI {
		err := runTUI(cfg, args, rt)
		if err != nil {
			rt.log.Error("dashboard exited", err)
			fmt.Fprintf(os.Stderr, "Error running ptutor: %v\n", err)
		}
		rt.Close()
		if err != nil {
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = cli.Run(ctx, args, rt.env(cfg, args))
	stop()
	rt.Close()
	if err != nil {
		if !args.JSON {
			fmt.Fprintln(os.Stderr, cli.FormatError(err))
		}
		os.Exit(cli.ExitCode(err))
	}
}

// loadConfig reads --config when given, the default file otherwise.
func loadConfig(args cli.Args) (*config.Config, error) {
	if args.ConfigPath == "" {
		return config.Load()
	}
	if _, err := os.Stat(args.ConfigPath); os.IsNotExist(err) && args.Command == cli.CmdConfig {
		// config init may be about to create it
		return config.Default(), nil
	}
	return config.LoadFromPath(args.ConfigPath)
}

// =============================================================================
// RUNTIME
// =============================================================================

// runtime holds the long-lived collaborators shared by the dashboard and
// the commands.
type runtime struct {
	log     logging.Logger
	closers []io.Closer

	session *auth.Session
	client  *api.Client
	traces  *telemetry.Recorder
	audit   *audit.Logger
}

func setup(cfg *config.Config, args cli.Args) (*runtime, error) {
	rt := &runtime{}

	logPath, _ := cfg.LogPath()
	prefix := "CLI : "
	if args.Command == cli.CmdTUI {
		prefix = "TUI : "
	}
	logger, closer, err := logging.Open(logging.Options{
		Debug:        cfg.Logging.Debug,
		Path:         logPath,
		Prefix:       prefix,
		RollbarToken: cfg.Telemetry.RollbarToken,
		Environment:  cfg.Telemetry.Environment,
		CodeVersion:  Version,
	})
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, closer)
	rt.log = logger
	logging.SetDefault(logger)

	if cfg.Audit.Enabled {
		if path, err := cfg.AuditPath(); err == nil {
			if l, err := audit.New(path, int64(cfg.Audit.MaxSizeMB)<<20); err != nil {
				logger.Warn("audit log disabled", err)
			} else {
				rt.audit = l
				audit.SetDefault(l)
				rt.closers = append(rt.closers, l)
			}
		}
	}

	if cfg.Telemetry.TracesEnabled {
		if path, err := cfg.TracesPath(); err == nil {
			if rec, err := telemetry.Open(path); err != nil {
				logger.Warn("request tracing disabled", err)
			} else {
				rt.traces = rec
				rt.closers = append(rt.closers, rec)
			}
		}
	}

	var store *auth.Store
	if cfg.Session.Persist {
		if path, err := cfg.SessionPath(); err == nil {
			store = auth.NewStore(path)
		}
	}
	rt.session = auth.NewSession(auth.NewFirebase(cfg.Firebase), store)
	if _, err := rt.session.Restore(); err != nil {
		logger.Warn("discarded saved session", err)
	}

	rt.client = api.NewFromConfig(cfg, rt.session).WithLogger(logger)
	if rt.traces != nil {
		rt.client = rt.client.WithTracer(rt.traces)
	}
	return rt, nil
}

// Close releases everything setup opened. It is safe to call twice.
func (rt *runtime) Close() error {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i].Close()
	}
	rt.closers = nil
	return nil
}

func (rt *runtime) env(cfg *config.Config, args cli.Args) *cli.Env {
	env := &cli.Env{
		Config:     cfg,
		ConfigPath: args.ConfigPath,
		API:        rt.client,
		Session:    rt.session,
		Audit:      rt.audit,
		Log:        rt.log,
		NewServer: func(addr string) cli.Server {
			opts := devserver.OptionsFromConfig(cfg.DevServer, cfg.Firebase.APIKey, rt.log)
			opts.Address = addr
			return devserver.NewServer(opts)
		},
	}
	// a nil *Recorder must not become a non-nil interface
	if rt.traces != nil {
		env.Traces = rt.traces
	}
	if cfg.Chat.RenderMarkdown && cli.IsStdoutTTY() {
		env.Markdown = components.NewMarkdown(styles.NewTheme(cfg.UI.Theme).IsDark)
	}
	if dir, err := config.ConfigDir(); err == nil {
		env.HistoryPath = filepath.Join(dir, "chat_history")
	}
	return env
}

// =============================================================================
// DASHBOARD
// =============================================================================

// runTUI starts the dashboard and blocks until it quits.
func runTUI(cfg *config.Config, args cli.Args, rt *runtime) error {
	theme := styles.NewTheme(cfg.UI.Theme)

	deps := screens.Deps{
		API:       rt.client,
		Session:   rt.session,
		Theme:     theme,
		Log:       rt.log,
		Audit:     rt.audit,
		PollDelay: cfg.Chat.PollDelay(),
		Currency:  cfg.UI.Currency,
	}
	if cfg.Chat.RenderMarkdown {
		deps.Markdown = components.NewMarkdown(theme.IsDark)
	}

	opts := app.Options{Deps: deps}
	path := args.ConfigPath
	if path == "" {
		path, _ = config.ConfigPathTOML()
	}
	if path != "" {
		if w, err := config.NewWatcher(path, 0); err != nil {
			rt.log.Warn("config watcher disabled", err)
		} else if err := w.Start(); err != nil {
			rt.log.Warn("config watcher disabled", err)
			_ = w.Close()
		} else {
			opts.Reloads = app.WatchConfig(w)
			defer w.Close()
		}
	}

	rt.log.Info("starting dashboard", "api="+cfg.API.BaseURL)
	p := tea.NewProgram(
		app.New(opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
