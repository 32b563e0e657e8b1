// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/jeranaias/ptutor-tui/internal/config"
	"github.com/jeranaias/ptutor-tui/internal/logging"
	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/validate"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		// SigningKey signs emulated ID tokens.
		SigningKey string
		// APIKey, when set, is the only key the auth emulator accepts.
		APIKey         string
		Replier        Replier
		ReplyDelay     time.Duration
		StartingCredit float64
		Logger         logging.Logger
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts    *Options
		app     *echo.Echo
		store   *store
		key     []byte
		pending sync.WaitGroup
		done    chan struct{}
		stop    sync.Once
	}
)

var _ Server = (*server)(nil)

// OptionsFromConfig builds server options from the devserver section.
// Replies come from OpenAI when a key is configured.
func OptionsFromConfig(cfg config.DevServerConfig, firebaseKey string, logger logging.Logger) *Options {
	var replier Replier = CannedReplier{}
	if cfg.OpenAIKey != "" {
		replier = NewOpenAIReplier(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	}
	return &Options{
		Address:        cfg.Addr,
		SigningKey:     cfg.SigningKey,
		APIKey:         firebaseKey,
		Replier:        replier,
		ReplyDelay:     time.Second,
		StartingCredit: 5,
		Logger:         logger,
	}
}

func NewServer(opts *Options) Server {
	return newServer(opts)
}

func newServer(opts *Options) *server {
	if opts.Replier == nil {
		opts.Replier = CannedReplier{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.SigningKey == "" {
		opts.SigningKey = tokenIssuer
	}
	s := &server{
		opts:  opts,
		app:   echo.New(),
		store: newStore(),
		key:   []byte(opts.SigningKey),
		done:  make(chan struct{}),
	}
	s.setup()
	return s
}

type appValidator struct{}

func (appValidator) Validate(i interface{}) error {
	return validate.Struct(i)
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Logger.SetLevel(log.INFO)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))

	s.app.Validator = appValidator{}
	s.app.HTTPErrorHandler = newHTTPErrorHandler(s.opts.Logger)

	s.app.GET("/", home)

	s.app.POST("/identitytoolkit/v1/:op", s.accounts)
	s.app.POST("/securetoken/v1/token", s.token)

	registerAPI(s.app.Group("/v1"), s.requireUser, s)
}

// newAccount creates an account and grants the starting credit.
func (s *server) newAccount(email, password, displayName string) (*account, error) {
	a, err := s.store.createAccount(email, password, displayName)
	if err != nil {
		return nil, err
	}
	if s.opts.StartingCredit > 0 {
		s.store.record(a.UID, model.TopUp, s.opts.StartingCredit)
	}
	return a, nil
}

func (s *server) Start() error {
	s.opts.Logger.Info("devserver listening", "addr", s.opts.Address)
	err := s.app.Start(s.opts.Address)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop cancels pending replies and shuts the listener down.
func (s *server) Stop(ctx context.Context) error {
	s.stop.Do(func() { close(s.done) })
	s.pending.Wait()
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Personal Tutor devserver")
}
