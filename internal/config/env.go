// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// DotEnvFile is the file LoadDotEnv reads from the working directory.
var DotEnvFile = ".env"

var dotEnvOnce sync.Once

// LoadDotEnv loads DotEnvFile into the process environment once. Variables
// already set in the environment win over the file. A missing file is not
// an error.
func LoadDotEnv() {
	dotEnvOnce.Do(func() {
		if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Warning: could not load %s: %v\n", DotEnvFile, err)
		}
	})
}

// firebaseEnv maps a config field to its environment variable suffix. Both
// FIREBASE_<suffix> and NEXT_PUBLIC_FIREBASE_<suffix> are honoured so a web
// app's existing .env can be reused as-is.
func (c *Config) firebaseEnv() map[string]*string {
	return map[string]*string{
		"API_KEY":             &c.Firebase.APIKey,
		"AUTH_DOMAIN":         &c.Firebase.AuthDomain,
		"PROJECT_ID":          &c.Firebase.ProjectID,
		"STORAGE_BUCKET":      &c.Firebase.StorageBucket,
		"MESSAGING_SENDER_ID": &c.Firebase.MessagingSenderID,
		"APP_ID":              &c.Firebase.AppID,
		"MEASUREMENT_ID":      &c.Firebase.MeasurementID,
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - PTUTOR_API_URL: overrides api.base_url
//   - PTUTOR_API_TIMEOUT: overrides api.timeout_secs
//   - PTUTOR_POLL_DELAY: overrides chat.poll_delay_secs
//   - PTUTOR_THEME: overrides ui.theme
//   - PTUTOR_AUTH_URL: overrides firebase.auth_url
//   - PTUTOR_TOKEN_URL: overrides firebase.token_url
//   - PTUTOR_ROLLBAR_TOKEN: overrides telemetry.rollbar_token
//   - PTUTOR_ENV: overrides telemetry.environment
//   - PTUTOR_DEBUG: set to "1" or "true" to enable the debug log
//   - PTUTOR_NO_TRACES: set to "1" or "true" to disable request tracing
//   - OPENAI_API_KEY: overrides devserver.openai_key
//   - OPENAI_BASE_URL: overrides devserver.openai_base_url
//   - FIREBASE_* and NEXT_PUBLIC_FIREBASE_*: override the firebase section
func (c *Config) ApplyEnvOverrides() {
	for suffix, field := range c.firebaseEnv() {
		if v := os.Getenv("NEXT_PUBLIC_FIREBASE_" + suffix); v != "" {
			*field = v
		}
		if v := os.Getenv("FIREBASE_" + suffix); v != "" {
			*field = v
		}
	}

	if v := os.Getenv("PTUTOR_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("PTUTOR_API_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSecs = n
		}
	}
	if v := os.Getenv("PTUTOR_POLL_DELAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Chat.PollDelaySecs = n
		}
	}
	if v := os.Getenv("PTUTOR_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("PTUTOR_AUTH_URL"); v != "" {
		c.Firebase.AuthURL = v
	}
	if v := os.Getenv("PTUTOR_TOKEN_URL"); v != "" {
		c.Firebase.TokenURL = v
	}
	if v := os.Getenv("PTUTOR_ROLLBAR_TOKEN"); v != "" {
		c.Telemetry.RollbarToken = v
	}
	if v := os.Getenv("PTUTOR_ENV"); v != "" {
		c.Telemetry.Environment = v
	}
	if v := os.Getenv("PTUTOR_DEBUG"); v != "" {
		c.Logging.Debug = parseBool(v)
	}
	if v := os.Getenv("PTUTOR_NO_TRACES"); v != "" {
		c.Telemetry.TracesEnabled = !parseBool(v)
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.DevServer.OpenAIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.DevServer.OpenAIBaseURL = v
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
