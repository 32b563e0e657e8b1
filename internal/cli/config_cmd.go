// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/ptutor-tui/internal/config"
)

func (e *Env) configPath() (string, error) {
	if e.ConfigPath != "" {
		return e.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

func runConfig(args Args, env *Env) error {
	path, err := env.configPath()
	if err != nil {
		return err
	}
	cfg := env.Config
	if cfg == nil {
		cfg = config.Default()
	}

	switch args.Subcommand {
	case "path":
		return env.emit(args, path, func(w io.Writer) { fmt.Fprintln(w, path) })

	case "init":
		if _, err := os.Stat(path); err == nil && !args.Force {
			return usageErrorf("config", "%s already exists (use --force to overwrite)", path)
		}
		if err := config.SaveTOML(config.Default(), path); err != nil {
			return fmt.Errorf("%w: %v", config.ErrInvalid, err)
		}
		return env.emit(args, path, func(w io.Writer) {
			fmt.Fprintln(w, SuccessStyle.Render("Wrote "+path))
		})

	case "get":
		v, err := cfg.Get(args.Rest[0])
		if err != nil {
			return usageErrorf("config", "%v", err)
		}
		if s, ok := v.(string); ok && isSecretKey(args.Rest[0]) && s != "" {
			v = "[REDACTED]"
		}
		return env.emit(args, v, func(w io.Writer) { fmt.Fprintln(w, v) })

	case "set":
		key, value := args.Rest[0], args.Rest[1]
		// edit the file contents only, so env overrides are not persisted
		file := config.Default()
		if _, err := os.Stat(path); err == nil {
			if err := config.LoadTOML(file, path); err != nil {
				return fmt.Errorf("%w: %v", config.ErrInvalid, err)
			}
		}
		if err := file.Set(key, value); err != nil {
			return usageErrorf("config", "%v", err)
		}
		file.SetDefaults()
		if err := file.Validate(); err != nil {
			return err
		}
		if err := config.SaveTOML(file, path); err != nil {
			return err
		}
		_ = cfg.Set(key, value)
		return env.emit(args, map[string]string{key: value}, func(w io.Writer) {
			fmt.Fprintln(w, SuccessStyle.Render(fmt.Sprintf("Set %s = %s", key, value)))
		})

	default:
		raw := json.RawMessage(cfg.String())
		return env.emit(args, ConfigData{Path: path, Config: raw}, func(w io.Writer) {
			fmt.Fprintln(w, RenderField("Config file", path))
			fmt.Fprintln(w, cfg.String())
		})
	}
}

func isSecretKey(key string) bool {
	switch key {
	case "firebase.api_key", "telemetry.rollbar_token", "devserver.openai_key", "devserver.signing_key":
		return true
	}
	return false
}
