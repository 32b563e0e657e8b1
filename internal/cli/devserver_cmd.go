// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"time"
)

const devServerShutdown = 5 * time.Second

// runDevServer serves until ctx is cancelled or the listener fails.
func runDevServer(ctx context.Context, args Args, env *Env) error {
	if env.NewServer == nil {
		return &CommandError{Command: "devserver", Action: "start", Reason: "not available in this build"}
	}
	addr := args.Addr
	if addr == "" && env.Config != nil {
		addr = env.Config.DevServer.Addr
	}
	srv := env.NewServer(addr)

	fmt.Fprintln(env.errOut(), SuccessStyle.Render("devserver")+" listening on "+addr)
	fmt.Fprintln(env.errOut(), DimStyle.Render("api.base_url = http://"+addr+"/   (ctrl+c to stop)"))

	failed := make(chan error, 1)
	go func() { failed <- srv.Start() }()

	select {
	case err := <-failed:
		if err != nil {
			return &CommandError{Command: "devserver", Action: "listen", Reason: addr, Err: err}
		}
		return nil
	case <-ctx.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), devServerShutdown)
	defer cancel()
	if err := srv.Stop(stopCtx); err != nil {
		return &CommandError{Command: "devserver", Action: "stop", Reason: "shutdown", Err: err}
	}
	fmt.Fprintln(env.errOut(), DimStyle.Render("devserver stopped"))
	return nil
}
