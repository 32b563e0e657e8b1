// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jeranaias/ptutor-tui/internal/auth"
	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/validate"
)

const (
	msgRegistered = "Registered in successfully."
	msgSignedOut  = "Signed out successfully."
)

func identity(u *auth.User) IdentityData {
	return IdentityData{UID: u.UID, Email: u.Email, DisplayName: u.DisplayName}
}

func printIdentity(w io.Writer, u *auth.User) {
	name := u.DisplayName
	if name == "" {
		name = u.Email
	}
	fmt.Fprintln(w, RenderField("Name", name))
	fmt.Fprintln(w, RenderField("Email", u.Email))
	fmt.Fprintln(w, RenderField("User ID", u.UID))
}

func runSignIn(ctx context.Context, args Args, env *Env) error {
	if env.Session == nil {
		return auth.ErrNoAPIKey
	}
	p := model.SignInPayload{Email: args.Email}
	var err error
	if p.Email == "" {
		if p.Email, err = env.prompt("Email address: "); err != nil {
			return err
		}
	}
	if p.Password, err = env.password("Password: "); err != nil {
		return err
	}
	if err := validate.Struct(p); err != nil {
		return err
	}

	user, err := env.Session.SignIn(ctx, p.Email, p.Password)
	env.audit("auth.signin", p.Email, err)
	if err != nil {
		return err
	}
	return env.emit(args, identity(user), func(w io.Writer) {
		fmt.Fprintln(w, SuccessStyle.Render("Signed in."))
		printIdentity(w, user)
	})
}

func runSignUp(ctx context.Context, args Args, env *Env) error {
	if env.Session == nil {
		return auth.ErrNoAPIKey
	}
	p := model.RegisterPayload{Email: args.Email}
	var err error
	for _, f := range []struct {
		label string
		dst   *string
	}{
		{"First name: ", &p.FirstName},
		{"Last name: ", &p.LastName},
		{"Email address: ", &p.Email},
	} {
		if *f.dst != "" {
			continue
		}
		if *f.dst, err = env.prompt(f.label); err != nil {
			return err
		}
	}
	if p.Password, err = env.password("Password (at least 6 characters): "); err != nil {
		return err
	}
	if err := validate.Struct(p); err != nil {
		return err
	}

	user, err := env.Session.SignUp(ctx, p, env.API)
	env.audit("auth.signup", p.Email, err)
	if err != nil {
		return err
	}
	return env.emit(args, identity(user), func(w io.Writer) {
		fmt.Fprintln(w, SuccessStyle.Render(msgRegistered))
		printIdentity(w, user)
	})
}

func runSignOut(ctx context.Context, args Args, env *Env) error {
	user, err := env.requireUser()
	if err != nil {
		return env.emit(args, nil, func(w io.Writer) {
			fmt.Fprintln(w, DimStyle.Render("Not signed in."))
		})
	}
	err = env.Session.SignOut(ctx)
	env.audit("auth.signout", user.Email, err)
	if err != nil {
		return &CommandError{Command: "signout", Action: "sign out", Reason: "Oops! Could not sign you out.", Err: err}
	}
	return env.emit(args, identity(user), func(w io.Writer) {
		fmt.Fprintln(w, SuccessStyle.Render(msgSignedOut))
	})
}

func runWhoAmI(args Args, env *Env) error {
	user, err := env.requireUser()
	if err != nil {
		return err
	}
	return env.emit(args, identity(user), func(w io.Writer) {
		printIdentity(w, user)
	})
}
