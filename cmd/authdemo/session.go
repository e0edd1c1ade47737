package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/MalcoreHardcore698/authdemo/auth"
	"github.com/MalcoreHardcore698/authdemo/authapi"
	"github.com/MalcoreHardcore698/authdemo/validation"
)

// notifier prints toast messages to the command's stderr.
type notifier struct{ w io.Writer }

func (n notifier) Success(msg string) { fmt.Fprintln(n.w, msg) }
func (n notifier) Error(msg string)   { fmt.Fprintln(n.w, "error:", msg) }

// NewRegisterCmd creates the register subcommand.
func NewRegisterCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := openEngine(cmd, nil)
			if err != nil {
				return err
			}
			defer engine.Close()

			f, err := engine.NewRegisterForm(notifier{cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			f.SetValue("name", name)
			f.SetValue("email", email)
			f.SetValue("password", password)
			if err := f.Submit(cmd.Context()); err != nil {
				return formError(cmd, err, f.State().Errors)
			}
			return printUser(cmd.OutOrStdout(), engine.Controller().State())
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

// NewLoginCmd creates the login subcommand.
func NewLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := openEngine(cmd, nil)
			if err != nil {
				return err
			}
			defer engine.Close()

			f, err := engine.NewLoginForm(notifier{cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			f.SetValue("email", email)
			f.SetValue("password", password)
			if err := f.Submit(cmd.Context()); err != nil {
				return formError(cmd, err, f.State().Errors)
			}
			return printUser(cmd.OutOrStdout(), engine.Controller().State())
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

// NewResetPasswordCmd creates the reset-password subcommand.
func NewResetPasswordCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Request a password reset email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := openEngine(cmd, nil)
			if err != nil {
				return err
			}
			defer engine.Close()

			f, err := engine.NewForgotPasswordForm(notifier{cmd.OutOrStdout()})
			if err != nil {
				return err
			}
			f.SetValue("email", email)
			if err := f.Submit(cmd.Context()); err != nil {
				return formError(cmd, err, f.State().Errors)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

// NewMeCmd creates the me subcommand.
func NewMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := openEngine(cmd, nil)
			if err != nil {
				return err
			}
			defer engine.Close()

			// A failed check has already signed the session out.
			ctrl := engine.Controller()
			_ = ctrl.Me(cmd.Context())
			state := ctrl.State()
			if !state.IsAuthenticated {
				return errNotSignedIn
			}
			return printUser(cmd.OutOrStdout(), state)
		},
	}
}

// NewLogoutCmd creates the logout subcommand.
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := openEngine(cmd, nil)
			if err != nil {
				return err
			}
			defer engine.Close()

			engine.Controller().Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

// formError prints field errors in name order. Backend failures were
// already reported by the notifier.
func formError(cmd *cobra.Command, err error, fields map[string]validation.FieldError) error {
	if !errors.Is(err, auth.ErrInvalidForm) {
		return err
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", name, fields[name].Message)
	}
	return err
}

func printUser(w io.Writer, state auth.State) error {
	if state.User == nil {
		return errNotSignedIn
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		User authapi.User `json:"user"`
	}{*state.User})
}
