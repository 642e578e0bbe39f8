// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/caminho-app/caminho/cmd/caminho/cli"
	"github.com/caminho-app/caminho/portalapi"
)

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:    "login",
		Summary: "Authenticate and save the session locally",
		Usage:   "caminho login <email>",
		Examples: []cli.Example{
			{Command: "caminho login ana@example.pt"},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: caminho login <email>")
			}
			email := args[0]

			password, err := cli.ReadPassword("password: ")
			if err != nil {
				return err
			}

			logger := cli.NewCommandLogger().With("command", "login")
			client, store, err := cli.NewPortalClient(logger)
			if err != nil {
				return err
			}

			session, err := client.Login(context.Background(), email, password)
			if err != nil {
				return err
			}

			// The token is already on disk via the token store; attach
			// the user record so whoami works offline.
			stored, err := store.Load()
			if err != nil {
				return err
			}
			stored.User = session.User()
			if err := store.Save(stored); err != nil {
				return err
			}

			fmt.Printf("logged in as %s (%s)\n", session.User().Name, session.User().Email)
			return nil
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:    "logout",
		Summary: "Invalidate the session and remove it locally",
		Run: func(args []string) error {
			logger := cli.NewCommandLogger().With("command", "logout")
			session, err := cli.RequireSession(context.Background(), logger)
			if err != nil {
				// No usable session: make sure nothing is left behind.
				if clearErr := cli.NewSessionStore().Clear(); clearErr != nil {
					return clearErr
				}
				fmt.Println("logged out")
				return nil
			}
			if err := session.Logout(context.Background()); err != nil {
				// The local session is gone either way; the server-side
				// token will expire on its own.
				logger.Warn("server-side logout failed", "error", err)
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

func registerCommand() *cli.Command {
	var name, phone string
	return &cli.Command{
		Name:    "register",
		Summary: "Create a new client account",
		Usage:   "caminho register <email> --name <name> [--phone <phone>]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("register", pflag.ContinueOnError)
			flags.StringVar(&name, "name", "", "full name (required)")
			flags.StringVar(&phone, "phone", "", "phone number")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: caminho register <email> --name <name>")
			}
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			password, err := cli.ReadPassword("password: ")
			if err != nil {
				return err
			}
			confirmation, err := cli.ReadPassword("confirm password: ")
			if err != nil {
				return err
			}

			logger := cli.NewCommandLogger().With("command", "register")
			client, store, err := cli.NewPortalClient(logger)
			if err != nil {
				return err
			}

			session, err := client.Register(context.Background(), portalapi.RegisterRequest{
				Name:                 name,
				Email:                args[0],
				Phone:                phone,
				Password:             password,
				PasswordConfirmation: confirmation,
			})
			if err != nil {
				if fields := portalapi.FieldErrors(err); fields != nil {
					for field, problems := range fields {
						for _, problem := range problems {
							fmt.Printf("%s: %s\n", field, problem)
						}
					}
					return &cli.ExitError{Code: 1}
				}
				return err
			}

			stored, err := store.Load()
			if err != nil {
				return err
			}
			stored.User = session.User()
			if err := store.Save(stored); err != nil {
				return err
			}

			fmt.Printf("account created for %s — you are now logged in\n", session.User().Email)
			return nil
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:    "whoami",
		Summary: "Show the logged-in account",
		Run: func(args []string) error {
			stored, err := cli.NewSessionStore().Load()
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s), role %s\n", stored.User.Name, stored.User.Email, stored.User.Role)
			return nil
		},
	}
}

func resetPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:    "reset-password",
		Summary: "Ask the back office to reset your password",
		Usage:   "caminho reset-password <email>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: caminho reset-password <email>")
			}
			logger := cli.NewCommandLogger().With("command", "reset-password")
			client, _, err := cli.NewPortalClient(logger)
			if err != nil {
				return err
			}
			if err := client.RequestPasswordReset(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Println("reset request sent — the back office will contact you by email")
			return nil
		},
	}
}
