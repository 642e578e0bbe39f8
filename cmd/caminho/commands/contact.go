// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/caminho-app/caminho/cmd/caminho/cli"
	"github.com/caminho-app/caminho/portalapi"
)

func contactCommand() *cli.Command {
	var name, email string
	return &cli.Command{
		Name:    "contact",
		Summary: "Send a message through the public contact form",
		Usage:   "caminho contact --email <email> [--name <name>] <message>",
		Description: `Submits the public contact form. No account is needed; this is
how prospective clients reach the back office before registering.`,
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("contact", pflag.ContinueOnError)
			flags.StringVar(&name, "name", "", "your name")
			flags.StringVar(&email, "email", "", "reply-to email address (required)")
			return flags
		},
		Run: func(args []string) error {
			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				return fmt.Errorf("usage: caminho contact --email <email> <message>")
			}
			if email == "" {
				return fmt.Errorf("--email is required")
			}

			logger := cli.NewCommandLogger().With("command", "contact")
			client, _, err := cli.NewPortalClient(logger)
			if err != nil {
				return err
			}
			if err := client.SubmitContact(context.Background(), portalapi.ContactRequest{
				Name:    name,
				Email:   email,
				Message: message,
			}); err != nil {
				return err
			}
			fmt.Println("message sent — the back office will reply by email")
			return nil
		},
	}
}
