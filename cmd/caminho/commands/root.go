// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete caminho CLI command tree.
package commands

import (
	"fmt"

	"github.com/caminho-app/caminho/cmd/caminho/cli"
	"github.com/caminho-app/caminho/lib/version"
)

// Root builds and returns the complete caminho command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "caminho",
		Description: `Caminho: client portal for immigration assistance.

Track your application, exchange messages with the back office,
manage documents, and work through the relocation lessons.`,
		Subcommands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			registerCommand(),
			whoamiCommand(),
			resetPasswordCommand(),
			dashboardCommand(),
			applicationCommand(),
			documentsCommand(),
			messagesCommand(),
			lessonsCommand(),
			contactCommand(),
			payCommand(),
			adminCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("caminho %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Sign in (saves the session locally)",
				Command:     "caminho login ana@example.pt",
			},
			{
				Description: "See your application progress",
				Command:     "caminho dashboard",
			},
			{
				Description: "Open the chat with the back office",
				Command:     "caminho messages",
			},
			{
				Description: "Upload a document",
				Command:     "caminho documents upload passport.pdf --type passport",
			},
			{
				Description: "Read a lesson in the terminal",
				Command:     "caminho lessons show 3",
			},
		},
	}
}
