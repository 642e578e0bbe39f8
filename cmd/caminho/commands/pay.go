// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/caminho-app/caminho/cmd/caminho/cli"
)

func payCommand() *cli.Command {
	return &cli.Command{
		Name:    "pay",
		Summary: "Start a checkout for a service package",
		Usage:   "caminho pay <package>",
		Description: `Creates a checkout session for the named service package and
prints the payment URL. Open the URL in a browser to complete the
payment; the portal reflects it once the payment provider confirms.`,
		Examples: []cli.Example{
			{Command: "caminho pay full-support"},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: caminho pay <package>")
			}

			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "pay")
			session, err := cli.RequireSession(ctx, logger)
			if err != nil {
				return err
			}

			checkoutURL, err := session.CreateCheckout(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Println(checkoutURL)
			return nil
		},
	}
}
