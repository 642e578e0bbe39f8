// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/caminho-app/caminho/cmd/caminho/cli"
	"github.com/caminho-app/caminho/inbox"
	"github.com/caminho-app/caminho/lib/portalui"
	"github.com/caminho-app/caminho/portalapi"
)

func messagesCommand() *cli.Command {
	command := &cli.Command{
		Name:    "messages",
		Summary: "Chat with the back office",
		Description: `Without a subcommand, opens the interactive chat view. It polls
the portal while open and re-renders only when the thread actually
changes. Admin accounts land on the conversation list first.

The subcommands offer the same operations non-interactively for
scripts and quick one-offs.`,
		Run: runChat,
		Subcommands: []*cli.Command{
			messagesListCommand(),
			messagesSendCommand(),
			messagesEditCommand(),
			messagesDeleteCommand(),
			messagesUnreadCommand(),
		},
	}
	return command
}

func runChat(args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := cli.NewCommandLogger().With("command", "messages")
	session, err := cli.RequireSession(ctx, logger)
	if err != nil {
		return err
	}

	config, err := cli.LoadConfig()
	if err != nil {
		return err
	}
	activeInterval, idleInterval, err := config.PollIntervals()
	if err != nil {
		return err
	}

	store := inbox.NewStore()
	synchronizer, err := inbox.NewSynchronizer(inbox.SynchronizerConfig{
		Service:        session,
		Store:          store,
		Admin:          session.IsAdmin(),
		ActiveInterval: activeInterval,
		IdleInterval:   idleInterval,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	go synchronizer.Run(ctx)

	model := portalui.NewChat(portalui.ChatConfig{
		Synchronizer: synchronizer,
		Store:        store,
		SelfID:       session.User().ID,
		Admin:        session.IsAdmin(),
		Context:      ctx,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running chat view: %w", err)
	}
	return nil
}

func messagesListCommand() *cli.Command {
	var userID int64
	return &cli.Command{
		Name:    "list",
		Summary: "Print the message thread",
		Usage:   "caminho messages list [--user <id>]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flags.Int64Var(&userID, "user", 0, "conversation to read (admin only)")
			return flags
		},
		Run: func(args []string) error {
			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "messages list")
			session, err := cli.RequireSession(ctx, logger)
			if err != nil {
				return err
			}

			var messages []portalapi.Message
			if userID != 0 {
				if !session.IsAdmin() {
					return fmt.Errorf("--user requires an admin account")
				}
				messages, err = session.UserMessages(ctx, userID)
			} else {
				messages, err = session.Messages(ctx)
			}
			if err != nil {
				return err
			}

			if len(messages) == 0 {
				fmt.Println("no messages")
				return nil
			}
			selfID := session.User().ID
			for _, message := range messages {
				sender := "support"
				if message.SenderID == selfID {
					sender = "you"
				}
				edited := ""
				if message.Edited() {
					edited = " (edited)"
				}
				fmt.Printf("[%d] %s %s%s: %s\n",
					message.ID, message.CreatedAt.Format("Jan 2 15:04"),
					sender, edited, message.Body)
			}
			return nil
		},
	}
}

func messagesSendCommand() *cli.Command {
	var recipientID int64
	return &cli.Command{
		Name:    "send",
		Summary: "Send a message",
		Usage:   "caminho messages send [--to <user-id>] <text>",
		Examples: []cli.Example{
			{Command: "caminho messages send \"Got my NIF appointment for Tuesday\""},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("send", pflag.ContinueOnError)
			flags.Int64Var(&recipientID, "to", 0, "recipient user id (admin only)")
			return flags
		},
		Run: func(args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				// Blank input is dropped without touching the network.
				return nil
			}

			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "messages send")
			session, err := cli.RequireSession(ctx, logger)
			if err != nil {
				return err
			}

			var recipient *int64
			if recipientID != 0 {
				if !session.IsAdmin() {
					return fmt.Errorf("--to requires an admin account")
				}
				recipient = &recipientID
			} else if session.IsAdmin() {
				return fmt.Errorf("admin accounts must name a recipient with --to")
			}

			message, err := session.SendMessage(ctx, text, recipient)
			if err != nil {
				return err
			}
			fmt.Printf("sent message %d\n", message.ID)
			return nil
		},
	}
}

func messagesEditCommand() *cli.Command {
	return &cli.Command{
		Name:    "edit",
		Summary: "Edit a message you sent",
		Usage:   "caminho messages edit <id> <text>",
		Run: func(args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("usage: caminho messages edit <id> <text>")
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid message id %q", args[0])
			}
			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if text == "" {
				return fmt.Errorf("replacement text must not be empty")
			}

			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "messages edit")
			session, err := cli.RequireSession(ctx, logger)
			if err != nil {
				return err
			}
			if _, err := session.UpdateMessage(ctx, id, text); err != nil {
				return err
			}
			fmt.Printf("updated message %d\n", id)
			return nil
		},
	}
}

func messagesDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a message you sent",
		Usage:   "caminho messages delete <id>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: caminho messages delete <id>")
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid message id %q", args[0])
			}

			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "messages delete")
			session, err := cli.RequireSession(ctx, logger)
			if err != nil {
				return err
			}
			if err := session.DeleteMessage(ctx, id); err != nil {
				return err
			}
			fmt.Printf("deleted message %d\n", id)
			return nil
		},
	}
}

func messagesUnreadCommand() *cli.Command {
	return &cli.Command{
		Name:    "unread",
		Summary: "Print the unread message count",
		Run: func(args []string) error {
			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "messages unread")
			session, err := cli.RequireSession(ctx, logger)
			if err != nil {
				return err
			}
			count, err := session.UnreadCount(ctx)
			if err != nil {
				return err
			}
			fmt.Println(count)
			return nil
		},
	}
}
