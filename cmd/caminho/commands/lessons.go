// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/caminho-app/caminho/cmd/caminho/cli"
	"github.com/caminho-app/caminho/lib/portalui"
)

func lessonsCommand() *cli.Command {
	return &cli.Command{
		Name:    "lessons",
		Summary: "Work through the relocation lessons",
		Subcommands: []*cli.Command{
			lessonsListCommand(),
			lessonsShowCommand(),
			lessonsProgressCommand(),
		},
	}
}

func lessonsListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Summary: "List lessons and your progress",
		Run: func(args []string) error {
			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "lessons list")
			session, err := cli.RequireSession(ctx, logger)
			if err != nil {
				return err
			}

			lessons, err := session.Lessons(ctx)
			if err != nil {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tTITLE\tPROGRESS")
			for _, lesson := range lessons {
				fmt.Fprintf(writer, "%d\t%s\t%d%%\n", lesson.ID, lesson.Title, lesson.Progress)
			}
			return writer.Flush()
		},
	}
}

func lessonsShowCommand() *cli.Command {
	return &cli.Command{
		Name:    "show",
		Summary: "Render a lesson in the terminal",
		Usage:   "caminho lessons show <id>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: caminho lessons show <id>")
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid lesson id %q", args[0])
			}

			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "lessons show")
			session, err := cli.RequireSession(ctx, logger)
			if err != nil {
				return err
			}

			lesson, err := session.Lesson(ctx, id)
			if err != nil {
				return err
			}

			width := 80
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				width = w
			}

			fmt.Println(portalui.RenderMarkdown("# "+lesson.Title+"\n\n"+lesson.Content,
				portalui.DefaultTheme, width))
			return nil
		},
	}
}

func lessonsProgressCommand() *cli.Command {
	return &cli.Command{
		Name:    "progress",
		Summary: "Record your progress through a lesson",
		Usage:   "caminho lessons progress <id> <percent>",
		Examples: []cli.Example{
			{Command: "caminho lessons progress 3 100"},
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: caminho lessons progress <id> <percent>")
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid lesson id %q", args[0])
			}
			percent, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid percentage %q", args[1])
			}

			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "lessons progress")
			session, err := cli.RequireSession(ctx, logger)
			if err != nil {
				return err
			}
			if err := session.UpdateLessonProgress(ctx, id, percent); err != nil {
				return err
			}
			fmt.Printf("lesson %d progress set to %d%%\n", id, percent)
			return nil
		},
	}
}
