// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/caminho-app/caminho/cmd/caminho/cli"
)

func documentsCommand() *cli.Command {
	return &cli.Command{
		Name:    "documents",
		Summary: "Manage your uploaded documents",
		Subcommands: []*cli.Command{
			documentsListCommand(),
			documentsUploadCommand(),
			documentsDownloadCommand(),
			documentsDeleteCommand(),
		},
	}
}

func documentsListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Summary: "List your documents",
		Run: func(args []string) error {
			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "documents list")
			session, err := cli.RequireSession(ctx, logger)
			if err != nil {
				return err
			}

			documents, err := session.Documents(ctx)
			if err != nil {
				return err
			}
			if len(documents) == 0 {
				fmt.Println("no documents uploaded")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tNAME\tTYPE\tSIZE\tUPLOADED")
			for _, document := range documents {
				fmt.Fprintf(writer, "%d\t%s\t%s\t%d\t%s\n",
					document.ID, document.Name, document.Type, document.Size,
					document.UploadedAt.Format("2006-01-02"))
			}
			return writer.Flush()
		},
	}
}

func documentsUploadCommand() *cli.Command {
	var name, docType string
	return &cli.Command{
		Name:    "upload",
		Summary: "Upload a document",
		Usage:   "caminho documents upload <file> [--name <name>] [--type <type>]",
		Examples: []cli.Example{
			{Command: "caminho documents upload passport.pdf --type passport"},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("upload", pflag.ContinueOnError)
			flags.StringVar(&name, "name", "", "display name (defaults to the file name)")
			flags.StringVar(&docType, "type", "other", "document type (passport, visa, contract, ...)")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: caminho documents upload <file>")
			}
			path := args[0]
			if name == "" {
				name = filepath.Base(path)
			}

			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening %s: %w", path, err)
			}
			defer file.Close()

			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "documents upload")
			session, err := cli.RequireSession(ctx, logger)
			if err != nil {
				return err
			}

			document, err := session.UploadDocument(ctx, name, docType, file)
			if err != nil {
				return err
			}
			fmt.Printf("uploaded %s as document %d\n", document.Name, document.ID)
			return nil
		},
	}
}

func documentsDownloadCommand() *cli.Command {
	var outputPath string
	return &cli.Command{
		Name:    "download",
		Summary: "Download a document",
		Usage:   "caminho documents download <id> [--out <path>]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("download", pflag.ContinueOnError)
			flags.StringVar(&outputPath, "out", "", "output path (defaults to the document name)")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: caminho documents download <id>")
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid document id %q", args[0])
			}

			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "documents download")
			session, err := cli.RequireSession(ctx, logger)
			if err != nil {
				return err
			}

			if outputPath == "" {
				documents, err := session.Documents(ctx)
				if err != nil {
					return err
				}
				for _, document := range documents {
					if document.ID == id {
						outputPath = document.Name
						break
					}
				}
				if outputPath == "" {
					return fmt.Errorf("no document with id %d", id)
				}
			}

			output, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outputPath, err)
			}
			defer output.Close()

			written, err := session.DownloadDocument(ctx, id, output)
			if err != nil {
				os.Remove(outputPath)
				return err
			}
			fmt.Printf("wrote %d bytes to %s\n", written, outputPath)
			return nil
		},
	}
}

func documentsDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a document",
		Usage:   "caminho documents delete <id>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: caminho documents delete <id>")
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid document id %q", args[0])
			}

			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "documents delete")
			session, err := cli.RequireSession(ctx, logger)
			if err != nil {
				return err
			}
			if err := session.DeleteDocument(ctx, id); err != nil {
				return err
			}
			fmt.Printf("deleted document %d\n", id)
			return nil
		},
	}
}
