// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "caminho",
		Subcommands: []*Command{
			{
				Name: "dashboard",
				Run: func(args []string) error {
					called = "dashboard"
					return nil
				},
			},
			{
				Name: "lessons",
				Run: func(args []string) error {
					called = "lessons"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"lessons"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "lessons" {
		t.Errorf("dispatched to %q, want %q", called, "lessons")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "caminho",
		Subcommands: []*Command{
			{
				Name: "documents",
				Subcommands: []*Command{
					{
						Name: "upload",
						Run: func(args []string) error {
							called = "documents upload"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute([]string{"documents", "upload", "passport.pdf"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "documents upload" {
		t.Errorf("dispatched to %q, want %q", called, "documents upload")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "passport.pdf" {
		t.Errorf("args = %v, want [passport.pdf]", receivedArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var docType string
	var file string

	command := &Command{
		Name: "upload",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("upload", pflag.ContinueOnError)
			flagSet.StringVar(&docType, "type", "other", "document type")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				file = args[0]
			}
			return nil
		},
	}

	if err := command.Execute([]string{"--type", "passport", "passport.pdf"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if docType != "passport" {
		t.Errorf("docType = %q, want %q", docType, "passport")
	}
	if file != "passport.pdf" {
		t.Errorf("file = %q, want %q", file, "passport.pdf")
	}
}

func TestCommand_Execute_UnknownSubcommand(t *testing.T) {
	root := &Command{
		Name: "caminho",
		Subcommands: []*Command{
			{Name: "dashboard", Run: func(args []string) error { return nil }},
		},
	}

	err := root.Execute([]string{"dashbord"})
	if err == nil {
		t.Fatal("expected error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "dashbord") {
		t.Errorf("error should name the unknown command, got: %v", err)
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error should point at --help, got: %v", err)
	}
}

func TestCommand_Execute_RunWithSubcommands(t *testing.T) {
	// "caminho messages" opens the chat; "caminho messages list" is a
	// subcommand. Both live on one Command.
	var ran string

	command := &Command{
		Name: "messages",
		Run: func(args []string) error {
			ran = "chat"
			return nil
		},
		Subcommands: []*Command{
			{
				Name: "list",
				Run: func(args []string) error {
					ran = "list"
					return nil
				},
			},
		},
	}

	if err := command.Execute(nil); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if ran != "chat" {
		t.Errorf("bare invocation ran %q, want chat", ran)
	}

	if err := command.Execute([]string{"list"}); err != nil {
		t.Fatalf("Execute(list) error: %v", err)
	}
	if ran != "list" {
		t.Errorf("subcommand invocation ran %q, want list", ran)
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	root := &Command{
		Name:        "caminho",
		Description: "Caminho: client portal for immigration assistance.",
		Subcommands: []*Command{
			{Name: "dashboard", Summary: "Show your application progress at a glance"},
			{Name: "messages", Summary: "Chat with the back office"},
		},
		Examples: []Example{
			{Description: "Sign in", Command: "caminho login ana@example.pt"},
		},
	}

	var buffer bytes.Buffer
	root.PrintHelp(&buffer)
	help := buffer.String()

	for _, want := range []string{
		"Caminho: client portal",
		"dashboard",
		"Show your application progress",
		"caminho login ana@example.pt",
		"Run 'caminho <command> --help'",
	} {
		if !strings.Contains(help, want) {
			t.Errorf("help output missing %q:\n%s", want, help)
		}
	}
}
