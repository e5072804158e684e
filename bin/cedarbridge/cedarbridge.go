// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type command interface {
	help() *commandHelp
	flags(flags *pflag.FlagSet)
	run(ctx context.Context, g *globals, argv []string) int
}

type commandHelp struct {
	usage   string
	summary string
	minArgs int
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	g := &globals{
		stdout: stdout,
		stderr: stderr,
	}
	exitCode := 0

	rootCmd := &cobra.Command{
		Use:           "cedarbridge [options] COMMAND",
		Short:         "Compile Cedarbridge schemas",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		fmt.Fprint(stderr, cmd.UsageString())
		exitCode = 1
		return nil
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&g.projectPath, "project", "",
		"project file (default: nearest "+projectFileName+" above the working directory)")
	persistent.StringArrayVarP(&g.searchPath, "search-path", "I", nil,
		"directory holding imported schema sources (repeatable)")
	persistent.StringArrayVar(&g.compiledPath, "compiled-path", nil,
		"directory holding compiled packages (repeatable)")
	persistent.StringVar(&g.logLevel, "log-level", "warn",
		"log level: debug, info, warn, or error")
	persistent.StringVar(&g.logFormat, "log-format", "text",
		"log format: text or json")

	commands := []command{
		&cmdCheck{},
		&cmdCompile{},
		&cmdDump{},
		&cmdCodegen{},
	}
	for _, cmd := range commands {
		help := cmd.help()
		cobraCmd := &cobra.Command{
			Use:   help.usage,
			Short: help.summary,
			Args:  cobra.MinimumNArgs(help.minArgs),
			RunE: func(_ *cobra.Command, argv []string) error {
				if err := g.setup(); err != nil {
					fmt.Fprintln(stderr, err)
					exitCode = 1
					return nil
				}
				exitCode = cmd.run(ctx, g, argv)
				return nil
			},
		}
		cmd.flags(cobraCmd.Flags())
		rootCmd.AddCommand(cobraCmd)
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return exitCode
}
