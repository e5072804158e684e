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

	"github.com/spf13/pflag"

	"github.com/io7m-com/cedarbridge-sub001/encoding/cbtext"
)

type cmdDump struct {
	outPath string
}

func (*cmdDump) help() *commandHelp {
	return &commandHelp{
		usage:   "dump SCHEMA",
		summary: "Print the compiled form of a schema as YAML",
		minArgs: 1,
	}
}

func (cmd *cmdDump) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.outPath, "output", "o", "", "output file (default: standard output)")
}

func (cmd *cmdDump) run(_ context.Context, g *globals, argv []string) int {
	pkg := g.compileFile(argv[0])
	if pkg == nil {
		return 1
	}
	output := cbtext.Encode(pkg)
	if cmd.outPath == "" {
		if _, err := g.stdout.Write([]byte(output)); err != nil {
			g.fail(err)
			return 1
		}
		return 0
	}
	if err := writeFile(cmd.outPath, []byte(output)); err != nil {
		g.fail(err)
		return 1
	}
	return 0
}
