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
)

type cmdCheck struct{}

func (*cmdCheck) help() *commandHelp {
	return &commandHelp{
		usage:   "check [SCHEMA...]",
		summary: "Check schemas for errors without writing output",
	}
}

func (*cmdCheck) flags(*pflag.FlagSet) {}

func (cmd *cmdCheck) run(_ context.Context, g *globals, argv []string) int {
	paths, err := g.targets(argv)
	if err != nil {
		g.fail(err)
		return 1
	}
	rc := 0
	for _, path := range paths {
		if g.compileFile(path) == nil {
			rc = 1
		}
	}
	return rc
}
