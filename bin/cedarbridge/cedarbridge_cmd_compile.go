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
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/io7m-com/cedarbridge-sub001/encoding/cbpack"
	"github.com/io7m-com/cedarbridge-sub001/loader"
	"github.com/io7m-com/cedarbridge-sub001/model"
)

type cmdCompile struct {
	outPath string
}

func (*cmdCompile) help() *commandHelp {
	return &commandHelp{
		usage:   "compile [SCHEMA...]",
		summary: "Compile schemas into package files",
	}
}

func (cmd *cmdCompile) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.outPath, "output", "o", "",
		"output file (only with a single schema; default: the project's output, or PACKAGE"+loader.CompiledSuffix+")")
}

func (cmd *cmdCompile) run(_ context.Context, g *globals, argv []string) int {
	paths, err := g.targets(argv)
	if err != nil {
		g.fail(err)
		return 1
	}
	if cmd.outPath != "" && len(paths) > 1 {
		g.fail(fmt.Errorf("--output cannot be used with more than one schema"))
		return 1
	}

	rc := 0
	for _, path := range paths {
		pkg := g.compileFile(path)
		if pkg == nil {
			rc = 1
			continue
		}
		outPath := cmd.outputFor(g, pkg)
		data, err := cbpack.Encode(pkg)
		if err != nil {
			g.fail(err)
			return 1
		}
		if err := writeFile(outPath, data); err != nil {
			g.fail(err)
			return 1
		}
		g.log.Info("wrote compiled package",
			slog.String("package", pkg.Name()),
			slog.String("path", outPath))
	}
	return rc
}

func (cmd *cmdCompile) outputFor(g *globals, pkg *model.Package) string {
	if cmd.outPath != "" {
		return cmd.outPath
	}
	if block, ok := g.projectPackage(pkg); ok && block.Output != "" {
		return block.Output
	}
	return pkg.Name() + loader.CompiledSuffix
}
