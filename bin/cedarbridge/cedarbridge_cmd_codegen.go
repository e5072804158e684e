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
	"maps"

	"github.com/spf13/pflag"

	"github.com/io7m-com/cedarbridge-sub001/plugin"
)

type cmdCodegen struct {
	outDir     string
	pluginName string
	pluginFile string
	pluginPath string
	options    map[string]string
}

func (*cmdCodegen) help() *commandHelp {
	return &commandHelp{
		usage:   "codegen SCHEMA --plugin NAME --output DIR",
		summary: "Generate code for a schema with a WebAssembly plugin",
		minArgs: 1,
	}
}

func (cmd *cmdCodegen) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.outDir, "output", "o", "", "output directory")
	flags.StringVar(&cmd.pluginName, "plugin", "", "code generator name")
	flags.StringVar(&cmd.pluginFile, "plugin-file", "", "code generator module (overrides lookup by name)")
	flags.StringVar(&cmd.pluginPath, "plugin-path", "",
		"directories searched for cedarbridge-codegen-NAME.wasm (default: $"+plugin.PathEnv+")")
	flags.StringToStringVar(&cmd.options, "option", nil, "code generator option KEY=VALUE (repeatable)")
}

func (cmd *cmdCodegen) run(ctx context.Context, g *globals, argv []string) int {
	if cmd.outDir == "" {
		g.fail(fmt.Errorf("no output directory specified (set --output)"))
		return 1
	}
	if cmd.pluginName == "" {
		g.fail(fmt.Errorf("no code generator specified (set --plugin)"))
		return 1
	}

	options := make(map[string]string)
	pluginFile := cmd.pluginFile
	if g.project != nil {
		if block, ok := g.project.Plugin(cmd.pluginName); ok {
			maps.Copy(options, block.Options)
			if pluginFile == "" {
				pluginFile = block.Path
			}
		}
	}
	maps.Copy(options, cmd.options)

	pluginFile, err := plugin.Locate(cmd.pluginName, pluginFile, cmd.pluginPath)
	if err != nil {
		g.fail(err)
		return 1
	}

	pkg := g.compileFile(argv[0])
	if pkg == nil {
		return 1
	}
	req, err := plugin.NewRequest(pkg, options)
	if err != nil {
		g.fail(err)
		return 1
	}

	host, err := plugin.NewHost(ctx, plugin.WithLogger(g.log))
	if err != nil {
		g.fail(err)
		return 1
	}
	defer host.Close(ctx)

	gen, err := host.LoadFile(ctx, cmd.pluginName, pluginFile)
	if err != nil {
		g.fail(err)
		return 1
	}
	resp, err := gen.Generate(ctx, req)
	if err != nil {
		g.fail(err)
		return 1
	}
	paths, err := plugin.WriteFiles(cmd.outDir, resp.Files)
	if err != nil {
		g.fail(err)
		return 1
	}
	for _, path := range paths {
		g.log.Info("wrote generated file",
			slog.String("plugin", gen.Name()),
			slog.String("path", path))
	}
	return 0
}
