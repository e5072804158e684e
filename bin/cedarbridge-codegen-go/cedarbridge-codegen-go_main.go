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

//go:build !tinygo

// Command cedarbridge-codegen-go generates Go types for Cedarbridge
// schemas. Built with TinyGo for WASI it is a code generator plugin for
// "cedarbridge codegen --plugin go". The native build compiles one
// schema and writes the generated code to stdout.
package main

//go:generate go run ../../internal/build -chdir ../.. -o cedarbridge-codegen-go.wasm ./bin/cedarbridge-codegen-go

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/io7m-com/cedarbridge-sub001/compiler"
	"github.com/io7m-com/cedarbridge-sub001/loader"
	"github.com/io7m-com/cedarbridge-sub001/plugin"
	"github.com/io7m-com/cedarbridge-sub001/syntax"
)

func main() {
	args := os.Args[1:]
	if len(args) < 1 {
		log.Fatalf("usage: %s SCHEMA [KEY=VALUE...]", os.Args[0])
	}
	schemaPath := args[0]

	options := make(map[string]string)
	for _, arg := range args[1:] {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			log.Fatalf("invalid option %q, expected KEY=VALUE", arg)
		}
		options[key] = value
	}

	src, err := os.ReadFile(schemaPath)
	if err != nil {
		log.Fatalf("ReadFile(%q): %v", schemaPath, err)
	}
	parsed, err := syntax.Parse(src, syntax.FileName(schemaPath))
	if err != nil {
		log.Fatalf("Parse(%q): %v", schemaPath, err)
	}

	l := loader.New(loader.WithSearchPath(os.DirFS(filepath.Dir(schemaPath))))
	compiled := compiler.Compile(parsed, compiler.WithLoader(l))
	for _, warning := range compiled.Warnings {
		log.Printf("[WARN ] %s: %v", warning.Pos(), warning)
	}
	if len(compiled.Errors) > 0 {
		for _, err := range compiled.Errors {
			log.Printf("[ERROR] %s: %v", err.Pos(), err)
		}
		os.Exit(1)
	}

	req, err := plugin.NewRequest(compiled.Package(), options)
	if err != nil {
		log.Fatal(err)
	}
	files, err := generate(req)
	if err != nil {
		log.Fatal(err)
	}
	for _, file := range files {
		if _, err := os.Stdout.Write(file.Content); err != nil {
			log.Fatal(err)
		}
	}
}
