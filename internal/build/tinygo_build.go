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

// Command build compiles a code generator plugin to a WASI reactor
// module with TinyGo.
//
//	go run ./internal/build -o cedarbridge-codegen-go.wasm ./bin/cedarbridge-codegen-go
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

var (
	tinygo  = flag.String("tinygo", "", "tinygo binary (default: tinygo from $PATH)")
	output  = flag.String("o", "", "output .wasm file")
	chdir   = flag.String("chdir", "", "directory to build in")
	wasmOpt = flag.String("wasm-opt", "", "wasm-opt binary passed to tinygo")
)

func main() {
	flag.Parse()
	if *output == "" || flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s -o OUTPUT.wasm PACKAGE\n", os.Args[0])
		os.Exit(2)
	}
	pwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	tinygoBin := *tinygo
	if tinygoBin == "" {
		if tinygoBin, err = exec.LookPath("tinygo"); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	outPath := *output
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(pwd, outPath)
	}
	tinygoArgs := []string{
		"build",
		"-target=wasip1",
		"-buildmode=c-shared",
		"-no-debug",
		"-o=" + outPath,
	}
	tinygoArgs = append(tinygoArgs, flag.Args()...)

	cmd := exec.Command(tinygoBin, tinygoArgs...)
	cmd.Env = os.Environ()
	if *wasmOpt != "" {
		cmd.Env = append(cmd.Env, "WASMOPT="+*wasmOpt)
	}
	cmd.Dir = filepath.Join(pwd, *chdir)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
