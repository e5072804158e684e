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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/io7m-com/cedarbridge-sub001/compiler"
	"github.com/io7m-com/cedarbridge-sub001/internal/ctxlog"
	"github.com/io7m-com/cedarbridge-sub001/internal/report"
	"github.com/io7m-com/cedarbridge-sub001/loader"
	"github.com/io7m-com/cedarbridge-sub001/model"
	"github.com/io7m-com/cedarbridge-sub001/project"
	"github.com/io7m-com/cedarbridge-sub001/syntax"
)

const projectFileName = project.FileName

type globals struct {
	projectPath  string
	searchPath   []string
	compiledPath []string
	logLevel     string
	logFormat    string

	stdout io.Writer
	stderr io.Writer

	log     *slog.Logger
	project *project.Project
}

func (g *globals) setup() error {
	g.log = ctxlog.New(g.logLevel, g.logFormat, g.stderr)

	path := g.projectPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		found, err := findProject(wd)
		if err != nil {
			return err
		}
		path = found
	}
	if path == "" {
		return nil
	}

	p, err := project.Load(path)
	if err != nil {
		var loadErr *project.LoadError
		if errors.As(err, &loadErr) {
			report.NewWithFiles(g.stderr, loadErr.Files).Write(loadErr.Diags)
			return fmt.Errorf("invalid project file %s", path)
		}
		return err
	}
	g.log.Debug("loaded project", slog.String("path", path))
	g.project = p
	return nil
}

// findProject returns the nearest project file in dir or one of its
// parents, or "" if there is none.
func findProject(dir string) (string, error) {
	for {
		candidate := filepath.Join(dir, projectFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// newLoader resolves imports through the command-line paths first, then
// the project's.
func (g *globals) newLoader() *loader.Loader {
	opts := []loader.Option{loader.WithLogger(g.log)}
	for _, dir := range g.searchPath {
		opts = append(opts, loader.WithSearchPath(os.DirFS(dir)))
	}
	for _, dir := range g.compiledPath {
		opts = append(opts, loader.WithCompiledPath(os.DirFS(dir)))
	}
	if g.project != nil {
		opts = append(opts, g.project.LoaderOptions()...)
	}
	return loader.New(opts...)
}

// compileFile compiles one schema file, writing diagnostics to stderr.
// It returns nil if the file could not be compiled.
func (g *globals) compileFile(path string) *model.Package {
	r := report.New(g.stderr)
	src, err := os.ReadFile(path)
	if err != nil {
		r.Plain("Cannot read schema", err)
		return nil
	}

	schema, err := syntax.Parse(src, syntax.FileName(path))
	if err != nil {
		var synErr *syntax.Error
		if errors.As(err, &synErr) {
			r.Syntax(syntax.NewFile(path, src), synErr)
		} else {
			r.Plain("Cannot parse schema", err)
		}
		return nil
	}

	l := g.newLoader()
	result := compiler.Compile(schema,
		compiler.WithLoader(l),
		compiler.WithLogger(g.log.With(slog.String("file", path))))
	r.Imports(l.Failures())
	r.Result(schema.File(), result)
	if result.Err() != nil {
		return nil
	}
	return result.Package()
}

// targets returns the schema files named on the command line, or every
// package source of the project when there are none.
func (g *globals) targets(argv []string) ([]string, error) {
	if len(argv) > 0 {
		return argv, nil
	}
	if g.project == nil || len(g.project.Packages) == 0 {
		return nil, fmt.Errorf("no schema files given and no project packages configured")
	}
	var out []string
	for _, pkg := range g.project.Packages {
		out = append(out, pkg.Source)
	}
	return out, nil
}

// projectPackage returns the project's package block for a compiled
// package.
func (g *globals) projectPackage(pkg *model.Package) (project.Package, bool) {
	if g.project == nil {
		return project.Package{}, false
	}
	return g.project.Package(pkg.Name())
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (g *globals) fail(err error) {
	fmt.Fprintln(g.stderr, err)
}
