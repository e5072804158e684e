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

// Package loader resolves imported package names to compiled packages.
//
// A Loader consults, in order: packages already resolved during its
// lifetime, the embedded core package, packages added with WithPackages,
// compiled package files (".cbpack") on the compiled path, and schema
// sources (".cbs") on the search path. Sources are compiled on demand,
// depth-first, with the Loader itself resolving their imports.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/io7m-com/cedarbridge-sub001/compiler"
	"github.com/io7m-com/cedarbridge-sub001/encoding/cbpack"
	"github.com/io7m-com/cedarbridge-sub001/internal/ctxlog"
	"github.com/io7m-com/cedarbridge-sub001/model"
	"github.com/io7m-com/cedarbridge-sub001/syntax"
)

const (
	SourceSuffix   = ".cbs"
	CompiledSuffix = ".cbpack"
)

var (
	ErrPackageNotFound = compiler.ErrPackageNotFound
	ErrImportCycle     = errors.New("import cycle")
)

// CycleError reports an import cycle. Chain starts and ends with the
// same package name.
type CycleError struct {
	Chain []string
}

func (err *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrImportCycle, strings.Join(err.Chain, " -> "))
}

func (err *CycleError) Unwrap() error {
	return ErrImportCycle
}

// SourceError reports a schema source on the search path that failed to
// parse or compile. Exactly one of Syntax and Result.Errors is set.
type SourceError struct {
	Package string
	File    *syntax.File
	Syntax  *syntax.Error
	Result  compiler.CompileResult
}

func (err *SourceError) Error() string {
	if err.Syntax != nil {
		return fmt.Sprintf("%s: %s", err.File.Name(), err.Syntax)
	}
	return fmt.Sprintf("%s: %d error(s) compiling package %q",
		err.File.Name(), len(err.Result.Errors), err.Package)
}

type Option interface {
	apply(l *Loader)
}

type optionFunc func(l *Loader)

func (f optionFunc) apply(l *Loader) {
	f(l)
}

// WithSearchPath appends schema source roots.
func WithSearchPath(roots ...fs.FS) Option {
	return optionFunc(func(l *Loader) {
		l.sources = append(l.sources, roots...)
	})
}

// WithCompiledPath appends roots holding compiled package files.
func WithCompiledPath(roots ...fs.FS) Option {
	return optionFunc(func(l *Loader) {
		l.compiled = append(l.compiled, roots...)
	})
}

// WithPackages makes already-compiled packages available by name.
func WithPackages(packages ...*model.Package) Option {
	return optionFunc(func(l *Loader) {
		for _, pkg := range packages {
			l.resolved[pkg.Name()] = pkg
		}
	})
}

// WithoutCore hides the embedded core package.
func WithoutCore() Option {
	return optionFunc(func(l *Loader) {
		l.core = false
	})
}

func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(l *Loader) {
		l.log = logger
	})
}

// Loader implements compiler.Loader. It is not safe for concurrent use.
type Loader struct {
	log      *slog.Logger
	core     bool
	sources  []fs.FS
	compiled []fs.FS

	resolved map[string]*model.Package
	failed   map[string]error
	loading  []string
	failures []*SourceError
}

var _ compiler.Loader = (*Loader)(nil)

func New(opts ...Option) *Loader {
	l := &Loader{
		log:      ctxlog.Discard(),
		core:     true,
		resolved: make(map[string]*model.Package),
		failed:   make(map[string]error),
	}
	for _, opt := range opts {
		opt.apply(l)
	}
	return l
}

// Failures returns the source errors of every imported package that
// failed to compile, in the order they were encountered.
func (l *Loader) Failures() []*SourceError {
	return l.failures
}

func (l *Loader) Resolve(name string) (*model.Package, error) {
	if pkg, ok := l.resolved[name]; ok {
		return pkg, nil
	}
	if err, ok := l.failed[name]; ok {
		return nil, err
	}
	for ii, loading := range l.loading {
		if loading == name {
			chain := append(l.loading[ii:len(l.loading):len(l.loading)], name)
			return nil, &CycleError{Chain: chain}
		}
	}

	l.loading = append(l.loading, name)
	defer func() {
		l.loading = l.loading[:len(l.loading)-1]
	}()

	pkg, err := l.load(name)
	if err == nil && pkg.Name() != name {
		err = fmt.Errorf("loader: requested package %q, found package %q", name, pkg.Name())
	}
	if err != nil {
		l.failed[name] = err
		return nil, err
	}
	l.resolved[name] = pkg
	return pkg, nil
}

func (l *Loader) load(name string) (*model.Package, error) {
	if l.core && name == CoreName {
		return Core(), nil
	}
	for _, root := range l.compiled {
		data, err := fs.ReadFile(root, name+CompiledSuffix)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loader: reading compiled package %q: %w", name, err)
		}
		l.log.Debug("loading compiled package", slog.String("import", name))
		pkg, err := cbpack.Decode(data, l)
		if err != nil {
			return nil, fmt.Errorf("loader: decoding compiled package %q: %w", name, err)
		}
		return pkg, nil
	}
	for _, root := range l.sources {
		src, err := fs.ReadFile(root, name+SourceSuffix)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loader: reading source of package %q: %w", name, err)
		}
		l.log.Debug("compiling imported package", slog.String("import", name))
		return l.compileSource(name, src)
	}
	return nil, fmt.Errorf("%w: %q", ErrPackageNotFound, name)
}

func (l *Loader) compileSource(name string, src []byte) (*model.Package, error) {
	fileName := name + SourceSuffix
	schema, err := syntax.Parse(src, syntax.FileName(fileName))
	if err != nil {
		srcErr := &SourceError{Package: name, File: syntax.NewFile(fileName, src)}
		if !errors.As(err, &srcErr.Syntax) {
			return nil, fmt.Errorf("loader: parsing package %q: %w", name, err)
		}
		l.failures = append(l.failures, srcErr)
		return nil, srcErr
	}
	result := compiler.Compile(schema,
		compiler.WithLoader(l),
		compiler.WithLogger(l.log))
	if result.Err() != nil {
		srcErr := &SourceError{Package: name, File: schema.File(), Result: result}
		l.failures = append(l.failures, srcErr)
		return nil, srcErr
	}
	return result.Package(), nil
}
