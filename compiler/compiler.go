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

package compiler

import (
	"fmt"
	"log/slog"

	"github.com/io7m-com/cedarbridge-sub001/internal/ctxlog"
	"github.com/io7m-com/cedarbridge-sub001/model"
	"github.com/io7m-com/cedarbridge-sub001/syntax"
)

// State is the progress of one package compilation.
type State uint8

const (
	StateParsed State = iota
	StateBound
	StateTypeChecked
	StateCompiled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateParsed:
		return "parsed"
	case StateBound:
		return "bound"
	case StateTypeChecked:
		return "type-checked"
	case StateCompiled:
		return "compiled"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

type Phase uint8

const (
	PhaseBinding Phase = iota
	PhaseTypeChecking
)

func (p Phase) String() string {
	switch p {
	case PhaseBinding:
		return "binding"
	case PhaseTypeChecking:
		return "type checking"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// PhaseError reports that a phase produced errors. The errors themselves
// have already been delivered to the sink and are in the CompileResult.
type PhaseError struct {
	Phase Phase
}

func (err *PhaseError) Error() string {
	return fmt.Sprintf("compilation failed during %s", err.Phase)
}

// Sink receives errors as they are discovered.
type Sink interface {
	Report(err *Error)
}

type SinkFunc func(err *Error)

func (fn SinkFunc) Report(err *Error) {
	fn(err)
}

type CompileOption interface {
	apply(*CompileOptions)
}

type compileOption func(*CompileOptions)

func (f compileOption) apply(opts *CompileOptions) { f(opts) }

type CompileOptions struct {
	loader Loader
	sink   Sink
	logger *slog.Logger
}

// WithLoader sets the Loader used to resolve imports. Without one, every
// import fails.
func WithLoader(loader Loader) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.loader = loader
	})
}

func WithSink(sink Sink) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.sink = sink
	})
}

func WithLogger(logger *slog.Logger) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.logger = logger
	})
}

type CompileResult struct {
	pkg      *model.Package
	bindings *Bindings

	State    State
	Errors   []*Error
	Warnings []*Warning
	Failure  *PhaseError
}

// Package returns the compiled package, or nil if compilation failed.
func (r *CompileResult) Package() *model.Package {
	return r.pkg
}

// Bindings returns the binding side table. It is nil if binding was not
// attempted.
func (r *CompileResult) Bindings() *Bindings {
	return r.bindings
}

// Err returns the phase failure, or nil.
func (r *CompileResult) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

func Compile(schema *syntax.Schema, opts ...CompileOption) CompileResult {
	return NewCompileOptions(opts...).Compile(schema)
}

func NewCompileOptions(opts ...CompileOption) *CompileOptions {
	compileOptions := &CompileOptions{
		loader: NewPackageSet(),
		logger: ctxlog.Discard(),
	}
	for _, opt := range opts {
		opt.apply(compileOptions)
	}
	return compileOptions
}

func (opts *CompileOptions) Compile(schema *syntax.Schema) CompileResult {
	c := &compiler{
		opts:     opts,
		schema:   schema,
		pkgName:  schema.Package().Name().Get(),
		bindings: newBindings(schema.NodeCount()),
		state:    StateParsed,
	}
	c.log = opts.logger.With(slog.String("package", c.pkgName))
	return c.run()
}

type compiler struct {
	opts     *CompileOptions
	log      *slog.Logger
	schema   *syntax.Schema
	pkgName  string
	state    State
	errors   []*Error
	warnings []*Warning

	// Binder state
	scopes   []*scope
	bindings *Bindings
	imports  []*importInfo
	loaded   map[string]*model.Package

	// Set by typeCheck()
	shapes  map[syntax.NodeID]*declShape
	members map[syntax.NodeID]*versionMembers

	// Set by buildModel()
	modelTypes  map[syntax.NodeID]model.TypeDecl
	modelParams map[syntax.NodeID]*model.TypeParameter
	modelFields map[syntax.NodeID]*model.Field
	modelCases  map[syntax.NodeID]*model.VariantCase
	modelProtos map[syntax.NodeID]*model.Protocol
}

func (c *compiler) err(err *Error) {
	c.errors = append(c.errors, err)
	if c.opts.sink != nil {
		c.opts.sink.Report(err)
	}
}

func (c *compiler) warn(warning *Warning) {
	c.warnings = append(c.warnings, warning)
}

// advance moves to the next state if the phase that just ran reported no
// errors.
func (c *compiler) advance(phase Phase, next State) bool {
	if len(c.errors) > 0 {
		c.log.Debug("phase failed",
			slog.String("phase", phase.String()),
			slog.Int("errors", len(c.errors)))
		c.state = StateFailed
		return false
	}
	c.log.Debug("phase complete",
		slog.String("phase", phase.String()),
		slog.String("state", next.String()))
	c.state = next
	return true
}

func (c *compiler) failed(phase Phase) CompileResult {
	return CompileResult{
		bindings: c.bindings,
		State:    c.state,
		Errors:   c.errors,
		Warnings: c.warnings,
		Failure:  &PhaseError{Phase: phase},
	}
}

func (c *compiler) run() CompileResult {
	c.bind()
	if !c.advance(PhaseBinding, StateBound) {
		return c.failed(PhaseBinding)
	}

	c.typeCheck()
	if !c.advance(PhaseTypeChecking, StateTypeChecked) {
		return c.failed(PhaseTypeChecking)
	}

	pkg := c.buildModel()
	c.state = StateCompiled
	c.log.Debug("package compiled",
		slog.Int("types", len(pkg.Types())),
		slog.Int("protocols", len(pkg.Protocols())))
	return CompileResult{
		pkg:      pkg,
		bindings: c.bindings,
		State:    c.state,
		Warnings: c.warnings,
	}
}
