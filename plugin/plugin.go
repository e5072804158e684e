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

// Package plugin runs code generators compiled to WebAssembly.
//
// A generator module exports linear memory and two functions:
//
//	cedarbridge_codegen_allocate(len: i32) -> i32
//	cedarbridge_codegen_generate(request: i32, response_ptr: i32) -> i32
//
// The host allocates a buffer for the request, writes it as a 32-bit
// little-endian length followed by a msgpack-encoded Request, and calls
// generate. The generator stores the address of its response buffer,
// laid out the same way and holding a Response, at response_ptr. A
// non-zero return value means the response carries an error.
package plugin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/io7m-com/cedarbridge-sub001/encoding/cbpack"
	"github.com/io7m-com/cedarbridge-sub001/internal/ctxlog"
	"github.com/io7m-com/cedarbridge-sub001/model"
	"github.com/io7m-com/cedarbridge-sub001/plugin/abi"
)

const (
	ExportAllocate = abi.ExportAllocate
	ExportGenerate = abi.ExportGenerate
	ExportMemory   = abi.ExportMemory

	// PathEnv names the environment variable searched by Locate.
	PathEnv = "CEDARBRIDGE_PLUGIN_PATH"

	defaultMemoryLimitPages = 16384
)

var ErrGeneratorFailed = errors.New("code generator failed")

type (
	Request    = abi.Request
	Response   = abi.Response
	OutputFile = abi.OutputFile
)

// NewRequest encodes pkg and its transitive imports.
func NewRequest(pkg *model.Package, options map[string]string) (*Request, error) {
	data, err := cbpack.Encode(pkg)
	if err != nil {
		return nil, fmt.Errorf("plugin: encoding package %q: %w", pkg.Name(), err)
	}
	req := &Request{
		Package:      data,
		Dependencies: [][]byte{},
		Options:      options,
	}
	if req.Options == nil {
		req.Options = map[string]string{}
	}
	for _, dep := range Dependencies(pkg) {
		data, err := cbpack.Encode(dep)
		if err != nil {
			return nil, fmt.Errorf("plugin: encoding package %q: %w", dep.Name(), err)
		}
		req.Dependencies = append(req.Dependencies, data)
	}
	return req, nil
}

// Dependencies returns the packages reachable from pkg through imports,
// excluding pkg itself. Each package appears after all of its imports.
func Dependencies(pkg *model.Package) []*model.Package {
	var out []*model.Package
	seen := map[*model.Package]bool{pkg: true}
	var visit func(p *model.Package)
	visit = func(p *model.Package) {
		for _, imported := range p.Imports() {
			if seen[imported] {
				continue
			}
			seen[imported] = true
			visit(imported)
			out = append(out, imported)
		}
	}
	visit(pkg)
	return out
}

type Option interface {
	apply(h *Host)
}

type optionFunc func(h *Host)

func (f optionFunc) apply(h *Host) {
	f(h)
}

func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(h *Host) {
		h.log = logger
	})
}

// WithMemoryLimitPages bounds the linear memory of each generator, in
// 64 KiB pages.
func WithMemoryLimitPages(pages uint32) Option {
	return optionFunc(func(h *Host) {
		h.memoryLimitPages = pages
	})
}

// Host owns the WebAssembly runtime that generators run in.
type Host struct {
	log              *slog.Logger
	memoryLimitPages uint32
	runtime          wazero.Runtime
}

func NewHost(ctx context.Context, opts ...Option) (*Host, error) {
	h := &Host{
		log:              ctxlog.Discard(),
		memoryLimitPages: defaultMemoryLimitPages,
	}
	for _, opt := range opts {
		opt.apply(h)
	}
	config := wazero.NewRuntimeConfigInterpreter().
		WithMemoryLimitPages(h.memoryLimitPages)
	h.runtime = wazero.NewRuntimeWithConfig(ctx, config)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, h.runtime); err != nil {
		h.runtime.Close(ctx)
		return nil, fmt.Errorf("plugin: instantiating WASI: %w", err)
	}
	return h, nil
}

func (h *Host) Close(ctx context.Context) error {
	return h.runtime.Close(ctx)
}

// Generator is a compiled code generator module.
type Generator struct {
	host     *Host
	name     string
	compiled wazero.CompiledModule
}

// Load compiles a generator module and checks that it has the required
// exports.
func (h *Host) Load(ctx context.Context, name string, wasmBin []byte) (*Generator, error) {
	compiled, err := h.runtime.CompileModule(ctx, wasmBin)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", name, err)
	}
	functions := compiled.ExportedFunctions()
	for _, export := range []string{ExportAllocate, ExportGenerate} {
		if _, ok := functions[export]; !ok {
			compiled.Close(ctx)
			return nil, fmt.Errorf("plugin %s: missing exported function %q", name, export)
		}
	}
	if _, ok := compiled.ExportedMemories()[ExportMemory]; !ok {
		compiled.Close(ctx)
		return nil, fmt.Errorf("plugin %s: missing exported memory %q", name, ExportMemory)
	}
	h.log.Debug("loaded code generator", slog.String("plugin", name))
	return &Generator{host: h, name: name, compiled: compiled}, nil
}

// LoadFile reads and compiles a generator module.
func (h *Host) LoadFile(ctx context.Context, name, path string) (*Generator, error) {
	wasmBin, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", name, err)
	}
	return h.Load(ctx, name, wasmBin)
}

func (g *Generator) Name() string {
	return g.name
}

// Generate runs the generator on req in a fresh module instance. When
// the generator reports failure the returned error wraps
// ErrGeneratorFailed and carries the generator's message.
func (g *Generator) Generate(ctx context.Context, req *Request) (*Response, error) {
	framed, err := abi.Frame(req)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: encoding request: %w", g.name, err)
	}

	var stderr bytes.Buffer
	config := wazero.NewModuleConfig().
		WithName("").
		WithStderr(&stderr).
		WithStartFunctions("_initialize")
	mod, err := g.host.runtime.InstantiateModule(ctx, g.compiled, config)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", g.name, err)
	}
	defer mod.Close(ctx)
	defer func() {
		if stderr.Len() > 0 {
			g.host.log.Debug("code generator output",
				slog.String("plugin", g.name),
				slog.String("stderr", stderr.String()))
		}
	}()

	mem := mod.Memory()
	allocate := mod.ExportedFunction(ExportAllocate)
	generate := mod.ExportedFunction(ExportGenerate)

	results, err := allocate.Call(ctx, uint64(len(framed)))
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %s: %w", g.name, ExportAllocate, err)
	}
	requestPtr := uint32(results[0])
	if requestPtr == 0 {
		return nil, fmt.Errorf("plugin %s: allocation of %d bytes failed", g.name, len(framed))
	}
	if !mem.Write(requestPtr, framed) {
		return nil, fmt.Errorf("plugin %s: request buffer out of range", g.name)
	}

	results, err = allocate.Call(ctx, 4)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %s: %w", g.name, ExportAllocate, err)
	}
	responsePtrPtr := uint32(results[0])

	results, err = generate.Call(ctx, uint64(requestPtr), uint64(responsePtrPtr))
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %s: %w", g.name, ExportGenerate, err)
	}
	rc := uint8(results[0])

	responsePtr, ok := mem.ReadUint32Le(responsePtrPtr)
	if !ok {
		return nil, fmt.Errorf("plugin %s: response pointer out of range", g.name)
	}
	responseLen, ok := mem.ReadUint32Le(responsePtr)
	if !ok {
		return nil, fmt.Errorf("plugin %s: failed to read response length", g.name)
	}
	responseBuf, ok := mem.Read(responsePtr+4, responseLen)
	if !ok {
		return nil, fmt.Errorf("plugin %s: failed to read response", g.name)
	}

	var resp Response
	if err := msgpack.Unmarshal(responseBuf, &resp); err != nil {
		return nil, fmt.Errorf("plugin %s: decoding response: %w", g.name, err)
	}
	if rc != 0 {
		return nil, fmt.Errorf("plugin %s: %w: %s", g.name, ErrGeneratorFailed, sanitize(resp.Error))
	}
	if len(resp.Files) == 0 {
		return nil, fmt.Errorf("plugin %s: generator did not produce any output files", g.name)
	}
	return &resp, nil
}

// sanitize replaces control characters in a generator message with
// U+FFFD and trims surrounding whitespace.
func sanitize(msg string) string {
	msg = strings.TrimSpace(msg)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7F {
			return '\uFFFD'
		}
		return r
	}, msg)
}

// OutPath joins a generated file's path components onto outDir. Every
// component must be a plain, non-empty file or directory name.
func OutPath(outDir string, parts []string) (string, error) {
	if len(parts) == 0 {
		return "", fmt.Errorf("invalid output path %q: empty", parts)
	}
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("invalid output path %q: bad path component %q", parts, part)
		}
		if part[0] == '/' || filepath.IsAbs(part) {
			return "", fmt.Errorf("invalid output path %q: absolute path component %q", parts, part)
		}
		if strings.ContainsAny(part, `/\`) {
			return "", fmt.Errorf("invalid output path %q: component %q contains a path separator", parts, part)
		}
		if strings.ContainsRune(part, 0) {
			return "", fmt.Errorf("invalid output path %q: component %q contains NUL", parts, part)
		}
	}
	return filepath.Join(append([]string{outDir}, parts...)...), nil
}

// WriteFiles validates every path in files before writing any of them
// under outDir.
func WriteFiles(outDir string, files []OutputFile) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, file := range files {
		path, err := OutPath(outDir, file.Path)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	for ii, file := range files {
		if err := os.MkdirAll(filepath.Dir(paths[ii]), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(paths[ii], file.Content, 0o644); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// Locate finds the generator module for name, either at explicit or in
// one of the directories of searchPath, which falls back to $PathEnv.
func Locate(name, explicit, searchPath string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if searchPath == "" {
		searchPath = os.Getenv(PathEnv)
	}
	if searchPath == "" {
		return "", fmt.Errorf("no plugin path set, use --plugin-path or $%s", PathEnv)
	}
	basename := fmt.Sprintf("cedarbridge-codegen-%s.wasm", name)
	for _, dir := range filepath.SplitList(searchPath) {
		path := filepath.Join(dir, basename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("code generator %s not found in plugin path", basename)
}
