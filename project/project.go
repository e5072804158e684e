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

// Package project reads cedarbridge.hcl project files.
//
//	search_path   = ["schemas"]
//	compiled_path = ["build"]
//
//	package "com.example.chat" {
//	  source = "schemas/com.example.chat.cbs"
//	  output = "build/com.example.chat.cbpack"
//	}
//
//	plugin "go" {
//	  path    = "plugins/cedarbridge-go.wasm"
//	  options = { module = "example.com/chat", docs = true }
//	}
//
// Relative paths are resolved against the directory holding the file.
// Expressions may refer to the variable project_dir.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/io7m-com/cedarbridge-sub001/loader"
	"github.com/io7m-com/cedarbridge-sub001/names"
)

const FileName = "cedarbridge.hcl"

type Project struct {
	Dir          string
	SearchPath   []string
	CompiledPath []string
	Packages     []Package
	Plugins      []Plugin
}

type Package struct {
	Name   string
	Source string
	Output string
}

type Plugin struct {
	Name    string
	Path    string
	Options map[string]string
}

type hclProjectFile struct {
	SearchPath   []string          `hcl:"search_path,optional"`
	CompiledPath []string          `hcl:"compiled_path,optional"`
	Packages     []*hclPackage     `hcl:"package,block"`
	Plugins      []*hclPluginBlock `hcl:"plugin,block"`
}

type hclPackage struct {
	Name   string `hcl:"name,label"`
	Source string `hcl:"source"`
	Output string `hcl:"output,optional"`
}

type hclPluginBlock struct {
	Name    string         `hcl:"name,label"`
	Path    string         `hcl:"path"`
	Options hcl.Expression `hcl:"options,optional"`
}

// LoadError carries the diagnostics of a project file that could not be
// loaded, along with the parsed files needed to render them.
type LoadError struct {
	Diags hcl.Diagnostics
	Files map[string]*hcl.File
}

func (err *LoadError) Error() string {
	return err.Diags.Error()
}

func Load(path string) (*Project, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	return Parse(src, path, dir)
}

// Parse reads a project file held in memory. Relative paths are resolved
// against dir.
func Parse(src []byte, filename, dir string) (*Project, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, &LoadError{Diags: diags, Files: parser.Files()}
	}

	var parsed hclProjectFile
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"project_dir": cty.StringVal(dir),
		},
	}
	diags = gohcl.DecodeBody(file.Body, evalCtx, &parsed)
	if diags.HasErrors() {
		return nil, &LoadError{Diags: diags, Files: parser.Files()}
	}

	p := &Project{Dir: dir}
	for _, path := range parsed.SearchPath {
		p.SearchPath = append(p.SearchPath, p.resolve(path))
	}
	for _, path := range parsed.CompiledPath {
		p.CompiledPath = append(p.CompiledPath, p.resolve(path))
	}

	seen := make(map[string]bool)
	for _, block := range parsed.Packages {
		if err := names.Package(block.Name); err != nil {
			diags = diags.Append(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid package name",
				Detail:   fmt.Sprintf("Package %q: %v.", block.Name, err),
			})
			continue
		}
		if seen[block.Name] {
			diags = diags.Append(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate package block",
				Detail:   fmt.Sprintf("Package %q is declared more than once.", block.Name),
			})
			continue
		}
		seen[block.Name] = true
		pkg := Package{
			Name:   block.Name,
			Source: p.resolve(block.Source),
		}
		if block.Output != "" {
			pkg.Output = p.resolve(block.Output)
		}
		p.Packages = append(p.Packages, pkg)
	}

	seen = make(map[string]bool)
	for _, block := range parsed.Plugins {
		if seen[block.Name] {
			diags = diags.Append(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate plugin block",
				Detail:   fmt.Sprintf("Plugin %q is declared more than once.", block.Name),
			})
			continue
		}
		seen[block.Name] = true
		options, optDiags := decodeOptions(block.Options, evalCtx)
		diags = diags.Extend(optDiags)
		p.Plugins = append(p.Plugins, Plugin{
			Name:    block.Name,
			Path:    p.resolve(block.Path),
			Options: options,
		})
	}
	if diags.HasErrors() {
		return nil, &LoadError{Diags: diags, Files: parser.Files()}
	}
	return p, nil
}

// decodeOptions evaluates a plugin's options attribute into a map of
// strings. Numbers and booleans are converted to their string forms.
func decodeOptions(expr hcl.Expression, evalCtx *hcl.EvalContext) (map[string]string, hcl.Diagnostics) {
	options := make(map[string]string)
	if expr == nil {
		return options, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() || val.IsNull() {
		return options, diags
	}
	rng := expr.Range()
	val, err := convert.Convert(val, cty.Map(cty.String))
	if err != nil {
		return options, diags.Append(&hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid plugin options",
			Detail:   fmt.Sprintf("Plugin options must be a map of strings: %v.", err),
			Subject:  &rng,
		})
	}
	if !val.IsWhollyKnown() {
		return options, diags
	}
	for key, elem := range val.AsValueMap() {
		if elem.IsNull() {
			diags = diags.Append(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid plugin options",
				Detail:   fmt.Sprintf("Plugin option %q is null.", key),
				Subject:  &rng,
			})
			continue
		}
		options[key] = elem.AsString()
	}
	return options, diags
}

func (p *Project) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(p.Dir, path)
}

// Package returns the package block with the given name.
func (p *Project) Package(name string) (Package, bool) {
	for _, pkg := range p.Packages {
		if pkg.Name == name {
			return pkg, true
		}
	}
	return Package{}, false
}

func (p *Project) Plugin(name string) (Plugin, bool) {
	for _, plugin := range p.Plugins {
		if plugin.Name == name {
			return plugin, true
		}
	}
	return Plugin{}, false
}

// LoaderOptions returns the loader configuration for the project's
// search and compiled paths.
func (p *Project) LoaderOptions() []loader.Option {
	var opts []loader.Option
	for _, dir := range p.SearchPath {
		opts = append(opts, loader.WithSearchPath(os.DirFS(dir)))
	}
	for _, dir := range p.CompiledPath {
		opts = append(opts, loader.WithCompiledPath(os.DirFS(dir)))
	}
	return opts
}

// OptionKeys returns the option names of a plugin in sorted order.
func (p Plugin) OptionKeys() []string {
	keys := make([]string, 0, len(p.Options))
	for key := range p.Options {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
