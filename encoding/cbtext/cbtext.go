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

// Package cbtext renders compiled packages as YAML for inspection and
// golden tests.
package cbtext

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/io7m-com/cedarbridge-sub001/model"
)

func Encode(pkg *model.Package) string {
	var buf bytes.Buffer
	if err := EncodeTo(pkg, &buf); err != nil {
		panic(fmt.Sprintf("cbtext: %v", err))
	}
	return buf.String()
}

func EncodeTo(pkg *model.Package, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fromPackage(pkg)); err != nil {
		return fmt.Errorf("cbtext: encoding package %q: %w", pkg.Name(), err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("cbtext: encoder close: %w", err)
	}
	return nil
}

type textPackage struct {
	Package       string         `yaml:"package"`
	Documentation []string       `yaml:"documentation,omitempty"`
	Imports       []string       `yaml:"imports,omitempty,flow"`
	Types         []textType     `yaml:"types,omitempty"`
	Protocols     []textProtocol `yaml:"protocols,omitempty"`
}

type textType struct {
	Name          string      `yaml:"name"`
	Kind          string      `yaml:"kind"`
	ID            string      `yaml:"id"`
	Documentation []string    `yaml:"documentation,omitempty"`
	Parameters    []textParam `yaml:"parameters,omitempty"`
	Fields        []textField `yaml:"fields,omitempty"`
	Cases         []textCase  `yaml:"cases,omitempty"`
}

type textParam struct {
	Name          string   `yaml:"name"`
	Documentation []string `yaml:"documentation,omitempty"`
}

type textField struct {
	Name          string   `yaml:"name"`
	Type          string   `yaml:"type"`
	Documentation []string `yaml:"documentation,omitempty"`
}

type textCase struct {
	Name          string      `yaml:"name"`
	Documentation []string    `yaml:"documentation,omitempty"`
	Fields        []textField `yaml:"fields,omitempty"`
}

type textProtocol struct {
	Name          string        `yaml:"name"`
	ID            string        `yaml:"id"`
	Documentation []string      `yaml:"documentation,omitempty"`
	Versions      []textVersion `yaml:"versions,omitempty"`
}

type textVersion struct {
	Version uint64   `yaml:"version"`
	Types   []string `yaml:"types,flow"`
	Added   []string `yaml:"added,omitempty,flow"`
	Removed []string `yaml:"removed,omitempty,flow"`
}

func fromPackage(pkg *model.Package) *textPackage {
	out := &textPackage{
		Package:       pkg.Name(),
		Documentation: pkg.Documentation(),
	}
	for _, imported := range pkg.Imports() {
		out.Imports = append(out.Imports, imported.Name())
	}
	for _, decl := range pkg.Types() {
		out.Types = append(out.Types, fromType(decl))
	}
	for _, proto := range pkg.Protocols() {
		tp := textProtocol{
			Name:          proto.Name(),
			ID:            proto.ID().String(),
			Documentation: proto.Documentation(),
		}
		for _, version := range proto.Versions() {
			tp.Versions = append(tp.Versions, textVersion{
				Version: version.Number(),
				Types:   qualifiedNames(version.Types()),
				Added:   qualifiedNames(version.TypesAdded()),
				Removed: qualifiedNames(version.TypesRemoved()),
			})
		}
		out.Protocols = append(out.Protocols, tp)
	}
	return out
}

func fromType(decl model.TypeDecl) textType {
	out := textType{
		Name:          decl.Name(),
		Kind:          decl.Kind().String(),
		ID:            decl.ID().String(),
		Documentation: decl.Documentation(),
	}
	for _, param := range decl.Parameters() {
		out.Parameters = append(out.Parameters, textParam{
			Name:          param.Name(),
			Documentation: param.Documentation(),
		})
	}
	switch decl := decl.(type) {
	case *model.Record:
		out.Fields = fromFields(decl.Fields())
	case *model.Variant:
		for _, c := range decl.Cases() {
			out.Cases = append(out.Cases, textCase{
				Name:          c.Name(),
				Documentation: c.Documentation(),
				Fields:        fromFields(c.Fields()),
			})
		}
	case *model.External:
	default:
		panic("unreachable")
	}
	return out
}

func fromFields(fields []*model.Field) []textField {
	var out []textField
	for _, field := range fields {
		out = append(out, textField{
			Name:          field.Name(),
			Type:          field.Type().String(),
			Documentation: field.Documentation(),
		})
	}
	return out
}

func qualifiedNames(decls []model.TypeDecl) []string {
	out := []string{}
	for _, decl := range decls {
		out = append(out, model.QualifiedName(decl))
	}
	return out
}
