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

// Package cbpack reads and writes compiled packages.
//
// A compiled package file is a single msgpack document. Types declared by
// the package are stored in full; types of imported packages are stored
// as (package, name) references and resolved through a compiler.Loader
// when the file is decoded.
package cbpack

import (
	"bytes"
	"errors"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/io7m-com/cedarbridge-sub001/model"
)

const (
	formatName    = "cedarbridge.cbpack"
	formatVersion = 1
)

var ErrMalformed = errors.New("malformed compiled package")

type exprKind uint8

const (
	exprNamed exprKind = iota + 1
	exprParameter
	exprApplication
)

type filePackage struct {
	Format        string         `msgpack:"format"`
	FormatVersion uint32         `msgpack:"format_version"`
	Name          string         `msgpack:"name"`
	Imports       []string       `msgpack:"imports"`
	Docs          []string       `msgpack:"docs,omitempty"`
	Types         []fileType     `msgpack:"types"`
	Protocols     []fileProtocol `msgpack:"protocols"`
}

type fileType struct {
	Kind       model.Kind  `msgpack:"kind"`
	Name       string      `msgpack:"name"`
	Parameters []fileParam `msgpack:"parameters,omitempty"`
	Fields     []fileField `msgpack:"fields,omitempty"`
	Cases      []fileCase  `msgpack:"cases,omitempty"`
	Docs       []string    `msgpack:"docs,omitempty"`
}

type fileParam struct {
	Name string   `msgpack:"name"`
	Docs []string `msgpack:"docs,omitempty"`
}

type fileField struct {
	Name string   `msgpack:"name"`
	Type fileExpr `msgpack:"type"`
	Docs []string `msgpack:"docs,omitempty"`
}

type fileCase struct {
	Name   string      `msgpack:"name"`
	Fields []fileField `msgpack:"fields,omitempty"`
	Docs   []string    `msgpack:"docs,omitempty"`
}

type fileExpr struct {
	Kind      exprKind   `msgpack:"k"`
	Package   string     `msgpack:"p,omitempty"`
	Name      string     `msgpack:"n"`
	Arguments []fileExpr `msgpack:"a,omitempty"`
}

type fileProtocol struct {
	Name     string        `msgpack:"name"`
	Versions []fileVersion `msgpack:"versions"`
	Docs     []string      `msgpack:"docs,omitempty"`
}

type fileVersion struct {
	Number  uint64    `msgpack:"number"`
	Types   []fileRef `msgpack:"types"`
	Added   []fileRef `msgpack:"added,omitempty"`
	Removed []fileRef `msgpack:"removed,omitempty"`
}

type fileRef struct {
	Package string `msgpack:"p"`
	Name    string `msgpack:"n"`
}

// Encode returns the compiled package file for pkg.
func Encode(pkg *model.Package) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeTo(pkg, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func EncodeTo(pkg *model.Package, w io.Writer) error {
	enc := msgpack.NewEncoder(w)
	enc.UseCompactInts(true)
	return enc.Encode(fromModel(pkg))
}

func fromModel(pkg *model.Package) *filePackage {
	out := &filePackage{
		Format:        formatName,
		FormatVersion: formatVersion,
		Name:          pkg.Name(),
		Imports:       []string{},
		Docs:          pkg.Documentation(),
		Types:         []fileType{},
		Protocols:     []fileProtocol{},
	}
	for _, imported := range pkg.Imports() {
		out.Imports = append(out.Imports, imported.Name())
	}
	for _, decl := range pkg.Types() {
		out.Types = append(out.Types, fromTypeDecl(decl))
	}
	for _, proto := range pkg.Protocols() {
		fp := fileProtocol{
			Name: proto.Name(),
			Docs: proto.Documentation(),
		}
		for _, version := range proto.Versions() {
			fp.Versions = append(fp.Versions, fileVersion{
				Number:  version.Number(),
				Types:   fromRefs(version.Types()),
				Added:   fromRefs(version.TypesAdded()),
				Removed: fromRefs(version.TypesRemoved()),
			})
		}
		out.Protocols = append(out.Protocols, fp)
	}
	return out
}

func fromTypeDecl(decl model.TypeDecl) fileType {
	ft := fileType{
		Kind: decl.Kind(),
		Name: decl.Name(),
		Docs: decl.Documentation(),
	}
	for _, param := range decl.Parameters() {
		ft.Parameters = append(ft.Parameters, fileParam{
			Name: param.Name(),
			Docs: param.Documentation(),
		})
	}
	switch decl := decl.(type) {
	case *model.Record:
		ft.Fields = fromFields(decl.Fields())
	case *model.Variant:
		for _, c := range decl.Cases() {
			ft.Cases = append(ft.Cases, fileCase{
				Name:   c.Name(),
				Fields: fromFields(c.Fields()),
				Docs:   c.Documentation(),
			})
		}
	case *model.External:
	default:
		panic("unreachable")
	}
	return ft
}

func fromFields(fields []*model.Field) []fileField {
	var out []fileField
	for _, field := range fields {
		out = append(out, fileField{
			Name: field.Name(),
			Type: fromExpr(field.Type()),
			Docs: field.Documentation(),
		})
	}
	return out
}

func fromExpr(expr model.TypeExpr) fileExpr {
	switch expr := expr.(type) {
	case *model.Named:
		decl := expr.Decl()
		return fileExpr{
			Kind:    exprNamed,
			Package: decl.Package().Name(),
			Name:    decl.Name(),
		}
	case *model.ParameterRef:
		return fileExpr{
			Kind: exprParameter,
			Name: expr.Parameter().Name(),
		}
	case *model.Application:
		target := fromExpr(expr.Target())
		out := fileExpr{
			Kind:    exprApplication,
			Package: target.Package,
			Name:    target.Name,
		}
		for _, arg := range expr.Arguments() {
			out.Arguments = append(out.Arguments, fromExpr(arg))
		}
		return out
	}
	panic("unreachable")
}

func fromRefs(decls []model.TypeDecl) []fileRef {
	out := []fileRef{}
	for _, decl := range decls {
		out = append(out, fileRef{
			Package: decl.Package().Name(),
			Name:    decl.Name(),
		})
	}
	return out
}
