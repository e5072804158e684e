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

package cbpack

import (
	"errors"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/io7m-com/cedarbridge-sub001/compiler"
	"github.com/io7m-com/cedarbridge-sub001/internal/testutil"
	"github.com/io7m-com/cedarbridge-sub001/model"
)

const depSchema = `[package test.core]
[documentation String "Text."]
[external String]
[external List [parameter a]]
`

const chatSchema = `[package com.example.chat]
[import test.core tc]
[documentation com.example.chat "Chat messages."]
[documentation Message "A chat message."]
[documentation Chat "The chat protocol."]
[record Message [field id tc:String] [field text tc:String]]
[record Pair
  [parameter a]
  [parameter b]
  [documentation a "First."]
  [field first a]
  [field second b]
  [documentation second "Second."]]
[variant Result
  [parameter t]
  [case Ok [field value t]]
  [case Error [field message tc:String] [documentation message "Why."]]
  [documentation Ok "Success."]]
[external Timestamp]
[record Envelope [field items [tc:List [Pair Message Timestamp]]]]
[protocol Chat
  [version 1 [types-added Message]]
  [version 2 [types-added Envelope]]
  [version 3 [types-removed Message]]]
`

func compileChat(t *testing.T) (*model.Package, *compiler.PackageSet) {
	t.Helper()
	dep := testutil.CompileOrDie(t, depSchema)
	deps := compiler.NewPackageSet(dep)
	return testutil.CompileOrDie(t, chatSchema, compiler.WithLoader(deps)), deps
}

// describe flattens everything observable about a package into strings.
func describe(pkg *model.Package) []string {
	out := []string{"package " + pkg.Name()}
	for _, imported := range pkg.Imports() {
		out = append(out, "import "+imported.Name())
	}
	out = append(out, docLines("", pkg.Documentation())...)
	for _, decl := range pkg.Types() {
		name := model.QualifiedName(decl)
		out = append(out, decl.Kind().String()+" "+name+" "+decl.ID().String())
		out = append(out, docLines(name, decl.Documentation())...)
		for _, param := range decl.Parameters() {
			out = append(out, name+" param "+param.Name())
			out = append(out, docLines(name+"."+param.Name(), param.Documentation())...)
		}
		var fields []*model.Field
		switch decl := decl.(type) {
		case *model.Record:
			fields = decl.Fields()
		case *model.Variant:
			for _, c := range decl.Cases() {
				out = append(out, name+" case "+c.Name())
				out = append(out, docLines(name+"."+c.Name(), c.Documentation())...)
				fields = append(fields, c.Fields()...)
			}
		}
		for _, field := range fields {
			out = append(out, name+" field "+field.Name()+" "+field.Type().String())
			out = append(out, docLines(name+"."+field.Name(), field.Documentation())...)
		}
	}
	for _, proto := range pkg.Protocols() {
		out = append(out, "protocol "+proto.Name()+" "+proto.ID().String())
		out = append(out, docLines(proto.Name(), proto.Documentation())...)
		for _, version := range proto.Versions() {
			line := proto.Name() + " version"
			for _, decl := range version.Types() {
				line += " " + model.QualifiedName(decl)
			}
			for _, decl := range version.TypesAdded() {
				line += " +" + model.QualifiedName(decl)
			}
			for _, decl := range version.TypesRemoved() {
				line += " -" + model.QualifiedName(decl)
			}
			out = append(out, line)
		}
	}
	return out
}

func docLines(prefix string, docs []string) []string {
	var out []string
	for _, doc := range docs {
		out = append(out, prefix+" doc "+doc)
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	pkg, deps := compileChat(t)
	data, err := Encode(pkg)
	testutil.AssertNoError(t, err)

	decoded, err := Decode(data, deps)
	testutil.AssertNoError(t, err)
	testutil.ExpectEqual(t, describe(pkg), describe(decoded))

	// Imported declarations are shared with the loader's package.
	dep, _ := deps.Resolve("test.core")
	envelope, _ := decoded.Type("Envelope")
	items := envelope.(*model.Record).Fields()[0].Type().(*model.Application)
	list, _ := dep.Type("List")
	testutil.ExpectTrue(t, items.Target().Decl() == list)

	again, err := Encode(decoded)
	testutil.AssertNoError(t, err)
	testutil.ExpectBytesEq(t, data, again)
}

func TestDecodeMissingImport(t *testing.T) {
	pkg, _ := compileChat(t)
	data, err := Encode(pkg)
	testutil.AssertNoError(t, err)

	_, err = Decode(data, compiler.NewPackageSet())
	testutil.AssertError(t, err)
	testutil.ExpectTrue(t, errors.Is(err, compiler.ErrPackageNotFound))
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode([]byte{0xC1, 0x00}, compiler.NewPackageSet())
	testutil.ExpectTrue(t, errors.Is(err, ErrMalformed))
}

func TestDecodeMalformed(t *testing.T) {
	base := func() *filePackage {
		return &filePackage{
			Format:        formatName,
			FormatVersion: formatVersion,
			Name:          "p",
			Types: []fileType{
				{Kind: model.KindRecord, Name: "R"},
				{Kind: model.KindExternal, Name: "E", Parameters: []fileParam{{Name: "a"}}},
			},
		}
	}
	tests := []struct {
		name   string
		mutate func(fp *filePackage)
	}{
		{"format", func(fp *filePackage) { fp.Format = "other" }},
		{"format version", func(fp *filePackage) { fp.FormatVersion = 99 }},
		{"package name", func(fp *filePackage) { fp.Name = "Bad" }},
		{"type name", func(fp *filePackage) { fp.Types[0].Name = "r" }},
		{"kind", func(fp *filePackage) { fp.Types[0].Kind = model.KindProtocol }},
		{"duplicate type", func(fp *filePackage) { fp.Types[1].Name = "R" }},
		{"duplicate parameter", func(fp *filePackage) {
			fp.Types[1].Parameters = append(fp.Types[1].Parameters, fileParam{Name: "a"})
		}},
		{"protocol conflicts with type", func(fp *filePackage) {
			fp.Protocols = []fileProtocol{{Name: "R"}}
		}},
		{"external with fields", func(fp *filePackage) {
			fp.Types[1].Fields = []fileField{{Name: "x", Type: fileExpr{Kind: exprNamed, Package: "p", Name: "R"}}}
		}},
		{"unknown local type", func(fp *filePackage) {
			fp.Types[0].Fields = []fileField{{Name: "x", Type: fileExpr{Kind: exprNamed, Package: "p", Name: "Q"}}}
		}},
		{"type from unimported package", func(fp *filePackage) {
			fp.Types[0].Fields = []fileField{{Name: "x", Type: fileExpr{Kind: exprNamed, Package: "q", Name: "R"}}}
		}},
		{"bare parameterized type", func(fp *filePackage) {
			fp.Types[0].Fields = []fileField{{Name: "x", Type: fileExpr{Kind: exprNamed, Package: "p", Name: "E"}}}
		}},
		{"application arity", func(fp *filePackage) {
			fp.Types[0].Fields = []fileField{{Name: "x", Type: fileExpr{
				Kind: exprApplication, Package: "p", Name: "E",
				Arguments: []fileExpr{
					{Kind: exprNamed, Package: "p", Name: "R"},
					{Kind: exprNamed, Package: "p", Name: "R"},
				},
			}}}
		}},
		{"unknown parameter", func(fp *filePackage) {
			fp.Types[0].Fields = []fileField{{Name: "x", Type: fileExpr{Kind: exprParameter, Name: "a"}}}
		}},
		{"duplicate field", func(fp *filePackage) {
			field := fileField{Name: "x", Type: fileExpr{Kind: exprNamed, Package: "p", Name: "R"}}
			fp.Types[0].Fields = []fileField{field, field}
		}},
		{"duplicate version", func(fp *filePackage) {
			version := fileVersion{Number: 1, Types: []fileRef{{Package: "p", Name: "R"}}}
			fp.Protocols = []fileProtocol{{Name: "P", Versions: []fileVersion{version, version}}}
		}},
	}

	valid, err := msgpack.Marshal(base())
	testutil.AssertNoError(t, err)
	_, err = Decode(valid, compiler.NewPackageSet())
	testutil.AssertNoError(t, err)

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fp := base()
			test.mutate(fp)
			data, err := msgpack.Marshal(fp)
			testutil.AssertNoError(t, err)
			_, err = Decode(data, compiler.NewPackageSet())
			testutil.AssertError(t, err)
			testutil.ExpectTrue(t, errors.Is(err, ErrMalformed))
		})
	}
}
