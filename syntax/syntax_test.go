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

package syntax_test

import (
	"testing"

	"github.com/io7m-com/cedarbridge-sub001/internal/testutil"
	"github.com/io7m-com/cedarbridge-sub001/syntax"
)

const chatSchema = `[language cedarbridge 1 0]
[package com.example.chat]
[import cedarbridge.core cb]

; Messages
[documentation Message "A chat message."]
[record Message
  [field id cb:UUID]
  [field text cb:String]]
[record Pair [parameter a] [parameter b] [field first a] [field second b]]
[variant Result
  [parameter t]
  [documentation t "The success type."]
  [case Ok [field value t]]
  [case Error [field message cb:String]]]
[external Timestamp]
[protocol Chat
  [version 1 [types-added Message]]
  [version 2 [types-removed-all] [types-added Pair0]]]
`

func TestParseSchema(t *testing.T) {
	schema, err := syntax.Parse([]byte(chatSchema), syntax.FileName("chat.cbs"))
	testutil.AssertNoError(t, err)

	testutil.ExpectEq(t, "cedarbridge", schema.Language().Name())
	testutil.ExpectEq(t, "com.example.chat", schema.Package().Name().Get())

	imports := schema.Imports()
	testutil.ExpectEq(t, 1, len(imports))
	testutil.ExpectEq(t, "cedarbridge.core", imports[0].Package().Get())
	testutil.ExpectEq(t, "cb", imports[0].Short().Get())

	docs := schema.Documentation()
	testutil.ExpectEq(t, 1, len(docs))
	testutil.ExpectEq(t, "Message", docs[0].Target().Get())
	testutil.ExpectEq(t, "A chat message.", docs[0].Text())

	decls := schema.Decls()
	testutil.ExpectEq(t, 5, len(decls))

	message := decls[0].(*syntax.Record)
	testutil.ExpectEq(t, "Message", message.Name().Get())
	testutil.ExpectEq(t, 2, len(message.Fields()))
	idType := message.Fields()[0].Type().(*syntax.TypeName)
	testutil.ExpectEq(t, "cb", idType.Scope().Get())
	testutil.ExpectEq(t, "UUID", idType.Name().Get())
	testutil.ExpectEq(t, "cb:UUID", idType.String())

	pos := message.Pos()
	testutil.ExpectEq(t, "chat.cbs", pos.File)
	testutil.ExpectEq(t, 7, pos.Line)
	testutil.ExpectEq(t, 1, pos.Column)
	testutil.ExpectEq(t, "chat.cbs:7:1", pos.String())

	pair := decls[1].(*syntax.Record)
	testutil.ExpectEq(t, 2, len(pair.Parameters()))
	testutil.ExpectEq(t, "b", pair.Parameters()[1].Name().Get())
	first := pair.Fields()[0].Type().(*syntax.TypeName)
	testutil.ExpectTrue(t, first.Scope() == nil)

	result := decls[2].(*syntax.Variant)
	testutil.ExpectEq(t, 2, len(result.Cases()))
	testutil.ExpectEq(t, "Error", result.Cases()[1].Name().Get())
	testutil.ExpectEq(t, 1, len(result.Documentation()))

	_ = decls[3].(*syntax.External)

	chat := decls[4].(*syntax.Protocol)
	versions := chat.Versions()
	testutil.ExpectEq(t, 2, len(versions))
	testutil.ExpectEq(t, uint64(1), versions[0].Number())
	testutil.ExpectFalse(t, versions[0].RemovesAll())
	testutil.ExpectTrue(t, versions[1].RemovesAll())
	testutil.ExpectEq(t, "Pair0", versions[1].TypesAdded()[0].String())
}

func TestParseNodeIDsUnique(t *testing.T) {
	schema, err := syntax.Parse([]byte(chatSchema))
	testutil.AssertNoError(t, err)

	seen := make(map[syntax.NodeID]bool)
	record := func(node syntax.Node) {
		id := node.ID()
		if id == 0 || int(id) >= schema.NodeCount() {
			t.Errorf("node ID %d out of range", id)
		}
		if seen[id] {
			t.Errorf("duplicate node ID %d", id)
		}
		seen[id] = true
	}
	var typeExpr func(syntax.TypeExpr)
	typeExpr = func(expr syntax.TypeExpr) {
		record(expr)
		if app, ok := expr.(*syntax.TypeApplication); ok {
			record(app.Target())
			for _, arg := range app.Arguments() {
				typeExpr(arg)
			}
		}
	}
	for _, decl := range schema.Decls() {
		record(decl)
		if rec, ok := decl.(*syntax.Record); ok {
			for _, field := range rec.Fields() {
				record(field)
				typeExpr(field.Type())
			}
		}
	}
	testutil.ExpectTrue(t, len(seen) > 5)
}

func TestParseTypeExpr(t *testing.T) {
	expr, err := syntax.NewParseOptions().ParseTypeExpr([]byte("[cb:Map cb:String [cb:List a]]"))
	testutil.AssertNoError(t, err)

	app := expr.(*syntax.TypeApplication)
	testutil.ExpectEq(t, "cb:Map", app.Target().String())
	testutil.ExpectEq(t, 2, len(app.Arguments()))
	inner := app.Arguments()[1].(*syntax.TypeApplication)
	testutil.ExpectEq(t, "a", inner.Arguments()[0].(*syntax.TypeName).String())
}

func TestParseQuotedEscapes(t *testing.T) {
	src := `[package p] [documentation T "tab\there \"q\" \u{1F600}\\"]`
	schema, err := syntax.Parse([]byte(src))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "tab\there \"q\" \U0001F600\\", schema.Documentation()[0].Text())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		code  uint32
		start uint32
		len   uint32
	}{
		{"unexpected close", "[package p]]", 2000, 11, 1},
		{"unterminated list", "[package p", 2001, 0, 1},
		{"mismatched close", "[package p)", 2002, 10, 1},
		{"integer overflow", "[package p] [protocol P [version 18446744073709551616]]", 2004, 33, 20},
		{"bad escape", `[package p] [documentation T "\q"]`, 2005, 29, 4},
		{"top-level symbol", "package", 2100, 0, 7},
		{"empty list", "[]", 2101, 0, 2},
		{"unknown keyword", "[package p] [struct S]", 2102, 13, 6},
		{"missing package", "[record T]", 2103, 0, 0},
		{"duplicate package", "[package p] [package q]", 2104, 12, 11},
		{"package arity", "[package]", 2105, 0, 9},
		{"invalid package name", "[package Com.Example]", 2106, 9, 11},
		{"invalid type name", "[package p] [record person]", 2106, 20, 6},
		{"invalid field name", "[package p] [record P [field Name T]]", 2106, 29, 4},
		{"invalid case name", "[package p] [variant V [case none]]", 2106, 29, 4},
		{"qualified parameter", "[package p] [record P [field x cb:t]]", 2106, 31, 4},
		{"version number", "[package p] [protocol P [version x]]", 2107, 33, 1},
		{"documentation text", "[package p] [documentation T T]", 2108, 29, 1},
		{"unsupported language", "[language cedarbridge 2 0] [package p]", 2109, 0, 26},
		{"language not first", "[package p] [language cedarbridge 1 0]", 2110, 12, 26},
		{"empty application", "[package p] [record P [field x [T]]]", 2111, 31, 3},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := syntax.Parse([]byte(test.src))
			testutil.AssertError(t, err)
			synErr := err.(*syntax.Error)
			testutil.ExpectEq(t, test.code, synErr.Code())
			testutil.ExpectEq(t, syntax.NewSpan(test.start, test.len), synErr.Span())
		})
	}
}

func TestFilePos(t *testing.T) {
	file := syntax.NewFile("a.cbs", []byte("ab\ncd\n\nef"))
	tests := []struct {
		offset uint32
		line   int
		column int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{3, 2, 1},
		{6, 3, 1},
		{8, 4, 2},
	}
	for _, test := range tests {
		pos := file.Pos(test.offset)
		testutil.ExpectEq(t, test.line, pos.Line)
		testutil.ExpectEq(t, test.column, pos.Column)
	}
}
