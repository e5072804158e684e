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
	"go/parser"
	"go/token"
	"regexp"
	"strings"
	"testing"

	"github.com/io7m-com/cedarbridge-sub001/compiler"
	"github.com/io7m-com/cedarbridge-sub001/internal/testutil"
	"github.com/io7m-com/cedarbridge-sub001/loader"
	"github.com/io7m-com/cedarbridge-sub001/model"
	"github.com/io7m-com/cedarbridge-sub001/plugin"
)

func compilePackage(t *testing.T, src string, loaderOpts ...loader.Option) *model.Package {
	t.Helper()
	return testutil.CompileOrDie(t, src, compiler.WithLoader(loader.New(loaderOpts...)))
}

func generateSource(t *testing.T, pkg *model.Package, options map[string]string) (string, error) {
	t.Helper()
	req, err := plugin.NewRequest(pkg, options)
	testutil.AssertNoError(t, err)
	files, err := generate(req)
	if err != nil {
		return "", err
	}
	if len(files) != 1 {
		t.Fatalf("generate produced %d files, want 1", len(files))
	}
	return string(files[0].Content), nil
}

func generateOrDie(t *testing.T, src string, options map[string]string) string {
	t.Helper()
	out, err := generateSource(t, compilePackage(t, src), options)
	testutil.AssertNoError(t, err)
	if _, err := parser.ParseFile(token.NewFileSet(), "out.go", out, parser.ParseComments); err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, out)
	}
	return out
}

func expectContains(t *testing.T, out string, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Errorf("generated code does not contain %q:\n%s", want, out)
	}
}

func expectMatches(t *testing.T, out string, pattern string) {
	t.Helper()
	if !regexp.MustCompile(pattern).MatchString(out) {
		t.Errorf("generated code does not match %q:\n%s", pattern, out)
	}
}

const chatSchema = `[package com.example.chat]
[import cedarbridge.core cb]
[documentation com.example.chat "Chat messages."]
[record Message
  [field message_id cb:UUID]
  [field text cb:String]
  [field tags [cb:List cb:String]]
  [field reply_to [cb:Option cb:IntegerUnsigned64]]]
[documentation Message "A chat message."]
[record Ack [field message_id cb:UUID]]
[record Pair [parameter a] [parameter b] [field first a] [field second b]]
[variant Result [parameter t]
  [case Ok [field value t]]
  [case Error [field message cb:String]]]
[protocol Chat
  [version 1 [types-added Message]]
  [version 2 [types-added Ack]]]
`

func TestGenerate(t *testing.T) {
	out := generateOrDie(t, chatSchema, nil)

	expectContains(t, out, "// Code generated by cedarbridge-codegen-go. DO NOT EDIT.\n")
	expectContains(t, out, "// Chat messages.\npackage chat\n")
	expectContains(t, out, "// A chat message.\ntype Message struct {\n")
	expectMatches(t, out, "\tMessageId +\\[16\\]byte +`cedarbridge:\"message_id\"`")
	expectMatches(t, out, "\tTags +\\[\\]string +`cedarbridge:\"tags\"`")
	expectMatches(t, out, "\tReplyTo +\\*uint64 +`cedarbridge:\"reply_to\"`")

	expectContains(t, out, "type Pair[A any, B any] struct {\n")
	expectMatches(t, out, "\tFirst +A +`cedarbridge:\"first\"`")

	expectContains(t, out, "type Result[T any] interface {\n\tisResult()\n}\n")
	expectContains(t, out, "type ResultOk[T any] struct {\n")
	expectContains(t, out, "func (ResultOk[T]) isResult() {}\n")
	expectContains(t, out, "func (ResultError[T]) isResult() {}\n")

	expectContains(t, out, "var ChatVersions = map[uint64][]string{\n")
	expectContains(t, out, "\t1: {\"com.example.chat.Message\"},\n")
	expectContains(t, out, "\t2: {\"com.example.chat.Message\", \"com.example.chat.Ack\"},\n")
}

func TestGeneratePath(t *testing.T) {
	pkg := compilePackage(t, `[package com.example.chat_v2] [record R]`)
	req, err := plugin.NewRequest(pkg, nil)
	testutil.AssertNoError(t, err)
	files, err := generate(req)
	testutil.AssertNoError(t, err)
	testutil.ExpectSliceEq(t, []string{"chatv2.go"}, files[0].Path)

	req.Options = map[string]string{"go_package": "wire"}
	files, err = generate(req)
	testutil.AssertNoError(t, err)
	testutil.ExpectSliceEq(t, []string{"wire.go"}, files[0].Path)
	expectContains(t, string(files[0].Content), "package wire\n")
}

func TestGenerateComparableKeys(t *testing.T) {
	out := generateOrDie(t, `[package p]
[import cedarbridge.core cb]
[record Index [parameter k] [parameter v] [field entries [cb:Map k v]]]
[record Wrapper [parameter x] [field inner [Index x cb:String]]]
[record Plain [parameter y] [field inner [Index cb:String y]]]
`, nil)
	expectContains(t, out, "type Index[K comparable, V any] struct {\n")
	expectMatches(t, out, "\tEntries +map\\[K\\]V ")
	expectContains(t, out, "type Wrapper[X comparable] struct {\n")
	expectMatches(t, out, "\tInner +Index\\[X, string\\] ")
	expectContains(t, out, "type Plain[Y any] struct {\n")
}

func TestGenerateExternals(t *testing.T) {
	src := `[package com.example.events]
[documentation Timestamp "A point in time."]
[external Timestamp]
[external Duration]
[record Event [field at Timestamp] [field length Duration]]
`
	pkg := compilePackage(t, src)

	_, err := generateSource(t, pkg, nil)
	testutil.AssertError(t, err)
	testutil.ExpectEq(t,
		"no Go type for external Timestamp (set option external.com.example.events.Timestamp)",
		err.Error())

	out, err := generateSource(t, pkg, map[string]string{
		"external.com.example.events.Timestamp": "time.Time",
		"external.com.example.events.Duration":  "int64",
	})
	testutil.AssertNoError(t, err)
	expectContains(t, out, "import (\n\ttime \"time\"\n)\n")
	expectContains(t, out, "// A point in time.\ntype Timestamp = time.Time\n")
	expectContains(t, out, "type Duration = int64\n")
	expectMatches(t, out, "\tAt +Timestamp +`cedarbridge:\"at\"`")
}

func TestGenerateImportedPackage(t *testing.T) {
	opt := loader.WithPackages(compilePackage(t, `[package com.example.lib] [record Shared [parameter a]]`))
	pkg := compilePackage(t, `[package com.example.app]
[import com.example.lib lib]
[record App [field shared [lib:Shared App]]]
`, opt)

	_, err := generateSource(t, pkg, nil)
	testutil.AssertError(t, err)
	testutil.ExpectTrue(t, strings.Contains(err.Error(), "set option import.com.example.lib"))

	out, err := generateSource(t, pkg, map[string]string{
		"import.com.example.lib": "example.com/gen/lib",
	})
	testutil.AssertNoError(t, err)
	expectContains(t, out, "\tlib \"example.com/gen/lib\"\n")
	expectMatches(t, out, "\tShared +lib\\.Shared\\[App\\] ")
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		options map[string]string
		want    string
	}{
		{
			name:    "invalid package option",
			src:     `[package p] [record R]`,
			options: map[string]string{"go_package": "not-valid"},
			want:    `option go_package: "not-valid" is not a valid Go package name`,
		},
		{
			name: "case name conflict",
			src:  `[package p] [variant V [case A]] [record VA]`,
			want: "generated name VA for record VA conflicts with case A of variant V",
		},
		{
			name: "protocol name conflict",
			src:  `[package p] [record R] [record PVersions] [protocol P [version 1 [types-added R]]]`,
			want: "generated name PVersions for protocol P conflicts with record PVersions",
		},
		{
			name: "field name conflict",
			src:  `[package p] [record R [field a_b R] [field a__b R]]`,
			want: "record R: fields a_b and a__b both map to AB",
		},
		{
			name: "parameterized external",
			src:  `[package p] [external E [parameter a]]`,
			want: "external E: parameterized externals have no Go mapping",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := generateSource(t, compilePackage(t, tt.src), tt.options)
			testutil.AssertError(t, err)
			testutil.ExpectEq(t, tt.want, err.Error())
		})
	}
}

func TestExportedName(t *testing.T) {
	tests := map[string]string{
		"a":          "A",
		"value":      "Value",
		"first_name": "FirstName",
		"x1_y2":      "X1Y2",
		"trailing_":  "Trailing",
	}
	for in, want := range tests {
		testutil.ExpectEq(t, want, exportedName(in))
	}
}
