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

package report_test

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/io7m-com/cedarbridge-sub001/compiler"
	"github.com/io7m-com/cedarbridge-sub001/internal/report"
	"github.com/io7m-com/cedarbridge-sub001/internal/testutil"
	"github.com/io7m-com/cedarbridge-sub001/loader"
	"github.com/io7m-com/cedarbridge-sub001/syntax"
)

func TestResult(t *testing.T) {
	src := "[package p]\n[record R\n  [field x Missing]]\n"
	schema := testutil.ParseOrDie(t, "test.cbs", src)
	result := compiler.Compile(schema)

	var out strings.Builder
	r := report.New(&out)
	testutil.AssertNoError(t, r.Result(schema.File(), result))
	testutil.ExpectEq(t, 1, r.ErrorCount())

	text := out.String()
	for _, want := range []string{
		"Error: E3001: Unknown type 'Missing'",
		"on test.cbs line 3:",
		"3:   [field x Missing]]",
		"At test.cbs:3:12.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output does not contain %q:\n%s", want, text)
		}
	}
}

func TestResultRelated(t *testing.T) {
	schema := testutil.ParseOrDie(t, "test.cbs", "[package p]\n[record R]\n[record R]\n")
	diags := report.ResultDiagnostics(schema.File(), compiler.Compile(schema))
	testutil.AssertTrue(t, len(diags) == 1)
	testutil.ExpectEq(t, "At test.cbs:3:9. See also test.cbs:2:9.", diags[0].Detail)
	testutil.ExpectEq(t, 3, diags[0].Subject.Start.Line)
	testutil.ExpectEq(t, 9, diags[0].Subject.Start.Column)
}

func TestWarnings(t *testing.T) {
	schema := testutil.ParseOrDie(t, "test.cbs", "[package p]\n[protocol P]\n")
	var out strings.Builder
	r := report.New(&out)
	testutil.AssertNoError(t, r.Result(schema.File(), compiler.Compile(schema)))
	testutil.ExpectEq(t, 0, r.ErrorCount())
	testutil.ExpectTrue(t, strings.Contains(out.String(), "Warning: W4002:"))
}

func TestSyntax(t *testing.T) {
	src := []byte("[package p]\n[record\n")
	_, err := syntax.Parse(src, syntax.FileName("bad.cbs"))
	var synErr *syntax.Error
	testutil.AssertTrue(t, errors.As(err, &synErr))

	var out strings.Builder
	r := report.New(&out)
	testutil.AssertNoError(t, r.Syntax(syntax.NewFile("bad.cbs", src), synErr))
	testutil.ExpectEq(t, 1, r.ErrorCount())
	testutil.ExpectTrue(t, strings.Contains(out.String(), "on bad.cbs line 2:"))
	testutil.ExpectTrue(t, strings.Contains(out.String(), "At bad.cbs:2:1."))
}

func TestImports(t *testing.T) {
	l := loader.New(loader.WithSearchPath(fstest.MapFS{
		"dep.cbs": &fstest.MapFile{Data: []byte("[package dep]\n[record D [field x Nope]]\n")},
	}))
	result := testutil.Compile(t, "[package p] [import dep d]", compiler.WithLoader(l))
	testutil.ExpectSliceEq(t, []uint32{compiler.CodeImportFailed}, testutil.ErrorCodes(result.Errors))

	var out strings.Builder
	r := report.New(&out)
	testutil.AssertNoError(t, r.Imports(l.Failures()))
	testutil.ExpectTrue(t, strings.Contains(out.String(), "on dep.cbs line 2:"))
	testutil.ExpectTrue(t, strings.Contains(out.String(), "Unknown type 'Nope'"))
}

func TestPlain(t *testing.T) {
	var out strings.Builder
	r := report.New(&out)
	testutil.AssertNoError(t, r.Plain("Cannot read schema", errors.New("boom")))
	testutil.ExpectTrue(t, strings.Contains(out.String(), "Error: Cannot read schema"))
	testutil.ExpectTrue(t, strings.Contains(out.String(), "boom"))
}
