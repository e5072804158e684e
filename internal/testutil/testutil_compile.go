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

package testutil

import (
	"testing"

	"github.com/io7m-com/cedarbridge-sub001/compiler"
	"github.com/io7m-com/cedarbridge-sub001/model"
	"github.com/io7m-com/cedarbridge-sub001/syntax"
)

func ParseOrDie(t *testing.T, fileName, src string) *syntax.Schema {
	t.Helper()
	schema, err := syntax.Parse([]byte(src), syntax.FileName(fileName))
	if err != nil {
		t.Fatalf("parse %s: %v", fileName, err)
	}
	return schema
}

func Compile(t *testing.T, src string, opts ...compiler.CompileOption) compiler.CompileResult {
	t.Helper()
	return compiler.Compile(ParseOrDie(t, "test.cbs", src), opts...)
}

func CompileOrDie(t *testing.T, src string, opts ...compiler.CompileOption) *model.Package {
	t.Helper()
	result := Compile(t, src, opts...)
	if len(result.Errors) > 0 {
		for _, err := range result.Errors {
			t.Errorf("%s: %v", err.Pos(), err)
		}
		t.FailNow()
	}
	return result.Package()
}

func ErrorCodes(errs []*compiler.Error) []uint32 {
	codes := make([]uint32, 0, len(errs))
	for _, err := range errs {
		codes = append(codes, err.Code())
	}
	return codes
}

func WarningCodes(warnings []*compiler.Warning) []uint32 {
	codes := make([]uint32, 0, len(warnings))
	for _, warning := range warnings {
		codes = append(codes, warning.Code())
	}
	return codes
}

// TypeNames lists a package's type names in declaration order.
func TypeNames(pkg *model.Package) []string {
	var out []string
	for _, decl := range pkg.Types() {
		out = append(out, decl.Name())
	}
	return out
}

func MemberNames(version *model.ProtocolVersion) []string {
	var out []string
	for _, decl := range version.Types() {
		out = append(out, decl.Name())
	}
	return out
}
