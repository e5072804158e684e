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

package compiler_test

import (
	"testing"

	"github.com/io7m-com/cedarbridge-sub001/compiler"
	"github.com/io7m-com/cedarbridge-sub001/internal/testutil"
	"github.com/io7m-com/cedarbridge-sub001/model"
)

const protocolDecls = `[package p]
[record A] [record B] [record C]
`

func versionMembers(t *testing.T, pkg *model.Package, protoName string) map[uint64][]string {
	t.Helper()
	proto, ok := pkg.Protocol(protoName)
	testutil.AssertTrue(t, ok)
	out := make(map[uint64][]string)
	for _, version := range proto.Versions() {
		out[version.Number()] = testutil.MemberNames(version)
	}
	return out
}

func declNames(decls []model.TypeDecl) []string {
	var out []string
	for _, decl := range decls {
		out = append(out, decl.Name())
	}
	return out
}

func TestScenarioProtocolMembership(t *testing.T) {
	pkg := testutil.CompileOrDie(t, protocolDecls+`[protocol P
  [version 0 [types-added A]]
  [version 1 [types-added B]]
  [version 2 [types-removed A] [types-added C]]
  [version 3 [types-removed B]]]
`)
	members := versionMembers(t, pkg, "P")
	testutil.ExpectSliceEq(t, []string{"A"}, members[0])
	testutil.ExpectSliceEq(t, []string{"A", "B"}, members[1])
	testutil.ExpectSliceEq(t, []string{"B", "C"}, members[2])
	testutil.ExpectSliceEq(t, []string{"C"}, members[3])

	proto, _ := pkg.Protocol("P")
	v2, _ := proto.Version(2)
	testutil.ExpectSliceEq(t, []string{"C"}, declNames(v2.TypesAdded()))
	testutil.ExpectSliceEq(t, []string{"A"}, declNames(v2.TypesRemoved()))
	testutil.ExpectEq(t, proto, v2.Protocol())
}

func TestProtocolVersionsOutOfOrder(t *testing.T) {
	pkg := testutil.CompileOrDie(t, protocolDecls+`[protocol P
  [version 11 [types-added B]]
  [version 10 [types-added A]]]
`)
	members := versionMembers(t, pkg, "P")
	testutil.ExpectSliceEq(t, []string{"A"}, members[10])
	testutil.ExpectSliceEq(t, []string{"A", "B"}, members[11])
}

func TestProtocolRemoveAll(t *testing.T) {
	pkg := testutil.CompileOrDie(t, protocolDecls+`[protocol P
  [version 1 [types-added A B]]
  [version 2 [types-removed-all] [types-added C]]]
`)
	members := versionMembers(t, pkg, "P")
	testutil.ExpectSliceEq(t, []string{"C"}, members[2])

	proto, _ := pkg.Protocol("P")
	v2, _ := proto.Version(2)
	testutil.ExpectSliceEq(t, []string{"A", "B"}, declNames(v2.TypesRemoved()))
}

func TestProtocolVersionGap(t *testing.T) {
	complete := protocolDecls + `[protocol P
  [version 0 [types-added A]]
  [version 1 [types-added B]]
  [version 2 [types-added C]]]
`
	testutil.CompileOrDie(t, complete)

	result := testutil.Compile(t, protocolDecls+`[protocol P
  [version 0 [types-added A]]
  [version 2 [types-added C]]]
`)
	expectCodes(t, result, compiler.CodeProtocolVersionGap)
	testutil.ExpectEq(t, compiler.PhaseTypeChecking, result.Failure.Phase)
	testutil.ExpectEq(t, "Protocol 'P' is missing version 1", result.Errors[0].Message())
}

func TestProtocolVersionGapPerMissingNumber(t *testing.T) {
	result := testutil.Compile(t, protocolDecls+`[protocol P
  [version 1 [types-added A]]
  [version 5 [types-added B]]
  [version 7 [types-added C]]]
`)
	expectCodes(t, result,
		compiler.CodeProtocolVersionGap,
		compiler.CodeProtocolVersionGap,
		compiler.CodeProtocolVersionGap,
		compiler.CodeProtocolVersionGap)
}

func TestProtocolVersionGapTruncated(t *testing.T) {
	result := testutil.Compile(t, protocolDecls+`[protocol P
  [version 1 [types-added A]]
  [version 1000000000000 [types-added B]]]
`)
	testutil.ExpectEq(t, 33, len(result.Errors))
	testutil.ExpectEq(t, "Protocol 'P' is missing 999999999966 further versions", result.Errors[32].Message())
}

func TestProtocolEvolutionErrors(t *testing.T) {
	tests := []struct {
		name  string
		proto string
		codes []uint32
	}{
		{
			name:  "already present",
			proto: `[version 0 [types-added A]] [version 1 [types-added A]]`,
			codes: []uint32{compiler.CodeProtocolVersionAlreadyPresent},
		},
		{
			name:  "added twice in one version",
			proto: `[version 0 [types-added A A]]`,
			codes: []uint32{compiler.CodeProtocolVersionAlreadyPresent},
		},
		{
			name:  "removed and re-added",
			proto: `[version 0 [types-added A]] [version 1 [types-removed A] [types-added A]]`,
			codes: []uint32{compiler.CodeProtocolVersionAlreadyPresent, compiler.CodeProtocolVersionBecameEmpty},
		},
		{
			name:  "not present",
			proto: `[version 0 [types-added A]] [version 1 [types-removed B]]`,
			codes: []uint32{compiler.CodeProtocolVersionNotPresent},
		},
		{
			name:  "became empty",
			proto: `[version 0 [types-added A]] [version 1 [types-removed A]]`,
			codes: []uint32{compiler.CodeProtocolVersionBecameEmpty},
		},
		{
			name:  "first version empty",
			proto: `[version 0]`,
			codes: []uint32{compiler.CodeProtocolVersionBecameEmpty},
		},
		{
			name:  "first version removes",
			proto: `[version 0 [types-added A] [types-removed B]]`,
			codes: []uint32{compiler.CodeProtocolVersionFirstRemoval},
		},
		{
			name:  "first version removes all",
			proto: `[version 0 [types-removed-all] [types-added A]]`,
			codes: []uint32{compiler.CodeProtocolVersionFirstRemoval},
		},
		{
			name:  "gap and membership errors together",
			proto: `[version 0 [types-added A]] [version 2 [types-added A]]`,
			codes: []uint32{compiler.CodeProtocolVersionGap, compiler.CodeProtocolVersionAlreadyPresent},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := testutil.Compile(t, protocolDecls+"[protocol P "+test.proto+"]")
			expectCodes(t, result, test.codes...)
		})
	}
}

func TestProtocolKindMismatch(t *testing.T) {
	result := testutil.Compile(t, `[package p]
[external E]
[record G [parameter a]]
[variant V [case X]]
[protocol P [version 0 [types-added E G V]]]
`)
	expectCodes(t, result,
		compiler.CodeProtocolKindMismatch,
		compiler.CodeProtocolKindMismatch)
	testutil.ExpectMatch(t, `got an external type$`, result.Errors[0].Message())
	testutil.ExpectMatch(t, `got a parameterized record$`, result.Errors[1].Message())
}

func TestProtocolImportedMembers(t *testing.T) {
	pkg := testutil.CompileOrDie(t, `[package p]
[import test.core tc]
[record A]
[protocol P
  [version 0 [types-added tc:Unit A]]
  [version 1 [types-removed tc:Unit]]]
`, withCore())
	members := versionMembers(t, pkg, "P")
	testutil.ExpectSliceEq(t, []string{"Unit", "A"}, members[0])
	testutil.ExpectSliceEq(t, []string{"A"}, members[1])
}

func TestEmptyProtocolWarning(t *testing.T) {
	result := testutil.Compile(t, `[package p] [protocol P]`)
	testutil.ExpectEq(t, 0, len(result.Errors))
	testutil.ExpectSliceEq(t, []uint32{4002}, testutil.WarningCodes(result.Warnings))
}
