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

package model_test

import (
	"testing"

	"github.com/io7m-com/cedarbridge-sub001/internal/testutil"
	"github.com/io7m-com/cedarbridge-sub001/model"
)

func expectPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Error("Expected panic, got none")
		}
	}()
	fn()
}

func TestNewID(t *testing.T) {
	a := model.NewID(model.KindRecord, "com.example", "Person")
	b := model.NewID(model.KindRecord, "com.example", "Person")
	testutil.ExpectEq(t, a, b)
	testutil.ExpectEq(t, 64, len(a.String()))

	testutil.ExpectTrue(t, a != model.NewID(model.KindVariant, "com.example", "Person"))
	testutil.ExpectTrue(t, a != model.NewID(model.KindRecord, "com.example2", "Person"))
	testutil.ExpectTrue(t, a != model.NewID(model.KindRecord, "com.exampl", "ePerson"))
}

func TestPackageBuilder(t *testing.T) {
	b := model.NewPackageBuilder("com.example")
	b.AddDocumentation("Example package.")

	pair := b.DeclareRecord("Pair")
	a := b.AddParameter(pair, "a")
	c := b.AddParameter(pair, "b")
	b.AddField(pair, "first", model.NewParameterRef(a))
	b.AddField(pair, "second", model.NewParameterRef(c))
	b.Document(a, "Left.")

	option := b.DeclareVariant("Option")
	t0 := b.AddParameter(option, "t")
	b.AddCase(option, "None")
	some := b.AddCase(option, "Some")
	b.AddField(some, "value", model.NewParameterRef(t0))

	str := b.DeclareExternal("String")
	holder := b.DeclareRecord("Holder")
	b.AddField(holder, "pair", model.NewApplication(
		model.NewNamed(pair),
		model.NewNamed(str),
		model.NewApplication(model.NewNamed(option), model.NewNamed(str)),
	))

	proto := b.DeclareProtocol("P")
	b.AddVersion(proto, 2, model.VersionDelta{Types: []model.TypeDecl{pair}})
	b.AddVersion(proto, 1, model.VersionDelta{Types: []model.TypeDecl{holder}, Added: []model.TypeDecl{holder}})

	pkg := b.Build()
	testutil.ExpectEq(t, "com.example", pkg.Name())
	testutil.ExpectSliceEq(t, []string{"Example package."}, pkg.Documentation())

	got, ok := pkg.Type("Pair")
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, model.TypeDecl(pair), got)
	testutil.ExpectEq(t, 2, got.Arity())
	testutil.ExpectEq(t, pkg, got.Package())
	testutil.ExpectEq(t, 1, a.Index()+c.Index())
	testutil.ExpectEq(t, model.TypeDecl(pair), a.Owner())
	testutil.ExpectSliceEq(t, []string{"Left."}, a.Documentation())

	testutil.ExpectEq(t, 1, some.Index())
	testutil.ExpectEq(t, option, some.Owner())
	field, ok := some.Field("value")
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, model.FieldOwner(some), field.Owner())

	holderField := holder.Fields()[0]
	testutil.ExpectEq(t,
		"[com.example.Pair com.example.String [com.example.Option com.example.String]]",
		holderField.Type().String())

	var order []string
	for _, decl := range pkg.Types() {
		order = append(order, decl.Name())
	}
	testutil.ExpectSliceEq(t, []string{"Pair", "Option", "String", "Holder"}, order)

	versions := proto.Versions()
	testutil.ExpectEq(t, uint64(1), versions[0].Number())
	testutil.ExpectEq(t, uint64(2), versions[1].Number())
	prev, ok := versions[1].Previous()
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, versions[0], prev)
	_, ok = versions[0].Previous()
	testutil.ExpectFalse(t, ok)
	testutil.ExpectEq(t, proto, versions[0].Protocol())
}

func TestPackageBuilderFrozen(t *testing.T) {
	b := model.NewPackageBuilder("p")
	rec := b.DeclareRecord("R")
	b.Build()

	expectPanic(t, func() { b.DeclareRecord("S") })
	expectPanic(t, func() { b.AddField(rec, "x", model.NewNamed(rec)) })
	expectPanic(t, func() { b.Build() })
}

func TestPackageBuilderDuplicates(t *testing.T) {
	b := model.NewPackageBuilder("p")
	rec := b.DeclareRecord("R")
	b.AddField(rec, "x", model.NewNamed(rec))
	b.DeclareProtocol("P")

	expectPanic(t, func() { b.DeclareVariant("R") })
	expectPanic(t, func() { b.DeclareProtocol("R") })
	expectPanic(t, func() { b.DeclareRecord("P") })
	expectPanic(t, func() { b.AddField(rec, "x", model.NewNamed(rec)) })
}

func TestApplicationArity(t *testing.T) {
	b := model.NewPackageBuilder("p")
	list := b.DeclareExternal("List")
	b.AddParameter(list, "a")
	str := b.DeclareExternal("String")

	expectPanic(t, func() { model.NewApplication(model.NewNamed(list)) })
	expectPanic(t, func() {
		model.NewApplication(model.NewNamed(list), model.NewNamed(str), model.NewNamed(str))
	})
	app := model.NewApplication(model.NewNamed(list), model.NewNamed(str))
	testutil.ExpectEq(t, 1, len(app.Arguments()))
}
