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

package model

import (
	"cmp"
	"fmt"
	"slices"
)

// PackageBuilder assembles a Package. Every method panics after Build
// has been called, and on duplicate names; callers are expected to have
// checked names already.
type PackageBuilder struct {
	pkg   *Package
	built bool
}

func NewPackageBuilder(name string) *PackageBuilder {
	return &PackageBuilder{
		pkg: &Package{
			name:      name,
			types:     make(map[string]TypeDecl),
			protocols: make(map[string]*Protocol),
		},
	}
}

func (b *PackageBuilder) mustBeOpen() {
	if b.built {
		panic(fmt.Sprintf("model: package %q has already been built", b.pkg.name))
	}
}

// Package returns the package under construction, for use as an owner
// reference. Its contents are incomplete until Build returns.
func (b *PackageBuilder) Package() *Package {
	return b.pkg
}

func (b *PackageBuilder) AddImport(imported *Package) {
	b.mustBeOpen()
	if slices.Contains(b.pkg.imports, imported) {
		return
	}
	b.pkg.imports = append(b.pkg.imports, imported)
}

func (b *PackageBuilder) AddDocumentation(text string) {
	b.mustBeOpen()
	b.pkg.docs = append(b.pkg.docs, text)
}

// Document attaches a documentation string to an element of this
// package.
func (b *PackageBuilder) Document(target Documented, text string) {
	b.mustBeOpen()
	target.appendDoc(text)
}

func (b *PackageBuilder) declare(kind Kind, name string) typeDeclBase {
	b.mustBeOpen()
	if _, exists := b.pkg.types[name]; exists {
		panic(fmt.Sprintf("model: duplicate type %q in package %q", name, b.pkg.name))
	}
	if _, exists := b.pkg.protocols[name]; exists {
		panic(fmt.Sprintf("model: type %q conflicts with protocol in package %q", name, b.pkg.name))
	}
	return typeDeclBase{
		kind:  kind,
		id:    NewID(kind, b.pkg.name, name),
		name:  name,
		owner: b.pkg,
	}
}

func (b *PackageBuilder) addType(decl TypeDecl) {
	b.pkg.types[decl.Name()] = decl
	b.pkg.typeOrder = append(b.pkg.typeOrder, decl)
}

func (b *PackageBuilder) DeclareRecord(name string) *Record {
	decl := &Record{typeDeclBase: b.declare(KindRecord, name)}
	b.addType(decl)
	return decl
}

func (b *PackageBuilder) DeclareVariant(name string) *Variant {
	decl := &Variant{typeDeclBase: b.declare(KindVariant, name)}
	b.addType(decl)
	return decl
}

func (b *PackageBuilder) DeclareExternal(name string) *External {
	decl := &External{typeDeclBase: b.declare(KindExternal, name)}
	b.addType(decl)
	return decl
}

func (b *PackageBuilder) baseOf(decl TypeDecl) *typeDeclBase {
	switch decl := decl.(type) {
	case *Record:
		return &decl.typeDeclBase
	case *Variant:
		return &decl.typeDeclBase
	case *External:
		return &decl.typeDeclBase
	}
	panic("unreachable")
}

func (b *PackageBuilder) AddParameter(decl TypeDecl, name string) *TypeParameter {
	b.mustBeOpen()
	base := b.baseOf(decl)
	if base.owner != b.pkg {
		panic(fmt.Sprintf("model: type %q is not owned by package %q", base.name, b.pkg.name))
	}
	if _, exists := base.Parameter(name); exists {
		panic(fmt.Sprintf("model: duplicate parameter %q in type %q", name, base.name))
	}
	param := &TypeParameter{
		name:  name,
		owner: decl,
		index: len(base.params),
	}
	base.params = append(base.params, param)
	return param
}

func (b *PackageBuilder) AddField(owner FieldOwner, name string, typ TypeExpr) *Field {
	b.mustBeOpen()
	field := &Field{
		name:  name,
		typ:   typ,
		owner: owner,
	}
	switch owner := owner.(type) {
	case *Record:
		if _, exists := owner.Field(name); exists {
			panic(fmt.Sprintf("model: duplicate field %q in record %q", name, owner.name))
		}
		owner.fields = append(owner.fields, field)
	case *VariantCase:
		if _, exists := owner.Field(name); exists {
			panic(fmt.Sprintf("model: duplicate field %q in case %q", name, owner.name))
		}
		owner.fields = append(owner.fields, field)
	default:
		panic("unreachable")
	}
	return field
}

func (b *PackageBuilder) AddCase(variant *Variant, name string) *VariantCase {
	b.mustBeOpen()
	if _, exists := variant.Case(name); exists {
		panic(fmt.Sprintf("model: duplicate case %q in variant %q", name, variant.name))
	}
	c := &VariantCase{
		name:  name,
		owner: variant,
		index: len(variant.cases),
	}
	variant.cases = append(variant.cases, c)
	return c
}

func (b *PackageBuilder) DeclareProtocol(name string) *Protocol {
	b.mustBeOpen()
	if _, exists := b.pkg.protocols[name]; exists {
		panic(fmt.Sprintf("model: duplicate protocol %q in package %q", name, b.pkg.name))
	}
	if _, exists := b.pkg.types[name]; exists {
		panic(fmt.Sprintf("model: protocol %q conflicts with type in package %q", name, b.pkg.name))
	}
	proto := &Protocol{
		id:    NewID(KindProtocol, b.pkg.name, name),
		name:  name,
		owner: b.pkg,
	}
	b.pkg.protocols[name] = proto
	b.pkg.protoList = append(b.pkg.protoList, proto)
	return proto
}

// VersionDelta describes one protocol version: its full membership and
// the changes relative to the version below it.
type VersionDelta struct {
	Types   []TypeDecl
	Added   []TypeDecl
	Removed []TypeDecl
}

func (b *PackageBuilder) AddVersion(proto *Protocol, number uint64, delta VersionDelta) *ProtocolVersion {
	b.mustBeOpen()
	if _, exists := proto.Version(number); exists {
		panic(fmt.Sprintf("model: duplicate version %d in protocol %q", number, proto.name))
	}
	version := &ProtocolVersion{
		number:  number,
		owner:   proto,
		types:   slices.Clone(delta.Types),
		added:   slices.Clone(delta.Added),
		removed: slices.Clone(delta.Removed),
	}
	proto.versions = append(proto.versions, version)
	slices.SortFunc(proto.versions, func(a, b *ProtocolVersion) int {
		return cmp.Compare(a.number, b.number)
	})
	return version
}

// Build freezes the package. The builder cannot be used afterwards.
func (b *PackageBuilder) Build() *Package {
	b.mustBeOpen()
	b.built = true
	return b.pkg
}
