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

package compiler

import (
	"github.com/io7m-com/cedarbridge-sub001/model"
	"github.com/io7m-com/cedarbridge-sub001/syntax"
)

// Binding is the resolved referent of a name. The concrete types are
// *TypeBinding, *TypeParameterBinding, *FieldBinding, *CaseBinding,
// *ProtocolBinding, *VersionBinding, *ImportBinding, and
// *ExternalBinding.
type Binding interface {
	// Pos is the location of the binding's declaration. Bindings into
	// imported packages have no source location.
	Pos() syntax.Pos
	isBinding()
}

type TypeBinding struct {
	Decl syntax.TypeDecl
}

func (b *TypeBinding) Pos() syntax.Pos { return b.Decl.Name().Pos() }

type TypeParameterBinding struct {
	Param *syntax.Parameter
	Owner syntax.TypeDecl
	Index int
}

func (b *TypeParameterBinding) Pos() syntax.Pos { return b.Param.Name().Pos() }

type FieldBinding struct {
	Field *syntax.Field
}

func (b *FieldBinding) Pos() syntax.Pos { return b.Field.Name().Pos() }

type CaseBinding struct {
	Case *syntax.Case
}

func (b *CaseBinding) Pos() syntax.Pos { return b.Case.Name().Pos() }

type ProtocolBinding struct {
	Protocol *syntax.Protocol
}

func (b *ProtocolBinding) Pos() syntax.Pos { return b.Protocol.Name().Pos() }

type VersionBinding struct {
	Version *syntax.Version
}

func (b *VersionBinding) Pos() syntax.Pos { return b.Version.Pos() }

type ImportBinding struct {
	Import  *syntax.Import
	Package *model.Package
}

func (b *ImportBinding) Pos() syntax.Pos { return b.Import.Short().Pos() }

// ExternalBinding refers to a declaration in an imported package.
type ExternalBinding struct {
	Package *model.Package
	Decl    model.TypeDecl
}

func (b *ExternalBinding) Pos() syntax.Pos { return syntax.Pos{File: b.Package.Name()} }

func (*TypeBinding) isBinding()          {}
func (*TypeParameterBinding) isBinding() {}
func (*FieldBinding) isBinding()         {}
func (*CaseBinding) isBinding()          {}
func (*ProtocolBinding) isBinding()      {}
func (*VersionBinding) isBinding()       {}
func (*ImportBinding) isBinding()        {}
func (*ExternalBinding) isBinding()      {}

// Bindings is a side table from node IDs to the binding recorded for
// that node. Declarations record the binding they introduce; references
// record the binding they resolve to.
type Bindings struct {
	entries []Binding
}

func newBindings(nodeCount int) *Bindings {
	return &Bindings{entries: make([]Binding, nodeCount)}
}

func (b *Bindings) set(id syntax.NodeID, binding Binding) {
	b.entries[id] = binding
}

func (b *Bindings) Get(node syntax.Node) (Binding, bool) {
	id := int(node.ID())
	if id >= len(b.entries) || b.entries[id] == nil {
		return nil, false
	}
	return b.entries[id], true
}

// mustGet is used by phases that run only after a clean bind.
func (b *Bindings) mustGet(node syntax.Node) Binding {
	binding, ok := b.Get(node)
	if !ok {
		panic("compiler: node has no binding")
	}
	return binding
}

// arityOf returns the number of type arguments a type reference must
// supply.
func arityOf(binding Binding) int {
	switch binding := binding.(type) {
	case *TypeBinding:
		return len(binding.Decl.Parameters())
	case *TypeParameterBinding:
		return 0
	case *ExternalBinding:
		return binding.Decl.Arity()
	case *FieldBinding, *CaseBinding, *ProtocolBinding, *VersionBinding, *ImportBinding:
		panic("unreachable")
	}
	panic("unreachable")
}

// kindOf returns the declaration kind behind a type binding, or 0 for a
// type parameter.
func kindOf(binding Binding) model.Kind {
	switch binding := binding.(type) {
	case *TypeBinding:
		switch binding.Decl.(type) {
		case *syntax.Record:
			return model.KindRecord
		case *syntax.Variant:
			return model.KindVariant
		case *syntax.External:
			return model.KindExternal
		}
	case *ExternalBinding:
		return binding.Decl.Kind()
	case *TypeParameterBinding:
		return 0
	}
	panic("unreachable")
}

// memberKey identifies a type across packages.
func memberKey(binding Binding, localPackage string) string {
	switch binding := binding.(type) {
	case *TypeBinding:
		return localPackage + "." + binding.Decl.Name().Get()
	case *ExternalBinding:
		return model.QualifiedName(binding.Decl)
	}
	panic("unreachable")
}
