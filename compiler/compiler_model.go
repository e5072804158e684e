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

// buildModel makes one read-only pass over the bound and checked schema.
func (c *compiler) buildModel() *model.Package {
	c.log.Debug("building model")
	b := model.NewPackageBuilder(c.currentPackage())
	c.modelTypes = make(map[syntax.NodeID]model.TypeDecl)
	c.modelParams = make(map[syntax.NodeID]*model.TypeParameter)
	c.modelFields = make(map[syntax.NodeID]*model.Field)
	c.modelCases = make(map[syntax.NodeID]*model.VariantCase)
	c.modelProtos = make(map[syntax.NodeID]*model.Protocol)

	for _, imp := range c.imports {
		b.AddImport(imp.pkg)
	}

	decls := c.schema.Decls()
	for _, decl := range decls {
		switch decl := decl.(type) {
		case *syntax.Record:
			c.modelTypes[decl.ID()] = b.DeclareRecord(decl.Name().Get())
		case *syntax.Variant:
			c.modelTypes[decl.ID()] = b.DeclareVariant(decl.Name().Get())
		case *syntax.External:
			c.modelTypes[decl.ID()] = b.DeclareExternal(decl.Name().Get())
		case *syntax.Protocol:
			c.modelProtos[decl.ID()] = b.DeclareProtocol(decl.Name().Get())
		default:
			panic("unreachable")
		}
	}

	for _, decl := range decls {
		if decl, ok := decl.(syntax.TypeDecl); ok {
			owner := c.modelTypes[decl.ID()]
			for _, param := range decl.Parameters() {
				c.modelParams[param.ID()] = b.AddParameter(owner, param.Name().Get())
			}
		}
	}

	for _, decl := range decls {
		switch decl := decl.(type) {
		case *syntax.Record:
			owner := c.modelTypes[decl.ID()].(*model.Record)
			c.buildFields(b, owner, decl.Fields())
		case *syntax.Variant:
			owner := c.modelTypes[decl.ID()].(*model.Variant)
			for _, node := range decl.Cases() {
				variantCase := b.AddCase(owner, node.Name().Get())
				c.modelCases[node.ID()] = variantCase
				c.buildFields(b, variantCase, node.Fields())
			}
		case *syntax.External:
		case *syntax.Protocol:
			c.buildVersions(b, decl)
		default:
			panic("unreachable")
		}
	}

	c.buildDocumentation(b)
	return b.Build()
}

func (c *compiler) buildFields(b *model.PackageBuilder, owner model.FieldOwner, fields []*syntax.Field) {
	for _, field := range fields {
		c.modelFields[field.ID()] = b.AddField(owner, field.Name().Get(), c.modelTypeExpr(field.Type()))
	}
}

func (c *compiler) modelTypeExpr(expr syntax.TypeExpr) model.TypeExpr {
	switch expr := expr.(type) {
	case *syntax.TypeName:
		switch binding := c.bindings.mustGet(expr).(type) {
		case *TypeParameterBinding:
			return model.NewParameterRef(c.modelParams[binding.Param.ID()])
		default:
			return model.NewNamed(c.modelDecl(binding))
		}
	case *syntax.TypeApplication:
		target := model.NewNamed(c.modelDecl(c.bindings.mustGet(expr.Target())))
		args := make([]model.TypeExpr, 0, len(expr.Arguments()))
		for _, arg := range expr.Arguments() {
			args = append(args, c.modelTypeExpr(arg))
		}
		return model.NewApplication(target, args...)
	}
	panic("unreachable")
}

func (c *compiler) modelDecl(binding Binding) model.TypeDecl {
	switch binding := binding.(type) {
	case *TypeBinding:
		return c.modelTypes[binding.Decl.ID()]
	case *ExternalBinding:
		return binding.Decl
	}
	panic("unreachable")
}

func (c *compiler) modelDecls(bindings []Binding) []model.TypeDecl {
	out := make([]model.TypeDecl, 0, len(bindings))
	for _, binding := range bindings {
		out = append(out, c.modelDecl(binding))
	}
	return out
}

func (c *compiler) buildVersions(b *model.PackageBuilder, decl *syntax.Protocol) {
	proto := c.modelProtos[decl.ID()]
	for _, version := range decl.Versions() {
		members := c.members[version.ID()]
		b.AddVersion(proto, version.Number(), model.VersionDelta{
			Types:   c.modelDecls(members.types),
			Added:   c.modelDecls(members.added),
			Removed: c.modelDecls(members.removed),
		})
	}
}

func (c *compiler) buildDocumentation(b *model.PackageBuilder) {
	attach := func(docs []*syntax.Documentation) {
		for _, doc := range docs {
			b.Document(c.docTarget(c.bindings.mustGet(doc)), doc.Text())
		}
	}
	for _, doc := range c.schema.Documentation() {
		if doc.Target().Get() == c.currentPackage() {
			b.AddDocumentation(doc.Text())
			continue
		}
		attach([]*syntax.Documentation{doc})
	}
	for _, decl := range c.schema.Decls() {
		switch decl := decl.(type) {
		case *syntax.Record:
			attach(decl.Documentation())
		case *syntax.Variant:
			attach(decl.Documentation())
			for _, node := range decl.Cases() {
				attach(node.Documentation())
			}
		case *syntax.External:
			attach(decl.Documentation())
		case *syntax.Protocol:
		default:
			panic("unreachable")
		}
	}
}

func (c *compiler) docTarget(binding Binding) model.Documented {
	switch binding := binding.(type) {
	case *TypeBinding:
		return c.modelTypes[binding.Decl.ID()]
	case *ProtocolBinding:
		return c.modelProtos[binding.Protocol.ID()]
	case *TypeParameterBinding:
		return c.modelParams[binding.Param.ID()]
	case *FieldBinding:
		return c.modelFields[binding.Field.ID()]
	case *CaseBinding:
		return c.modelCases[binding.Case.ID()]
	}
	panic("unreachable")
}
