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
	"log/slog"

	"github.com/io7m-com/cedarbridge-sub001/model"
	"github.com/io7m-com/cedarbridge-sub001/syntax"
)

// declShape is the structural assignment for one type declaration.
type declShape struct {
	kind   model.Kind
	arity  int
	fields []*syntax.Field
	cases  []*syntax.Case
}

func (c *compiler) typeCheck() {
	c.log.Debug("type checking")
	c.shapes = make(map[syntax.NodeID]*declShape)
	c.members = make(map[syntax.NodeID]*versionMembers)

	decls := c.schema.Decls()
	for _, decl := range decls {
		if decl, ok := decl.(syntax.TypeDecl); ok {
			c.assignShape(decl)
		}
	}

	for _, decl := range decls {
		switch decl := decl.(type) {
		case *syntax.Record:
			c.checkFields(decl.Fields())
		case *syntax.Variant:
			for _, node := range decl.Cases() {
				c.checkFields(node.Fields())
			}
		case *syntax.External:
		case *syntax.Protocol:
			c.checkProtocol(decl)
		default:
			panic("unreachable")
		}
	}
}

func (c *compiler) assignShape(decl syntax.TypeDecl) {
	shape := &declShape{arity: len(decl.Parameters())}
	switch decl := decl.(type) {
	case *syntax.Record:
		shape.kind = model.KindRecord
		shape.fields = decl.Fields()
	case *syntax.Variant:
		shape.kind = model.KindVariant
		shape.cases = decl.Cases()
	case *syntax.External:
		shape.kind = model.KindExternal
	default:
		panic("unreachable")
	}
	c.shapes[decl.ID()] = shape
	c.log.Debug("assigned shape",
		slog.String("type", decl.Name().Get()),
		slog.String("kind", shape.kind.String()),
		slog.Int("arity", shape.arity))
}

func (c *compiler) checkFields(fields []*syntax.Field) {
	for _, field := range fields {
		c.checkTypeExpr(field.Type())
	}
}

// checkTypeExpr verifies that every reference supplies exactly as many
// type arguments as its target declares.
func (c *compiler) checkTypeExpr(expr syntax.TypeExpr) {
	switch expr := expr.(type) {
	case *syntax.TypeName:
		binding := c.bindings.mustGet(expr)
		if arity := c.arity(binding); arity != 0 {
			c.err(errArityMismatch(expr, expr.String(), arity, 0))
		}
	case *syntax.TypeApplication:
		target := expr.Target()
		binding := c.bindings.mustGet(target)
		got := len(expr.Arguments())
		if param, ok := binding.(*TypeParameterBinding); ok {
			c.err(errParameterApplied(expr, param.Param.Name().Get(), got))
		} else if want := c.arity(binding); want != got {
			c.err(errArityMismatch(expr, target.String(), want, got))
		}
		for _, arg := range expr.Arguments() {
			c.checkTypeExpr(arg)
		}
	default:
		panic("unreachable")
	}
}

func (c *compiler) arity(binding Binding) int {
	if typeBinding, ok := binding.(*TypeBinding); ok {
		if shape, ok := c.shapes[typeBinding.Decl.ID()]; ok {
			return shape.arity
		}
	}
	return arityOf(binding)
}
