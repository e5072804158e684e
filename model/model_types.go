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
	"slices"
	"strings"
)

// TypeDecl is *Record, *Variant, or *External.
type TypeDecl interface {
	Documented
	Kind() Kind
	ID() ID
	Name() string
	Package() *Package
	Parameters() []*TypeParameter
	Parameter(name string) (*TypeParameter, bool)
	Arity() int
	isTypeDecl()
}

type typeDeclBase struct {
	kind   Kind
	id     ID
	name   string
	owner  *Package
	params []*TypeParameter
	docs   []string
}

func (d *typeDeclBase) Kind() Kind {
	return d.kind
}

func (d *typeDeclBase) ID() ID {
	return d.id
}

func (d *typeDeclBase) Name() string {
	return d.name
}

func (d *typeDeclBase) Package() *Package {
	return d.owner
}

func (d *typeDeclBase) Parameters() []*TypeParameter {
	return slices.Clone(d.params)
}

func (d *typeDeclBase) Parameter(name string) (*TypeParameter, bool) {
	for _, param := range d.params {
		if param.name == name {
			return param, true
		}
	}
	return nil, false
}

func (d *typeDeclBase) Arity() int {
	return len(d.params)
}

func (d *typeDeclBase) Documentation() []string {
	return slices.Clone(d.docs)
}

func (d *typeDeclBase) appendDoc(text string) {
	d.docs = append(d.docs, text)
}

func (d *typeDeclBase) isTypeDecl() {}

// QualifiedName returns "package.Name".
func QualifiedName(decl TypeDecl) string {
	return decl.Package().Name() + "." + decl.Name()
}

type Record struct {
	typeDeclBase
	fields []*Field
}

var _ TypeDecl = (*Record)(nil)

func (r *Record) Fields() []*Field {
	return slices.Clone(r.fields)
}

func (r *Record) Field(name string) (*Field, bool) {
	return findField(r.fields, name)
}

func (*Record) isFieldOwner() {}

type Variant struct {
	typeDeclBase
	cases []*VariantCase
}

var _ TypeDecl = (*Variant)(nil)

func (v *Variant) Cases() []*VariantCase {
	return slices.Clone(v.cases)
}

func (v *Variant) Case(name string) (*VariantCase, bool) {
	for _, c := range v.cases {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// External is an opaque type whose representation is supplied by each
// target runtime.
type External struct {
	typeDeclBase
}

var _ TypeDecl = (*External)(nil)

type TypeParameter struct {
	name  string
	owner TypeDecl
	index int
	docs  []string
}

func (p *TypeParameter) Name() string {
	return p.name
}

func (p *TypeParameter) Owner() TypeDecl {
	return p.owner
}

// Index is the parameter's position in its owner's parameter list.
func (p *TypeParameter) Index() int {
	return p.index
}

func (p *TypeParameter) Documentation() []string {
	return slices.Clone(p.docs)
}

func (p *TypeParameter) appendDoc(text string) {
	p.docs = append(p.docs, text)
}

// FieldOwner is *Record or *VariantCase.
type FieldOwner interface {
	Fields() []*Field
	isFieldOwner()
}

type Field struct {
	name  string
	typ   TypeExpr
	owner FieldOwner
	docs  []string
}

func (f *Field) Name() string {
	return f.name
}

func (f *Field) Type() TypeExpr {
	return f.typ
}

func (f *Field) Owner() FieldOwner {
	return f.owner
}

func (f *Field) Documentation() []string {
	return slices.Clone(f.docs)
}

func (f *Field) appendDoc(text string) {
	f.docs = append(f.docs, text)
}

func findField(fields []*Field, name string) (*Field, bool) {
	for _, field := range fields {
		if field.name == name {
			return field, true
		}
	}
	return nil, false
}

type VariantCase struct {
	name   string
	owner  *Variant
	index  int
	fields []*Field
	docs   []string
}

func (c *VariantCase) Name() string {
	return c.name
}

func (c *VariantCase) Owner() *Variant {
	return c.owner
}

func (c *VariantCase) Index() int {
	return c.index
}

func (c *VariantCase) Fields() []*Field {
	return slices.Clone(c.fields)
}

func (c *VariantCase) Field(name string) (*Field, bool) {
	return findField(c.fields, name)
}

func (c *VariantCase) Documentation() []string {
	return slices.Clone(c.docs)
}

func (c *VariantCase) appendDoc(text string) {
	c.docs = append(c.docs, text)
}

func (*VariantCase) isFieldOwner() {}

// TypeExpr is *Named, *ParameterRef, or *Application.
type TypeExpr interface {
	String() string
	isTypeExpr()
}

type Named struct {
	decl TypeDecl
}

func NewNamed(decl TypeDecl) *Named {
	return &Named{decl: decl}
}

func (n *Named) Decl() TypeDecl {
	return n.decl
}

func (n *Named) String() string {
	return QualifiedName(n.decl)
}

func (*Named) isTypeExpr() {}

type ParameterRef struct {
	param *TypeParameter
}

func NewParameterRef(param *TypeParameter) *ParameterRef {
	return &ParameterRef{param: param}
}

func (p *ParameterRef) Parameter() *TypeParameter {
	return p.param
}

func (p *ParameterRef) String() string {
	return p.param.name
}

func (*ParameterRef) isTypeExpr() {}

type Application struct {
	target *Named
	args   []TypeExpr
}

// NewApplication panics if len(args) differs from the target's arity.
func NewApplication(target *Named, args ...TypeExpr) *Application {
	if len(args) != target.decl.Arity() {
		panic("model: application argument count does not match arity of " + target.String())
	}
	return &Application{target: target, args: slices.Clone(args)}
}

func (a *Application) Target() *Named {
	return a.target
}

func (a *Application) Arguments() []TypeExpr {
	return slices.Clone(a.args)
}

func (a *Application) String() string {
	var buf strings.Builder
	buf.WriteByte('[')
	buf.WriteString(a.target.String())
	for _, arg := range a.args {
		buf.WriteByte(' ')
		buf.WriteString(arg.String())
	}
	buf.WriteByte(']')
	return buf.String()
}

func (*Application) isTypeExpr() {}
