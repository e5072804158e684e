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

package syntax

// NodeID identifies a declaration node within one parsed Schema. IDs are
// dense and assigned in source order starting at 1.
type NodeID uint32

// Node is implemented by every declaration-level node.
type Node interface {
	ID() NodeID
	Span() Span
	Pos() Pos
}

type nodeBase struct {
	id   NodeID
	span Span
	pos  Pos
}

func (n *nodeBase) ID() NodeID {
	return n.id
}

func (n *nodeBase) Span() Span {
	return n.span
}

func (n *nodeBase) Pos() Pos {
	return n.pos
}

// Name is one occurrence of an identifier in source.
type Name struct {
	nodeBase
	value string
}

func (n *Name) Get() string {
	return n.value
}

func (n *Name) String() string {
	return n.value
}

type Schema struct {
	file     *File
	nextID   NodeID
	language *Language
	pkg      *PackageDecl
	imports  []*Import
	decls    []Decl
	docs     []*Documentation
}

func (s *Schema) File() *File {
	return s.file
}

// NodeCount is one greater than the highest NodeID in the schema.
func (s *Schema) NodeCount() int {
	return int(s.nextID) + 1
}

func (s *Schema) Language() *Language {
	return s.language
}

func (s *Schema) Package() *PackageDecl {
	return s.pkg
}

func (s *Schema) Imports() []*Import {
	return s.imports
}

func (s *Schema) Decls() []Decl {
	return s.decls
}

func (s *Schema) Documentation() []*Documentation {
	return s.docs
}

type Language struct {
	nodeBase
	name         string
	major, minor uint64
}

func (n *Language) Name() string {
	return n.name
}

func (n *Language) Major() uint64 {
	return n.major
}

func (n *Language) Minor() uint64 {
	return n.minor
}

type PackageDecl struct {
	nodeBase
	name *Name
}

func (n *PackageDecl) Name() *Name {
	return n.name
}

type Import struct {
	nodeBase
	pkg   *Name
	short *Name
}

func (n *Import) Package() *Name {
	return n.pkg
}

func (n *Import) Short() *Name {
	return n.short
}

type Documentation struct {
	nodeBase
	target *Name
	text   string
}

func (n *Documentation) Target() *Name {
	return n.target
}

func (n *Documentation) Text() string {
	return n.text
}

// Decl is a top-level declaration: *Record, *Variant, *External, or
// *Protocol.
type Decl interface {
	Node
	Name() *Name
	isDecl()
}

// TypeDecl is a declaration that introduces a type: *Record, *Variant,
// or *External.
type TypeDecl interface {
	Decl
	Parameters() []*Parameter
	Documentation() []*Documentation
	isTypeDecl()
}

type typeDeclBase struct {
	nodeBase
	name   *Name
	params []*Parameter
	docs   []*Documentation
}

func (n *typeDeclBase) Name() *Name {
	return n.name
}

func (n *typeDeclBase) Parameters() []*Parameter {
	return n.params
}

func (n *typeDeclBase) Documentation() []*Documentation {
	return n.docs
}

func (*typeDeclBase) isDecl()     {}
func (*typeDeclBase) isTypeDecl() {}

type Parameter struct {
	nodeBase
	name *Name
}

func (n *Parameter) Name() *Name {
	return n.name
}

type Record struct {
	typeDeclBase
	fields []*Field
}

var _ TypeDecl = (*Record)(nil)

func (n *Record) Fields() []*Field {
	return n.fields
}

type Variant struct {
	typeDeclBase
	cases []*Case
}

var _ TypeDecl = (*Variant)(nil)

func (n *Variant) Cases() []*Case {
	return n.cases
}

type Case struct {
	nodeBase
	name   *Name
	fields []*Field
	docs   []*Documentation
}

func (n *Case) Name() *Name {
	return n.name
}

func (n *Case) Fields() []*Field {
	return n.fields
}

func (n *Case) Documentation() []*Documentation {
	return n.docs
}

type External struct {
	typeDeclBase
}

var _ TypeDecl = (*External)(nil)

type Field struct {
	nodeBase
	name *Name
	typ  TypeExpr
}

func (n *Field) Name() *Name {
	return n.name
}

func (n *Field) Type() TypeExpr {
	return n.typ
}

// TypeExpr is *TypeName or *TypeApplication. Whether a TypeName refers to
// a declaration or a type parameter is decided during binding.
type TypeExpr interface {
	Node
	isTypeExpr()
}

type TypeName struct {
	nodeBase
	scope *Name
	name  *Name
}

var _ TypeExpr = (*TypeName)(nil)

func (*TypeName) isTypeExpr() {}

// Scope is the import short name of a qualified reference, or nil.
func (n *TypeName) Scope() *Name {
	return n.scope
}

func (n *TypeName) Name() *Name {
	return n.name
}

func (n *TypeName) String() string {
	if n.scope != nil {
		return n.scope.value + ":" + n.name.value
	}
	return n.name.value
}

type TypeApplication struct {
	nodeBase
	target *TypeName
	args   []TypeExpr
}

var _ TypeExpr = (*TypeApplication)(nil)

func (*TypeApplication) isTypeExpr() {}

func (n *TypeApplication) Target() *TypeName {
	return n.target
}

func (n *TypeApplication) Arguments() []TypeExpr {
	return n.args
}

type Protocol struct {
	nodeBase
	name     *Name
	versions []*Version
}

var _ Decl = (*Protocol)(nil)

func (*Protocol) isDecl() {}

func (n *Protocol) Name() *Name {
	return n.name
}

func (n *Protocol) Versions() []*Version {
	return n.versions
}

type Version struct {
	nodeBase
	number    uint64
	added     []*TypeName
	removed   []*TypeName
	removeAll bool
}

func (n *Version) Number() uint64 {
	return n.number
}

func (n *Version) TypesAdded() []*TypeName {
	return n.added
}

func (n *Version) TypesRemoved() []*TypeName {
	return n.removed
}

// RemovesAll reports whether the version carries [types-removed-all].
func (n *Version) RemovesAll() bool {
	return n.removeAll
}
