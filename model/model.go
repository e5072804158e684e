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

// Package model is the compiled form of a Cedarbridge package. Values are
// created through a PackageBuilder and are immutable once built.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
)

type Kind uint8

const (
	KindRecord Kind = iota + 1
	KindVariant
	KindExternal
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindVariant:
		return "variant"
	case KindExternal:
		return "external"
	case KindProtocol:
		return "protocol"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ID is a stable identifier derived from a declaration's kind, owning
// package, and name.
type ID [sha256.Size]byte

func NewID(kind Kind, owner, name string) ID {
	h := sha256.New()
	h.Write([]byte(kind.String()))
	h.Write([]byte{0})
	h.Write([]byte(owner))
	h.Write([]byte{0})
	h.Write([]byte(name))
	var id ID
	h.Sum(id[:0])
	return id
}

func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

type Package struct {
	name      string
	imports   []*Package
	types     map[string]TypeDecl
	typeOrder []TypeDecl
	protocols map[string]*Protocol
	protoList []*Protocol
	docs      []string
}

func (p *Package) Name() string {
	return p.name
}

// Imports returns the directly imported packages in declaration order.
func (p *Package) Imports() []*Package {
	return slices.Clone(p.imports)
}

func (p *Package) Type(name string) (TypeDecl, bool) {
	decl, ok := p.types[name]
	return decl, ok
}

// Types returns the package's type declarations in declaration order.
func (p *Package) Types() []TypeDecl {
	return slices.Clone(p.typeOrder)
}

func (p *Package) Protocol(name string) (*Protocol, bool) {
	proto, ok := p.protocols[name]
	return proto, ok
}

func (p *Package) Protocols() []*Protocol {
	return slices.Clone(p.protoList)
}

func (p *Package) Documentation() []string {
	return slices.Clone(p.docs)
}

func (p *Package) String() string {
	return p.name
}

// Documented is implemented by every element that can carry
// documentation strings.
type Documented interface {
	Documentation() []string
	appendDoc(text string)
}
