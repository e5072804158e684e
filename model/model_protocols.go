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
)

type Protocol struct {
	id       ID
	name     string
	owner    *Package
	versions []*ProtocolVersion
	docs     []string
}

func (p *Protocol) ID() ID {
	return p.id
}

func (p *Protocol) Name() string {
	return p.name
}

func (p *Protocol) Package() *Package {
	return p.owner
}

// Versions returns the protocol's versions in ascending order.
func (p *Protocol) Versions() []*ProtocolVersion {
	return slices.Clone(p.versions)
}

func (p *Protocol) Version(number uint64) (*ProtocolVersion, bool) {
	idx, ok := slices.BinarySearchFunc(p.versions, number, func(v *ProtocolVersion, n uint64) int {
		switch {
		case v.number < n:
			return -1
		case v.number > n:
			return 1
		}
		return 0
	})
	if !ok {
		return nil, false
	}
	return p.versions[idx], true
}

func (p *Protocol) Documentation() []string {
	return slices.Clone(p.docs)
}

func (p *Protocol) appendDoc(text string) {
	p.docs = append(p.docs, text)
}

type ProtocolVersion struct {
	number  uint64
	owner   *Protocol
	types   []TypeDecl
	added   []TypeDecl
	removed []TypeDecl
}

func (v *ProtocolVersion) Number() uint64 {
	return v.number
}

func (v *ProtocolVersion) Protocol() *Protocol {
	return v.owner
}

// Types returns the version's membership: every type the protocol
// carries at this version, in first-seen order.
func (v *ProtocolVersion) Types() []TypeDecl {
	return slices.Clone(v.types)
}

func (v *ProtocolVersion) TypesAdded() []TypeDecl {
	return slices.Clone(v.added)
}

func (v *ProtocolVersion) TypesRemoved() []TypeDecl {
	return slices.Clone(v.removed)
}

// Previous returns the version immediately below v, if any.
func (v *ProtocolVersion) Previous() (*ProtocolVersion, bool) {
	if v.number == 0 {
		return nil, false
	}
	return v.owner.Version(v.number - 1)
}
